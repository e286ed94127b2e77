package diagfmt

import (
	"bytes"
	"encoding/json"
	"testing"

	"llasm/internal/diag"
)

func TestJSONBasic(t *testing.T) {
	bag, fs := sampleBag(t)
	var buf bytes.Buffer
	if err := JSON(&buf, bag, fs, JSONOpts{IncludePositions: true, PathMode: PathModeBasename, IncludeNotes: true}); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v\n%s", err, buf.String())
	}
	if out.Count != 1 || len(out.Diagnostics) != 1 {
		t.Fatalf("count = %d", out.Count)
	}
	d := out.Diagnostics[0]
	if d.Code != "UNR5001" || d.Class != "UnresolvedReferenceError" || d.Severity != "ERROR" {
		t.Fatalf("diagnostic = %+v", d)
	}
	if d.Location == nil || d.Location.File != "test.ll" || d.Location.StartLine != 2 || d.Location.StartCol != 18 {
		t.Fatalf("location = %+v", d.Location)
	}
	if len(d.Notes) != 1 || d.Notes[0].Message != "referenced here" {
		t.Fatalf("notes = %+v", d.Notes)
	}
}

func TestJSONWithoutPositions(t *testing.T) {
	bag, fs := sampleBag(t)
	out := BuildDiagnosticsOutput(bag, fs, JSONOpts{})
	loc := out.Diagnostics[0].Location
	if loc.StartLine != 0 || loc.StartCol != 0 || loc.StartByte == 0 {
		t.Fatalf("location = %+v", loc)
	}
	if out.Diagnostics[0].Notes != nil {
		t.Fatalf("notes included without IncludeNotes")
	}
}

func TestJSONMaxLimit(t *testing.T) {
	bag, fs := sampleBag(t)
	bag.Add(diag.Diagnostic{Severity: diag.SevWarning, Code: diag.IOCacheError, Message: "cache write failed"})
	out := BuildDiagnosticsOutput(bag, fs, JSONOpts{Max: 1})
	if out.Count != 1 {
		t.Fatalf("count = %d, want 1", out.Count)
	}
	all := BuildDiagnosticsOutput(bag, fs, JSONOpts{})
	if all.Count != 2 || all.Diagnostics[1].Location != nil {
		t.Fatalf("I/O diagnostic must have no location: %+v", all.Diagnostics[1])
	}
}

func TestSarif(t *testing.T) {
	bag, fs := sampleBag(t)
	var buf bytes.Buffer
	if err := Sarif(&buf, bag, fs, SarifRunMeta{ToolName: "llasm", ToolVersion: "test", InvocationArgs: []string{"check"}}); err != nil {
		t.Fatalf("Sarif: %v", err)
	}
	var log sarifLog
	if err := json.Unmarshal(buf.Bytes(), &log); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if log.Version != "2.1.0" || len(log.Runs) != 1 {
		t.Fatalf("log = %+v", log)
	}
	run := log.Runs[0]
	if len(run.Results) != 1 || run.Results[0].RuleID != "UNR5001" || run.Results[0].Level != "error" {
		t.Fatalf("results = %+v", run.Results)
	}
	if r := run.Results[0].Locations[0].PhysicalLocation.Region; r.StartLine != 2 || r.ByteLength != 8 {
		t.Fatalf("region = %+v", r)
	}
	if len(run.Invocations) != 1 || run.Invocations[0].ExecutionSuccessful {
		t.Fatalf("invocations = %+v", run.Invocations)
	}
}

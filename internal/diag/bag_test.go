package diag

import (
	"strings"
	"testing"

	"llasm/internal/source"
)

func TestBagLimitAndSort(t *testing.T) {
	b := NewBag(2)
	b.Add(Diagnostic{Severity: SevError, Code: UnrGlobal, Primary: source.Span{Start: 9, End: 10}})
	b.Add(Diagnostic{Severity: SevWarning, Code: AtrAlignment, Primary: source.Span{Start: 1, End: 2}})
	if b.Add(Diagnostic{Severity: SevError, Code: SynUnexpectedToken}) {
		t.Fatalf("bag accepted a diagnostic beyond its limit")
	}
	b.Sort()
	if b.Items()[0].Code != AtrAlignment {
		t.Fatalf("expected diagnostics sorted by offset, got %v first", b.Items()[0].Code)
	}
	if !b.HasErrors() || !b.HasWarnings() {
		t.Fatalf("HasErrors/HasWarnings disagree with contents")
	}
}

func TestBagDedup(t *testing.T) {
	b := NewBag(0)
	d := Diagnostic{Severity: SevError, Code: DupGlobal, Message: "redefinition of global '@g'"}
	b.Add(d)
	b.Add(d)
	b.Add(Diagnostic{Severity: SevError, Code: DupGlobal, Message: "redefinition of global '@h'"})
	b.Dedup()
	if b.Len() != 2 {
		t.Fatalf("Dedup left %d items, want 2", b.Len())
	}
}

func TestCodeIDAndClass(t *testing.T) {
	tests := []struct {
		code  Code
		id    string
		class string
	}{
		{SynUnexpectedToken, "SYN2001", "SyntaxError"},
		{LexBadNumber, "LEX1003", "SyntaxError"},
		{DupNumbering, "DUP3005", "DuplicateDefinitionError"},
		{TypForwardRef, "TYP4001", "TypeMismatchError"},
		{UnrLocal, "UNR5002", "UnresolvedReferenceError"},
		{AtrNestedGroup, "ATR6002", "AttributeMisuseError"},
	}
	for _, tt := range tests {
		if got := tt.code.ID(); got != tt.id {
			t.Errorf("%d.ID() = %s, want %s", tt.code, got, tt.id)
		}
		if got := tt.code.Class(); got != tt.class {
			t.Errorf("%d.Class() = %s, want %s", tt.code, got, tt.class)
		}
	}
}

func TestDedupReporterAndShortFormat(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("m.ll", []byte("@g = global i32 0\n@g = global i32 1\n"))
	bag := NewBag(10)
	r := NewDedupReporter(BagReporter{Bag: bag})
	sp := source.Span{File: id, Start: 18, End: 20}
	for i := 0; i < 3; i++ {
		ReportError(r, DupGlobal, sp, "redefinition of global '@g'").Emit()
	}
	if bag.Len() != 1 || r.Suppressed() != 2 {
		t.Fatalf("got %d diagnostics, %d suppressed; want 1 and 2", bag.Len(), r.Suppressed())
	}
	out := FormatShort(bag.Items(), fs, false)
	if !strings.HasPrefix(out, "m.ll:2:1: ERROR DUP3002: ") {
		t.Fatalf("unexpected short format: %q", out)
	}
}

func TestSeverityNames(t *testing.T) {
	tests := []struct {
		sev         Severity
		text, sarif string
	}{
		{SevInfo, "INFO", "note"},
		{SevWarning, "WARNING", "warning"},
		{SevError, "ERROR", "error"},
		{Severity(9), "UNKNOWN", "none"},
	}
	for _, tt := range tests {
		if tt.sev.String() != tt.text || tt.sev.SarifLevel() != tt.sarif {
			t.Fatalf("%d: got %s/%s, want %s/%s", tt.sev, tt.sev, tt.sev.SarifLevel(), tt.text, tt.sarif)
		}
	}
	if b, _ := SevWarning.MarshalText(); string(b) != "WARNING" {
		t.Fatalf("MarshalText = %q", b)
	}
}

func TestFirstErrorKeepsFirst(t *testing.T) {
	var seen []Code
	r := &FirstError{Next: ReporterFunc(func(code Code, _ Severity, _ source.Span, _ string, _ []Note) {
		seen = append(seen, code)
	})}
	if _, ok := r.First(); ok {
		t.Fatalf("First before any report")
	}
	NewReportBuilder(r, SevWarning, IOCacheError, source.Span{}, "cache").Emit()
	d := ReportError(r, LexBadNumber, source.Span{Start: 3, End: 4}, "bad").
		WithNote(source.Span{Start: 1, End: 2}, "here").
		Emit()
	ReportError(r, SynUnexpectedToken, source.Span{}, "later").Emit()

	first, ok := r.First()
	if !ok || first.Code != LexBadNumber || len(first.Notes) != 1 {
		t.Fatalf("First = %+v, %v", first, ok)
	}
	if d.Code != LexBadNumber || len(seen) != 3 {
		t.Fatalf("emitted %+v, forwarded %v", d, seen)
	}
}

package driver

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"llasm/internal/asm"
	"llasm/internal/token"
	"llasm/internal/trace"
)

func batchPaths(t *testing.T) []string {
	t.Helper()
	files, err := ListFiles(filepath.Join("testdata", "batch"))
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
	return files
}

func TestListFiles(t *testing.T) {
	files := batchPaths(t)
	want := []string{
		filepath.Join("testdata", "batch", "broken.ll"),
		filepath.Join("testdata", "batch", "nested", "calls.ll"),
		filepath.Join("testdata", "batch", "ok.ll"),
	}
	if strings.Join(files, ",") != strings.Join(want, ",") {
		t.Fatalf("files = %v, want %v", files, want)
	}

	single, err := ListFiles(want[2])
	if err != nil || len(single) != 1 || single[0] != want[2] {
		t.Fatalf("single file: %v, %v", single, err)
	}
	if _, err := ListFiles(filepath.Join("testdata", "nope")); err == nil {
		t.Fatalf("expected error for missing path")
	}
}

func TestParseSource(t *testing.T) {
	res := ParseSource(context.Background(), "mem.ll", []byte("@x = global i32 7\n"), Options{})
	if res.Failed() || res.Err != nil {
		t.Fatalf("parse failed: %v", res.Err)
	}
	if res.Module.Global("x") == nil {
		t.Fatalf("@x missing")
	}
	if res.Timing == nil || len(res.Timing.Phases) == 0 {
		t.Fatalf("timing report missing")
	}
	if res.Bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %d", res.Bag.Len())
	}
}

func TestParseSourceReportsOneDiagnostic(t *testing.T) {
	res := ParseSource(context.Background(), "bad.ll", []byte("@x = global i32 7\n@x = global i32 8\n"), Options{})
	if !res.Failed() {
		t.Fatalf("expected failure")
	}
	if class, _ := asm.ClassOf(res.Err); class != asm.DuplicateDefinition {
		t.Fatalf("class = %s (%v)", class, res.Err)
	}
	if res.Bag.Len() != 1 {
		t.Fatalf("diagnostics = %d, want 1", res.Bag.Len())
	}
}

func TestParseUsesMemoryCache(t *testing.T) {
	mem := NewModuleCache(4)
	path := filepath.Join("testdata", "batch", "ok.ll")
	first, err := Parse(context.Background(), path, Options{Memory: mem})
	if err != nil || first.Failed() {
		t.Fatalf("parse: %v %v", err, first.Err)
	}
	if mem.Len() != 1 {
		t.Fatalf("cache size = %d", mem.Len())
	}
	second, err := Parse(context.Background(), path, Options{Memory: mem})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if second.Module != first.Module {
		t.Fatalf("second parse did not come from the cache")
	}
}

func TestModuleCacheChecksHash(t *testing.T) {
	mem := NewModuleCache(1)
	res := ParseSource(context.Background(), "a.ll", []byte("@x = global i8 0\n"), Options{})
	mem.Store("a.ll", res.File.Hash, res.Module)
	var other [32]byte
	other[0] = 1
	if _, ok := mem.Lookup("a.ll", other); ok {
		t.Fatalf("stale content hit")
	}
	if m, ok := mem.Lookup("a.ll", res.File.Hash); !ok || m != res.Module {
		t.Fatalf("lookup missed")
	}
	var nilCache *ModuleCache
	if _, ok := nilCache.Lookup("a.ll", res.File.Hash); ok {
		t.Fatalf("nil cache hit")
	}
}

func TestParseFiles(t *testing.T) {
	sink := &RecordingSink{}
	_, results, err := ParseFiles(context.Background(), batchPaths(t), Options{Jobs: 2, Progress: sink})
	if err != nil {
		t.Fatalf("ParseFiles: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("results = %d", len(results))
	}
	if !results[0].Failed() {
		t.Fatalf("broken.ll parsed")
	}
	if class, _ := asm.ClassOf(results[0].Err); class != asm.UnresolvedReference {
		t.Fatalf("broken.ll class = %s", class)
	}
	if results[1].Failed() || results[1].Stats.Functions != 2 {
		t.Fatalf("calls.ll: err=%v stats=%+v", results[1].Err, results[1].Stats)
	}
	if results[2].Failed() || results[2].Stats.Globals != 2 {
		t.Fatalf("ok.ll: err=%v stats=%+v", results[2].Err, results[2].Stats)
	}
	if failed, cached := Summarize(results); failed != 1 || cached != 0 {
		t.Fatalf("summary = %d failed, %d cached", failed, cached)
	}

	final := 0
	for _, ev := range sink.Events() {
		if ev.Stage == StageParse && (ev.Status == StatusDone || ev.Status == StatusError) {
			final++
		}
	}
	if final != 3 {
		t.Fatalf("final events = %d, want 3", final)
	}

	parse := results[2].Timing.Phases
	if len(parse) != 2 || parse[0].Name != "cache" || parse[1].Name != "parse" || parse[1].Bytes == 0 {
		t.Fatalf("ok.ll timing = %+v", parse)
	}
}

func TestParseFilesTracesLanes(t *testing.T) {
	ring := trace.NewRingTracer(256, trace.LevelPhase)
	ctx := trace.WithTracer(context.Background(), ring)
	if _, _, err := ParseFiles(ctx, batchPaths(t), Options{Jobs: 2}); err != nil {
		t.Fatalf("ParseFiles: %v", err)
	}

	var batch uint64
	files := 0
	for _, ev := range ring.Snapshot() {
		if ev.Kind != trace.KindSpanBegin {
			continue
		}
		switch ev.Scope {
		case trace.ScopeDriver:
			batch = ev.SpanID
		case trace.ScopeFile:
			files++
			if ev.Lane < 1 || ev.Lane > 2 {
				t.Fatalf("%s: lane = %d", ev.Name, ev.Lane)
			}
			if ev.ParentID != batch || batch == 0 {
				t.Fatalf("%s: parent = %d, batch = %d", ev.Name, ev.ParentID, batch)
			}
		}
	}
	if files != 3 {
		t.Fatalf("file spans = %d, want 3", files)
	}
}

func TestParseFilesLoadError(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "gone.ll")
	_, results, err := ParseFiles(context.Background(), []string{missing}, Options{})
	if err != nil {
		t.Fatalf("ParseFiles: %v", err)
	}
	if !results[0].Failed() || results[0].Bag.Len() != 1 {
		t.Fatalf("load error not reported: %+v", results[0])
	}
	if !os.IsNotExist(results[0].Err) {
		t.Fatalf("err = %v", results[0].Err)
	}
}

func TestParseFilesCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := ParseFiles(ctx, batchPaths(t), Options{Jobs: 1})
	if err == nil {
		t.Fatalf("expected cancellation error")
	}
}

func TestTokenizeSource(t *testing.T) {
	res := TokenizeSource(context.Background(), "t.ll", []byte("@x = global i32 1\n"), Options{})
	if n := len(res.Tokens); n == 0 || res.Tokens[n-1].Kind != token.EOF {
		t.Fatalf("token stream must end with EOF")
	}
	total := uint32(0)
	for _, c := range res.KindCounts() {
		total += c
	}
	if int(total) != len(res.Tokens)-1 {
		t.Fatalf("counts = %d, tokens = %d", total, len(res.Tokens))
	}
	if res.Bag.Len() != 0 {
		t.Fatalf("unexpected lexer diagnostics")
	}
}

func TestRoundTripSource(t *testing.T) {
	for _, path := range batchPaths(t)[1:] {
		t.Run(filepath.Base(path), func(t *testing.T) {
			res, err := RoundTrip(context.Background(), path, Options{})
			if err != nil {
				t.Fatalf("RoundTrip: %v", err)
			}
			if !res.OK() {
				t.Fatalf("round trip failed: diff=%v stable=%v\n%s", res.Diff, res.Stable, res.Printed)
			}
		})
	}

	bad := RoundTripSource(context.Background(), "bad.ll", []byte("@g = global i32* @nowhere\n"), Options{})
	if bad.OK() || bad.Second != nil {
		t.Fatalf("failed first parse must stop the cycle")
	}
}

package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestLevelShouldEmit(t *testing.T) {
	tests := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeDriver, false},
		{LevelError, ScopeFile, true},
		{LevelError, ScopeStep, false},
		{LevelPhase, ScopeFile, true},
		{LevelPhase, ScopeStep, false},
		{LevelDetail, ScopeStep, true},
		{LevelDetail, ScopeFunction, false},
		{LevelDebug, ScopeFunction, true},
	}
	for _, tt := range tests {
		t.Run(tt.level.String()+"/"+tt.scope.String(), func(t *testing.T) {
			if got := tt.level.ShouldEmit(tt.scope); got != tt.want {
				t.Fatalf("ShouldEmit = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseLevelAndMode(t *testing.T) {
	if l, err := ParseLevel("Detail"); err != nil || l != LevelDetail {
		t.Fatalf("ParseLevel(Detail) = %v, %v", l, err)
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
	if m, err := ParseMode("BOTH"); err != nil || m != ModeBoth {
		t.Fatalf("ParseMode(BOTH) = %v, %v", m, err)
	}
	if _, err := ParseMode(""); err == nil {
		t.Fatalf("expected error for empty mode")
	}
}

func TestSpanNesting(t *testing.T) {
	ring := NewRingTracer(16, LevelDebug)
	ctx := WithLane(WithTracer(context.Background(), ring), 3)

	file, fctx := Start(ctx, ScopeFile, "parse a.ll")
	fn := file.Child(ScopeFunction, "function @f")
	fn.WithExtra("blocks", "2").End("")
	inner, _ := Start(fctx, ScopeStep, "finalize")
	inner.End("")
	file.End("")
	file.End("") // повторный End ничего не пишет

	events := ring.Snapshot()
	if len(events) != 6 {
		t.Fatalf("got %d events, want 6", len(events))
	}
	for _, ev := range events {
		if ev.Lane != 3 {
			t.Fatalf("%s %s: lane = %d, want 3", ev.Kind, ev.Name, ev.Lane)
		}
	}
	if events[1].ParentID != file.ID() || events[3].ParentID != file.ID() {
		t.Fatalf("children not nested under file span: %+v", events)
	}
	if events[2].Extra["blocks"] != "2" {
		t.Fatalf("end event extra = %v", events[2].Extra)
	}
	for i := 1; i < len(events); i++ {
		if events[i].Seq <= events[i-1].Seq {
			t.Fatalf("sequence not increasing at %d", i)
		}
	}
}

func TestFilteredSpanIsSafe(t *testing.T) {
	ring := NewRingTracer(8, LevelPhase)
	ctx := WithTracer(context.Background(), ring)

	step, sctx := Start(ctx, ScopeStep, "print")
	if step.ID() != 0 {
		t.Fatalf("step span should be filtered at phase level")
	}
	if sctx != ctx {
		t.Fatalf("filtered span must not change the context")
	}
	step.WithExtra("k", "v").Child(ScopeFunction, "f").End("")
	step.Point("x", "")
	step.End("")

	var nilSpan *Span
	nilSpan.End("")
	if got := len(ring.Snapshot()); got != 0 {
		t.Fatalf("got %d events, want 0", got)
	}
}

func TestRingWraps(t *testing.T) {
	ring := NewRingTracer(3, LevelDebug)
	for i := 0; i < 5; i++ {
		Begin(ring, ScopeFile, "f", 0).End("")
	}
	events := ring.Snapshot()
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	for i := 1; i < len(events); i++ {
		if events[i].Seq <= events[i-1].Seq {
			t.Fatalf("snapshot not in order: %d then %d", events[i-1].Seq, events[i].Seq)
		}
	}
}

func TestFormatText(t *testing.T) {
	ev := &Event{
		Seq:    7,
		Kind:   KindSpanEnd,
		Scope:  ScopeStep,
		Lane:   2,
		Name:   "finalize",
		Detail: "ok",
		Extra:  map[string]string{"md": "3", "globals": "4"},
	}
	got := string(FormatEvent(ev, FormatText))
	want := "[     7] w2      ← finalize (ok) {globals=4, md=3}\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestStreamChromeIsValidJSON(t *testing.T) {
	var buf bytes.Buffer
	st := NewStreamTracer(&buf, LevelDebug, FormatChrome)
	Begin(st, ScopeFile, "parse", 0).End("")
	if err := st.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	var doc struct {
		TraceEvents []struct {
			Name string `json:"name"`
			Ph   string `json:"ph"`
		} `json:"traceEvents"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("invalid chrome trace: %v\n%s", err, buf.String())
	}
	if len(doc.TraceEvents) != 2 || doc.TraceEvents[0].Ph != "B" || doc.TraceEvents[1].Ph != "E" {
		t.Fatalf("unexpected events: %+v", doc.TraceEvents)
	}
}

func TestErrorLevelDumpsOnlyWhenAsked(t *testing.T) {
	var out bytes.Buffer
	cfg := Config{Level: LevelError, Mode: ModeStream, Output: &out}
	if cfg.EffectiveMode() != ModeRing {
		t.Fatalf("error level must use the ring")
	}
	tr, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	sp := Begin(tr, ScopeFile, "parse bad.ll", 0)
	sp.Child(ScopeStep, "finalize").End("")
	sp.WithExtra("error", "boom").End("")
	if out.Len() != 0 {
		t.Fatalf("nothing should be written before the dump, got %q", out.String())
	}

	if err := DumpRecent(tr, cfg); err != nil {
		t.Fatalf("DumpRecent: %v", err)
	}
	text := out.String()
	if !strings.HasPrefix(text, "--- last 2 trace events ---\n") {
		t.Fatalf("missing header:\n%s", text)
	}
	if strings.Contains(text, "finalize") || !strings.Contains(text, "error=boom") {
		t.Fatalf("unexpected dump:\n%s", text)
	}
}

func TestEffectiveFormat(t *testing.T) {
	tests := map[string]Format{
		"-":          FormatText,
		"":           FormatText,
		"run.ndjson": FormatNDJSON,
		"run.json":   FormatChrome,
		"run.trace":  FormatText,
	}
	for path, want := range tests {
		if got := (Config{OutputPath: path}).EffectiveFormat(); got != want {
			t.Fatalf("%q: format = %d, want %d", path, got, want)
		}
	}
}

func TestNopAndContext(t *testing.T) {
	if FromContext(context.Background()) != Nop {
		t.Fatalf("empty context should give Nop")
	}
	tr, err := New(Config{Level: LevelOff})
	if err != nil || tr.Enabled() {
		t.Fatalf("off level should give a disabled tracer")
	}
	if h := StartHeartbeat(tr, 0); h != nil {
		t.Fatalf("heartbeat must not start for a disabled tracer")
	}
}

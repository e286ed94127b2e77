package observ

import (
	"bytes"
	"strings"
	"testing"
)

func TestTimerReport(t *testing.T) {
	tm := NewTimer()
	load := tm.Begin("load")
	tm.EndBytes(load, 1<<20, "")
	parse := tm.Begin("parse")
	tm.End(parse, "ok")
	tm.End(99, "ignored")

	r := tm.Report()
	if len(r.Phases) != 2 {
		t.Fatalf("got %d phases, want 2", len(r.Phases))
	}
	if r.Phases[0].Bytes != 1<<20 || r.Phases[0].Count != 1 {
		t.Fatalf("load phase = %+v", r.Phases[0])
	}
	if r.Phases[1].Note != "ok" {
		t.Fatalf("parse note = %q", r.Phases[1].Note)
	}
	if r.TotalMS < r.Phases[0].DurationMS {
		t.Fatalf("total %f below phase %f", r.TotalMS, r.Phases[0].DurationMS)
	}
	if (&Timer{}).Report().Phases != nil {
		t.Fatalf("empty timer should give an empty report")
	}
}

func TestMerge(t *testing.T) {
	a := Report{TotalMS: 3, Phases: []PhaseReport{{Name: "load", DurationMS: 1, Bytes: 10, Count: 1}, {Name: "parse", DurationMS: 2, Count: 1}}}
	b := Report{TotalMS: 4, Phases: []PhaseReport{{Name: "cache", DurationMS: 1}, {Name: "parse", DurationMS: 3, Count: 1}}}

	m := Merge(a, b)
	if m.TotalMS != 7 {
		t.Fatalf("total = %v, want 7", m.TotalMS)
	}
	want := []PhaseReport{
		{Name: "load", DurationMS: 1, Bytes: 10, Count: 1},
		{Name: "parse", DurationMS: 5, Count: 2},
		{Name: "cache", DurationMS: 1, Count: 1},
	}
	if len(m.Phases) != len(want) {
		t.Fatalf("phases = %+v", m.Phases)
	}
	for i := range want {
		if m.Phases[i] != want[i] {
			t.Fatalf("phase %d = %+v, want %+v", i, m.Phases[i], want[i])
		}
	}
}

func TestWriteText(t *testing.T) {
	r := Report{TotalMS: 1000, Phases: []PhaseReport{
		{Name: "parse", DurationMS: 1000, Bytes: 2 << 20, Count: 3},
	}}
	var buf bytes.Buffer
	r.WriteText(&buf)
	out := buf.String()
	for _, want := range []string{"timings:\n", "x3", "2.0 MB/s", "total"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output misses %q:\n%s", want, out)
		}
	}
}

func TestSlowest(t *testing.T) {
	got := Slowest(map[string]float64{"a.ll": 1, "b.ll": 5, "c.ll": 5, "d.ll": 2}, 3)
	want := []string{"b.ll", "c.ll", "d.ll"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("Slowest = %v, want %v", got, want)
	}
}

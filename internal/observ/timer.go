// Package observ measures how long the reader spends on each phase of a
// file (load, cache lookup, parse, print) and folds per-file numbers into a
// batch report.
package observ

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"
)

// Phase is one measured step.
type Phase struct {
	Name  string
	Start time.Time
	Dur   time.Duration
	Bytes int // input consumed by the phase, 0 if not meaningful
	Note  string
}

// Timer collects phases in the order they were started. Not safe for
// concurrent use; batch workers keep one timer per file.
type Timer struct {
	phases []Phase
}

func NewTimer() *Timer { return &Timer{phases: make([]Phase, 0, 4)} }

// Begin starts a phase and returns its index for End.
func (t *Timer) Begin(name string) int {
	t.phases = append(t.phases, Phase{Name: name, Start: time.Now()})
	return len(t.phases) - 1
}

// End finishes phase idx. Unknown indices are ignored.
func (t *Timer) End(idx int, note string) {
	if idx < 0 || idx >= len(t.phases) {
		return
	}
	p := &t.phases[idx]
	p.Dur = time.Since(p.Start)
	p.Note = note
}

// EndBytes is End for a phase that consumed n bytes of input.
func (t *Timer) EndBytes(idx, n int, note string) {
	t.End(idx, note)
	if idx >= 0 && idx < len(t.phases) {
		t.phases[idx].Bytes = n
	}
}

// Summary is the text form of Report.
func (t *Timer) Summary() string {
	var sb strings.Builder
	r := t.Report()
	r.WriteText(&sb)
	return sb.String()
}

// PhaseReport is the serializable form of a phase. Count is how many
// phases with this name were folded into it.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Bytes      int     `json:"bytes,omitempty"`
	Count      int     `json:"count,omitempty"`
	Note       string  `json:"note,omitempty"`
}

// MBPerSec is the input throughput, 0 when unknown.
func (p PhaseReport) MBPerSec() float64 {
	if p.Bytes == 0 || p.DurationMS <= 0 {
		return 0
	}
	return float64(p.Bytes) / (1 << 20) / (p.DurationMS / 1000)
}

type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

// Report freezes the phases measured so far.
func (t *Timer) Report() Report {
	if len(t.phases) == 0 {
		return Report{}
	}
	r := Report{Phases: make([]PhaseReport, len(t.phases))}
	var total time.Duration
	for i, p := range t.phases {
		total += p.Dur
		r.Phases[i] = PhaseReport{
			Name:       p.Name,
			DurationMS: millis(p.Dur),
			Bytes:      p.Bytes,
			Count:      1,
			Note:       p.Note,
		}
	}
	r.TotalMS = millis(total)
	return r
}

// Merge sums reports phase by phase. Phases keep the order in which their
// names first appear; notes are dropped.
func Merge(reports ...Report) Report {
	var out Report
	index := make(map[string]int)
	for _, r := range reports {
		out.TotalMS += r.TotalMS
		for _, p := range r.Phases {
			i, ok := index[p.Name]
			if !ok {
				i = len(out.Phases)
				index[p.Name] = i
				out.Phases = append(out.Phases, PhaseReport{Name: p.Name})
			}
			dst := &out.Phases[i]
			dst.DurationMS += p.DurationMS
			dst.Bytes += p.Bytes
			dst.Count += max(p.Count, 1)
		}
	}
	return out
}

// Slowest returns the n names with the largest value, ties by name.
func Slowest(byName map[string]float64, n int) []string {
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	slices.SortFunc(names, func(a, b string) int {
		switch {
		case byName[a] > byName[b]:
			return -1
		case byName[a] < byName[b]:
			return 1
		}
		return strings.Compare(a, b)
	})
	return names[:min(n, len(names))]
}

// WriteText prints the report as an aligned table.
func (r Report) WriteText(w io.Writer) {
	fmt.Fprintln(w, "timings:")
	for _, p := range r.Phases {
		fmt.Fprintf(w, "  %-20s %9.2f ms", p.Name, p.DurationMS)
		if p.Count > 1 {
			fmt.Fprintf(w, "  x%d", p.Count)
		}
		if mbs := p.MBPerSec(); mbs > 0 {
			fmt.Fprintf(w, "  %.1f MB/s", mbs)
		}
		if p.Note != "" {
			fmt.Fprintf(w, "  // %s", p.Note)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "  %-20s %9.2f ms\n", "total", r.TotalMS)
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

package ui

import (
	"errors"
	"strings"
	"testing"

	"llasm/internal/driver"
)

func newTestModel(files ...string) *batchModel {
	return NewProgressModel("check", files, make(chan driver.Event)).(*batchModel)
}

func TestApplyEventMovesCounts(t *testing.T) {
	m := newTestModel("a.ll", "b.ll", "c.ll")

	m.applyEvent(driver.Event{File: "a.ll", Stage: driver.StageParse, Status: driver.StatusWorking})
	if m.rows[0].state != stateParsing || m.counts[stateQueued] != 2 {
		t.Fatalf("a.ll state = %s, queued = %d", m.rows[0].state, m.counts[stateQueued])
	}
	m.applyEvent(driver.Event{File: "a.ll", Stage: driver.StageParse, Status: driver.StatusDone})
	m.applyEvent(driver.Event{File: "b.ll", Stage: driver.StageParse, Status: driver.StatusCached})
	m.applyEvent(driver.Event{File: "c.ll", Stage: driver.StageParse, Status: driver.StatusError,
		Err: errors.New("use of undefined value '%x'\nmore")})
	// после финального статуса строка не меняется
	m.applyEvent(driver.Event{File: "c.ll", Stage: driver.StageParse, Status: driver.StatusWorking})
	// незнакомые файлы игнорируются
	m.applyEvent(driver.Event{File: "d.ll", Stage: driver.StageParse, Status: driver.StatusError})

	if m.counts[stateOK] != 1 || m.counts[stateCached] != 1 || m.counts[stateFailed] != 1 {
		t.Fatalf("counts = %v", m.counts)
	}
	if m.rows[2].state != stateFailed || m.rows[2].err != "use of undefined value '%x'" {
		t.Fatalf("c.ll row = %+v", m.rows[2])
	}
	if m.fraction() != 1 {
		t.Fatalf("fraction = %v, want 1", m.fraction())
	}
}

func TestViewShowsActiveAndFailed(t *testing.T) {
	m := newTestModel("ok.ll", "busy.ll", "bad.ll")
	m.applyEvent(driver.Event{File: "ok.ll", Stage: driver.StageParse, Status: driver.StatusDone})
	m.applyEvent(driver.Event{File: "busy.ll", Stage: driver.StageLoad, Status: driver.StatusWorking})
	m.applyEvent(driver.Event{File: "bad.ll", Stage: driver.StageLoad, Status: driver.StatusError, Err: errors.New("no such file")})

	view := m.View()
	for _, want := range []string{"2/3", "loading", "busy.ll", "failed", "bad.ll", "no such file"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view misses %q:\n%s", want, view)
		}
	}
	if strings.Contains(view, "ok.ll") {
		t.Fatalf("finished files should not be listed:\n%s", view)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short.ll", 20, "short.ll"},
		{"a/very/long/path/file.ll", 10, "a/very/..."},
		{"abcdef", 2, "ab"},
		{"anything", 0, "anything"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

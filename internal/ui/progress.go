// Package ui renders a live view of a batch check in the terminal.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"llasm/internal/driver"
)

// maxActive bounds the "in flight" section; a batch of thousands of files
// would not fit on screen otherwise.
const maxActive = 8

type fileState uint8

const (
	stateQueued fileState = iota
	stateLoading
	stateParsing
	statePrinting
	stateOK
	stateCached
	stateFailed
)

var stateText = [...]string{
	stateQueued:   "queued",
	stateLoading:  "loading",
	stateParsing:  "parsing",
	statePrinting: "printing",
	stateOK:       "ok",
	stateCached:   "cached",
	stateFailed:   "failed",
}

func (s fileState) String() string { return stateText[s] }

func (s fileState) finished() bool { return s >= stateOK }

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	activeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

type fileRow struct {
	path    string
	state   fileState
	elapsed time.Duration
	err     string // первая строка ошибки
}

type batchModel struct {
	title   string
	events  <-chan driver.Event
	spinner spinner.Model
	bar     progress.Model
	rows    []fileRow
	index   map[string]int
	counts  [len(stateText)]int
	failed  []int // rows in the order they failed
	width   int
	done    bool
}

type eventMsg driver.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model for a batch check over files.
// The model quits when events is closed.
func NewProgressModel(title string, files []string, events <-chan driver.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = activeStyle

	m := &batchModel{
		title:   title,
		events:  events,
		spinner: sp,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		rows:    make([]fileRow, len(files)),
		index:   make(map[string]int, len(files)),
		width:   80,
	}
	m.bar.Width = m.width - 12
	for i, f := range files {
		m.rows[i] = fileRow{path: f}
		m.index[f] = i
	}
	m.counts[stateQueued] = len(files)
	return m
}

func (m *batchModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.next())
}

func (m *batchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		return m, tea.Batch(m.applyEvent(driver.Event(msg)), m.next())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case tea.KeyMsg:
		// Ctrl+C only closes the view; the batch keeps its own context
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.bar.Width = max(msg.Width-12, 10)
		}
	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *batchModel) next() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

// stateOf maps a driver event onto a row state.
func stateOf(ev driver.Event) fileState {
	switch ev.Status {
	case driver.StatusQueued:
		return stateQueued
	case driver.StatusCached:
		return stateCached
	case driver.StatusError:
		return stateFailed
	case driver.StatusDone:
		if ev.Stage == driver.StageLoad {
			return stateParsing
		}
		return stateOK
	}
	switch ev.Stage {
	case driver.StageLoad:
		return stateLoading
	case driver.StageRoundTrip:
		return statePrinting
	}
	return stateParsing
}

func (m *batchModel) applyEvent(ev driver.Event) tea.Cmd {
	i, ok := m.index[ev.File]
	if !ok {
		return nil
	}
	row := &m.rows[i]
	if row.state.finished() {
		return nil
	}
	next := stateOf(ev)
	m.counts[row.state]--
	m.counts[next]++
	row.state = next
	row.elapsed = ev.Elapsed
	if next == stateFailed {
		m.failed = append(m.failed, i)
		if ev.Err != nil {
			row.err, _, _ = strings.Cut(ev.Err.Error(), "\n")
		}
	}
	return m.bar.SetPercent(m.fraction())
}

func (m *batchModel) fraction() float64 {
	if len(m.rows) == 0 {
		return 1
	}
	finished := m.counts[stateOK] + m.counts[stateCached] + m.counts[stateFailed]
	return float64(finished) / float64(len(m.rows))
}

func (m *batchModel) View() string {
	if len(m.rows) == 0 {
		return ""
	}
	var b strings.Builder

	mark := m.spinner.View()
	if m.done {
		mark = okStyle.Render("✓")
		if m.counts[stateFailed] > 0 {
			mark = failStyle.Render("✗")
		}
	}
	fmt.Fprintf(&b, "%s %s  %s\n", mark, titleStyle.Render(m.title), m.summary())

	nameWidth := max(m.width-14, 20)
	shown := 0
	for _, row := range m.rows {
		if row.state == stateQueued || row.state.finished() {
			continue
		}
		if shown == maxActive {
			b.WriteString(dimStyle.Render("  ...") + "\n")
			break
		}
		fmt.Fprintf(&b, "  %s %s\n", activeStyle.Render(fmt.Sprintf("%-9s", row.state)), truncate(row.path, nameWidth))
		shown++
	}

	for _, i := range m.failed {
		row := m.rows[i]
		fmt.Fprintf(&b, "  %s %s\n", failStyle.Render(fmt.Sprintf("%-9s", row.state)), truncate(row.path, nameWidth))
		if row.err != "" {
			b.WriteString(dimStyle.Render("            "+truncate(row.err, nameWidth-2)) + "\n")
		}
	}

	b.WriteString("\n  ")
	if m.done {
		b.WriteString(m.bar.ViewAs(1))
	} else {
		b.WriteString(m.bar.View())
	}
	b.WriteString("\n")
	return b.String()
}

func (m *batchModel) summary() string {
	finished := m.counts[stateOK] + m.counts[stateCached] + m.counts[stateFailed]
	parts := []string{fmt.Sprintf("%d/%d", finished, len(m.rows))}
	if n := m.counts[stateOK]; n > 0 {
		parts = append(parts, okStyle.Render(fmt.Sprintf("%d ok", n)))
	}
	if n := m.counts[stateCached]; n > 0 {
		parts = append(parts, okStyle.Render(fmt.Sprintf("%d cached", n)))
	}
	if n := m.counts[stateFailed]; n > 0 {
		parts = append(parts, failStyle.Render(fmt.Sprintf("%d failed", n)))
	}
	return strings.Join(parts, dimStyle.Render(" · "))
}

// truncate cuts value to width display cells, marking the cut with "...".
func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}

package trace

import "time"

// Kind is what an event marks.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint
	KindHeartbeat
)

var kindNames = [...]string{
	KindSpanBegin: "begin",
	KindSpanEnd:   "end",
	KindPoint:     "point",
	KindHeartbeat: "heartbeat",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "unknown"
}

// Scope says how much of the work an event covers. Smaller values are
// coarser; a child span never has a coarser scope than its parent.
type Scope uint8

const (
	// ScopeDriver covers a CLI command or a batch of files.
	ScopeDriver Scope = iota + 1
	// ScopeFile covers reading one .ll file.
	ScopeFile
	// ScopeStep covers a step inside one file: tokenizing, printing,
	// one of the finalize checks.
	ScopeStep
	// ScopeFunction covers one function body.
	ScopeFunction
)

var scopeNames = [...]string{
	ScopeDriver:   "driver",
	ScopeFile:     "file",
	ScopeStep:     "step",
	ScopeFunction: "function",
}

func (s Scope) String() string {
	if int(s) < len(scopeNames) && scopeNames[s] != "" {
		return scopeNames[s]
	}
	return "unknown"
}

// Event is one trace record.
type Event struct {
	Time     time.Time
	Seq      uint64 // assigned once when the event is created
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64 // 0 for roots
	// Lane is the batch worker that produced the event, 0 outside of
	// ParseFiles. Chrome output uses it as the thread id.
	Lane   int
	Name   string
	Detail string
	Extra  map[string]string
}

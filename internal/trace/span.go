package trace

import (
	"context"
	"sync/atomic"
	"time"
)

var (
	globalSeq   atomic.Uint64
	globalSpans atomic.Uint64
	openSpans   atomic.Int64
)

// NextSeq returns the next event sequence number.
func NextSeq() uint64 {
	return globalSeq.Add(1)
}

// NextSpanID returns a fresh span id.
func NextSpanID() uint64 {
	return globalSpans.Add(1)
}

// OpenSpans is the number of spans begun and not yet ended.
func OpenSpans() int64 {
	return openSpans.Load()
}

// Span is one traced piece of work. A nil *Span and the span returned for a
// filtered scope are both safe to use and record nothing.
type Span struct {
	tracer  Tracer
	id      uint64
	parent  uint64
	lane    int
	scope   Scope
	name    string
	started time.Time
	extra   map[string]string
	ended   bool
}

var disabled = &Span{tracer: Nop}

// Begin starts a span under parent (0 for a root) on lane 0.
func Begin(t Tracer, scope Scope, name string, parent uint64) *Span {
	return begin(t, scope, name, SpanContext{SpanID: parent})
}

// Start begins a span under the span recorded in ctx and returns a context
// that makes the new span the parent of later work.
func Start(ctx context.Context, scope Scope, name string) (*Span, context.Context) {
	sc := CurrentSpan(ctx)
	sp := begin(FromContext(ctx), scope, name, sc)
	if sp.id == 0 {
		return sp, ctx
	}
	return sp, WithSpanContext(ctx, SpanContext{SpanID: sp.id, Lane: sc.Lane})
}

// Child begins a span under s on the same lane.
func (s *Span) Child(scope Scope, name string) *Span {
	if s == nil || s.id == 0 {
		return disabled
	}
	return begin(s.tracer, scope, name, SpanContext{SpanID: s.id, Lane: s.lane})
}

func begin(t Tracer, scope Scope, name string, sc SpanContext) *Span {
	if t == nil || !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return disabled
	}
	s := &Span{
		tracer:  t,
		id:      NextSpanID(),
		parent:  sc.SpanID,
		lane:    sc.Lane,
		scope:   scope,
		name:    name,
		started: time.Now(),
	}
	openSpans.Add(1)
	t.Emit(s.event(KindSpanBegin, s.started, ""))
	return s
}

func (s *Span) event(kind Kind, at time.Time, detail string) *Event {
	return &Event{
		Time:     at,
		Seq:      NextSeq(),
		Kind:     kind,
		Scope:    s.scope,
		SpanID:   s.id,
		ParentID: s.parent,
		Lane:     s.lane,
		Name:     s.name,
		Detail:   detail,
	}
}

// End closes the span and returns its duration. Only the first call emits.
func (s *Span) End(detail string) time.Duration {
	if s == nil || s.id == 0 || s.ended {
		return 0
	}
	s.ended = true
	openSpans.Add(-1)
	now := time.Now()
	ev := s.event(KindSpanEnd, now, detail)
	ev.Extra = s.extra
	s.tracer.Emit(ev)
	return now.Sub(s.started)
}

// Point records an instant event inside the span.
func (s *Span) Point(name, detail string) {
	if s == nil || s.id == 0 {
		return
	}
	ev := s.event(KindPoint, time.Now(), detail)
	ev.Name = name
	s.tracer.Emit(ev)
}

// WithExtra attaches key=value to the end event.
func (s *Span) WithExtra(key, value string) *Span {
	if s == nil || s.id == 0 {
		return s
	}
	if s.extra == nil {
		s.extra = make(map[string]string)
	}
	s.extra[key] = value
	return s
}

// ID is 0 for spans that record nothing.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}

// Context returns the propagation context of s.
func (s *Span) Context() SpanContext {
	if s == nil {
		return SpanContext{}
	}
	return SpanContext{SpanID: s.id, Lane: s.lane}
}

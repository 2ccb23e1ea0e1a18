package trace

import (
	"sync"
	"sync/atomic"
	"time"
)

var (
	globalSeq   atomic.Uint64
	globalSpans atomic.Uint64
	openSpans   atomic.Int64
)

// NextSeq returns a monotonically increasing sequence number.
func NextSeq() uint64 { return globalSeq.Add(1) }

// NextSpanID returns a unique span ID.
func NextSpanID() uint64 { return globalSpans.Add(1) }

// OpenSpans reports how many emitted spans have not ended yet.
func OpenSpans() int64 { return openSpans.Load() }

// Origin places an event in the span tree and in the module.
type Origin struct {
	Parent uint64
	Method string
}

// Span tracks one begin/end pair. The zero-cost span returned when the
// scope is filtered out ignores every call.
type Span struct {
	tracer  Tracer
	id      uint64
	at      Origin
	scope   Scope
	name    string
	started time.Time
	extra   map[string]string
	once    sync.Once
}

// Begin emits a SpanBegin event under at and returns the span.
func Begin(t Tracer, scope Scope, name string, at Origin) *Span {
	if t == nil || !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return &Span{tracer: Nop}
	}

	s := &Span{
		tracer:  t,
		id:      NextSpanID(),
		at:      at,
		scope:   scope,
		name:    name,
		started: time.Now(),
	}
	openSpans.Add(1)
	t.Emit(s.event(KindSpanBegin, s.started, ""))
	return s
}

func (s *Span) event(kind Kind, at time.Time, detail string) *Event {
	ev := &Event{
		Time:     at,
		Kind:     kind,
		Scope:    s.scope,
		SpanID:   s.id,
		ParentID: s.at.Parent,
		Method:   s.at.Method,
		Name:     s.name,
		Detail:   detail,
	}
	if kind == KindSpanEnd {
		ev.Extra = s.extra
	}
	return ev
}

// End emits the SpanEnd event and returns the span duration. Only the
// first call emits.
func (s *Span) End(detail string) time.Duration {
	if s == nil || s.tracer == nil || !s.tracer.Enabled() {
		return 0
	}
	dur := time.Since(s.started)
	s.once.Do(func() {
		openSpans.Add(-1)
		s.tracer.Emit(s.event(KindSpanEnd, time.Now(), detail))
	})
	return dur
}

// WithExtra attaches a key-value pair to the end event.
func (s *Span) WithExtra(key, value string) *Span {
	if s == nil || s.tracer == nil || !s.tracer.Enabled() {
		return s
	}
	if s.extra == nil {
		s.extra = make(map[string]string)
	}
	s.extra[key] = value
	return s
}

// ID returns the span ID, 0 for a filtered span.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}

// Point emits an instant event.
func Point(t Tracer, scope Scope, name, detail string, at Origin) {
	if t == nil || !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return
	}
	t.Emit(&Event{
		Time:     time.Now(),
		Kind:     KindPoint,
		Scope:    scope,
		ParentID: at.Parent,
		Method:   at.Method,
		Name:     name,
		Detail:   detail,
	})
}

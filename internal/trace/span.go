package trace

import (
	"sync/atomic"
	"time"
)

var (
	globalSeq   atomic.Uint64
	globalSpans atomic.Uint64
)

// NextSeq returns a monotonically increasing sequence number.
func NextSeq() uint64 { return globalSeq.Add(1) }

// NextSpanID returns a unique span ID.
func NextSpanID() uint64 { return globalSpans.Add(1) }

// Span tracks one operation from Begin to End.
type Span struct {
	tracer   Tracer
	id       uint64
	parentID uint64
	scope    Scope
	name     string
	started  time.Time
	extra    map[string]string
}

// Begin emits a span-begin event and returns the span. When t is disabled
// or filters out scope, the returned span is inert.
func Begin(t Tracer, scope Scope, name string, parent uint64) *Span {
	if t == nil || !t.Enabled() || !t.Level().ShouldEmit(KindSpanBegin, scope) {
		return &Span{tracer: Nop, parentID: parent}
	}
	s := &Span{
		tracer:   t,
		id:       NextSpanID(),
		parentID: parent,
		scope:    scope,
		name:     name,
		started:  time.Now(),
	}
	t.Emit(&Event{
		Time:     s.started,
		Kind:     KindSpanBegin,
		Scope:    scope,
		SpanID:   s.id,
		ParentID: parent,
		Name:     name,
	})
	return s
}

// WithExtra attaches a key-value pair to the end event.
func (s *Span) WithExtra(key, value string) *Span {
	if s == nil || !s.tracer.Enabled() {
		return s
	}
	if s.extra == nil {
		s.extra = make(map[string]string)
	}
	s.extra[key] = value
	return s
}

// End emits the span-end event and returns the span duration.
func (s *Span) End(detail string) time.Duration {
	if s == nil || !s.tracer.Enabled() {
		return 0
	}
	dur := time.Since(s.started)
	s.tracer.Emit(&Event{
		Time:     time.Now(),
		Kind:     KindSpanEnd,
		Scope:    s.scope,
		SpanID:   s.id,
		ParentID: s.parentID,
		Name:     s.name,
		Detail:   detail,
		Extra:    s.extra,
	})
	return dur
}

// Fail emits an error event under the span and ends it.
func (s *Span) Fail(err error) {
	if s == nil || err == nil {
		return
	}
	if s.tracer.Enabled() {
		s.tracer.Emit(&Event{
			Time:     time.Now(),
			Kind:     KindError,
			Scope:    s.scope,
			SpanID:   s.id,
			ParentID: s.parentID,
			Name:     s.name,
			Detail:   err.Error(),
		})
	}
	s.End("failed")
}

// ID returns the span ID; 0 for inert spans.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}

// Point emits an instant event under parent.
func Point(t Tracer, scope Scope, name, detail string, parent uint64) {
	if t == nil || !t.Enabled() || !t.Level().ShouldEmit(KindPoint, scope) {
		return
	}
	t.Emit(&Event{
		Time:     time.Now(),
		Kind:     KindPoint,
		Scope:    scope,
		ParentID: parent,
		Name:     name,
		Detail:   detail,
	})
}

// Error emits a standalone error event.
func Error(t Tracer, scope Scope, name string, err error, parent uint64) {
	if t == nil || err == nil || !t.Enabled() {
		return
	}
	t.Emit(&Event{
		Time:     time.Now(),
		Kind:     KindError,
		Scope:    scope,
		ParentID: parent,
		Name:     name,
		Detail:   err.Error(),
	})
}

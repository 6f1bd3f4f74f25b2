package trace

import (
	"io"
	"sync"
)

// RingTracer keeps the most recent events in memory so they can be dumped
// after a failure.
type RingTracer struct {
	mu     sync.Mutex
	events []Event
	head   int
	full   bool
	level  Level
}

// NewRingTracer returns a ring of the given capacity (4096 when <= 0).
func NewRingTracer(capacity int, level Level) *RingTracer {
	if capacity <= 0 {
		capacity = 4096
	}
	return &RingTracer{events: make([]Event, capacity), level: level}
}

// Emit stores a copy of ev, overwriting the oldest event when full.
func (t *RingTracer) Emit(ev *Event) {
	if !t.level.ShouldEmit(ev.Kind, ev.Scope) {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	ev.Seq = NextSeq()
	t.events[t.head] = *ev
	t.head = (t.head + 1) % len(t.events)
	if t.head == 0 {
		t.full = true
	}
}

// Snapshot returns the stored events, oldest first.
func (t *RingTracer) Snapshot() []Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.full {
		return append([]Event(nil), t.events[:t.head]...)
	}
	out := make([]Event, 0, len(t.events))
	out = append(out, t.events[t.head:]...)
	return append(out, t.events[:t.head]...)
}

// Dump writes the stored events to w.
func (t *RingTracer) Dump(w io.Writer, format Format) error {
	for _, ev := range t.Snapshot() {
		if _, err := w.Write(FormatEvent(&ev, format)); err != nil {
			return err
		}
	}
	return nil
}

func (t *RingTracer) Flush() error  { return nil }
func (t *RingTracer) Close() error  { return nil }
func (t *RingTracer) Level() Level  { return t.level }
func (t *RingTracer) Enabled() bool { return t.level > LevelOff }

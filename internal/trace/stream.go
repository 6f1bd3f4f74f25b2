package trace

import (
	"io"
	"sync"
)

// StreamTracer writes events to an io.Writer as they arrive.
type StreamTracer struct {
	mu     sync.Mutex
	w      io.Writer
	level  Level
	format Format
}

// NewStreamTracer returns a tracer writing to w.
func NewStreamTracer(w io.Writer, level Level, format Format) *StreamTracer {
	if format == FormatAuto {
		format = FormatText
	}
	return &StreamTracer{w: w, level: level, format: format}
}

// Emit writes ev. Write errors are dropped so tracing never fails a rename.
func (t *StreamTracer) Emit(ev *Event) {
	if !t.level.ShouldEmit(ev.Kind, ev.Scope) {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	ev.Seq = NextSeq()
	_, _ = t.w.Write(FormatEvent(ev, t.format)) //nolint:errcheck
}

// Flush flushes the writer when it supports it.
func (t *StreamTracer) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if f, ok := t.w.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}

// Close flushes and closes the writer when it is an io.Closer.
func (t *StreamTracer) Close() error {
	if err := t.Flush(); err != nil {
		return err
	}
	if c, ok := t.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (t *StreamTracer) Level() Level  { return t.level }
func (t *StreamTracer) Enabled() bool { return t.level > LevelOff }

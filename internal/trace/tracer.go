package trace

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Tracer receives trace events. Implementations must be goroutine-safe.
type Tracer interface {
	Emit(ev *Event)
	Flush() error
	Close() error
	Level() Level
	Enabled() bool
}

// Config describes a tracer to build.
type Config struct {
	Level      Level
	Format     Format
	Output     io.Writer // takes precedence over OutputPath
	OutputPath string    // "-" or "" for stderr
	RingSize   int       // when > 0, also keep the last RingSize events in memory
}

// New builds the tracer described by cfg.
func New(cfg Config) (Tracer, error) {
	if cfg.Level == LevelOff {
		return Nop, nil
	}
	format := cfg.Format
	if format == FormatAuto {
		format = FormatText
		if strings.HasSuffix(cfg.OutputPath, ".ndjson") || strings.HasSuffix(cfg.OutputPath, ".json") {
			format = FormatNDJSON
		}
	}
	w, err := openOutput(cfg)
	if err != nil {
		return nil, err
	}
	stream := NewStreamTracer(w, cfg.Level, format)
	if cfg.RingSize <= 0 {
		return stream, nil
	}
	return Tee(stream, NewRingTracer(cfg.RingSize, cfg.Level)), nil
}

func openOutput(cfg Config) (io.Writer, error) {
	if cfg.Output != nil {
		return cfg.Output, nil
	}
	if cfg.OutputPath == "" || cfg.OutputPath == "-" {
		return nopCloser{os.Stderr}, nil
	}
	f, err := os.Create(cfg.OutputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace output: %w", err)
	}
	return f, nil
}

// nopCloser keeps Close from closing stderr.
type nopCloser struct{ io.Writer }

type teeTracer []Tracer

// Tee fans every event out to all tracers.
func Tee(tracers ...Tracer) Tracer {
	return teeTracer(tracers)
}

func (t teeTracer) Emit(ev *Event) {
	for _, tr := range t {
		cp := *ev
		tr.Emit(&cp)
	}
}

func (t teeTracer) Flush() error {
	var first error
	for _, tr := range t {
		if err := tr.Flush(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (t teeTracer) Close() error {
	var first error
	for _, tr := range t {
		if err := tr.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (t teeTracer) Level() Level {
	lvl := LevelOff
	for _, tr := range t {
		lvl = max(lvl, tr.Level())
	}
	return lvl
}

func (t teeTracer) Enabled() bool { return t.Level() > LevelOff }

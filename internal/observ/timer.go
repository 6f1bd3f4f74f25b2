// Package observ measures the phases of a CLI run.
package observ

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Phase is one timed step of a run: decode, validate, rename, encode.
type Phase struct {
	Name  string
	Start time.Time
	Dur   time.Duration
	Note  string
}

// Timer collects phases in the order they were started. It is safe for
// concurrent use.
type Timer struct {
	mu     sync.Mutex
	phases []Phase
}

// NewTimer returns an empty timer.
func NewTimer() *Timer { return &Timer{phases: make([]Phase, 0, 4)} }

// Begin starts a phase and returns its handle for End.
func (t *Timer) Begin(name string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.phases = append(t.phases, Phase{Name: name, Start: time.Now()})
	return len(t.phases) - 1
}

// End closes the phase started by Begin. Unknown handles are ignored.
func (t *Timer) End(idx int, note string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if idx < 0 || idx >= len(t.phases) {
		return
	}
	p := &t.phases[idx]
	p.Dur = time.Since(p.Start)
	p.Note = note
}

// Track times fn as a phase. The note is "failed" when fn returns an error.
func (t *Timer) Track(name string, fn func() (note string, err error)) error {
	idx := t.Begin(name)
	note, err := fn()
	if err != nil {
		note = "failed"
	}
	t.End(idx, note)
	return err
}

// Summary renders the phases as an aligned table.
func (t *Timer) Summary() string {
	report := t.Report()
	var sb strings.Builder
	sb.WriteString("timings:\n")
	for _, p := range report.Phases {
		fmt.Fprintf(&sb, "  %-12s %8.2f ms", p.Name, p.DurationMS)
		if p.Note != "" {
			sb.WriteString("  // " + p.Note)
		}
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "  %-12s %8.2f ms\n", "total", report.TotalMS)
	return sb.String()
}

// PhaseReport is a phase in serializable form.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
}

// Report is the serializable form of a timer.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

// Report snapshots the recorded phases.
func (t *Timer) Report() Report {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.phases) == 0 {
		return Report{}
	}
	report := Report{Phases: make([]PhaseReport, len(t.phases))}
	var total time.Duration
	for i, phase := range t.phases {
		total += phase.Dur
		report.Phases[i] = PhaseReport{
			Name:       phase.Name,
			DurationMS: durationToMillis(phase.Dur),
			Note:       phase.Note,
		}
	}
	report.TotalMS = durationToMillis(total)
	return report
}

func durationToMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

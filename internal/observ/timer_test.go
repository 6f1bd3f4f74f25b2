package observ_test

import (
	"errors"
	"strings"
	"testing"

	"relocator/internal/observ"
)

func TestTimer_Track(t *testing.T) {
	tm := observ.NewTimer()
	if err := tm.Track("decode", func() (string, error) { return "3 classes", nil }); err != nil {
		t.Fatal(err)
	}
	boom := errors.New("boom")
	if err := tm.Track("rename", func() (string, error) { return "", boom }); !errors.Is(err, boom) {
		t.Fatalf("Track must return fn's error, got %v", err)
	}

	report := tm.Report()
	if len(report.Phases) != 2 {
		t.Fatalf("phases = %d", len(report.Phases))
	}
	if report.Phases[0].Note != "3 classes" || report.Phases[1].Note != "failed" {
		t.Errorf("notes = %q, %q", report.Phases[0].Note, report.Phases[1].Note)
	}
	sum := tm.Summary()
	for _, want := range []string{"timings:", "decode", "// failed", "total"} {
		if !strings.Contains(sum, want) {
			t.Errorf("summary lacks %q:\n%s", want, sum)
		}
	}
}

func TestTimer_EndIgnoresUnknownHandle(t *testing.T) {
	tm := observ.NewTimer()
	tm.End(5, "x")
	if got := tm.Report(); len(got.Phases) != 0 || got.TotalMS != 0 {
		t.Errorf("report = %+v", got)
	}
}

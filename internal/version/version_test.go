package version

import (
	"testing"

	"github.com/fatih/color"
)

func TestColored_Plain(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = prev }()

	tests := []struct{ in, want string }{
		{"0.1.0-dev", "0.1.0-dev"},
		{"1.2.3", "1.2.3"},
		{"1.2.3-rc.1+build.5", "1.2.3-rc.1+build.5"},
		{"nightly", "nightly"},
	}
	orig := Version
	defer func() { Version = orig }()
	for _, tt := range tests {
		Version = tt.in
		if got := Colored(); got != tt.want {
			t.Errorf("Colored(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLong(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = prev }()

	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	defer func() { Version, GitCommit, BuildDate = origVersion, origCommit, origDate }()

	Version, GitCommit, BuildDate = "1.0.0", "", ""
	if got := Long(); got != "relocate 1.0.0" {
		t.Errorf("Long() = %q", got)
	}
	GitCommit, BuildDate = "abc123", "2026-01-15"
	if got := Long(); got != "relocate 1.0.0 (abc123) built 2026-01-15" {
		t.Errorf("Long() = %q", got)
	}
}

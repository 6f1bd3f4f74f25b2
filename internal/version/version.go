// Package version holds build metadata for the relocate CLI. The variables
// can be overridden at build time via -ldflags.
package version

import (
	"strings"

	"github.com/fatih/color"
)

var (
	majorColor = color.New(color.FgYellow, color.Bold)
	minorColor = color.New(color.FgGreen, color.Bold)
	patchColor = color.New(color.FgBlue, color.Bold)
)

var (
	// Version is the semantic version of the CLI.
	Version = "0.1.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

// Colored returns Version with major, minor and patch in distinct colors.
// Color output follows color.NoColor.
func Colored() string {
	core, suffix, _ := strings.Cut(Version, "-")
	parts := strings.SplitN(core, ".", 3)
	if len(parts) != 3 {
		return Version
	}
	out := majorColor.Sprint(parts[0]) + "." + minorColor.Sprint(parts[1]) + "." + patchColor.Sprint(parts[2])
	if suffix != "" {
		out += "-" + suffix
	}
	return out
}

// Long returns the version followed by the optional commit and build date.
func Long() string {
	var sb strings.Builder
	sb.WriteString("relocate " + Colored())
	if GitCommit != "" {
		sb.WriteString(" (" + GitCommit + ")")
	}
	if BuildDate != "" {
		sb.WriteString(" built " + BuildDate)
	}
	return sb.String()
}

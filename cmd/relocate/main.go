package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"relocator/internal/version"
)

var rootCmd = &cobra.Command{
	Use:           "relocate",
	Short:         "Rewrite class references in compiled class archives",
	Long:          `relocate renames classes through a mapping and rewrites every reference to them: signatures, annotations, fields and method bodies`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return applyColor(cmd)
	},
}

func init() {
	rootCmd.AddCommand(renameCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().String("config", "", "path to relocate.toml (default: nearest above the working directory)")
	rootCmd.PersistentFlags().String("trace", "", "write trace events to file (- for stderr)")
	rootCmd.PersistentFlags().String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	rootCmd.PersistentFlags().String("trace-format", "auto", "trace format (auto|text|ndjson)")
	rootCmd.PersistentFlags().Int("trace-ring-size", 0, "keep the last N trace events in memory")
	rootCmd.PersistentFlags().String("cpu-profile", "", "write a CPU profile to file")
	rootCmd.PersistentFlags().String("mem-profile", "", "write a heap profile to file on exit")
	rootCmd.PersistentFlags().String("runtime-trace", "", "write a Go runtime trace to file")
}

// main executes the root command. Errors are printed once, in red when
// color is enabled, and exit with status 1.
func main() {
	rootCmd.Version = version.Version
	if err := rootCmd.Execute(); err != nil {
		errColor := color.New(color.FgRed, color.Bold)
		fmt.Fprintf(os.Stderr, "%s %v\n", errColor.Sprint("error:"), err)
		os.Exit(1)
	}
}

// applyColor sets the global color mode from --color.
func applyColor(cmd *cobra.Command) error {
	mode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	enabled, err := colorEnabled(mode, isTerminal(os.Stdout))
	if err != nil {
		return err
	}
	color.NoColor = !enabled
	return nil
}

func colorEnabled(mode string, tty bool) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "auto", "":
		return tty, nil
	case "on", "always":
		return true, nil
	case "off", "never":
		return false, nil
	}
	return false, fmt.Errorf("invalid color mode %q (expected: auto|on|off)", mode)
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

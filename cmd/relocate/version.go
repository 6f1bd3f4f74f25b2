package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"relocator/internal/version"
)

type versionPayload struct {
	Tool      string `json:"tool"`
	Version   string `json:"version"`
	GitCommit string `json:"git_commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
}

var (
	versionFormat   string
	versionShowFull bool
)

func init() {
	versionCmd.Flags().StringVar(&versionFormat, "format", "pretty", "output format (pretty|json)")
	versionCmd.Flags().BoolVar(&versionShowFull, "full", false, "include commit hash and build date")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show relocate build information",
	RunE: func(cmd *cobra.Command, args []string) error {
		switch strings.ToLower(versionFormat) {
		case "pretty":
			renderVersionPretty(cmd.OutOrStdout(), versionShowFull)
			return nil
		case "json":
			return renderVersionJSON(cmd.OutOrStdout(), versionShowFull)
		}
		return fmt.Errorf("unsupported format %q (must be pretty or json)", versionFormat)
	},
}

func renderVersionPretty(out io.Writer, full bool) {
	if full {
		fmt.Fprintln(out, version.Long())
		return
	}
	fmt.Fprintf(out, "relocate %s\n", version.Colored())
}

func renderVersionJSON(out io.Writer, full bool) error {
	payload := versionPayload{Tool: "relocate", Version: version.Version}
	if full {
		payload.GitCommit = valueOrUnknown(version.GitCommit)
		payload.BuildDate = valueOrUnknown(version.BuildDate)
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

func valueOrUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

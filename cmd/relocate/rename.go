package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"relocator/internal/archive"
	"relocator/internal/config"
	"relocator/internal/mapper"
	"relocator/internal/model"
	"relocator/internal/observ"
	"relocator/internal/rename"
	"relocator/internal/trace"
)

var renameCmd = &cobra.Command{
	Use:   "rename IN OUT",
	Short: "Rename classes of an archive through a mapping",
	Long: `Rename reads a class archive, renames every class through the mapping and
rewrites all references to the renamed classes. Nothing is written unless every
class is renamed successfully.

The mapping comes from --mapping or from the [classes] and [packages] tables of
relocate.toml.`,
	Args: cobra.ExactArgs(2),
	RunE: runRename,
}

func init() {
	renameCmd.Flags().String("mapping", "", "mapping TOML file (overrides relocate.toml)")
	renameCmd.Flags().Int("jobs", -1, "classes planned in parallel (0 = GOMAXPROCS, default from relocate.toml)")
	renameCmd.Flags().Bool("strict", false, "fail on class names the mapping does not cover")
	renameCmd.Flags().String("ui", "auto", "progress view (auto|on|off)")
}

func runRename(cmd *cobra.Command, args []string) error {
	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	stopProfiling, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer stopProfiling()

	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}
	mappingPath, err := cmd.Flags().GetString("mapping")
	if err != nil {
		return fmt.Errorf("failed to get mapping flag: %w", err)
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	strict, err := cmd.Flags().GetBool("strict")
	if err != nil {
		return fmt.Errorf("failed to get strict flag: %w", err)
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := readUIMode(uiValue)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeDriver, "relocate", trace.CurrentSpan(ctx)).
		WithExtra("in", args[0]).
		WithExtra("out", args[1])
	ctx = trace.WithSpan(ctx, span)

	timer := observ.NewTimer()
	out, err := relocate(ctx, cmd, timer, relocateRequest{
		in:          args[0],
		out:         args[1],
		mappingPath: mappingPath,
		jobs:        jobs,
		strict:      strict,
		tui:         shouldUseTUI(mode, quiet),
	})
	if err != nil {
		span.Fail(err)
		return err
	}
	span.End(fmt.Sprintf("%d classes", out))

	if showTimings {
		fmt.Fprint(cmd.ErrOrStderr(), timer.Summary())
	}
	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "relocated %d classes into %s\n", out, args[1])
	}
	return nil
}

type relocateRequest struct {
	in, out     string
	mappingPath string
	jobs        int
	strict      bool
	tui         bool
}

// relocate runs the read, validate, rename and write phases and returns the
// number of classes written.
func relocate(ctx context.Context, cmd *cobra.Command, timer *observ.Timer, req relocateRequest) (int, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return 0, err
	}
	spec, err := resolveMapping(cfg, req.mappingPath)
	if err != nil {
		return 0, err
	}
	if req.strict {
		spec.Options.Strict = true
	}
	opts, err := cfg.RenameOptions()
	if err != nil {
		return 0, err
	}
	jobs := req.jobs
	if jobs < 0 {
		jobs = cfg.Rename.Jobs
	}

	var classes []*model.ClassHolder
	if err := phase(ctx, timer, "read", func() (string, error) {
		classes, err = archive.ReadFile(req.in)
		return fmt.Sprintf("%d classes", len(classes)), err
	}); err != nil {
		return 0, err
	}
	if err := phase(ctx, timer, "validate", func() (string, error) {
		return "", validateClasses(classes)
	}); err != nil {
		return 0, err
	}

	var renamed []*model.ClassHolder
	if err := phase(ctx, timer, "rename", func() (string, error) {
		if !req.tui {
			renamed, err = rename.New(spec.Mapper(), opts...).RenameClasses(ctx, classes, jobs)
			return fmt.Sprintf("%d classes", len(renamed)), err
		}
		events := make(chan rename.Event, 256)
		r := rename.New(spec.Mapper(), append(opts, rename.WithProgress(rename.ChannelSink{Ch: events}))...)
		renamed, err = renameWithUI(ctx, r, classes, jobs, events)
		return fmt.Sprintf("%d classes", len(renamed)), err
	}); err != nil {
		return 0, err
	}
	if err := phase(ctx, timer, "write", func() (string, error) {
		return "", archive.WriteFile(req.out, renamed)
	}); err != nil {
		return 0, err
	}
	return len(renamed), nil
}

// phase times fn and wraps it in a driver span.
func phase(ctx context.Context, timer *observ.Timer, name string, fn func() (string, error)) error {
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeDriver, name, trace.CurrentSpan(ctx))
	var note string
	err := timer.Track(name, func() (string, error) {
		var err error
		note, err = fn()
		return note, err
	})
	if err != nil {
		span.Fail(err)
		return fmt.Errorf("%s: %w", name, err)
	}
	span.End(note)
	return nil
}

// loadConfig honors --config and otherwise looks for relocate.toml above the
// working directory.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	if path != "" {
		return config.Load(path)
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	cfg, _, err := config.LoadNearest(wd)
	return cfg, err
}

var errNoMapping = errors.New("no mapping: pass --mapping or add [classes] or [packages] to relocate.toml")

func resolveMapping(cfg *config.Config, path string) (*mapper.Spec, error) {
	if path != "" {
		return mapper.LoadFile(path)
	}
	spec, ok, err := cfg.Mapping()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errNoMapping
	}
	return spec, nil
}

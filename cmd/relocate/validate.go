package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"relocator/internal/archive"
	"relocator/internal/ir"
	"relocator/internal/model"
)

var validateCmd = &cobra.Command{
	Use:   "validate IN",
	Short: "Check every method body of an archive for malformed IR",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
		if err != nil {
			return fmt.Errorf("failed to get quiet flag: %w", err)
		}
		classes, err := archive.ReadFile(args[0])
		if err != nil {
			return err
		}
		if err := validateClasses(classes); err != nil {
			return err
		}
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "%d classes ok\n", len(classes))
		}
		return nil
	},
}

// validateClasses runs ir.Validate over every method body and joins the
// failures, each prefixed with the owning method.
func validateClasses(classes []*model.ClassHolder) error {
	var errs []error
	for _, cls := range classes {
		for _, m := range cls.Methods() {
			if m.Program == nil {
				continue
			}
			if err := ir.Validate(m.Program); err != nil {
				errs = append(errs, fmt.Errorf("%s.%s: %w", cls.Name, m.Descriptor(), err))
			}
		}
	}
	return errors.Join(errs...)
}

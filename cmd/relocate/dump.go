package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"relocator/internal/archive"
	"relocator/internal/model"
)

var dumpCmd = &cobra.Command{
	Use:   "dump IN [CLASS...]",
	Short: "Print the classes of an archive",
	Long:  `Dump prints every class of an archive, or only the named ones, including method bodies.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		classes, err := archive.ReadFile(args[0])
		if err != nil {
			return err
		}
		selected, err := selectClasses(classes, args[1:])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for i, cls := range selected {
			if i > 0 {
				fmt.Fprintln(out)
			}
			if err := model.Dump(out, cls); err != nil {
				return err
			}
		}
		return nil
	},
}

// selectClasses keeps the requested classes in request order. An empty
// request keeps all of them.
func selectClasses(classes []*model.ClassHolder, names []string) ([]*model.ClassHolder, error) {
	if len(names) == 0 {
		return classes, nil
	}
	byName := make(map[string]*model.ClassHolder, len(classes))
	for _, cls := range classes {
		byName[cls.Name] = cls
	}
	out := make([]*model.ClassHolder, 0, len(names))
	for _, name := range names {
		cls, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("class %q not found in archive", name)
		}
		out = append(out, cls)
	}
	return out, nil
}

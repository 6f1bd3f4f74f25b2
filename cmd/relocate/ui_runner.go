package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"relocator/internal/model"
	"relocator/internal/rename"
	"relocator/internal/ui"
)

type renameOutcome struct {
	classes []*model.ClassHolder
	err     error
}

// renameWithUI runs the batch in the background and shows its progress
// until the batch finishes.
func renameWithUI(ctx context.Context, r *rename.Renamer, classes []*model.ClassHolder, jobs int, events chan rename.Event) ([]*model.ClassHolder, error) {
	outcomeCh := make(chan renameOutcome, 1)
	go func() {
		out, err := r.RenameClasses(ctx, classes, jobs)
		outcomeCh <- renameOutcome{classes: out, err: err}
		close(events)
	}()

	names := make([]string, len(classes))
	for i, cls := range classes {
		if cls != nil {
			names[i] = cls.Name
		}
	}
	program := tea.NewProgram(ui.NewProgressModel("renaming classes", names, events), tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	// Keep the batch unblocked if the view stopped early.
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.classes, uiErr
	}
	return outcome.classes, outcome.err
}

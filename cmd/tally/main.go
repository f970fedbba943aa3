package main

import (
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"tally/internal/ui"
)

func main() {
	root := newRootCmd(func(m tea.Model) programRunner {
		return tea.NewProgram(m, tea.WithAltScreen())
	})
	if err := root.Execute(); err != nil {
		var reported *reportedError
		if !errors.As(err, &reported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

type programRunner interface {
	Run() (tea.Model, error)
}

type programFactory func(tea.Model) programRunner

// dashboard is a UI application that reports how it ended.
type dashboard interface {
	tea.Model
	Result() ui.Result
}

func runProgram(app dashboard, factory programFactory) (ui.Result, error) {
	if factory == nil {
		return ui.Result{}, fmt.Errorf("program factory is nil")
	}
	prog := factory(app)
	if prog == nil {
		return ui.Result{}, fmt.Errorf("program is nil")
	}
	final, err := prog.Run()
	if err != nil {
		return ui.Result{}, fmt.Errorf("run UI: %w", err)
	}
	if d, ok := final.(dashboard); ok {
		return d.Result(), nil
	}
	return app.Result(), nil
}

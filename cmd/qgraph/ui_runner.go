package main

import (
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"qgraph/internal/driver"
	"qgraph/internal/ir"
	"qgraph/internal/ui"
)

type runOutcome struct {
	result *driver.Result
	err    error
}

// runPass calls pass with the driver options of e. With the TUI enabled
// the pass runs in the background while progress is drawn on stderr.
func (e *runEnv) runPass(title string, mod *ir.Module, phases []string, pass func(driver.Options) (*driver.Result, error)) (*driver.Result, error) {
	opts := e.driverOptions()
	if !e.tui || mod == nil {
		return pass(opts)
	}

	events := make(chan driver.PhaseEvent, 256)
	outcomeCh := make(chan runOutcome, 1)
	opts.OnPhase = func(ev driver.PhaseEvent) { events <- ev }

	go func() {
		res, err := pass(opts)
		outcomeCh <- runOutcome{result: res, err: err}
		close(events)
	}()

	methods := make([]string, 0, len(mod.Methods))
	for _, m := range mod.Methods {
		if m != nil {
			methods = append(methods, m.Name)
		}
	}
	model := ui.NewProgressModel(title, methods, phases, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr))
	_, uiErr := program.Run()
	// The program may quit before the pass finishes; keep the pass from
	// blocking on a full channel.
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}

package ui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the viewer full screen and blocks until it quits or ctx is
// cancelled. Cancellation asks the program to quit and kills it if it has
// not exited a few seconds later.
func Run(ctx context.Context, opts Options) error {
	p := tea.NewProgram(
		New(opts),
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithoutSignalHandler(),
	)

	runDone := make(chan struct{})
	defer close(runDone)

	go func() {
		select {
		case <-runDone:
			return
		case <-ctx.Done():
		}

		p.Quit()

		select {
		case <-runDone:
		case <-time.After(5 * time.Second):
			p.Kill()
		}
	}()

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted) {
		return nil
	}
	return err
}

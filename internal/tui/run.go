package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
)

// Run shows m until the user quits, ctx is done or done is closed. The
// bridge feeds the program while it runs.
func Run(ctx context.Context, m Model, bridge *Bridge, done <-chan struct{}, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	p := tea.NewProgram(m, opts...)

	bridge.Attach(p)
	defer bridge.AttachFunc(nil)

	go func() {
		select {
		case <-done:
			bridge.Done()
		case <-ctx.Done():
		}
	}()

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

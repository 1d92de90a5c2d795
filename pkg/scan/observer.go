package scan

import (
	"context"
	"time"
)

// CommitSink receives the committed position once per completed cycle.
// It is owned by the surrounding application and maps the position to an
// action. Errors are logged by the engine and never change scan state.
type CommitSink interface {
	OnCommit(ctx context.Context, pos Position) error
}

// CommitFunc adapts a function to CommitSink.
type CommitFunc func(ctx context.Context, pos Position) error

func (f CommitFunc) OnCommit(ctx context.Context, pos Position) error {
	return f(ctx, pos)
}

// Observer is notified of engine activity for display.
// Callbacks run synchronously on the engine goroutine and must return quickly.
type Observer interface {
	// OnPhaseChange is called when the phase changes.
	OnPhaseChange(previous, current Phase)

	// OnCursor is called when the cursor moves to pos.
	OnCursor(pos Position)

	// OnCountdown is called when the dwell timer is armed, ticks or is
	// cancelled. remaining is 0 when no deadline is pending.
	OnCountdown(remaining time.Duration)

	// OnCommit is called before the commit is handed to the CommitSink.
	OnCommit(pos Position)
}

// NopObserver implements Observer with no-ops. Embed it to implement only
// the callbacks you need.
type NopObserver struct{}

func (NopObserver) OnPhaseChange(previous, current Phase) {}
func (NopObserver) OnCursor(pos Position)                 {}
func (NopObserver) OnCountdown(remaining time.Duration)   {}
func (NopObserver) OnCommit(pos Position)                 {}

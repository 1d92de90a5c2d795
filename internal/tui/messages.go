// Package tui renders the scanning keyboard in the terminal with
// bubbletea.
package tui

import (
	"time"

	"github.com/bft-labs/blinkscan/pkg/scan"
	"github.com/bft-labs/blinkscan/pkg/sensor"
)

// PhaseMsg reports a scan phase change.
type PhaseMsg struct{ Phase scan.Phase }

// CursorMsg reports the highlighted cell.
type CursorMsg struct{ Position scan.Position }

// CountdownMsg reports the time left before the phase ends.
type CountdownMsg struct{ Remaining time.Duration }

// CommitMsg reports the selection ending a cycle.
type CommitMsg struct{ Position scan.Position }

// ConnectionMsg reports a sensor link state change.
type ConnectionMsg struct {
	State  sensor.ConnectionState
	Reason string
}

// SampleMsg reports a decoded blink strength.
type SampleMsg struct {
	Strength int
	Hit      bool
}

// TextMsg carries the composed text.
type TextMsg struct{ Text string }

// ExitPendingMsg reports whether EXIT awaits confirmation.
type ExitPendingMsg struct{ Pending bool }

// LogLineMsg is a line for the log panel.
type LogLineMsg struct{ Line string }

// DoneMsg ends the program.
type DoneMsg struct{}

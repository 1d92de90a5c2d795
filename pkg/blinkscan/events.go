package blinkscan

import (
	"time"

	"github.com/bft-labs/blinkscan/pkg/scan"
	"github.com/bft-labs/blinkscan/pkg/sensor"
)

// State is the lifecycle state of a Blinkscan instance.
type State int

const (
	StateStopped State = iota
	StateStarting
	StateRunning
	StateStopping
	StateCrashed
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "Stopped"
	case StateStarting:
		return "Starting"
	case StateRunning:
		return "Running"
	case StateStopping:
		return "Stopping"
	case StateCrashed:
		return "Crashed"
	default:
		return "Unknown"
	}
}

// StateChangeEvent reports a lifecycle transition.
type StateChangeEvent struct {
	Previous State
	Current  State
	Reason   string
}

// ConnectionEvent reports a sensor link state change or error. Err is set
// only for error notifications.
type ConnectionEvent struct {
	Previous sensor.ConnectionState
	Current  sensor.ConnectionState
	Reason   string
	Err      error
}

// CommitEvent reports the selection ending a scan cycle.
type CommitEvent struct {
	Position scan.Position
	Label    string
}

// MessageSentEvent reports text delivered by SEND.
type MessageSentEvent struct {
	Text   string
	SentAt time.Time
}

// EventHandler receives notifications from a running instance. Methods
// are called synchronously from the scanning goroutines and must return
// quickly.
type EventHandler interface {
	OnStateChange(event StateChangeEvent)
	OnConnectionChange(event ConnectionEvent)
	OnCommit(event CommitEvent)
	OnMessageSent(event MessageSentEvent)
	OnLinkStopped(err error)
}

// BaseEventHandler implements EventHandler with no-ops. Embed it to
// override only the events of interest.
type BaseEventHandler struct{}

func (BaseEventHandler) OnStateChange(event StateChangeEvent)     {}
func (BaseEventHandler) OnConnectionChange(event ConnectionEvent) {}
func (BaseEventHandler) OnCommit(event CommitEvent)               {}
func (BaseEventHandler) OnMessageSent(event MessageSentEvent)     {}
func (BaseEventHandler) OnLinkStopped(err error)                  {}

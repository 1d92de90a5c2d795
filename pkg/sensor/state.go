package sensor

import (
	"errors"
	"fmt"
	"sync"
)

// ErrInvalidTransition is returned when a connection state change is not allowed.
var ErrInvalidTransition = errors.New("sensor: invalid state transition")

// ConnectionState is the state of the link's connection.
type ConnectionState int

const (
	Disconnected ConnectionState = iota
	Connecting
	Connected
)

// String returns a human-readable representation of the state.
func (s ConnectionState) String() string {
	switch s {
	case Disconnected:
		return "Disconnected"
	case Connecting:
		return "Connecting"
	case Connected:
		return "Connected"
	default:
		return "Unknown"
	}
}

// stateMachine guards connection state and emits every change.
type stateMachine struct {
	mu    sync.RWMutex
	state ConnectionState
	emit  func(previous, current ConnectionState, reason string)
}

func (m *stateMachine) State() ConnectionState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// TransitionTo moves to next if the change is allowed.
func (m *stateMachine) TransitionTo(next ConnectionState, reason string) error {
	m.mu.Lock()
	prev := m.state

	valid := false
	switch prev {
	case Disconnected:
		valid = next == Connecting
	case Connecting:
		valid = next == Connected || next == Disconnected
	case Connected:
		valid = next == Disconnected
	}
	if !valid {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, prev, next)
	}

	m.state = next
	m.mu.Unlock()

	if m.emit != nil {
		m.emit(prev, next, reason)
	}
	return nil
}

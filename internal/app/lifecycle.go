package app

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/bft-labs/blinkscan/internal/domain"
	"github.com/bft-labs/blinkscan/pkg/log"
)

// ShutdownTimeout bounds how long Stop waits for the scanning workers.
const ShutdownTimeout = 30 * time.Second

// State is the lifecycle state of a scanning session.
type State int

const (
	StateStopped State = iota
	StateStarting
	StateRunning
	StateStopping
	StateCrashed
)

var stateNames = [...]string{
	StateStopped:  "Stopped",
	StateStarting: "Starting",
	StateRunning:  "Running",
	StateStopping: "Stopping",
	StateCrashed:  "Crashed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "Unknown"
	}
	return stateNames[s]
}

// idle reports whether no session is active in s.
func (s State) idle() bool {
	return s == StateStopped || s == StateCrashed
}

// transitions lists the allowed targets for each state. A rejected
// transition out of an idle state reports ErrNotRunning, any other
// rejection ErrAlreadyRunning.
var transitions = map[State][]State{
	StateStopped:  {StateStarting},
	StateStarting: {StateRunning, StateStopping, StateCrashed},
	StateRunning:  {StateStopping, StateCrashed},
	StateStopping: {StateStopped, StateCrashed},
	StateCrashed:  {StateStarting},
}

// EventEmitter observes state changes. It is called outside the lifecycle
// lock.
type EventEmitter interface {
	OnStateChange(previous, current State, reason string)
}

// Lifecycle guards the state of a scanning session and tracks the
// goroutines it runs.
type Lifecycle struct {
	mu      sync.RWMutex
	state   State
	cancel  context.CancelFunc
	workers sync.WaitGroup

	logger  log.Logger
	emitter EventEmitter
}

// NewLifecycle returns a stopped lifecycle. Both arguments may be nil.
func NewLifecycle(logger log.Logger, emitter EventEmitter) *Lifecycle {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Lifecycle{logger: logger, emitter: emitter}
}

func (l *Lifecycle) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// TransitionTo moves to next, or leaves the state unchanged and returns
// ErrNotRunning or ErrAlreadyRunning when next is not reachable.
func (l *Lifecycle) TransitionTo(next State, reason string) error {
	l.mu.Lock()
	prev := l.state
	if !slices.Contains(transitions[prev], next) {
		l.mu.Unlock()
		if prev.idle() {
			return domain.ErrNotRunning
		}
		return domain.ErrAlreadyRunning
	}
	l.state = next
	l.mu.Unlock()

	if l.emitter != nil {
		l.emitter.OnStateChange(prev, next, reason)
	}
	l.logger.Info("session state changed",
		log.Stringer("from", prev),
		log.Stringer("to", next),
		log.String("reason", reason))
	return nil
}

// CanStart reports whether a session may be started from the current state.
func (l *Lifecycle) CanStart() bool {
	return l.State().idle()
}

// CanStop reports whether there is a starting or running session to stop.
func (l *Lifecycle) CanStop() bool {
	s := l.State()
	return s == StateStarting || s == StateRunning
}

// SetCancel records the function that Cancel calls.
func (l *Lifecycle) SetCancel(cancel context.CancelFunc) {
	l.mu.Lock()
	l.cancel = cancel
	l.mu.Unlock()
}

// Cancel cancels the session context, if one was recorded.
func (l *Lifecycle) Cancel() {
	l.mu.RLock()
	cancel := l.cancel
	l.mu.RUnlock()
	if cancel != nil {
		cancel()
	}
}

// Go runs fn as a tracked worker. A worker that fails with anything other
// than context cancellation is logged under its name; fn's error is then
// passed to onExit, which may be nil. WaitWithTimeout returns only after
// onExit has returned.
func (l *Lifecycle) Go(ctx context.Context, name string, fn func(context.Context) error, onExit func(error)) {
	l.workers.Add(1)
	go func() {
		defer l.workers.Done()
		err := fn(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			l.logger.Error("worker stopped", log.String("worker", name), log.Err(err))
		} else {
			l.logger.Debug("worker stopped", log.String("worker", name))
		}
		if onExit != nil {
			onExit(err)
		}
	}()
}

// WaitWithTimeout blocks until every worker has returned, or returns
// ErrShutdownTimeout after timeout.
func (l *Lifecycle) WaitWithTimeout(timeout time.Duration) error {
	drained := make(chan struct{})
	go func() {
		l.workers.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		return nil
	case <-time.After(timeout):
		l.logger.Warn("workers still running after shutdown timeout", log.Duration("timeout", timeout))
		return domain.ErrShutdownTimeout
	}
}

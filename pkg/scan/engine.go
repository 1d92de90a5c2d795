package scan

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bft-labs/blinkscan/pkg/deadline"
	"github.com/bft-labs/blinkscan/pkg/log"
)

// Default engine timings.
const (
	DefaultDwell        = 5 * time.Second
	DefaultTickInterval = time.Second
	DefaultQueueSize    = 16
)

// ErrAlreadyRunning is returned when Run is called on an engine that is running.
var ErrAlreadyRunning = errors.New("scan: engine already running")

// Config holds the engine configuration.
type Config struct {
	// Grid is the selectable surface. Default: 5x8
	Grid Grid

	// Dwell is the deadline for each phase. Default: 5s
	Dwell time.Duration

	// TickInterval is the countdown display granularity; 0 disables ticks.
	// Default: 1s
	TickInterval time.Duration

	// QueueSize bounds the ordered event channel. Default: 16
	QueueSize int

	// CommitOnDisconnect keeps a cycle running when the sensor is lost, so the
	// deadline commits whatever cursor was last reached. When false, an
	// interrupted cycle is discarded without a commit.
	CommitOnDisconnect bool
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Grid:         DefaultGrid(),
		Dwell:        DefaultDwell,
		TickInterval: DefaultTickInterval,
		QueueSize:    DefaultQueueSize,
	}
}

// Validate checks the configuration for errors.
func (c Config) Validate() error {
	if err := c.Grid.Validate(); err != nil {
		return err
	}
	if c.Dwell <= 0 {
		return fmt.Errorf("scan: dwell must be positive")
	}
	if c.TickInterval < 0 {
		return fmt.Errorf("scan: tick interval must not be negative")
	}
	if c.QueueSize < 1 {
		return fmt.Errorf("scan: queue size must be at least 1")
	}
	return nil
}

// Option configures optional behavior of an Engine.
type Option func(*Engine)

// WithClock sets the clock driving the dwell timer.
func WithClock(clock deadline.Clock) Option {
	return func(e *Engine) {
		e.clock = clock
	}
}

// WithLogger sets the logger for human-readable activity lines.
func WithLogger(logger log.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithObserver registers an observer. Observers are called in registration order.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		e.observers = append(e.observers, o)
	}
}

// Engine serializes triggers, timeouts and interrupts through a single
// consumer and owns the scan state and dwell timer.
type Engine struct {
	cfg       Config
	sink      CommitSink
	clock     deadline.Clock
	logger    log.Logger
	observers []Observer

	timer   *deadline.Timer
	events  chan Event
	running atomic.Bool

	mu      sync.RWMutex
	state   State
	commits uint64
}

// NewEngine creates an engine. sink may be nil if commits are only observed.
func NewEngine(cfg Config, sink CommitSink, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		cfg:    cfg,
		sink:   sink,
		clock:  deadline.SystemClock{},
		logger: log.NewNoopLogger(),
		events: make(chan Event, cfg.QueueSize),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.timer = deadline.New(e.clock, cfg.TickInterval)
	return e, nil
}

// Grid returns the engine grid.
func (e *Engine) Grid() Grid {
	return e.cfg.Grid
}

// Trigger enqueues a trigger. Safe from any goroutine.
func (e *Engine) Trigger(ctx context.Context) error {
	return e.enqueue(ctx, Event{Kind: EventTrigger})
}

// Interrupt enqueues an interrupt for the current cycle. Safe from any goroutine.
func (e *Engine) Interrupt(ctx context.Context, reason string) error {
	return e.enqueue(ctx, Event{Kind: EventInterrupt, Reason: reason})
}

func (e *Engine) enqueue(ctx context.Context, ev Event) error {
	select {
	case e.events <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Snapshot returns a copy of the current state. Safe from any goroutine.
func (e *Engine) Snapshot() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// Commits returns how many commits the engine has emitted.
func (e *Engine) Commits() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.commits
}

// Remaining returns the time left before the dwell deadline.
func (e *Engine) Remaining() time.Duration {
	return e.timer.Remaining()
}

// Run consumes events until ctx is done. Any cycle in progress when Run
// returns is discarded without a commit.
func (e *Engine) Run(ctx context.Context) error {
	if !e.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer e.running.Store(false)
	defer e.reset()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-e.events:
			e.handle(ctx, ev)
		case exp := <-e.timer.C():
			e.handleExpiry(ctx, exp)
		}
	}
}

// Close releases the dwell timer. The engine cannot be run afterwards.
func (e *Engine) Close() {
	e.timer.Close()
}

func (e *Engine) handle(ctx context.Context, ev Event) {
	if ev.Kind == EventInterrupt && e.cfg.CommitOnDisconnect {
		if !e.Snapshot().IsIdle() {
			e.logger.Info("scan continues until deadline", log.String("reason", ev.Reason))
		}
		return
	}
	if ev.Kind == EventInterrupt && !e.Snapshot().IsIdle() {
		e.logger.Warn("scan cycle interrupted", log.String("reason", ev.Reason))
	}
	e.apply(ctx, Transition(e.cfg.Grid, e.Snapshot(), ev))
}

func (e *Engine) handleExpiry(ctx context.Context, exp deadline.Expiry) {
	if !e.timer.Accept(exp) {
		e.logger.Debug("discarded stale timer firing", log.Stringer("kind", exp.Kind))
		return
	}
	if exp.Kind == deadline.Tick {
		e.notifyCountdown(exp.Remaining)
		return
	}
	e.apply(ctx, Transition(e.cfg.Grid, e.Snapshot(), Event{Kind: EventTimeout}))
}

func (e *Engine) apply(ctx context.Context, out Outcome) {
	e.mu.Lock()
	prev := e.state
	e.state = out.State
	if out.Commit != nil {
		e.commits++
	}
	e.mu.Unlock()

	switch out.Timer {
	case TimerArm:
		e.timer.Arm(e.cfg.Dwell)
		e.notifyCountdown(e.cfg.Dwell)
	case TimerCancel:
		e.timer.Cancel()
		e.notifyCountdown(0)
	}

	if out.PhaseChanged {
		e.logger.Info("phase changed",
			log.Stringer("from", prev.Phase),
			log.Stringer("to", out.State.Phase),
		)
		for _, o := range e.observers {
			o.OnPhaseChange(prev.Phase, out.State.Phase)
		}
	}

	if out.Moved {
		e.logger.Info("current selection",
			log.Stringer("cursor", out.State.Cursor),
			log.Int("triggers", out.State.TriggerCount),
		)
		for _, o := range e.observers {
			o.OnCursor(out.State.Cursor)
		}
	}

	if out.Commit != nil {
		e.commit(ctx, *out.Commit)
	}
}

func (e *Engine) commit(ctx context.Context, pos Position) {
	e.logger.Info("committed", log.Stringer("position", pos))
	for _, o := range e.observers {
		o.OnCommit(pos)
	}
	if e.sink == nil {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("commit sink panicked",
				log.Stringer("position", pos),
				log.Any("panic", r),
			)
		}
	}()
	if err := e.sink.OnCommit(ctx, pos); err != nil {
		e.logger.Error("commit sink failed", log.Stringer("position", pos), log.Err(err))
	}
}

func (e *Engine) notifyCountdown(remaining time.Duration) {
	for _, o := range e.observers {
		o.OnCountdown(remaining)
	}
}

func (e *Engine) reset() {
	e.timer.Cancel()
	e.mu.Lock()
	e.state = InitialState()
	e.mu.Unlock()
}

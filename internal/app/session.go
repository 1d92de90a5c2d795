package app

import (
	"context"
	"errors"

	"github.com/bft-labs/blinkscan/pkg/log"
)

// Runner is a blocking component that runs until ctx is done or it fails.
// Both the scan engine and the sensor link satisfy it.
type Runner interface {
	Run(ctx context.Context) error
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context) error

// Run calls f(ctx).
func (f RunnerFunc) Run(ctx context.Context) error { return f(ctx) }

// DraftRestorer reloads the composed text saved by a previous run.
type DraftRestorer interface {
	Restore(ctx context.Context) error
}

// LinkEventEmitter is notified when the sensor link gives up.
type LinkEventEmitter interface {
	OnLinkStopped(err error)
}

// SessionConfig contains configuration for a scanning session.
type SessionConfig struct {
	// StopOnLinkExit ends the whole session when the sensor link returns.
	// Otherwise scanning continues and accepts manual triggers.
	StopOnLinkExit bool
}

// Session runs the scan engine together with the sensor link feeding it.
type Session struct {
	config  SessionConfig
	engine  Runner
	link    Runner
	draft   DraftRestorer
	logger  log.Logger
	emitter LinkEventEmitter
}

// NewSession creates a session. link and draft may be nil: without a link
// the engine only sees manual triggers.
func NewSession(
	config SessionConfig,
	engine Runner,
	link Runner,
	draft DraftRestorer,
	logger log.Logger,
	emitter LinkEventEmitter,
) *Session {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Session{
		config:  config,
		engine:  engine,
		link:    link,
		draft:   draft,
		logger:  logger,
		emitter: emitter,
	}
}

// Run blocks until ctx is canceled, the engine fails, or the link exits
// while StopOnLinkExit is set.
func (s *Session) Run(ctx context.Context) error {
	if s.draft != nil {
		if err := s.draft.Restore(ctx); err != nil {
			s.logger.Error("failed to restore draft", log.Err(err))
			// Continue with an empty buffer
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	engineErr := make(chan error, 1)
	go func() {
		engineErr <- s.engine.Run(ctx)
	}()

	if s.link == nil {
		s.logger.Info("no sensor link configured, waiting for manual triggers")
		return s.result(ctx, <-engineErr)
	}

	linkErr := make(chan error, 1)
	go func() {
		linkErr <- s.link.Run(ctx)
	}()

	select {
	case err := <-engineErr:
		cancel()
		<-linkErr
		return s.result(ctx, err)
	case err := <-linkErr:
		if ctx.Err() != nil {
			return s.result(ctx, <-engineErr)
		}
		s.logger.Error("sensor link stopped", log.Err(err))
		if s.emitter != nil {
			s.emitter.OnLinkStopped(err)
		}
		if s.config.StopOnLinkExit {
			cancel()
			<-engineErr
			if err == nil {
				return errors.New("sensor link stopped")
			}
			return err
		}
		s.logger.Warn("scanning continues without the sensor")
		return s.result(ctx, <-engineErr)
	}
}

// result maps the engine's cancellation error to the caller's context.
func (s *Session) result(ctx context.Context, err error) error {
	if errors.Is(err, context.Canceled) {
		return ctx.Err()
	}
	return err
}

package blinkscan

import (
	"context"
	"errors"
	"time"

	"github.com/bft-labs/blinkscan/internal/app"
	"github.com/bft-labs/blinkscan/internal/domain"
	"github.com/bft-labs/blinkscan/pkg/scan"
	"github.com/bft-labs/blinkscan/pkg/sensor"
	"github.com/bft-labs/blinkscan/pkg/thinkgear"
)

// lifecycleEmitter adapts EventHandler to app.EventEmitter.
type lifecycleEmitter struct {
	handler EventHandler
}

func (e lifecycleEmitter) OnStateChange(previous, current app.State, reason string) {
	if e.handler == nil {
		return
	}
	e.handler.OnStateChange(StateChangeEvent{
		Previous: convertState(previous),
		Current:  convertState(current),
		Reason:   reason,
	})
}

// linkEmitter adapts EventHandler to sensor.Notifier and app.LinkEventEmitter.
type linkEmitter struct {
	handler EventHandler
}

func (e linkEmitter) OnStateChange(previous, current sensor.ConnectionState, reason string) {
	if e.handler == nil {
		return
	}
	e.handler.OnConnectionChange(ConnectionEvent{Previous: previous, Current: current, Reason: reason})
}

func (e linkEmitter) OnError(err error) {
	if e.handler == nil {
		return
	}
	e.handler.OnConnectionChange(ConnectionEvent{Err: err})
}

func (linkEmitter) OnSample(s thinkgear.Sample, hit bool) {}

func (e linkEmitter) OnLinkStopped(err error) {
	if e.handler == nil {
		return
	}
	e.handler.OnLinkStopped(err)
}

// scanEmitter adapts EventHandler to scan.Observer and ports.MessageSink.
type scanEmitter struct {
	handler EventHandler
	label   func(scan.Position) string
}

func (scanEmitter) OnPhaseChange(previous, current scan.Phase) {}
func (scanEmitter) OnCursor(pos scan.Position)                 {}
func (scanEmitter) OnCountdown(remaining time.Duration)        {}

func (e scanEmitter) OnCommit(pos scan.Position) {
	if e.handler == nil {
		return
	}
	e.handler.OnCommit(CommitEvent{Position: pos, Label: e.label(pos)})
}

func (e scanEmitter) Deliver(ctx context.Context, msg domain.Message) error {
	if e.handler != nil {
		e.handler.OnMessageSent(MessageSentEvent{Text: msg.Text, SentAt: msg.SentAt})
	}
	return nil
}

// commitChain delivers each commit to every sink in order.
type commitChain []scan.CommitSink

func (c commitChain) OnCommit(ctx context.Context, pos scan.Position) error {
	var errs []error
	for _, sink := range c {
		if err := sink.OnCommit(ctx, pos); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func convertState(s app.State) State {
	switch s {
	case app.StateStopped:
		return StateStopped
	case app.StateStarting:
		return StateStarting
	case app.StateRunning:
		return StateRunning
	case app.StateStopping:
		return StateStopping
	case app.StateCrashed:
		return StateCrashed
	default:
		return StateStopped
	}
}

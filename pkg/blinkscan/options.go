package blinkscan

import (
	"github.com/bft-labs/blinkscan/internal/ports"
	"github.com/bft-labs/blinkscan/pkg/deadline"
	"github.com/bft-labs/blinkscan/pkg/keyboard"
	"github.com/bft-labs/blinkscan/pkg/scan"
	"github.com/bft-labs/blinkscan/pkg/sensor"
)

// Option configures a Blinkscan instance.
type Option func(*options)

type options struct {
	logger       Logger
	eventHandler EventHandler
	dialer       sensor.Dialer
	clock        deadline.Clock
	layout       *keyboard.Layout
	plugins      []Plugin
	observers    []any
	commitSinks  []scan.CommitSink
	messageSinks []ports.MessageSink
	onExit       func()
}

// WithLogger sets the logger. By default nothing is logged.
func WithLogger(logger Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithEventHandler sets the handler receiving instance events.
func WithEventHandler(h EventHandler) Option {
	return func(o *options) {
		o.eventHandler = h
	}
}

// WithDialer replaces the TCP connection to the bridge, for example with a
// replay of a captured stream.
func WithDialer(d sensor.Dialer) Option {
	return func(o *options) {
		o.dialer = d
	}
}

// WithClock sets the clock driving the dwell timer.
func WithClock(c deadline.Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

// WithLayout sets the keyboard layout, overriding Config.LayoutFile.
func WithLayout(l *keyboard.Layout) Option {
	return func(o *options) {
		o.layout = l
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p Plugin) Option {
	return func(o *options) {
		o.plugins = append(o.plugins, p)
	}
}

// WithObserver registers v with every subsystem whose notifications it
// handles: scan.Observer, sensor.Notifier, keyboard.Observer and
// ports.MessageSink.
func WithObserver(v any) Option {
	return func(o *options) {
		o.observers = append(o.observers, v)
	}
}

// WithCommitSink adds a sink called after the keyboard for every commit.
func WithCommitSink(sink scan.CommitSink) Option {
	return func(o *options) {
		o.commitSinks = append(o.commitSinks, sink)
	}
}

// WithMessageSink adds a receiver for sent messages.
func WithMessageSink(sink ports.MessageSink) Option {
	return func(o *options) {
		o.messageSinks = append(o.messageSinks, sink)
	}
}

// WithExitFunc sets the callback run when EXIT is confirmed. By default a
// confirmed EXIT stops scanning and closes Done.
func WithExitFunc(fn func()) Option {
	return func(o *options) {
		o.onExit = fn
	}
}

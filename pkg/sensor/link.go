package sensor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/bft-labs/blinkscan/pkg/log"
	"github.com/bft-labs/blinkscan/pkg/thinkgear"
)

// DefaultThreshold is the minimum blink strength that counts as a hit.
const DefaultThreshold = 70

// DefaultReadBufferSize is the size of each read from the stream.
const DefaultReadBufferSize = 1024

const interruptTimeout = 250 * time.Millisecond

// ErrStreamClosed is returned when the bridge closes the stream.
var ErrStreamClosed = errors.New("sensor: stream closed")

// TriggerSink receives hits and connection loss. *scan.Engine satisfies it.
type TriggerSink interface {
	Trigger(ctx context.Context) error
	Interrupt(ctx context.Context, reason string) error
}

// Notifier receives connection lifecycle notifications.
type Notifier interface {
	OnStateChange(previous, current ConnectionState, reason string)
	OnError(err error)
	OnSample(sample thinkgear.Sample, hit bool)
}

// NopNotifier ignores all notifications.
type NopNotifier struct{}

func (NopNotifier) OnStateChange(previous, current ConnectionState, reason string) {}
func (NopNotifier) OnError(err error)                                              {}
func (NopNotifier) OnSample(sample thinkgear.Sample, hit bool)                     {}

// notifiers fans a notification out in registration order.
type notifiers []Notifier

func (ns notifiers) OnStateChange(previous, current ConnectionState, reason string) {
	for _, n := range ns {
		n.OnStateChange(previous, current, reason)
	}
}

func (ns notifiers) OnError(err error) {
	for _, n := range ns {
		n.OnError(err)
	}
}

func (ns notifiers) OnSample(sample thinkgear.Sample, hit bool) {
	for _, n := range ns {
		n.OnSample(sample, hit)
	}
}

// Config contains link settings.
type Config struct {
	// Addr is the bridge address used by the default TCP dialer.
	Addr        string
	DialTimeout time.Duration

	// Threshold is the minimum blink strength forwarded as a trigger.
	Threshold int

	ReadBufferSize int
	MaxFrameBytes  int

	// ReconnectAttempts is the number of consecutive failed sessions
	// tolerated before Run gives up. Zero means fail-stop.
	ReconnectAttempts int
	BackoffInitial    time.Duration
	BackoffMax        time.Duration
}

// DefaultConfig returns the configuration for a local bridge.
func DefaultConfig() Config {
	return Config{
		Addr:           net.JoinHostPort(DefaultHost, strconv.Itoa(DefaultPort)),
		DialTimeout:    DefaultDialTimeout,
		Threshold:      DefaultThreshold,
		ReadBufferSize: DefaultReadBufferSize,
		MaxFrameBytes:  thinkgear.DefaultMaxFrameBytes,
		BackoffInitial: DefaultBackoffInitial,
		BackoffMax:     DefaultBackoffMax,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Threshold < 1 {
		return fmt.Errorf("sensor: threshold must be at least 1, got %d", c.Threshold)
	}
	if c.ReadBufferSize <= 0 {
		return fmt.Errorf("sensor: read buffer size must be positive, got %d", c.ReadBufferSize)
	}
	if c.ReconnectAttempts < 0 {
		return fmt.Errorf("sensor: reconnect attempts must not be negative, got %d", c.ReconnectAttempts)
	}
	if c.ReconnectAttempts > 0 {
		if c.BackoffInitial <= 0 || c.BackoffMax < c.BackoffInitial {
			return fmt.Errorf("sensor: invalid backoff %s..%s", c.BackoffInitial, c.BackoffMax)
		}
	}
	return nil
}

// IsHit reports whether a blink strength triggers the engine.
func (c Config) IsHit(strength int) bool {
	return strength > 0 && strength >= c.Threshold
}

// Option configures optional behavior of a Link.
type Option func(*Link)

// WithLogger sets the logger.
func WithLogger(logger log.Logger) Option {
	return func(l *Link) {
		l.logger = logger
	}
}

// WithNotifier registers a lifecycle notifier. Notifiers are called in
// registration order.
func WithNotifier(n Notifier) Option {
	return func(l *Link) {
		l.notifier = append(l.notifier, n)
	}
}

// WithDialer replaces the default TCP dialer.
func WithDialer(d Dialer) Option {
	return func(l *Link) {
		l.dialer = d
	}
}

// Link reads the bridge stream and forwards hits to a TriggerSink.
type Link struct {
	cfg      Config
	sink     TriggerSink
	dialer   Dialer
	logger   log.Logger
	notifier notifiers
	states   stateMachine
	running  atomic.Bool

	samples atomic.Uint64
	hits    atomic.Uint64
}

// NewLink creates a link forwarding hits to sink.
func NewLink(cfg Config, sink TriggerSink, opts ...Option) (*Link, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if sink == nil {
		return nil, errors.New("sensor: trigger sink is required")
	}
	l := &Link{
		cfg:    cfg,
		sink:   sink,
		logger: log.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.dialer == nil {
		l.dialer = TCPDialer{Addr: cfg.Addr, Timeout: cfg.DialTimeout}
	}
	l.states.emit = l.emitState
	return l, nil
}

// State returns the current connection state.
func (l *Link) State() ConnectionState {
	return l.states.State()
}

// Samples returns the number of decoded samples.
func (l *Link) Samples() uint64 {
	return l.samples.Load()
}

// Hits returns the number of samples forwarded as triggers.
func (l *Link) Hits() uint64 {
	return l.hits.Load()
}

// Run connects and reads until the stream ends, ctx is canceled or the
// reconnect budget is exhausted. It returns ctx.Err() on cancellation.
func (l *Link) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return errors.New("sensor: link already running")
	}
	defer l.running.Store(false)

	failures := 0
	for {
		connected, err := l.session(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if connected {
			failures = 0
		}
		if failures >= l.cfg.ReconnectAttempts {
			return err
		}
		failures++

		delay := reconnectDelay(l.cfg.BackoffInitial, l.cfg.BackoffMax, failures)
		if serr := sleepCtx(ctx, delay); serr != nil {
			return serr
		}
		l.logger.Warn("reconnecting to bridge",
			log.Int("attempt", failures),
			log.Int("max_attempts", l.cfg.ReconnectAttempts),
			log.Duration("delay", delay),
			log.Err(err),
		)
	}
}

// session runs one connection. Disconnected is always reported on return.
func (l *Link) session(ctx context.Context) (connected bool, err error) {
	_ = l.states.TransitionTo(Connecting, "dial")
	reason := "shutdown"
	defer func() {
		_ = l.states.TransitionTo(Disconnected, reason)
	}()

	conn, err := l.dialer.Dial(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		reason = "dial failed"
		err = fmt.Errorf("sensor: dial: %w", err)
		l.notifier.OnError(err)
		return false, err
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	_ = l.states.TransitionTo(Connected, "handshake")
	defer l.interrupt(ctx, &reason)

	if err := thinkgear.WriteHandshake(conn); err != nil {
		if ctx.Err() != nil {
			return true, ctx.Err()
		}
		reason = "handshake failed"
		err = fmt.Errorf("sensor: handshake: %w", err)
		l.notifier.OnError(err)
		return true, err
	}

	err = l.read(ctx, conn)
	switch {
	case ctx.Err() != nil:
		return true, ctx.Err()
	case errors.Is(err, ErrStreamClosed):
		reason = "stream closed"
	default:
		reason = "read error"
		l.notifier.OnError(err)
	}
	return true, err
}

func (l *Link) read(ctx context.Context, conn io.Reader) error {
	buf := make([]byte, l.cfg.ReadBufferSize)
	dec := thinkgear.NewDecoder(l.cfg.MaxFrameBytes)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			for _, s := range dec.Feed(buf[:n]) {
				if terr := l.forward(ctx, s); terr != nil {
					return terr
				}
			}
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, io.EOF) {
				return ErrStreamClosed
			}
			return fmt.Errorf("sensor: read: %w", err)
		}
	}
}

func (l *Link) forward(ctx context.Context, s thinkgear.Sample) error {
	l.samples.Add(1)
	hit := l.cfg.IsHit(s.BlinkStrength)
	l.notifier.OnSample(s, hit)
	if !hit {
		return nil
	}
	l.hits.Add(1)
	l.logger.Info("blink detected", log.Int("strength", s.BlinkStrength))
	return l.sink.Trigger(ctx)
}

// interrupt tells the sink that an established session ended.
func (l *Link) interrupt(ctx context.Context, reason *string) {
	if ctx.Err() != nil {
		return
	}
	ictx, cancel := context.WithTimeout(context.Background(), interruptTimeout)
	defer cancel()
	if err := l.sink.Interrupt(ictx, *reason); err != nil {
		l.logger.Warn("failed to interrupt scan", log.Err(err))
	}
}

func (l *Link) emitState(previous, current ConnectionState, reason string) {
	l.logger.Info(strings.ToLower(current.String()),
		log.String("from", previous.String()),
		log.String("reason", reason),
	)
	l.notifier.OnStateChange(previous, current, reason)
}

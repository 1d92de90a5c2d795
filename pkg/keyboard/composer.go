package keyboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bft-labs/blinkscan/internal/domain"
	"github.com/bft-labs/blinkscan/internal/ports"
	"github.com/bft-labs/blinkscan/pkg/log"
	"github.com/bft-labs/blinkscan/pkg/scan"
)

// ErrNoKey is returned when a committed position has no key.
var ErrNoKey = errors.New("keyboard: no key at position")

// Observer is notified of composer changes.
type Observer interface {
	OnText(text string)
	OnExitPending(pending bool)
}

// Option configures optional behavior of a Composer.
type Option func(*Composer)

// WithLogger sets the logger.
func WithLogger(logger log.Logger) Option {
	return func(c *Composer) {
		c.logger = logger
	}
}

// WithMessageSink adds a receiver for sent messages.
func WithMessageSink(sink ports.MessageSink) Option {
	return func(c *Composer) {
		c.sinks = append(c.sinks, sink)
	}
}

// WithDraftRepository persists the buffer after every change.
func WithDraftRepository(repo ports.DraftRepository) Option {
	return func(c *Composer) {
		c.drafts = repo
	}
}

// WithObserver registers an observer.
func WithObserver(o Observer) Option {
	return func(c *Composer) {
		c.observers = append(c.observers, o)
	}
}

// WithExitFunc sets the callback run when EXIT is confirmed.
func WithExitFunc(fn func()) Option {
	return func(c *Composer) {
		c.onExit = fn
	}
}

// WithNow sets the wall clock used to stamp messages and drafts.
func WithNow(now func() time.Time) Option {
	return func(c *Composer) {
		c.now = now
	}
}

// Composer turns committed positions into text.
type Composer struct {
	layout atomic.Pointer[Layout]

	mu          sync.Mutex
	text        []rune
	exitPending bool

	sinks     []ports.MessageSink
	drafts    ports.DraftRepository
	observers []Observer
	onExit    func()
	logger    log.Logger
	now       func() time.Time
}

// NewComposer creates a composer using layout.
func NewComposer(layout *Layout, opts ...Option) *Composer {
	c := &Composer{
		logger: log.NewNoopLogger(),
		now:    time.Now,
	}
	c.layout.Store(layout)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Layout returns the active layout.
func (c *Composer) Layout() *Layout {
	return c.layout.Load()
}

// SetLayout swaps the active layout. The next commit uses it.
func (c *Composer) SetLayout(l *Layout) {
	c.layout.Store(l)
	c.logger.Info("layout changed", log.String("layout", l.Name()), log.Int("keys", l.Len()))
}

// Text returns the current buffer.
func (c *Composer) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return string(c.text)
}

// ExitPending reports whether EXIT awaits confirmation.
func (c *Composer) ExitPending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.exitPending
}

// Restore loads the saved draft into the buffer.
func (c *Composer) Restore(ctx context.Context) error {
	if c.drafts == nil {
		return nil
	}
	draft, err := c.drafts.Load(ctx)
	if err != nil {
		return fmt.Errorf("load draft: %w", err)
	}
	if draft.IsEmpty() {
		return nil
	}

	c.mu.Lock()
	c.text = []rune(draft.Text)
	c.mu.Unlock()

	c.logger.Info("restored draft", log.Int("chars", len([]rune(draft.Text))))
	c.notifyText(draft.Text)
	return nil
}

// OnCommit applies the key at pos.
func (c *Composer) OnCommit(ctx context.Context, pos scan.Position) error {
	key, ok := c.Layout().KeyAt(pos)
	if !ok {
		c.cancelExit()
		return fmt.Errorf("%w %s", ErrNoKey, pos)
	}
	c.logger.Info("key committed", log.String("key", key.Label), log.Stringer("position", pos))

	if key.Kind != KindExit {
		c.cancelExit()
	}

	switch key.Kind {
	case KindChar:
		c.edit(ctx, func(text []rune) []rune { return append(text, []rune(key.Label)...) })
	case KindSpace:
		c.edit(ctx, func(text []rune) []rune { return append(text, ' ') })
	case KindDelete:
		c.edit(ctx, func(text []rune) []rune {
			if len(text) == 0 {
				return text
			}
			return text[:len(text)-1]
		})
	case KindSend:
		return c.send(ctx)
	case KindExit:
		c.exit()
	}
	return nil
}

func (c *Composer) edit(ctx context.Context, fn func([]rune) []rune) {
	c.mu.Lock()
	c.text = fn(c.text)
	text := string(c.text)
	c.mu.Unlock()

	c.saveDraft(ctx, text)
	c.notifyText(text)
}

func (c *Composer) send(ctx context.Context) error {
	c.mu.Lock()
	text := string(c.text)
	c.mu.Unlock()

	msg, err := domain.NewMessage(text, c.now())
	if err != nil {
		c.logger.Info("nothing to send")
		return nil
	}

	var errs []error
	for _, sink := range c.sinks {
		if err := sink.Deliver(ctx, msg); err != nil {
			errs = append(errs, err)
		}
	}
	c.logger.Info("message sent", log.String("text", msg.Text), log.Int("sinks", len(c.sinks)))

	c.edit(ctx, func([]rune) []rune { return nil })

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("deliver message: %w", err)
	}
	return nil
}

func (c *Composer) exit() {
	c.mu.Lock()
	confirmed := c.exitPending
	c.exitPending = !confirmed
	c.mu.Unlock()

	if !confirmed {
		c.logger.Warn("select EXIT again to quit")
		c.notifyExitPending(true)
		return
	}

	c.logger.Info("exit confirmed")
	c.notifyExitPending(false)
	if c.onExit != nil {
		c.onExit()
	}
}

func (c *Composer) cancelExit() {
	c.mu.Lock()
	was := c.exitPending
	c.exitPending = false
	c.mu.Unlock()

	if was {
		c.logger.Info("exit cancelled")
		c.notifyExitPending(false)
	}
}

func (c *Composer) saveDraft(ctx context.Context, text string) {
	if c.drafts == nil {
		return
	}
	if err := c.drafts.Save(ctx, domain.Draft{Text: text, UpdatedAt: c.now().UTC()}); err != nil {
		c.logger.Error("failed to save draft", log.Err(err))
	}
}

func (c *Composer) notifyText(text string) {
	for _, o := range c.observers {
		o.OnText(text)
	}
}

func (c *Composer) notifyExitPending(pending bool) {
	for _, o := range c.observers {
		o.OnExitPending(pending)
	}
}

package deadline

import (
	"sync"
	"time"
)

// maxTicksPerArm bounds how many display ticks a single Arm schedules.
const maxTicksPerArm = 600

// Kind distinguishes the deadline firing from display ticks.
type Kind int

const (
	// Expired is the single firing at the deadline.
	Expired Kind = iota
	// Tick is a progress firing before the deadline.
	Tick
)

// String returns a human-readable representation of the kind.
func (k Kind) String() string {
	switch k {
	case Expired:
		return "expired"
	case Tick:
		return "tick"
	default:
		return "unknown"
	}
}

// Expiry is delivered on the timer channel.
type Expiry struct {
	Gen       uint64
	Kind      Kind
	Remaining time.Duration
}

// Timer is a restartable single-shot timer.
// Arm, Cancel and Accept are expected to be called from the goroutine that
// consumes C; Remaining is safe from any goroutine.
type Timer struct {
	clock Clock
	tick  time.Duration
	c     chan Expiry
	done  chan struct{}
	once  sync.Once

	mu       sync.Mutex
	gen      uint64
	armed    bool
	deadline time.Time
	pending  []Stopper
}

// New creates a timer. A tick interval <= 0 disables display ticks.
// A nil clock uses SystemClock.
func New(clock Clock, tick time.Duration) *Timer {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Timer{
		clock: clock,
		tick:  tick,
		c:     make(chan Expiry, 8),
		done:  make(chan struct{}),
	}
}

// C returns the channel on which expiries are delivered.
func (t *Timer) C() <-chan Expiry {
	return t.c
}

// Arm cancels any pending firing and schedules a new deadline d from now.
// It returns the generation carried by the new firings.
func (t *Timer) Arm(d time.Duration) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopLocked()
	t.gen++
	gen := t.gen
	t.armed = true
	t.deadline = t.clock.Now().Add(d)

	if t.tick > 0 {
		n := 0
		for off := t.tick; off < d && n < maxTicksPerArm; off += t.tick {
			remaining := d - off
			t.pending = append(t.pending, t.clock.AfterFunc(off, func() {
				t.deliver(Expiry{Gen: gen, Kind: Tick, Remaining: remaining})
			}))
			n++
		}
	}
	t.pending = append(t.pending, t.clock.AfterFunc(d, func() {
		t.deliver(Expiry{Gen: gen, Kind: Expired})
	}))
	return gen
}

// Cancel prevents any pending firing from being accepted.
// It is a no-op if the timer already fired or was never armed.
func (t *Timer) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.armed {
		return
	}
	t.stopLocked()
	t.gen++
	t.armed = false
}

// Accept reports whether e belongs to the current arming. Accepting the
// Expired firing disarms the timer, so it is accepted at most once.
func (t *Timer) Accept(e Expiry) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.armed || e.Gen != t.gen {
		return false
	}
	if e.Kind == Expired {
		t.armed = false
		t.pending = nil
	}
	return true
}

// Armed reports whether a deadline is pending.
func (t *Timer) Armed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.armed
}

// Remaining returns the time left before the deadline, or 0 when disarmed.
func (t *Timer) Remaining() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.armed {
		return 0
	}
	rem := t.deadline.Sub(t.clock.Now())
	if rem < 0 {
		return 0
	}
	return rem
}

// Close stops all pending firings and releases blocked deliveries.
func (t *Timer) Close() {
	t.once.Do(func() {
		t.mu.Lock()
		t.stopLocked()
		t.armed = false
		t.mu.Unlock()
		close(t.done)
	})
}

func (t *Timer) stopLocked() {
	for _, p := range t.pending {
		p.Stop()
	}
	t.pending = nil
}

func (t *Timer) deliver(e Expiry) {
	select {
	case t.c <- e:
	case <-t.done:
	}
}

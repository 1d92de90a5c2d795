package sensor

import (
	"context"
	"math/rand"
	"time"
)

const (
	DefaultBackoffInitial = 500 * time.Millisecond
	DefaultBackoffMax     = 10 * time.Second
)

// reconnectDelay returns the wait before reconnect attempt n (1-based):
// initial doubled n-1 times and capped at max, with 20% jitter either way.
func reconnectDelay(initial, max time.Duration, n int) time.Duration {
	base := initial
	for i := 1; i < n && base < max; i++ {
		base *= 2
	}
	base = min(base, max)
	spread := 0.8 + 0.4*rand.Float64()
	return time.Duration(float64(base) * spread)
}

// sleepCtx waits for d or until ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

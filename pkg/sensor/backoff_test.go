package sensor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReconnectDelay(t *testing.T) {
	const ms = time.Millisecond
	tests := []struct {
		attempt int
		base    time.Duration
	}{
		{1, 100 * ms},
		{2, 200 * ms},
		{3, 400 * ms},
		{4, 500 * ms},
		{30, 500 * ms},
	}
	for _, tt := range tests {
		d := reconnectDelay(100*ms, 500*ms, tt.attempt)
		assert.GreaterOrEqual(t, d, time.Duration(float64(tt.base)*0.8), "attempt %d", tt.attempt)
		assert.LessOrEqual(t, d, time.Duration(float64(tt.base)*1.2), "attempt %d", tt.attempt)
	}
}

func TestSleepCtx_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleepCtx(ctx, time.Hour), context.Canceled)
}

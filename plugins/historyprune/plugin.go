// Package historyprune deletes sent messages older than a retention period
// from the blinkscan history.
package historyprune

import (
	"context"
	"sync"
	"time"

	"github.com/bft-labs/blinkscan/internal/ports"
	"github.com/bft-labs/blinkscan/pkg/blinkscan"
	"github.com/bft-labs/blinkscan/pkg/log"
)

// Plugin periodically prunes the message history.
type Plugin struct {
	mu sync.RWMutex

	checkInterval  time.Duration
	retention      time.Duration
	runImmediately bool
	now            func() time.Time

	history ports.HistoryRepository
	logger  blinkscan.Logger
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	pruned  int64
}

// Config holds configuration options for the history prune plugin.
type Config struct {
	// CheckInterval is how often old messages are removed.
	// Default: 1 hour
	CheckInterval time.Duration

	// Retention is how long sent messages are kept.
	// Default: 30 days
	Retention time.Duration

	// RunImmediately prunes once on startup.
	RunImmediately bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		CheckInterval:  time.Hour,
		Retention:      30 * 24 * time.Hour,
		RunImmediately: true,
	}
}

// New creates a history prune plugin.
func New(cfg Config) *Plugin {
	defaults := DefaultConfig()
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = defaults.CheckInterval
	}
	if cfg.Retention <= 0 {
		cfg.Retention = defaults.Retention
	}
	return &Plugin{
		checkInterval:  cfg.CheckInterval,
		retention:      cfg.Retention,
		runImmediately: cfg.RunImmediately,
		now:            time.Now,
	}
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "historyprune"
}

// Initialize starts the prune loop.
func (p *Plugin) Initialize(ctx context.Context, cfg blinkscan.PluginConfig) error {
	p.mu.Lock()
	p.history = cfg.History
	p.logger = cfg.Logger
	if p.logger == nil {
		p.logger = log.NewNoopLogger()
	}
	p.mu.Unlock()

	if p.history == nil {
		p.logger.Warn("history prune disabled: history is off")
		return nil
	}

	pruneCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.logger.Info("history prune plugin initialized",
		log.Duration("retention", p.retention),
		log.Duration("interval", p.checkInterval),
	)

	p.wg.Add(1)
	go p.pruneLoop(pruneCtx)
	return nil
}

// Shutdown stops the prune loop.
func (p *Plugin) Shutdown(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
	return nil
}

// Pruned returns the number of messages deleted so far.
func (p *Plugin) Pruned() int64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.pruned
}

func (p *Plugin) pruneLoop(ctx context.Context) {
	defer p.wg.Done()

	if p.runImmediately {
		p.pruneOnce(ctx)
	}

	ticker := time.NewTicker(p.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.pruneOnce(ctx)
		}
	}
}

func (p *Plugin) pruneOnce(ctx context.Context) {
	cutoff := p.now().Add(-p.retention)
	n, err := p.history.PruneBefore(ctx, cutoff)
	if err != nil {
		if ctx.Err() == nil {
			p.logger.Error("history prune failed", log.Err(err))
		}
		return
	}

	p.mu.Lock()
	p.pruned += n
	p.mu.Unlock()

	if n > 0 {
		p.logger.Info("pruned history",
			log.Int64("deleted", n),
			log.String("before", cutoff.UTC().Format(time.RFC3339)),
		)
	}
}

var _ blinkscan.Plugin = (*Plugin)(nil)

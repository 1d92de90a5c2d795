// Package layoutwatcher reloads the keyboard layout when its YAML file
// changes on disk.
package layoutwatcher

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/blinkscan/pkg/blinkscan"
	"github.com/bft-labs/blinkscan/pkg/keyboard"
	"github.com/bft-labs/blinkscan/pkg/log"
	"github.com/bft-labs/blinkscan/pkg/scan"
)

// Plugin watches the layout file of a Blinkscan instance.
type Plugin struct {
	mu sync.Mutex

	debounceDelay time.Duration

	path     string
	grid     scan.Grid
	keyboard blinkscan.LayoutSwitcher
	logger   blinkscan.Logger
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	debounce *time.Timer
	reloads  int
}

// Config holds configuration options for the layout watcher.
type Config struct {
	// DebounceDelay is how long the file must stay quiet before it is
	// reloaded. Editors often write a file in several steps.
	// Default: 200 milliseconds
	DebounceDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{DebounceDelay: 200 * time.Millisecond}
}

// New creates a layout watcher.
func New(cfg Config) *Plugin {
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = DefaultConfig().DebounceDelay
	}
	return &Plugin{debounceDelay: cfg.DebounceDelay}
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "layoutwatcher"
}

// Initialize starts watching cfg.LayoutFile.
func (p *Plugin) Initialize(ctx context.Context, cfg blinkscan.PluginConfig) error {
	p.mu.Lock()
	p.path = cfg.LayoutFile
	p.grid = cfg.Grid
	p.keyboard = cfg.Keyboard
	p.logger = cfg.Logger
	p.mu.Unlock()

	if p.logger == nil {
		p.logger = log.NewNoopLogger()
	}
	if p.path == "" || p.keyboard == nil {
		p.logger.Warn("layout watcher disabled: no layout file configured")
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	// Watch the directory so that atomic replaces are seen.
	if err := watcher.Add(filepath.Dir(p.path)); err != nil {
		watcher.Close()
		return err
	}

	watchCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.logger.Info("layout watcher initialized", log.String("path", p.path))

	p.wg.Add(1)
	go p.watchLoop(watchCtx, watcher)
	return nil
}

// Shutdown stops watching.
func (p *Plugin) Shutdown(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()

	p.mu.Lock()
	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.mu.Unlock()
	return nil
}

// Reloads returns the number of layouts applied since Initialize.
func (p *Plugin) Reloads() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reloads
}

func (p *Plugin) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer p.wg.Done()
	defer watcher.Close()

	name := filepath.Base(p.path)
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			p.scheduleReload(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			p.logger.Error("layout watcher error", log.Err(err))
		}
	}
}

func (p *Plugin) scheduleReload(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.debounce = time.AfterFunc(p.debounceDelay, func() {
		if ctx.Err() != nil {
			return
		}
		p.reload()
	})
}

// reload applies the file if it parses and fits the scan grid. A rejected
// file leaves the current layout in place.
func (p *Plugin) reload() {
	layout, err := keyboard.LoadLayout(p.path)
	if err != nil {
		p.logger.Warn("layout reload rejected", log.Err(err))
		return
	}
	if err := layout.Fits(p.grid); err != nil {
		p.logger.Warn("layout reload rejected", log.Err(err))
		return
	}

	p.keyboard.SetLayout(layout)

	p.mu.Lock()
	p.reloads++
	p.mu.Unlock()

	p.logger.Info("layout reloaded",
		log.String("name", layout.Name()),
		log.Int("keys", layout.Len()),
	)
}

var _ blinkscan.Plugin = (*Plugin)(nil)

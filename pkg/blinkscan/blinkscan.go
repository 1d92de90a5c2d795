package blinkscan

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/bft-labs/blinkscan/internal/adapters/fs"
	"github.com/bft-labs/blinkscan/internal/adapters/sqlite"
	"github.com/bft-labs/blinkscan/internal/adapters/ws"
	"github.com/bft-labs/blinkscan/internal/app"
	"github.com/bft-labs/blinkscan/internal/domain"
	"github.com/bft-labs/blinkscan/internal/ports"
	"github.com/bft-labs/blinkscan/pkg/keyboard"
	"github.com/bft-labs/blinkscan/pkg/log"
	"github.com/bft-labs/blinkscan/pkg/scan"
	"github.com/bft-labs/blinkscan/pkg/sensor"
)

// Blinkscan is a blink-driven scanning keyboard that can be embedded in
// other applications. Use New to create an instance, then Start.
type Blinkscan struct {
	config    Config
	opts      options
	lifecycle *app.Lifecycle
	session   *app.Session
	engine    *scan.Engine
	link      *sensor.Link
	composer  *keyboard.Composer
	hub       *ws.Hub
	historyDB *sql.DB
	history   *sqlite.HistoryRepository
	logger    log.Logger
	plugins   []Plugin

	mu         sync.RWMutex
	cancel     context.CancelFunc
	done       chan struct{}
	pluginsUp  bool
	closedOnce sync.Once
}

// New creates a Blinkscan instance in StateStopped.
// Returns an error if the configuration or the layout is invalid.
func New(cfg Config, opts ...Option) (*Blinkscan, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := validateModuleVersions(); err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger
	if logger == nil {
		logger = log.NewNoopLogger()
	}

	layout, err := resolveLayout(cfg, o)
	if err != nil {
		return nil, err
	}
	grid := cfg.scanConfig().Grid
	if err := layout.Fits(grid); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err)
	}

	b := &Blinkscan{
		config:  cfg,
		opts:    o,
		logger:  logger,
		plugins: o.plugins,
		done:    make(chan struct{}),
	}
	b.lifecycle = app.NewLifecycle(logger, lifecycleEmitter{handler: o.eventHandler})

	// Keyboard
	composerOpts := []keyboard.Option{keyboard.WithLogger(logger)}
	if cfg.StateDir != "" {
		composerOpts = append(composerOpts, keyboard.WithDraftRepository(fs.NewDraftFileRepository(cfg.StateDir)))
	}
	if cfg.HistoryDB != "" {
		db, err := sqlite.Open(cfg.HistoryDB)
		if err != nil {
			return nil, fmt.Errorf("open history: %w", err)
		}
		b.historyDB = db
		b.history = sqlite.NewHistoryRepository(db)
		composerOpts = append(composerOpts, keyboard.WithMessageSink(b.history))
	}
	for _, sink := range o.messageSinks {
		composerOpts = append(composerOpts, keyboard.WithMessageSink(sink))
	}
	exit := o.onExit
	if exit == nil {
		exit = b.lifecycle.Cancel
	}
	composerOpts = append(composerOpts, keyboard.WithExitFunc(exit))

	scanEvents := scanEmitter{handler: o.eventHandler, label: func(pos scan.Position) string {
		return b.composer.Layout().Label(pos)
	}}
	composerOpts = append(composerOpts, keyboard.WithMessageSink(scanEvents))

	// Engine
	engineOpts := []scan.Option{scan.WithLogger(logger), scan.WithObserver(scanEvents)}
	if o.clock != nil {
		engineOpts = append(engineOpts, scan.WithClock(o.clock))
	}

	// Link
	linkEvents := linkEmitter{handler: o.eventHandler}
	linkOpts := []sensor.Option{sensor.WithLogger(logger), sensor.WithNotifier(linkEvents)}
	if o.dialer != nil {
		linkOpts = append(linkOpts, sensor.WithDialer(o.dialer))
	}

	observers := o.observers
	if cfg.WSListen != "" {
		b.hub = ws.NewHub(logger, b.Trigger)
		observers = append(observers, b.hub)
	}
	for _, v := range observers {
		if obs, ok := v.(scan.Observer); ok {
			engineOpts = append(engineOpts, scan.WithObserver(obs))
		}
		if n, ok := v.(sensor.Notifier); ok {
			linkOpts = append(linkOpts, sensor.WithNotifier(n))
		}
		if obs, ok := v.(keyboard.Observer); ok {
			composerOpts = append(composerOpts, keyboard.WithObserver(obs))
		}
		if sink, ok := v.(ports.MessageSink); ok {
			composerOpts = append(composerOpts, keyboard.WithMessageSink(sink))
		}
	}

	b.composer = keyboard.NewComposer(layout, composerOpts...)

	var sink scan.CommitSink = b.composer
	if len(o.commitSinks) > 0 {
		sink = append(commitChain{b.composer}, o.commitSinks...)
	}
	b.engine, err = scan.NewEngine(cfg.scanConfig(), sink, engineOpts...)
	if err != nil {
		b.closeHistory()
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err)
	}

	var linkRunner app.Runner
	if !cfg.DisableLink {
		b.link, err = sensor.NewLink(cfg.sensorConfig(), b.engine, linkOpts...)
		if err != nil {
			b.closeHistory()
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err)
		}
		linkRunner = b.link
	}

	b.session = app.NewSession(
		app.SessionConfig{StopOnLinkExit: cfg.StopOnLinkExit},
		b.engine,
		linkRunner,
		b.composer,
		logger,
		linkEvents,
	)
	return b, nil
}

func resolveLayout(cfg Config, o options) (*keyboard.Layout, error) {
	switch {
	case o.layout != nil:
		return o.layout, nil
	case cfg.LayoutFile != "":
		l, err := keyboard.LoadLayout(cfg.LayoutFile)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err)
		}
		return l, nil
	default:
		return keyboard.DefaultLayout(), nil
	}
}

// Start begins scanning in the background and returns once plugins are
// initialized. The provided context bounds the lifetime of the instance.
func (b *Blinkscan) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.lifecycle.CanStart() {
		return domain.ErrAlreadyRunning
	}
	if err := b.lifecycle.TransitionTo(app.StateStarting, "Start() called"); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	b.cancel = cancel
	b.lifecycle.SetCancel(cancel)
	done := make(chan struct{})
	b.done = done

	pluginCfg := PluginConfig{
		StateDir:   b.config.StateDir,
		LayoutFile: b.config.LayoutFile,
		HistoryDB:  b.config.HistoryDB,
		Grid:       b.engine.Grid(),
		Logger:     b.logger,
		Keyboard:   b.composer,
	}
	if b.history != nil {
		pluginCfg.History = b.history
	}
	for i, p := range b.plugins {
		if err := p.Initialize(runCtx, pluginCfg); err != nil {
			b.logger.Error("plugin initialization failed",
				log.String("plugin", p.Name()),
				log.Err(err))
			cancel()
			b.shutdownPlugins(b.plugins[:i])
			close(done)
			_ = b.lifecycle.TransitionTo(app.StateCrashed, "plugin init failed: "+p.Name())
			return err
		}
		b.logger.Info("plugin initialized", log.String("plugin", p.Name()))
	}
	b.pluginsUp = true

	if b.hub != nil {
		b.lifecycle.Go(runCtx, "events", func(ctx context.Context) error {
			return b.hub.ListenAndServe(ctx, b.config.WSListen)
		}, nil)
	}

	b.lifecycle.Go(runCtx, "session", func(ctx context.Context) error {
		if err := b.lifecycle.TransitionTo(app.StateRunning, "session starting"); err != nil {
			// Stop won the race; nothing to run.
			return nil
		}
		return b.session.Run(ctx)
	}, func(err error) {
		defer close(done)
		if err == nil || errors.Is(err, context.Canceled) {
			return
		}
		cancel()
		if b.lifecycle.TransitionTo(app.StateCrashed, err.Error()) == nil {
			b.mu.Lock()
			b.releasePlugins()
			b.mu.Unlock()
		}
	})

	return nil
}

// Stop cancels scanning, waits up to app.ShutdownTimeout for the workers
// and shuts plugins down in reverse order. Returns ErrShutdownTimeout if
// the workers did not finish in time.
func (b *Blinkscan) Stop() error {
	b.mu.Lock()
	if !b.lifecycle.CanStop() {
		b.mu.Unlock()
		return domain.ErrNotRunning
	}
	if err := b.lifecycle.TransitionTo(app.StateStopping, "Stop() called"); err != nil {
		b.mu.Unlock()
		return err
	}
	if b.cancel != nil {
		b.cancel()
	}
	b.mu.Unlock()

	err := b.lifecycle.WaitWithTimeout(app.ShutdownTimeout)

	b.mu.Lock()
	b.releasePlugins()
	b.mu.Unlock()

	if err != nil {
		_ = b.lifecycle.TransitionTo(app.StateCrashed, "shutdown timeout")
	} else {
		_ = b.lifecycle.TransitionTo(app.StateStopped, "graceful shutdown")
	}
	return err
}

// Close releases the history database and the engine timer. The instance
// cannot be started again afterwards.
func (b *Blinkscan) Close() error {
	if b.lifecycle.CanStop() {
		_ = b.Stop()
	}
	var err error
	b.closedOnce.Do(func() {
		b.engine.Close()
		err = b.closeHistory()
	})
	return err
}

// releasePlugins shuts down plugins once per start. Callers hold b.mu.
func (b *Blinkscan) releasePlugins() {
	if !b.pluginsUp {
		return
	}
	b.pluginsUp = false
	b.shutdownPlugins(b.plugins)
}

func (b *Blinkscan) shutdownPlugins(plugins []Plugin) {
	ctx := context.Background()
	for i := len(plugins) - 1; i >= 0; i-- {
		p := plugins[i]
		if err := p.Shutdown(ctx); err != nil {
			b.logger.Error("plugin shutdown failed",
				log.String("plugin", p.Name()),
				log.Err(err))
		} else {
			b.logger.Info("plugin shutdown complete", log.String("plugin", p.Name()))
		}
	}
}

func (b *Blinkscan) closeHistory() error {
	if b.historyDB == nil {
		return nil
	}
	return b.historyDB.Close()
}

// Status returns the current lifecycle state.
// Safe to call concurrently from any goroutine.
func (b *Blinkscan) Status() State {
	return convertState(b.lifecycle.State())
}

// Done is closed when the scanning session of the latest Start ends,
// whether by Stop, a confirmed EXIT or a failure.
func (b *Blinkscan) Done() <-chan struct{} {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.done
}

// Trigger injects a manual trigger, as if a strong blink was detected.
func (b *Blinkscan) Trigger(ctx context.Context) error {
	return b.engine.Trigger(ctx)
}

// Engine returns the scan engine.
func (b *Blinkscan) Engine() *scan.Engine { return b.engine }

// Composer returns the keyboard receiving commits.
func (b *Blinkscan) Composer() *keyboard.Composer { return b.composer }

// Link returns the sensor link, or nil when Config.DisableLink is set.
func (b *Blinkscan) Link() *sensor.Link { return b.link }

// History returns the sent message history, or nil when disabled.
func (b *Blinkscan) History() ports.HistoryRepository {
	if b.history == nil {
		return nil
	}
	return b.history
}

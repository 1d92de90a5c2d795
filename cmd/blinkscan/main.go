package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/blinkscan/internal/adapters/console"
	webhook "github.com/bft-labs/blinkscan/internal/adapters/http"
	"github.com/bft-labs/blinkscan/internal/adapters/replay"
	"github.com/bft-labs/blinkscan/internal/cliconfig"
	"github.com/bft-labs/blinkscan/internal/tui"
	"github.com/bft-labs/blinkscan/pkg/blinkscan"
	"github.com/bft-labs/blinkscan/pkg/log"
	"github.com/bft-labs/blinkscan/pkg/scan"
	"github.com/bft-labs/blinkscan/plugins/historyprune"
	"github.com/bft-labs/blinkscan/plugins/layoutwatcher"
)

const helpBanner = `
 _     _ _       _
| |__ | (_)_ __ | | _____  ___ __ _ _ __
| '_ \| | | '_ \| |/ / __|/ __/ _' | '_ \
| |_) | | | | | |   <\__ \ (_| (_| | | | |
|_.__/|_|_|_| |_|_|\_\___/\___\__,_|_| |_|
`

const helpDescription = `
Type with your eyes. blinkscan reads blink strength from a ThinkGear bridge
and drives a row/column scanning keyboard with a single switch.

How it works:
  - A blink starts a cycle and steps the highlighted column.
  - Pause for the dwell time to lock the column, then blink to step rows.
  - Pause again to type the highlighted key. SEND delivers the text.
  - Select EXIT twice in a row to quit.

Keyboard: space or enter acts as a blink, q quits.
`

var longHelp = strings.TrimSpace(helpBanner) + "\n\n" + strings.TrimSpace(helpDescription)

var exampleUsage = strings.TrimSpace(`
  blinkscan --host 127.0.0.1 --port 13854
  blinkscan --replay session.jsonl --ui console
  blinkscan --config $HOME/.blinkscan/config.toml --watch-layout
  blinkscan history --limit 20
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	root := &cobra.Command{
		Use:           "blinkscan",
		Short:         "Single-switch scanning keyboard driven by eye blinks",
		Long:          longHelp,
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s (library %s) %s/%s", getVersion(), blinkscan.Version, runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(cmd, &cfg, cfgPath); err != nil {
				return err
			}
			return run(cfg)
		},
	}

	flags := root.Flags()
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.blinkscan/config.toml)")

	flags.StringVar(&cfg.Host, "host", cfg.Host, "ThinkGear bridge host")
	flags.IntVar(&cfg.Port, "port", cfg.Port, "ThinkGear bridge port")
	flags.DurationVar(&cfg.DialTimeout, "dial-timeout", cfg.DialTimeout, "bridge connection timeout")

	flags.StringVar(&cfg.Replay, "replay", cfg.Replay, "read bridge records from a capture file instead of the bridge")
	flags.BoolVar(&cfg.ReplayFollow, "replay-follow", cfg.ReplayFollow, "keep reading records appended to the capture file")
	flags.DurationVar(&cfg.ReplayInterval, "replay-interval", cfg.ReplayInterval, "delay between replayed records")

	flags.IntVar(&cfg.Threshold, "threshold", cfg.Threshold, "minimum blink strength treated as a trigger")
	flags.DurationVar(&cfg.Dwell, "dwell", cfg.Dwell, "inactivity time that ends a scanning phase")
	flags.DurationVar(&cfg.TickInterval, "tick", cfg.TickInterval, "countdown refresh interval (0 disables countdown)")
	flags.IntVar(&cfg.Rows, "rows", cfg.Rows, "keyboard rows")
	flags.IntVar(&cfg.Columns, "columns", cfg.Columns, "keyboard columns")
	flags.StringVar(&cfg.LayoutFile, "layout", cfg.LayoutFile, "YAML keyboard layout file")
	flags.BoolVar(&cfg.WatchLayout, "watch-layout", cfg.WatchLayout, "reload the layout file when it changes")

	flags.IntVar(&cfg.ReconnectAttempts, "reconnect-attempts", cfg.ReconnectAttempts, "consecutive failed connections tolerated (0 stops at the first failure)")
	flags.DurationVar(&cfg.BackoffInitial, "backoff-initial", cfg.BackoffInitial, "first reconnect delay")
	flags.DurationVar(&cfg.BackoffMax, "backoff-max", cfg.BackoffMax, "maximum reconnect delay")
	flags.BoolVar(&cfg.CommitOnDisconnect, "commit-on-disconnect", cfg.CommitOnDisconnect, "let a running cycle commit after the bridge disconnects")
	flags.BoolVar(&cfg.ExitOnDisconnect, "exit-on-disconnect", cfg.ExitOnDisconnect, "quit when the bridge link gives up")

	flags.StringVar(&cfg.StateDir, "state-dir", cfg.StateDir, "directory for the draft and history (default: $HOME/.blinkscan)")
	flags.StringVar(&cfg.HistoryDB, "history-db", cfg.HistoryDB, `sqlite history path, or "off" (default: <state-dir>/history.db)`)
	flags.DurationVar(&cfg.HistoryRetention, "history-retention", cfg.HistoryRetention, "age after which sent messages are pruned (0 keeps everything)")
	flags.DurationVar(&cfg.PruneInterval, "prune-interval", cfg.PruneInterval, "history prune interval")

	flags.StringVar(&cfg.WSListen, "ws-listen", cfg.WSListen, "serve a websocket event stream on this address")
	flags.StringVar(&cfg.WebhookURL, "webhook-url", cfg.WebhookURL, "POST every sent message to this URL")
	flags.StringVar(&cfg.WebhookToken, "webhook-token", cfg.WebhookToken, "bearer token for the webhook")
	flags.DurationVar(&cfg.WebhookTimeout, "webhook-timeout", cfg.WebhookTimeout, "webhook request timeout")

	flags.StringVar(&cfg.UI, "ui", cfg.UI, `user interface: "tui" or "console"`)
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	flags.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format (auto, console, json)")

	root.AddCommand(newLayoutCommand(&cfg, &cfgPath), newHistoryCommand(&cfg, &cfgPath))

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "blinkscan: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig layers the config file and BLINKSCAN_* variables under the
// flags set on cmd, then validates the result.
func loadConfig(cmd *cobra.Command, cfg *cliconfig.Config, cfgPath string) error {
	cfgFile := cfgPath
	if cfgFile == "" {
		cfgFile = cliconfig.DefaultConfigPath()
	}

	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	if cfgFile != "" && cliconfig.FileExists(cfgFile) {
		fc, err := cliconfig.LoadFileConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := cliconfig.ApplyFileConfig(cfg, fc, changed); err != nil {
			return err
		}
	} else if cfgPath != "" {
		return fmt.Errorf("config file %s not found", cfgPath)
	}

	if err := cliconfig.ApplyEnvConfig(cfg, changed); err != nil {
		return err
	}
	return cfg.Validate()
}

func newLogger(w io.Writer, cfg cliconfig.Config, format string) (*log.ZerologAdapter, error) {
	if format == "" {
		format = cfg.LogFormat
	}
	return log.New(w, log.Options{Level: cfg.LogLevel, Format: format})
}

// libraryConfig maps CLI settings onto the library configuration.
func libraryConfig(cfg cliconfig.Config) blinkscan.Config {
	lib := blinkscan.Config{
		Addr:               cfg.Addr(),
		DialTimeout:        cfg.DialTimeout,
		Threshold:          cfg.Threshold,
		Dwell:              cfg.Dwell,
		TickInterval:       cfg.TickInterval,
		Rows:               cfg.Rows,
		Columns:            cfg.Columns,
		CommitOnDisconnect: cfg.CommitOnDisconnect,
		ReconnectAttempts:  cfg.ReconnectAttempts,
		BackoffInitial:     cfg.BackoffInitial,
		BackoffMax:         cfg.BackoffMax,
		StopOnLinkExit:     cfg.ExitOnDisconnect,
		LayoutFile:         cfg.LayoutFile,
		StateDir:           cfg.StateDir,
		WSListen:           cfg.WSListen,
	}
	if cfg.TickInterval == 0 {
		lib.TickInterval = -1
	}
	if cfg.HistoryEnabled() {
		lib.HistoryDB = cfg.HistoryDB
	}
	return lib
}

func run(cfg cliconfig.Config) error {
	var (
		bridge  *tui.Bridge
		logger  *log.ZerologAdapter
		err     error
		b       *blinkscan.Blinkscan
		options []blinkscan.Option
	)

	label := func(pos scan.Position) string {
		return b.Composer().Layout().Label(pos)
	}

	switch cfg.UI {
	case cliconfig.UITUI:
		// The TUI owns the terminal, so log lines go to its log panel.
		bridge = tui.NewBridge()
		format := cfg.LogFormat
		if format == log.FormatAuto {
			format = log.FormatConsole
		}
		logger, err = newLogger(bridge.Writer(), cfg, format)
		options = append(options, blinkscan.WithObserver(bridge))
	default:
		logger, err = newLogger(os.Stderr, cfg, "")
		printer := console.NewPrinter(os.Stdout, label)
		printer.ShowCountdown(cfg.TickInterval > 0)
		options = append(options, blinkscan.WithObserver(printer))
	}
	if err != nil {
		return err
	}

	logCfg := cfg
	if logCfg.WebhookToken != "" {
		logCfg.WebhookToken = "*****"
	}
	zl := logger.Logger()
	zl.Info().Interface("config", logCfg).Msg("configuration")

	options = append(options, blinkscan.WithLogger(logger))
	if cfg.Replay != "" {
		options = append(options, blinkscan.WithDialer(replay.Dialer{
			Path:     cfg.Replay,
			Follow:   cfg.ReplayFollow,
			Interval: cfg.ReplayInterval,
		}))
	}
	if cfg.WatchLayout && cfg.LayoutFile != "" {
		options = append(options, layoutwatcher.WithDefaultLayoutWatcher())
	}
	if cfg.HistoryEnabled() && cfg.HistoryRetention > 0 {
		options = append(options, historyprune.WithHistoryPrune(historyprune.Config{
			CheckInterval:  cfg.PruneInterval,
			Retention:      cfg.HistoryRetention,
			RunImmediately: true,
		}))
	}
	if cfg.WebhookURL != "" {
		client := &http.Client{Timeout: cfg.WebhookTimeout}
		options = append(options, blinkscan.WithMessageSink(
			webhook.NewWebhookSink(client, cfg.WebhookURL, cfg.WebhookToken, logger),
		))
	}

	b, err = blinkscan.New(libraryConfig(cfg), options...)
	if err != nil {
		return fmt.Errorf("create blinkscan: %w", err)
	}
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	if err := b.Start(ctx); err != nil {
		return fmt.Errorf("start blinkscan: %w", err)
	}

	if bridge != nil {
		go func() {
			select {
			case <-sigCh:
				cancel()
			case <-ctx.Done():
			}
		}()
		model := tui.New(b.Composer().Layout().Grid(), label, b.Trigger)
		if err := tui.Run(ctx, model, bridge, b.Done()); err != nil {
			logger.Error("terminal ui failed", log.Err(err))
		}
	} else {
		select {
		case <-sigCh:
			logger.Info("received signal, stopping...")
		case <-b.Done():
		}
	}

	if b.Status() == blinkscan.StateCrashed {
		return fmt.Errorf("blinkscan stopped after a failure")
	}
	if err := b.Stop(); err != nil {
		return fmt.Errorf("stop blinkscan: %w", err)
	}
	return nil
}

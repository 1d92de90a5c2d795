package cliconfig

import (
	"os"
	"time"
)

// EnvPrefix prefixes every environment variable read by ApplyEnvConfig.
const EnvPrefix = "BLINKSCAN_"

func env(name string) string {
	return os.Getenv(EnvPrefix + name)
}

// ApplyEnvConfig applies configuration from environment variables (BLINKSCAN_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("host", env("HOST"), &cfg.Host)
	s.setString("replay", env("REPLAY"), &cfg.Replay)
	s.setString("layout", env("LAYOUT_FILE"), &cfg.LayoutFile)
	s.setString("state-dir", env("STATE_DIR"), &cfg.StateDir)
	s.setString("history-db", env("HISTORY_DB"), &cfg.HistoryDB)
	s.setString("ws-listen", env("WS_LISTEN"), &cfg.WSListen)
	s.setString("webhook-url", env("WEBHOOK_URL"), &cfg.WebhookURL)
	s.setString("webhook-token", env("WEBHOOK_TOKEN"), &cfg.WebhookToken)
	s.setString("ui", env("UI"), &cfg.UI)
	s.setString("log-level", env("LOG_LEVEL"), &cfg.LogLevel)
	s.setString("log-format", env("LOG_FORMAT"), &cfg.LogFormat)

	durations := []struct {
		flag, name string
		dst        *time.Duration
	}{
		{"dial-timeout", "DIAL_TIMEOUT", &cfg.DialTimeout},
		{"replay-interval", "REPLAY_INTERVAL", &cfg.ReplayInterval},
		{"dwell", "DWELL", &cfg.Dwell},
		{"tick", "TICK_INTERVAL", &cfg.TickInterval},
		{"backoff-initial", "BACKOFF_INITIAL", &cfg.BackoffInitial},
		{"backoff-max", "BACKOFF_MAX", &cfg.BackoffMax},
		{"history-retention", "HISTORY_RETENTION", &cfg.HistoryRetention},
		{"prune-interval", "PRUNE_INTERVAL", &cfg.PruneInterval},
		{"webhook-timeout", "WEBHOOK_TIMEOUT", &cfg.WebhookTimeout},
	}
	for _, d := range durations {
		if err := s.setDuration(d.flag, env(d.name), d.dst); err != nil {
			return err
		}
	}

	ints := []struct {
		flag, name string
		dst        *int
	}{
		{"port", "PORT", &cfg.Port},
		{"threshold", "THRESHOLD", &cfg.Threshold},
		{"rows", "ROWS", &cfg.Rows},
		{"columns", "COLUMNS", &cfg.Columns},
		{"reconnect-attempts", "RECONNECT_ATTEMPTS", &cfg.ReconnectAttempts},
	}
	for _, i := range ints {
		if err := s.setIntFromString(i.flag, env(i.name), i.dst); err != nil {
			return err
		}
	}

	bools := []struct {
		flag, name string
		dst        *bool
	}{
		{"replay-follow", "REPLAY_FOLLOW", &cfg.ReplayFollow},
		{"watch-layout", "WATCH_LAYOUT", &cfg.WatchLayout},
		{"commit-on-disconnect", "COMMIT_ON_DISCONNECT", &cfg.CommitOnDisconnect},
		{"exit-on-disconnect", "EXIT_ON_DISCONNECT", &cfg.ExitOnDisconnect},
	}
	for _, b := range bools {
		if err := s.setBoolFromString(b.flag, env(b.name), b.dst); err != nil {
			return err
		}
	}

	return nil
}

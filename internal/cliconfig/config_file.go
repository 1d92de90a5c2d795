package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	Host               string `toml:"host"`
	Port               int    `toml:"port"`
	DialTimeout        string `toml:"dial_timeout"`
	Replay             string `toml:"replay"`
	ReplayFollow       *bool  `toml:"replay_follow"`
	ReplayInterval     string `toml:"replay_interval"`
	Threshold          int    `toml:"threshold"`
	Dwell              string `toml:"dwell"`
	TickInterval       string `toml:"tick_interval"`
	Rows               int    `toml:"rows"`
	Columns            int    `toml:"columns"`
	LayoutFile         string `toml:"layout_file"`
	WatchLayout        *bool  `toml:"watch_layout"`
	ReconnectAttempts  int    `toml:"reconnect_attempts"`
	BackoffInitial     string `toml:"backoff_initial"`
	BackoffMax         string `toml:"backoff_max"`
	CommitOnDisconnect *bool  `toml:"commit_on_disconnect"`
	StateDir           string `toml:"state_dir"`
	HistoryDB          string `toml:"history_db"`
	HistoryRetention   string `toml:"history_retention"`
	PruneInterval      string `toml:"prune_interval"`
	ExitOnDisconnect   *bool  `toml:"exit_on_disconnect"`
	WSListen           string `toml:"ws_listen"`
	WebhookURL         string `toml:"webhook_url"`
	WebhookToken       string `toml:"webhook_token"`
	WebhookTimeout     string `toml:"webhook_timeout"`
	UI                 string `toml:"ui"`
	LogLevel           string `toml:"log_level"`
	LogFormat          string `toml:"log_format"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.blinkscan/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".blinkscan", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("host", fc.Host, &cfg.Host)
	s.setString("replay", fc.Replay, &cfg.Replay)
	s.setString("layout", fc.LayoutFile, &cfg.LayoutFile)
	s.setString("state-dir", fc.StateDir, &cfg.StateDir)
	s.setString("history-db", fc.HistoryDB, &cfg.HistoryDB)
	s.setString("ws-listen", fc.WSListen, &cfg.WSListen)
	s.setString("webhook-url", fc.WebhookURL, &cfg.WebhookURL)
	s.setString("webhook-token", fc.WebhookToken, &cfg.WebhookToken)
	s.setString("ui", fc.UI, &cfg.UI)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)
	s.setString("log-format", fc.LogFormat, &cfg.LogFormat)

	if err := s.setDuration("dial-timeout", fc.DialTimeout, &cfg.DialTimeout); err != nil {
		return err
	}
	if err := s.setDuration("replay-interval", fc.ReplayInterval, &cfg.ReplayInterval); err != nil {
		return err
	}
	if err := s.setDuration("dwell", fc.Dwell, &cfg.Dwell); err != nil {
		return err
	}
	if err := s.setDuration("tick", fc.TickInterval, &cfg.TickInterval); err != nil {
		return err
	}
	if err := s.setDuration("backoff-initial", fc.BackoffInitial, &cfg.BackoffInitial); err != nil {
		return err
	}
	if err := s.setDuration("backoff-max", fc.BackoffMax, &cfg.BackoffMax); err != nil {
		return err
	}
	if err := s.setDuration("history-retention", fc.HistoryRetention, &cfg.HistoryRetention); err != nil {
		return err
	}
	if err := s.setDuration("prune-interval", fc.PruneInterval, &cfg.PruneInterval); err != nil {
		return err
	}
	if err := s.setDuration("webhook-timeout", fc.WebhookTimeout, &cfg.WebhookTimeout); err != nil {
		return err
	}

	s.setInt("port", fc.Port, &cfg.Port)
	s.setInt("threshold", fc.Threshold, &cfg.Threshold)
	s.setInt("rows", fc.Rows, &cfg.Rows)
	s.setInt("columns", fc.Columns, &cfg.Columns)
	s.setInt("reconnect-attempts", fc.ReconnectAttempts, &cfg.ReconnectAttempts)

	s.setBool("replay-follow", fc.ReplayFollow, &cfg.ReplayFollow)
	s.setBool("watch-layout", fc.WatchLayout, &cfg.WatchLayout)
	s.setBool("commit-on-disconnect", fc.CommitOnDisconnect, &cfg.CommitOnDisconnect)
	s.setBool("exit-on-disconnect", fc.ExitOnDisconnect, &cfg.ExitOnDisconnect)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

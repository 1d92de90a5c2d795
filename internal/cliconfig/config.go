package cliconfig

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Defaults for the bridge connection and scanning.
const (
	DefaultHost             = "127.0.0.1"
	DefaultPort             = 13854
	DefaultThreshold        = 70
	DefaultHistoryRetention = 30 * 24 * time.Hour
	DefaultPruneInterval    = time.Hour
)

// UI modes.
const (
	UITUI     = "tui"
	UIConsole = "console"
)

// HistoryOff disables the message history store.
const HistoryOff = "off"

// Config holds CLI configuration for blinkscan.
type Config struct {
	Host        string
	Port        int
	DialTimeout time.Duration

	// Replay reads a capture file instead of dialing the bridge.
	Replay         string
	ReplayFollow   bool
	ReplayInterval time.Duration

	Threshold    int
	Dwell        time.Duration
	TickInterval time.Duration
	Rows         int
	Columns      int
	LayoutFile   string
	WatchLayout  bool

	ReconnectAttempts  int
	BackoffInitial     time.Duration
	BackoffMax         time.Duration
	CommitOnDisconnect bool
	ExitOnDisconnect   bool

	StateDir         string
	HistoryDB        string
	HistoryRetention time.Duration
	PruneInterval    time.Duration

	WSListen string

	// WebhookURL receives every sent message as JSON. Empty disables it.
	WebhookURL     string
	WebhookToken   string
	WebhookTimeout time.Duration

	UI        string
	LogLevel  string
	LogFormat string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Host:             DefaultHost,
		Port:             DefaultPort,
		DialTimeout:      5 * time.Second,
		Threshold:        DefaultThreshold,
		Dwell:            5 * time.Second,
		TickInterval:     time.Second,
		Rows:             5,
		Columns:          8,
		BackoffInitial:   500 * time.Millisecond,
		BackoffMax:       10 * time.Second,
		HistoryRetention: DefaultHistoryRetention,
		PruneInterval:    DefaultPruneInterval,
		WebhookTimeout:   10 * time.Second,
		UI:               UITUI,
		LogLevel:         "info",
		LogFormat:        "auto",
	}
}

// Addr returns the bridge address.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// HistoryEnabled reports whether sent messages are stored.
func (c Config) HistoryEnabled() bool {
	return c.HistoryDB != HistoryOff
}

// Validate checks the configuration for errors and sets derived defaults.
func (c *Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("host is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	if c.Threshold < 1 {
		return fmt.Errorf("threshold must be at least 1")
	}
	if c.Dwell <= 0 {
		return fmt.Errorf("dwell must be positive")
	}
	if c.TickInterval < 0 {
		return fmt.Errorf("tick interval must not be negative")
	}
	if c.Rows < 1 || c.Columns < 1 {
		return fmt.Errorf("grid must have at least one row and one column, got %dx%d", c.Rows, c.Columns)
	}
	if c.ReconnectAttempts < 0 {
		return fmt.Errorf("reconnect attempts must not be negative")
	}
	if c.ReconnectAttempts > 0 && (c.BackoffInitial <= 0 || c.BackoffMax < c.BackoffInitial) {
		return fmt.Errorf("backoff must satisfy 0 < initial <= max")
	}

	if c.WebhookURL != "" {
		u, err := url.Parse(c.WebhookURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("webhook url must be an absolute http(s) URL, got %q", c.WebhookURL)
		}
		if c.WebhookTimeout <= 0 {
			return fmt.Errorf("webhook timeout must be positive")
		}
	}

	switch c.UI {
	case UITUI, UIConsole:
	default:
		return fmt.Errorf("ui must be %q or %q, got %q", UITUI, UIConsole, c.UI)
	}
	switch c.LogFormat {
	case "auto", "console", "json":
	default:
		return fmt.Errorf("log format must be auto, console or json, got %q", c.LogFormat)
	}

	if c.StateDir == "" {
		c.StateDir = DefaultStateDir()
	}
	if c.HistoryDB == "" {
		c.HistoryDB = filepath.Join(c.StateDir, "history.db")
	}
	if c.HistoryEnabled() && c.HistoryRetention > 0 && c.PruneInterval <= 0 {
		c.PruneInterval = DefaultPruneInterval
	}

	return nil
}

// DefaultStateDir returns ~/.blinkscan, or a relative directory if the home
// directory is unknown.
func DefaultStateDir() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".blinkscan")
	}
	return ".blinkscan"
}

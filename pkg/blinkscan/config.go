package blinkscan

import (
	"fmt"
	"time"

	"github.com/bft-labs/blinkscan/internal/domain"
	"github.com/bft-labs/blinkscan/pkg/scan"
	"github.com/bft-labs/blinkscan/pkg/sensor"
	"github.com/bft-labs/blinkscan/pkg/thinkgear"
)

// Config holds the settings of a Blinkscan instance. Zero values are
// replaced by defaults in SetDefaults.
type Config struct {
	// Addr is the bridge address, host:port. Default: 127.0.0.1:13854
	Addr string

	// DialTimeout bounds the connection attempt. Default: 5s
	DialTimeout time.Duration

	// Threshold is the minimum blink strength treated as a trigger.
	// Default: 70
	Threshold int

	// Dwell is the inactivity window that ends a scanning phase.
	// Default: 5s
	Dwell time.Duration

	// TickInterval is the countdown refresh period. A negative value
	// disables countdown notifications. Default: 1s
	TickInterval time.Duration

	// Rows and Columns size the scan grid. Default: 5x8
	Rows    int
	Columns int

	// CommitOnDisconnect keeps a cycle running after the link drops so
	// that it still commits when the dwell expires. By default a
	// disconnect discards the cycle.
	CommitOnDisconnect bool

	// ReconnectAttempts is the number of consecutive failed sessions the
	// link tolerates. Zero stops the link at the first failure.
	ReconnectAttempts int
	BackoffInitial    time.Duration
	BackoffMax        time.Duration

	// StopOnLinkExit stops the instance when the link gives up. Otherwise
	// scanning continues with manual triggers only.
	StopOnLinkExit bool

	// DisableLink runs the engine without a sensor connection.
	DisableLink bool

	// LayoutFile is an optional YAML keyboard layout.
	LayoutFile string

	// StateDir holds the draft file. Empty disables draft persistence.
	StateDir string

	// HistoryDB is the sqlite path of the sent message history.
	// Empty disables history.
	HistoryDB string

	// WSListen is the address of the websocket event stream.
	// Empty disables the stream.
	WSListen string
}

// DefaultConfig returns a Config with all defaults applied.
func DefaultConfig() Config {
	var cfg Config
	cfg.SetDefaults()
	return cfg
}

// SetDefaults fills zero-valued fields.
func (c *Config) SetDefaults() {
	sensorDefaults := sensor.DefaultConfig()
	scanDefaults := scan.DefaultConfig()

	if c.Addr == "" {
		c.Addr = sensorDefaults.Addr
	}
	if c.DialTimeout == 0 {
		c.DialTimeout = sensorDefaults.DialTimeout
	}
	if c.Threshold == 0 {
		c.Threshold = sensorDefaults.Threshold
	}
	if c.Dwell == 0 {
		c.Dwell = scanDefaults.Dwell
	}
	if c.TickInterval == 0 {
		c.TickInterval = scanDefaults.TickInterval
	}
	if c.Rows == 0 {
		c.Rows = scanDefaults.Grid.Rows
	}
	if c.Columns == 0 {
		c.Columns = scanDefaults.Grid.Columns
	}
	if c.BackoffInitial == 0 {
		c.BackoffInitial = sensorDefaults.BackoffInitial
	}
	if c.BackoffMax == 0 {
		c.BackoffMax = sensorDefaults.BackoffMax
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if err := c.scanConfig().Validate(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err)
	}
	if err := c.sensorConfig().Validate(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err)
	}
	if c.DialTimeout < 0 {
		return fmt.Errorf("%w: dial timeout must not be negative", domain.ErrInvalidConfig)
	}
	return nil
}

func (c Config) scanConfig() scan.Config {
	cfg := scan.DefaultConfig()
	cfg.Grid = scan.Grid{Rows: c.Rows, Columns: c.Columns}
	cfg.Dwell = c.Dwell
	cfg.TickInterval = max(c.TickInterval, 0)
	cfg.CommitOnDisconnect = c.CommitOnDisconnect
	return cfg
}

func (c Config) sensorConfig() sensor.Config {
	cfg := sensor.DefaultConfig()
	cfg.Addr = c.Addr
	cfg.DialTimeout = c.DialTimeout
	cfg.Threshold = c.Threshold
	cfg.MaxFrameBytes = thinkgear.DefaultMaxFrameBytes
	cfg.ReconnectAttempts = c.ReconnectAttempts
	cfg.BackoffInitial = c.BackoffInitial
	cfg.BackoffMax = c.BackoffMax
	return cfg
}

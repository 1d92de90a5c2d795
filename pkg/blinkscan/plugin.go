package blinkscan

import (
	"context"

	"github.com/bft-labs/blinkscan/internal/ports"
	"github.com/bft-labs/blinkscan/pkg/keyboard"
	"github.com/bft-labs/blinkscan/pkg/log"
	"github.com/bft-labs/blinkscan/pkg/scan"
)

// Logger is the logging interface accepted by WithLogger.
type Logger = log.Logger

// LogField is a structured logging field.
type LogField = log.Field

// Plugin extends a Blinkscan instance. Plugins are initialized in
// registration order by Start and shut down in reverse order by Stop.
type Plugin interface {
	Name() string
	Initialize(ctx context.Context, cfg PluginConfig) error
	Shutdown(ctx context.Context) error
}

// LayoutSwitcher replaces the active keyboard layout.
type LayoutSwitcher interface {
	Layout() *keyboard.Layout
	SetLayout(l *keyboard.Layout)
}

// PluginConfig is passed to Plugin.Initialize. ctx given to Initialize is
// canceled when the instance stops.
type PluginConfig struct {
	StateDir   string
	LayoutFile string
	HistoryDB  string
	Grid       scan.Grid
	Logger     Logger

	// Keyboard is the composer receiving commits.
	Keyboard LayoutSwitcher

	// History is nil when history is disabled.
	History ports.HistoryRepository
}

// BasePlugin implements Plugin with no-ops.
type BasePlugin struct {
	PluginName string
}

func (p BasePlugin) Name() string {
	if p.PluginName == "" {
		return "unnamed"
	}
	return p.PluginName
}

func (BasePlugin) Initialize(ctx context.Context, cfg PluginConfig) error { return nil }
func (BasePlugin) Shutdown(ctx context.Context) error                     { return nil }

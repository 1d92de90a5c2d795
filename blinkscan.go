// Package blinkscan provides a single-switch scanning keyboard driven by
// blink strength from a ThinkGear bridge.
//
// Example usage:
//
//	cfg := blinkscan.DefaultConfig()
//	cfg.Addr = "192.168.1.20:13854"
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
//	if err := blinkscan.Run(context.Background(), cfg); err != nil {
//	    log.Fatal(err)
//	}
//
// Run blocks until EXIT is confirmed twice or ctx is canceled. Use the
// pkg/blinkscan package for lifecycle control, events and plugins.
package blinkscan

import (
	"context"
	"errors"
	"os"

	"github.com/rs/zerolog"

	lib "github.com/bft-labs/blinkscan/pkg/blinkscan"
	"github.com/bft-labs/blinkscan/pkg/log"
)

// Config holds the configuration of a scanning keyboard.
// Use DefaultConfig() to get a Config with sensible defaults.
type Config = lib.Config

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return lib.DefaultConfig()
}

var logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

// Logger returns the package-level zerolog logger used by Run.
func Logger() zerolog.Logger {
	return logger
}

// Run scans with the given configuration. It blocks until ctx is canceled,
// EXIT is confirmed or an unrecoverable error occurs.
func Run(ctx context.Context, cfg Config) error {
	b, err := lib.New(cfg, lib.WithLogger(log.NewZerologAdapterWithLogger(logger)))
	if err != nil {
		return err
	}
	defer b.Close()

	if err := b.Start(ctx); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
	case <-b.Done():
	}

	if b.Status() == lib.StateCrashed {
		return errors.New("blinkscan: session failed")
	}
	return b.Stop()
}

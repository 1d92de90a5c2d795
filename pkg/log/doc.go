// Package log provides a logging abstraction for blinkscan components.
//
// This package defines a Logger interface that can be implemented by
// any logging library. Default implementations are provided for zerolog
// and a no-op logger for testing.
//
// # Usage
//
// Build a zerolog-backed logger that picks console or JSON output
// depending on whether the writer is a terminal:
//
//	logger, err := log.New(os.Stderr, log.Options{Level: "info", Format: log.FormatAuto})
//
// Or use the no-op logger for testing:
//
//	logger := log.NewNoopLogger()
//
// The scan engine and sensor link report connect/disconnect/phase/commit
// events through this interface; those lines are advisory only.
package log

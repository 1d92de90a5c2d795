package domain

import "errors"

// Domain errors represent error conditions in the blinkscan domain.
// These errors are returned by the public API and can be checked with errors.Is.
var (
	// ErrAlreadyRunning is returned when Start() is called on a running instance.
	ErrAlreadyRunning = errors.New("blinkscan: already running")

	// ErrNotRunning is returned when Stop() is called on a stopped instance.
	ErrNotRunning = errors.New("blinkscan: not running")

	// ErrShutdownTimeout is returned when graceful shutdown times out.
	ErrShutdownTimeout = errors.New("blinkscan: shutdown timeout")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("blinkscan: invalid configuration")

	// ErrEmptyMessage is returned when an empty message is stored or sent.
	ErrEmptyMessage = errors.New("blinkscan: empty message")
)

package ports

import (
	"context"

	"github.com/bft-labs/blinkscan/internal/domain"
)

// MessageSink receives each message committed with the SEND key.
type MessageSink interface {
	Deliver(ctx context.Context, msg domain.Message) error
}

// MessageSinkFunc adapts a function to the MessageSink interface.
type MessageSinkFunc func(ctx context.Context, msg domain.Message) error

// Deliver calls f.
func (f MessageSinkFunc) Deliver(ctx context.Context, msg domain.Message) error {
	return f(ctx, msg)
}

package ports

import (
	"context"
	"time"

	"github.com/bft-labs/blinkscan/internal/domain"
)

// HistoryRepository stores sent messages.
type HistoryRepository interface {
	// Append stores msg and sets its ID.
	Append(ctx context.Context, msg *domain.Message) error

	// Recent returns up to limit messages, newest first.
	Recent(ctx context.Context, limit int) ([]domain.Message, error)

	// PruneBefore deletes messages sent before cutoff and returns how many
	// were removed.
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

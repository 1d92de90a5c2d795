package ports

import (
	"context"

	"github.com/bft-labs/blinkscan/internal/domain"
)

// DraftRepository handles draft persistence so composed text survives a restart.
type DraftRepository interface {
	// Load retrieves the last saved draft.
	// Returns an empty draft and nil error if none exists.
	Load(ctx context.Context) (domain.Draft, error)

	// Save persists the draft atomically.
	Save(ctx context.Context, draft domain.Draft) error
}

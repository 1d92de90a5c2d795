// Package fs contains file system implementations of repository interfaces.
package fs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bft-labs/blinkscan/internal/domain"
)

const draftFileName = "draft.json"

// DraftFileRepository implements ports.DraftRepository using a JSON file.
type DraftFileRepository struct {
	dir string
}

// NewDraftFileRepository creates a new DraftFileRepository for the given directory.
func NewDraftFileRepository(dir string) *DraftFileRepository {
	return &DraftFileRepository{dir: dir}
}

// Load retrieves the last saved draft from disk.
// Returns an empty draft and nil error if no draft file exists.
func (r *DraftFileRepository) Load(ctx context.Context) (domain.Draft, error) {
	data, err := os.ReadFile(r.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return domain.Draft{}, nil
		}
		return domain.Draft{}, err
	}

	var draft domain.Draft
	if err := json.Unmarshal(data, &draft); err != nil {
		return domain.Draft{}, fmt.Errorf("decode %s: %w", r.Path(), err)
	}
	return draft, nil
}

// Save persists the draft atomically (temp file, then rename).
func (r *DraftFileRepository) Save(ctx context.Context, draft domain.Draft) error {
	if err := os.MkdirAll(r.dir, 0o700); err != nil {
		return err
	}

	path := r.Path()
	tmp := path + ".tmp"

	data, err := json.MarshalIndent(draft, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Path returns the full path to the draft file.
func (r *DraftFileRepository) Path() string {
	return filepath.Join(r.dir, draftFileName)
}

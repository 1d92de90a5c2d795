package fs

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/bft-labs/blinkscan/internal/domain"
)

func TestDraftFileRepository_LoadMissing(t *testing.T) {
	repo := NewDraftFileRepository(t.TempDir())

	draft, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !draft.IsEmpty() {
		t.Errorf("Load() = %+v, want empty draft", draft)
	}
}

func TestDraftFileRepository_SaveLoad(t *testing.T) {
	dir := t.TempDir() + "/nested"
	repo := NewDraftFileRepository(dir)
	ctx := context.Background()

	want := domain.Draft{Text: "HELLO WO", UpdatedAt: time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)}
	if err := repo.Save(ctx, want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Text != want.Text || !got.UpdatedAt.Equal(want.UpdatedAt) {
		t.Errorf("Load() = %+v, want %+v", got, want)
	}

	if _, err := os.Stat(repo.Path() + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temp file left behind: %v", err)
	}
}

func TestDraftFileRepository_Corrupt(t *testing.T) {
	repo := NewDraftFileRepository(t.TempDir())
	if err := os.WriteFile(repo.Path(), []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := repo.Load(context.Background()); err == nil {
		t.Error("Load() error = nil, want decode error")
	}
}

package layoutwatcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/bft-labs/blinkscan/pkg/blinkscan"
	"github.com/bft-labs/blinkscan/pkg/keyboard"
	"github.com/bft-labs/blinkscan/pkg/log"
	"github.com/bft-labs/blinkscan/pkg/scan"
)

type switcher struct {
	mu     sync.Mutex
	layout *keyboard.Layout
}

func (s *switcher) Layout() *keyboard.Layout {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.layout
}

func (s *switcher) SetLayout(l *keyboard.Layout) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.layout = l
}

func (s *switcher) name() string {
	if l := s.Layout(); l != nil {
		return l.Name()
	}
	return ""
}

func writeLayout(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write layout: %v", err)
	}
}

func waitUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met")
}

func TestPlugin_ReloadsChangedLayout(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "layout.yaml")
	writeLayout(t, path, "name: first\nrows:\n  - [A, B]\n  - [SEND, EXIT]\n")

	sw := &switcher{}
	p := New(Config{DebounceDelay: 20 * time.Millisecond})
	err := p.Initialize(context.Background(), blinkscan.PluginConfig{
		LayoutFile: path,
		Grid:       scan.Grid{Rows: 2, Columns: 2},
		Keyboard:   sw,
		Logger:     log.NewNoopLogger(),
	})
	if err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	defer p.Shutdown(context.Background())

	writeLayout(t, path, "name: second\nrows:\n  - [X, Y]\n  - [DELETE, SEND]\n")
	waitUntil(t, func() bool { return sw.name() == "second" })

	key, ok := sw.Layout().KeyAt(scan.Position{Row: 1, Column: 2})
	if !ok || key.Label != "Y" {
		t.Errorf("KeyAt(1,2) = %v, %v", key, ok)
	}

	// Too large for the grid: ignored.
	writeLayout(t, path, "name: third\nrows:\n  - [A, B, C]\n")
	// Not YAML: ignored.
	writeLayout(t, path, "rows: [[")
	time.Sleep(200 * time.Millisecond)

	if got := sw.name(); got != "second" {
		t.Errorf("layout = %q after invalid edits, want second", got)
	}
	if p.Reloads() != 1 {
		t.Errorf("Reloads() = %d, want 1", p.Reloads())
	}
}

func TestPlugin_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "layout.yaml")
	writeLayout(t, path, "name: first\nrows:\n  - [A]\n")

	sw := &switcher{}
	p := New(Config{DebounceDelay: 10 * time.Millisecond})
	if err := p.Initialize(context.Background(), blinkscan.PluginConfig{
		LayoutFile: path,
		Grid:       scan.DefaultGrid(),
		Keyboard:   sw,
	}); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	writeLayout(t, filepath.Join(dir, "notes.txt"), "hello")
	time.Sleep(100 * time.Millisecond)

	if p.Reloads() != 0 {
		t.Errorf("Reloads() = %d, want 0", p.Reloads())
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown failed: %v", err)
	}
}

func TestPlugin_DisabledWithoutLayoutFile(t *testing.T) {
	p := New(Config{})
	if err := p.Initialize(context.Background(), blinkscan.PluginConfig{Logger: log.NewNoopLogger()}); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown failed: %v", err)
	}
	if p.Name() != "layoutwatcher" {
		t.Errorf("Name() = %q", p.Name())
	}
}

func TestPlugin_MissingDirectory(t *testing.T) {
	p := New(DefaultConfig())
	err := p.Initialize(context.Background(), blinkscan.PluginConfig{
		LayoutFile: filepath.Join(t.TempDir(), "missing", "layout.yaml"),
		Keyboard:   &switcher{},
	})
	if err == nil {
		t.Fatal("Initialize should fail when the layout directory does not exist")
	}
}

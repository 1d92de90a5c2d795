package cliconfig

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestApplyFileConfig(t *testing.T) {
	trueVal := true
	falseVal := false

	tests := []struct {
		name       string
		fileConfig FileConfig
		changed    map[string]bool
		initial    Config
		expected   Config
		wantErr    bool
	}{
		{
			name: "applies all valid config values",
			fileConfig: FileConfig{
				Host:               "10.0.0.2",
				Port:               9000,
				Threshold:          80,
				Dwell:              "3s",
				Rows:               4,
				Columns:            6,
				LayoutFile:         "/layouts/abc.yaml",
				ReconnectAttempts:  5,
				BackoffMax:         "30s",
				CommitOnDisconnect: &trueVal,
				UI:                 "console",
			},
			changed: map[string]bool{},
			initial: Config{},
			expected: Config{
				Host:               "10.0.0.2",
				Port:               9000,
				Threshold:          80,
				Dwell:              3 * time.Second,
				Rows:               4,
				Columns:            6,
				LayoutFile:         "/layouts/abc.yaml",
				ReconnectAttempts:  5,
				BackoffMax:         30 * time.Second,
				CommitOnDisconnect: true,
				UI:                 "console",
			},
			wantErr: false,
		},
		{
			name: "respects changed flags",
			fileConfig: FileConfig{
				Host:      "file-host",
				Threshold: 90,
			},
			changed: map[string]bool{"host": true},
			initial: Config{
				Host:      "flag-host",
				Threshold: 70,
			},
			expected: Config{
				Host:      "flag-host", // unchanged because flag was set
				Threshold: 90,
			},
			wantErr: false,
		},
		{
			name: "explicit false overrides true",
			fileConfig: FileConfig{
				WatchLayout: &falseVal,
			},
			changed:  map[string]bool{},
			initial:  Config{WatchLayout: true},
			expected: Config{WatchLayout: false},
			wantErr:  false,
		},
		{
			name: "returns error for invalid duration",
			fileConfig: FileConfig{
				Dwell: "five seconds",
			},
			changed: map[string]bool{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.initial
			err := ApplyFileConfig(&cfg, tt.fileConfig, tt.changed)

			if tt.wantErr && err == nil {
				t.Error("ApplyFileConfig() expected error but got nil")
				return
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ApplyFileConfig() unexpected error: %v", err)
				return
			}

			if !tt.wantErr && cfg != tt.expected {
				t.Errorf("ApplyFileConfig() = %+v, want %+v", cfg, tt.expected)
			}
		})
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadFileConfig(t *testing.T) {
	path := writeConfig(t, `
host = "192.168.1.20"
port = 13855
threshold = 75
dwell = "4s"
layout_file = "/etc/blinkscan/layout.yaml"
watch_layout = true
history_retention = "168h"
webhook_url = "https://hooks.example.com/blink"
`)

	fc, err := LoadFileConfig(path)
	if err != nil {
		t.Fatalf("LoadFileConfig() error = %v", err)
	}

	watch := true
	want := FileConfig{
		Host:             "192.168.1.20",
		Port:             13855,
		Threshold:        75,
		Dwell:            "4s",
		LayoutFile:       "/etc/blinkscan/layout.yaml",
		WatchLayout:      &watch,
		HistoryRetention: "168h",
		WebhookURL:       "https://hooks.example.com/blink",
	}
	if fc.WatchLayout == nil || *fc.WatchLayout != *want.WatchLayout {
		t.Fatalf("WatchLayout = %v, want true", fc.WatchLayout)
	}
	fc.WatchLayout = want.WatchLayout
	if fc != want {
		t.Errorf("LoadFileConfig() = %+v, want %+v", fc, want)
	}
}

func TestLoadFileConfig_Errors(t *testing.T) {
	tests := map[string]string{
		"missing file": filepath.Join(t.TempDir(), "absent.toml"),
		"invalid toml": writeConfig(t, "host = \"127.0.0.1\"\nthreshold = = 3\n"),
		"wrong type":   writeConfig(t, "port = \"high\"\n"),
	}
	for name, path := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadFileConfig(path); err == nil {
				t.Errorf("LoadFileConfig(%s) = nil error", path)
			}
		})
	}
}

func TestDefaultConfigPath(t *testing.T) {
	t.Setenv("HOME", "/home/blinker")
	if got, want := DefaultConfigPath(), filepath.Join("/home/blinker", ".blinkscan", "config.toml"); got != want {
		t.Errorf("DefaultConfigPath() = %q, want %q", got, want)
	}
	if !strings.HasPrefix(DefaultStateDir(), "/home/blinker") {
		t.Errorf("DefaultStateDir() = %q, want it under HOME", DefaultStateDir())
	}
}

func TestFileExists(t *testing.T) {
	path := writeConfig(t, "")
	if !FileExists(path) {
		t.Errorf("FileExists(%s) = false", path)
	}
	if FileExists(path + ".bak") {
		t.Errorf("FileExists(%s.bak) = true", path)
	}
}

package blinkscan

import (
	"context"
	"testing"
	"time"
)

func TestRun_StopsOnCancel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DisableLink = true

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := Run(ctx, cfg); err != nil {
		t.Fatalf("Run() = %v, want nil", err)
	}
}

func TestRun_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Threshold = -1

	if err := Run(context.Background(), cfg); err == nil {
		t.Fatal("Run() with negative threshold should fail")
	}
}

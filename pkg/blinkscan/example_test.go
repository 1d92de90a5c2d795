package blinkscan_test

import (
	"context"
	"fmt"

	"github.com/bft-labs/blinkscan/pkg/blinkscan"
)

// ExampleNew demonstrates how to embed blinkscan in your application.
func ExampleNew() {
	cfg := blinkscan.Config{
		// Scan with manual triggers only.
		DisableLink: true,
	}

	b, err := blinkscan.New(cfg)
	if err != nil {
		fmt.Printf("failed to create blinkscan: %v\n", err)
		return
	}
	defer b.Close()

	// Start scanning (non-blocking)
	if err := b.Start(context.Background()); err != nil {
		fmt.Printf("failed to start: %v\n", err)
		return
	}

	// Status may be Starting or Running depending on timing
	status := b.Status()
	fmt.Printf("Status is valid: %v\n", status == blinkscan.StateStarting || status == blinkscan.StateRunning)

	_ = b.Stop()
	fmt.Println("Status:", b.Status())

	// Output:
	// Status is valid: true
	// Status: Stopped
}

// Example_withEventHandler demonstrates how to receive blinkscan events.
func Example_withEventHandler() {
	handler := &myEventHandler{}

	b, err := blinkscan.New(blinkscan.Config{DisableLink: true}, blinkscan.WithEventHandler(handler))
	if err != nil {
		fmt.Printf("failed to create blinkscan: %v\n", err)
		return
	}
	defer b.Close()

	_ = b // Start, trigger, stop...
}

// myEventHandler implements blinkscan.EventHandler.
type myEventHandler struct {
	blinkscan.BaseEventHandler // no-op defaults
}

func (h *myEventHandler) OnCommit(event blinkscan.CommitEvent) {
	fmt.Printf("selected %s at %s\n", event.Label, event.Position)
}

func (h *myEventHandler) OnMessageSent(event blinkscan.MessageSentEvent) {
	fmt.Printf("sent %q\n", event.Text)
}

// ExampleConfig_SetDefaults shows the defaults applied to an empty Config.
func ExampleConfig_SetDefaults() {
	var cfg blinkscan.Config
	cfg.SetDefaults()

	fmt.Println(cfg.Addr)
	fmt.Println(cfg.Threshold)
	fmt.Printf("%dx%d\n", cfg.Rows, cfg.Columns)
	fmt.Println(cfg.Dwell)

	// Output:
	// 127.0.0.1:13854
	// 70
	// 5x8
	// 5s
}

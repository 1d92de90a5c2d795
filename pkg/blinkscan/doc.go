// Package blinkscan provides an embeddable single-switch scanning keyboard
// driven by eye blinks.
//
// A Blinkscan instance connects to a ThinkGear-style bridge, turns strong
// blinks into triggers for a row/column scan engine and types the selected
// keys into a composer. It can be used through the blinkscan CLI or embedded
// as a library.
//
// # Basic Usage
//
//	b, err := blinkscan.New(blinkscan.Config{
//	    Addr:      "127.0.0.1:13854",
//	    Threshold: 70,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer b.Close()
//
//	if err := b.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	<-b.Done() // closed after EXIT is selected twice
//	_ = b.Stop()
//
// # Configuration
//
// All [Config] fields have defaults set by [Config.SetDefaults]: a 5x8 grid,
// a 5 second dwell and a blink threshold of 70. By default the link stops
// at the first connection failure and scanning continues with manual
// triggers; set ReconnectAttempts to retry with exponential backoff.
//
// # Observers and Events
//
// [WithObserver] attaches a value to every subsystem it can observe (scan
// engine, sensor link, keyboard, sent messages). [WithEventHandler] receives
// coarser events. Both are called synchronously and must return quickly.
//
// # Lifecycle States
//
// A Blinkscan instance is in one of [StateStopped], [StateStarting],
// [StateRunning], [StateStopping] or [StateCrashed]. Use [Blinkscan.Status]
// to query it.
//
// # Plugins
//
//	import "github.com/bft-labs/blinkscan/plugins/layoutwatcher"
//	import "github.com/bft-labs/blinkscan/plugins/historyprune"
//
//	b, err := blinkscan.New(cfg,
//	    layoutwatcher.WithDefaultLayoutWatcher(),
//	    historyprune.WithHistoryPrune(historyprune.DefaultConfig()),
//	)
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
//
// Use [ModuleVersions] to get versions of all sub-modules.
package blinkscan

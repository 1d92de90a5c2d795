// Package scan implements two-phase row/column scanning over a fixed grid.
//
// A user with a single switch selects a cell by letting the cursor dwell.
// The first trigger starts a cycle at (1,1) and scans columns along the
// first row; each further trigger advances the column with wraparound. When
// the dwell deadline passes without a trigger the column is fixed and rows
// are scanned the same way. When the deadline passes again the cursor is
// committed and the engine returns to idle.
//
// All state changes go through [Transition], a pure function of the grid,
// the current [State] and an [Event]. [Engine] wraps it with a single
// consumer goroutine, a restartable deadline timer and observer callbacks.
//
// # Usage
//
//	eng, err := scan.NewEngine(scan.DefaultConfig(), sink,
//	    scan.WithLogger(logger),
//	    scan.WithObserver(view),
//	)
//	go eng.Run(ctx)
//	_ = eng.Trigger(ctx) // from the sensor goroutine
package scan

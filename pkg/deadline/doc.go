// Package deadline provides a restartable single-shot timer whose firings are
// delivered on a channel and tagged with the generation that armed them.
//
// Every [Timer.Arm] supersedes the previous one. A firing that was already in
// flight when the timer was re-armed or cancelled still arrives on the channel,
// but [Timer.Accept] rejects it, so a single consumer can discard stale
// timeouts without any extra locking.
//
// The timer also emits [Tick] expiries at a fixed interval while armed. Ticks
// carry the time remaining before the one authoritative deadline and are meant
// for progress display only.
package deadline

package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	trigger   = Event{Kind: EventTrigger}
	timeout   = Event{Kind: EventTimeout}
	interrupt = Event{Kind: EventInterrupt, Reason: "stream closed"}
)

func run(g Grid, s State, events ...Event) (State, []Position) {
	var commits []Position
	for _, ev := range events {
		out := Transition(g, s, ev)
		s = out.State
		if out.Commit != nil {
			commits = append(commits, *out.Commit)
		}
	}
	return s, commits
}

func TestTransition_IdleTriggerStartsAtOrigin(t *testing.T) {
	out := Transition(DefaultGrid(), InitialState(), trigger)

	assert.Equal(t, State{Phase: PhaseScanningColumn, Cursor: Position{1, 1}, TriggerCount: 1}, out.State)
	assert.Equal(t, TimerArm, out.Timer)
	assert.True(t, out.PhaseChanged)
	assert.True(t, out.Moved)
	assert.Nil(t, out.Commit)
}

func TestTransition_IdleIgnoresStaleCursor(t *testing.T) {
	stale := State{Phase: PhaseIdle, Cursor: Position{4, 6}, TriggerCount: 9}
	out := Transition(DefaultGrid(), stale, trigger)
	assert.Equal(t, Position{1, 1}, out.State.Cursor)
	assert.Equal(t, 1, out.State.TriggerCount)
}

func TestTransition_ColumnScanStaysInFirstRowAndWraps(t *testing.T) {
	g := DefaultGrid()
	s := Transition(g, InitialState(), trigger).State

	for i := 0; i < g.Columns; i++ {
		out := Transition(g, s, trigger)
		assert.Equal(t, TimerArm, out.Timer)
		assert.False(t, out.PhaseChanged)
		s = out.State
		assert.Equal(t, 1, s.Cursor.Row)
	}
	assert.Equal(t, Position{1, 1}, s.Cursor, "eight advances wrap back to column 1")
	assert.Equal(t, 1+g.Columns, s.TriggerCount)
}

func TestTransition_ColumnTimeoutEntersRowPhase(t *testing.T) {
	g := DefaultGrid()
	s, _ := run(g, InitialState(), trigger, trigger, trigger)
	out := Transition(g, s, timeout)

	assert.Equal(t, PhaseScanningRow, out.State.Phase)
	assert.Equal(t, Position{1, 3}, out.State.Cursor)
	assert.Equal(t, 0, out.State.TriggerCount)
	assert.Equal(t, TimerArm, out.Timer)
	assert.True(t, out.PhaseChanged)
	assert.Nil(t, out.Commit)
}

func TestTransition_RowScanWrapsAtFixedColumn(t *testing.T) {
	g := DefaultGrid()
	s, _ := run(g, InitialState(), trigger, trigger, timeout)
	require.Equal(t, PhaseScanningRow, s.Phase)

	rows := []int{2, 3, 4, 5, 1, 2}
	for _, want := range rows {
		s = Transition(g, s, trigger).State
		assert.Equal(t, Position{want, 2}, s.Cursor)
	}
}

func TestTransition_RowTimeoutCommitsAndResets(t *testing.T) {
	g := DefaultGrid()
	s, _ := run(g, InitialState(), trigger, timeout, trigger)
	out := Transition(g, s, timeout)

	require.NotNil(t, out.Commit)
	assert.Equal(t, Position{2, 1}, *out.Commit)
	assert.Equal(t, InitialState(), out.State)
	assert.Equal(t, TimerCancel, out.Timer)
}

func TestTransition_IdleTimeoutIsNoop(t *testing.T) {
	out := Transition(DefaultGrid(), InitialState(), timeout)
	assert.Equal(t, InitialState(), out.State)
	assert.Equal(t, TimerKeep, out.Timer)
	assert.Nil(t, out.Commit)
	assert.False(t, out.PhaseChanged)
}

func TestTransition_InterruptDiscardsCycle(t *testing.T) {
	g := DefaultGrid()
	for _, prefix := range [][]Event{
		{trigger},
		{trigger, trigger, timeout},
		{trigger, timeout, trigger, trigger},
	} {
		s, _ := run(g, InitialState(), prefix...)
		out := Transition(g, s, interrupt)
		assert.Equal(t, InitialState(), out.State)
		assert.Equal(t, TimerCancel, out.Timer)
		assert.Nil(t, out.Commit)
	}

	idle := Transition(g, InitialState(), interrupt)
	assert.Equal(t, TimerKeep, idle.Timer)
	assert.False(t, idle.PhaseChanged)
}

// Grid 5x8: one trigger starts at (1,1), three more reach (1,4), the column
// dwell fixes column 4, two triggers reach row 3, the row dwell commits (3,4).
func TestTransition_ReferenceScenario(t *testing.T) {
	g := DefaultGrid()
	s, commits := run(g, InitialState(),
		trigger, trigger, trigger, trigger,
		timeout,
		trigger, trigger,
		timeout,
	)
	require.Len(t, commits, 1)
	assert.Equal(t, Position{3, 4}, commits[0])
	assert.Equal(t, InitialState(), s)
}

func TestTransition_AtMostOneCommitPerCycle(t *testing.T) {
	g := Grid{Rows: 3, Columns: 4}
	sequences := [][]Event{
		{trigger, timeout, timeout, timeout, timeout},
		{trigger, trigger, timeout, trigger, timeout, trigger, timeout, timeout},
		{trigger, timeout, interrupt, timeout, timeout},
		{timeout, interrupt, trigger, trigger, trigger, trigger, trigger},
	}
	wantCommits := []int{1, 2, 0, 0}

	for i, seq := range sequences {
		s := InitialState()
		commits := 0
		for _, ev := range seq {
			out := Transition(g, s, ev)
			if out.Commit != nil {
				commits++
				assert.True(t, g.Contains(*out.Commit))
				assert.Equal(t, InitialState(), out.State)
			}
			if !out.State.IsIdle() {
				assert.True(t, g.Contains(out.State.Cursor))
			}
			s = out.State
		}
		assert.Equal(t, wantCommits[i], commits, "sequence %d", i)
	}
}

func TestPhaseAndEventKind_String(t *testing.T) {
	assert.Equal(t, "Idle", PhaseIdle.String())
	assert.Equal(t, "ScanningColumn", PhaseScanningColumn.String())
	assert.Equal(t, "ScanningRow", PhaseScanningRow.String())
	assert.Equal(t, "Unknown", Phase(7).String())
	assert.Equal(t, "trigger", EventTrigger.String())
	assert.Equal(t, "timeout", EventTimeout.String())
	assert.Equal(t, "interrupt", EventInterrupt.String())
}

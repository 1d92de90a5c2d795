package scan

// EventKind identifies an input to the state machine.
type EventKind int

const (
	// EventTrigger is a thresholded user signal.
	EventTrigger EventKind = iota
	// EventTimeout is the dwell deadline passing.
	EventTimeout
	// EventInterrupt aborts the current cycle, e.g. when the sensor is lost.
	EventInterrupt
)

// String returns a human-readable representation of the event kind.
func (k EventKind) String() string {
	switch k {
	case EventTrigger:
		return "trigger"
	case EventTimeout:
		return "timeout"
	case EventInterrupt:
		return "interrupt"
	default:
		return "unknown"
	}
}

// Event is delivered to the engine in a total order.
type Event struct {
	Kind   EventKind
	Reason string
}

// TimerAction tells the caller what to do with the dwell timer.
type TimerAction int

const (
	TimerKeep TimerAction = iota
	TimerArm
	TimerCancel
)

// Outcome is the result of one transition.
type Outcome struct {
	State        State
	Timer        TimerAction
	Commit       *Position
	PhaseChanged bool
	Moved        bool
}

// Transition applies ev to s on grid g. It never fails and never produces a
// cursor outside the grid.
func Transition(g Grid, s State, ev Event) Outcome {
	switch ev.Kind {
	case EventTrigger:
		return onTrigger(g, s)
	case EventTimeout:
		return onTimeout(s)
	case EventInterrupt:
		if s.IsIdle() {
			return Outcome{State: s}
		}
		return Outcome{State: InitialState(), Timer: TimerCancel, PhaseChanged: true}
	default:
		return Outcome{State: s}
	}
}

func onTrigger(g Grid, s State) Outcome {
	switch s.Phase {
	case PhaseScanningColumn:
		next := s
		next.Cursor.Column = g.NextColumn(s.Cursor.Column)
		next.TriggerCount++
		return Outcome{State: next, Timer: TimerArm, Moved: true}

	case PhaseScanningRow:
		next := s
		next.Cursor.Row = g.NextRow(s.Cursor.Row)
		next.TriggerCount++
		return Outcome{State: next, Timer: TimerArm, Moved: true}

	default:
		// Always a fresh cycle from the origin, never a stale cursor.
		return Outcome{
			State: State{
				Phase:        PhaseScanningColumn,
				Cursor:       g.Origin(),
				TriggerCount: 1,
			},
			Timer:        TimerArm,
			PhaseChanged: true,
			Moved:        true,
		}
	}
}

func onTimeout(s State) Outcome {
	switch s.Phase {
	case PhaseScanningColumn:
		next := s
		next.Phase = PhaseScanningRow
		next.TriggerCount = 0
		return Outcome{State: next, Timer: TimerArm, PhaseChanged: true}

	case PhaseScanningRow:
		pos := s.Cursor
		return Outcome{
			State:        InitialState(),
			Timer:        TimerCancel,
			Commit:       &pos,
			PhaseChanged: true,
		}

	default:
		// A stray timeout while idle has nothing to act on.
		return Outcome{State: s}
	}
}

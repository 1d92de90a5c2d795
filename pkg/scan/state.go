package scan

// Phase is the scanning phase.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseScanningColumn
	PhaseScanningRow
)

// String returns a human-readable representation of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "Idle"
	case PhaseScanningColumn:
		return "ScanningColumn"
	case PhaseScanningRow:
		return "ScanningRow"
	default:
		return "Unknown"
	}
}

// State is the complete scan state. Cursor is meaningful only when Phase is
// not PhaseIdle. The zero value is the initial idle state.
type State struct {
	Phase        Phase    `json:"phase"`
	Cursor       Position `json:"cursor"`
	TriggerCount int      `json:"trigger_count"`
}

// InitialState returns {Idle, undefined, 0}.
func InitialState() State {
	return State{}
}

// IsIdle reports whether no cycle is in progress.
func (s State) IsIdle() bool {
	return s.Phase == PhaseIdle
}

package track

// Mode is the edit/play state of a bifurcation.
type Mode int

// Modes.
const (
	// ModeEditor persists, welds and rebuilds geometry every tick.
	ModeEditor Mode = iota
	// ModePlay freezes geometry.
	ModePlay
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeEditor:
		return "editor"
	case ModePlay:
		return "play"
	default:
		return "unknown"
	}
}

// ParseMode converts a mode name. Unknown names yield ModeEditor and false.
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "editor", "edit":
		return ModeEditor, true
	case "play":
		return ModePlay, true
	default:
		return ModeEditor, false
	}
}

// ModeMachine tracks the current mode and a pending change. Changes are
// requested at any time and applied by the next Apply call.
type ModeMachine struct {
	current Mode
	next    Mode
	pending bool
}

// NewModeMachine creates a machine whose first Apply enters initial.
func NewModeMachine(initial Mode) *ModeMachine {
	return &ModeMachine{
		current: initial,
		next:    initial,
		pending: true,
	}
}

// Current returns the active mode.
func (m *ModeMachine) Current() Mode {
	return m.current
}

// Pending reports whether a change waits for the next Apply.
func (m *ModeMachine) Pending() bool {
	return m.pending
}

// Change schedules a switch to mode. Requesting the active mode with
// nothing pending is a no-op.
func (m *ModeMachine) Change(mode Mode) {
	if !m.pending && mode == m.current {
		return
	}
	m.next = mode
	m.pending = true
}

// Apply performs a pending change. It reports whether a transition happened.
func (m *ModeMachine) Apply() (Mode, bool) {
	if !m.pending {
		return m.current, false
	}
	m.current = m.next
	m.pending = false
	return m.current, true
}

package mutation

import "fmt"

// State is the phase of one optimistic mutation attempt.
type State int

const (
	// StateIdle means no mutation is in flight.
	StateIdle State = iota
	// StateApplying means the local change is visible and the server
	// request is in flight.
	StateApplying
	// StateCommitted means the server confirmed the change.
	StateCommitted
	// StateRolledBack means the server rejected the change and the local
	// state was restored from the pre-mutation snapshot.
	StateRolledBack
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateApplying:
		return "applying"
	case StateCommitted:
		return "committed"
	case StateRolledBack:
		return "rolled_back"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// machine enforces the legal phase order of one attempt:
// idle -> applying -> committed | rolled_back. Illegal transitions are
// programming errors and panic.
type machine struct {
	state State
}

func (m *machine) apply() {
	if m.state != StateIdle {
		panic("mutation: apply from " + m.state.String())
	}
	m.state = StateApplying
}

func (m *machine) commit() {
	if m.state != StateApplying {
		panic("mutation: commit from " + m.state.String())
	}
	m.state = StateCommitted
}

func (m *machine) rollback() {
	if m.state != StateApplying {
		panic("mutation: rollback from " + m.state.String())
	}
	m.state = StateRolledBack
}

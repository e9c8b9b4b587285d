package game

import "fmt"

// State is the match lifecycle state. The normal path is linear with one
// abort branch; Complete and Cancelled are terminal.
type State int

const (
	StateNew State = iota // roster fixed, no team selection started
	StateSelection        // a selection protocol is collecting input
	StateOngoing          // teams finalized, winner not yet reported
	StateComplete         // winner recorded, points distributed
	StateCancelled        // aborted, no points distributed
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateSelection:
		return "selection"
	case StateOngoing:
		return "ongoing"
	case StateComplete:
		return "complete"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// ParseState maps a persisted value back onto a State.
func ParseState(s string) (State, error) {
	switch s {
	case "new":
		return StateNew, nil
	case "selection":
		return StateSelection, nil
	case "ongoing":
		return StateOngoing, nil
	case "complete":
		return StateComplete, nil
	case "cancelled":
		return StateCancelled, nil
	default:
		return StateNew, fmt.Errorf("unknown match state %q", s)
	}
}

// Terminal reports whether no transitions leave this state.
func (s State) Terminal() bool {
	return s == StateComplete || s == StateCancelled
}

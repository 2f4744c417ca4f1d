package reviewsession

import "errors"

// State is a step of the session state machine.
type State int

const (
	StateIdle State = iota
	StatePresenting
	StateAwaitingRating
	StateAdvancing
	StateComplete
	StateFailed
	StateAbandoned
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePresenting:
		return "presenting"
	case StateAwaitingRating:
		return "awaiting_rating"
	case StateAdvancing:
		return "advancing"
	case StateComplete:
		return "complete"
	case StateFailed:
		return "failed"
	case StateAbandoned:
		return "abandoned"
	}
	return "unknown"
}

// IsTerminal reports whether no further transition is possible.
func (s State) IsTerminal() bool {
	return s == StateComplete || s == StateFailed || s == StateAbandoned
}

// ErrInvalidTransition is returned when an action does not apply to the current state.
var ErrInvalidTransition = errors.New("invalid session transition")

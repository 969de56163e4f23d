package session

import (
	"fmt"

	"lovelyhashcat/internal/services"
)

// State is the lifecycle position of a cracking session.
type State int

const (
	StateIdle State = iota
	StateStarting
	StateRunning
	StateStopping
	StateExited
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateExited:
		return "exited"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Active reports whether a session in this state owns a live or launching child.
func (s State) Active() bool {
	return s == StateStarting || s == StateRunning || s == StateStopping
}

var transitions = map[State][]State{
	StateIdle:     {StateStarting},
	StateStarting: {StateRunning, StateIdle},
	StateRunning:  {StateStopping, StateExited},
	StateStopping: {StateExited},
}

// CanTransition reports whether from -> to is a legal move.
func CanTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func transitionError(from, to State) error {
	return services.Wrap(services.ErrValidation, "session", "transition",
		fmt.Sprintf("illegal transition %s -> %s", from, to), nil)
}

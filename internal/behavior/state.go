// Package behavior drives non-player agents: a state machine over perception
// composed with path following and combat capabilities.
package behavior

import "fmt"

// State is the single active behavior of an agent in a frame.
type State int

const (
	StateIdle State = iota
	StateChase
	StateAttack
	StateSearch
	StateReturn
	StateStunned
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateChase:
		return "chase"
	case StateAttack:
		return "attack"
	case StateSearch:
		return "search"
	case StateReturn:
		return "return"
	case StateStunned:
		return "stunned"
	default:
		return "unknown"
	}
}

// MarshalText lets snapshots carry the state name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a state name written by MarshalText.
func (s *State) UnmarshalText(text []byte) error {
	for candidate := StateIdle; candidate <= StateStunned; candidate++ {
		if candidate.String() == string(text) {
			*s = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown behavior state %q", text)
}

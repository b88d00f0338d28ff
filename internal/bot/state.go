package bot

import "fmt"

type StateKind int

const (
	StateIdle StateKind = iota
	StateMiningPrimary
	StateMiningFallback
	StateWaiting
)

func (k StateKind) String() string {
	switch k {
	case StateIdle:
		return "Idle"
	case StateMiningPrimary:
		return "MiningPrimary"
	case StateMiningFallback:
		return "MiningFallback"
	case StateWaiting:
		return "Waiting"
	}

	return "Unknown"
}

// State is what the controller is currently doing. OreID is set only while mining.
type State struct {
	Kind  StateKind
	OreID string
}

func Idle() State {
	return State{Kind: StateIdle}
}

func Waiting() State {
	return State{Kind: StateWaiting}
}

func MiningPrimary(oreID string) State {
	return State{Kind: StateMiningPrimary, OreID: oreID}
}

func MiningFallback(oreID string) State {
	return State{Kind: StateMiningFallback, OreID: oreID}
}

// Target returns the ore being mined, empty when idle or waiting.
func (s State) Target() string {
	switch s.Kind {
	case StateMiningPrimary, StateMiningFallback:
		return s.OreID
	}

	return ""
}

func (s State) String() string {
	if t := s.Target(); t != "" {
		return fmt.Sprintf("%s(%s)", s.Kind, t)
	}

	return s.Kind.String()
}

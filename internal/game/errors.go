package game

import (
	"errors"
	"fmt"
)

var (
	// ErrStaleReference is reported when the queried game object was replaced between
	// snapshot and read. It is always transient.
	ErrStaleReference = errors.New("stale game object reference")
	ErrTargetNotFound = errors.New("target not found")
	ErrTargetDepleted = errors.New("target depleted")
)

// CommunicationError wraps any failure talking to the game page.
type CommunicationError struct {
	Op        string
	Transient bool
	Err       error
}

func (e *CommunicationError) Error() string {
	return fmt.Sprintf("communication error during %s: %v", e.Op, e.Err)
}

func (e *CommunicationError) Unwrap() error {
	return e.Err
}

// Temporary reports whether the call is worth retrying.
func (e *CommunicationError) Temporary() bool {
	return e.Transient || errors.Is(e.Err, ErrStaleReference)
}

// ActionIneffectiveError means a mine command was issued but no HP decrement was observed.
type ActionIneffectiveError struct {
	OreID     string
	InitialHP int
	CurrentHP int
}

func (e *ActionIneffectiveError) Error() string {
	return fmt.Sprintf("expected HP decrement after mining %s, but found initial HP: %d, current HP: %d", e.OreID, e.InitialHP, e.CurrentHP)
}

type MissingGearMappingError struct {
	OreID string
}

func (e *MissingGearMappingError) Error() string {
	return fmt.Sprintf("no glove mapping registered for ore %s", e.OreID)
}

// InvalidSnapshotError flags an ore whose reported HP is out of range.
type InvalidSnapshotError struct {
	OreID     string
	CurrentHP int
	MaxHP     int
}

func (e *InvalidSnapshotError) Error() string {
	return fmt.Sprintf("inconsistent ore state for %s: current HP %d, max HP %d", e.OreID, e.CurrentHP, e.MaxHP)
}

// IsTransient reports whether err is a retryable communication failure.
func IsTransient(err error) bool {
	var ce *CommunicationError
	if errors.As(err, &ce) {
		return ce.Temporary()
	}

	return errors.Is(err, ErrStaleReference)
}

package requests

import (
	"errors"
	"fmt"

	"miko/ledger-portal/ledger-portal-backend/internal/ledger"
)

// Status is a verification request state as recorded on the ledger.
type Status int

const (
	StatusPending  Status = ledger.RequestStatusPending
	StatusApproved Status = ledger.RequestStatusApproved
	StatusRejected Status = ledger.RequestStatusRejected
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "PENDING"
	case StatusApproved:
		return "APPROVED"
	case StatusRejected:
		return "REJECTED"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(s))
	}
}

// ErrTerminalState is returned when a transition is requested out of an
// approved or rejected request; those states are final.
var ErrTerminalState = errors.New("requests: request is in a terminal state")

// ErrInvalidTransition is returned for transitions the lifecycle does not
// define at all.
var ErrInvalidTransition = errors.New("requests: invalid status transition")

// StateMachine enforces verification request status transitions. The only
// producer of transitions is a validator action recorded on the ledger; this
// side validates intent before a transaction is built, it never mutates state
// itself.
type StateMachine struct {
	allowedTransitions map[Status][]Status
}

// NewStateMachine creates the request lifecycle state machine.
func NewStateMachine() *StateMachine {
	return &StateMachine{
		allowedTransitions: map[Status][]Status{
			StatusPending:  {StatusApproved, StatusRejected},
			StatusApproved: {},
			StatusRejected: {},
		},
	}
}

// CanTransition checks if a status transition is allowed.
func (sm *StateMachine) CanTransition(from, to Status) bool {
	allowed, exists := sm.allowedTransitions[from]
	if !exists {
		return false
	}
	for _, allowedTo := range allowed {
		if allowedTo == to {
			return true
		}
	}
	return false
}

// ValidateTransition returns a descriptive error when a transition is not
// allowed, distinguishing terminal states from plain invalid moves.
func (sm *StateMachine) ValidateTransition(from, to Status) error {
	if sm.CanTransition(from, to) {
		return nil
	}
	if allowed, exists := sm.allowedTransitions[from]; exists && len(allowed) == 0 {
		return fmt.Errorf("%w: %s -> %s", ErrTerminalState, from, to)
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}

// GetAllowedTransitions returns the allowed next statuses for a given status.
func (sm *StateMachine) GetAllowedTransitions(from Status) []Status {
	allowed, exists := sm.allowedTransitions[from]
	if !exists {
		return []Status{}
	}
	return allowed
}

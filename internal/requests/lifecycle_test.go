package requests

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPendingTransitions(t *testing.T) {
	sm := NewStateMachine()

	assert.True(t, sm.CanTransition(StatusPending, StatusApproved))
	assert.True(t, sm.CanTransition(StatusPending, StatusRejected))
	assert.False(t, sm.CanTransition(StatusPending, StatusPending))
}

func TestTerminalStatesRejectAllTransitions(t *testing.T) {
	sm := NewStateMachine()

	for _, terminal := range []Status{StatusApproved, StatusRejected} {
		for _, to := range []Status{StatusPending, StatusApproved, StatusRejected} {
			assert.False(t, sm.CanTransition(terminal, to), "%s -> %s must be rejected", terminal, to)

			err := sm.ValidateTransition(terminal, to)
			assert.ErrorIs(t, err, ErrTerminalState)
		}
	}
}

func TestUnknownStatusRejected(t *testing.T) {
	sm := NewStateMachine()

	assert.False(t, sm.CanTransition(Status(0), StatusApproved))
	assert.ErrorIs(t, sm.ValidateTransition(Status(0), StatusApproved), ErrInvalidTransition)
}

func TestValidateTransitionAllowsPendingDecisions(t *testing.T) {
	sm := NewStateMachine()

	assert.NoError(t, sm.ValidateTransition(StatusPending, StatusApproved))
	assert.NoError(t, sm.ValidateTransition(StatusPending, StatusRejected))
}

func TestGetAllowedTransitions(t *testing.T) {
	sm := NewStateMachine()

	assert.ElementsMatch(t, []Status{StatusApproved, StatusRejected}, sm.GetAllowedTransitions(StatusPending))
	assert.Empty(t, sm.GetAllowedTransitions(StatusApproved))
	assert.Empty(t, sm.GetAllowedTransitions(Status(99)))
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "PENDING", StatusPending.String())
	assert.Equal(t, "APPROVED", StatusApproved.String())
	assert.Equal(t, "REJECTED", StatusRejected.String())
	assert.Equal(t, "UNKNOWN(7)", Status(7).String())
}

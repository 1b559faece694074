package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultStatusMachine_IsValid(t *testing.T) {
	require.NoError(t, DefaultStatusMachine().Validate())
}

func TestValidateTransition(t *testing.T) {
	m := DefaultStatusMachine()

	tests := []struct {
		from, to string
		valid    bool
		reason   string
	}{
		{from: StatusPending, to: StatusConfirmed, valid: true},
		{from: StatusPending, to: StatusCancelled, valid: true},
		{from: StatusConfirmed, to: StatusNoShow, valid: true},
		{from: StatusCompleted, to: StatusPending, reason: `cannot transition from "completed" to "pending"`},
		{from: StatusPending, to: StatusCompleted, reason: `cannot transition from "pending" to "completed"`},
		{from: "archived", to: StatusPending, reason: `unknown status: "archived"`},
	}

	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			res := ValidateTransition(tt.from, tt.to, m)
			assert.Equal(t, tt.valid, res.Valid)
			assert.Equal(t, tt.reason, res.Reason)
		})
	}
}

func TestIsBlockingStatus(t *testing.T) {
	m := DefaultStatusMachine()
	assert.True(t, IsBlockingStatus(StatusPending, m))
	assert.True(t, IsBlockingStatus(StatusConfirmed, m))
	assert.False(t, IsBlockingStatus(StatusCancelled, m))
	assert.False(t, IsBlockingStatus("unknown", m))
}

func TestAllowedOnCreate(t *testing.T) {
	m := DefaultStatusMachine()
	assert.Equal(t, []string{StatusPending}, m.AllowedOnCreate(false))
	// cancelled is one hop away but terminal
	assert.Equal(t, []string{StatusPending, StatusConfirmed}, m.AllowedOnCreate(true))
}

func TestStatusMachine_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(m *StatusMachine)
	}{
		{
			name:   "default not in statuses",
			modify: func(m *StatusMachine) { m.DefaultStatus = "draft" },
		},
		{
			name:   "blocking not in statuses",
			modify: func(m *StatusMachine) { m.BlockingStatuses = append(m.BlockingStatuses, "held") },
		},
		{
			name:   "terminal with outgoing edge",
			modify: func(m *StatusMachine) { m.Transitions[StatusCompleted] = []string{StatusPending} },
		},
		{
			name:   "transition to unknown",
			modify: func(m *StatusMachine) { m.Transitions[StatusPending] = []string{"archived"} },
		},
		{
			name:   "transition from unknown",
			modify: func(m *StatusMachine) { m.Transitions["archived"] = []string{StatusPending} },
		},
		{
			name:   "terminal default",
			modify: func(m *StatusMachine) { m.DefaultStatus = StatusCancelled },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := DefaultStatusMachine()
			tt.modify(m)
			assert.ErrorIs(t, m.Validate(), ErrInvalidStatusMachine)
		})
	}
}

package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from ReservationStatus
		to   ReservationStatus
		want bool
	}{
		{StatusPending, StatusApproved, true},
		{StatusPending, StatusRejected, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusActive, false},
		{StatusApproved, StatusActive, true},
		{StatusApproved, StatusCancelled, true},
		{StatusApproved, StatusRejected, false},
		{StatusActive, StatusCompleted, true},
		{StatusActive, StatusNoShow, true},
		{StatusActive, StatusCancelled, true},
		{StatusActive, StatusApproved, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusRejected, StatusApproved, false},
		{ReservationStatus("unknown"), StatusApproved, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestValidateTransition(t *testing.T) {
	assert.NoError(t, ValidateTransition(StatusApproved, StatusActive))
	assert.ErrorIs(t, ValidateTransition(StatusCompleted, StatusActive), ErrInvalidStateTransition)
}

func TestIsTerminalStatus(t *testing.T) {
	for _, s := range []ReservationStatus{StatusRejected, StatusCompleted, StatusCancelled, StatusNoShow} {
		assert.True(t, IsTerminalStatus(s), s)
	}
	for _, s := range []ReservationStatus{StatusPending, StatusApproved, StatusActive} {
		assert.False(t, IsTerminalStatus(s), s)
	}
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("no_show")
	assert.NoError(t, err)
	assert.Equal(t, StatusNoShow, s)

	_, err = ParseStatus("confirmed")
	assert.Error(t, err)
}

package conflicts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/makerspace-reservations/internal/domain"
	"github.com/m04kA/makerspace-reservations/pkg/logger"
	"github.com/m04kA/makerspace-reservations/pkg/ptr"
)

type fakeRepo struct {
	reservations []*domain.Reservation
	err          error
}

// FindOverlapping намеренно возвращает все бронирования, чтобы проверить фильтрацию сервиса
func (f *fakeRepo) FindOverlapping(_ context.Context, _ int64, _ domain.TimeWindow, _ *int64) ([]*domain.Reservation, error) {
	return f.reservations, f.err
}

func hour(h int) time.Time {
	return time.Date(2025, 3, 10, h, 0, 0, 0, time.UTC)
}

func window(from, to int) domain.TimeWindow {
	return domain.TimeWindow{Start: hour(from), End: hour(to)}
}

func existing(id int64, from, to int, status domain.ReservationStatus) *domain.Reservation {
	return &domain.Reservation{ID: id, EquipmentID: 1, RequestedStart: hour(from), RequestedEnd: hour(to), Status: status}
}

func TestCheckAvailability(t *testing.T) {
	repo := &fakeRepo{reservations: []*domain.Reservation{
		existing(1, 10, 12, domain.StatusApproved),
		existing(2, 13, 15, domain.StatusPending),
		existing(3, 15, 17, domain.StatusActive),
	}}
	svc := NewService(repo, logger.Nop())

	tests := []struct {
		name       string
		window     domain.TimeWindow
		excludeID  *int64
		conflictID int64
	}{
		{name: "touching end boundary is free", window: window(12, 13)},
		{name: "touching start boundary is free", window: window(8, 10)},
		{name: "pending reservation does not hold equipment", window: window(13, 14)},
		{name: "overlap with approved", window: window(11, 13), conflictID: 1},
		{name: "overlap with active", window: window(16, 18), conflictID: 3},
		{name: "excluded reservation is ignored", window: window(11, 12), excludeID: ptr.Ptr(int64(1))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conflict, err := svc.CheckAvailability(context.Background(), 1, tt.window, tt.excludeID)
			require.NoError(t, err)

			if tt.conflictID == 0 {
				assert.Nil(t, conflict)
				return
			}
			require.NotNil(t, conflict)
			assert.Equal(t, tt.conflictID, conflict.ReservationID)
			assert.ErrorIs(t, conflict, domain.ErrConflict)
		})
	}
}

func TestCheckAvailability_RepositoryError(t *testing.T) {
	svc := NewService(&fakeRepo{err: errors.New("db down")}, logger.Nop())

	_, err := svc.CheckAvailability(context.Background(), 1, window(9, 10), nil)
	assert.ErrorIs(t, err, ErrInternal)
}

package get_availability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/makerspace-reservations/internal/domain"
	"github.com/m04kA/makerspace-reservations/internal/integrations/equipmentregistry"
	"github.com/m04kA/makerspace-reservations/pkg/logger"
	"github.com/m04kA/makerspace-reservations/pkg/ptr"
)

type fakeEquipment struct{ err error }

func (c *fakeEquipment) GetEquipment(_ context.Context, id int64) (*domain.Equipment, error) {
	if c.err != nil {
		return nil, c.err
	}
	return &domain.Equipment{ID: id, HourlyRate: 25, Status: domain.EquipmentAvailable}, nil
}

type fakeUsers struct{}

func (fakeUsers) GetUserWithGracefulDegradation(_ context.Context, userID int64, role domain.Role) (*domain.User, error) {
	return &domain.User{ID: userID, Role: role}, nil
}

type fakeBusy struct {
	reservations []*domain.Reservation
	calls        int
}

func (f *fakeBusy) FindBusy(_ context.Context, _ int64, window domain.TimeWindow, _ *int64) ([]*domain.Reservation, error) {
	f.calls++
	out := make([]*domain.Reservation, 0)
	for _, res := range f.reservations {
		if res.HoldsEquipment() && res.Window().Overlaps(window) {
			out = append(out, res)
		}
	}
	return out, nil
}

type fakeGates struct {
	results []domain.GateResult
	calls   int
}

func (g *fakeGates) VerifyGates(_ context.Context, _ int64, _ *domain.User, _ domain.TimeWindow) ([]domain.GateResult, error) {
	g.calls++
	return g.results, nil
}

func at(hour, minute int) time.Time {
	return time.Date(2024, 6, 3, hour, minute, 0, 0, time.UTC)
}

func newUseCase(busy *fakeBusy, gates *fakeGates) *UseCase {
	return NewUseCase(&fakeEquipment{}, fakeUsers{}, busy, gates, Settings{SlotMinutes: 60, MaxAvailabilityDays: 31}, logger.Nop())
}

func TestExecute_ClassifiesSlots(t *testing.T) {
	busy := &fakeBusy{reservations: []*domain.Reservation{
		{ID: 1, Status: domain.StatusApproved, RequestedStart: at(10, 0), RequestedEnd: at(11, 0)},
		{ID: 2, Status: domain.StatusPending, RequestedStart: at(11, 0), RequestedEnd: at(12, 0)},
		{ID: 3, Status: domain.StatusActive, RequestedStart: at(12, 30), RequestedEnd: at(13, 0)},
	}}
	uc := newUseCase(busy, &fakeGates{})

	resp, err := uc.Execute(context.Background(), &Request{EquipmentID: 1, WindowStart: at(9, 0), WindowEnd: at(13, 30)})
	require.NoError(t, err)
	require.Len(t, resp.Slots, 5)

	assert.True(t, resp.Slots[0].Available)
	assert.False(t, resp.Slots[1].Available)
	assert.Equal(t, int64(1), *resp.Slots[1].ConflictingReservationID)
	assert.True(t, resp.Slots[2].Available, "pending reservations do not hold equipment")
	assert.False(t, resp.Slots[3].Available)
	assert.Equal(t, int64(3), *resp.Slots[3].ConflictingReservationID)

	last := resp.Slots[4]
	assert.Equal(t, at(13, 0), last.Window.Start)
	assert.Equal(t, at(13, 30), last.Window.End, "last slot is truncated to the window end")
	assert.True(t, last.Available)

	require.NotNil(t, resp.FirstAvailable)
	assert.Equal(t, at(9, 0), resp.FirstAvailable.Window.Start)
	assert.Equal(t, 1, busy.calls)
}

func TestExecute_IsIdempotent(t *testing.T) {
	busy := &fakeBusy{reservations: []*domain.Reservation{
		{ID: 1, Status: domain.StatusApproved, RequestedStart: at(10, 0), RequestedEnd: at(11, 0)},
	}}
	uc := newUseCase(busy, &fakeGates{})
	req := &Request{EquipmentID: 1, WindowStart: at(8, 0), WindowEnd: at(12, 0)}

	first, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)
	second, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestExecute_AnnotatesGatesForUser(t *testing.T) {
	gates := &fakeGates{results: []domain.GateResult{
		{GateID: 1, GateName: "Laser Safety", EnforcementLevel: domain.EnforcementBlock},
	}}
	uc := newUseCase(&fakeBusy{}, gates)

	resp, err := uc.Execute(context.Background(), &Request{
		EquipmentID: 1,
		WindowStart: at(9, 0),
		WindowEnd:   at(11, 0),
		UserID:      ptr.Ptr(int64(7)),
		Role:        domain.RoleMember,
	})
	require.NoError(t, err)
	require.Len(t, resp.Slots, 2)

	for _, slot := range resp.Slots {
		assert.True(t, slot.Available)
		assert.True(t, slot.RequiresSkillVerification)
		assert.Equal(t, []string{"Laser Safety"}, slot.BlockingGates)
	}
	assert.Nil(t, resp.FirstAvailable)
	assert.Equal(t, 1, gates.calls)
}

func TestExecute_WithoutUserSkipsGates(t *testing.T) {
	gates := &fakeGates{results: []domain.GateResult{{GateName: "Laser Safety", EnforcementLevel: domain.EnforcementBlock}}}
	uc := newUseCase(&fakeBusy{}, gates)

	resp, err := uc.Execute(context.Background(), &Request{EquipmentID: 1, WindowStart: at(9, 0), WindowEnd: at(10, 0)})
	require.NoError(t, err)
	assert.Zero(t, gates.calls)
	assert.Empty(t, resp.Slots[0].BlockingGates)
	assert.False(t, resp.Slots[0].RequiresSkillVerification)
}

func TestExecute_Errors(t *testing.T) {
	t.Run("window too long", func(t *testing.T) {
		uc := newUseCase(&fakeBusy{}, &fakeGates{})
		_, err := uc.Execute(context.Background(), &Request{EquipmentID: 1, WindowStart: at(0, 0), WindowEnd: at(0, 0).AddDate(0, 0, 32)})
		assert.ErrorIs(t, err, ErrWindowTooLong)
	})

	t.Run("inverted window", func(t *testing.T) {
		uc := newUseCase(&fakeBusy{}, &fakeGates{})
		_, err := uc.Execute(context.Background(), &Request{EquipmentID: 1, WindowStart: at(10, 0), WindowEnd: at(9, 0)})
		assert.ErrorIs(t, err, domain.ErrInvalidTimeRange)
	})

	t.Run("unknown equipment", func(t *testing.T) {
		uc := NewUseCase(&fakeEquipment{err: equipmentregistry.ErrEquipmentNotFound}, fakeUsers{}, &fakeBusy{}, &fakeGates{}, Settings{}, logger.Nop())
		_, err := uc.Execute(context.Background(), &Request{EquipmentID: 1, WindowStart: at(9, 0), WindowEnd: at(10, 0)})
		assert.ErrorIs(t, err, ErrEquipmentNotFound)
	})
}

func TestGenerateSlots_ExactMultiple(t *testing.T) {
	slots := generateSlots(domain.TimeWindow{Start: at(9, 0), End: at(12, 0)}, time.Hour)
	require.Len(t, slots, 3)
	assert.Equal(t, at(11, 0), slots[2].Start)
	assert.Equal(t, at(12, 0), slots[2].End)
}

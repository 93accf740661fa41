package estimate_cost

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/makerspace-reservations/internal/domain"
	"github.com/m04kA/makerspace-reservations/internal/integrations/equipmentregistry"
	"github.com/m04kA/makerspace-reservations/internal/integrations/userservice"
	"github.com/m04kA/makerspace-reservations/internal/service/pricing"
	"github.com/m04kA/makerspace-reservations/pkg/logger"
)

type mockEquipment struct{ mock.Mock }

func (m *mockEquipment) GetEquipment(ctx context.Context, id int64) (*domain.Equipment, error) {
	args := m.Called(ctx, id)
	eq, _ := args.Get(0).(*domain.Equipment)
	return eq, args.Error(1)
}

type mockUsers struct{ mock.Mock }

func (m *mockUsers) GetUserWithGracefulDegradation(ctx context.Context, id int64, role domain.Role) (*domain.User, error) {
	args := m.Called(ctx, id, role)
	u, _ := args.Get(0).(*domain.User)
	return u, args.Error(1)
}

type mockGates struct{ mock.Mock }

func (m *mockGates) VerifyGates(ctx context.Context, equipmentID int64, user *domain.User, window domain.TimeWindow) ([]domain.GateResult, error) {
	args := m.Called(ctx, equipmentID, user, window)
	r, _ := args.Get(0).([]domain.GateResult)
	return r, args.Error(1)
}

type mockPricing struct{ mock.Mock }

func (m *mockPricing) Calculate(ctx context.Context, req *pricing.Request) (*domain.CostBreakdown, error) {
	args := m.Called(ctx, req)
	b, _ := args.Get(0).(*domain.CostBreakdown)
	return b, args.Error(1)
}

var (
	start = time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)
	end   = start.Add(2 * time.Hour)
)

func TestExecute_SupervisionFlowsIntoPricing(t *testing.T) {
	ctx := context.Background()
	equipment := &domain.Equipment{ID: 1, HourlyRate: 25}
	user := &domain.User{ID: 7, Role: domain.RoleMember}

	eqClient := &mockEquipment{}
	eqClient.On("GetEquipment", ctx, int64(1)).Return(equipment, nil)
	users := &mockUsers{}
	users.On("GetUserWithGracefulDegradation", ctx, int64(7), domain.RoleMember).Return(user, nil)
	gates := &mockGates{}
	gates.On("VerifyGates", ctx, int64(1), user, mock.Anything).Return([]domain.GateResult{
		{GateName: "Supervised", Passed: true, RequiresSupervisor: true, EnforcementLevel: domain.EnforcementBlock},
	}, nil)
	engine := &mockPricing{}
	engine.On("Calculate", ctx, mock.MatchedBy(func(req *pricing.Request) bool {
		return req.SupervisionRequired && req.Requester == user && req.Window.Hours() == 2
	})).Return(&domain.CostBreakdown{BaseCost: 50, TotalCost: 60}, nil)

	uc := NewUseCase(eqClient, users, gates, engine, 100, logger.Nop())
	resp, err := uc.Execute(ctx, &Request{UserID: 7, Role: domain.RoleMember, EquipmentID: 1, Start: start, End: end})
	require.NoError(t, err)

	assert.Equal(t, 60.0, resp.Breakdown.TotalCost)
	assert.Equal(t, 2.0, resp.DurationHours)
	assert.True(t, resp.SupervisorRequired)
	assert.False(t, resp.WouldAutoApprove)
	engine.AssertExpectations(t)
}

func TestExecute_DegradedUserStillEstimates(t *testing.T) {
	ctx := context.Background()
	basic := &domain.User{ID: 7, Role: domain.RoleMember}

	eqClient := &mockEquipment{}
	eqClient.On("GetEquipment", ctx, int64(1)).Return(&domain.Equipment{ID: 1, HourlyRate: 10}, nil)
	users := &mockUsers{}
	users.On("GetUserWithGracefulDegradation", ctx, int64(7), domain.RoleMember).Return(basic, userservice.ErrServiceDegraded)
	gates := &mockGates{}
	gates.On("VerifyGates", ctx, int64(1), basic, mock.Anything).Return([]domain.GateResult{}, nil)
	engine := &mockPricing{}
	engine.On("Calculate", ctx, mock.Anything).Return(&domain.CostBreakdown{BaseCost: 20, TotalCost: 20}, nil)

	uc := NewUseCase(eqClient, users, gates, engine, 100, logger.Nop())
	resp, err := uc.Execute(ctx, &Request{UserID: 7, Role: domain.RoleMember, EquipmentID: 1, Start: start, End: end})
	require.NoError(t, err)
	assert.True(t, resp.WouldAutoApprove)
}

func TestExecute_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid window", func(t *testing.T) {
		uc := NewUseCase(&mockEquipment{}, &mockUsers{}, &mockGates{}, &mockPricing{}, 100, logger.Nop())
		_, err := uc.Execute(ctx, &Request{UserID: 7, EquipmentID: 1, Start: end, End: start})
		assert.ErrorIs(t, err, domain.ErrInvalidTimeRange)
	})

	t.Run("equipment not found", func(t *testing.T) {
		eqClient := &mockEquipment{}
		eqClient.On("GetEquipment", ctx, int64(1)).Return(nil, equipmentregistry.ErrEquipmentNotFound)

		uc := NewUseCase(eqClient, &mockUsers{}, &mockGates{}, &mockPricing{}, 100, logger.Nop())
		_, err := uc.Execute(ctx, &Request{UserID: 7, EquipmentID: 1, Start: start, End: end})
		assert.ErrorIs(t, err, ErrEquipmentNotFound)
	})

	t.Run("user not found", func(t *testing.T) {
		eqClient := &mockEquipment{}
		eqClient.On("GetEquipment", ctx, int64(1)).Return(&domain.Equipment{ID: 1}, nil)
		users := &mockUsers{}
		users.On("GetUserWithGracefulDegradation", ctx, int64(7), domain.RoleMember).Return(nil, userservice.ErrUserNotFound)

		uc := NewUseCase(eqClient, users, &mockGates{}, &mockPricing{}, 100, logger.Nop())
		_, err := uc.Execute(ctx, &Request{UserID: 7, Role: domain.RoleMember, EquipmentID: 1, Start: start, End: end})
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

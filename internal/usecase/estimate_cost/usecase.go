package estimate_cost

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/makerspace-reservations/internal/domain"
	"github.com/m04kA/makerspace-reservations/internal/integrations/equipmentregistry"
	"github.com/m04kA/makerspace-reservations/internal/integrations/userservice"
	"github.com/m04kA/makerspace-reservations/internal/service/pricing"
)

// UseCase use case для расчета стоимости без создания бронирования
type UseCase struct {
	equipmentClient       EquipmentClient
	userClient            UserServiceClient
	gates                 GateVerifier
	pricing               PricingEngine
	autoApprovalThreshold float64
	logger                Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	equipmentClient EquipmentClient,
	userClient UserServiceClient,
	gates GateVerifier,
	pricing PricingEngine,
	autoApprovalThreshold float64,
	logger Logger,
) *UseCase {
	return &UseCase{
		equipmentClient:       equipmentClient,
		userClient:            userClient,
		gates:                 gates,
		pricing:               pricing,
		autoApprovalThreshold: autoApprovalThreshold,
		logger:                logger,
	}
}

// Execute считает стоимость так же, как при создании бронирования
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("EstimateCost: user=%d, equipment=%d", req.UserID, req.EquipmentID)

	if req.EquipmentID <= 0 || req.UserID <= 0 {
		return nil, fmt.Errorf("%w: userID and equipmentID must be positive", ErrInvalidInput)
	}

	window, err := domain.NewTimeWindow(req.Start, req.End)
	if err != nil {
		return nil, err
	}

	equipment, err := uc.equipmentClient.GetEquipment(ctx, req.EquipmentID)
	if err != nil {
		if errors.Is(err, equipmentregistry.ErrEquipmentNotFound) {
			return nil, ErrEquipmentNotFound
		}
		uc.logger.Error("EstimateCost: failed to get equipment id=%d: %v", req.EquipmentID, err)
		return nil, fmt.Errorf("%w: failed to get equipment: %v", ErrInternal, err)
	}

	user, err := uc.userClient.GetUserWithGracefulDegradation(ctx, req.UserID, req.Role)
	if err != nil {
		if errors.Is(err, userservice.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		if !errors.Is(err, userservice.ErrServiceDegraded) {
			return nil, fmt.Errorf("%w: failed to get user: %v", ErrInternal, err)
		}
	}

	// Skill premium зависит от того, нужен ли супервизор
	results, err := uc.gates.VerifyGates(ctx, equipment.ID, user, window)
	if err != nil {
		uc.logger.Error("EstimateCost: skill gate verification failed: %v", err)
		return nil, fmt.Errorf("%w: failed to verify skill gates: %v", ErrInternal, err)
	}
	decision := domain.EvaluateGates(results, false, domain.EmergencyPolicy{})

	breakdown, err := uc.pricing.Calculate(ctx, &pricing.Request{
		Equipment:           equipment,
		Window:              window,
		Requester:           user,
		ProjectID:           req.ProjectID,
		SupervisionRequired: decision.SupervisorRequired,
	})
	if err != nil {
		uc.logger.Error("EstimateCost: cost calculation failed: %v", err)
		return nil, fmt.Errorf("%w: failed to calculate cost: %v", ErrInternal, err)
	}

	return &Response{
		EquipmentID:        equipment.ID,
		DurationHours:      window.Hours(),
		Breakdown:          breakdown,
		SupervisorRequired: decision.SupervisorRequired,
		WouldAutoApprove: !decision.Blocked && !decision.Unsatisfied && !decision.SupervisorRequired &&
			breakdown.TotalCost < uc.autoApprovalThreshold,
	}, nil
}

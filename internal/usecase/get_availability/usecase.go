package get_availability

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/m04kA/makerspace-reservations/internal/domain"
	"github.com/m04kA/makerspace-reservations/internal/integrations/equipmentregistry"
	"github.com/m04kA/makerspace-reservations/internal/integrations/userservice"
)

// UseCase use case для расчета свободных и занятых слотов оборудования
type UseCase struct {
	equipmentClient EquipmentClient
	userClient      UserServiceClient
	busy            BusyFinder
	gates           GateVerifier
	settings        Settings
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	equipmentClient EquipmentClient,
	userClient UserServiceClient,
	busy BusyFinder,
	gates GateVerifier,
	settings Settings,
	logger Logger,
) *UseCase {
	if settings.SlotMinutes <= 0 {
		settings.SlotMinutes = domain.DefaultSlotMinutes
	}
	if settings.MaxAvailabilityDays <= 0 {
		settings.MaxAvailabilityDays = domain.DefaultMaxAvailabilityDays
	}
	return &UseCase{
		equipmentClient: equipmentClient,
		userClient:      userClient,
		busy:            busy,
		gates:           gates,
		settings:        settings,
		logger:          logger,
	}
}

// Execute выполняет use case расчета доступности
// Запрос только читает данные, поэтому при неизменном окне результат повторяем
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailability: equipment=%d, window=%s - %s",
		req.EquipmentID, req.WindowStart.Format(time.RFC3339), req.WindowEnd.Format(time.RFC3339))

	// 1. Валидация
	if req.EquipmentID <= 0 {
		return nil, fmt.Errorf("%w: equipmentID must be positive", ErrInvalidInput)
	}

	window, err := domain.NewTimeWindow(req.WindowStart, req.WindowEnd)
	if err != nil {
		uc.logger.Warn("GetAvailability: validation failed: %v", err)
		return nil, err
	}

	maxWindow := time.Duration(uc.settings.MaxAvailabilityDays) * 24 * time.Hour
	if window.Duration() > maxWindow {
		uc.logger.Warn("GetAvailability: window %s exceeds %d days", window.Duration(), uc.settings.MaxAvailabilityDays)
		return nil, fmt.Errorf("%w: maximum is %d days", ErrWindowTooLong, uc.settings.MaxAvailabilityDays)
	}

	// 2. Оборудование должно существовать
	equipment, err := uc.equipmentClient.GetEquipment(ctx, req.EquipmentID)
	if err != nil {
		if errors.Is(err, equipmentregistry.ErrEquipmentNotFound) {
			uc.logger.Warn("GetAvailability: equipment id=%d not found", req.EquipmentID)
			return nil, ErrEquipmentNotFound
		}
		uc.logger.Error("GetAvailability: failed to get equipment id=%d: %v", req.EquipmentID, err)
		return nil, fmt.Errorf("%w: failed to get equipment: %v", ErrInternal, err)
	}

	// 3. Занимающие бронирования
	busy, err := uc.busy.FindBusy(ctx, equipment.ID, window, nil)
	if err != nil {
		uc.logger.Error("GetAvailability: failed to find busy reservations: %v", err)
		return nil, fmt.Errorf("%w: failed to find busy reservations: %v", ErrInternal, err)
	}
	sort.Slice(busy, func(i, j int) bool {
		if busy[i].RequestedStart.Equal(busy[j].RequestedStart) {
			return busy[i].ID < busy[j].ID
		}
		return busy[i].RequestedStart.Before(busy[j].RequestedStart)
	})

	slots := classify(generateSlots(window, time.Duration(uc.settings.SlotMinutes)*time.Minute), busy)

	// 4. Разметка skill gates, сам запрос при этом не отклоняется
	if req.UserID != nil {
		decision, err := uc.gateDecision(ctx, equipment.ID, *req.UserID, req.Role, window)
		if err != nil {
			return nil, err
		}
		annotate(slots, decision)
	}

	resp := &Response{
		EquipmentID:    equipment.ID,
		Slots:          slots,
		FirstAvailable: firstAvailable(slots),
	}

	uc.logger.Info("GetAvailability: equipment=%d, slots=%d, busy reservations=%d",
		equipment.ID, len(slots), len(busy))

	return resp, nil
}

// gateDecision проверяет gates пользователя один раз на все окно
// Срок действия сертификатов сверяется с концом окна
func (uc *UseCase) gateDecision(ctx context.Context, equipmentID, userID int64, role domain.Role, window domain.TimeWindow) (domain.GateDecision, error) {
	user, err := uc.userClient.GetUserWithGracefulDegradation(ctx, userID, role)
	if err != nil {
		if errors.Is(err, userservice.ErrUserNotFound) {
			return domain.GateDecision{}, fmt.Errorf("%w: user id=%d not found", ErrInvalidInput, userID)
		}
		if !errors.Is(err, userservice.ErrServiceDegraded) {
			return domain.GateDecision{}, fmt.Errorf("%w: failed to get user: %v", ErrInternal, err)
		}
	}

	results, err := uc.gates.VerifyGates(ctx, equipmentID, user, window)
	if err != nil {
		uc.logger.Error("GetAvailability: skill gate verification failed: %v", err)
		return domain.GateDecision{}, fmt.Errorf("%w: failed to verify skill gates: %v", ErrInternal, err)
	}

	return domain.EvaluateGates(results, false, domain.EmergencyPolicy{}), nil
}

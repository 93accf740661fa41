package conflicts

import (
	"context"
	"fmt"

	"github.com/m04kA/makerspace-reservations/internal/domain"
)

// Service детектор конфликтов бронирований
// Занятыми считаются только бронирования в статусах approved и active.
// Интервалы полуоткрытые: касание границ конфликтом не является
type Service struct {
	reservationRepo ReservationRepository
	logger          Logger
}

// NewService создает новый экземпляр детектора конфликтов
func NewService(reservationRepo ReservationRepository, logger Logger) *Service {
	return &Service{
		reservationRepo: reservationRepo,
		logger:          logger,
	}
}

// CheckAvailability возвращает первый конфликт для окна или nil, если оборудование свободно
// excludeID исключает само бронирование при перепроверке (одобрение, перенос)
// Внутри транзакции выборка идет с FOR UPDATE
func (s *Service) CheckAvailability(ctx context.Context, equipmentID int64, window domain.TimeWindow, excludeID *int64) (*domain.ConflictError, error) {
	busy, err := s.FindBusy(ctx, equipmentID, window, excludeID)
	if err != nil {
		return nil, err
	}

	if len(busy) == 0 {
		return nil, nil
	}

	first := busy[0]
	s.logger.Info("CheckAvailability: equipment id=%d conflicts with reservation id=%d", equipmentID, first.ID)

	return &domain.ConflictError{
		ReservationID: first.ID,
		Window:        first.Window(),
	}, nil
}

// FindBusy возвращает все занимающие оборудование бронирования, пересекающиеся с окном,
// упорядоченные по времени начала
func (s *Service) FindBusy(ctx context.Context, equipmentID int64, window domain.TimeWindow, excludeID *int64) ([]*domain.Reservation, error) {
	reservations, err := s.reservationRepo.FindOverlapping(ctx, equipmentID, window, excludeID)
	if err != nil {
		s.logger.Error("FindBusy: repository error for equipment id=%d: %v", equipmentID, err)
		return nil, fmt.Errorf("%w: FindBusy - repository error: %v", ErrInternal, err)
	}

	busy := make([]*domain.Reservation, 0, len(reservations))
	for _, r := range reservations {
		if excludeID != nil && r.ID == *excludeID {
			continue
		}
		if !r.HoldsEquipment() || !r.Window().Overlaps(window) {
			continue
		}
		busy = append(busy, r)
	}

	return busy, nil
}

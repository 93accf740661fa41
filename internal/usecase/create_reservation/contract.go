package create_reservation

import (
	"context"
	"time"

	"github.com/m04kA/makerspace-reservations/internal/domain"
	"github.com/m04kA/makerspace-reservations/internal/integrations/notifications"
	"github.com/m04kA/makerspace-reservations/internal/service/pricing"
)

// ReservationRepository интерфейс репозитория бронирований
type ReservationRepository interface {
	LockEquipment(ctx context.Context, equipmentID int64) error
	Create(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error)
}

// CostBreakdownRepository интерфейс репозитория строк стоимости
type CostBreakdownRepository interface {
	CreateBatch(ctx context.Context, items []*domain.CostBreakdownItem) error
}

// SkillVerificationRepository интерфейс репозитория аудита проверок gates
type SkillVerificationRepository interface {
	CreateBatch(ctx context.Context, verifications []*domain.SkillVerification) error
}

// EquipmentClient интерфейс клиента реестра оборудования
type EquipmentClient interface {
	GetEquipment(ctx context.Context, equipmentID int64) (*domain.Equipment, error)
}

// UserServiceClient интерфейс клиента для UserService
type UserServiceClient interface {
	GetUserWithGracefulDegradation(ctx context.Context, userID int64, role domain.Role) (*domain.User, error)
}

// ConflictDetector интерфейс детектора конфликтов
type ConflictDetector interface {
	CheckAvailability(ctx context.Context, equipmentID int64, window domain.TimeWindow, excludeID *int64) (*domain.ConflictError, error)
}

// GateVerifier интерфейс проверки skill gates
type GateVerifier interface {
	VerifyGates(ctx context.Context, equipmentID int64, user *domain.User, window domain.TimeWindow) ([]domain.GateResult, error)
}

// PricingEngine интерфейс движка стоимости
type PricingEngine interface {
	Calculate(ctx context.Context, req *pricing.Request) (*domain.CostBreakdown, error)
}

// Notifier интерфейс асинхронных уведомлений
type Notifier interface {
	Notify(reservationID int64, event notifications.EventType)
}

// OutcomeRecorder счетчик исходов создания бронирований
type OutcomeRecorder interface {
	ObserveReservationOutcome(outcome string)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}

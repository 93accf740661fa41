package reservations

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
	GetByID(ctx context.Context, id int64) (*domain.Reservation, error)
	List(ctx context.Context, filter domain.ReservationFilter) ([]*domain.Reservation, error)
	UpdateStatus(ctx context.Context, id int64, change domain.StatusChange) error
	Update(ctx context.Context, res *domain.Reservation) error
}

// CostBreakdownRepository интерфейс репозитория строк стоимости
type CostBreakdownRepository interface {
	CreateBatch(ctx context.Context, items []*domain.CostBreakdownItem) error
	ListByReservation(ctx context.Context, reservationID int64) ([]*domain.CostBreakdownItem, error)
	DeleteByReservation(ctx context.Context, reservationID int64) error
}

// SkillVerificationRepository интерфейс репозитория аудита проверок gates
type SkillVerificationRepository interface {
	CreateBatch(ctx context.Context, verifications []*domain.SkillVerification) error
	ListByReservation(ctx context.Context, reservationID int64) ([]*domain.SkillVerification, error)
	DeleteByReservation(ctx context.Context, reservationID int64) error
}

// ConflictDetector интерфейс детектора конфликтов
type ConflictDetector interface {
	CheckAvailability(ctx context.Context, equipmentID int64, window domain.TimeWindow, excludeID *int64) (*domain.ConflictError, error)
}

// PricingEngine интерфейс движка стоимости
type PricingEngine interface {
	Calculate(ctx context.Context, req *pricing.Request) (*domain.CostBreakdown, error)
}

// EquipmentClient интерфейс клиента реестра оборудования
type EquipmentClient interface {
	GetEquipment(ctx context.Context, equipmentID int64) (*domain.Equipment, error)
}

// UserServiceClient интерфейс клиента каталога пользователей
type UserServiceClient interface {
	GetUserWithGracefulDegradation(ctx context.Context, userID int64, role domain.Role) (*domain.User, error)
}

// GateVerifier интерфейс проверки skill gates
type GateVerifier interface {
	VerifyGates(ctx context.Context, equipmentID int64, user *domain.User, window domain.TimeWindow) ([]domain.GateResult, error)
}

// Notifier интерфейс асинхронных уведомлений
type Notifier interface {
	Notify(reservationID int64, event notifications.EventType)
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

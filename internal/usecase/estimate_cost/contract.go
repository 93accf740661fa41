package estimate_cost

import (
	"context"

	"github.com/m04kA/makerspace-reservations/internal/domain"
	"github.com/m04kA/makerspace-reservations/internal/service/pricing"
)

// EquipmentClient интерфейс клиента реестра оборудования
type EquipmentClient interface {
	GetEquipment(ctx context.Context, equipmentID int64) (*domain.Equipment, error)
}

// UserServiceClient интерфейс клиента для UserService
type UserServiceClient interface {
	GetUserWithGracefulDegradation(ctx context.Context, userID int64, role domain.Role) (*domain.User, error)
}

// GateVerifier интерфейс проверки skill gates
type GateVerifier interface {
	VerifyGates(ctx context.Context, equipmentID int64, user *domain.User, window domain.TimeWindow) ([]domain.GateResult, error)
}

// PricingEngine интерфейс движка стоимости
type PricingEngine interface {
	Calculate(ctx context.Context, req *pricing.Request) (*domain.CostBreakdown, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

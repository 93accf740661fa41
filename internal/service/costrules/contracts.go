package costrules

import (
	"context"

	"github.com/m04kA/makerspace-reservations/internal/domain"
)

// CostRuleRepository интерфейс репозитория правил стоимости
type CostRuleRepository interface {
	Create(ctx context.Context, rule *domain.CostRule) (*domain.CostRule, error)
	ListByEquipment(ctx context.Context, equipmentID int64, activeOnly bool) ([]*domain.CostRule, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

package pricing

import (
	"context"
	"time"

	"github.com/m04kA/makerspace-reservations/internal/domain"
)

// CostRuleRepository интерфейс репозитория правил стоимости
type CostRuleRepository interface {
	ListByEquipment(ctx context.Context, equipmentID int64, activeOnly bool) ([]*domain.CostRule, error)
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

package cost_rules

import (
	"context"

	"github.com/m04kA/makerspace-reservations/internal/domain"
)

type CostRuleService interface {
	Create(ctx context.Context, rule *domain.CostRule) (*domain.CostRule, error)
	List(ctx context.Context, equipmentID int64) ([]*domain.CostRule, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

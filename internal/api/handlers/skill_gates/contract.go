package skill_gates

import (
	"context"

	"github.com/m04kA/makerspace-reservations/internal/domain"
)

type SkillGateService interface {
	Create(ctx context.Context, gate *domain.SkillGate) (*domain.SkillGate, error)
	List(ctx context.Context, equipmentID int64) ([]*domain.SkillGate, error)
	AddPrerequisite(ctx context.Context, skillID, prerequisiteID int64) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

package skillgates

import (
	"context"

	"github.com/m04kA/makerspace-reservations/internal/domain"
)

// SkillGateRepository интерфейс репозитория skill gates
type SkillGateRepository interface {
	Create(ctx context.Context, gate *domain.SkillGate) (*domain.SkillGate, error)
	ListByEquipment(ctx context.Context, equipmentID int64, activeOnly bool) ([]*domain.SkillGate, error)
}

// PrerequisiteRepository интерфейс репозитория графа зависимостей навыков
type PrerequisiteRepository interface {
	Create(ctx context.Context, p *domain.SkillPrerequisite) error
	ListAll(ctx context.Context) ([]*domain.SkillPrerequisite, error)
}

// CertificationClient интерфейс клиента хранилища сертификатов
type CertificationClient interface {
	VerifyCertification(ctx context.Context, userID, skillID int64) (*domain.Certification, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

package skillgates

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/makerspace-reservations/internal/domain"
)

// Service администрирование skill gates и графа зависимостей навыков
type Service struct {
	gateRepo   SkillGateRepository
	prereqRepo PrerequisiteRepository
	txManager  TransactionManager
	logger     Logger
}

// NewService создает новый экземпляр сервиса
func NewService(
	gateRepo SkillGateRepository,
	prereqRepo PrerequisiteRepository,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		gateRepo:   gateRepo,
		prereqRepo: prereqRepo,
		txManager:  txManager,
		logger:     logger,
	}
}

// Create создает gate после проверки конфигурации
func (s *Service) Create(ctx context.Context, gate *domain.SkillGate) (*domain.SkillGate, error) {
	if err := gate.Validate(); err != nil {
		s.logger.Warn("Create: invalid skill gate for equipment id=%d: %v", gate.EquipmentID, err)
		return nil, err
	}

	created, err := s.gateRepo.Create(ctx, gate)
	if err != nil {
		s.logger.Error("Create: repository error for equipment id=%d: %v", gate.EquipmentID, err)
		return nil, fmt.Errorf("%w: Create - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Create: skill gate id=%d created for equipment id=%d", created.ID, created.EquipmentID)
	return created, nil
}

// List возвращает все gates оборудования, включая неактивные
func (s *Service) List(ctx context.Context, equipmentID int64) ([]*domain.SkillGate, error) {
	gates, err := s.gateRepo.ListByEquipment(ctx, equipmentID, false)
	if err != nil {
		s.logger.Error("List: repository error for equipment id=%d: %v", equipmentID, err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}
	return gates, nil
}

// AddPrerequisite добавляет зависимость skillID -> prerequisiteID
// Граф перечитывается и проверяется на циклы в той же сериализуемой транзакции, что и вставка
func (s *Service) AddPrerequisite(ctx context.Context, skillID, prerequisiteID int64) error {
	if skillID <= 0 || prerequisiteID <= 0 {
		return fmt.Errorf("%w: skill ids must be positive", ErrInvalidInput)
	}

	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		edges, err := s.prereqRepo.ListAll(txCtx)
		if err != nil {
			return fmt.Errorf("%w: AddPrerequisite - list edges: %v", ErrInternal, err)
		}

		graph := domain.NewSkillGraph(edges)
		if err := graph.AddEdge(skillID, prerequisiteID); err != nil {
			return err
		}

		if err := s.prereqRepo.Create(txCtx, &domain.SkillPrerequisite{
			SkillID:             skillID,
			PrerequisiteSkillID: prerequisiteID,
		}); err != nil {
			return fmt.Errorf("%w: AddPrerequisite - insert edge: %v", ErrInternal, err)
		}
		return nil
	})

	if err != nil {
		if errors.Is(err, domain.ErrPrerequisiteCycle) {
			s.logger.Warn("AddPrerequisite: rejected %d -> %d: %v", skillID, prerequisiteID, err)
		} else {
			s.logger.Error("AddPrerequisite: failed %d -> %d: %v", skillID, prerequisiteID, err)
		}
		return err
	}

	s.logger.Info("AddPrerequisite: skill %d now requires skill %d", skillID, prerequisiteID)
	return nil
}

package costrules

import (
	"context"
	"fmt"

	"github.com/m04kA/makerspace-reservations/internal/domain"
)

// Service администрирование правил стоимости
type Service struct {
	ruleRepo CostRuleRepository
	logger   Logger
}

// NewService создает новый экземпляр сервиса
func NewService(ruleRepo CostRuleRepository, logger Logger) *Service {
	return &Service{
		ruleRepo: ruleRepo,
		logger:   logger,
	}
}

// Create сохраняет правило; некорректная конфигурация отклоняется с domain.ErrRuleConfiguration
func (s *Service) Create(ctx context.Context, rule *domain.CostRule) (*domain.CostRule, error) {
	if err := rule.Validate(); err != nil {
		s.logger.Warn("Create: invalid cost rule for equipment id=%d: %v", rule.EquipmentID, err)
		return nil, err
	}

	created, err := s.ruleRepo.Create(ctx, rule)
	if err != nil {
		s.logger.Error("Create: repository error for equipment id=%d: %v", rule.EquipmentID, err)
		return nil, fmt.Errorf("%w: Create - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Create: cost rule id=%d (%s, priority=%d) created for equipment id=%d",
		created.ID, created.RuleType, created.Priority, created.EquipmentID)
	return created, nil
}

// List возвращает правила оборудования в порядке убывания приоритета
func (s *Service) List(ctx context.Context, equipmentID int64) ([]*domain.CostRule, error) {
	rules, err := s.ruleRepo.ListByEquipment(ctx, equipmentID, false)
	if err != nil {
		s.logger.Error("List: repository error for equipment id=%d: %v", equipmentID, err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}
	return rules, nil
}

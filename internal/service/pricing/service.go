package pricing

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/m04kA/makerspace-reservations/internal/domain"
)

// Service движок правил стоимости
type Service struct {
	ruleRepo     CostRuleRepository
	location     *time.Location
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр движка стоимости
// location часовой пояс makerspace: в нем сверяются часы и дни недели правил (nil - UTC)
func NewService(ruleRepo CostRuleRepository, location *time.Location, logger Logger) *Service {
	if location == nil {
		location = time.UTC
	}
	return &Service{
		ruleRepo:     ruleRepo,
		location:     location,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Calculate рассчитывает стоимость бронирования по активным правилам оборудования
func (s *Service) Calculate(ctx context.Context, req *Request) (*domain.CostBreakdown, error) {
	if req == nil || req.Equipment == nil {
		return nil, fmt.Errorf("%w: equipment is required", ErrInvalidInput)
	}
	if !req.Window.End.After(req.Window.Start) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, domain.ErrInvalidTimeRange)
	}

	rules, err := s.ruleRepo.ListByEquipment(ctx, req.Equipment.ID, true)
	if err != nil {
		s.logger.Error("Calculate: failed to list cost rules for equipment id=%d: %v", req.Equipment.ID, err)
		return nil, fmt.Errorf("%w: Calculate - repository error: %v", ErrInternal, err)
	}

	// Клиент может прислать любое смещение, правила по времени считаются в местном времени makerspace
	local := *req
	local.Window = domain.TimeWindow{
		Start: req.Window.Start.In(s.location),
		End:   req.Window.End.In(s.location),
	}

	breakdown := s.compute(rules, &local, s.timeProvider.Now())

	s.logger.Info("Calculate: equipment id=%d, hours=%.2f, base=%.2f, total=%.2f, deposit=%.2f, items=%d",
		req.Equipment.ID, req.Window.Hours(), breakdown.BaseCost, breakdown.TotalCost, breakdown.DepositAmount, len(breakdown.Items))

	return breakdown, nil
}

// compute применяет правила к запросу; каждая ценовая категория разрешается не более одного раза
func (s *Service) compute(rules []*domain.CostRule, req *Request, now time.Time) *domain.CostBreakdown {
	hours := req.Window.Hours()
	applicable := s.applicableRules(rules, req, hours, now)

	breakdown := &domain.CostBreakdown{
		Items: make([]*domain.CostBreakdownItem, 0, len(applicable)+1),
	}

	resolved := make(map[domain.PricingCategory]bool)
	applied := make([]*domain.CostRule, 0, len(applicable))

	// 1. Базовая стоимость
	baseItem := s.baseItem(applicable, req, hours)
	if baseItem.RuleApplied != nil {
		for _, rule := range applicable {
			if rule.ID == *baseItem.RuleApplied {
				applied = append(applied, rule)
				break
			}
		}
	}
	resolved[domain.CategoryBase] = true
	breakdown.Items = append(breakdown.Items, baseItem)
	breakdown.BaseCost = baseItem.CalculatedAmount

	// 2. Корректировки и залог
	breakdown.DepositAmount = domain.RoundMoney(req.Equipment.DepositRequired)
	for _, rule := range applicable {
		category := rule.Category()
		if resolved[category] {
			continue
		}

		if category == domain.CategoryDeposit {
			if *rule.BaseAmount > breakdown.DepositAmount {
				breakdown.DepositAmount = domain.RoundMoney(*rule.BaseAmount)
			}
			resolved[category] = true
			continue
		}

		item := adjustmentItem(rule, req, breakdown.BaseCost)
		if item == nil {
			continue
		}

		resolved[category] = true
		applied = append(applied, rule)
		breakdown.Items = append(breakdown.Items, item)
	}

	// 3. Ограничения минимальной и максимальной стоимости
	if item := clampItem(applied, breakdown.Sum()); item != nil {
		breakdown.Items = append(breakdown.Items, item)
	}

	// 4. Итог не может быть отрицательным
	if subtotal := breakdown.Sum(); subtotal < 0 {
		breakdown.Items = append(breakdown.Items, &domain.CostBreakdownItem{
			CostType:         domain.CostNonNegative,
			Description:      "Adjustment to prevent negative total",
			BaseAmount:       subtotal,
			Quantity:         1,
			CalculatedAmount: -subtotal,
		})
	}

	breakdown.TotalCost = breakdown.Sum()
	return breakdown
}

// applicableRules отбирает действующие, корректные и подходящие по фильтрам правила
// в порядке убывания приоритета
func (s *Service) applicableRules(rules []*domain.CostRule, req *Request, hours float64, now time.Time) []*domain.CostRule {
	var userID int64
	if req.Requester != nil {
		userID = req.Requester.ID
	}

	result := make([]*domain.CostRule, 0, len(rules))
	for _, rule := range rules {
		if !rule.IsEffectiveAt(now) {
			continue
		}
		if err := rule.Validate(); err != nil {
			s.logger.Warn("Calculate: skipping malformed cost rule id=%d: %v", rule.ID, err)
			continue
		}
		if !rule.AppliesTo(userID, req.ProjectID, hours) {
			continue
		}
		result = append(result, rule)
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Priority != result[j].Priority {
			return result[i].Priority > result[j].Priority
		}
		return result[i].ID < result[j].ID
	})

	return result
}

// baseItem строка базовой стоимости: правило с наибольшим приоритетом или тариф оборудования
func (s *Service) baseItem(rules []*domain.CostRule, req *Request, hours float64) *domain.CostBreakdownItem {
	for _, rule := range rules {
		if rule.Category() != domain.CategoryBase {
			continue
		}

		item := &domain.CostBreakdownItem{
			Description:  rule.Name,
			RuleApplied:  &rule.ID,
			IsRefundable: true,
			IsTaxable:    true,
		}

		switch rule.RuleType {
		case domain.RuleHourlyRate:
			rate := *rule.RatePerHour
			item.CostType = domain.CostHourlyRate
			item.Rate = &rate
			item.Quantity = hours
			item.BaseAmount = rate
			item.CalculatedAmount = domain.RoundMoney(rate * hours)
		case domain.RuleFlatRate:
			item.CostType = domain.CostFlatRate
			item.Quantity = 1
			item.BaseAmount = *rule.BaseAmount
			item.CalculatedAmount = domain.RoundMoney(*rule.BaseAmount)
		case domain.RuleTierBased:
			item.CostType = domain.CostTierBased
			item.Quantity = hours
			item.CalculatedAmount = domain.RoundMoney(rule.TierAmount(hours))
			item.BaseAmount = item.CalculatedAmount
		}

		return item
	}

	rate := req.Equipment.HourlyRate
	return &domain.CostBreakdownItem{
		CostType:         domain.CostBaseRate,
		Description:      "Equipment hourly rate",
		BaseAmount:       rate,
		Quantity:         hours,
		Rate:             &rate,
		CalculatedAmount: domain.RoundMoney(rate * hours),
		IsRefundable:     true,
		IsTaxable:        true,
	}
}

// adjustmentItem строка корректировки или nil, если условие правила не выполнено
func adjustmentItem(rule *domain.CostRule, req *Request, base float64) *domain.CostBreakdownItem {
	var (
		costType domain.CostType
		pct      *float64
	)

	switch rule.RuleType {
	case domain.RuleMembershipDiscount:
		if req.Requester == nil || req.Requester.MembershipTier == "" {
			return nil
		}
		discount, ok := rule.MembershipDiscounts[req.Requester.MembershipTier]
		if !ok || discount == 0 {
			return nil
		}
		negative := -discount
		pct = &negative
		costType = domain.CostMembershipDiscount
	case domain.RuleTimeOfDay:
		if !rule.MatchesTime(req.Window.Start) {
			return nil
		}
		pct = rule.Percentage
		costType = domain.CostTimeOfDay
	case domain.RuleDayOfWeek:
		if !rule.MatchesTime(req.Window.Start) {
			return nil
		}
		pct = rule.Percentage
		costType = domain.CostDayOfWeek
	case domain.RuleSkillPremium:
		if !req.SupervisionRequired {
			return nil
		}
		pct = rule.Percentage
		costType = domain.CostSkillPremium
	default:
		return nil
	}

	item := &domain.CostBreakdownItem{
		CostType:     costType,
		Description:  rule.Name,
		RuleApplied:  &rule.ID,
		BaseAmount:   base,
		Quantity:     1,
		IsRefundable: true,
	}

	if pct != nil {
		p := *pct
		item.Percentage = &p
		item.CalculatedAmount = domain.RoundMoney(base * p / 100)
	} else {
		item.CalculatedAmount = domain.RoundMoney(*rule.BaseAmount)
	}
	item.IsTaxable = item.CalculatedAmount > 0

	return item
}

// clampItem строка доведения суммы до границ MinimumCharge/MaximumCharge примененных правил
// Берется наибольший минимум и наименьший максимум
func clampItem(applied []*domain.CostRule, subtotal float64) *domain.CostBreakdownItem {
	var (
		minCharge *float64
		maxCharge *float64
		minRule   int64
		maxRule   int64
	)

	for _, rule := range applied {
		if rule.MinimumCharge != nil && (minCharge == nil || *rule.MinimumCharge > *minCharge) {
			minCharge = rule.MinimumCharge
			minRule = rule.ID
		}
		if rule.MaximumCharge != nil && (maxCharge == nil || *rule.MaximumCharge < *maxCharge) {
			maxCharge = rule.MaximumCharge
			maxRule = rule.ID
		}
	}

	switch {
	case minCharge != nil && subtotal < *minCharge:
		return &domain.CostBreakdownItem{
			CostType:         domain.CostMinimumCharge,
			Description:      fmt.Sprintf("Minimum charge %.2f", *minCharge),
			RuleApplied:      &minRule,
			BaseAmount:       subtotal,
			Quantity:         1,
			CalculatedAmount: domain.RoundMoney(*minCharge - subtotal),
			IsRefundable:     true,
			IsTaxable:        true,
		}
	case maxCharge != nil && subtotal > *maxCharge:
		return &domain.CostBreakdownItem{
			CostType:         domain.CostMaximumCharge,
			Description:      fmt.Sprintf("Maximum charge %.2f", *maxCharge),
			RuleApplied:      &maxRule,
			BaseAmount:       subtotal,
			Quantity:         1,
			CalculatedAmount: domain.RoundMoney(*maxCharge - subtotal),
			IsRefundable:     true,
		}
	}

	return nil
}

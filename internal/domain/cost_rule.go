package domain

import (
	"fmt"
	"math"
	"time"
)

// RuleType тип правила стоимости
type RuleType string

const (
	RuleFlatRate           RuleType = "flat_rate"
	RuleHourlyRate         RuleType = "hourly_rate"
	RuleTierBased          RuleType = "tier_based"
	RuleMembershipDiscount RuleType = "membership_discount"
	RuleSkillPremium       RuleType = "skill_premium"
	RuleTimeOfDay          RuleType = "time_of_day"
	RuleDayOfWeek          RuleType = "day_of_week"
	RuleDepositRequired    RuleType = "deposit_required"
)

// PricingCategory категория, которую закрывает правило
// Каждая категория разрешается не более одного раза (побеждает правило с большим приоритетом)
type PricingCategory string

const (
	CategoryBase    PricingCategory = "base"
	CategoryDeposit PricingCategory = "deposit"
)

// Tier ступень градуированной цены
// UpToHours nil означает "без верхней границы" и допустим только для последней ступени
type Tier struct {
	UpToHours   *float64 `json:"upToHours,omitempty"`
	RatePerHour float64  `json:"ratePerHour"`
}

// TimeConditions условия по времени начала бронирования
// StartHour/EndHour задают [StartHour, EndHour); StartHour > EndHour означает интервал через полночь
// Weekdays используют нумерацию time.Weekday (0 = воскресенье)
type TimeConditions struct {
	StartHour *int  `json:"startHour,omitempty"`
	EndHour   *int  `json:"endHour,omitempty"`
	Weekdays  []int `json:"weekdays,omitempty"`
}

// CostRule правило ценообразования для оборудования
type CostRule struct {
	ID          int64
	EquipmentID int64
	Name        string
	Description *string
	RuleType    RuleType
	Priority    int

	BaseAmount    *float64
	RatePerHour   *float64
	Percentage    *float64
	MinimumCharge *float64
	MaximumCharge *float64

	TierConfig          []Tier
	MembershipDiscounts map[string]float64
	TimeConditions      *TimeConditions

	EffectiveFrom  *time.Time
	EffectiveUntil *time.Time

	ApplicableUserIDs    []int64
	ApplicableProjectIDs []int64
	MinDurationHours     *float64
	MaxDurationHours     *float64

	IsActive  bool
	CreatedBy int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Category возвращает категорию правила
func (r *CostRule) Category() PricingCategory {
	switch r.RuleType {
	case RuleHourlyRate, RuleFlatRate, RuleTierBased:
		return CategoryBase
	case RuleDepositRequired:
		return CategoryDeposit
	default:
		return PricingCategory(r.RuleType)
	}
}

// IsEffectiveAt returns true if the rule is active and t is inside its effective window
func (r *CostRule) IsEffectiveAt(t time.Time) bool {
	if !r.IsActive {
		return false
	}
	if r.EffectiveFrom != nil && t.Before(*r.EffectiveFrom) {
		return false
	}
	if r.EffectiveUntil != nil && !t.Before(*r.EffectiveUntil) {
		return false
	}
	return true
}

// AppliesTo проверяет фильтры применимости (пользователи, проекты, длительность)
func (r *CostRule) AppliesTo(userID int64, projectID *int64, hours float64) bool {
	if len(r.ApplicableUserIDs) > 0 && !containsID(r.ApplicableUserIDs, userID) {
		return false
	}
	if len(r.ApplicableProjectIDs) > 0 && (projectID == nil || !containsID(r.ApplicableProjectIDs, *projectID)) {
		return false
	}
	if r.MinDurationHours != nil && hours < *r.MinDurationHours {
		return false
	}
	if r.MaxDurationHours != nil && hours > *r.MaxDurationHours {
		return false
	}
	return true
}

// MatchesTime проверяет TimeConditions для момента начала бронирования
// start должен быть уже переведен в часовой пояс makerspace
func (r *CostRule) MatchesTime(start time.Time) bool {
	tc := r.TimeConditions
	if tc == nil {
		return true
	}

	if tc.StartHour != nil && tc.EndHour != nil {
		hour := start.Hour()
		from, to := *tc.StartHour, *tc.EndHour
		if from <= to {
			if hour < from || hour >= to {
				return false
			}
		} else if hour < from && hour >= to {
			return false
		}
	}

	if len(tc.Weekdays) > 0 {
		day := int(start.Weekday())
		found := false
		for _, d := range tc.Weekdays {
			if d == day {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	return true
}

// TierAmount градуированная стоимость для hours часов
func (r *CostRule) TierAmount(hours float64) float64 {
	var (
		total    float64
		consumed float64
	)
	for _, tier := range r.TierConfig {
		upTo := math.Inf(1)
		if tier.UpToHours != nil {
			upTo = *tier.UpToHours
		}
		portion := math.Min(hours, upTo) - consumed
		if portion <= 0 {
			break
		}
		total += portion * tier.RatePerHour
		consumed += portion
	}
	return total
}

// Validate проверяет конфигурацию правила; вызывается при создании правила администратором
func (r *CostRule) Validate() error {
	if r.EquipmentID <= 0 {
		return fmt.Errorf("%w: equipment id is required", ErrRuleConfiguration)
	}
	if r.Name == "" {
		return fmt.Errorf("%w: rule name is required", ErrRuleConfiguration)
	}
	if r.MinimumCharge != nil && *r.MinimumCharge < 0 {
		return fmt.Errorf("%w: minimum charge must not be negative", ErrRuleConfiguration)
	}
	if r.MinimumCharge != nil && r.MaximumCharge != nil && *r.MinimumCharge > *r.MaximumCharge {
		return fmt.Errorf("%w: minimum charge exceeds maximum charge", ErrRuleConfiguration)
	}
	if r.EffectiveFrom != nil && r.EffectiveUntil != nil && !r.EffectiveUntil.After(*r.EffectiveFrom) {
		return fmt.Errorf("%w: effective_until must be after effective_from", ErrRuleConfiguration)
	}
	if r.MinDurationHours != nil && r.MaxDurationHours != nil && *r.MinDurationHours > *r.MaxDurationHours {
		return fmt.Errorf("%w: min duration exceeds max duration", ErrRuleConfiguration)
	}

	switch r.RuleType {
	case RuleHourlyRate:
		if r.RatePerHour == nil || *r.RatePerHour < 0 {
			return fmt.Errorf("%w: hourly_rate rule requires a non-negative rate_per_hour", ErrRuleConfiguration)
		}
	case RuleFlatRate:
		if r.BaseAmount == nil || *r.BaseAmount < 0 {
			return fmt.Errorf("%w: flat_rate rule requires a non-negative base_amount", ErrRuleConfiguration)
		}
	case RuleTierBased:
		return r.validateTiers()
	case RuleMembershipDiscount:
		if len(r.MembershipDiscounts) == 0 {
			return fmt.Errorf("%w: membership_discount rule requires membership_discounts", ErrRuleConfiguration)
		}
		for tier, pct := range r.MembershipDiscounts {
			if pct < 0 || pct > 100 {
				return fmt.Errorf("%w: discount for tier %q must be within 0..100", ErrRuleConfiguration, tier)
			}
		}
	case RuleTimeOfDay:
		tc := r.TimeConditions
		if tc == nil || tc.StartHour == nil || tc.EndHour == nil {
			return fmt.Errorf("%w: time_of_day rule requires start and end hour", ErrRuleConfiguration)
		}
		if *tc.StartHour < 0 || *tc.StartHour > 23 || *tc.EndHour < 0 || *tc.EndHour > 24 || *tc.StartHour == *tc.EndHour {
			return fmt.Errorf("%w: time_of_day hours are out of range", ErrRuleConfiguration)
		}
		return r.validateAdjustment()
	case RuleDayOfWeek:
		if r.TimeConditions == nil || len(r.TimeConditions.Weekdays) == 0 {
			return fmt.Errorf("%w: day_of_week rule requires weekdays", ErrRuleConfiguration)
		}
		for _, d := range r.TimeConditions.Weekdays {
			if d < 0 || d > 6 {
				return fmt.Errorf("%w: weekday %d is out of range", ErrRuleConfiguration, d)
			}
		}
		return r.validateAdjustment()
	case RuleSkillPremium:
		return r.validateAdjustment()
	case RuleDepositRequired:
		if r.BaseAmount == nil || *r.BaseAmount <= 0 {
			return fmt.Errorf("%w: deposit_required rule requires a positive base_amount", ErrRuleConfiguration)
		}
	default:
		return fmt.Errorf("%w: unknown rule type %q", ErrRuleConfiguration, r.RuleType)
	}

	return nil
}

func (r *CostRule) validateAdjustment() error {
	if r.Percentage == nil && r.BaseAmount == nil {
		return fmt.Errorf("%w: %s rule requires percentage or base_amount", ErrRuleConfiguration, r.RuleType)
	}
	return nil
}

func (r *CostRule) validateTiers() error {
	if len(r.TierConfig) == 0 {
		return fmt.Errorf("%w: tier_based rule requires tier_config", ErrRuleConfiguration)
	}

	prev := 0.0
	for i, tier := range r.TierConfig {
		if tier.RatePerHour < 0 {
			return fmt.Errorf("%w: tier %d has negative rate", ErrRuleConfiguration, i)
		}
		if tier.UpToHours == nil {
			if i != len(r.TierConfig)-1 {
				return fmt.Errorf("%w: only the last tier may be unbounded", ErrRuleConfiguration)
			}
			continue
		}
		if *tier.UpToHours <= prev {
			return fmt.Errorf("%w: tier bounds must be strictly increasing", ErrRuleConfiguration)
		}
		prev = *tier.UpToHours
	}
	return nil
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

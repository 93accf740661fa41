package cost_rules

import (
	"time"

	"github.com/m04kA/makerspace-reservations/internal/domain"
)

// CostRuleRequest HTTP request model
// Согласованность полей с типом правила проверяет domain.CostRule.Validate
type CostRuleRequest struct {
	EquipmentID          int64                  `json:"equipmentId" validate:"required,gt=0"`
	Name                 string                 `json:"name" validate:"required,max=200"`
	Description          *string                `json:"description,omitempty" validate:"omitempty,max=1000"`
	RuleType             string                 `json:"ruleType" validate:"required,oneof=flat_rate hourly_rate tier_based membership_discount skill_premium time_of_day day_of_week deposit_required"`
	Priority             int                    `json:"priority"`
	BaseAmount           *float64               `json:"baseAmount,omitempty"`
	RatePerHour          *float64               `json:"ratePerHour,omitempty" validate:"omitempty,gte=0"`
	Percentage           *float64               `json:"percentage,omitempty"`
	MinimumCharge        *float64               `json:"minimumCharge,omitempty" validate:"omitempty,gte=0"`
	MaximumCharge        *float64               `json:"maximumCharge,omitempty" validate:"omitempty,gte=0"`
	TierConfig           []domain.Tier          `json:"tierConfig,omitempty"`
	MembershipDiscounts  map[string]float64     `json:"membershipDiscounts,omitempty"`
	TimeConditions       *domain.TimeConditions `json:"timeConditions,omitempty"`
	EffectiveFrom        *time.Time             `json:"effectiveFrom,omitempty"`
	EffectiveUntil       *time.Time             `json:"effectiveUntil,omitempty"`
	ApplicableUserIDs    []int64                `json:"applicableUserIds,omitempty"`
	ApplicableProjectIDs []int64                `json:"applicableProjectIds,omitempty"`
	MinDurationHours     *float64               `json:"minDurationHours,omitempty" validate:"omitempty,gte=0"`
	MaxDurationHours     *float64               `json:"maxDurationHours,omitempty" validate:"omitempty,gt=0"`
	IsActive             *bool                  `json:"isActive,omitempty"`
}

func (r *CostRuleRequest) ToDomain(createdBy int64) *domain.CostRule {
	isActive := true
	if r.IsActive != nil {
		isActive = *r.IsActive
	}

	return &domain.CostRule{
		EquipmentID:          r.EquipmentID,
		Name:                 r.Name,
		Description:          r.Description,
		RuleType:             domain.RuleType(r.RuleType),
		Priority:             r.Priority,
		BaseAmount:           r.BaseAmount,
		RatePerHour:          r.RatePerHour,
		Percentage:           r.Percentage,
		MinimumCharge:        r.MinimumCharge,
		MaximumCharge:        r.MaximumCharge,
		TierConfig:           r.TierConfig,
		MembershipDiscounts:  r.MembershipDiscounts,
		TimeConditions:       r.TimeConditions,
		EffectiveFrom:        r.EffectiveFrom,
		EffectiveUntil:       r.EffectiveUntil,
		ApplicableUserIDs:    r.ApplicableUserIDs,
		ApplicableProjectIDs: r.ApplicableProjectIDs,
		MinDurationHours:     r.MinDurationHours,
		MaxDurationHours:     r.MaxDurationHours,
		IsActive:             isActive,
		CreatedBy:            createdBy,
	}
}

// CostRuleResponse HTTP response model
type CostRuleResponse struct {
	ID                   int64                  `json:"id"`
	EquipmentID          int64                  `json:"equipmentId"`
	Name                 string                 `json:"name"`
	Description          *string                `json:"description,omitempty"`
	RuleType             string                 `json:"ruleType"`
	Priority             int                    `json:"priority"`
	BaseAmount           *float64               `json:"baseAmount,omitempty"`
	RatePerHour          *float64               `json:"ratePerHour,omitempty"`
	Percentage           *float64               `json:"percentage,omitempty"`
	MinimumCharge        *float64               `json:"minimumCharge,omitempty"`
	MaximumCharge        *float64               `json:"maximumCharge,omitempty"`
	TierConfig           []domain.Tier          `json:"tierConfig,omitempty"`
	MembershipDiscounts  map[string]float64     `json:"membershipDiscounts,omitempty"`
	TimeConditions       *domain.TimeConditions `json:"timeConditions,omitempty"`
	EffectiveFrom        *string                `json:"effectiveFrom,omitempty"`
	EffectiveUntil       *string                `json:"effectiveUntil,omitempty"`
	ApplicableUserIDs    []int64                `json:"applicableUserIds,omitempty"`
	ApplicableProjectIDs []int64                `json:"applicableProjectIds,omitempty"`
	MinDurationHours     *float64               `json:"minDurationHours,omitempty"`
	MaxDurationHours     *float64               `json:"maxDurationHours,omitempty"`
	IsActive             bool                   `json:"isActive"`
	CreatedBy            int64                  `json:"createdBy"`
	CreatedAt            string                 `json:"createdAt"`
}

// CostRuleListResponse список правил в порядке убывания приоритета
type CostRuleListResponse struct {
	Rules []CostRuleResponse `json:"rules"`
	Total int                `json:"total"`
}

func FromDomain(r *domain.CostRule) CostRuleResponse {
	return CostRuleResponse{
		ID:                   r.ID,
		EquipmentID:          r.EquipmentID,
		Name:                 r.Name,
		Description:          r.Description,
		RuleType:             string(r.RuleType),
		Priority:             r.Priority,
		BaseAmount:           r.BaseAmount,
		RatePerHour:          r.RatePerHour,
		Percentage:           r.Percentage,
		MinimumCharge:        r.MinimumCharge,
		MaximumCharge:        r.MaximumCharge,
		TierConfig:           r.TierConfig,
		MembershipDiscounts:  r.MembershipDiscounts,
		TimeConditions:       r.TimeConditions,
		EffectiveFrom:        formatTime(r.EffectiveFrom),
		EffectiveUntil:       formatTime(r.EffectiveUntil),
		ApplicableUserIDs:    r.ApplicableUserIDs,
		ApplicableProjectIDs: r.ApplicableProjectIDs,
		MinDurationHours:     r.MinDurationHours,
		MaxDurationHours:     r.MaxDurationHours,
		IsActive:             r.IsActive,
		CreatedBy:            r.CreatedBy,
		CreatedAt:            r.CreatedAt.Format(time.RFC3339),
	}
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

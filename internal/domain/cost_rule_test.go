package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/makerspace-reservations/pkg/ptr"
)

func TestCostRule_Validate(t *testing.T) {
	tests := []struct {
		name    string
		rule    CostRule
		wantErr bool
	}{
		{"hourly with rate", CostRule{EquipmentID: 1, Name: "r", RuleType: RuleHourlyRate, RatePerHour: ptr.Ptr(12.0)}, false},
		{"hourly without rate", CostRule{EquipmentID: 1, Name: "r", RuleType: RuleHourlyRate}, true},
		{"flat without amount", CostRule{EquipmentID: 1, Name: "r", RuleType: RuleFlatRate}, true},
		{"discount over 100", CostRule{EquipmentID: 1, Name: "r", RuleType: RuleMembershipDiscount, MembershipDiscounts: map[string]float64{"gold": 120}}, true},
		{"time of day without adjustment", CostRule{EquipmentID: 1, Name: "r", RuleType: RuleTimeOfDay, TimeConditions: &TimeConditions{StartHour: ptr.Ptr(18), EndHour: ptr.Ptr(22)}}, true},
		{"deposit", CostRule{EquipmentID: 1, Name: "r", RuleType: RuleDepositRequired, BaseAmount: ptr.Ptr(50.0)}, false},
		{"min above max", CostRule{EquipmentID: 1, Name: "r", RuleType: RuleFlatRate, BaseAmount: ptr.Ptr(5.0), MinimumCharge: ptr.Ptr(10.0), MaximumCharge: ptr.Ptr(5.0)}, true},
		{"unbounded middle tier", CostRule{EquipmentID: 1, Name: "r", RuleType: RuleTierBased, TierConfig: []Tier{{RatePerHour: 5}, {UpToHours: ptr.Ptr(4.0), RatePerHour: 3}}}, true},
		{"unknown type", CostRule{EquipmentID: 1, Name: "r", RuleType: "bogus"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rule.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrRuleConfiguration)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCostRule_TierAmount(t *testing.T) {
	rule := CostRule{TierConfig: []Tier{
		{UpToHours: ptr.Ptr(2.0), RatePerHour: 10},
		{UpToHours: ptr.Ptr(5.0), RatePerHour: 8},
		{RatePerHour: 5},
	}}

	assert.InDelta(t, 15.0, rule.TierAmount(1.5), 0.001)
	assert.InDelta(t, 20+3*8+2*5, rule.TierAmount(7), 0.001)
}

func TestCostRule_MatchesTime(t *testing.T) {
	evening := CostRule{TimeConditions: &TimeConditions{StartHour: ptr.Ptr(18), EndHour: ptr.Ptr(22)}}
	assert.True(t, evening.MatchesTime(at(18, 0)))
	assert.False(t, evening.MatchesTime(at(22, 0)))

	overnight := CostRule{TimeConditions: &TimeConditions{StartHour: ptr.Ptr(22), EndHour: ptr.Ptr(6)}}
	assert.True(t, overnight.MatchesTime(at(23, 0)))
	assert.True(t, overnight.MatchesTime(at(2, 0)))
	assert.False(t, overnight.MatchesTime(at(12, 0)))

	// 2025-03-10 понедельник
	weekend := CostRule{TimeConditions: &TimeConditions{Weekdays: []int{int(time.Saturday), int(time.Sunday)}}}
	assert.False(t, weekend.MatchesTime(at(10, 0)))
	assert.True(t, weekend.MatchesTime(at(10, 0).AddDate(0, 0, 5)))
}

func TestCostRule_AppliesTo(t *testing.T) {
	rule := CostRule{ApplicableUserIDs: []int64{1, 2}, MinDurationHours: ptr.Ptr(2.0)}

	assert.True(t, rule.AppliesTo(1, nil, 3))
	assert.False(t, rule.AppliesTo(3, nil, 3))
	assert.False(t, rule.AppliesTo(1, nil, 1))

	projectRule := CostRule{ApplicableProjectIDs: []int64{10}}
	assert.False(t, projectRule.AppliesTo(1, nil, 1))
	assert.True(t, projectRule.AppliesTo(1, ptr.Ptr(int64(10)), 1))
}

func TestCostRule_IsEffectiveAt(t *testing.T) {
	from := at(9, 0)
	until := at(17, 0)
	rule := CostRule{IsActive: true, EffectiveFrom: &from, EffectiveUntil: &until}

	assert.True(t, rule.IsEffectiveAt(at(12, 0)))
	assert.False(t, rule.IsEffectiveAt(at(8, 0)))
	assert.False(t, rule.IsEffectiveAt(at(17, 0)))

	rule.IsActive = false
	assert.False(t, rule.IsEffectiveAt(at(12, 0)))
}

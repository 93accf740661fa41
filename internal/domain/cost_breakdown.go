package domain

import "math"

// CostType тип строки расчета стоимости
type CostType string

const (
	CostBaseRate           CostType = "base_rate"
	CostHourlyRate         CostType = "hourly_rate"
	CostFlatRate           CostType = "flat_rate"
	CostTierBased          CostType = "tier_based"
	CostMembershipDiscount CostType = "membership_discount"
	CostSkillPremium       CostType = "skill_premium"
	CostTimeOfDay          CostType = "time_of_day"
	CostDayOfWeek          CostType = "day_of_week"
	CostMinimumCharge      CostType = "minimum_charge"
	CostMaximumCharge      CostType = "maximum_charge"
	CostNonNegative        CostType = "non_negative_adjustment"
)

// CostBreakdownItem строка расчета стоимости бронирования
type CostBreakdownItem struct {
	ID               int64
	ReservationID    int64
	CostType         CostType
	Description      string
	RuleApplied      *int64
	BaseAmount       float64
	Quantity         float64
	Rate             *float64
	Percentage       *float64
	CalculatedAmount float64
	IsRefundable     bool
	IsTaxable        bool
}

// CostBreakdown результат работы движка стоимости
// TotalCost всегда равен сумме CalculatedAmount по строкам
type CostBreakdown struct {
	Items         []*CostBreakdownItem
	BaseCost      float64
	TotalCost     float64
	DepositAmount float64
}

// Sum сумма строк, округленная до центов
func (b *CostBreakdown) Sum() float64 {
	var total float64
	for _, item := range b.Items {
		total += item.CalculatedAmount
	}
	return RoundMoney(total)
}

// AttachTo проставляет ReservationID во все строки
func (b *CostBreakdown) AttachTo(reservationID int64) {
	for _, item := range b.Items {
		item.ReservationID = reservationID
	}
}

// RoundMoney округляет сумму до центов
func RoundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}

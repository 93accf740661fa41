package models

import (
	"time"

	"github.com/m04kA/makerspace-reservations/internal/domain"
)

// Request модели

// Actor пользователь, выполняющий действие (из JWT)
type Actor struct {
	UserID int64
	Role   domain.Role
}

// IsAdmin returns true if the actor has staff or admin rights
func (a Actor) IsAdmin() bool {
	return a.Role == domain.RoleAdmin || a.Role == domain.RoleStaff
}

// ListRequest фильтр списка бронирований
type ListRequest struct {
	EquipmentID *int64
	RequesterID *int64
	Status      *string
	From        *time.Time
	To          *time.Time
	Limit       uint64
	Offset      uint64
}

// ApproveRequest решение администратора по бронированию
type ApproveRequest struct {
	Notes         *string
	DepositAmount *float64
	SupervisorID  *int64
}

// UpdateRequest изменение бронирования владельцем или администратором
// Окно можно менять только пока бронирование в статусе pending
type UpdateRequest struct {
	Start     *time.Time
	End       *time.Time
	Purpose   *string
	ProjectID *int64
	UserNotes *string
}

// Response модели

// ReservationResponse ответ с данными бронирования
type ReservationResponse struct {
	ID                      int64                     `json:"id"`
	EquipmentID             int64                     `json:"equipmentId"`
	RequesterID             int64                     `json:"requesterId"`
	RequesterName           string                    `json:"requesterName,omitempty"`
	RequesterMembershipTier string                    `json:"requesterMembershipTier,omitempty"`
	RequestedStart          string                    `json:"requestedStart"`
	RequestedEnd            string                    `json:"requestedEnd"`
	DurationHours           float64                   `json:"durationHours"`
	Status                  string                    `json:"status"`
	Purpose                 *string                   `json:"purpose,omitempty"`
	ProjectID               *int64                    `json:"projectId,omitempty"`
	SkillVerified           bool                      `json:"skillVerified"`
	BaseCost                float64                   `json:"baseCost"`
	TotalCost               float64                   `json:"totalCost"`
	EstimatedCost           float64                   `json:"estimatedCost"`
	DepositAmount           float64                   `json:"depositAmount"`
	PaymentStatus           string                    `json:"paymentStatus"`
	SupervisorRequired      bool                      `json:"supervisorRequired"`
	SupervisorID            *int64                    `json:"supervisorId,omitempty"`
	IsEmergency             bool                      `json:"isEmergency"`
	EmergencyJustification  *string                   `json:"emergencyJustification,omitempty"`
	IsRecurring             bool                      `json:"isRecurring"`
	RecurrencePattern       *domain.RecurrencePattern `json:"recurrencePattern,omitempty"`
	RecurrenceSeriesID      *string                   `json:"recurrenceSeriesId,omitempty"`
	AdminNotes              *string                   `json:"adminNotes,omitempty"`
	UserNotes               *string                   `json:"userNotes,omitempty"`
	ApprovedBy              *int64                    `json:"approvedBy,omitempty"`
	ApprovedAt              *string                   `json:"approvedAt,omitempty"`
	RejectionReason         *string                   `json:"rejectionReason,omitempty"`
	ActualStart             *string                   `json:"actualStart,omitempty"`
	ActualEnd               *string                   `json:"actualEnd,omitempty"`
	CancellationReason      *string                   `json:"cancellationReason,omitempty"`
	CancelledAt             *string                   `json:"cancelledAt,omitempty"`
	CancelledBy             *int64                    `json:"cancelledBy,omitempty"`
	CreatedAt               string                    `json:"createdAt"`
	UpdatedAt               string                    `json:"updatedAt"`

	CostBreakdown      []CostItemResponse     `json:"costBreakdown,omitempty"`
	SkillVerifications []VerificationResponse `json:"skillVerifications,omitempty"`
}

// CostItemResponse строка расчета стоимости
type CostItemResponse struct {
	CostType         string   `json:"costType"`
	Description      string   `json:"description"`
	RuleApplied      *int64   `json:"ruleApplied,omitempty"`
	BaseAmount       float64  `json:"baseAmount"`
	Quantity         float64  `json:"quantity"`
	Rate             *float64 `json:"rate,omitempty"`
	Percentage       *float64 `json:"percentage,omitempty"`
	CalculatedAmount float64  `json:"calculatedAmount"`
	IsRefundable     bool     `json:"isRefundable"`
	IsTaxable        bool     `json:"isTaxable"`
}

// VerificationResponse результат проверки skill gate
type VerificationResponse struct {
	SkillGateID      int64   `json:"skillGateId"`
	GateName         string  `json:"gateName,omitempty"`
	Verified         bool    `json:"verified"`
	Method           string  `json:"method"`
	EnforcementLevel string  `json:"enforcementLevel,omitempty"`
	FailureReason    *string `json:"failureReason,omitempty"`
	Notes            *string `json:"notes,omitempty"`
	VerifiedAt       string  `json:"verifiedAt"`
}

// ReservationListResponse список бронирований
type ReservationListResponse struct {
	Reservations []ReservationResponse `json:"reservations"`
	Total        int                   `json:"total"`
}

// FromDomainReservation конвертирует доменное бронирование в ответ
func FromDomainReservation(r *domain.Reservation) *ReservationResponse {
	return &ReservationResponse{
		ID:                      r.ID,
		EquipmentID:             r.EquipmentID,
		RequesterID:             r.RequesterID,
		RequesterName:           r.RequesterName,
		RequesterMembershipTier: r.RequesterMembershipTier,
		RequestedStart:          r.RequestedStart.Format(time.RFC3339),
		RequestedEnd:            r.RequestedEnd.Format(time.RFC3339),
		DurationHours:           r.DurationHours,
		Status:                  string(r.Status),
		Purpose:                 r.Purpose,
		ProjectID:               r.ProjectID,
		SkillVerified:           r.SkillVerified,
		BaseCost:                r.BaseCost,
		TotalCost:               r.TotalCost,
		EstimatedCost:           r.EstimatedCost,
		DepositAmount:           r.DepositAmount,
		PaymentStatus:           string(r.PaymentStatus),
		SupervisorRequired:      r.SupervisorRequired,
		SupervisorID:            r.SupervisorID,
		IsEmergency:             r.IsEmergency,
		EmergencyJustification:  r.EmergencyJustification,
		IsRecurring:             r.IsRecurring,
		RecurrencePattern:       r.RecurrencePattern,
		RecurrenceSeriesID:      r.RecurrenceSeriesID,
		AdminNotes:              r.AdminNotes,
		UserNotes:               r.UserNotes,
		ApprovedBy:              r.ApprovedBy,
		ApprovedAt:              formatTime(r.ApprovedAt),
		RejectionReason:         r.RejectionReason,
		ActualStart:             formatTime(r.ActualStart),
		ActualEnd:               formatTime(r.ActualEnd),
		CancellationReason:      r.CancellationReason,
		CancelledAt:             formatTime(r.CancelledAt),
		CancelledBy:             r.CancelledBy,
		CreatedAt:               r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:               r.UpdatedAt.Format(time.RFC3339),
	}
}

// FromDomainReservationList конвертирует список бронирований
func FromDomainReservationList(list []*domain.Reservation) *ReservationListResponse {
	result := make([]ReservationResponse, 0, len(list))
	for _, r := range list {
		result = append(result, *FromDomainReservation(r))
	}
	return &ReservationListResponse{
		Reservations: result,
		Total:        len(result),
	}
}

// FromDomainCostItems конвертирует строки расчета стоимости
func FromDomainCostItems(items []*domain.CostBreakdownItem) []CostItemResponse {
	result := make([]CostItemResponse, 0, len(items))
	for _, item := range items {
		result = append(result, CostItemResponse{
			CostType:         string(item.CostType),
			Description:      item.Description,
			RuleApplied:      item.RuleApplied,
			BaseAmount:       item.BaseAmount,
			Quantity:         item.Quantity,
			Rate:             item.Rate,
			Percentage:       item.Percentage,
			CalculatedAmount: item.CalculatedAmount,
			IsRefundable:     item.IsRefundable,
			IsTaxable:        item.IsTaxable,
		})
	}
	return result
}

// FromDomainVerifications конвертирует результаты проверки gates
func FromDomainVerifications(list []*domain.SkillVerification) []VerificationResponse {
	result := make([]VerificationResponse, 0, len(list))
	for _, v := range list {
		result = append(result, VerificationResponse{
			SkillGateID:      v.SkillGateID,
			GateName:         v.GateName,
			Verified:         v.Verified,
			Method:           string(v.Method),
			EnforcementLevel: string(v.EnforcementLevel),
			FailureReason:    v.FailureReason,
			Notes:            v.Notes,
			VerifiedAt:       v.VerifiedAt.Format(time.RFC3339),
		})
	}
	return result
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

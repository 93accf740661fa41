package create_reservation

import (
	"time"

	"github.com/m04kA/makerspace-reservations/internal/domain"
)

// Request модель запроса на создание бронирования
type Request struct {
	UserID      int64       // ID заявителя (из JWT)
	Role        domain.Role // Роль заявителя (из JWT)
	EquipmentID int64
	Start       time.Time
	End         time.Time

	Purpose       *string
	ProjectID     *int64
	UserNotes     *string
	PriorityLevel int

	IsEmergency            bool
	EmergencyJustification *string

	Recurrence *domain.RecurrencePattern // nil для разового бронирования
}

// Settings параметры создания бронирований из конфигурации
type Settings struct {
	AutoApprovalThreshold    float64
	MaxDurationHours         int
	MaxRecurrenceOccurrences int
	Policy                   domain.EmergencyPolicy
}

// Created созданное бронирование вместе с расчетом стоимости и аудитом gates
type Created struct {
	Reservation   *domain.Reservation
	CostBreakdown []*domain.CostBreakdownItem
	Verifications []*domain.SkillVerification
}

// Response модель ответа; для повторяющегося бронирования содержит все вхождения серии
type Response struct {
	Reservations []*Created
}

// Outcome метки исхода для метрик
const (
	OutcomeApproved        = "approved"
	OutcomePending         = "pending"
	OutcomeConflict        = "conflict"
	OutcomeSkillGateDenied = "skill_gate_denied"
	OutcomeRejectedInput   = "invalid"
	OutcomeError           = "error"
)

// occurrence подготовленное вхождение: окно, проверка gates и стоимость
type occurrence struct {
	window    domain.TimeWindow
	results   []domain.GateResult
	decision  domain.GateDecision
	breakdown *domain.CostBreakdown
}

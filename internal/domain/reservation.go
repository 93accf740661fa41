package domain

import "time"

// ReservationStatus represents the status of a reservation
type ReservationStatus string

const (
	StatusPending   ReservationStatus = "pending"
	StatusApproved  ReservationStatus = "approved"
	StatusRejected  ReservationStatus = "rejected"
	StatusActive    ReservationStatus = "active"
	StatusCompleted ReservationStatus = "completed"
	StatusCancelled ReservationStatus = "cancelled"
	StatusNoShow    ReservationStatus = "no_show"
)

// PaymentStatus статус оплаты (сама оплата вне этого сервиса)
type PaymentStatus string

const (
	PaymentUnpaid      PaymentStatus = "unpaid"
	PaymentNotRequired PaymentStatus = "not_required"
)

// PaymentStatusFor начальный статус оплаты: бесплатное бронирование без залога оплаты не требует
func PaymentStatusFor(totalCost, deposit float64) PaymentStatus {
	if totalCost <= 0 && deposit <= 0 {
		return PaymentNotRequired
	}
	return PaymentUnpaid
}

// Reservation бронирование оборудования на интервал [RequestedStart, RequestedEnd)
type Reservation struct {
	ID          int64
	EquipmentID int64

	// Денормализованные данные заявителя
	RequesterID             int64
	RequesterName           string
	RequesterEmail          string
	RequesterMembershipTier string

	RequestedStart time.Time
	RequestedEnd   time.Time
	DurationHours  float64
	Status         ReservationStatus

	Purpose       *string
	ProjectID     *int64
	SkillVerified bool

	BaseCost      float64
	TotalCost     float64
	EstimatedCost float64
	DepositAmount float64
	PaymentStatus PaymentStatus

	SupervisorRequired bool
	SupervisorID       *int64

	IsEmergency            bool
	EmergencyJustification *string

	IsRecurring        bool
	RecurrencePattern  *RecurrencePattern
	RecurrenceSeriesID *string

	PriorityLevel int
	AdminNotes    *string
	UserNotes     *string

	ApprovedBy      *int64
	ApprovedAt      *time.Time
	RejectionReason *string

	ActualStart *time.Time
	ActualEnd   *time.Time

	CancellationReason *string
	CancelledAt        *time.Time
	CancelledBy        *int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Window returns the requested interval
func (r *Reservation) Window() TimeWindow {
	return TimeWindow{Start: r.RequestedStart, End: r.RequestedEnd}
}

// HoldsEquipment returns true if the reservation occupies the equipment (approved or active)
func (r *Reservation) HoldsEquipment() bool {
	return r.Status == StatusApproved || r.Status == StatusActive
}

// IsTerminal returns true if no further transitions are possible
func (r *Reservation) IsTerminal() bool {
	return IsTerminalStatus(r.Status)
}

// IsOwnedBy returns true if userID is the requester
func (r *Reservation) IsOwnedBy(userID int64) bool {
	return r.RequesterID == userID
}

// ReservationFilter фильтр для списка бронирований
type ReservationFilter struct {
	EquipmentID *int64
	RequesterID *int64
	Status      *ReservationStatus
	From        *time.Time // бронирования, заканчивающиеся после From
	To          *time.Time // бронирования, начинающиеся до To
	Limit       uint64
	Offset      uint64
}

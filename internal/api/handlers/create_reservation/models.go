package create_reservation

import (
	"time"

	"github.com/m04kA/makerspace-reservations/internal/domain"
	"github.com/m04kA/makerspace-reservations/internal/service/reservations/models"
	createReservation "github.com/m04kA/makerspace-reservations/internal/usecase/create_reservation"
)

// CreateReservationRequest HTTP request model
type CreateReservationRequest struct {
	EquipmentID            int64             `json:"equipmentId" validate:"required,gt=0"`
	RequestedStart         time.Time         `json:"requestedStart" validate:"required"`
	RequestedEnd           time.Time         `json:"requestedEnd" validate:"required"`
	Purpose                *string           `json:"purpose,omitempty" validate:"omitempty,max=1000"`
	ProjectID              *int64            `json:"projectId,omitempty" validate:"omitempty,gt=0"`
	UserNotes              *string           `json:"userNotes,omitempty" validate:"omitempty,max=1000"`
	PriorityLevel          int               `json:"priorityLevel" validate:"gte=0,lte=10"`
	IsEmergency            bool              `json:"isEmergency"`
	EmergencyJustification *string           `json:"emergencyJustification,omitempty" validate:"omitempty,max=1000"`
	RecurrencePattern      *RecurrenceSchema `json:"recurrencePattern,omitempty"`
}

// RecurrenceSchema правило повторения в запросе
type RecurrenceSchema struct {
	Frequency string     `json:"frequency" validate:"required,oneof=daily weekly"`
	Interval  int        `json:"interval" validate:"gte=0"`
	Count     int        `json:"count,omitempty" validate:"gte=0"`
	Until     *time.Time `json:"until,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateReservationRequest) ToUseCaseRequest(userID int64, role domain.Role) *createReservation.Request {
	req := &createReservation.Request{
		UserID:                 userID,
		Role:                   role,
		EquipmentID:            r.EquipmentID,
		Start:                  r.RequestedStart,
		End:                    r.RequestedEnd,
		Purpose:                r.Purpose,
		ProjectID:              r.ProjectID,
		UserNotes:              r.UserNotes,
		PriorityLevel:          r.PriorityLevel,
		IsEmergency:            r.IsEmergency,
		EmergencyJustification: r.EmergencyJustification,
	}

	if r.RecurrencePattern != nil {
		req.Recurrence = &domain.RecurrencePattern{
			Frequency: domain.RecurrenceFrequency(r.RecurrencePattern.Frequency),
			Interval:  r.RecurrencePattern.Interval,
			Count:     r.RecurrencePattern.Count,
			Until:     r.RecurrencePattern.Until,
		}
	}

	return req
}

// SeriesResponse ответ на создание повторяющегося бронирования
type SeriesResponse struct {
	RecurrenceSeriesID string                       `json:"recurrenceSeriesId"`
	Reservations       []models.ReservationResponse `json:"reservations"`
	Total              int                          `json:"total"`
}

// ConflictDetails детали конфликта в ответе 409
type ConflictDetails struct {
	ReservationID  int64  `json:"reservationId"`
	RequestedStart string `json:"requestedStart"`
	RequestedEnd   string `json:"requestedEnd"`
}

// GatesDetails непройденные gates в ответе 403
type GatesDetails struct {
	Gates []string `json:"gates"`
}

func fromCreated(c *createReservation.Created) models.ReservationResponse {
	resp := models.FromDomainReservation(c.Reservation)
	resp.CostBreakdown = models.FromDomainCostItems(c.CostBreakdown)
	resp.SkillVerifications = models.FromDomainVerifications(c.Verifications)
	return *resp
}

// FromUseCaseResponse одно бронирование отдается объектом, серия списком
func FromUseCaseResponse(resp *createReservation.Response) interface{} {
	if len(resp.Reservations) == 1 && !resp.Reservations[0].Reservation.IsRecurring {
		single := fromCreated(resp.Reservations[0])
		return &single
	}

	series := &SeriesResponse{
		Reservations: make([]models.ReservationResponse, 0, len(resp.Reservations)),
		Total:        len(resp.Reservations),
	}
	for _, c := range resp.Reservations {
		series.Reservations = append(series.Reservations, fromCreated(c))
	}
	if id := resp.Reservations[0].Reservation.RecurrenceSeriesID; id != nil {
		series.RecurrenceSeriesID = *id
	}
	return series
}

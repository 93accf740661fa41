package notifications

import (
	"fmt"
	"time"

	"github.com/m04kA/makerspace-reservations/internal/domain"
)

// EventType тип события жизненного цикла бронирования
type EventType string

const (
	EventCreated   EventType = "reservation_created"
	EventApproved  EventType = "reservation_approved"
	EventRejected  EventType = "reservation_rejected"
	EventActivated EventType = "reservation_activated"
	EventCompleted EventType = "reservation_completed"
	EventCancelled EventType = "reservation_cancelled"
	EventNoShow    EventType = "reservation_no_show"
)

// EventForStatus событие, соответствующее переходу в статус
func EventForStatus(status domain.ReservationStatus) EventType {
	switch status {
	case domain.StatusApproved:
		return EventApproved
	case domain.StatusRejected:
		return EventRejected
	case domain.StatusActive:
		return EventActivated
	case domain.StatusCompleted:
		return EventCompleted
	case domain.StatusCancelled:
		return EventCancelled
	case domain.StatusNoShow:
		return EventNoShow
	default:
		return EventCreated
	}
}

// Message сообщение для отправки заявителю
type Message struct {
	ToEmail string
	ToName  string
	Subject string
	Text    string
}

var subjects = map[EventType]string{
	EventCreated:   "Reservation #%d received",
	EventApproved:  "Reservation #%d approved",
	EventRejected:  "Reservation #%d rejected",
	EventActivated: "Reservation #%d started",
	EventCompleted: "Reservation #%d completed",
	EventCancelled: "Reservation #%d cancelled",
	EventNoShow:    "Reservation #%d marked as no-show",
}

// BuildMessage формирует сообщение о событии
func BuildMessage(res *domain.Reservation, event EventType) (*Message, error) {
	if res.RequesterEmail == "" {
		return nil, fmt.Errorf("%w: reservation id=%d", ErrNoRecipient, res.ID)
	}

	subject, ok := subjects[event]
	if !ok {
		subject = "Reservation #%d updated"
	}

	text := fmt.Sprintf("Equipment #%d, %s - %s. Status: %s. Total cost: %.2f.",
		res.EquipmentID,
		res.RequestedStart.Format(time.RFC3339),
		res.RequestedEnd.Format(time.RFC3339),
		res.Status,
		res.TotalCost,
	)
	if res.Status == domain.StatusRejected && res.RejectionReason != nil {
		text += " Reason: " + *res.RejectionReason
	}
	if res.Status == domain.StatusCancelled && res.CancellationReason != nil {
		text += " Reason: " + *res.CancellationReason
	}

	return &Message{
		ToEmail: res.RequesterEmail,
		ToName:  res.RequesterName,
		Subject: fmt.Sprintf(subject, res.ID),
		Text:    text,
	}, nil
}

package jobs

import (
	"context"
	"time"

	"github.com/m04kA/makerspace-reservations/internal/domain"
	"github.com/m04kA/makerspace-reservations/internal/service/reservations/models"
)

// ReservationLister выборка бронирований по фильтру
type ReservationLister interface {
	List(ctx context.Context, filter domain.ReservationFilter) ([]*domain.Reservation, error)
}

// Canceller отмена бронирования через workflow
type Canceller interface {
	Cancel(ctx context.Context, id int64, actor models.Actor, reason *string) (*models.ReservationResponse, error)
}

type TimeProvider interface {
	Now() time.Time
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

type RealTimeProvider struct{}

func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}

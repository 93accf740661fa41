package reservation_status

import (
	"context"

	"github.com/m04kA/makerspace-reservations/internal/service/reservations/models"
)

type ReservationService interface {
	Activate(ctx context.Context, id int64, actor models.Actor) (*models.ReservationResponse, error)
	Complete(ctx context.Context, id int64, actor models.Actor, notes *string) (*models.ReservationResponse, error)
	MarkNoShow(ctx context.Context, id int64, actor models.Actor, notes *string) (*models.ReservationResponse, error)
	Cancel(ctx context.Context, id int64, actor models.Actor, reason *string) (*models.ReservationResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

package update_reservation

import (
	"context"

	"github.com/m04kA/makerspace-reservations/internal/service/reservations/models"
)

type ReservationService interface {
	Update(ctx context.Context, id int64, actor models.Actor, req *models.UpdateRequest) (*models.ReservationResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

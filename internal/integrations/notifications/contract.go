package notifications

import (
	"context"

	"github.com/m04kA/makerspace-reservations/internal/domain"
)

// ReservationRepository источник данных бронирования для текста уведомления
type ReservationRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Reservation, error)
}

// Sender доставляет готовое сообщение
type Sender interface {
	Send(ctx context.Context, msg *Message) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

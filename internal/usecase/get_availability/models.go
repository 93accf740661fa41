package get_availability

import (
	"time"

	"github.com/m04kA/makerspace-reservations/internal/domain"
)

// Request модель запроса доступности
type Request struct {
	EquipmentID int64
	WindowStart time.Time
	WindowEnd   time.Time
	UserID      *int64      // если задан, слоты размечаются skill gates этого пользователя
	Role        domain.Role // роль пользователя для деградированного профиля
}

// Settings параметры расчета доступности
type Settings struct {
	SlotMinutes         int
	MaxAvailabilityDays int
}

// Response модель ответа
type Response struct {
	EquipmentID    int64
	Slots          []domain.Slot
	FirstAvailable *domain.Slot // первый свободный слот без блокирующих gates
}

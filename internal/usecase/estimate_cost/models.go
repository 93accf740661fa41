package estimate_cost

import (
	"time"

	"github.com/m04kA/makerspace-reservations/internal/domain"
)

// Request модель запроса предварительного расчета стоимости
type Request struct {
	UserID      int64
	Role        domain.Role
	EquipmentID int64
	Start       time.Time
	End         time.Time
	ProjectID   *int64
}

// Response модель ответа
// Ничего не сохраняется, результат совпадает с тем, что получит бронирование на то же окно
type Response struct {
	EquipmentID        int64
	DurationHours      float64
	Breakdown          *domain.CostBreakdown
	SupervisorRequired bool
	WouldAutoApprove   bool
}

package pricing

import "github.com/m04kA/makerspace-reservations/internal/domain"

// Request входные данные для расчета стоимости
type Request struct {
	Equipment *domain.Equipment
	Window    domain.TimeWindow
	Requester *domain.User
	ProjectID *int64

	// SupervisionRequired заявителю нужен супервизор (включает skill_premium)
	SupervisionRequired bool
}

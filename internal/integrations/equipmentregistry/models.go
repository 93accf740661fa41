package equipmentregistry

import "github.com/m04kA/makerspace-reservations/internal/domain"

// Equipment модель оборудования из реестра
type Equipment struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	MakerspaceID    int64   `json:"makerspace_id"`
	HourlyRate      float64 `json:"hourly_rate"`
	DepositRequired float64 `json:"deposit_required"`
	Status          string  `json:"status"`
}

// ToDomain конвертирует ответ реестра в доменную модель
func (e *Equipment) ToDomain() *domain.Equipment {
	return &domain.Equipment{
		ID:              e.ID,
		Name:            e.Name,
		MakerspaceID:    e.MakerspaceID,
		HourlyRate:      e.HourlyRate,
		DepositRequired: e.DepositRequired,
		Status:          domain.EquipmentStatus(e.Status),
	}
}

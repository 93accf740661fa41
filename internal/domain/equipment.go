package domain

import "fmt"

// EquipmentStatus операционный статус оборудования
type EquipmentStatus string

const (
	EquipmentAvailable   EquipmentStatus = "available"
	EquipmentInUse       EquipmentStatus = "in_use"
	EquipmentMaintenance EquipmentStatus = "maintenance"
	EquipmentOffline     EquipmentStatus = "offline"
)

// Equipment оборудование из внешнего реестра
// Движок только читает эти данные
type Equipment struct {
	ID              int64
	Name            string
	MakerspaceID    int64
	HourlyRate      float64
	DepositRequired float64
	Status          EquipmentStatus
}

// IsBookable returns false for equipment that is offline or under maintenance
func (e *Equipment) IsBookable() bool {
	return e.Status != EquipmentOffline && e.Status != EquipmentMaintenance
}

// CheckBookable возвращает ErrEquipmentUnavailable со статусом оборудования
func (e *Equipment) CheckBookable() error {
	if !e.IsBookable() {
		return fmt.Errorf("%w: equipment status is %s", ErrEquipmentUnavailable, e.Status)
	}
	return nil
}

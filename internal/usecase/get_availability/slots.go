package get_availability

import (
	"time"

	"github.com/m04kA/makerspace-reservations/internal/domain"
)

// generateSlots делит окно на слоты фиксированного размера
// Последний слот обрезается по концу окна
func generateSlots(window domain.TimeWindow, size time.Duration) []domain.TimeWindow {
	slots := make([]domain.TimeWindow, 0, int(window.Duration()/size)+1)

	for start := window.Start; start.Before(window.End); start = start.Add(size) {
		end := start.Add(size)
		if end.After(window.End) {
			end = window.End
		}
		slots = append(slots, domain.TimeWindow{Start: start, End: end})
	}

	return slots
}

// classify помечает слоты, пересекающиеся с занимающими бронированиями
// busy должен быть упорядочен по началу, тогда конфликтующим будет самое раннее бронирование
func classify(slots []domain.TimeWindow, busy []*domain.Reservation) []domain.Slot {
	result := make([]domain.Slot, 0, len(slots))

	for _, window := range slots {
		slot := domain.Slot{
			Window:        window,
			Available:     true,
			BlockingGates: []string{},
		}
		for _, res := range busy {
			if res.Window().Overlaps(window) {
				id := res.ID
				slot.Available = false
				slot.ConflictingReservationID = &id
				break
			}
		}
		result = append(result, slot)
	}

	return result
}

// annotate проставляет результат проверки gates во все слоты
func annotate(slots []domain.Slot, decision domain.GateDecision) {
	for i := range slots {
		slots[i].RequiresSkillVerification = decision.Unsatisfied
		slots[i].BlockingGates = append([]string{}, decision.BlockingGates...)
	}
}

// firstAvailable возвращает первый свободный слот без блокирующих gates
func firstAvailable(slots []domain.Slot) *domain.Slot {
	for i := range slots {
		if slots[i].Available && len(slots[i].BlockingGates) == 0 {
			slot := slots[i]
			return &slot
		}
	}
	return nil
}

package create_reservation

import (
	"fmt"
	"time"

	"github.com/m04kA/makerspace-reservations/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request, now time.Time, maxDurationHours int) (domain.TimeWindow, error) {
	if req.UserID <= 0 {
		return domain.TimeWindow{}, fmt.Errorf("%w: userID must be positive", ErrInvalidInput)
	}

	if req.EquipmentID <= 0 {
		return domain.TimeWindow{}, fmt.Errorf("%w: equipmentID must be positive", ErrInvalidInput)
	}

	window, err := domain.NewTimeWindow(req.Start, req.End)
	if err != nil {
		return domain.TimeWindow{}, err
	}

	if window.Hours() > float64(maxDurationHours) {
		return domain.TimeWindow{}, fmt.Errorf("%w: %.2f hours exceeds limit of %d", ErrDurationTooLong, window.Hours(), maxDurationHours)
	}

	if err := window.CheckStart(now); err != nil {
		return domain.TimeWindow{}, err
	}

	if req.IsEmergency && (req.EmergencyJustification == nil || *req.EmergencyJustification == "") {
		return domain.TimeWindow{}, fmt.Errorf("%w: emergency reservation requires justification", ErrInvalidInput)
	}

	if err := validateLength("purpose", req.Purpose, domain.MaxPurposeLength); err != nil {
		return domain.TimeWindow{}, err
	}
	if err := validateLength("userNotes", req.UserNotes, domain.MaxNotesLength); err != nil {
		return domain.TimeWindow{}, err
	}
	if err := validateLength("emergencyJustification", req.EmergencyJustification, domain.MaxJustificationLength); err != nil {
		return domain.TimeWindow{}, err
	}

	return window, nil
}

// expandWindows разворачивает повторение в список окон
func expandWindows(req *Request, first domain.TimeWindow, maxOccurrences int) ([]domain.TimeWindow, error) {
	if req.Recurrence == nil {
		return []domain.TimeWindow{first}, nil
	}

	windows, err := req.Recurrence.Expand(first, maxOccurrences)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecurrence, err)
	}
	return windows, nil
}

func validateLength(field string, value *string, max int) error {
	if value != nil && len([]rune(*value)) > max {
		return fmt.Errorf("%w: %s exceeds %d characters", ErrInvalidInput, field, max)
	}
	return nil
}

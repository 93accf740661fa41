package get_availability

import (
	"time"

	"github.com/m04kA/makerspace-reservations/internal/domain"
	getAvailability "github.com/m04kA/makerspace-reservations/internal/usecase/get_availability"
)

// AvailabilityRequest HTTP request model
// При includeSkillCheck слоты размечаются skill gates вызывающего пользователя
type AvailabilityRequest struct {
	EquipmentID       int64     `json:"equipmentId" validate:"required,gt=0"`
	WindowStart       time.Time `json:"windowStart" validate:"required"`
	WindowEnd         time.Time `json:"windowEnd" validate:"required"`
	IncludeSkillCheck bool      `json:"includeSkillCheck"`
}

func (r *AvailabilityRequest) ToUseCaseRequest(userID int64, role domain.Role) *getAvailability.Request {
	req := &getAvailability.Request{
		EquipmentID: r.EquipmentID,
		WindowStart: r.WindowStart,
		WindowEnd:   r.WindowEnd,
		Role:        role,
	}
	if r.IncludeSkillCheck {
		req.UserID = &userID
	}
	return req
}

// SlotResponse слот в ответе
type SlotResponse struct {
	Start                     string   `json:"start"`
	End                       string   `json:"end"`
	Available                 bool     `json:"available"`
	ConflictingReservationID  *int64   `json:"conflictingReservationId,omitempty"`
	RequiresSkillVerification bool     `json:"requiresSkillVerification"`
	BlockingGates             []string `json:"blockingGates,omitempty"`
}

// AvailabilityResponse HTTP response model
type AvailabilityResponse struct {
	EquipmentID    int64          `json:"equipmentId"`
	Slots          []SlotResponse `json:"slots"`
	FirstAvailable *SlotResponse  `json:"firstAvailable,omitempty"`
}

func FromUseCaseResponse(resp *getAvailability.Response) *AvailabilityResponse {
	out := &AvailabilityResponse{
		EquipmentID: resp.EquipmentID,
		Slots:       make([]SlotResponse, 0, len(resp.Slots)),
	}
	for _, slot := range resp.Slots {
		out.Slots = append(out.Slots, fromSlot(slot))
	}
	if resp.FirstAvailable != nil {
		first := fromSlot(*resp.FirstAvailable)
		out.FirstAvailable = &first
	}
	return out
}

func fromSlot(s domain.Slot) SlotResponse {
	return SlotResponse{
		Start:                     s.Window.Start.Format(time.RFC3339),
		End:                       s.Window.End.Format(time.RFC3339),
		Available:                 s.Available,
		ConflictingReservationID:  s.ConflictingReservationID,
		RequiresSkillVerification: s.RequiresSkillVerification,
		BlockingGates:             s.BlockingGates,
	}
}

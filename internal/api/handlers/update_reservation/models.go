package update_reservation

import (
	"time"

	"github.com/m04kA/makerspace-reservations/internal/service/reservations/models"
)

// UpdateReservationRequest HTTP request model, все поля опциональны
type UpdateReservationRequest struct {
	RequestedStart *time.Time `json:"requestedStart,omitempty"`
	RequestedEnd   *time.Time `json:"requestedEnd,omitempty"`
	Purpose        *string    `json:"purpose,omitempty" validate:"omitempty,max=1000"`
	ProjectID      *int64     `json:"projectId,omitempty" validate:"omitempty,gt=0"`
	UserNotes      *string    `json:"userNotes,omitempty" validate:"omitempty,max=1000"`
}

func (r *UpdateReservationRequest) ToServiceRequest() *models.UpdateRequest {
	return &models.UpdateRequest{
		Start:     r.RequestedStart,
		End:       r.RequestedEnd,
		Purpose:   r.Purpose,
		ProjectID: r.ProjectID,
		UserNotes: r.UserNotes,
	}
}

package approve_reservation

import "github.com/m04kA/makerspace-reservations/internal/service/reservations/models"

const (
	DecisionApprove = "approve"
	DecisionReject  = "reject"
)

// DecisionRequest решение администратора
type DecisionRequest struct {
	Decision        string   `json:"decision" validate:"required,oneof=approve reject"`
	AdminNotes      *string  `json:"adminNotes,omitempty" validate:"omitempty,max=1000"`
	RejectionReason *string  `json:"rejectionReason,omitempty" validate:"omitempty,max=1000"`
	DepositAmount   *float64 `json:"depositAmount,omitempty" validate:"omitempty,gte=0"`
	SupervisorID    *int64   `json:"supervisorId,omitempty" validate:"omitempty,gt=0"`
}

func (r *DecisionRequest) ToApproveRequest() *models.ApproveRequest {
	return &models.ApproveRequest{
		Notes:         r.AdminNotes,
		DepositAmount: r.DepositAmount,
		SupervisorID:  r.SupervisorID,
	}
}

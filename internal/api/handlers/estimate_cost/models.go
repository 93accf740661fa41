package estimate_cost

import (
	"time"

	"github.com/m04kA/makerspace-reservations/internal/domain"
	"github.com/m04kA/makerspace-reservations/internal/service/reservations/models"
	estimateCost "github.com/m04kA/makerspace-reservations/internal/usecase/estimate_cost"
)

// EstimateRequest HTTP request model
type EstimateRequest struct {
	EquipmentID int64     `json:"equipmentId" validate:"required,gt=0"`
	Start       time.Time `json:"requestedStart" validate:"required"`
	End         time.Time `json:"requestedEnd" validate:"required"`
	ProjectID   *int64    `json:"projectId,omitempty" validate:"omitempty,gt=0"`
}

func (r *EstimateRequest) ToUseCaseRequest(userID int64, role domain.Role) *estimateCost.Request {
	return &estimateCost.Request{
		UserID:      userID,
		Role:        role,
		EquipmentID: r.EquipmentID,
		Start:       r.Start,
		End:         r.End,
		ProjectID:   r.ProjectID,
	}
}

// EstimateResponse HTTP response model
type EstimateResponse struct {
	EquipmentID        int64                     `json:"equipmentId"`
	DurationHours      float64                   `json:"durationHours"`
	BaseCost           float64                   `json:"baseCost"`
	TotalCost          float64                   `json:"totalCost"`
	DepositAmount      float64                   `json:"depositAmount"`
	CostBreakdown      []models.CostItemResponse `json:"costBreakdown"`
	SupervisorRequired bool                      `json:"supervisorRequired"`
	WouldAutoApprove   bool                      `json:"wouldAutoApprove"`
}

func FromUseCaseResponse(resp *estimateCost.Response) *EstimateResponse {
	out := &EstimateResponse{
		EquipmentID:        resp.EquipmentID,
		DurationHours:      resp.DurationHours,
		SupervisorRequired: resp.SupervisorRequired,
		WouldAutoApprove:   resp.WouldAutoApprove,
		CostBreakdown:      []models.CostItemResponse{},
	}
	if resp.Breakdown != nil {
		out.BaseCost = resp.Breakdown.BaseCost
		out.TotalCost = resp.Breakdown.TotalCost
		out.DepositAmount = resp.Breakdown.DepositAmount
		out.CostBreakdown = models.FromDomainCostItems(resp.Breakdown.Items)
	}
	return out
}

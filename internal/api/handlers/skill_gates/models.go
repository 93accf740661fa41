package skill_gates

import (
	"time"

	"github.com/m04kA/makerspace-reservations/internal/domain"
)

// SkillGateRequest HTTP request model
type SkillGateRequest struct {
	EquipmentID             int64      `json:"equipmentId" validate:"required,gt=0"`
	Name                    string     `json:"name" validate:"required,max=200"`
	Description             *string    `json:"description,omitempty" validate:"omitempty,max=1000"`
	GateType                string     `json:"gateType" validate:"required,oneof=required_skill certification experience_level training_completed supervisor_required"`
	RequiredSkillID         *int64     `json:"requiredSkillId,omitempty" validate:"omitempty,gt=0"`
	RequiredCertificationID *int64     `json:"requiredCertificationId,omitempty" validate:"omitempty,gt=0"`
	MinimumLevel            string     `json:"minimumLevel,omitempty" validate:"omitempty,oneof=beginner intermediate advanced expert"`
	SupervisorRequired      bool       `json:"supervisorRequired"`
	RequiredSupervisorLevel string     `json:"requiredSupervisorLevel,omitempty" validate:"omitempty,oneof=beginner intermediate advanced expert"`
	SupervisorRoles         []string   `json:"supervisorRoles,omitempty"`
	EnforcementLevel        string     `json:"enforcementLevel" validate:"required,oneof=block warn log_only"`
	OverrideAllowed         bool       `json:"overrideAllowed"`
	EmergencyBypassAllowed  bool       `json:"emergencyBypassAllowed"`
	ActiveFrom              *time.Time `json:"activeFrom,omitempty"`
	ActiveUntil             *time.Time `json:"activeUntil,omitempty"`
	IsActive                *bool      `json:"isActive,omitempty"`
}

func (r *SkillGateRequest) ToDomain() *domain.SkillGate {
	isActive := true
	if r.IsActive != nil {
		isActive = *r.IsActive
	}

	return &domain.SkillGate{
		EquipmentID:             r.EquipmentID,
		Name:                    r.Name,
		Description:             r.Description,
		GateType:                domain.GateType(r.GateType),
		RequiredSkillID:         r.RequiredSkillID,
		RequiredCertificationID: r.RequiredCertificationID,
		MinimumLevel:            domain.SkillLevel(r.MinimumLevel),
		SupervisorRequired:      r.SupervisorRequired,
		RequiredSupervisorLevel: domain.SkillLevel(r.RequiredSupervisorLevel),
		SupervisorRoles:         r.SupervisorRoles,
		EnforcementLevel:        domain.EnforcementLevel(r.EnforcementLevel),
		OverrideAllowed:         r.OverrideAllowed,
		EmergencyBypassAllowed:  r.EmergencyBypassAllowed,
		ActiveFrom:              r.ActiveFrom,
		ActiveUntil:             r.ActiveUntil,
		IsActive:                isActive,
	}
}

// SkillGateResponse HTTP response model
type SkillGateResponse struct {
	ID                      int64    `json:"id"`
	EquipmentID             int64    `json:"equipmentId"`
	Name                    string   `json:"name"`
	Description             *string  `json:"description,omitempty"`
	GateType                string   `json:"gateType"`
	RequiredSkillID         *int64   `json:"requiredSkillId,omitempty"`
	RequiredCertificationID *int64   `json:"requiredCertificationId,omitempty"`
	MinimumLevel            string   `json:"minimumLevel,omitempty"`
	SupervisorRequired      bool     `json:"supervisorRequired"`
	RequiredSupervisorLevel string   `json:"requiredSupervisorLevel,omitempty"`
	SupervisorRoles         []string `json:"supervisorRoles,omitempty"`
	EnforcementLevel        string   `json:"enforcementLevel"`
	OverrideAllowed         bool     `json:"overrideAllowed"`
	EmergencyBypassAllowed  bool     `json:"emergencyBypassAllowed"`
	ActiveFrom              *string  `json:"activeFrom,omitempty"`
	ActiveUntil             *string  `json:"activeUntil,omitempty"`
	IsActive                bool     `json:"isActive"`
	CreatedAt               string   `json:"createdAt"`
}

type SkillGateListResponse struct {
	Gates []SkillGateResponse `json:"gates"`
	Total int                 `json:"total"`
}

// PrerequisiteRequest тело запроса на добавление зависимости навыка
type PrerequisiteRequest struct {
	PrerequisiteSkillID int64 `json:"prerequisiteSkillId" validate:"required,gt=0"`
}

func FromDomain(g *domain.SkillGate) SkillGateResponse {
	return SkillGateResponse{
		ID:                      g.ID,
		EquipmentID:             g.EquipmentID,
		Name:                    g.Name,
		Description:             g.Description,
		GateType:                string(g.GateType),
		RequiredSkillID:         g.RequiredSkillID,
		RequiredCertificationID: g.RequiredCertificationID,
		MinimumLevel:            string(g.MinimumLevel),
		SupervisorRequired:      g.SupervisorRequired,
		RequiredSupervisorLevel: string(g.RequiredSupervisorLevel),
		SupervisorRoles:         g.SupervisorRoles,
		EnforcementLevel:        string(g.EnforcementLevel),
		OverrideAllowed:         g.OverrideAllowed,
		EmergencyBypassAllowed:  g.EmergencyBypassAllowed,
		ActiveFrom:              formatTime(g.ActiveFrom),
		ActiveUntil:             formatTime(g.ActiveUntil),
		IsActive:                g.IsActive,
		CreatedAt:               g.CreatedAt.Format(time.RFC3339),
	}
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

package domain

import (
	"fmt"
	"time"
)

// GateType тип требования для доступа к оборудованию
type GateType string

const (
	GateRequiredSkill      GateType = "required_skill"
	GateCertification      GateType = "certification"
	GateExperienceLevel    GateType = "experience_level"
	GateTrainingCompleted  GateType = "training_completed"
	GateSupervisorRequired GateType = "supervisor_required"
)

// EnforcementLevel строгость gate
type EnforcementLevel string

const (
	EnforcementBlock   EnforcementLevel = "block"
	EnforcementWarn    EnforcementLevel = "warn"
	EnforcementLogOnly EnforcementLevel = "log_only"
)

// SkillLevel уровень владения навыком
type SkillLevel string

const (
	LevelBeginner     SkillLevel = "beginner"
	LevelIntermediate SkillLevel = "intermediate"
	LevelAdvanced     SkillLevel = "advanced"
	LevelExpert       SkillLevel = "expert"
)

var levelRank = map[SkillLevel]int{
	LevelBeginner:     1,
	LevelIntermediate: 2,
	LevelAdvanced:     3,
	LevelExpert:       4,
}

// Rank порядковый номер уровня, 0 для пустого или неизвестного
func (l SkillLevel) Rank() int {
	return levelRank[l]
}

// AtLeast returns true if l >= min. An empty min is always satisfied
func (l SkillLevel) AtLeast(min SkillLevel) bool {
	if min == "" {
		return true
	}
	return l.Rank() >= min.Rank() && l.Rank() > 0
}

// SkillGate требование к пользователю для доступа к оборудованию
type SkillGate struct {
	ID                      int64
	EquipmentID             int64
	Name                    string
	Description             *string
	GateType                GateType
	RequiredSkillID         *int64
	RequiredCertificationID *int64
	MinimumLevel            SkillLevel
	SupervisorRequired      bool
	RequiredSupervisorLevel SkillLevel
	SupervisorRoles         []string
	EnforcementLevel        EnforcementLevel
	OverrideAllowed         bool
	EmergencyBypassAllowed  bool
	ActiveFrom              *time.Time
	ActiveUntil             *time.Time
	IsActive                bool
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

// SkillRef ID навыка/сертификата, который проверяет gate
func (g *SkillGate) SkillRef() *int64 {
	if g.GateType == GateCertification && g.RequiredCertificationID != nil {
		return g.RequiredCertificationID
	}
	return g.RequiredSkillID
}

// MandatesSupervisor returns true if the gate requires a supervisor to be present
func (g *SkillGate) MandatesSupervisor() bool {
	return g.GateType == GateSupervisorRequired || g.SupervisorRequired
}

// IsActiveAt returns true if the gate is enabled and t is inside its active window
func (g *SkillGate) IsActiveAt(t time.Time) bool {
	if !g.IsActive {
		return false
	}
	if g.ActiveFrom != nil && t.Before(*g.ActiveFrom) {
		return false
	}
	if g.ActiveUntil != nil && !t.Before(*g.ActiveUntil) {
		return false
	}
	return true
}

// SupervisorQualifies проверяет, может ли пользователь сам выступать супервизором для gate
func (g *SkillGate) SupervisorQualifies(user *User) bool {
	if user == nil || user.SupervisorLevel.Rank() == 0 {
		return false
	}
	if !user.SupervisorLevel.AtLeast(g.RequiredSupervisorLevel) {
		return false
	}
	if len(g.SupervisorRoles) == 0 {
		return true
	}
	for _, role := range g.SupervisorRoles {
		if Role(role) == user.Role {
			return true
		}
	}
	return false
}

// Validate проверяет настройку gate при создании
func (g *SkillGate) Validate() error {
	switch {
	case g.EquipmentID <= 0:
		return fmt.Errorf("%w: equipment id is required", ErrRuleConfiguration)
	case g.Name == "":
		return fmt.Errorf("%w: gate name is required", ErrRuleConfiguration)
	}

	switch g.EnforcementLevel {
	case EnforcementBlock, EnforcementWarn, EnforcementLogOnly:
	default:
		return fmt.Errorf("%w: unknown enforcement level %q", ErrRuleConfiguration, g.EnforcementLevel)
	}

	if g.MinimumLevel != "" && g.MinimumLevel.Rank() == 0 {
		return fmt.Errorf("%w: unknown minimum level %q", ErrRuleConfiguration, g.MinimumLevel)
	}
	if g.RequiredSupervisorLevel != "" && g.RequiredSupervisorLevel.Rank() == 0 {
		return fmt.Errorf("%w: unknown supervisor level %q", ErrRuleConfiguration, g.RequiredSupervisorLevel)
	}
	if g.ActiveFrom != nil && g.ActiveUntil != nil && !g.ActiveUntil.After(*g.ActiveFrom) {
		return fmt.Errorf("%w: active_until must be after active_from", ErrRuleConfiguration)
	}

	switch g.GateType {
	case GateSupervisorRequired:
		return nil
	case GateCertification:
		if g.RequiredCertificationID == nil && g.RequiredSkillID == nil {
			return fmt.Errorf("%w: certification gate requires a certification id", ErrRuleConfiguration)
		}
	case GateExperienceLevel:
		if g.RequiredSkillID == nil || g.MinimumLevel == "" {
			return fmt.Errorf("%w: experience_level gate requires skill id and minimum level", ErrRuleConfiguration)
		}
	case GateRequiredSkill, GateTrainingCompleted:
		if g.RequiredSkillID == nil {
			return fmt.Errorf("%w: %s gate requires a skill id", ErrRuleConfiguration, g.GateType)
		}
	default:
		return fmt.Errorf("%w: unknown gate type %q", ErrRuleConfiguration, g.GateType)
	}

	return nil
}

// Certification ответ хранилища сертификатов
type Certification struct {
	SkillID   int64
	Valid     bool
	Level     SkillLevel
	ExpiresAt *time.Time
}

// SatisfiesAt сертификат валиден и не истекает до момента at
func (c *Certification) SatisfiesAt(at time.Time) bool {
	if c == nil || !c.Valid {
		return false
	}
	return c.ExpiresAt == nil || !c.ExpiresAt.Before(at)
}

// GateResult результат проверки одного gate для пользователя
type GateResult struct {
	GateID                 int64
	GateName               string
	GateType               GateType
	Passed                 bool
	EnforcementLevel       EnforcementLevel
	RequiresSupervisor     bool
	EmergencyBypassAllowed bool
	Reason                 string
}

// EmergencyPolicy что именно разрешено обходить экстренным бронированиям
type EmergencyPolicy struct {
	AllowConflictBypass  bool
	AllowSkillGateBypass bool
}

// GateDecision агрегированное решение по всем gates
type GateDecision struct {
	Blocked            bool
	BlockingGates      []string
	BypassedGates      []string
	Unsatisfied        bool // есть непройденный block или warn gate
	SupervisorRequired bool
}

// EvaluateGates агрегирует результаты проверки
// Непройденный block gate блокирует, если только бронирование не экстренное,
// gate разрешает emergency bypass и политика разрешает обход gates.
// warn и log_only никогда не блокируют
func EvaluateGates(results []GateResult, emergency bool, policy EmergencyPolicy) GateDecision {
	decision := GateDecision{
		BlockingGates: make([]string, 0),
		BypassedGates: make([]string, 0),
	}

	for _, r := range results {
		if r.RequiresSupervisor {
			decision.SupervisorRequired = true
		}
		if r.Passed {
			continue
		}

		switch r.EnforcementLevel {
		case EnforcementBlock:
			decision.Unsatisfied = true
			if emergency && r.EmergencyBypassAllowed && policy.AllowSkillGateBypass {
				decision.BypassedGates = append(decision.BypassedGates, r.GateName)
			} else {
				decision.BlockingGates = append(decision.BlockingGates, r.GateName)
			}
		case EnforcementWarn:
			decision.Unsatisfied = true
		}
	}

	decision.Blocked = len(decision.BlockingGates) > 0
	return decision
}

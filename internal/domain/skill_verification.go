package domain

import "time"

// VerificationMethod способ проверки gate
type VerificationMethod string

const (
	VerificationAuto     VerificationMethod = "auto"
	VerificationManual   VerificationMethod = "manual"
	VerificationOverride VerificationMethod = "override"
)

// SkillVerification аудит проверки одного gate для бронирования
type SkillVerification struct {
	ID               int64
	ReservationID    int64
	SkillGateID      int64
	GateName         string
	Verified         bool
	Method           VerificationMethod
	VerifierID       *int64
	VerifiedAt       time.Time
	EnforcementLevel EnforcementLevel
	FailureReason    *string
	Notes            *string
	CreatedAt        time.Time
}

// NewSkillVerification строит запись аудита из результата проверки gate
// Обойденный в экстренном режиме gate пишется с методом override
func NewSkillVerification(reservationID int64, result GateResult, bypassed bool, at time.Time) *SkillVerification {
	v := &SkillVerification{
		ReservationID:    reservationID,
		SkillGateID:      result.GateID,
		GateName:         result.GateName,
		Verified:         result.Passed,
		Method:           VerificationAuto,
		VerifiedAt:       at,
		EnforcementLevel: result.EnforcementLevel,
	}

	if !result.Passed && result.Reason != "" {
		reason := result.Reason
		v.FailureReason = &reason
	}
	if bypassed {
		v.Method = VerificationOverride
		notes := "emergency bypass"
		v.Notes = &notes
	}

	return v
}

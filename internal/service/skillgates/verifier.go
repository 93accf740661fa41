package skillgates

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/makerspace-reservations/internal/domain"
)

// Verifier проверяет skill gates оборудования для пользователя
// Только чтение: безопасно вызывается конкурентно
type Verifier struct {
	gateRepo   SkillGateRepository
	prereqRepo PrerequisiteRepository
	certClient CertificationClient
	logger     Logger
}

// NewVerifier создает новый экземпляр верификатора
func NewVerifier(
	gateRepo SkillGateRepository,
	prereqRepo PrerequisiteRepository,
	certClient CertificationClient,
	logger Logger,
) *Verifier {
	return &Verifier{
		gateRepo:   gateRepo,
		prereqRepo: prereqRepo,
		certClient: certClient,
		logger:     logger,
	}
}

// VerifyGates возвращает результат по каждому gate, активному на начало окна
//
// Сертификат закрывает gate, если он valid, не истекает раньше конца бронирования,
// его уровень не ниже MinimumLevel gate и все транзитивные зависимости навыка тоже
// подтверждены. supervisor_required gates всегда проходят, но требуют супервизора,
// если пользователь сам не подходит на эту роль
func (v *Verifier) VerifyGates(ctx context.Context, equipmentID int64, user *domain.User, window domain.TimeWindow) ([]domain.GateResult, error) {
	if user == nil {
		return nil, fmt.Errorf("%w: user is required", ErrInvalidInput)
	}

	gates, err := v.gateRepo.ListByEquipment(ctx, equipmentID, true)
	if err != nil {
		v.logger.Error("VerifyGates: failed to list gates for equipment id=%d: %v", equipmentID, err)
		return nil, fmt.Errorf("%w: VerifyGates - repository error: %v", ErrInternal, err)
	}

	check := &checker{
		verifier: v,
		userID:   user.ID,
		at:       window.End,
		certs:    make(map[int64]*domain.Certification),
	}

	results := make([]domain.GateResult, 0, len(gates))
	for _, gate := range gates {
		if !gate.IsActiveAt(window.Start) {
			continue
		}

		result := domain.GateResult{
			GateID:                 gate.ID,
			GateName:               gate.Name,
			GateType:               gate.GateType,
			EnforcementLevel:       gate.EnforcementLevel,
			EmergencyBypassAllowed: gate.EmergencyBypassAllowed,
			RequiresSupervisor:     gate.MandatesSupervisor() && !gate.SupervisorQualifies(user),
		}

		if gate.GateType == domain.GateSupervisorRequired {
			result.Passed = true
			results = append(results, result)
			continue
		}

		passed, reason, err := check.gate(ctx, gate)
		if err != nil {
			return nil, err
		}
		result.Passed = passed
		result.Reason = reason

		results = append(results, result)
	}

	v.logger.Info("VerifyGates: equipment id=%d, user id=%d, evaluated %d gates", equipmentID, user.ID, len(results))
	return results, nil
}

// checker кэширует сертификаты и граф навыков в рамках одной проверки
type checker struct {
	verifier *Verifier
	userID   int64
	at       time.Time
	certs    map[int64]*domain.Certification
	graph    *domain.SkillGraph
}

// gate проверяет навык gate и все его транзитивные зависимости
func (c *checker) gate(ctx context.Context, gate *domain.SkillGate) (bool, string, error) {
	skillID := gate.SkillRef()
	if skillID == nil {
		return false, "gate has no skill reference", nil
	}

	cert, err := c.certification(ctx, *skillID)
	if err != nil {
		return false, "", err
	}
	if !cert.SatisfiesAt(c.at) {
		return false, fmt.Sprintf("certification for skill %d is missing or expires before the reservation ends", *skillID), nil
	}
	if !cert.Level.AtLeast(gate.MinimumLevel) {
		return false, fmt.Sprintf("level %q is below required %q", cert.Level, gate.MinimumLevel), nil
	}

	graph, err := c.skillGraph(ctx)
	if err != nil {
		return false, "", err
	}
	for _, prereq := range graph.Prerequisites(*skillID) {
		prereqCert, err := c.certification(ctx, prereq)
		if err != nil {
			return false, "", err
		}
		if !prereqCert.SatisfiesAt(c.at) {
			return false, fmt.Sprintf("prerequisite skill %d is not certified", prereq), nil
		}
	}

	return true, "", nil
}

func (c *checker) certification(ctx context.Context, skillID int64) (*domain.Certification, error) {
	if cert, ok := c.certs[skillID]; ok {
		return cert, nil
	}

	cert, err := c.verifier.certClient.VerifyCertification(ctx, c.userID, skillID)
	if err != nil {
		c.verifier.logger.Error("VerifyGates: certification lookup failed for user id=%d, skill id=%d: %v", c.userID, skillID, err)
		return nil, fmt.Errorf("%w: VerifyGates - certification lookup: %v", ErrInternal, err)
	}

	c.certs[skillID] = cert
	return cert, nil
}

func (c *checker) skillGraph(ctx context.Context) (*domain.SkillGraph, error) {
	if c.graph != nil {
		return c.graph, nil
	}

	edges, err := c.verifier.prereqRepo.ListAll(ctx)
	if err != nil {
		c.verifier.logger.Error("VerifyGates: failed to load skill prerequisites: %v", err)
		return nil, fmt.Errorf("%w: VerifyGates - prerequisites: %v", ErrInternal, err)
	}

	c.graph = domain.NewSkillGraph(edges)
	return c.graph, nil
}

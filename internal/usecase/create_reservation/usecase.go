package create_reservation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/makerspace-reservations/internal/domain"
	"github.com/m04kA/makerspace-reservations/internal/integrations/equipmentregistry"
	"github.com/m04kA/makerspace-reservations/internal/integrations/notifications"
	"github.com/m04kA/makerspace-reservations/internal/integrations/userservice"
	"github.com/m04kA/makerspace-reservations/internal/service/pricing"
	"github.com/m04kA/makerspace-reservations/pkg/ptr"
)

// UseCase use case для создания бронирования
type UseCase struct {
	reservationRepo  ReservationRepository
	breakdownRepo    CostBreakdownRepository
	verificationRepo SkillVerificationRepository
	equipmentClient  EquipmentClient
	userClient       UserServiceClient
	conflicts        ConflictDetector
	gates            GateVerifier
	pricing          PricingEngine
	notifier         Notifier
	outcomes         OutcomeRecorder
	txManager        TransactionManager
	settings         Settings
	timeProvider     TimeProvider
	logger           Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	reservationRepo ReservationRepository,
	breakdownRepo CostBreakdownRepository,
	verificationRepo SkillVerificationRepository,
	equipmentClient EquipmentClient,
	userClient UserServiceClient,
	conflicts ConflictDetector,
	gates GateVerifier,
	pricing PricingEngine,
	notifier Notifier,
	outcomes OutcomeRecorder,
	txManager TransactionManager,
	settings Settings,
	logger Logger,
) *UseCase {
	if settings.MaxDurationHours <= 0 {
		settings.MaxDurationHours = domain.DefaultMaxDurationHours
	}
	if settings.MaxRecurrenceOccurrences <= 0 {
		settings.MaxRecurrenceOccurrences = domain.DefaultMaxRecurrenceOccurrences
	}
	return &UseCase{
		reservationRepo:  reservationRepo,
		breakdownRepo:    breakdownRepo,
		verificationRepo: verificationRepo,
		equipmentClient:  equipmentClient,
		userClient:       userClient,
		conflicts:        conflicts,
		gates:            gates,
		pricing:          pricing,
		notifier:         notifier,
		outcomes:         outcomes,
		txManager:        txManager,
		settings:         settings,
		timeProvider:     &RealTimeProvider{},
		logger:           logger,
	}
}

// Execute выполняет use case создания бронирования
// Проверка конфликтов и вставка выполняются в одной сериализуемой транзакции
// под блокировкой строки оборудования. Уведомления отправляются после коммита
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateReservation: user=%d, equipment=%d, window=%s - %s, emergency=%t, recurring=%t",
		req.UserID, req.EquipmentID, req.Start.Format(time.RFC3339), req.End.Format(time.RFC3339),
		req.IsEmergency, req.Recurrence != nil)

	resp, err := uc.execute(ctx, req)
	uc.recordOutcome(resp, err)
	return resp, err
}

func (uc *UseCase) execute(ctx context.Context, req *Request) (*Response, error) {
	now := uc.timeProvider.Now()

	// 1. Валидация входных данных
	first, err := validateRequest(req, now, uc.settings.MaxDurationHours)
	if err != nil {
		uc.logger.Warn("CreateReservation: validation failed: %v", err)
		return nil, err
	}

	windows, err := expandWindows(req, first, uc.settings.MaxRecurrenceOccurrences)
	if err != nil {
		uc.logger.Warn("CreateReservation: recurrence expansion failed: %v", err)
		return nil, err
	}

	// 2. Получаем оборудование
	equipment, err := uc.equipmentClient.GetEquipment(ctx, req.EquipmentID)
	if err != nil {
		if errors.Is(err, equipmentregistry.ErrEquipmentNotFound) {
			uc.logger.Warn("CreateReservation: equipment id=%d not found", req.EquipmentID)
			return nil, ErrEquipmentNotFound
		}
		uc.logger.Error("CreateReservation: failed to get equipment id=%d: %v", req.EquipmentID, err)
		return nil, fmt.Errorf("%w: failed to get equipment: %v", ErrInternal, err)
	}

	if err := equipment.CheckBookable(); err != nil {
		uc.logger.Warn("CreateReservation: equipment id=%d is %s", equipment.ID, equipment.Status)
		return nil, err
	}

	// 3. Получаем профиль заявителя (уровень членства, уровень супервизора)
	user, err := uc.userClient.GetUserWithGracefulDegradation(ctx, req.UserID, req.Role)
	if err != nil {
		if errors.Is(err, userservice.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		if !errors.Is(err, userservice.ErrServiceDegraded) {
			return nil, fmt.Errorf("%w: failed to get user: %v", ErrInternal, err)
		}
		uc.logger.Warn("CreateReservation: continuing with basic profile for user=%d", req.UserID)
	}

	// 4. Skill gates и стоимость для каждого вхождения (только чтение, до транзакции)
	occurrences := make([]*occurrence, 0, len(windows))
	for _, window := range windows {
		occ, err := uc.prepare(ctx, req, equipment, user, window)
		if err != nil {
			return nil, err
		}
		occurrences = append(occurrences, occ)
	}

	var seriesID *string
	if req.Recurrence != nil {
		seriesID = ptr.Ptr(uuid.New().String())
	}

	// 5. Конфликты и сохранение в сериализуемой транзакции
	var created []*Created
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		created = make([]*Created, 0, len(occurrences))

		if err := uc.reservationRepo.LockEquipment(txCtx, equipment.ID); err != nil {
			return fmt.Errorf("%w: failed to lock equipment: %v", ErrInternal, err)
		}

		for _, occ := range occurrences {
			conflict, err := uc.conflicts.CheckAvailability(txCtx, equipment.ID, occ.window, nil)
			if err != nil {
				return fmt.Errorf("%w: failed to check conflicts: %v", ErrInternal, err)
			}
			if conflict != nil {
				if !(req.IsEmergency && uc.settings.Policy.AllowConflictBypass) {
					return conflict
				}
				uc.logger.Warn("CreateReservation: emergency bypasses conflict with reservation id=%d", conflict.ReservationID)
			}

			if occ.decision.Blocked {
				return &domain.SkillGateDeniedError{Gates: occ.decision.BlockingGates}
			}

			c, err := uc.persist(txCtx, req, user, occ, seriesID, now)
			if err != nil {
				return err
			}
			created = append(created, c)
		}

		return nil
	})
	if err != nil {
		uc.logResult(req, err)
		return nil, err
	}

	// 6. Уведомления после коммита, best-effort
	for _, c := range created {
		event := notifications.EventCreated
		if c.Reservation.Status == domain.StatusApproved {
			event = notifications.EventApproved
		}
		uc.notifier.Notify(c.Reservation.ID, event)
	}

	uc.logger.Info("CreateReservation: created %d reservation(s), first id=%d, status=%s, total=%.2f",
		len(created), created[0].Reservation.ID, created[0].Reservation.Status, created[0].Reservation.TotalCost)

	return &Response{Reservations: created}, nil
}

// prepare проверяет gates и считает стоимость для одного окна
func (uc *UseCase) prepare(ctx context.Context, req *Request, equipment *domain.Equipment, user *domain.User, window domain.TimeWindow) (*occurrence, error) {
	results, err := uc.gates.VerifyGates(ctx, equipment.ID, user, window)
	if err != nil {
		uc.logger.Error("CreateReservation: skill gate verification failed: %v", err)
		return nil, fmt.Errorf("%w: failed to verify skill gates: %v", ErrInternal, err)
	}

	decision := domain.EvaluateGates(results, req.IsEmergency, uc.settings.Policy)

	breakdown, err := uc.pricing.Calculate(ctx, &pricing.Request{
		Equipment:           equipment,
		Window:              window,
		Requester:           user,
		ProjectID:           req.ProjectID,
		SupervisionRequired: decision.SupervisorRequired,
	})
	if err != nil {
		uc.logger.Error("CreateReservation: cost calculation failed: %v", err)
		return nil, fmt.Errorf("%w: failed to calculate cost: %v", ErrInternal, err)
	}

	return &occurrence{
		window:    window,
		results:   results,
		decision:  decision,
		breakdown: breakdown,
	}, nil
}

// persist сохраняет бронирование, строки стоимости и аудит gates
func (uc *UseCase) persist(
	ctx context.Context,
	req *Request,
	user *domain.User,
	occ *occurrence,
	seriesID *string,
	now time.Time,
) (*Created, error) {
	res := &domain.Reservation{
		EquipmentID:             req.EquipmentID,
		RequesterID:             req.UserID,
		RequesterName:           user.Name,
		RequesterEmail:          user.Email,
		RequesterMembershipTier: user.MembershipTier,
		RequestedStart:          occ.window.Start,
		RequestedEnd:            occ.window.End,
		DurationHours:           occ.window.Hours(),
		Status:                  domain.StatusPending,
		Purpose:                 req.Purpose,
		ProjectID:               req.ProjectID,
		SkillVerified:           !occ.decision.Unsatisfied,
		BaseCost:                occ.breakdown.BaseCost,
		TotalCost:               occ.breakdown.TotalCost,
		EstimatedCost:           occ.breakdown.TotalCost,
		DepositAmount:           occ.breakdown.DepositAmount,
		PaymentStatus:           domain.PaymentStatusFor(occ.breakdown.TotalCost, occ.breakdown.DepositAmount),
		SupervisorRequired:      occ.decision.SupervisorRequired,
		IsEmergency:             req.IsEmergency,
		EmergencyJustification:  req.EmergencyJustification,
		IsRecurring:             seriesID != nil,
		RecurrencePattern:       req.Recurrence,
		RecurrenceSeriesID:      seriesID,
		PriorityLevel:           req.PriorityLevel,
		UserNotes:               req.UserNotes,
	}

	if uc.autoApprove(req, occ) {
		res.Status = domain.StatusApproved
		res.ApprovedBy = ptr.Ptr(domain.SystemActorID)
		res.ApprovedAt = ptr.Ptr(now)
	}

	saved, err := uc.reservationRepo.Create(ctx, res)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create reservation: %v", ErrInternal, err)
	}

	occ.breakdown.AttachTo(saved.ID)
	if err := uc.breakdownRepo.CreateBatch(ctx, occ.breakdown.Items); err != nil {
		return nil, fmt.Errorf("%w: failed to save cost breakdown: %v", ErrInternal, err)
	}

	bypassed := make(map[string]bool, len(occ.decision.BypassedGates))
	for _, name := range occ.decision.BypassedGates {
		bypassed[name] = true
	}

	verifications := make([]*domain.SkillVerification, 0, len(occ.results))
	for _, result := range occ.results {
		verifications = append(verifications, domain.NewSkillVerification(saved.ID, result, bypassed[result.GateName], now))
	}
	if err := uc.verificationRepo.CreateBatch(ctx, verifications); err != nil {
		return nil, fmt.Errorf("%w: failed to save skill verifications: %v", ErrInternal, err)
	}

	return &Created{
		Reservation:   saved,
		CostBreakdown: occ.breakdown.Items,
		Verifications: verifications,
	}, nil
}

// autoApprove бронирование одобряется системой, если все gates пройдены, супервизор не нужен,
// оно не экстренное и стоимость ниже порога
func (uc *UseCase) autoApprove(req *Request, occ *occurrence) bool {
	return !occ.decision.Blocked &&
		!occ.decision.Unsatisfied &&
		!occ.decision.SupervisorRequired &&
		!req.IsEmergency &&
		occ.breakdown.TotalCost < uc.settings.AutoApprovalThreshold
}

func (uc *UseCase) logResult(req *Request, err error) {
	var (
		conflict *domain.ConflictError
		denied   *domain.SkillGateDeniedError
	)
	switch {
	case errors.As(err, &conflict):
		uc.logger.Warn("CreateReservation: equipment=%d conflicts with reservation id=%d", req.EquipmentID, conflict.ReservationID)
	case errors.As(err, &denied):
		uc.logger.Warn("CreateReservation: user=%d denied by skill gates %v", req.UserID, denied.Gates)
	default:
		uc.logger.Error("CreateReservation: transaction failed for user=%d, equipment=%d: %v", req.UserID, req.EquipmentID, err)
	}
}

func (uc *UseCase) recordOutcome(resp *Response, err error) {
	if uc.outcomes == nil {
		return
	}

	switch {
	case err == nil:
		outcome := OutcomePending
		if resp.Reservations[0].Reservation.Status == domain.StatusApproved {
			outcome = OutcomeApproved
		}
		uc.outcomes.ObserveReservationOutcome(outcome)
	case errors.Is(err, domain.ErrConflict):
		uc.outcomes.ObserveReservationOutcome(OutcomeConflict)
	case errors.Is(err, domain.ErrSkillGateDenied):
		uc.outcomes.ObserveReservationOutcome(OutcomeSkillGateDenied)
	case errors.Is(err, ErrInternal):
		uc.outcomes.ObserveReservationOutcome(OutcomeError)
	default:
		uc.outcomes.ObserveReservationOutcome(OutcomeRejectedInput)
	}
}

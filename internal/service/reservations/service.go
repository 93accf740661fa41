package reservations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/makerspace-reservations/internal/domain"
	reservationRepo "github.com/m04kA/makerspace-reservations/internal/infra/storage/reservation"
	"github.com/m04kA/makerspace-reservations/internal/integrations/equipmentregistry"
	"github.com/m04kA/makerspace-reservations/internal/integrations/notifications"
	"github.com/m04kA/makerspace-reservations/internal/integrations/userservice"
	"github.com/m04kA/makerspace-reservations/internal/service/pricing"
	"github.com/m04kA/makerspace-reservations/internal/service/reservations/models"
)

const (
	defaultListLimit = 100
	maxListLimit     = 500
)

// Settings параметры движка, влияющие на workflow
type Settings struct {
	Policy           domain.EmergencyPolicy
	MaxDurationHours int
}

// Service workflow бронирований: чтение, изменение и переходы статусов
// Все переходы оптимистичные: UPDATE ... WHERE id = ? AND status = ?
type Service struct {
	reservationRepo  ReservationRepository
	breakdownRepo    CostBreakdownRepository
	verificationRepo SkillVerificationRepository
	conflicts        ConflictDetector
	pricing          PricingEngine
	equipmentClient  EquipmentClient
	userClient       UserServiceClient
	gates            GateVerifier
	notifier         Notifier
	txManager        TransactionManager
	settings         Settings
	timeProvider     TimeProvider
	logger           Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	reservationRepo ReservationRepository,
	breakdownRepo CostBreakdownRepository,
	verificationRepo SkillVerificationRepository,
	conflicts ConflictDetector,
	pricing PricingEngine,
	equipmentClient EquipmentClient,
	userClient UserServiceClient,
	gates GateVerifier,
	notifier Notifier,
	txManager TransactionManager,
	settings Settings,
	logger Logger,
) *Service {
	if settings.MaxDurationHours <= 0 {
		settings.MaxDurationHours = domain.DefaultMaxDurationHours
	}
	return &Service{
		reservationRepo:  reservationRepo,
		breakdownRepo:    breakdownRepo,
		verificationRepo: verificationRepo,
		conflicts:        conflicts,
		pricing:          pricing,
		equipmentClient:  equipmentClient,
		userClient:       userClient,
		gates:            gates,
		notifier:         notifier,
		txManager:        txManager,
		settings:         settings,
		timeProvider:     &RealTimeProvider{},
		logger:           logger,
	}
}

// GetByID получает бронирование вместе с расчетом стоимости и результатами проверок gates
// Доступно владельцу и администраторам
func (s *Service) GetByID(ctx context.Context, id int64, actor models.Actor) (*models.ReservationResponse, error) {
	res, err := s.load(ctx, "GetByID", id)
	if err != nil {
		return nil, err
	}

	if !res.IsOwnedBy(actor.UserID) && !actor.IsAdmin() {
		s.logger.Warn("GetByID: access denied for user=%d to reservation id=%d", actor.UserID, id)
		return nil, ErrAccessDenied
	}

	items, err := s.breakdownRepo.ListByReservation(ctx, id)
	if err != nil {
		s.logger.Error("GetByID: failed to load cost breakdown for reservation id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - cost breakdown: %v", ErrInternal, err)
	}

	verifications, err := s.verificationRepo.ListByReservation(ctx, id)
	if err != nil {
		s.logger.Error("GetByID: failed to load skill verifications for reservation id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - skill verifications: %v", ErrInternal, err)
	}

	response := models.FromDomainReservation(res)
	response.CostBreakdown = models.FromDomainCostItems(items)
	response.SkillVerifications = models.FromDomainVerifications(verifications)
	return response, nil
}

// List возвращает бронирования по фильтру
// Обычный пользователь видит только свои бронирования
func (s *Service) List(ctx context.Context, req *models.ListRequest, actor models.Actor) (*models.ReservationListResponse, error) {
	filter := domain.ReservationFilter{
		EquipmentID: req.EquipmentID,
		RequesterID: req.RequesterID,
		From:        req.From,
		To:          req.To,
		Limit:       req.Limit,
		Offset:      req.Offset,
	}

	if req.Status != nil {
		status, err := domain.ParseStatus(*req.Status)
		if err != nil {
			s.logger.Warn("List: invalid status=%s from user=%d", *req.Status, actor.UserID)
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		filter.Status = &status
	}

	if !actor.IsAdmin() {
		filter.RequesterID = &actor.UserID
	}

	switch {
	case filter.Limit == 0:
		filter.Limit = defaultListLimit
	case filter.Limit > maxListLimit:
		filter.Limit = maxListLimit
	}

	list, err := s.reservationRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("List: repository error for user=%d: %v", actor.UserID, err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("List: fetched %d reservations for user=%d", len(list), actor.UserID)
	return models.FromDomainReservationList(list), nil
}

// Approve переводит pending бронирование в approved
// Skill gates и стоимость пересчитываются на момент одобрения. Конфликты перепроверяются
// под блокировкой оборудования в той же транзакции, что и обновление. Экстренный обход
// конфликта здесь не действует: два approved бронирования не пересекаются никогда
func (s *Service) Approve(ctx context.Context, id int64, actor models.Actor, req *models.ApproveRequest) (*models.ReservationResponse, error) {
	s.logger.Info("Approve: reservation id=%d by user=%d", id, actor.UserID)

	if req.DepositAmount != nil && *req.DepositAmount < 0 {
		return nil, fmt.Errorf("%w: deposit amount must not be negative", ErrInvalidInput)
	}

	now := s.timeProvider.Now()

	res, err := s.load(ctx, "Approve", id)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateTransition(res.Status, domain.StatusApproved); err != nil {
		s.logFailure("Approve", id, err)
		return nil, err
	}

	equipment, err := s.equipment(ctx, "Approve", res.EquipmentID)
	if err != nil {
		return nil, err
	}

	check, err := s.assess(ctx, "Approve", res, equipment, res.Window(), actor)
	if err != nil {
		s.logFailure("Approve", id, err)
		return nil, err
	}

	if check.decision.SupervisorRequired && res.SupervisorID == nil && req.SupervisorID == nil {
		s.logFailure("Approve", id, ErrSupervisorRequired)
		return nil, ErrSupervisorRequired
	}

	err = s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// Сначала оборудование, потом строка бронирования: тот же порядок, что при создании и переносе
		if err := s.reservationRepo.LockEquipment(txCtx, res.EquipmentID); err != nil {
			return fmt.Errorf("%w: Approve - lock equipment: %v", ErrInternal, err)
		}

		current, err := s.load(txCtx, "Approve", id)
		if err != nil {
			return err
		}
		if err := domain.ValidateTransition(current.Status, domain.StatusApproved); err != nil {
			return err
		}
		if !current.RequestedStart.Equal(res.RequestedStart) || !current.RequestedEnd.Equal(res.RequestedEnd) {
			return ErrConcurrentUpdate
		}

		conflict, err := s.conflicts.CheckAvailability(txCtx, current.EquipmentID, current.Window(), &current.ID)
		if err != nil {
			return fmt.Errorf("%w: Approve - conflict check: %v", ErrInternal, err)
		}
		if conflict != nil {
			return conflict
		}

		if err := s.apply(txCtx, "Approve", current, check, now); err != nil {
			return err
		}

		change := domain.StatusChange{
			From:          current.Status,
			To:            domain.StatusApproved,
			At:            now,
			ActorID:       actor.UserID,
			ByAdmin:       actor.IsAdmin(),
			Notes:         req.Notes,
			DepositAmount: req.DepositAmount,
			SupervisorID:  req.SupervisorID,
		}
		return s.updateStatus(txCtx, "Approve", id, change)
	})
	if err != nil {
		s.logFailure("Approve", id, err)
		return nil, err
	}

	return s.finish(ctx, "Approve", id, domain.StatusApproved)
}

// Reject переводит pending бронирование в rejected с указанием причины
func (s *Service) Reject(ctx context.Context, id int64, actor models.Actor, reason string, notes *string) (*models.ReservationResponse, error) {
	if reason == "" {
		return nil, fmt.Errorf("%w: rejection reason is required", ErrInvalidInput)
	}

	return s.transition(ctx, "Reject", id, actor, domain.StatusRejected, func(res *domain.Reservation, change *domain.StatusChange) error {
		change.Reason = &reason
		change.Notes = notes
		return nil
	})
}

// Activate фиксирует фактическое начало использования (approved -> active)
func (s *Service) Activate(ctx context.Context, id int64, actor models.Actor) (*models.ReservationResponse, error) {
	return s.transition(ctx, "Activate", id, actor, domain.StatusActive, s.ownerOrAdmin(actor))
}

// Complete фиксирует окончание использования (active -> completed)
func (s *Service) Complete(ctx context.Context, id int64, actor models.Actor, notes *string) (*models.ReservationResponse, error) {
	guard := s.ownerOrAdmin(actor)
	return s.transition(ctx, "Complete", id, actor, domain.StatusCompleted, func(res *domain.Reservation, change *domain.StatusChange) error {
		if err := guard(res, change); err != nil {
			return err
		}
		change.Notes = notes
		return nil
	})
}

// MarkNoShow отмечает, что пользователь не пришел (active -> no_show)
func (s *Service) MarkNoShow(ctx context.Context, id int64, actor models.Actor, notes *string) (*models.ReservationResponse, error) {
	return s.transition(ctx, "MarkNoShow", id, actor, domain.StatusNoShow, func(res *domain.Reservation, change *domain.StatusChange) error {
		change.Notes = notes
		return nil
	})
}

// Cancel отменяет бронирование
// Владелец может отменить бронирование до начала использования, администратор в любом нетерминальном статусе
func (s *Service) Cancel(ctx context.Context, id int64, actor models.Actor, reason *string) (*models.ReservationResponse, error) {
	return s.transition(ctx, "Cancel", id, actor, domain.StatusCancelled, func(res *domain.Reservation, change *domain.StatusChange) error {
		if !actor.IsAdmin() {
			if !res.IsOwnedBy(actor.UserID) {
				return ErrAccessDenied
			}
			if res.Status == domain.StatusActive {
				return fmt.Errorf("%w: owner cannot cancel an active reservation", ErrAccessDenied)
			}
		}
		change.Reason = reason
		return nil
	})
}

// Update изменяет бронирование; окно можно менять только в статусе pending
// Новое окно проходит те же проверки, что и при создании: начало не в прошлом, оборудование
// доступно, skill gates на новое окно. Конфликт проверяется под блокировкой оборудования
// и аудит gates со стоимостью перезаписываются
func (s *Service) Update(ctx context.Context, id int64, actor models.Actor, req *models.UpdateRequest) (*models.ReservationResponse, error) {
	res, err := s.load(ctx, "Update", id)
	if err != nil {
		return nil, err
	}

	if !res.IsOwnedBy(actor.UserID) && !actor.IsAdmin() {
		s.logger.Warn("Update: access denied for user=%d to reservation id=%d", actor.UserID, id)
		return nil, ErrAccessDenied
	}
	if res.IsTerminal() {
		return nil, fmt.Errorf("%w: reservation id=%d is %s", domain.ErrInvalidStateTransition, id, res.Status)
	}

	windowChanged := req.Start != nil || req.End != nil
	if windowChanged && res.Status != domain.StatusPending {
		s.logger.Warn("Update: window change rejected for reservation id=%d in status %s", id, res.Status)
		return nil, ErrWindowLocked
	}

	if req.Purpose != nil {
		res.Purpose = req.Purpose
	}
	if req.ProjectID != nil {
		res.ProjectID = req.ProjectID
	}
	if req.UserNotes != nil {
		res.UserNotes = req.UserNotes
	}
	res.UpdatedAt = s.timeProvider.Now()

	if !windowChanged {
		if err := s.save(ctx, res); err != nil {
			return nil, err
		}
		s.logger.Info("Update: reservation id=%d updated by user=%d", id, actor.UserID)
		return models.FromDomainReservation(res), nil
	}

	start, end := res.RequestedStart, res.RequestedEnd
	if req.Start != nil {
		start = *req.Start
	}
	if req.End != nil {
		end = *req.End
	}
	window, err := domain.NewTimeWindow(start, end)
	if err != nil {
		return nil, err
	}
	if window.Hours() > float64(s.settings.MaxDurationHours) {
		return nil, fmt.Errorf("%w: duration exceeds %d hours", ErrInvalidInput, s.settings.MaxDurationHours)
	}

	if err := window.CheckStart(s.timeProvider.Now()); err != nil {
		s.logFailure("Update", id, err)
		return nil, err
	}

	equipment, err := s.equipment(ctx, "Update", res.EquipmentID)
	if err != nil {
		return nil, err
	}
	if err := equipment.CheckBookable(); err != nil {
		s.logFailure("Update", id, err)
		return nil, err
	}

	check, err := s.assess(ctx, "Update", res, equipment, window, actor)
	if err != nil {
		s.logFailure("Update", id, err)
		return nil, err
	}

	err = s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		if err := s.reservationRepo.LockEquipment(txCtx, res.EquipmentID); err != nil {
			return fmt.Errorf("%w: Update - lock equipment: %v", ErrInternal, err)
		}

		conflict, err := s.conflicts.CheckAvailability(txCtx, res.EquipmentID, window, &res.ID)
		if err != nil {
			return fmt.Errorf("%w: Update - conflict check: %v", ErrInternal, err)
		}
		if conflict != nil {
			// бронирование остается pending, поэтому обход допустим так же, как при создании
			if !(res.IsEmergency && s.settings.Policy.AllowConflictBypass) {
				return conflict
			}
			s.logger.Warn("Update: emergency reservation id=%d bypasses conflict with reservation id=%d", id, conflict.ReservationID)
		}

		return s.apply(txCtx, "Update", res, check, res.UpdatedAt)
	})
	if err != nil {
		s.logFailure("Update", id, err)
		return nil, err
	}

	s.logger.Info("Update: reservation id=%d moved to %s - %s, total=%.2f",
		id, window.Start.Format(time.RFC3339), window.End.Format(time.RFC3339), res.TotalCost)
	return models.FromDomainReservation(res), nil
}

// Вспомогательные методы

// transition выполняет оптимистичный переход статуса
// guard проверяет права и дополняет изменение (причина, заметки)
func (s *Service) transition(
	ctx context.Context,
	op string,
	id int64,
	actor models.Actor,
	to domain.ReservationStatus,
	guard func(res *domain.Reservation, change *domain.StatusChange) error,
) (*models.ReservationResponse, error) {
	s.logger.Info("%s: reservation id=%d by user=%d", op, id, actor.UserID)

	res, err := s.load(ctx, op, id)
	if err != nil {
		return nil, err
	}

	change := domain.StatusChange{
		From:    res.Status,
		To:      to,
		At:      s.timeProvider.Now(),
		ActorID: actor.UserID,
		ByAdmin: actor.IsAdmin(),
	}

	if guard != nil {
		if err := guard(res, &change); err != nil {
			s.logFailure(op, id, err)
			return nil, err
		}
	}

	if err := domain.ValidateTransition(res.Status, to); err != nil {
		s.logFailure(op, id, err)
		return nil, err
	}

	if err := s.updateStatus(ctx, op, id, change); err != nil {
		s.logFailure(op, id, err)
		return nil, err
	}

	return s.finish(ctx, op, id, to)
}

func (s *Service) ownerOrAdmin(actor models.Actor) func(res *domain.Reservation, change *domain.StatusChange) error {
	return func(res *domain.Reservation, _ *domain.StatusChange) error {
		if !res.IsOwnedBy(actor.UserID) && !actor.IsAdmin() {
			return ErrAccessDenied
		}
		return nil
	}
}

// assessment результат повторной проверки окна
type assessment struct {
	window    domain.TimeWindow
	results   []domain.GateResult
	decision  domain.GateDecision
	breakdown *domain.CostBreakdown
}

// assess повторяет проверки создания для окна: skill gates заявителя на это окно и стоимость
// Блокирующий gate возвращает SkillGateDeniedError
func (s *Service) assess(
	ctx context.Context,
	op string,
	res *domain.Reservation,
	equipment *domain.Equipment,
	window domain.TimeWindow,
	actor models.Actor,
) (*assessment, error) {
	// Роль из токена известна только для владельца; при деградации каталога остальным достается member
	role := domain.RoleMember
	if res.IsOwnedBy(actor.UserID) {
		role = actor.Role
	}

	user, err := s.userClient.GetUserWithGracefulDegradation(ctx, res.RequesterID, role)
	if err != nil {
		if errors.Is(err, userservice.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		if !errors.Is(err, userservice.ErrServiceDegraded) {
			return nil, fmt.Errorf("%w: %s - user service: %v", ErrInternal, op, err)
		}
		s.logger.Warn("%s: continuing with basic profile for user=%d", op, res.RequesterID)
	}
	if user.MembershipTier == "" {
		user.MembershipTier = res.RequesterMembershipTier
	}

	results, err := s.gates.VerifyGates(ctx, res.EquipmentID, user, window)
	if err != nil {
		return nil, fmt.Errorf("%w: %s - skill gates: %v", ErrInternal, op, err)
	}

	decision := domain.EvaluateGates(results, res.IsEmergency, s.settings.Policy)
	if decision.Blocked {
		return nil, &domain.SkillGateDeniedError{Gates: decision.BlockingGates}
	}

	breakdown, err := s.pricing.Calculate(ctx, &pricing.Request{
		Equipment:           equipment,
		Window:              window,
		Requester:           user,
		ProjectID:           res.ProjectID,
		SupervisionRequired: decision.SupervisorRequired,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s - pricing: %v", ErrInternal, op, err)
	}

	return &assessment{
		window:    window,
		results:   results,
		decision:  decision,
		breakdown: breakdown,
	}, nil
}

// apply записывает результат проверки: окно, стоимость и флаги gates в строке бронирования,
// строки стоимости и аудит gates заменяются целиком
func (s *Service) apply(ctx context.Context, op string, res *domain.Reservation, a *assessment, now time.Time) error {
	res.RequestedStart = a.window.Start
	res.RequestedEnd = a.window.End
	res.DurationHours = a.window.Hours()
	res.BaseCost = a.breakdown.BaseCost
	res.TotalCost = a.breakdown.TotalCost
	res.EstimatedCost = a.breakdown.TotalCost
	res.DepositAmount = a.breakdown.DepositAmount
	res.PaymentStatus = domain.PaymentStatusFor(a.breakdown.TotalCost, a.breakdown.DepositAmount)
	res.SkillVerified = !a.decision.Unsatisfied
	res.SupervisorRequired = a.decision.SupervisorRequired
	res.UpdatedAt = now

	if err := s.save(ctx, res); err != nil {
		return err
	}

	if err := s.breakdownRepo.DeleteByReservation(ctx, res.ID); err != nil {
		return fmt.Errorf("%w: %s - delete breakdown: %v", ErrInternal, op, err)
	}
	a.breakdown.AttachTo(res.ID)
	if err := s.breakdownRepo.CreateBatch(ctx, a.breakdown.Items); err != nil {
		return fmt.Errorf("%w: %s - save breakdown: %v", ErrInternal, op, err)
	}

	bypassed := make(map[string]bool, len(a.decision.BypassedGates))
	for _, name := range a.decision.BypassedGates {
		bypassed[name] = true
	}
	verifications := make([]*domain.SkillVerification, 0, len(a.results))
	for _, result := range a.results {
		verifications = append(verifications, domain.NewSkillVerification(res.ID, result, bypassed[result.GateName], now))
	}

	if err := s.verificationRepo.DeleteByReservation(ctx, res.ID); err != nil {
		return fmt.Errorf("%w: %s - delete skill verifications: %v", ErrInternal, op, err)
	}
	if err := s.verificationRepo.CreateBatch(ctx, verifications); err != nil {
		return fmt.Errorf("%w: %s - save skill verifications: %v", ErrInternal, op, err)
	}

	return nil
}

func (s *Service) equipment(ctx context.Context, op string, equipmentID int64) (*domain.Equipment, error) {
	equipment, err := s.equipmentClient.GetEquipment(ctx, equipmentID)
	if err != nil {
		if errors.Is(err, equipmentregistry.ErrEquipmentNotFound) {
			s.logger.Warn("%s: equipment id=%d not found", op, equipmentID)
			return nil, ErrEquipmentNotFound
		}
		s.logger.Error("%s: failed to get equipment id=%d: %v", op, equipmentID, err)
		return nil, fmt.Errorf("%w: %s - equipment registry: %v", ErrInternal, op, err)
	}
	return equipment, nil
}

func (s *Service) load(ctx context.Context, op string, id int64) (*domain.Reservation, error) {
	res, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, reservationRepo.ErrReservationNotFound) {
			s.logger.Warn("%s: reservation id=%d not found", op, id)
			return nil, ErrReservationNotFound
		}
		s.logger.Error("%s: repository error for reservation id=%d: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return res, nil
}

func (s *Service) updateStatus(ctx context.Context, op string, id int64, change domain.StatusChange) error {
	if err := s.reservationRepo.UpdateStatus(ctx, id, change); err != nil {
		if errors.Is(err, reservationRepo.ErrStatusChanged) {
			return ErrConcurrentUpdate
		}
		return fmt.Errorf("%w: %s - update status: %v", ErrInternal, op, err)
	}
	return nil
}

func (s *Service) save(ctx context.Context, res *domain.Reservation) error {
	if err := s.reservationRepo.Update(ctx, res); err != nil {
		if errors.Is(err, reservationRepo.ErrStatusChanged) {
			return ErrConcurrentUpdate
		}
		return fmt.Errorf("%w: Update - repository error: %v", ErrInternal, err)
	}
	return nil
}

// finish перечитывает бронирование после коммита и отправляет уведомление
func (s *Service) finish(ctx context.Context, op string, id int64, to domain.ReservationStatus) (*models.ReservationResponse, error) {
	s.notifier.Notify(id, notifications.EventForStatus(to))

	updated, err := s.load(ctx, op, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("%s: reservation id=%d is now %s", op, id, to)
	return models.FromDomainReservation(updated), nil
}

func (s *Service) logFailure(op string, id int64, err error) {
	var (
		conflict *domain.ConflictError
		denied   *domain.SkillGateDeniedError
	)
	switch {
	case errors.Is(err, ErrInternal):
		s.logger.Error("%s: reservation id=%d failed: %v", op, id, err)
	case errors.As(err, &conflict):
		s.logger.Warn("%s: reservation id=%d conflicts with reservation id=%d", op, id, conflict.ReservationID)
	case errors.As(err, &denied):
		s.logger.Warn("%s: reservation id=%d denied by skill gates %v", op, id, denied.Gates)
	default:
		s.logger.Warn("%s: reservation id=%d rejected: %v", op, id, err)
	}
}

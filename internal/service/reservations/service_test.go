package reservations

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/makerspace-reservations/internal/domain"
	reservationRepo "github.com/m04kA/makerspace-reservations/internal/infra/storage/reservation"
	"github.com/m04kA/makerspace-reservations/internal/integrations/notifications"
	"github.com/m04kA/makerspace-reservations/internal/service/pricing"
	"github.com/m04kA/makerspace-reservations/internal/service/reservations/models"
	"github.com/m04kA/makerspace-reservations/pkg/logger"
	"github.com/m04kA/makerspace-reservations/pkg/ptr"
)

type memRepo struct {
	mu      sync.Mutex
	items   map[int64]*domain.Reservation
	stale   bool
	filters []domain.ReservationFilter
	locked  []int64
	calls   []string
	changes []domain.StatusChange
}

func newMemRepo(list ...*domain.Reservation) *memRepo {
	r := &memRepo{items: make(map[int64]*domain.Reservation)}
	for _, res := range list {
		r.items[res.ID] = res
	}
	return r
}

func (r *memRepo) LockEquipment(_ context.Context, equipmentID int64) error {
	r.locked = append(r.locked, equipmentID)
	r.calls = append(r.calls, "lock equipment")
	return nil
}

func (r *memRepo) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ctx.Value(txKey{}) != nil {
		r.calls = append(r.calls, "lock reservation")
	}
	res, ok := r.items[id]
	if !ok {
		return nil, reservationRepo.ErrReservationNotFound
	}
	clone := *res
	return &clone, nil
}

func (r *memRepo) List(_ context.Context, filter domain.ReservationFilter) ([]*domain.Reservation, error) {
	r.filters = append(r.filters, filter)
	return []*domain.Reservation{}, nil
}

func (r *memRepo) UpdateStatus(_ context.Context, id int64, change domain.StatusChange) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, change)
	res := r.items[id]
	if r.stale || res.Status != change.From {
		return reservationRepo.ErrStatusChanged
	}
	res.Status = change.To
	switch change.To {
	case domain.StatusApproved:
		res.ApprovedBy = &change.ActorID
		res.ApprovedAt = &change.At
		if change.SupervisorID != nil {
			res.SupervisorID = change.SupervisorID
		}
	case domain.StatusRejected:
		res.RejectionReason = change.Reason
	case domain.StatusCancelled:
		res.CancellationReason = change.Reason
		res.CancelledBy = &change.ActorID
	}
	return nil
}

func (r *memRepo) Update(_ context.Context, res *domain.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.items[res.ID].Status != res.Status {
		return reservationRepo.ErrStatusChanged
	}
	clone := *res
	r.items[res.ID] = &clone
	return nil
}

type memBreakdownRepo struct {
	items map[int64][]*domain.CostBreakdownItem
}

func (r *memBreakdownRepo) CreateBatch(_ context.Context, items []*domain.CostBreakdownItem) error {
	for _, item := range items {
		r.items[item.ReservationID] = append(r.items[item.ReservationID], item)
	}
	return nil
}

func (r *memBreakdownRepo) ListByReservation(_ context.Context, id int64) ([]*domain.CostBreakdownItem, error) {
	return r.items[id], nil
}

func (r *memBreakdownRepo) DeleteByReservation(_ context.Context, id int64) error {
	delete(r.items, id)
	return nil
}

type memVerificationRepo struct {
	items map[int64][]*domain.SkillVerification
}

func (r *memVerificationRepo) CreateBatch(_ context.Context, verifications []*domain.SkillVerification) error {
	for _, v := range verifications {
		r.items[v.ReservationID] = append(r.items[v.ReservationID], v)
	}
	return nil
}

func (r *memVerificationRepo) ListByReservation(_ context.Context, id int64) ([]*domain.SkillVerification, error) {
	return r.items[id], nil
}

func (r *memVerificationRepo) DeleteByReservation(_ context.Context, id int64) error {
	delete(r.items, id)
	return nil
}

type stubConflicts struct {
	conflict *domain.ConflictError
}

func (s stubConflicts) CheckAvailability(_ context.Context, _ int64, _ domain.TimeWindow, _ *int64) (*domain.ConflictError, error) {
	return s.conflict, nil
}

type stubPricing struct{}

func (stubPricing) Calculate(_ context.Context, req *pricing.Request) (*domain.CostBreakdown, error) {
	amount := domain.RoundMoney(req.Equipment.HourlyRate * req.Window.Hours())
	return &domain.CostBreakdown{
		Items:     []*domain.CostBreakdownItem{{CostType: domain.CostBaseRate, CalculatedAmount: amount}},
		BaseCost:  amount,
		TotalCost: amount,
	}, nil
}

type stubEquipment struct {
	status domain.EquipmentStatus
}

func (s *stubEquipment) GetEquipment(_ context.Context, id int64) (*domain.Equipment, error) {
	return &domain.Equipment{ID: id, HourlyRate: 10, Status: s.status}, nil
}

type stubUsers struct{}

func (stubUsers) GetUserWithGracefulDegradation(_ context.Context, userID int64, role domain.Role) (*domain.User, error) {
	return &domain.User{ID: userID, Role: role, MembershipTier: "gold"}, nil
}

// stubGates отдает результаты проверки в зависимости от окна
type stubGates struct {
	verify func(window domain.TimeWindow) []domain.GateResult
}

func (s *stubGates) VerifyGates(_ context.Context, _ int64, _ *domain.User, window domain.TimeWindow) ([]domain.GateResult, error) {
	if s.verify == nil {
		return []domain.GateResult{}, nil
	}
	return s.verify(window), nil
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

type recordingNotifier struct {
	events []notifications.EventType
}

func (n *recordingNotifier) Notify(_ int64, event notifications.EventType) {
	n.events = append(n.events, event)
}

type txKey struct{}

type inlineTx struct{}

func (inlineTx) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(context.WithValue(ctx, txKey{}, true))
}

var (
	owner = models.Actor{UserID: 42, Role: domain.RoleMember}
	other = models.Actor{UserID: 7, Role: domain.RoleMember}
	admin = models.Actor{UserID: 1, Role: domain.RoleAdmin}
)

func reservation(id int64, status domain.ReservationStatus) *domain.Reservation {
	start := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	return &domain.Reservation{
		ID:             id,
		EquipmentID:    3,
		RequesterID:    owner.UserID,
		RequestedStart: start,
		RequestedEnd:   start.Add(2 * time.Hour),
		DurationHours:  2,
		Status:         status,
	}
}

// blockGate непройденный блокирующий gate
func blockGate(name string, bypassAllowed bool) domain.GateResult {
	return domain.GateResult{
		GateID:                 1,
		GateName:               name,
		GateType:               domain.GateCertification,
		EnforcementLevel:       domain.EnforcementBlock,
		EmergencyBypassAllowed: bypassAllowed,
		Reason:                 "certification expires before the reservation ends",
	}
}

type fixture struct {
	svc           *Service
	repo          *memRepo
	breakdown     *memBreakdownRepo
	verifications *memVerificationRepo
	equipment     *stubEquipment
	gates         *stubGates
	notifier      *recordingNotifier
}

func newFixture(conflict *domain.ConflictError, list ...*domain.Reservation) *fixture {
	return newFixtureWithSettings(Settings{}, conflict, list...)
}

func newFixtureWithSettings(settings Settings, conflict *domain.ConflictError, list ...*domain.Reservation) *fixture {
	f := &fixture{
		repo:          newMemRepo(list...),
		breakdown:     &memBreakdownRepo{items: make(map[int64][]*domain.CostBreakdownItem)},
		verifications: &memVerificationRepo{items: make(map[int64][]*domain.SkillVerification)},
		equipment:     &stubEquipment{status: domain.EquipmentAvailable},
		gates:         &stubGates{},
		notifier:      &recordingNotifier{},
	}
	f.svc = NewService(
		f.repo,
		f.breakdown,
		f.verifications,
		stubConflicts{conflict: conflict},
		stubPricing{},
		f.equipment,
		stubUsers{},
		f.gates,
		f.notifier,
		inlineTx{},
		settings,
		logger.Nop(),
	)
	f.svc.timeProvider = fixedClock{now: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
	return f
}

func TestService_Approve(t *testing.T) {
	f := newFixture(nil, reservation(1, domain.StatusPending))

	resp, err := f.svc.Approve(context.Background(), 1, admin, &models.ApproveRequest{DepositAmount: ptr.Ptr(20.0)})
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusApproved), resp.Status)
	assert.Equal(t, admin.UserID, *resp.ApprovedBy)
	assert.Equal(t, []int64{3}, f.repo.locked)
	assert.Equal(t, []notifications.EventType{notifications.EventApproved}, f.notifier.events)

	_, err = f.svc.Approve(context.Background(), 1, admin, &models.ApproveRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
}

func TestService_ApproveRechecksConflicts(t *testing.T) {
	conflict := &domain.ConflictError{ReservationID: 9}
	f := newFixture(conflict, reservation(1, domain.StatusPending))

	_, err := f.svc.Approve(context.Background(), 1, admin, &models.ApproveRequest{})
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Empty(t, f.notifier.events)

	stored, _ := f.repo.GetByID(context.Background(), 1)
	assert.Equal(t, domain.StatusPending, stored.Status)
}

func TestService_ApproveRequiresSupervisor(t *testing.T) {
	f := newFixture(nil, reservation(1, domain.StatusPending))
	f.gates.verify = func(domain.TimeWindow) []domain.GateResult {
		return []domain.GateResult{{
			GateID:             2,
			GateName:           "laser supervision",
			GateType:           domain.GateSupervisorRequired,
			EnforcementLevel:   domain.EnforcementBlock,
			Passed:             true,
			RequiresSupervisor: true,
		}}
	}

	_, err := f.svc.Approve(context.Background(), 1, admin, &models.ApproveRequest{})
	assert.ErrorIs(t, err, ErrSupervisorRequired)

	resp, err := f.svc.Approve(context.Background(), 1, admin, &models.ApproveRequest{SupervisorID: ptr.Ptr(int64(5))})
	require.NoError(t, err)
	assert.Equal(t, int64(5), *resp.SupervisorID)
	assert.True(t, resp.SupervisorRequired)
}

func TestService_ApproveEmergencyDoesNotBypassConflict(t *testing.T) {
	res := reservation(1, domain.StatusPending)
	res.IsEmergency = true
	conflict := &domain.ConflictError{ReservationID: 9, Window: res.Window()}
	settings := Settings{Policy: domain.EmergencyPolicy{AllowConflictBypass: true, AllowSkillGateBypass: true}}
	f := newFixtureWithSettings(settings, conflict, res, reservation(9, domain.StatusApproved))

	_, err := f.svc.Approve(context.Background(), 1, admin, &models.ApproveRequest{})

	var got *domain.ConflictError
	require.ErrorAs(t, err, &got)
	assert.Equal(t, int64(9), got.ReservationID)

	stored, _ := f.repo.GetByID(context.Background(), 1)
	assert.Equal(t, domain.StatusPending, stored.Status)
	assert.Empty(t, f.notifier.events)
}

func TestService_ApproveLocksEquipmentFirst(t *testing.T) {
	f := newFixture(nil, reservation(1, domain.StatusPending))

	_, err := f.svc.Approve(context.Background(), 1, admin, &models.ApproveRequest{})
	require.NoError(t, err)

	require.NotEmpty(t, f.repo.calls)
	assert.Equal(t, []string{"lock equipment", "lock reservation"}, f.repo.calls[:2])
}

func TestService_ApproveRechecksSkillGates(t *testing.T) {
	f := newFixture(nil, reservation(1, domain.StatusPending))
	f.gates.verify = func(domain.TimeWindow) []domain.GateResult {
		return []domain.GateResult{blockGate("laser certification", false)}
	}

	_, err := f.svc.Approve(context.Background(), 1, admin, &models.ApproveRequest{})

	var denied *domain.SkillGateDeniedError
	require.ErrorAs(t, err, &denied)
	assert.Equal(t, []string{"laser certification"}, denied.Gates)

	stored, _ := f.repo.GetByID(context.Background(), 1)
	assert.Equal(t, domain.StatusPending, stored.Status)
}

func TestService_ApproveRewritesVerifications(t *testing.T) {
	res := reservation(1, domain.StatusPending)
	res.IsEmergency = true
	settings := Settings{Policy: domain.EmergencyPolicy{AllowSkillGateBypass: true}}
	f := newFixtureWithSettings(settings, nil, res)
	f.verifications.items[1] = []*domain.SkillVerification{{ReservationID: 1, SkillGateID: 1, Verified: true}}
	f.gates.verify = func(domain.TimeWindow) []domain.GateResult {
		return []domain.GateResult{blockGate("laser certification", true)}
	}

	resp, err := f.svc.Approve(context.Background(), 1, admin, &models.ApproveRequest{})
	require.NoError(t, err)
	assert.False(t, resp.SkillVerified)

	require.Len(t, f.verifications.items[1], 1)
	assert.False(t, f.verifications.items[1][0].Verified)
	assert.Equal(t, domain.VerificationOverride, f.verifications.items[1][0].Method)
}

func TestService_Reject(t *testing.T) {
	f := newFixture(nil, reservation(1, domain.StatusPending))

	_, err := f.svc.Reject(context.Background(), 1, admin, "", nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	resp, err := f.svc.Reject(context.Background(), 1, admin, "no training", nil)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusRejected), resp.Status)
	assert.Equal(t, "no training", *resp.RejectionReason)
}

func TestService_Cancel(t *testing.T) {
	tests := []struct {
		name    string
		status  domain.ReservationStatus
		actor   models.Actor
		wantErr error
	}{
		{name: "owner cancels pending", status: domain.StatusPending, actor: owner},
		{name: "owner cancels approved", status: domain.StatusApproved, actor: owner},
		{name: "owner cannot cancel active", status: domain.StatusActive, actor: owner, wantErr: ErrAccessDenied},
		{name: "admin cancels active", status: domain.StatusActive, actor: admin},
		{name: "stranger is denied", status: domain.StatusPending, actor: other, wantErr: ErrAccessDenied},
		{name: "terminal status", status: domain.StatusCompleted, actor: admin, wantErr: domain.ErrInvalidStateTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(nil, reservation(1, tt.status))

			resp, err := f.svc.Cancel(context.Background(), 1, tt.actor, ptr.Ptr("plans changed"))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, string(domain.StatusCancelled), resp.Status)
			assert.Equal(t, tt.actor.UserID, *resp.CancelledBy)
		})
	}
}

func TestService_ActivateAndComplete(t *testing.T) {
	f := newFixture(nil, reservation(1, domain.StatusApproved))

	_, err := f.svc.Complete(context.Background(), 1, owner, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	_, err = f.svc.Activate(context.Background(), 1, other)
	assert.ErrorIs(t, err, ErrAccessDenied)

	resp, err := f.svc.Activate(context.Background(), 1, owner)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusActive), resp.Status)

	resp, err = f.svc.Complete(context.Background(), 1, owner, ptr.Ptr("all good"))
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCompleted), resp.Status)

	last := f.repo.changes[len(f.repo.changes)-1]
	assert.Equal(t, "all good", *last.Notes)
	assert.False(t, last.ByAdmin)

	assert.Equal(t, []notifications.EventType{notifications.EventActivated, notifications.EventCompleted}, f.notifier.events)
}

func TestService_ConcurrentTransition(t *testing.T) {
	f := newFixture(nil, reservation(1, domain.StatusApproved))
	f.repo.stale = true

	_, err := f.svc.MarkNoShow(context.Background(), 1, admin, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	f2 := newFixture(nil, reservation(1, domain.StatusActive))
	f2.repo.stale = true
	_, err = f2.svc.MarkNoShow(context.Background(), 1, admin, nil)
	assert.ErrorIs(t, err, ErrConcurrentUpdate)
}

func TestService_GetByID(t *testing.T) {
	f := newFixture(nil, reservation(1, domain.StatusPending))
	f.breakdown.items[1] = []*domain.CostBreakdownItem{{ReservationID: 1, CostType: domain.CostBaseRate, CalculatedAmount: 20}}
	f.verifications.items[1] = []*domain.SkillVerification{{ReservationID: 1, SkillGateID: 1, Verified: true, Method: domain.VerificationAuto}}

	resp, err := f.svc.GetByID(context.Background(), 1, owner)
	require.NoError(t, err)
	assert.Len(t, resp.CostBreakdown, 1)
	assert.Len(t, resp.SkillVerifications, 1)

	_, err = f.svc.GetByID(context.Background(), 1, other)
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = f.svc.GetByID(context.Background(), 1, admin)
	assert.NoError(t, err)

	_, err = f.svc.GetByID(context.Background(), 99, admin)
	assert.ErrorIs(t, err, ErrReservationNotFound)
}

func TestService_ListScopesMembersToOwnReservations(t *testing.T) {
	f := newFixture(nil)

	_, err := f.svc.List(context.Background(), &models.ListRequest{RequesterID: ptr.Ptr(int64(7))}, owner)
	require.NoError(t, err)
	_, err = f.svc.List(context.Background(), &models.ListRequest{RequesterID: ptr.Ptr(int64(7)), Limit: 10000}, admin)
	require.NoError(t, err)

	require.Len(t, f.repo.filters, 2)
	assert.Equal(t, owner.UserID, *f.repo.filters[0].RequesterID)
	assert.Equal(t, uint64(defaultListLimit), f.repo.filters[0].Limit)
	assert.Equal(t, int64(7), *f.repo.filters[1].RequesterID)
	assert.Equal(t, uint64(maxListLimit), f.repo.filters[1].Limit)

	_, err = f.svc.List(context.Background(), &models.ListRequest{Status: ptr.Ptr("unknown")}, owner)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestService_Update(t *testing.T) {
	f := newFixture(nil, reservation(1, domain.StatusPending), reservation(2, domain.StatusApproved))
	newEnd := time.Date(2025, 3, 10, 13, 0, 0, 0, time.UTC)

	resp, err := f.svc.Update(context.Background(), 1, owner, &models.UpdateRequest{End: &newEnd, Purpose: ptr.Ptr("jig")})
	require.NoError(t, err)
	assert.Equal(t, 3.0, resp.DurationHours)
	assert.Equal(t, 30.0, resp.TotalCost)
	assert.Equal(t, "jig", *resp.Purpose)
	assert.Equal(t, string(domain.PaymentUnpaid), resp.PaymentStatus)
	require.Len(t, f.breakdown.items[1], 1)

	_, err = f.svc.Update(context.Background(), 2, owner, &models.UpdateRequest{End: &newEnd})
	assert.ErrorIs(t, err, ErrWindowLocked)

	resp, err = f.svc.Update(context.Background(), 2, admin, &models.UpdateRequest{UserNotes: ptr.Ptr("bring goggles")})
	require.NoError(t, err)
	assert.Equal(t, "bring goggles", *resp.UserNotes)

	_, err = f.svc.Update(context.Background(), 1, other, &models.UpdateRequest{Purpose: ptr.Ptr("x")})
	assert.ErrorIs(t, err, ErrAccessDenied)

	before := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	_, err = f.svc.Update(context.Background(), 1, owner, &models.UpdateRequest{End: &before})
	assert.ErrorIs(t, err, domain.ErrInvalidTimeRange)
}

func TestService_UpdateRejectsPastStart(t *testing.T) {
	f := newFixture(nil, reservation(1, domain.StatusPending))
	start := time.Date(2000, 1, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	_, err := f.svc.Update(context.Background(), 1, owner, &models.UpdateRequest{Start: &start, End: &end})
	assert.ErrorIs(t, err, domain.ErrStartInPast)

	stored, _ := f.repo.GetByID(context.Background(), 1)
	assert.Equal(t, reservation(1, domain.StatusPending).RequestedStart, stored.RequestedStart)
}

func TestService_UpdateRejectsUnbookableEquipment(t *testing.T) {
	for _, status := range []domain.EquipmentStatus{domain.EquipmentMaintenance, domain.EquipmentOffline} {
		t.Run(string(status), func(t *testing.T) {
			f := newFixture(nil, reservation(1, domain.StatusPending))
			f.equipment.status = status
			newEnd := time.Date(2025, 3, 10, 13, 0, 0, 0, time.UTC)

			_, err := f.svc.Update(context.Background(), 1, owner, &models.UpdateRequest{End: &newEnd})
			assert.ErrorIs(t, err, domain.ErrEquipmentUnavailable)
			assert.Empty(t, f.repo.locked)
		})
	}
}

func TestService_UpdateRechecksSkillGatesForNewWindow(t *testing.T) {
	// сертификат действует до 11 марта: старое окно его покрывает, перенесенное нет
	expiry := time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)
	f := newFixture(nil, reservation(1, domain.StatusPending))
	f.gates.verify = func(window domain.TimeWindow) []domain.GateResult {
		result := blockGate("laser certification", false)
		result.Passed = !window.End.After(expiry)
		return []domain.GateResult{result}
	}

	start := time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)
	_, err := f.svc.Update(context.Background(), 1, owner, &models.UpdateRequest{Start: &start, End: &end})

	var denied *domain.SkillGateDeniedError
	require.ErrorAs(t, err, &denied)
	assert.Equal(t, []string{"laser certification"}, denied.Gates)

	stored, _ := f.repo.GetByID(context.Background(), 1)
	assert.True(t, stored.RequestedEnd.Before(expiry))
}

func TestService_UpdateRefreshesGateResults(t *testing.T) {
	res := reservation(1, domain.StatusPending)
	res.SkillVerified = true
	f := newFixture(nil, res)
	f.verifications.items[1] = []*domain.SkillVerification{{ReservationID: 1, SkillGateID: 1, Verified: true}}
	f.gates.verify = func(domain.TimeWindow) []domain.GateResult {
		warn := blockGate("safety briefing", false)
		warn.EnforcementLevel = domain.EnforcementWarn
		return []domain.GateResult{warn, {
			GateID:             2,
			GateName:           "cnc supervision",
			GateType:           domain.GateSupervisorRequired,
			EnforcementLevel:   domain.EnforcementBlock,
			Passed:             true,
			RequiresSupervisor: true,
		}}
	}
	newEnd := time.Date(2025, 3, 10, 13, 0, 0, 0, time.UTC)

	resp, err := f.svc.Update(context.Background(), 1, owner, &models.UpdateRequest{End: &newEnd})
	require.NoError(t, err)
	assert.False(t, resp.SkillVerified)
	assert.True(t, resp.SupervisorRequired)

	require.Len(t, f.verifications.items[1], 2)
	assert.False(t, f.verifications.items[1][0].Verified)
	assert.True(t, f.verifications.items[1][1].Verified)
	assert.Equal(t, []string{"lock equipment"}, f.repo.calls)
}

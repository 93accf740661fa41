package skillgates

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/makerspace-reservations/internal/domain"
	"github.com/m04kA/makerspace-reservations/pkg/logger"
	"github.com/m04kA/makerspace-reservations/pkg/ptr"
)

type fakeGateRepo struct {
	gates   []*domain.SkillGate
	created []*domain.SkillGate
	err     error
}

func (f *fakeGateRepo) Create(_ context.Context, gate *domain.SkillGate) (*domain.SkillGate, error) {
	if f.err != nil {
		return nil, f.err
	}
	gate.ID = int64(len(f.created) + 1)
	f.created = append(f.created, gate)
	return gate, nil
}

func (f *fakeGateRepo) ListByEquipment(_ context.Context, _ int64, _ bool) ([]*domain.SkillGate, error) {
	return f.gates, f.err
}

type fakePrereqRepo struct {
	edges []*domain.SkillPrerequisite
}

func (f *fakePrereqRepo) Create(_ context.Context, p *domain.SkillPrerequisite) error {
	f.edges = append(f.edges, p)
	return nil
}

func (f *fakePrereqRepo) ListAll(_ context.Context) ([]*domain.SkillPrerequisite, error) {
	return f.edges, nil
}

type fakeCertClient struct {
	certs map[int64]*domain.Certification
	err   error
	calls int
}

func (f *fakeCertClient) VerifyCertification(_ context.Context, _ int64, skillID int64) (*domain.Certification, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if cert, ok := f.certs[skillID]; ok {
		return cert, nil
	}
	return &domain.Certification{SkillID: skillID}, nil
}

var testWindow = domain.TimeWindow{
	Start: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
	End:   time.Date(2025, 3, 10, 11, 0, 0, 0, time.UTC),
}

func skillGate(id, skillID int64, level domain.SkillLevel) *domain.SkillGate {
	return &domain.SkillGate{
		ID:               id,
		EquipmentID:      1,
		Name:             "laser-safety",
		GateType:         domain.GateExperienceLevel,
		RequiredSkillID:  ptr.Ptr(skillID),
		MinimumLevel:     level,
		EnforcementLevel: domain.EnforcementBlock,
		IsActive:         true,
	}
}

func TestVerifyGates_Certifications(t *testing.T) {
	expired := testWindow.Start.Add(30 * time.Minute)

	tests := []struct {
		name   string
		cert   *domain.Certification
		passed bool
	}{
		{name: "no certification", passed: false},
		{name: "valid with sufficient level", cert: &domain.Certification{SkillID: 10, Valid: true, Level: domain.LevelAdvanced}, passed: true},
		{name: "level below minimum", cert: &domain.Certification{SkillID: 10, Valid: true, Level: domain.LevelBeginner}, passed: false},
		{name: "expires during reservation", cert: &domain.Certification{SkillID: 10, Valid: true, Level: domain.LevelExpert, ExpiresAt: &expired}, passed: false},
		{name: "revoked", cert: &domain.Certification{SkillID: 10, Valid: false, Level: domain.LevelExpert}, passed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			certs := map[int64]*domain.Certification{}
			if tt.cert != nil {
				certs[10] = tt.cert
			}
			v := NewVerifier(
				&fakeGateRepo{gates: []*domain.SkillGate{skillGate(1, 10, domain.LevelIntermediate)}},
				&fakePrereqRepo{},
				&fakeCertClient{certs: certs},
				logger.Nop(),
			)

			results, err := v.VerifyGates(context.Background(), 1, &domain.User{ID: 42}, testWindow)
			require.NoError(t, err)
			require.Len(t, results, 1)
			assert.Equal(t, tt.passed, results[0].Passed)
			if !tt.passed {
				assert.NotEmpty(t, results[0].Reason)
			}
		})
	}
}

func TestVerifyGates_Prerequisites(t *testing.T) {
	certs := &fakeCertClient{certs: map[int64]*domain.Certification{
		10: {SkillID: 10, Valid: true, Level: domain.LevelExpert},
		20: {SkillID: 20, Valid: true, Level: domain.LevelBeginner},
	}}
	prereqs := &fakePrereqRepo{edges: []*domain.SkillPrerequisite{
		{SkillID: 10, PrerequisiteSkillID: 20},
		{SkillID: 20, PrerequisiteSkillID: 30},
	}}
	v := NewVerifier(&fakeGateRepo{gates: []*domain.SkillGate{skillGate(1, 10, "")}}, prereqs, certs, logger.Nop())

	results, err := v.VerifyGates(context.Background(), 1, &domain.User{ID: 42}, testWindow)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.False(t, results[0].Passed)
	assert.Contains(t, results[0].Reason, "30")

	certs.certs[30] = &domain.Certification{SkillID: 30, Valid: true}
	results, err = v.VerifyGates(context.Background(), 1, &domain.User{ID: 42}, testWindow)
	require.NoError(t, err)
	assert.True(t, results[0].Passed)
}

func TestVerifyGates_Supervisor(t *testing.T) {
	gate := &domain.SkillGate{
		ID:                      2,
		EquipmentID:             1,
		Name:                    "cnc-supervision",
		GateType:                domain.GateSupervisorRequired,
		RequiredSupervisorLevel: domain.LevelIntermediate,
		EnforcementLevel:        domain.EnforcementBlock,
		IsActive:                true,
	}
	v := NewVerifier(&fakeGateRepo{gates: []*domain.SkillGate{gate}}, &fakePrereqRepo{}, &fakeCertClient{}, logger.Nop())

	results, err := v.VerifyGates(context.Background(), 1, &domain.User{ID: 42}, testWindow)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Passed)
	assert.True(t, results[0].RequiresSupervisor)

	results, err = v.VerifyGates(context.Background(), 1, &domain.User{ID: 43, SupervisorLevel: domain.LevelAdvanced}, testWindow)
	require.NoError(t, err)
	assert.False(t, results[0].RequiresSupervisor)
}

func TestVerifyGates_SkipsInactiveGates(t *testing.T) {
	later := skillGate(1, 10, "")
	later.ActiveFrom = ptr.Ptr(testWindow.End)
	disabled := skillGate(2, 10, "")
	disabled.IsActive = false
	certs := &fakeCertClient{}
	v := NewVerifier(&fakeGateRepo{gates: []*domain.SkillGate{later, disabled}}, &fakePrereqRepo{}, certs, logger.Nop())

	results, err := v.VerifyGates(context.Background(), 1, &domain.User{ID: 42}, testWindow)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Zero(t, certs.calls)
}

func TestVerifyGates_CertificationStoreFailure(t *testing.T) {
	v := NewVerifier(
		&fakeGateRepo{gates: []*domain.SkillGate{skillGate(1, 10, "")}},
		&fakePrereqRepo{},
		&fakeCertClient{err: errors.New("timeout")},
		logger.Nop(),
	)

	_, err := v.VerifyGates(context.Background(), 1, &domain.User{ID: 42}, testWindow)
	assert.ErrorIs(t, err, ErrInternal)
}

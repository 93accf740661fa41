package costrule

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/makerspace-reservations/internal/domain"
	"github.com/m04kA/makerspace-reservations/pkg/dbmetrics"
	"github.com/m04kA/makerspace-reservations/pkg/ptr"
)

func newRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewRepository(dbmetrics.Wrap(db, nil, "test")), mock
}

func TestRepository_ListByEquipment(t *testing.T) {
	repo, mock := newRepo(t)
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(selectColumns).
		AddRow(
			int64(2), int64(3), "Gold discount", nil, "membership_discount", int64(50),
			nil, nil, nil, nil, nil,
			nil, []byte(`{"gold":20}`), nil,
			nil, nil,
			"{}", "{}",
			nil, nil,
			true, int64(1), now, now,
		).
		AddRow(
			int64(1), int64(3), "Evening", nil, "time_of_day", int64(10),
			nil, nil, 15.0, nil, 100.0,
			nil, nil, []byte(`{"startHour":18,"endHour":22}`),
			nil, nil,
			"{7,8}", "{}",
			1.5, nil,
			true, int64(1), now, now,
		)

	mock.ExpectQuery(`SELECT .* FROM cost_rules WHERE equipment_id = \$1 AND is_active = \$2 ORDER BY priority DESC, id ASC`).
		WithArgs(int64(3), true).
		WillReturnRows(rows)

	rules, err := repo.ListByEquipment(context.Background(), 3, true)
	require.NoError(t, err)
	require.Len(t, rules, 2)

	assert.Equal(t, domain.RuleMembershipDiscount, rules[0].RuleType)
	assert.Equal(t, map[string]float64{"gold": 20}, rules[0].MembershipDiscounts)
	assert.Empty(t, rules[0].ApplicableUserIDs)

	require.NotNil(t, rules[1].TimeConditions)
	assert.Equal(t, 18, *rules[1].TimeConditions.StartHour)
	assert.Equal(t, []int64{7, 8}, rules[1].ApplicableUserIDs)
	assert.Equal(t, ptr.Ptr(15.0), rules[1].Percentage)
	assert.Equal(t, ptr.Ptr(1.5), rules[1].MinDurationHours)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Create(t *testing.T) {
	repo, mock := newRepo(t)
	now := time.Now()

	mock.ExpectQuery("INSERT INTO cost_rules").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(5), now, now))

	rule, err := repo.Create(context.Background(), &domain.CostRule{
		EquipmentID: 3,
		Name:        "Hourly",
		RuleType:    domain.RuleHourlyRate,
		RatePerHour: ptr.Ptr(12.5),
		IsActive:    true,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(5), rule.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery("FROM cost_rules WHERE id").WillReturnRows(sqlmock.NewRows(selectColumns))

	_, err := repo.GetByID(context.Background(), 1)
	assert.ErrorIs(t, err, ErrCostRuleNotFound)
}

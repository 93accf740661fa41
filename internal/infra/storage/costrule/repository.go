package costrule

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/makerspace-reservations/internal/domain"
	"github.com/m04kA/makerspace-reservations/pkg/dbmetrics"
	"github.com/m04kA/makerspace-reservations/pkg/psqlbuilder"
)

var selectColumns = []string{
	"id",
	"equipment_id",
	"name",
	"description",
	"rule_type",
	"priority",
	"base_amount",
	"rate_per_hour",
	"percentage",
	"minimum_charge",
	"maximum_charge",
	"tier_config",
	"membership_discounts",
	"time_conditions",
	"effective_from",
	"effective_until",
	"applicable_user_ids",
	"applicable_project_ids",
	"min_duration_hours",
	"max_duration_hours",
	"is_active",
	"created_by",
	"created_at",
	"updated_at",
}

// Repository репозиторий правил стоимости
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория правил стоимости
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create сохраняет правило стоимости
func (r *Repository) Create(ctx context.Context, rule *domain.CostRule) (*domain.CostRule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	tiers, err := encodeJSON(rule.TierConfig, len(rule.TierConfig) > 0)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - tier_config: %v", ErrEncode, err)
	}
	discounts, err := encodeJSON(rule.MembershipDiscounts, len(rule.MembershipDiscounts) > 0)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - membership_discounts: %v", ErrEncode, err)
	}
	conditions, err := encodeJSON(rule.TimeConditions, rule.TimeConditions != nil)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - time_conditions: %v", ErrEncode, err)
	}

	query, args, err := psqlbuilder.Insert("cost_rules").
		Columns(
			"equipment_id",
			"name",
			"description",
			"rule_type",
			"priority",
			"base_amount",
			"rate_per_hour",
			"percentage",
			"minimum_charge",
			"maximum_charge",
			"tier_config",
			"membership_discounts",
			"time_conditions",
			"effective_from",
			"effective_until",
			"applicable_user_ids",
			"applicable_project_ids",
			"min_duration_hours",
			"max_duration_hours",
			"is_active",
			"created_by",
		).
		Values(
			rule.EquipmentID,
			rule.Name,
			rule.Description,
			rule.RuleType,
			rule.Priority,
			rule.BaseAmount,
			rule.RatePerHour,
			rule.Percentage,
			rule.MinimumCharge,
			rule.MaximumCharge,
			tiers,
			discounts,
			conditions,
			rule.EffectiveFrom,
			rule.EffectiveUntil,
			pq.Array(nonNilIDs(rule.ApplicableUserIDs)),
			pq.Array(nonNilIDs(rule.ApplicableProjectIDs)),
			rule.MinDurationHours,
			rule.MaxDurationHours,
			rule.IsActive,
			rule.CreatedBy,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&rule.ID, &createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	rule.CreatedAt = createdAt.Time
	rule.UpdatedAt = updatedAt.Time

	return rule, nil
}

// GetByID получает правило по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.CostRule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(selectColumns...).
		From("cost_rules").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	rule, err := scanRule(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrCostRuleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan rule: %v", ErrScanRow, err)
	}

	return rule, nil
}

// ListByEquipment возвращает правила оборудования по убыванию приоритета
// activeOnly отбрасывает выключенные правила; окно действия проверяет вызывающий код
func (r *Repository) ListByEquipment(ctx context.Context, equipmentID int64, activeOnly bool) ([]*domain.CostRule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(selectColumns...).
		From("cost_rules").
		Where(squirrel.Eq{"equipment_id": equipmentID}).
		OrderBy("priority DESC", "id ASC")

	if activeOnly {
		builder = builder.Where(squirrel.Eq{"is_active": true})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByEquipment - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByEquipment - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	rules := make([]*domain.CostRule, 0)
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListByEquipment - scan row: %v", ErrScanRow, err)
		}
		rules = append(rules, rule)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListByEquipment - rows error: %v", ErrScanRow, err)
	}

	return rules, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRule(row rowScanner) (*domain.CostRule, error) {
	var (
		rule                         domain.CostRule
		tiers, discounts, conditions []byte
		createdAt, updatedAt         sql.NullTime
		userIDs, projectIDs          pq.Int64Array
	)

	err := row.Scan(
		&rule.ID,
		&rule.EquipmentID,
		&rule.Name,
		&rule.Description,
		&rule.RuleType,
		&rule.Priority,
		&rule.BaseAmount,
		&rule.RatePerHour,
		&rule.Percentage,
		&rule.MinimumCharge,
		&rule.MaximumCharge,
		&tiers,
		&discounts,
		&conditions,
		&rule.EffectiveFrom,
		&rule.EffectiveUntil,
		&userIDs,
		&projectIDs,
		&rule.MinDurationHours,
		&rule.MaxDurationHours,
		&rule.IsActive,
		&rule.CreatedBy,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(tiers) > 0 {
		if err := json.Unmarshal(tiers, &rule.TierConfig); err != nil {
			return nil, fmt.Errorf("decode tier_config: %w", err)
		}
	}
	if len(discounts) > 0 {
		if err := json.Unmarshal(discounts, &rule.MembershipDiscounts); err != nil {
			return nil, fmt.Errorf("decode membership_discounts: %w", err)
		}
	}
	if len(conditions) > 0 {
		rule.TimeConditions = &domain.TimeConditions{}
		if err := json.Unmarshal(conditions, rule.TimeConditions); err != nil {
			return nil, fmt.Errorf("decode time_conditions: %w", err)
		}
	}

	rule.ApplicableUserIDs = []int64(userIDs)
	rule.ApplicableProjectIDs = []int64(projectIDs)
	rule.CreatedAt = createdAt.Time
	rule.UpdatedAt = updatedAt.Time

	return &rule, nil
}

// encodeJSON сериализует значение в JSONB; при present == false пишет NULL
func encodeJSON(v interface{}, present bool) (interface{}, error) {
	if !present {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func nonNilIDs(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}

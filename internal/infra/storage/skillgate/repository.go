package skillgate

import (
	"context"
	"database/sql"
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
	"gate_type",
	"required_skill_id",
	"required_certification_id",
	"minimum_level",
	"supervisor_required",
	"required_supervisor_level",
	"supervisor_roles",
	"enforcement_level",
	"override_allowed",
	"emergency_bypass_allowed",
	"active_from",
	"active_until",
	"is_active",
	"created_at",
	"updated_at",
}

// Repository репозиторий skill gates
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория skill gates
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create сохраняет gate
func (r *Repository) Create(ctx context.Context, gate *domain.SkillGate) (*domain.SkillGate, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	roles := gate.SupervisorRoles
	if roles == nil {
		roles = []string{}
	}

	query, args, err := psqlbuilder.Insert("skill_gates").
		Columns(
			"equipment_id",
			"name",
			"description",
			"gate_type",
			"required_skill_id",
			"required_certification_id",
			"minimum_level",
			"supervisor_required",
			"required_supervisor_level",
			"supervisor_roles",
			"enforcement_level",
			"override_allowed",
			"emergency_bypass_allowed",
			"active_from",
			"active_until",
			"is_active",
		).
		Values(
			gate.EquipmentID,
			gate.Name,
			gate.Description,
			gate.GateType,
			gate.RequiredSkillID,
			gate.RequiredCertificationID,
			gate.MinimumLevel,
			gate.SupervisorRequired,
			gate.RequiredSupervisorLevel,
			pq.Array(roles),
			gate.EnforcementLevel,
			gate.OverrideAllowed,
			gate.EmergencyBypassAllowed,
			gate.ActiveFrom,
			gate.ActiveUntil,
			gate.IsActive,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&gate.ID, &createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	gate.CreatedAt = createdAt.Time
	gate.UpdatedAt = updatedAt.Time

	return gate, nil
}

// ListByEquipment возвращает gates оборудования
// activeOnly отбрасывает выключенные gates; окно активности проверяет вызывающий код
func (r *Repository) ListByEquipment(ctx context.Context, equipmentID int64, activeOnly bool) ([]*domain.SkillGate, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(selectColumns...).
		From("skill_gates").
		Where(squirrel.Eq{"equipment_id": equipmentID}).
		OrderBy("id ASC")

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

	gates := make([]*domain.SkillGate, 0)
	for rows.Next() {
		var (
			gate                 domain.SkillGate
			roles                pq.StringArray
			createdAt, updatedAt sql.NullTime
		)

		err := rows.Scan(
			&gate.ID,
			&gate.EquipmentID,
			&gate.Name,
			&gate.Description,
			&gate.GateType,
			&gate.RequiredSkillID,
			&gate.RequiredCertificationID,
			&gate.MinimumLevel,
			&gate.SupervisorRequired,
			&gate.RequiredSupervisorLevel,
			&roles,
			&gate.EnforcementLevel,
			&gate.OverrideAllowed,
			&gate.EmergencyBypassAllowed,
			&gate.ActiveFrom,
			&gate.ActiveUntil,
			&gate.IsActive,
			&createdAt,
			&updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: ListByEquipment - scan row: %v", ErrScanRow, err)
		}

		gate.SupervisorRoles = []string(roles)
		gate.CreatedAt = createdAt.Time
		gate.UpdatedAt = updatedAt.Time
		gates = append(gates, &gate)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListByEquipment - rows error: %v", ErrScanRow, err)
	}

	return gates, nil
}

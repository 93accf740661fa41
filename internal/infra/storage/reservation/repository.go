package reservation

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/makerspace-reservations/internal/domain"
	"github.com/m04kA/makerspace-reservations/pkg/dbmetrics"
	"github.com/m04kA/makerspace-reservations/pkg/psqlbuilder"
)

const tableName = "reservations"

var selectColumns = []string{
	"id",
	"equipment_id",
	"requester_id",
	"requester_name",
	"requester_email",
	"requester_membership_tier",
	"requested_start",
	"requested_end",
	"duration_hours",
	"status",
	"purpose",
	"project_id",
	"skill_verified",
	"base_cost",
	"total_cost",
	"estimated_cost",
	"deposit_amount",
	"payment_status",
	"supervisor_required",
	"supervisor_id",
	"is_emergency",
	"emergency_justification",
	"is_recurring",
	"recurrence_pattern",
	"recurrence_series_id",
	"priority_level",
	"admin_notes",
	"user_notes",
	"approved_by",
	"approved_at",
	"rejection_reason",
	"actual_start",
	"actual_end",
	"cancellation_reason",
	"cancelled_at",
	"cancelled_by",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// LockEquipment берет строку-замок оборудования (SELECT ... FOR UPDATE)
// Все создания и одобрения бронирований на одно оборудование сериализуются на этой строке.
// Работает только внутри транзакции
func (r *Repository) LockEquipment(ctx context.Context, equipmentID int64) error {
	tx, ok := dbmetrics.GetTx(ctx)
	if !ok {
		return fmt.Errorf("%w: LockEquipment - equipment id=%d", ErrTransaction, equipmentID)
	}

	query, args, err := psqlbuilder.Insert("equipment_locks").
		Columns("equipment_id").
		Values(equipmentID).
		Suffix("ON CONFLICT (equipment_id) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: LockEquipment - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: LockEquipment - upsert lock row: %v", ErrExecQuery, err)
	}

	query, args, err = psqlbuilder.Select("equipment_id").
		From("equipment_locks").
		Where(squirrel.Eq{"equipment_id": equipmentID}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: LockEquipment - build select query: %v", ErrBuildQuery, err)
	}

	var locked int64
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&locked); err != nil {
		return fmt.Errorf("%w: LockEquipment - lock row: %v", ErrExecQuery, err)
	}

	return nil
}

// Create создает новое бронирование
// Если в контексте передана активная транзакция, использует её
func (r *Repository) Create(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	pattern, err := encodePattern(res.RecurrencePattern)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - recurrence pattern: %v", ErrEncode, err)
	}

	query, args, err := psqlbuilder.Insert(tableName).
		Columns(
			"equipment_id",
			"requester_id",
			"requester_name",
			"requester_email",
			"requester_membership_tier",
			"requested_start",
			"requested_end",
			"duration_hours",
			"status",
			"purpose",
			"project_id",
			"skill_verified",
			"base_cost",
			"total_cost",
			"estimated_cost",
			"deposit_amount",
			"payment_status",
			"supervisor_required",
			"is_emergency",
			"emergency_justification",
			"is_recurring",
			"recurrence_pattern",
			"recurrence_series_id",
			"priority_level",
			"user_notes",
			"approved_by",
			"approved_at",
		).
		Values(
			res.EquipmentID,
			res.RequesterID,
			res.RequesterName,
			res.RequesterEmail,
			res.RequesterMembershipTier,
			res.RequestedStart,
			res.RequestedEnd,
			res.DurationHours,
			res.Status,
			res.Purpose,
			res.ProjectID,
			res.SkillVerified,
			res.BaseCost,
			res.TotalCost,
			res.EstimatedCost,
			res.DepositAmount,
			res.PaymentStatus,
			res.SupervisorRequired,
			res.IsEmergency,
			res.EmergencyJustification,
			res.IsRecurring,
			pattern,
			res.RecurrenceSeriesID,
			res.PriorityLevel,
			res.UserNotes,
			res.ApprovedBy,
			res.ApprovedAt,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&res.ID, &createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	res.CreatedAt = createdAt.Time
	res.UpdatedAt = updatedAt.Time

	return res, nil
}

// GetByID получает бронирование по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(selectColumns...).
		From(tableName).
		Where(squirrel.Eq{"id": id})

	if dbmetrics.IsInTransaction(ctx) {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	res, err := scanReservation(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan reservation: %v", ErrScanRow, err)
	}

	return res, nil
}

// List получает бронирования по фильтру, отсортированные по времени начала
func (r *Repository) List(ctx context.Context, filter domain.ReservationFilter) ([]*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(selectColumns...).
		From(tableName).
		OrderBy("requested_start ASC", "id ASC")

	if filter.EquipmentID != nil {
		builder = builder.Where(squirrel.Eq{"equipment_id": *filter.EquipmentID})
	}
	if filter.RequesterID != nil {
		builder = builder.Where(squirrel.Eq{"requester_id": *filter.RequesterID})
	}
	if filter.Status != nil {
		builder = builder.Where(squirrel.Eq{"status": *filter.Status})
	}
	if filter.From != nil {
		builder = builder.Where(squirrel.Gt{"requested_end": *filter.From})
	}
	if filter.To != nil {
		builder = builder.Where(squirrel.Lt{"requested_start": *filter.To})
	}
	if filter.Limit > 0 {
		builder = builder.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		builder = builder.Offset(filter.Offset)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanReservations(rows)
}

// FindOverlapping возвращает одобренные и активные бронирования оборудования,
// пересекающиеся с window: existing.start < window.end AND existing.end > window.start.
// Касание границей пересечением не считается.
// Внутри транзакции строки блокируются (FOR UPDATE)
func (r *Repository) FindOverlapping(ctx context.Context, equipmentID int64, window domain.TimeWindow, excludeID *int64) ([]*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	statuses := make([]string, len(domain.HoldingStatuses))
	for i, s := range domain.HoldingStatuses {
		statuses[i] = string(s)
	}

	builder := psqlbuilder.Select(selectColumns...).
		From(tableName).
		Where(squirrel.Eq{"equipment_id": equipmentID}).
		Where(squirrel.Eq{"status": statuses}).
		Where(squirrel.Lt{"requested_start": window.End}).
		Where(squirrel.Gt{"requested_end": window.Start}).
		OrderBy("requested_start ASC")

	if excludeID != nil {
		builder = builder.Where(squirrel.NotEq{"id": *excludeID})
	}

	if dbmetrics.IsInTransaction(ctx) {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: FindOverlapping - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: FindOverlapping - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanReservations(rows)
}

// UpdateStatus выполняет оптимистичный переход статуса
// UPDATE ... WHERE id = ? AND status = change.From; если строка не обновлена, возвращает ErrStatusChanged
func (r *Repository) UpdateStatus(ctx context.Context, id int64, change domain.StatusChange) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Update(tableName).
		Set("status", change.To).
		Set("updated_at", change.At).
		Where(squirrel.Eq{"id": id, "status": change.From})

	switch change.To {
	case domain.StatusApproved:
		builder = builder.Set("approved_by", change.ActorID).Set("approved_at", change.At)
		if change.DepositAmount != nil {
			builder = builder.Set("deposit_amount", *change.DepositAmount)
		}
		if change.SupervisorID != nil {
			builder = builder.Set("supervisor_id", *change.SupervisorID)
		}
	case domain.StatusRejected:
		builder = builder.Set("rejection_reason", change.Reason)
	case domain.StatusActive:
		builder = builder.Set("actual_start", change.At)
	case domain.StatusCompleted:
		builder = builder.Set("actual_end", change.At)
	case domain.StatusCancelled:
		builder = builder.
			Set("cancellation_reason", change.Reason).
			Set("cancelled_at", change.At).
			Set("cancelled_by", change.ActorID)
	}

	if change.Notes != nil {
		column := "user_notes"
		if change.ByAdmin {
			column = "admin_notes"
		}
		builder = builder.Set(column, *change.Notes)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrStatusChanged
	}

	return nil
}

// Update сохраняет редактируемые поля бронирования (окно, цель, заметки, стоимость)
// Обновление применяется только если статус не изменился с момента чтения
func (r *Repository) Update(ctx context.Context, res *domain.Reservation) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(tableName).
		Set("requested_start", res.RequestedStart).
		Set("requested_end", res.RequestedEnd).
		Set("duration_hours", res.DurationHours).
		Set("purpose", res.Purpose).
		Set("project_id", res.ProjectID).
		Set("user_notes", res.UserNotes).
		Set("skill_verified", res.SkillVerified).
		Set("supervisor_required", res.SupervisorRequired).
		Set("base_cost", res.BaseCost).
		Set("total_cost", res.TotalCost).
		Set("estimated_cost", res.EstimatedCost).
		Set("deposit_amount", res.DepositAmount).
		Set("payment_status", res.PaymentStatus).
		Set("updated_at", res.UpdatedAt).
		Where(squirrel.Eq{"id": res.ID, "status": res.Status}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Update - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Update - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrStatusChanged
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReservation(row rowScanner) (*domain.Reservation, error) {
	var (
		res                  domain.Reservation
		pattern              []byte
		createdAt, updatedAt sql.NullTime
	)

	err := row.Scan(
		&res.ID,
		&res.EquipmentID,
		&res.RequesterID,
		&res.RequesterName,
		&res.RequesterEmail,
		&res.RequesterMembershipTier,
		&res.RequestedStart,
		&res.RequestedEnd,
		&res.DurationHours,
		&res.Status,
		&res.Purpose,
		&res.ProjectID,
		&res.SkillVerified,
		&res.BaseCost,
		&res.TotalCost,
		&res.EstimatedCost,
		&res.DepositAmount,
		&res.PaymentStatus,
		&res.SupervisorRequired,
		&res.SupervisorID,
		&res.IsEmergency,
		&res.EmergencyJustification,
		&res.IsRecurring,
		&pattern,
		&res.RecurrenceSeriesID,
		&res.PriorityLevel,
		&res.AdminNotes,
		&res.UserNotes,
		&res.ApprovedBy,
		&res.ApprovedAt,
		&res.RejectionReason,
		&res.ActualStart,
		&res.ActualEnd,
		&res.CancellationReason,
		&res.CancelledAt,
		&res.CancelledBy,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(pattern) > 0 {
		var p domain.RecurrencePattern
		if err := json.Unmarshal(pattern, &p); err != nil {
			return nil, fmt.Errorf("decode recurrence pattern: %w", err)
		}
		res.RecurrencePattern = &p
	}

	res.CreatedAt = createdAt.Time
	res.UpdatedAt = updatedAt.Time

	return &res, nil
}

// scanReservations сканирует результаты запроса в слайс бронирований
func scanReservations(rows *sql.Rows) ([]*domain.Reservation, error) {
	reservations := make([]*domain.Reservation, 0)

	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanReservations - scan row: %v", ErrScanRow, err)
		}
		reservations = append(reservations, res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanReservations - rows error: %v", ErrScanRow, err)
	}

	return reservations, nil
}

func encodePattern(p *domain.RecurrencePattern) (interface{}, error) {
	if p == nil {
		return nil, nil
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

package skillverification

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/makerspace-reservations/internal/domain"
	"github.com/m04kA/makerspace-reservations/pkg/dbmetrics"
	"github.com/m04kA/makerspace-reservations/pkg/psqlbuilder"
)

// Repository репозиторий аудита проверок skill gates
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// CreateBatch сохраняет записи аудита по всем проверенным gates
func (r *Repository) CreateBatch(ctx context.Context, verifications []*domain.SkillVerification) error {
	if len(verifications) == 0 {
		return nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Insert("skill_verifications").
		Columns(
			"reservation_id",
			"skill_gate_id",
			"gate_name",
			"verified",
			"method",
			"verifier_id",
			"verified_at",
			"enforcement_level",
			"failure_reason",
			"notes",
		).
		Suffix("RETURNING id, created_at")

	for _, v := range verifications {
		builder = builder.Values(
			v.ReservationID,
			v.SkillGateID,
			v.GateName,
			v.Verified,
			v.Method,
			v.VerifierID,
			v.VerifiedAt,
			v.EnforcementLevel,
			v.FailureReason,
			v.Notes,
		)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: CreateBatch - build insert query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: CreateBatch - execute insert: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	i := 0
	for rows.Next() && i < len(verifications) {
		var createdAt sql.NullTime
		if err := rows.Scan(&verifications[i].ID, &createdAt); err != nil {
			return fmt.Errorf("%w: CreateBatch - scan row: %v", ErrScanRow, err)
		}
		verifications[i].CreatedAt = createdAt.Time
		i++
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: CreateBatch - rows error: %v", ErrScanRow, err)
	}

	return nil
}

// ListByReservation возвращает записи аудита бронирования
func (r *Repository) ListByReservation(ctx context.Context, reservationID int64) ([]*domain.SkillVerification, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"reservation_id",
		"skill_gate_id",
		"gate_name",
		"verified",
		"method",
		"verifier_id",
		"verified_at",
		"enforcement_level",
		"failure_reason",
		"notes",
		"created_at",
	).
		From("skill_verifications").
		Where(squirrel.Eq{"reservation_id": reservationID}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByReservation - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByReservation - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	result := make([]*domain.SkillVerification, 0)
	for rows.Next() {
		var (
			v         domain.SkillVerification
			createdAt sql.NullTime
		)
		err := rows.Scan(
			&v.ID,
			&v.ReservationID,
			&v.SkillGateID,
			&v.GateName,
			&v.Verified,
			&v.Method,
			&v.VerifierID,
			&v.VerifiedAt,
			&v.EnforcementLevel,
			&v.FailureReason,
			&v.Notes,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: ListByReservation - scan row: %v", ErrScanRow, err)
		}
		v.CreatedAt = createdAt.Time
		result = append(result, &v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListByReservation - rows error: %v", ErrScanRow, err)
	}

	return result, nil
}

// DeleteByReservation удаляет записи аудита (перед повторной проверкой при изменении окна)
func (r *Repository) DeleteByReservation(ctx context.Context, reservationID int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("skill_verifications").
		Where(squirrel.Eq{"reservation_id": reservationID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: DeleteByReservation - build delete query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: DeleteByReservation - execute delete: %v", ErrExecQuery, err)
	}

	return nil
}

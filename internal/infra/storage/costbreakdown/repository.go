package costbreakdown

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/makerspace-reservations/internal/domain"
	"github.com/m04kA/makerspace-reservations/pkg/dbmetrics"
	"github.com/m04kA/makerspace-reservations/pkg/psqlbuilder"
)

// Repository репозиторий строк расчета стоимости
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// CreateBatch сохраняет строки одним INSERT и проставляет им ID
// Должен вызываться в той же транзакции, что и создание бронирования
func (r *Repository) CreateBatch(ctx context.Context, items []*domain.CostBreakdownItem) error {
	if len(items) == 0 {
		return nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Insert("cost_breakdown_items").
		Columns(
			"reservation_id",
			"cost_type",
			"description",
			"rule_applied",
			"base_amount",
			"quantity",
			"rate",
			"percentage",
			"calculated_amount",
			"is_refundable",
			"is_taxable",
		).
		Suffix("RETURNING id")

	for _, item := range items {
		builder = builder.Values(
			item.ReservationID,
			item.CostType,
			item.Description,
			item.RuleApplied,
			item.BaseAmount,
			item.Quantity,
			item.Rate,
			item.Percentage,
			item.CalculatedAmount,
			item.IsRefundable,
			item.IsTaxable,
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
	for rows.Next() {
		if i >= len(items) {
			break
		}
		if err := rows.Scan(&items[i].ID); err != nil {
			return fmt.Errorf("%w: CreateBatch - scan id: %v", ErrScanRow, err)
		}
		i++
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: CreateBatch - rows error: %v", ErrScanRow, err)
	}

	return nil
}

// ListByReservation возвращает строки расчета бронирования в порядке создания
func (r *Repository) ListByReservation(ctx context.Context, reservationID int64) ([]*domain.CostBreakdownItem, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"reservation_id",
		"cost_type",
		"description",
		"rule_applied",
		"base_amount",
		"quantity",
		"rate",
		"percentage",
		"calculated_amount",
		"is_refundable",
		"is_taxable",
	).
		From("cost_breakdown_items").
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

	items := make([]*domain.CostBreakdownItem, 0)
	for rows.Next() {
		var item domain.CostBreakdownItem
		err := rows.Scan(
			&item.ID,
			&item.ReservationID,
			&item.CostType,
			&item.Description,
			&item.RuleApplied,
			&item.BaseAmount,
			&item.Quantity,
			&item.Rate,
			&item.Percentage,
			&item.CalculatedAmount,
			&item.IsRefundable,
			&item.IsTaxable,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: ListByReservation - scan row: %v", ErrScanRow, err)
		}
		items = append(items, &item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListByReservation - rows error: %v", ErrScanRow, err)
	}

	return items, nil
}

// DeleteByReservation удаляет строки расчета (используется при пересчете стоимости)
func (r *Repository) DeleteByReservation(ctx context.Context, reservationID int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("cost_breakdown_items").
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

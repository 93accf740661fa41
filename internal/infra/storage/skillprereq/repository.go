package skillprereq

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/m04kA/makerspace-reservations/internal/domain"
	"github.com/m04kA/makerspace-reservations/pkg/dbmetrics"
	"github.com/m04kA/makerspace-reservations/pkg/psqlbuilder"
)

// Repository репозиторий ребер графа зависимостей навыков
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create добавляет ребро; повторное ребро игнорируется
func (r *Repository) Create(ctx context.Context, p *domain.SkillPrerequisite) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("skill_prerequisites").
		Columns("skill_id", "prerequisite_skill_id").
		Values(p.SkillID, p.PrerequisiteSkillID).
		Suffix("ON CONFLICT (skill_id, prerequisite_skill_id) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	return nil
}

// ListAll возвращает все ребра графа
// Внутри транзакции таблица читается с блокировкой, чтобы проверка цикла и вставка были атомарны
func (r *Repository) ListAll(ctx context.Context) ([]*domain.SkillPrerequisite, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select("skill_id", "prerequisite_skill_id", "created_at").
		From("skill_prerequisites").
		OrderBy("skill_id ASC", "prerequisite_skill_id ASC")

	if dbmetrics.IsInTransaction(ctx) {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListAll - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListAll - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	result := make([]*domain.SkillPrerequisite, 0)
	for rows.Next() {
		var (
			p         domain.SkillPrerequisite
			createdAt sql.NullTime
		)
		if err := rows.Scan(&p.SkillID, &p.PrerequisiteSkillID, &createdAt); err != nil {
			return nil, fmt.Errorf("%w: ListAll - scan row: %v", ErrScanRow, err)
		}
		p.CreatedAt = createdAt.Time
		result = append(result, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListAll - rows error: %v", ErrScanRow, err)
	}

	return result, nil
}

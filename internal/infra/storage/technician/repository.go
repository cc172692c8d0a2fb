package technician

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-ShopScheduler/internal/domain"
	"github.com/m04kA/SMC-ShopScheduler/pkg/dbmetrics"
	"github.com/m04kA/SMC-ShopScheduler/pkg/psqlbuilder"
)

// Repository репозиторий техников (только чтение, техники настраиваются мастерской)
type Repository struct {
	db              DBExecutor
	defaultCapacity float64
}

// NewRepository создает репозиторий.
// defaultCapacity используется для техников без настроенного календаря (пн-пт).
func NewRepository(db DBExecutor, defaultCapacity float64) *Repository {
	return &Repository{db: db, defaultCapacity: defaultCapacity}
}

// GetAll получает всех техников, включая неактивных
func (r *Repository) GetAll(ctx context.Context) ([]*domain.Technician, error) {
	return r.query(ctx, nil)
}

// GetByID получает техника по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Technician, error) {
	list, err := r.query(ctx, squirrel.Eq{"id": id})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, ErrTechnicianNotFound
	}
	return list[0], nil
}

func (r *Repository) query(ctx context.Context, where squirrel.Sqlizer) ([]*domain.Technician, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(
		"id",
		"name",
		"categories",
		"capacity_hours",
		"active",
		"created_at",
		"updated_at",
	).
		From("technicians").
		OrderBy("id ASC")
	if where != nil {
		selectBuilder = selectBuilder.Where(where)
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: query - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: query - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	technicians := make([]*domain.Technician, 0)
	for rows.Next() {
		var (
			t                    domain.Technician
			categories           pq.StringArray
			capacity             pq.Float64Array
			createdAt, updatedAt sql.NullTime
		)
		err := rows.Scan(&t.ID, &t.Name, &categories, &capacity, &t.Active, &createdAt, &updatedAt)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTechnicianNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("%w: query - scan technician: %v", ErrScanRow, err)
		}

		t.Categories = []string(categories)
		t.Capacity = weeklyCapacity(capacity, r.defaultCapacity)
		t.CreatedAt = createdAt.Time
		t.UpdatedAt = updatedAt.Time
		technicians = append(technicians, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: query - rows error: %v", ErrScanRow, err)
	}
	return technicians, nil
}

// weeklyCapacity переводит массив часов (воскресенье первым) в календарь техника.
// Пустой или неполный массив заменяется календарём пн-пт по умолчанию.
func weeklyCapacity(hours []float64, defaultCapacity float64) domain.WeeklyCapacity {
	if len(hours) != 7 {
		return domain.WeekdaysCapacity(defaultCapacity)
	}
	var w domain.WeeklyCapacity
	copy(w[:], hours)
	return w
}

package timeoff

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-ShopScheduler/internal/domain"
	"github.com/m04kA/SMC-ShopScheduler/pkg/dbmetrics"
	"github.com/m04kA/SMC-ShopScheduler/pkg/psqlbuilder"
)

// Repository репозиторий отгулов техников
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория отгулов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByRange получает отгулы, пересекающиеся с диапазоном дат
func (r *Repository) GetByRange(ctx context.Context, dateRange domain.DateRange) ([]domain.TimeOffEntry, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := rangeQuery(dateRange).ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByRange - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByRange - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	entries := make([]domain.TimeOffEntry, 0)
	for rows.Next() {
		var (
			e      domain.TimeOffEntry
			hours  sql.NullFloat64
			reason sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.TechnicianID, &e.StartDate, &e.EndDate, &hours, &reason); err != nil {
			return nil, fmt.Errorf("%w: GetByRange - scan entry: %v", ErrScanRow, err)
		}
		if hours.Valid {
			e.Hours = &hours.Float64
		}
		if reason.Valid {
			e.Reason = &reason.String
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetByRange - rows error: %v", ErrScanRow, err)
	}
	return entries, nil
}

// rangeQuery отгул пересекается с диапазоном, если начинается не позже его конца и заканчивается не раньше начала
func rangeQuery(dateRange domain.DateRange) squirrel.SelectBuilder {
	return psqlbuilder.Select("id", "technician_id", "start_date", "end_date", "hours", "reason").
		From("time_off").
		Where(squirrel.LtOrEq{"start_date": domain.DateOnly(dateRange.To)}).
		Where(squirrel.GtOrEq{"end_date": domain.DateOnly(dateRange.From)}).
		OrderBy("technician_id ASC", "start_date ASC")
}

package appointment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-ShopScheduler/internal/domain"
	"github.com/m04kA/SMC-ShopScheduler/pkg/dbmetrics"
	"github.com/m04kA/SMC-ShopScheduler/pkg/psqlbuilder"
)

const (
	tableAppointments = "appointments"
	tableServiceLines = "service_lines"
)

var appointmentColumns = []string{
	"id",
	"customer_ref",
	"vehicle_ref",
	"technician_id",
	"scheduled_date",
	"estimated_hours",
	"status",
	"hold_reason",
	"parent_id",
	"priority",
	"notes",
	"created_at",
	"updated_at",
}

// Repository репозиторий записей доски и их строк работ
type Repository struct {
	db        DBExecutor
	txManager TransactionManager
}

// NewRepository создает новый экземпляр репозитория записей
func NewRepository(db DBExecutor, txManager TransactionManager) *Repository {
	return &Repository{db: db, txManager: txManager}
}

// Create создает запись вместе со строками работ в одной транзакции
func (r *Repository) Create(ctx context.Context, a *domain.Appointment) (*domain.Appointment, error) {
	var created *domain.Appointment

	err := r.txManager.Do(ctx, func(ctx context.Context) error {
		executor := dbmetrics.GetExecutor(ctx, r.db)
		techID, date := placementColumns(a.Placement)

		query, args, err := psqlbuilder.Insert(tableAppointments).
			Columns(
				"customer_ref",
				"vehicle_ref",
				"technician_id",
				"scheduled_date",
				"estimated_hours",
				"status",
				"hold_reason",
				"parent_id",
				"priority",
				"notes",
			).
			Values(
				a.CustomerRef,
				a.VehicleRef,
				techID,
				date,
				a.EstimatedHours,
				a.Status,
				a.HoldReason,
				a.ParentID,
				a.Priority,
				a.Notes,
			).
			Suffix("RETURNING id").
			ToSql()
		if err != nil {
			return fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
		}

		var id int64
		if err := executor.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
			return fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
		}

		if err := r.insertLines(ctx, executor, id, a.Lines, nil); err != nil {
			return err
		}

		created, err = r.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// GetByID получает запись по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	list, err := r.GetByFilter(ctx, domain.AppointmentFilter{IncludeUnplaced: true}, id)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, ErrAppointmentNotFound
	}
	return list[0], nil
}

// GetByFilter получает записи доски с фильтрацией
//
// Примеры использования:
//
// 1. Доска за неделю вместе с отложенными:
//    filter := domain.AppointmentFilter{Range: &week, IncludeUnplaced: true}
//
// 2. Загрузка техника на день (для проверки ёмкости):
//    filter := domain.AppointmentFilter{Range: &day, TechnicianIDs: []int64{techID}}
//
// 3. Дочерние записи родителя:
//    filter := domain.AppointmentFilter{ParentID: &parentID}
func (r *Repository) GetByFilter(ctx context.Context, filter domain.AppointmentFilter, ids ...int64) ([]*domain.Appointment, error) {
	query, args, err := filterQuery(filter, ids).ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByFilter - build select query: %v", ErrBuildQuery, err)
	}

	var appointments []*domain.Appointment

	// Записи и их строки читаются в одной транзакции, чтобы не смешать разные версии
	err = r.txManager.DoReadOnly(ctx, func(ctx context.Context) error {
		executor := dbmetrics.GetExecutor(ctx, r.db)

		rows, err := executor.QueryContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("%w: GetByFilter - execute query: %v", ErrExecQuery, err)
		}
		defer rows.Close()

		appointments, err = r.scanAppointments(rows)
		if err != nil {
			return err
		}
		return r.attachLines(ctx, executor, appointments)
	})
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

// filterQuery строит SELECT по фильтру.
// Фильтры по месту применяются только к размещённым записям,
// неразмещённые добавляются по IncludeUnplaced или при выборке детей.
func filterQuery(filter domain.AppointmentFilter, ids []int64) squirrel.SelectBuilder {
	selectBuilder := psqlbuilder.Select(appointmentColumns...).
		From(tableAppointments).
		OrderBy("scheduled_date ASC NULLS LAST", "technician_id ASC", "priority ASC", "id ASC")

	if len(ids) > 0 {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"id": ids})
	}
	if filter.ParentID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"parent_id": *filter.ParentID})
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": statuses})
	}

	placed := squirrel.And{squirrel.NotEq{"technician_id": nil}}
	if filter.Range != nil {
		placed = append(placed,
			squirrel.GtOrEq{"scheduled_date": domain.DateOnly(filter.Range.From)},
			squirrel.LtOrEq{"scheduled_date": domain.DateOnly(filter.Range.To)},
		)
	}
	if len(filter.TechnicianIDs) > 0 {
		placed = append(placed, squirrel.Eq{"technician_id": filter.TechnicianIDs})
	}
	if filter.IncludeUnplaced || filter.ParentID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Or{placed, squirrel.Eq{"technician_id": nil}})
	} else {
		selectBuilder = selectBuilder.Where(placed)
	}

	return selectBuilder
}

// Update применяет частичное обновление и возвращает сохранённую запись
func (r *Repository) Update(ctx context.Context, id int64, patch domain.AppointmentPatch) (*domain.Appointment, error) {
	var updated *domain.Appointment

	err := r.txManager.Do(ctx, func(ctx context.Context) error {
		executor := dbmetrics.GetExecutor(ctx, r.db)

		updateBuilder := psqlbuilder.Update(tableAppointments).
			Set("updated_at", squirrel.Expr("NOW()")).
			Where(squirrel.Eq{"id": id})

		if patch.Status != nil {
			updateBuilder = updateBuilder.Set("status", *patch.Status)
		}
		if patch.ClearPlacement {
			updateBuilder = updateBuilder.Set("technician_id", nil).Set("scheduled_date", nil)
		}
		if patch.Placement != nil {
			updateBuilder = updateBuilder.
				Set("technician_id", patch.Placement.TechnicianID).
				Set("scheduled_date", domain.DateOnly(patch.Placement.Date))
		}
		if patch.ClearHoldReason {
			updateBuilder = updateBuilder.Set("hold_reason", nil)
		}
		if patch.HoldReason != nil {
			updateBuilder = updateBuilder.Set("hold_reason", *patch.HoldReason)
		}
		if patch.ClearParent {
			updateBuilder = updateBuilder.Set("parent_id", nil)
		}
		if patch.EstimatedHours != nil {
			updateBuilder = updateBuilder.Set("estimated_hours", *patch.EstimatedHours)
		}
		if patch.Priority != nil {
			updateBuilder = updateBuilder.Set("priority", *patch.Priority)
		}
		if patch.Notes != nil {
			updateBuilder = updateBuilder.Set("notes", *patch.Notes)
		}

		query, args, err := updateBuilder.ToSql()
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
			return ErrAppointmentNotFound
		}

		if patch.ReplaceLines {
			if err := r.syncLines(ctx, executor, id, patch.Lines); err != nil {
				return err
			}
		}

		updated, err = r.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// Delete удаляет запись; строки работ удаляются каскадно
func (r *Repository) Delete(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete(tableAppointments).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Delete - execute delete: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Delete - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrAppointmentNotFound
	}

	return nil
}

// syncLines приводит строки работ к новому списку.
// Строки с известным ID обновляются на месте, отсутствующие удаляются, новые вставляются.
func (r *Repository) syncLines(ctx context.Context, executor dbmetrics.Executor, appointmentID int64, lines []domain.ServiceLine) error {
	keep := make([]int64, 0, len(lines))
	for _, l := range lines {
		if l.ID != 0 {
			keep = append(keep, l.ID)
		}
	}

	deleteBuilder := psqlbuilder.Delete(tableServiceLines).Where(squirrel.Eq{"appointment_id": appointmentID})
	if len(keep) > 0 {
		deleteBuilder = deleteBuilder.Where(squirrel.NotEq{"id": keep})
	}
	query, args, err := deleteBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: syncLines - build delete query: %v", ErrBuildQuery, err)
	}
	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: syncLines - execute delete: %v", ErrExecQuery, err)
	}

	var (
		fresh     []domain.ServiceLine
		positions []int
	)
	for pos, l := range lines {
		if l.ID == 0 {
			fresh = append(fresh, l)
			positions = append(positions, pos)
			continue
		}

		query, args, err := psqlbuilder.Update(tableServiceLines).
			Set("position", pos).
			Set("description", l.Description).
			Set("category", l.Category).
			Set("hours", l.Hours).
			Set("status", l.Status).
			Where(squirrel.Eq{"id": l.ID, "appointment_id": appointmentID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("%w: syncLines - build update query: %v", ErrBuildQuery, err)
		}
		if _, err := executor.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("%w: syncLines - execute update: %v", ErrExecQuery, err)
		}
	}

	if len(fresh) == 0 {
		return nil
	}
	return r.insertLines(ctx, executor, appointmentID, fresh, positions)
}

// insertLines вставляет строки работ; positions = nil означает позиции 0..n-1
func (r *Repository) insertLines(ctx context.Context, executor dbmetrics.Executor, appointmentID int64, lines []domain.ServiceLine, positions []int) error {
	if len(lines) == 0 {
		return nil
	}

	insertBuilder := psqlbuilder.Insert(tableServiceLines).
		Columns("appointment_id", "position", "description", "category", "hours", "status")
	for i, l := range lines {
		status := l.Status
		if status == "" {
			status = domain.LinePending
		}
		pos := i
		if positions != nil {
			pos = positions[i]
		}
		insertBuilder = insertBuilder.Values(appointmentID, pos, l.Description, l.Category, l.Hours, status)
	}

	query, args, err := insertBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: insertLines - build insert query: %v", ErrBuildQuery, err)
	}
	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: insertLines - execute insert: %v", ErrExecQuery, err)
	}
	return nil
}

// attachLines загружает строки работ одним запросом для всех записей
func (r *Repository) attachLines(ctx context.Context, executor dbmetrics.Executor, appointments []*domain.Appointment) error {
	if len(appointments) == 0 {
		return nil
	}

	byID := make(map[int64]*domain.Appointment, len(appointments))
	ids := make([]int64, 0, len(appointments))
	for _, a := range appointments {
		byID[a.ID] = a
		ids = append(ids, a.ID)
	}

	query, args, err := psqlbuilder.Select("id", "appointment_id", "description", "category", "hours", "status").
		From(tableServiceLines).
		Where(squirrel.Eq{"appointment_id": ids}).
		OrderBy("appointment_id ASC", "position ASC", "id ASC").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: attachLines - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: attachLines - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			line          domain.ServiceLine
			appointmentID int64
		)
		if err := rows.Scan(&line.ID, &appointmentID, &line.Description, &line.Category, &line.Hours, &line.Status); err != nil {
			return fmt.Errorf("%w: attachLines - scan line: %v", ErrScanRow, err)
		}
		if a, ok := byID[appointmentID]; ok {
			a.Lines = append(a.Lines, line)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: attachLines - rows error: %v", ErrScanRow, err)
	}
	return nil
}

// scanAppointments сканирует строки результата в записи доски
func (r *Repository) scanAppointments(rows *sql.Rows) ([]*domain.Appointment, error) {
	appointments := make([]*domain.Appointment, 0)

	for rows.Next() {
		var (
			a                    domain.Appointment
			techID, parentID     sql.NullInt64
			scheduledDate        sql.NullTime
			holdReason, notes    sql.NullString
			createdAt, updatedAt sql.NullTime
		)

		err := rows.Scan(
			&a.ID,
			&a.CustomerRef,
			&a.VehicleRef,
			&techID,
			&scheduledDate,
			&a.EstimatedHours,
			&a.Status,
			&holdReason,
			&parentID,
			&a.Priority,
			&notes,
			&createdAt,
			&updatedAt,
		)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("%w: scanAppointments - scan appointment: %v", ErrScanRow, err)
		}

		if techID.Valid && scheduledDate.Valid {
			a.Placement = &domain.Placement{TechnicianID: techID.Int64, Date: domain.DateOnly(scheduledDate.Time)}
		}
		if holdReason.Valid {
			a.HoldReason = &holdReason.String
		}
		if parentID.Valid {
			a.ParentID = &parentID.Int64
		}
		if notes.Valid {
			a.Notes = &notes.String
		}
		a.CreatedAt = createdAt.Time
		a.UpdatedAt = updatedAt.Time

		appointments = append(appointments, &a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanAppointments - rows error: %v", ErrScanRow, err)
	}

	return appointments, nil
}

func placementColumns(p *domain.Placement) (*int64, *time.Time) {
	if p == nil {
		return nil, nil
	}
	id := p.TechnicianID
	date := domain.DateOnly(p.Date)
	return &id, &date
}

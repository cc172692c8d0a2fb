package scheduling

import (
	"context"
	"fmt"
	"slices"

	"github.com/m04kA/SMC-ShopScheduler/internal/domain"
	"github.com/m04kA/SMC-ShopScheduler/internal/events"
	"github.com/m04kA/SMC-ShopScheduler/internal/service/lifecycle"
)

// Assign назначает запись технику на дату.
// Черновик ставится в расписание, отложенная запись возвращается, запланированная переносится.
// Остаток часов пересчитывается по свежим данным хранилища; при нехватке
// возвращается CapacityError, если не разрешено превышение.
func (c *Coordinator) Assign(ctx context.Context, req AssignRequest) (*AssignResult, error) {
	c.logger.Info("Assign: appointment=%d, technician=%d, date=%s, overbook=%t",
		req.AppointmentID, req.TechnicianID, req.Date.Format(domain.DateFormat), req.AllowOverbook)

	// 1. Валидация входных данных
	if err := validatePlacement(req.TechnicianID, req.Date); err != nil {
		c.logger.Warn("Assign: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем актуальную запись
	current, err := c.load(ctx, "Assign", req.AppointmentID)
	if err != nil {
		return nil, err
	}

	// 3. Событие определяется текущим статусом
	var ev lifecycle.Event
	switch current.Status {
	case domain.StatusDraft:
		ev = lifecycle.EventBook
	case domain.StatusOnHold:
		ev = lifecycle.EventResume
	case domain.StatusScheduled:
		ev = lifecycle.EventMove
	default:
		c.logger.Warn("Assign: appointment=%d cannot be placed from %s", current.ID, current.Status)
		return nil, fmt.Errorf("%w: appointment=%d cannot be placed from %s", ErrInvalidTransition, current.ID, current.Status)
	}

	return c.place(ctx, "Assign", current, ev, req)
}

// Resume возвращает отложенную запись в расписание на новое место.
// Прежние техник и дата не восстанавливаются, место проверяется заново.
func (c *Coordinator) Resume(ctx context.Context, req AssignRequest) (*AssignResult, error) {
	c.logger.Info("Resume: appointment=%d, technician=%d, date=%s",
		req.AppointmentID, req.TechnicianID, req.Date.Format(domain.DateFormat))

	if err := validatePlacement(req.TechnicianID, req.Date); err != nil {
		c.logger.Warn("Resume: validation failed: %v", err)
		return nil, err
	}

	current, err := c.load(ctx, "Resume", req.AppointmentID)
	if err != nil {
		return nil, err
	}

	return c.place(ctx, "Resume", current, lifecycle.EventResume, req)
}

func (c *Coordinator) place(ctx context.Context, op string, current *domain.Appointment, ev lifecycle.Event, req AssignRequest) (*AssignResult, error) {
	placement := domain.Placement{TechnicianID: req.TechnicianID, Date: domain.DateOnly(req.Date)}

	// 1. Переход по машине состояний
	var (
		next *domain.Appointment
		err  error
	)
	switch ev {
	case lifecycle.EventBook:
		next, err = c.machine.Book(current, placement)
	case lifecycle.EventResume:
		next, err = c.machine.Resume(current, placement)
	default:
		next, err = c.machine.Move(current, placement)
	}
	if err != nil {
		c.logger.Warn("%s: appointment=%d %s rejected: %v", op, current.ID, ev, err)
		return nil, lifecycleError(current.ID, err)
	}

	// 2. На доску попадает только запись с положительной оценкой часов
	if err := validateHours(next.EstimatedHours); err != nil {
		c.logger.Warn("%s: appointment=%d cannot be placed: %v", op, current.ID, err)
		return nil, err
	}

	// 3. Пересчитываем остаток в момент назначения, кешированным слотам не доверяем
	check, err := c.checkCapacity(ctx, current.ID, next.EstimatedHours, placement, 0, req.AllowOverbook)
	if err != nil {
		c.logger.Warn("%s: appointment=%d to %s: %v", op, current.ID, placement, err)
		return nil, err
	}

	// 4. Запись в хранилище
	persisted, err := c.persistUpdate(ctx, op, current, next)
	if err != nil {
		return nil, err
	}

	outcome := OutcomeOK
	if check.overbooked {
		outcome = OutcomeOverbooked
		c.logger.Warn("%s: appointment=%d overbooked %s, remaining=%.2fh",
			op, persisted.ID, placement, check.snapshot.RawRemaining)
	}
	c.metrics.IncAssignment(outcome)
	c.metrics.IncTransition(string(ev))
	c.publish(events.TypeAppointmentChanged, persisted)

	c.logger.Info("%s: appointment=%d placed at %s", op, persisted.ID, placement)
	return &AssignResult{Appointment: persisted, Overbooked: check.overbooked, Snapshot: check.snapshot}, nil
}

// Drop обрабатывает перетаскивание карточки.
// В пределах того же техника и дня меняется только порядок, ёмкость не проверяется.
// Перенос к другому технику или на другой день всегда проверяет ёмкость.
func (c *Coordinator) Drop(ctx context.Context, req DropRequest) (*AssignResult, error) {
	c.logger.Info("Drop: appointment=%d, technician=%d, date=%s, position=%v",
		req.AppointmentID, req.TechnicianID, req.Date.Format(domain.DateFormat), req.Position)

	if err := validatePlacement(req.TechnicianID, req.Date); err != nil {
		c.logger.Warn("Drop: validation failed: %v", err)
		return nil, err
	}
	if req.Position != nil && *req.Position < 0 {
		return nil, fmt.Errorf("%w: position must not be negative", ErrInvalidInput)
	}

	current, err := c.load(ctx, "Drop", req.AppointmentID)
	if err != nil {
		return nil, err
	}

	target := domain.Placement{TechnicianID: req.TechnicianID, Date: domain.DateOnly(req.Date)}
	if current.IsPlacedOn(target) {
		if req.Position == nil {
			return &AssignResult{Appointment: current}, nil
		}
		reordered, err := c.reorder(ctx, current, *req.Position)
		if err != nil {
			return nil, err
		}
		return &AssignResult{Appointment: reordered}, nil
	}

	result, err := c.Assign(ctx, AssignRequest{
		AppointmentID: req.AppointmentID,
		TechnicianID:  req.TechnicianID,
		Date:          req.Date,
		AllowOverbook: req.AllowOverbook,
	})
	if err != nil {
		return nil, err
	}

	// Перенос уже записан: отмена запроса не должна прервать перенумерацию колонки,
	// а её ошибка не отменяет успешный перенос
	position := -1
	if req.Position != nil {
		position = *req.Position
	}
	reordered, err := c.reorder(context.WithoutCancel(ctx), result.Appointment, position)
	if err != nil {
		c.logger.Warn("Drop: appointment=%d moved to %s but column reorder failed: %v",
			result.Appointment.ID, result.Appointment.Placement, err)
		return result, nil
	}
	result.Appointment = reordered
	return result, nil
}

// Reorder переставляет запись на позицию в колонке её техника и дня.
// Общие часы колонки не меняются, поэтому ёмкость не проверяется.
func (c *Coordinator) Reorder(ctx context.Context, id int64, position int) (*domain.Appointment, error) {
	c.logger.Info("Reorder: appointment=%d, position=%d", id, position)

	if position < 0 {
		return nil, fmt.Errorf("%w: position must not be negative", ErrInvalidInput)
	}

	current, err := c.load(ctx, "Reorder", id)
	if err != nil {
		return nil, err
	}
	return c.reorder(ctx, current, position)
}

// reorder плотно перенумеровывает приоритеты колонки 0..n-1.
// Отрицательная позиция ставит запись в конец колонки.
func (c *Coordinator) reorder(ctx context.Context, current *domain.Appointment, position int) (*domain.Appointment, error) {
	if current.Placement == nil {
		return nil, fmt.Errorf("%w: appointment=%d is not on the board", ErrInvalidInput, current.ID)
	}

	// 1. Получаем колонку техника на день
	day := domain.NewDateRange(current.Placement.Date, current.Placement.Date)
	column, err := c.appointments.GetByFilter(ctx, domain.AppointmentFilter{
		Range:         &day,
		TechnicianIDs: []int64{current.Placement.TechnicianID},
	})
	if err != nil {
		c.logger.Error("Reorder: failed to get column %s: %v", current.Placement, err)
		return nil, fmt.Errorf("%w: failed to get column: %v", ErrPersistenceFailure, err)
	}
	domain.SortForBoard(column)

	// 2. Переставляем карточку
	idx := slices.IndexFunc(column, func(a *domain.Appointment) bool { return a.ID == current.ID })
	moved := current
	if idx >= 0 {
		moved = column[idx]
		column = slices.Delete(column, idx, idx+1)
	}
	if position < 0 || position > len(column) {
		position = len(column)
	}
	column = slices.Insert(column, position, moved)

	// 3. Записываем изменившиеся приоритеты
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	writeCtx := context.WithoutCancel(ctx)

	result := moved
	for i, a := range column {
		next := a.Clone()
		next.Priority = i
		persisted, err := c.persistUpdate(writeCtx, "Reorder", a, next)
		if err != nil {
			return nil, err
		}
		if persisted.ID == current.ID {
			result = persisted
		}
		if persisted.Priority != a.Priority {
			c.publish(events.TypeAppointmentChanged, persisted)
		}
	}

	c.logger.Info("Reorder: appointment=%d now at position %d of %s", current.ID, position, current.Placement)
	return result, nil
}

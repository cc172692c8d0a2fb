package scheduling

import (
	"context"

	"github.com/m04kA/SMC-ShopScheduler/internal/domain"
	"github.com/m04kA/SMC-ShopScheduler/internal/events"
	"github.com/m04kA/SMC-ShopScheduler/internal/service/lifecycle"
)

// Hold снимает запись с доски с обязательной причиной
func (c *Coordinator) Hold(ctx context.Context, id int64, reason string) (*domain.Appointment, error) {
	c.logger.Info("Hold: appointment=%d", id)
	return c.transition(ctx, "Hold", id, lifecycle.EventHold, func(a *domain.Appointment) (*domain.Appointment, error) {
		return c.machine.Hold(a, reason)
	})
}

// Start переводит запись в работу
func (c *Coordinator) Start(ctx context.Context, id int64) (*domain.Appointment, error) {
	c.logger.Info("Start: appointment=%d", id)
	return c.transition(ctx, "Start", id, lifecycle.EventStart, c.machine.Start)
}

// Complete завершает запись
func (c *Coordinator) Complete(ctx context.Context, id int64) (*domain.Appointment, error) {
	c.logger.Info("Complete: appointment=%d", id)
	return c.transition(ctx, "Complete", id, lifecycle.EventComplete, c.machine.Complete)
}

// transition переходы без смены места: ёмкость не проверяется
func (c *Coordinator) transition(
	ctx context.Context,
	op string,
	id int64,
	ev lifecycle.Event,
	apply func(*domain.Appointment) (*domain.Appointment, error),
) (*domain.Appointment, error) {
	// 1. Получаем актуальную запись
	current, err := c.load(ctx, op, id)
	if err != nil {
		return nil, err
	}

	// 2. Переход по машине состояний
	next, err := apply(current)
	if err != nil {
		c.logger.Warn("%s: appointment=%d %s from %s rejected: %v", op, id, ev, current.Status, err)
		return nil, lifecycleError(id, err)
	}

	// 3. Запись в хранилище
	persisted, err := c.persistUpdate(ctx, op, current, next)
	if err != nil {
		return nil, err
	}

	c.metrics.IncTransition(string(ev))
	c.publish(events.TypeAppointmentChanged, persisted)
	c.logger.Info("%s: appointment=%d is %s", op, id, persisted.Status)
	return persisted, nil
}

package scheduling

import (
	"context"

	"github.com/m04kA/SMC-ShopScheduler/internal/domain"
	"github.com/m04kA/SMC-ShopScheduler/internal/events"
	"github.com/m04kA/SMC-ShopScheduler/internal/service/lifecycle"
)

// Delete безвозвратно удаляет запись.
// Требует подтверждения; родитель с активными детьми не удаляется.
// Архивные дети становятся самостоятельными записями до удаления родителя.
func (c *Coordinator) Delete(ctx context.Context, id int64, confirmed bool) error {
	c.logger.Info("Delete: appointment=%d, confirmed=%t", id, confirmed)

	// 1. Получаем запись и её детей
	current, err := c.load(ctx, "Delete", id)
	if err != nil {
		return err
	}
	children, err := c.appointments.GetByFilter(ctx, domain.AppointmentFilter{ParentID: &id})
	if err != nil {
		return c.storeError("Delete", id, err)
	}

	// 2. Проверяем ограничения удаления
	if err := c.machine.CheckDelete(current, children, confirmed); err != nil {
		c.logger.Warn("Delete: appointment=%d rejected: %v", id, err)
		return lifecycleError(id, err)
	}

	// 3. Запись в хранилище
	if err := ctx.Err(); err != nil {
		return err
	}
	writeCtx := context.WithoutCancel(ctx)

	// 3.1. Отвязываем детей
	for _, child := range children {
		detached := child.Clone()
		detached.ParentID = nil
		persisted, err := c.persistUpdate(writeCtx, "Delete", child, detached)
		if err != nil {
			return err
		}
		c.publish(events.TypeAppointmentOrphaned, persisted)
	}

	// 3.2. Удаляем запись
	if err := c.persistDelete(writeCtx, "Delete", id); err != nil {
		return err
	}

	c.metrics.IncDeletes()
	c.metrics.IncTransition(string(lifecycle.EventDelete))
	c.publish(events.TypeAppointmentDeleted, current)

	c.logger.Info("Delete: appointment=%d deleted, detached %d children", id, len(children))
	return nil
}

package scheduling

import (
	"context"
	"fmt"

	"github.com/m04kA/SMC-ShopScheduler/internal/domain"
	"github.com/m04kA/SMC-ShopScheduler/internal/events"
	"github.com/m04kA/SMC-ShopScheduler/internal/service/lifecycle"
)

// Split делит строки работ записи на дочерние записи.
// Сначала создаются дети, затем обновляется родитель; при сбое созданные дети удаляются.
func (c *Coordinator) Split(ctx context.Context, req *SplitRequest) (*SplitResult, error) {
	c.logger.Info("Split: appointment=%d, parts=%d, overbook=%t", req.AppointmentID, len(req.Parts), req.AllowOverbook)

	// 1. Валидация частей
	parts := make([]lifecycle.SplitPart, 0, len(req.Parts))
	for i, p := range req.Parts {
		if (p.TechnicianID == nil) != (p.Date == nil) {
			return nil, fmt.Errorf("%w: part %d: technician and date must be given together", ErrInvalidInput, i)
		}
		part := lifecycle.SplitPart{LineIDs: p.LineIDs}
		if p.TechnicianID != nil {
			if err := validatePlacement(*p.TechnicianID, *p.Date); err != nil {
				c.logger.Warn("Split: part %d validation failed: %v", i, err)
				return nil, err
			}
			part.Placement = &domain.Placement{TechnicianID: *p.TechnicianID, Date: domain.DateOnly(*p.Date)}
		}
		parts = append(parts, part)
	}

	// 2. Получаем актуального родителя
	parent, err := c.load(ctx, "Split", req.AppointmentID)
	if err != nil {
		return nil, err
	}

	// 3. Делим строки по машине состояний
	split, err := c.machine.Split(parent, parts)
	if err != nil {
		c.logger.Warn("Split: appointment=%d rejected: %v", parent.ID, err)
		return nil, lifecycleError(parent.ID, err)
	}

	// 4. Проверяем ёмкость для частей, уходящих на другое место.
	// Часы части на месте родителя лишь переходят от родителя к ребёнку.
	result := &SplitResult{}
	pending := make(map[string]float64)
	for _, child := range split.Children {
		if child.Placement == nil || parent.IsPlacedOn(*child.Placement) {
			continue
		}
		key := child.Placement.String()
		check, err := c.checkCapacity(ctx, 0, child.EstimatedHours, *child.Placement, pending[key], req.AllowOverbook)
		if err != nil {
			c.logger.Warn("Split: appointment=%d part to %s: %v", parent.ID, child.Placement, err)
			return nil, err
		}
		pending[key] += child.EstimatedHours
		result.Overbooked = result.Overbooked || check.overbooked
	}

	// 5. Запись в хранилище: после первой записи операция доводится до конца
	if err := ctx.Err(); err != nil {
		c.logger.Warn("Split: appointment=%d cancelled before write: %v", parent.ID, err)
		return nil, err
	}
	writeCtx := context.WithoutCancel(ctx)

	// 5.1. Создаем детей
	for _, child := range split.Children {
		persisted, err := c.persistCreate(writeCtx, "Split", child)
		if err != nil {
			c.compensateSplit(writeCtx, parent.ID, result.Children)
			return nil, err
		}
		result.Children = append(result.Children, persisted)
	}

	// 5.2. Обновляем родителя
	persistedParent, err := c.persistUpdate(writeCtx, "Split", parent, split.Parent)
	if err != nil {
		c.compensateSplit(writeCtx, parent.ID, result.Children)
		return nil, err
	}
	result.Parent = persistedParent

	c.metrics.IncSplits()
	c.metrics.IncTransition(string(lifecycle.EventSplit))
	c.publish(events.TypeAppointmentChanged, persistedParent)

	c.logger.Info("Split: appointment=%d split into %d children, parent is %s",
		parent.ID, len(result.Children), persistedParent.Status)
	return result, nil
}

// compensateSplit удаляет уже созданных детей неудавшегося разделения
func (c *Coordinator) compensateSplit(ctx context.Context, parentID int64, created []*domain.Appointment) {
	for _, child := range created {
		if err := c.persistDelete(ctx, "Split", child.ID); err != nil {
			c.logger.Error("Split: failed to remove child=%d of appointment=%d after failed split: %v", child.ID, parentID, err)
			continue
		}
		c.publish(events.TypeAppointmentDeleted, child)
	}
}

// Merge возвращает строки дочерней записи в родителя и удаляет ребёнка.
// Если ребёнка удалить не удалось, родитель возвращается в прежнее состояние.
func (c *Coordinator) Merge(ctx context.Context, req MergeRequest) (*domain.Appointment, error) {
	c.logger.Info("Merge: parent=%d, child=%d", req.ParentID, req.ChildID)

	// 1. Получаем родителя, ребёнка и детей ребёнка
	parent, err := c.load(ctx, "Merge", req.ParentID)
	if err != nil {
		return nil, err
	}
	child, err := c.load(ctx, "Merge", req.ChildID)
	if err != nil {
		return nil, err
	}
	grandchildren, err := c.appointments.GetByFilter(ctx, domain.AppointmentFilter{ParentID: &child.ID})
	if err != nil {
		return nil, c.storeError("Merge", child.ID, err)
	}

	// 2. Слияние по машине состояний
	next, err := c.machine.Merge(parent, child, grandchildren)
	if err != nil {
		c.logger.Warn("Merge: child=%d into parent=%d rejected: %v", child.ID, parent.ID, err)
		return nil, lifecycleError(parent.ID, err)
	}

	// 3. Часы ребёнка с другого места добавляются ко дню родителя
	sameDay := child.CountsTowardCapacity() && parent.Placement != nil && child.IsPlacedOn(*parent.Placement)
	if next.CountsTowardCapacity() && !sameDay && next.EstimatedHours > parent.EstimatedHours {
		if _, err := c.checkCapacity(ctx, parent.ID, next.EstimatedHours, *next.Placement, 0, req.AllowOverbook); err != nil {
			c.logger.Warn("Merge: parent=%d at %s: %v", parent.ID, next.Placement, err)
			return nil, err
		}
	}

	// 4. Запись в хранилище
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	writeCtx := context.WithoutCancel(ctx)

	persisted, err := c.persistUpdate(writeCtx, "Merge", parent, next)
	if err != nil {
		return nil, err
	}
	if err := c.persistDelete(writeCtx, "Merge", child.ID); err != nil {
		if _, revertErr := c.persistUpdate(writeCtx, "Merge", persisted, parent); revertErr != nil {
			c.logger.Error("Merge: failed to revert parent=%d after failed child delete: %v", parent.ID, revertErr)
		}
		return nil, err
	}

	c.metrics.IncMerges()
	c.metrics.IncTransition(string(lifecycle.EventMerge))
	c.publish(events.TypeAppointmentChanged, persisted)
	c.publish(events.TypeAppointmentDeleted, child)

	c.logger.Info("Merge: child=%d merged into parent=%d, hours=%.2f", child.ID, parent.ID, persisted.EstimatedHours)
	return persisted, nil
}

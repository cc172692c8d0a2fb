package scheduling

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-ShopScheduler/internal/domain"
	"github.com/m04kA/SMC-ShopScheduler/internal/service/lifecycle"
	"github.com/m04kA/SMC-ShopScheduler/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-ShopScheduler/pkg/ptr"
)

// CreateDraft сохраняет новую запись без техника и даты
func (c *Coordinator) CreateDraft(ctx context.Context, req *DraftRequest) (*domain.Appointment, error) {
	c.logger.Info("CreateDraft: customer=%q, vehicle=%q, lines=%d", req.CustomerRef, req.VehicleRef, len(req.Lines))

	// 1. Валидация входных данных
	if err := validateDraft(req); err != nil {
		c.logger.Warn("CreateDraft: validation failed: %v", err)
		return nil, err
	}

	// 2. Сохраняем черновик
	persisted, err := c.persistCreate(ctx, "CreateDraft", newDraft(req))
	if err != nil {
		return nil, err
	}

	c.logger.Info("CreateDraft: created appointment id=%d", persisted.ID)
	return persisted, nil
}

// BookNew создает запись и сразу ставит её в расписание.
// Место берётся из запроса или ищется как ближайшее свободное.
func (c *Coordinator) BookNew(ctx context.Context, req *BookRequest) (*BookResult, error) {
	c.logger.Info("BookNew: customer=%q, technician=%d, preferred=%d, lines=%d",
		req.CustomerRef, ptr.Value(req.TechnicianID), ptr.Value(req.PreferredTechnicianID), len(req.Lines))

	// 1. Валидация входных данных
	if err := validateDraft(&req.DraftRequest); err != nil {
		c.logger.Warn("BookNew: validation failed: %v", err)
		return nil, err
	}
	draft := newDraft(&req.DraftRequest)
	if err := validateHours(draft.EstimatedHours); err != nil {
		c.logger.Warn("BookNew: validation failed: %v", err)
		return nil, err
	}
	if (req.TechnicianID == nil) != (req.Date == nil) {
		return nil, fmt.Errorf("%w: technician and date must be given together", ErrInvalidInput)
	}

	// 2. Определяем место
	result := &BookResult{}
	var placement domain.Placement
	if req.TechnicianID != nil {
		if err := validatePlacement(*req.TechnicianID, *req.Date); err != nil {
			c.logger.Warn("BookNew: validation failed: %v", err)
			return nil, err
		}
		placement = domain.Placement{TechnicianID: *req.TechnicianID, Date: domain.DateOnly(*req.Date)}
	} else {
		next, err := c.slots.Next(ctx, &get_available_slots.NextRequest{
			Hours:                 draft.EstimatedHours,
			PreferredTechnicianID: req.PreferredTechnicianID,
			NotBefore:             req.NotBefore,
			Category:              draft.PrimaryCategory(),
		})
		if err != nil {
			return nil, slotFinderError(err)
		}
		placement = next.Slot.Placement()
		result.OffPreference = next.OffPreference
	}

	// 3. Переход draft -> scheduled
	booked, err := c.machine.Book(draft, placement)
	if err != nil {
		return nil, lifecycleError(0, err)
	}

	// 4. Пересчитываем остаток непосредственно перед записью
	check, err := c.checkCapacity(ctx, 0, booked.EstimatedHours, placement, 0, req.AllowOverbook)
	if err != nil {
		c.logger.Warn("BookNew: %s: %v", placement, err)
		return nil, err
	}

	// 5. Сохраняем
	persisted, err := c.persistCreate(ctx, "BookNew", booked)
	if err != nil {
		return nil, err
	}

	outcome := OutcomeOK
	if check.overbooked {
		outcome = OutcomeOverbooked
	}
	c.metrics.IncAssignment(outcome)
	c.metrics.IncTransition(string(lifecycle.EventBook))

	result.Appointment = persisted
	result.Overbooked = check.overbooked
	c.logger.Info("BookNew: appointment id=%d booked at %s, offPreference=%t", persisted.ID, placement, result.OffPreference)
	return result, nil
}

func slotFinderError(err error) error {
	switch {
	case errors.Is(err, get_available_slots.ErrNoSlotFound):
		return fmt.Errorf("%w: %v", ErrNoSlotFound, err)
	case errors.Is(err, get_available_slots.ErrInvalidInput):
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	default:
		return fmt.Errorf("%w: slot search: %v", ErrPersistenceFailure, err)
	}
}

package scheduling

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/m04kA/SMC-ShopScheduler/internal/domain"
	"github.com/m04kA/SMC-ShopScheduler/internal/events"
	"github.com/m04kA/SMC-ShopScheduler/internal/service/capacity"
)

// LoadBoard загружает доску за диапазон дат.
// Дети, ссылающиеся на удалённого родителя, превращаются в самостоятельные записи.
func (c *Coordinator) LoadBoard(ctx context.Context, dateRange domain.DateRange) (*BoardSnapshot, error) {
	c.logger.Info("LoadBoard: from=%s, to=%s",
		dateRange.From.Format(domain.DateFormat), dateRange.To.Format(domain.DateFormat))

	// 1. Валидация диапазона
	dateRange = domain.NewDateRange(dateRange.From, dateRange.To)
	if err := validateRange(dateRange, c.settings.MaxRangeDays); err != nil {
		c.logger.Warn("LoadBoard: validation failed: %v", err)
		return nil, err
	}

	// 2. Загружаем техников, записи и отгулы
	technicians, err := c.technicians.GetAll(ctx)
	if err != nil {
		c.logger.Error("LoadBoard: failed to get technicians: %v", err)
		return nil, fmt.Errorf("%w: failed to get technicians: %v", ErrPersistenceFailure, err)
	}
	appointments, err := c.appointments.GetByFilter(ctx, domain.AppointmentFilter{Range: &dateRange, IncludeUnplaced: true})
	if err != nil {
		c.logger.Error("LoadBoard: failed to get appointments: %v", err)
		return nil, fmt.Errorf("%w: failed to get appointments: %v", ErrPersistenceFailure, err)
	}
	timeOff, err := c.timeOff.GetByRange(ctx, dateRange)
	if err != nil {
		c.logger.Error("LoadBoard: failed to get time off: %v", err)
		return nil, fmt.Errorf("%w: failed to get time off: %v", ErrPersistenceFailure, err)
	}

	// 3. Чиним осиротевших детей
	repaired, err := c.repairOrphans(ctx, appointments)
	if err != nil {
		return nil, err
	}
	c.board.Load(appointments)

	// 4. Собираем колонки и загрузку
	snapshot := &BoardSnapshot{
		Range:       dateRange,
		Technicians: technicians,
		Columns:     buildColumns(dateRange, technicians, appointments, capacity.NewModel(appointments, timeOff)),
		Held:        make([]*domain.Appointment, 0),
		Drafts:      make([]*domain.Appointment, 0),
		Repaired:    repaired,
	}
	for _, a := range appointments {
		switch a.Status {
		case domain.StatusOnHold:
			snapshot.Held = append(snapshot.Held, a)
		case domain.StatusDraft:
			snapshot.Drafts = append(snapshot.Drafts, a)
		}
	}

	c.logger.Info("LoadBoard: %d appointments, %d columns, %d held, %d repaired",
		len(appointments), len(snapshot.Columns), len(snapshot.Held), len(repaired))
	return snapshot, nil
}

// repairOrphans сбрасывает ссылки на родителей, которых больше нет в хранилище.
// Записи в слайсе заменяются сохранёнными версиями.
func (c *Coordinator) repairOrphans(ctx context.Context, appointments []*domain.Appointment) ([]int64, error) {
	loaded := make(map[int64]struct{}, len(appointments))
	for _, a := range appointments {
		loaded[a.ID] = struct{}{}
	}

	missing := make(map[int64]bool)
	repaired := make([]int64, 0)
	for i, a := range appointments {
		if a.ParentID == nil {
			continue
		}
		parentID := *a.ParentID
		if _, ok := loaded[parentID]; ok {
			continue
		}

		gone, checked := missing[parentID]
		if !checked {
			_, err := c.appointments.GetByID(ctx, parentID)
			switch {
			case err == nil:
				gone = false
			case errors.Is(err, domain.ErrNotFound):
				gone = true
			default:
				return nil, c.storeError("LoadBoard", parentID, err)
			}
			missing[parentID] = gone
		}
		if !gone {
			continue
		}

		c.logger.Warn("LoadBoard: appointment=%d references deleted parent=%d, detaching", a.ID, parentID)
		detached := a.Clone()
		detached.ParentID = nil
		persisted, err := c.persistUpdate(ctx, "LoadBoard", a, detached)
		if err != nil {
			return nil, err
		}
		appointments[i] = persisted
		repaired = append(repaired, persisted.ID)
		c.publish(events.TypeAppointmentOrphaned, persisted)
	}
	return repaired, nil
}

// buildColumns колонки по техникам и дням: рабочие дни и дни, где уже стоят записи
func buildColumns(
	dateRange domain.DateRange,
	technicians []*domain.Technician,
	appointments []*domain.Appointment,
	model *capacity.Model,
) []Column {
	type key struct {
		technicianID int64
		date         string
	}
	placed := make(map[key][]*domain.Appointment)
	for _, a := range appointments {
		if a.Placement == nil {
			continue
		}
		k := key{a.Placement.TechnicianID, a.Placement.Date.Format(domain.DateFormat)}
		placed[k] = append(placed[k], a)
	}

	sorted := slices.Clone(technicians)
	slices.SortFunc(sorted, func(a, b *domain.Technician) int { return cmp.Compare(a.ID, b.ID) })

	columns := make([]Column, 0)
	for date := dateRange.From; !date.After(dateRange.To); date = date.AddDate(0, 0, 1) {
		for _, t := range sorted {
			list := placed[key{t.ID, date.Format(domain.DateFormat)}]
			if !t.WorksOn(date) && len(list) == 0 {
				continue
			}
			domain.SortForBoard(list)
			if list == nil {
				list = make([]*domain.Appointment, 0)
			}
			columns = append(columns, Column{
				TechnicianID: t.ID,
				Date:         date,
				Snapshot:     model.Snapshot(t, date),
				Appointments: list,
			})
		}
	}
	return columns
}

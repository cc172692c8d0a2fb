// Package scheduling orchestrates every write to the board: placement with a
// fresh capacity check, lifecycle transitions, split and merge, delete and the
// board snapshot. Writes are applied optimistically to the board and then
// reconciled against the store's answer or rolled back.
package scheduling

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/m04kA/SMC-ShopScheduler/internal/board"
	"github.com/m04kA/SMC-ShopScheduler/internal/domain"
	"github.com/m04kA/SMC-ShopScheduler/internal/events"
	"github.com/m04kA/SMC-ShopScheduler/internal/service/capacity"
	"github.com/m04kA/SMC-ShopScheduler/internal/service/lifecycle"
)

// Settings параметры планирования из конфигурации
type Settings struct {
	MaxRangeDays int
}

// Coordinator координатор операций планирования
type Coordinator struct {
	appointments AppointmentRepository
	technicians  TechnicianProvider
	timeOff      TimeOffRepository
	slots        SlotFinder
	board        *board.Board
	machine      *lifecycle.Machine
	publisher    Publisher
	metrics      MetricsRecorder
	timeProvider TimeProvider
	logger       Logger
	settings     Settings
}

// NewCoordinator создает координатор. metrics может быть nil.
func NewCoordinator(
	appointments AppointmentRepository,
	technicians TechnicianProvider,
	timeOff TimeOffRepository,
	slots SlotFinder,
	boardState *board.Board,
	publisher Publisher,
	metrics MetricsRecorder,
	settings Settings,
	logger Logger,
) *Coordinator {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if settings.MaxRangeDays <= 0 {
		settings.MaxRangeDays = domain.DefaultMaxRangeDays
	}
	return &Coordinator{
		appointments: appointments,
		technicians:  technicians,
		timeOff:      timeOff,
		slots:        slots,
		board:        boardState,
		machine:      lifecycle.NewMachine(),
		publisher:    publisher,
		metrics:      metrics,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
		settings:     settings,
	}
}

// WithTimeProvider подменяет источник времени
func (c *Coordinator) WithTimeProvider(tp TimeProvider) *Coordinator {
	c.timeProvider = tp
	return c
}

// Board возвращает состояние доски
func (c *Coordinator) Board() *board.Board {
	return c.board
}

type capacityCheck struct {
	snapshot   domain.CapacitySnapshot // после назначения
	overbooked bool
}

// load получает актуальную запись из хранилища и кладёт её на доску
func (c *Coordinator) load(ctx context.Context, op string, id int64) (*domain.Appointment, error) {
	a, err := c.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, c.storeError(op, id, err)
	}
	c.board.Put(a)
	return a, nil
}

// checkCapacity пересчитывает остаток техника на дату в момент операции.
// pending часы, уже распределённые на этот день в рамках той же операции.
func (c *Coordinator) checkCapacity(
	ctx context.Context,
	appointmentID int64,
	hours float64,
	placement domain.Placement,
	pending float64,
	allowOverbook bool,
) (*capacityCheck, error) {
	technicians, err := c.technicians.GetAll(ctx)
	if err != nil {
		c.logger.Error("CheckCapacity: failed to get technicians: %v", err)
		return nil, fmt.Errorf("%w: failed to get technicians: %v", ErrPersistenceFailure, err)
	}

	idx := slices.IndexFunc(technicians, func(t *domain.Technician) bool { return t.ID == placement.TechnicianID })
	if idx < 0 {
		return nil, fmt.Errorf("%w: technician=%d", ErrNotFound, placement.TechnicianID)
	}
	technician := technicians[idx]
	if !technician.WorksOn(placement.Date) {
		return nil, fmt.Errorf("%w: technician=%d does not work on %s",
			ErrInvalidInput, technician.ID, placement.Date.Format(domain.DateFormat))
	}

	day := domain.NewDateRange(placement.Date, placement.Date)
	dayAppointments, err := c.appointments.GetByFilter(ctx, domain.AppointmentFilter{
		Range:         &day,
		TechnicianIDs: []int64{technician.ID},
	})
	if err != nil {
		c.logger.Error("CheckCapacity: failed to get appointments for %s: %v", placement, err)
		return nil, fmt.Errorf("%w: failed to get appointments: %v", ErrPersistenceFailure, err)
	}
	timeOff, err := c.timeOff.GetByRange(ctx, day)
	if err != nil {
		c.logger.Error("CheckCapacity: failed to get time off for %s: %v", placement, err)
		return nil, fmt.Errorf("%w: failed to get time off: %v", ErrPersistenceFailure, err)
	}
	c.board.Load(dayAppointments)

	snap := capacity.NewModel(dayAppointments, timeOff).SnapshotExcluding(technician, placement.Date, appointmentID)
	snap.RawRemaining -= pending
	snap.Remaining = max(snap.RawRemaining, 0)

	result := &capacityCheck{}
	if !snap.Fits(hours) {
		if !allowOverbook {
			c.metrics.IncAssignment(OutcomeCapacityExceeded)
			return nil, &CapacityError{
				AppointmentID:  appointmentID,
				TechnicianID:   technician.ID,
				Date:           placement.Date,
				RequestedHours: hours,
				RemainingHours: snap.Remaining,
				FullyOff:       snap.IsFullyOff(),
			}
		}
		result.overbooked = true
	}

	snap.CommittedHours += pending + hours
	snap.RawRemaining -= hours
	snap.Remaining = max(snap.RawRemaining, 0)
	result.snapshot = snap
	return result, nil
}

// persistUpdate применяет изменение к доске, пишет его в хранилище и сверяет ответ.
// Начатая запись не отменяется вместе с ctx.
func (c *Coordinator) persistUpdate(ctx context.Context, op string, before, after *domain.Appointment) (*domain.Appointment, error) {
	patch := domain.DiffPatch(before, after)
	if patch.IsEmpty() {
		return before, nil
	}
	if err := after.Validate(); err != nil {
		return nil, fmt.Errorf("%w: appointment=%d: %v", ErrInvalidTransition, after.ID, err)
	}
	if err := ctx.Err(); err != nil {
		c.logger.Warn("%s: appointment=%d cancelled before write: %v", op, after.ID, err)
		return nil, err
	}

	change := c.board.Apply(after)
	persisted, err := c.appointments.Update(context.WithoutCancel(ctx), after.ID, patch)
	if err != nil {
		c.board.Rollback(change, err)
		return nil, c.storeError(op, after.ID, err)
	}
	c.board.Reconcile(change, persisted)
	return persisted, nil
}

// persistCreate сохраняет новую запись и кладёт её на доску
func (c *Coordinator) persistCreate(ctx context.Context, op string, a *domain.Appointment) (*domain.Appointment, error) {
	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := ctx.Err(); err != nil {
		c.logger.Warn("%s: cancelled before write: %v", op, err)
		return nil, err
	}

	persisted, err := c.appointments.Create(context.WithoutCancel(ctx), a)
	if err != nil {
		c.logger.Error("%s: failed to create appointment: %v", op, err)
		return nil, fmt.Errorf("%w: failed to create appointment: %v", ErrPersistenceFailure, err)
	}
	c.board.Put(persisted)
	c.publish(events.TypeAppointmentCreated, persisted)
	return persisted, nil
}

// persistDelete удаляет запись с доски и из хранилища
func (c *Coordinator) persistDelete(ctx context.Context, op string, id int64) error {
	change := c.board.ApplyRemoval(id)
	if err := c.appointments.Delete(context.WithoutCancel(ctx), id); err != nil {
		c.board.Rollback(change, err)
		return c.storeError(op, id, err)
	}
	c.board.Reconcile(change, nil)
	return nil
}

// storeError переводит ошибку хранилища в таксономию планирования
func (c *Coordinator) storeError(op string, id int64, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.logger.Warn("%s: appointment=%d not found", op, id)
		return fmt.Errorf("%w: appointment=%d", ErrNotFound, id)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		c.logger.Warn("%s: appointment=%d: %v", op, id, err)
		return err
	default:
		c.logger.Error("%s: store failed for appointment=%d: %v", op, id, err)
		return fmt.Errorf("%w: %s appointment=%d: %v", ErrPersistenceFailure, op, id, err)
	}
}

// lifecycleError переводит ошибку машины состояний в таксономию планирования
func lifecycleError(id int64, err error) error {
	switch {
	case errors.Is(err, lifecycle.ErrConfirmationRequired):
		return fmt.Errorf("%w: appointment=%d", ErrConfirmationRequired, id)
	case errors.Is(err, lifecycle.ErrSplitRejected):
		return fmt.Errorf("%w: appointment=%d: %v", ErrSplitRejected, id, err)
	case errors.Is(err, lifecycle.ErrInvalidTransition):
		return fmt.Errorf("%w: appointment=%d: %v", ErrInvalidTransition, id, err)
	default:
		return err
	}
}

type nopMetrics struct{}

func (nopMetrics) IncAssignment(string) {}
func (nopMetrics) IncTransition(string) {}
func (nopMetrics) IncSplits()           {}
func (nopMetrics) IncMerges()           {}
func (nopMetrics) IncDeletes()          {}

// Package board holds the UI-facing appointment state.
//
// Every write goes through Apply (optimistic), then either Reconcile against the
// persisted record or Rollback when the write failed. Reconcile never overwrites
// silently: diverging fields are reported as a correction event.
package board

import (
	"cmp"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-ShopScheduler/internal/domain"
	"github.com/m04kA/SMC-ShopScheduler/internal/events"
)

// Change is a pending optimistic change
type Change struct {
	ID            string
	AppointmentID int64
	previous      *domain.Appointment // nil if the entry did not exist
	applied       *domain.Appointment // nil for a removal
}

// CorrectionPayload is published when the store disagrees with the optimistic state
type CorrectionPayload struct {
	ChangeID string   `json:"change_id"`
	Fields   []string `json:"fields"`
}

// RollbackPayload is published when a write failed and the optimistic state was undone
type RollbackPayload struct {
	ChangeID string `json:"change_id"`
	Error    string `json:"error"`
}

// Board is the in-memory view of loaded appointments
type Board struct {
	mu           sync.RWMutex
	appointments map[int64]*domain.Appointment
	publisher    Publisher
	metrics      MetricsRecorder
	logger       Logger
}

// New creates an empty board. metrics may be nil.
func New(publisher Publisher, metrics MetricsRecorder, logger Logger) *Board {
	return &Board{
		appointments: make(map[int64]*domain.Appointment),
		publisher:    publisher,
		metrics:      metrics,
		logger:       logger,
	}
}

// Load stores persisted appointments, replacing entries with the same id
func (b *Board) Load(list []*domain.Appointment) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, a := range list {
		b.appointments[a.ID] = a.Clone()
	}
}

// Put stores a single persisted appointment
func (b *Board) Put(a *domain.Appointment) {
	b.Load([]*domain.Appointment{a})
}

// Get returns a copy of the appointment
func (b *Board) Get(id int64) (*domain.Appointment, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	a, ok := b.appointments[id]
	if !ok {
		return nil, false
	}
	return a.Clone(), true
}

// List returns copies of all appointments in board order
func (b *Board) List() []*domain.Appointment {
	b.mu.RLock()
	list := make([]*domain.Appointment, 0, len(b.appointments))
	for _, a := range b.appointments {
		list = append(list, a.Clone())
	}
	b.mu.RUnlock()

	domain.SortForBoard(list)
	return list
}

// Children returns loaded children of the parent.
// The lookup is derived from back-references on every call.
func (b *Board) Children(parentID int64) []*domain.Appointment {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var children []*domain.Appointment
	for _, a := range b.appointments {
		if a.ParentID != nil && *a.ParentID == parentID {
			children = append(children, a.Clone())
		}
	}
	slices.SortFunc(children, func(x, y *domain.Appointment) int { return cmp.Compare(x.ID, y.ID) })
	return children
}

// Apply optimistically replaces the appointment with next
func (b *Board) Apply(next *domain.Appointment) *Change {
	b.mu.Lock()
	defer b.mu.Unlock()

	applied := next.Clone()
	c := &Change{ID: uuid.NewString(), AppointmentID: next.ID, previous: b.appointments[next.ID], applied: applied}
	b.appointments[next.ID] = applied
	return c
}

// ApplyRemoval optimistically removes the appointment
func (b *Board) ApplyRemoval(id int64) *Change {
	b.mu.Lock()
	defer b.mu.Unlock()

	c := &Change{ID: uuid.NewString(), AppointmentID: id, previous: b.appointments[id]}
	delete(b.appointments, id)
	return c
}

// Reconcile replaces the optimistic entry with the persisted one.
// persisted is nil for a confirmed removal. Returns the diverging fields.
func (b *Board) Reconcile(c *Change, persisted *domain.Appointment) []string {
	if c.applied == nil || persisted == nil {
		return nil
	}

	fields := domain.Divergence(c.applied, persisted)

	b.mu.Lock()
	b.appointments[persisted.ID] = persisted.Clone()
	b.mu.Unlock()

	if len(fields) == 0 {
		return nil
	}

	b.logger.Warn("Board: appointment id=%d corrected by store, change=%s fields=%v", c.AppointmentID, c.ID, fields)
	if b.metrics != nil {
		b.metrics.IncCorrections()
	}
	if err := b.publisher.PublishJSON(events.TypeAppointmentCorrected, c.AppointmentID, CorrectionPayload{ChangeID: c.ID, Fields: fields}); err != nil {
		b.logger.Error("Board: failed to publish correction for id=%d: %v", c.AppointmentID, err)
	}
	return fields
}

// Rollback undoes the optimistic change after a failed write.
// An entry already superseded by a newer change is left alone.
func (b *Board) Rollback(c *Change, cause error) {
	b.mu.Lock()
	current, exists := b.appointments[c.AppointmentID]
	superseded := (c.applied == nil && exists) || (c.applied != nil && current != c.applied)
	if !superseded {
		if c.previous == nil {
			delete(b.appointments, c.AppointmentID)
		} else {
			b.appointments[c.AppointmentID] = c.previous
		}
	}
	b.mu.Unlock()

	if superseded {
		b.logger.Warn("Board: rollback of change=%s for id=%d skipped, entry superseded", c.ID, c.AppointmentID)
	} else {
		b.logger.Warn("Board: rolled back change=%s for id=%d: %v", c.ID, c.AppointmentID, cause)
	}
	if b.metrics != nil {
		b.metrics.IncRollbacks()
	}
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	if err := b.publisher.PublishJSON(events.TypeAppointmentRolledBack, c.AppointmentID, RollbackPayload{ChangeID: c.ID, Error: msg}); err != nil {
		b.logger.Error("Board: failed to publish rollback for id=%d: %v", c.AppointmentID, err)
	}
}

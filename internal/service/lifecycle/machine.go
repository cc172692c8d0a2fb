package lifecycle

import (
	"fmt"
	"slices"
	"strings"

	"github.com/m04kA/SMC-ShopScheduler/internal/domain"
)

// Event событие жизненного цикла записи
type Event string

const (
	EventBook     Event = "book"
	EventHold     Event = "hold"
	EventResume   Event = "resume"
	EventStart    Event = "start"
	EventComplete Event = "complete"
	EventMove     Event = "move"
	EventSplit    Event = "split"
	EventMerge    Event = "merge"
	EventDelete   Event = "delete"
)

// Machine таблица переходов статусов записи.
// Методы не изменяют входную запись и возвращают новую копию.
type Machine struct {
	transitions map[domain.AppointmentStatus]map[Event]domain.AppointmentStatus
}

// NewMachine создает машину состояний с таблицей переходов мастерской
func NewMachine() *Machine {
	return &Machine{
		transitions: map[domain.AppointmentStatus]map[Event]domain.AppointmentStatus{
			domain.StatusDraft: {
				EventBook: domain.StatusScheduled,
				EventHold: domain.StatusOnHold,
			},
			domain.StatusScheduled: {
				EventHold:  domain.StatusOnHold,
				EventStart: domain.StatusInProgress,
				EventMove:  domain.StatusScheduled,
				EventSplit: domain.StatusScheduled,
				EventMerge: domain.StatusScheduled,
			},
			domain.StatusOnHold: {
				EventResume: domain.StatusScheduled,
				EventSplit:  domain.StatusOnHold,
				EventMerge:  domain.StatusOnHold,
			},
			domain.StatusInProgress: {
				EventComplete: domain.StatusCompleted,
			},
		},
	}
}

// CanApply проверяет, разрешено ли событие из статуса
func (m *Machine) CanApply(from domain.AppointmentStatus, ev Event) bool {
	if ev == EventDelete {
		return !from.IsTerminal() && from.IsValid()
	}
	_, ok := m.transitions[from][ev]
	return ok
}

// Target возвращает статус после события
func (m *Machine) Target(from domain.AppointmentStatus, ev Event) (domain.AppointmentStatus, error) {
	to, ok := m.transitions[from][ev]
	if !ok {
		return "", fmt.Errorf("%w: %s from %s", ErrInvalidTransition, ev, from)
	}
	return to, nil
}

// Events возвращает события, доступные из статуса
func (m *Machine) Events(from domain.AppointmentStatus) []Event {
	events := make([]Event, 0, len(m.transitions[from])+1)
	for ev := range m.transitions[from] {
		events = append(events, ev)
	}
	if m.CanApply(from, EventDelete) {
		events = append(events, EventDelete)
	}
	slices.Sort(events)
	return events
}

// Book ставит черновик на техника и дату. Проверку ёмкости выполняет координатор.
func (m *Machine) Book(a *domain.Appointment, p domain.Placement) (*domain.Appointment, error) {
	return m.place(a, EventBook, p)
}

// Resume возвращает отложенную запись в расписание на новое место.
// Прежние техник и дата никогда не восстанавливаются.
func (m *Machine) Resume(a *domain.Appointment, p domain.Placement) (*domain.Appointment, error) {
	return m.place(a, EventResume, p)
}

// Move переносит запланированную запись к другому технику или на другую дату
func (m *Machine) Move(a *domain.Appointment, p domain.Placement) (*domain.Appointment, error) {
	return m.place(a, EventMove, p)
}

func (m *Machine) place(a *domain.Appointment, ev Event, p domain.Placement) (*domain.Appointment, error) {
	to, err := m.Target(a.Status, ev)
	if err != nil {
		return nil, err
	}
	if p.TechnicianID <= 0 || p.Date.IsZero() {
		return nil, ErrPlacementRequired
	}

	next := a.Clone()
	next.Status = to
	next.Placement = &domain.Placement{TechnicianID: p.TechnicianID, Date: domain.DateOnly(p.Date)}
	next.HoldReason = nil
	return next, nil
}

// Hold снимает запись с доски с обязательной причиной
func (m *Machine) Hold(a *domain.Appointment, reason string) (*domain.Appointment, error) {
	to, err := m.Target(a.Status, EventHold)
	if err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrHoldReasonRequired
	}
	if len(reason) > domain.MaxHoldReasonLength {
		return nil, fmt.Errorf("%w: hold reason exceeds %d characters", ErrInvalidTransition, domain.MaxHoldReasonLength)
	}

	next := a.Clone()
	next.Status = to
	next.Placement = nil
	next.HoldReason = &reason
	return next, nil
}

// Start переводит запись в работу; первая ожидающая строка переходит в работу
func (m *Machine) Start(a *domain.Appointment) (*domain.Appointment, error) {
	to, err := m.Target(a.Status, EventStart)
	if err != nil {
		return nil, err
	}
	if a.Placement == nil {
		return nil, ErrPlacementRequired
	}

	next := a.Clone()
	next.Status = to
	for i := range next.Lines {
		if next.Lines[i].Status == domain.LinePending {
			next.Lines[i].Status = domain.LineInProgress
			break
		}
	}
	return next, nil
}

// Complete завершает запись; все строки работ отмечаются выполненными
func (m *Machine) Complete(a *domain.Appointment) (*domain.Appointment, error) {
	to, err := m.Target(a.Status, EventComplete)
	if err != nil {
		return nil, err
	}

	next := a.Clone()
	next.Status = to
	for i := range next.Lines {
		next.Lines[i].Status = domain.LineDone
	}
	return next, nil
}

// CheckDelete проверяет, можно ли удалить запись.
// Завершённые и архивные записи не удаляются, родитель с активными детьми тоже.
func (m *Machine) CheckDelete(a *domain.Appointment, children []*domain.Appointment, confirmed bool) error {
	if !m.CanApply(a.Status, EventDelete) {
		return fmt.Errorf("%w: delete from %s", ErrInvalidTransition, a.Status)
	}
	for _, c := range children {
		if c.IsActiveChild() {
			return fmt.Errorf("%w: child id=%d is %s", ErrActiveChildren, c.ID, c.Status)
		}
	}
	if !confirmed {
		return ErrConfirmationRequired
	}
	return nil
}

// Package memory implements the scheduler data collaborator in process memory.
// It backs the "memory" storage driver and the use case tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m04kA/SMC-ShopScheduler/internal/domain"
)

// AppointmentStore хранилище записей в памяти
type AppointmentStore struct {
	mu           sync.RWMutex
	appointments map[int64]*domain.Appointment
	nextID       int64
	nextLineID   int64
	now          func() time.Time
}

// NewAppointmentStore создает пустое хранилище
func NewAppointmentStore() *AppointmentStore {
	return &AppointmentStore{
		appointments: make(map[int64]*domain.Appointment),
		now:          time.Now,
	}
}

// Create сохраняет запись и присваивает ID ей и строкам работ
func (s *AppointmentStore) Create(ctx context.Context, a *domain.Appointment) (*domain.Appointment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	stored := a.Clone()
	stored.ID = s.nextID
	if stored.Placement != nil {
		stored.Placement.Date = domain.DateOnly(stored.Placement.Date)
	}
	s.assignLineIDs(stored.Lines)
	stored.CreatedAt = s.now()
	stored.UpdatedAt = stored.CreatedAt

	s.appointments[stored.ID] = stored
	return stored.Clone(), nil
}

// GetByID получает запись по ID
func (s *AppointmentStore) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.appointments[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	return a.Clone(), nil
}

// GetByFilter получает записи по фильтру в порядке доски
func (s *AppointmentStore) GetByFilter(ctx context.Context, filter domain.AppointmentFilter, ids ...int64) ([]*domain.Appointment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var wanted map[int64]struct{}
	if len(ids) > 0 {
		wanted = make(map[int64]struct{}, len(ids))
		for _, id := range ids {
			wanted[id] = struct{}{}
		}
	}

	result := make([]*domain.Appointment, 0)
	for _, a := range s.appointments {
		if wanted != nil {
			if _, ok := wanted[a.ID]; !ok {
				continue
			}
		}
		if !filter.Matches(a) {
			continue
		}
		result = append(result, a.Clone())
	}
	domain.SortForBoard(result)
	return result, nil
}

// Update применяет частичное обновление
func (s *AppointmentStore) Update(ctx context.Context, id int64, patch domain.AppointmentPatch) (*domain.Appointment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.appointments[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}

	next := a.Clone()
	patch.Apply(next)
	if patch.ReplaceLines {
		s.assignLineIDs(next.Lines)
	}
	next.UpdatedAt = s.now()

	s.appointments[id] = next
	return next.Clone(), nil
}

// Delete удаляет запись; ссылки детей на неё обнуляются
func (s *AppointmentStore) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.appointments[id]; !ok {
		return ErrAppointmentNotFound
	}
	delete(s.appointments, id)

	for _, a := range s.appointments {
		if a.ParentID != nil && *a.ParentID == id {
			a.ParentID = nil
		}
	}
	return nil
}

func (s *AppointmentStore) assignLineIDs(lines []domain.ServiceLine) {
	for i := range lines {
		if lines[i].ID == 0 {
			s.nextLineID++
			lines[i].ID = s.nextLineID
		} else if lines[i].ID > s.nextLineID {
			s.nextLineID = lines[i].ID
		}
		if lines[i].Status == "" {
			lines[i].Status = domain.LinePending
		}
	}
}

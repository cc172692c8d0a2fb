package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/m04kA/SMC-ShopScheduler/internal/domain"
)

// TechnicianStore техники в памяти
type TechnicianStore struct {
	mu          sync.RWMutex
	technicians map[int64]*domain.Technician
}

// NewTechnicianStore создает хранилище с начальным набором техников
func NewTechnicianStore(technicians ...*domain.Technician) *TechnicianStore {
	s := &TechnicianStore{technicians: make(map[int64]*domain.Technician)}
	for _, t := range technicians {
		s.Put(t)
	}
	return s
}

// Put добавляет или заменяет техника
func (s *TechnicianStore) Put(t *domain.Technician) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *t
	c.Categories = slices.Clone(t.Categories)
	s.technicians[t.ID] = &c
}

// GetAll возвращает всех техников по возрастанию ID
func (s *TechnicianStore) GetAll(ctx context.Context) ([]*domain.Technician, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]*domain.Technician, 0, len(s.technicians))
	for _, t := range s.technicians {
		c := *t
		c.Categories = slices.Clone(t.Categories)
		list = append(list, &c)
	}
	slices.SortFunc(list, func(a, b *domain.Technician) int { return cmp.Compare(a.ID, b.ID) })
	return list, nil
}

// GetByID возвращает техника по ID
func (s *TechnicianStore) GetByID(ctx context.Context, id int64) (*domain.Technician, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.technicians[id]
	if !ok {
		return nil, ErrTechnicianNotFound
	}
	c := *t
	c.Categories = slices.Clone(t.Categories)
	return &c, nil
}

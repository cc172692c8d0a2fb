package memory

import (
	"context"
	"sync"

	"github.com/m04kA/SMC-ShopScheduler/internal/domain"
)

// TimeOffStore отгулы в памяти
type TimeOffStore struct {
	mu      sync.RWMutex
	entries []domain.TimeOffEntry
}

// NewTimeOffStore создает хранилище с начальным набором отгулов
func NewTimeOffStore(entries ...domain.TimeOffEntry) *TimeOffStore {
	return &TimeOffStore{entries: append([]domain.TimeOffEntry(nil), entries...)}
}

// Add добавляет отгул
func (s *TimeOffStore) Add(e domain.TimeOffEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
}

// GetByRange возвращает отгулы, пересекающиеся с диапазоном
func (s *TimeOffStore) GetByRange(ctx context.Context, dateRange domain.DateRange) ([]domain.TimeOffEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.TimeOffEntry, 0)
	for _, e := range s.entries {
		if domain.NewDateRange(e.StartDate, e.EndDate).Overlaps(dateRange) {
			result = append(result, e)
		}
	}
	return result, nil
}

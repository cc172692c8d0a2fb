package availability

import (
	"cmp"
	"iter"
	"slices"
	"time"

	"github.com/m04kA/SMC-ShopScheduler/internal/domain"
	"github.com/m04kA/SMC-ShopScheduler/internal/service/capacity"
)

// SlotQuery параметры поиска слотов
type SlotQuery struct {
	Hours         float64
	From          time.Time // включительно
	To            time.Time // включительно
	TechnicianIDs []int64   // пусто = все техники
	Category      string    // пусто = любая категория
}

// Calculator обходит диапазон дат и собирает слоты по модели загрузки
type Calculator struct {
	technicians []*domain.Technician
	model       *capacity.Model
}

// NewCalculator создает калькулятор поверх загруженных техников и модели загрузки.
// Техники упорядочиваются по ID, чтобы порядок слотов был детерминированным.
func NewCalculator(technicians []*domain.Technician, model *capacity.Model) *Calculator {
	sorted := slices.Clone(technicians)
	slices.SortFunc(sorted, func(a, b *domain.Technician) int { return cmp.Compare(a.ID, b.ID) })
	return &Calculator{technicians: sorted, model: model}
}

// FindSlots возвращает ленивую последовательность слотов.
// Порядок: дата по возрастанию, затем остаток часов по убыванию, затем ID техника.
// Последовательность можно обходить повторно, каждый обход считает заново.
func (c *Calculator) FindSlots(q SlotQuery) iter.Seq[domain.Slot] {
	return func(yield func(domain.Slot) bool) {
		r := domain.NewDateRange(q.From, q.To)
		if r.IsEmpty() {
			return
		}

		eligible := c.eligible(q)
		if len(eligible) == 0 {
			return
		}

		for date := r.From; !date.After(r.To); date = date.AddDate(0, 0, 1) {
			for _, slot := range c.slotsOn(date, q.Hours, eligible) {
				if !yield(slot) {
					return
				}
			}
		}
	}
}

// Snapshot загрузка техника на дату по той же модели
func (c *Calculator) Snapshot(t *domain.Technician, date time.Time) domain.CapacitySnapshot {
	return c.model.Snapshot(t, date)
}

func (c *Calculator) eligible(q SlotQuery) []*domain.Technician {
	result := make([]*domain.Technician, 0, len(c.technicians))
	for _, t := range c.technicians {
		// Техник без рабочих дней пропускается, это не ошибка
		if !t.IsSchedulable() {
			continue
		}
		if len(q.TechnicianIDs) > 0 && !slices.Contains(q.TechnicianIDs, t.ID) {
			continue
		}
		if !t.CanPerform(q.Category) {
			continue
		}
		result = append(result, t)
	}
	return result
}

func (c *Calculator) slotsOn(date time.Time, hours float64, technicians []*domain.Technician) []domain.Slot {
	var slots []domain.Slot
	for _, t := range technicians {
		if !t.WorksOn(date) {
			continue
		}
		snap := c.model.Snapshot(t, date)
		if snap.IsFullyOff() || snap.Remaining < hours {
			continue
		}
		slots = append(slots, domain.Slot{
			TechnicianID:     t.ID,
			Date:             date,
			StartOffsetHours: startOffset(snap),
			AvailableHours:   snap.Remaining,
		})
	}

	slices.SortStableFunc(slots, func(a, b domain.Slot) int {
		if d := cmp.Compare(b.AvailableHours, a.AvailableHours); d != 0 {
			return d
		}
		return cmp.Compare(a.TechnicianID, b.TechnicianID)
	})
	return slots
}

// startOffset часы дня, уже занятые работой и отгулами до начала слота
func startOffset(s domain.CapacitySnapshot) float64 {
	used := s.CommittedHours + s.TimeOffHours
	if used > s.CapacityHours {
		return s.CapacityHours
	}
	return used
}

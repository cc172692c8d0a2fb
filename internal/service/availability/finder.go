package availability

import (
	"iter"
	"time"

	"github.com/m04kA/SMC-ShopScheduler/internal/domain"
)

// NextQuery параметры поиска ближайшего слота
type NextQuery struct {
	Hours                 float64
	PreferredTechnicianID *int64
	NotBefore             time.Time
	Category              string
}

// NextResult найденный слот
type NextResult struct {
	Slot          domain.Slot
	OffPreference bool // слот найден не у запрошенного техника
}

// Finder политика выбора ближайшего слота.
// Сначала ищет у предпочтительного техника в окне lookAheadDays,
// затем у всех техников в пределах horizonDays.
type Finder struct {
	calculator    *Calculator
	lookAheadDays int
	horizonDays   int
}

// NewFinder создает Finder; нулевые окна заменяются значениями по умолчанию
func NewFinder(calculator *Calculator, lookAheadDays, horizonDays int) *Finder {
	if lookAheadDays <= 0 {
		lookAheadDays = domain.DefaultLookAheadDays
	}
	if horizonDays <= 0 {
		horizonDays = domain.DefaultSearchHorizonDays
	}
	if horizonDays < lookAheadDays {
		horizonDays = lookAheadDays
	}
	return &Finder{calculator: calculator, lookAheadDays: lookAheadDays, horizonDays: horizonDays}
}

// Window диапазон дат, который может просмотреть Next.
// Вызывающий загружает данные именно за этот диапазон.
func (f *Finder) Window(notBefore time.Time) domain.DateRange {
	from := domain.DateOnly(notBefore)
	return domain.DateRange{From: from, To: from.AddDate(0, 0, f.horizonDays-1)}
}

// Next возвращает первый подходящий слот или false, если слотов нет
func (f *Finder) Next(q NextQuery) (NextResult, bool) {
	from := domain.DateOnly(q.NotBefore)

	if q.PreferredTechnicianID != nil {
		preferred := SlotQuery{
			Hours:         q.Hours,
			From:          from,
			To:            from.AddDate(0, 0, f.lookAheadDays-1),
			TechnicianIDs: []int64{*q.PreferredTechnicianID},
			Category:      q.Category,
		}
		if slot, ok := first(f.calculator.FindSlots(preferred), from); ok {
			return NextResult{Slot: slot}, true
		}
	}

	all := SlotQuery{
		Hours:    q.Hours,
		From:     from,
		To:       from.AddDate(0, 0, f.horizonDays-1),
		Category: q.Category,
	}
	slot, ok := first(f.calculator.FindSlots(all), from)
	if !ok {
		return NextResult{}, false
	}

	off := q.PreferredTechnicianID != nil && slot.TechnicianID != *q.PreferredTechnicianID
	return NextResult{Slot: slot, OffPreference: off}, true
}

func first(seq iter.Seq[domain.Slot], notBefore time.Time) (domain.Slot, bool) {
	for slot := range seq {
		if slot.Date.Before(notBefore) {
			continue
		}
		return slot, true
	}
	return domain.Slot{}, false
}

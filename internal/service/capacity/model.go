package capacity

import (
	"time"

	"github.com/m04kA/SMC-ShopScheduler/internal/domain"
)

type dayKey struct {
	technicianID int64
	date         string
}

func keyOf(technicianID int64, date time.Time) dayKey {
	return dayKey{technicianID: technicianID, date: date.Format(domain.DateFormat)}
}

type commitment struct {
	appointmentID int64
	hours         float64
}

// Model чистая модель загрузки техников поверх загруженного набора записей и отгулов.
// Строится заново на каждую операцию и не переиспользуется после изменений.
type Model struct {
	commitments map[dayKey][]commitment
	timeOff     map[int64][]domain.TimeOffEntry
}

// NewModel строит модель из записей и отгулов.
// Отложенные, черновые и архивные записи в загрузку не входят.
func NewModel(appointments []*domain.Appointment, timeOff []domain.TimeOffEntry) *Model {
	m := &Model{
		commitments: make(map[dayKey][]commitment),
		timeOff:     make(map[int64][]domain.TimeOffEntry),
	}
	for _, a := range appointments {
		if !a.CountsTowardCapacity() {
			continue
		}
		k := keyOf(a.Placement.TechnicianID, a.Placement.Date)
		m.commitments[k] = append(m.commitments[k], commitment{appointmentID: a.ID, hours: a.EstimatedHours})
	}
	for _, e := range timeOff {
		m.timeOff[e.TechnicianID] = append(m.timeOff[e.TechnicianID], e)
	}
	return m
}

// Snapshot возвращает загрузку техника на дату
func (m *Model) Snapshot(t *domain.Technician, date time.Time) domain.CapacitySnapshot {
	return m.snapshot(t, date, 0)
}

// SnapshotExcluding возвращает загрузку без учёта указанной записи.
// Используется при перемещении записи, которая уже стоит на этом дне.
func (m *Model) SnapshotExcluding(t *domain.Technician, date time.Time, appointmentID int64) domain.CapacitySnapshot {
	return m.snapshot(t, date, appointmentID)
}

// RemainingHours остаток часов, никогда не отрицательный
func (m *Model) RemainingHours(t *domain.Technician, date time.Time) float64 {
	return m.Snapshot(t, date).Remaining
}

// CommittedHours сумма оценок записей техника на дату
func (m *Model) CommittedHours(technicianID int64, date time.Time) float64 {
	return m.committed(technicianID, date, 0)
}

func (m *Model) snapshot(t *domain.Technician, date time.Time, excludeID int64) domain.CapacitySnapshot {
	date = domain.DateOnly(date)
	capacityHours := t.DailyCapacity(date)
	committed := m.committed(t.ID, date, excludeID)
	off := TimeOffDeduction(capacityHours, t.ID, date, m.timeOff[t.ID])

	raw := capacityHours - committed - off
	remaining := raw
	if remaining < 0 {
		remaining = 0
	}

	return domain.CapacitySnapshot{
		TechnicianID:   t.ID,
		Date:           date,
		CapacityHours:  capacityHours,
		CommittedHours: committed,
		TimeOffHours:   off,
		RawRemaining:   raw,
		Remaining:      remaining,
	}
}

func (m *Model) committed(technicianID int64, date time.Time, excludeID int64) float64 {
	var total float64
	for _, c := range m.commitments[keyOf(technicianID, date)] {
		if excludeID != 0 && c.appointmentID == excludeID {
			continue
		}
		total += c.hours
	}
	return total
}

// TimeOffDeduction часы, вычитаемые из ёмкости дня из-за отгулов.
// Полный день списывает всю ёмкость, частичные отгулы суммируются и ограничиваются ёмкостью.
func TimeOffDeduction(capacityHours float64, technicianID int64, date time.Time, entries []domain.TimeOffEntry) float64 {
	var partial float64
	for i := range entries {
		e := &entries[i]
		if !e.Covers(technicianID, date) {
			continue
		}
		if e.IsFullDay() {
			return capacityHours
		}
		partial += *e.Hours
	}
	if partial > capacityHours {
		return capacityHours
	}
	if partial < 0 {
		return 0
	}
	return partial
}

package domain

import (
	"slices"
	"time"
)

// WeeklyCapacity holds capacity hours indexed by time.Weekday (Sunday = 0).
// A zero entry marks a non-working day.
type WeeklyCapacity [7]float64

// For returns the capacity configured for the given weekday
func (w WeeklyCapacity) For(day time.Weekday) float64 {
	return w[day]
}

// HasWorkingDays returns true if at least one weekday has positive capacity
func (w WeeklyCapacity) HasWorkingDays() bool {
	for _, h := range w {
		if h > 0 {
			return true
		}
	}
	return false
}

// WeekdaysCapacity builds a Monday..Friday calendar with the same hours per day
func WeekdaysCapacity(hours float64) WeeklyCapacity {
	var w WeeklyCapacity
	for d := time.Monday; d <= time.Friday; d++ {
		w[d] = hours
	}
	return w
}

// Technician represents a shop technician who can be assigned appointments
type Technician struct {
	ID         int64
	Name       string
	Categories []string // ordered list of capable service categories
	Capacity   WeeklyCapacity
	Active     bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// DailyCapacity returns the configured capacity for the weekday of date
func (t *Technician) DailyCapacity(date time.Time) float64 {
	return t.Capacity.For(date.Weekday())
}

// WorksOn returns true if the technician is active and has capacity on date
func (t *Technician) WorksOn(date time.Time) bool {
	return t.Active && t.DailyCapacity(date) > 0
}

// IsSchedulable returns true if the technician can receive any work at all
func (t *Technician) IsSchedulable() bool {
	return t.Active && t.Capacity.HasWorkingDays()
}

// CanPerform returns true if the technician handles the category.
// An empty category matches every technician.
func (t *Technician) CanPerform(category string) bool {
	if category == "" {
		return true
	}
	return slices.Contains(t.Categories, category)
}

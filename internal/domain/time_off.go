package domain

import "time"

// TimeOffEntry represents a technician absence over an inclusive date range
type TimeOffEntry struct {
	ID           int64
	TechnicianID int64
	StartDate    time.Time
	EndDate      time.Time
	Hours        *float64 // nil = full day
	Reason       *string
}

// IsFullDay returns true if the entry blocks whole days
func (e *TimeOffEntry) IsFullDay() bool {
	return e.Hours == nil
}

// Covers returns true if the entry applies to the technician on date
func (e *TimeOffEntry) Covers(technicianID int64, date time.Time) bool {
	if e.TechnicianID != technicianID {
		return false
	}
	return NewDateRange(e.StartDate, e.EndDate).Contains(date)
}

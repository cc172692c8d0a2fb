package domain

import "time"

// Slot is a candidate placement produced by the availability calculator.
// It is derived from the currently loaded data and never persisted.
type Slot struct {
	TechnicianID     int64
	Date             time.Time
	StartOffsetHours float64 // hours already committed before this slot starts
	AvailableHours   float64
}

// Placement returns the technician/date pair the slot points at
func (s Slot) Placement() Placement {
	return Placement{TechnicianID: s.TechnicianID, Date: DateOnly(s.Date)}
}

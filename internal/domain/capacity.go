package domain

import "time"

// CapacitySnapshot is the derived load of one technician on one day
type CapacitySnapshot struct {
	TechnicianID   int64
	Date           time.Time
	CapacityHours  float64
	CommittedHours float64
	TimeOffHours   float64
	RawRemaining   float64 // may be negative when oversubscribed
	Remaining      float64 // never negative
}

// IsOversubscribed returns true if commitments exceed what is left after time off
func (s CapacitySnapshot) IsOversubscribed() bool {
	return s.RawRemaining < 0
}

// IsFullyOff returns true for a non-working day or a day entirely covered by time off
func (s CapacitySnapshot) IsFullyOff() bool {
	return s.CapacityHours <= 0 || s.TimeOffHours >= s.CapacityHours
}

// Fits returns true if the requested hours fit into the remaining capacity
func (s CapacitySnapshot) Fits(hours float64) bool {
	return !s.IsFullyOff() && hours <= s.Remaining
}

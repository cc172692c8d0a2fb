package domain

import "time"

// DateOnly truncates t to midnight UTC of the same calendar day.
// All scheduling dates are compared in this form.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether a and b fall on the same calendar day
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// ParseDate parses a YYYY-MM-DD string into a UTC date
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateFormat, s, time.UTC)
}

// DateRange is an inclusive range of calendar days
type DateRange struct {
	From time.Time
	To   time.Time
}

// NewDateRange normalizes both bounds to dates
func NewDateRange(from, to time.Time) DateRange {
	return DateRange{From: DateOnly(from), To: DateOnly(to)}
}

// IsEmpty returns true when To precedes From
func (r DateRange) IsEmpty() bool {
	return DateOnly(r.To).Before(DateOnly(r.From))
}

// Days returns the number of calendar days in the range (0 for an empty range)
func (r DateRange) Days() int {
	if r.IsEmpty() {
		return 0
	}
	return int(DateOnly(r.To).Sub(DateOnly(r.From)).Hours()/24) + 1
}

// Contains reports whether date falls inside the range
func (r DateRange) Contains(date time.Time) bool {
	d := DateOnly(date)
	return !d.Before(DateOnly(r.From)) && !d.After(DateOnly(r.To))
}

// Overlaps reports whether the two inclusive ranges share at least one day
func (r DateRange) Overlaps(other DateRange) bool {
	return !DateOnly(r.From).After(DateOnly(other.To)) && !DateOnly(other.From).After(DateOnly(r.To))
}

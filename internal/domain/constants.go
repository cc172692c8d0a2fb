package domain

// Default configuration values
const (
	DefaultDailyCapacityHours = 8.0
	DefaultLookAheadDays      = 14
	DefaultSearchHorizonDays  = 60
	DefaultMaxRangeDays       = 92
)

// Business validation constants
const (
	MinRequestedHours     = 0.0 // exclusive
	MaxRequestedHours     = 24.0
	MaxHoldReasonLength   = 500
	MaxNotesLength        = 500
	MaxServiceLines       = 50
	MaxLineDescriptionLen = 255
)

// Time format constants
const (
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// PlacedStatuses statuses whose appointments must carry a technician and a date
var PlacedStatuses = []AppointmentStatus{
	StatusScheduled,
	StatusInProgress,
	StatusCompleted,
}

// NonTerminalStatuses statuses from which an appointment may still be deleted
var NonTerminalStatuses = []AppointmentStatus{
	StatusDraft,
	StatusScheduled,
	StatusOnHold,
	StatusInProgress,
}

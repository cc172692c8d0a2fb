package domain

import (
	"cmp"
	"fmt"
	"slices"
	"time"
)

// AppointmentStatus represents the lifecycle state of an appointment
type AppointmentStatus string

const (
	StatusDraft      AppointmentStatus = "draft"
	StatusScheduled  AppointmentStatus = "scheduled"
	StatusOnHold     AppointmentStatus = "on_hold"
	StatusInProgress AppointmentStatus = "in_progress"
	StatusCompleted  AppointmentStatus = "completed"
	StatusArchived   AppointmentStatus = "archived"
)

// IsValid returns true for a known status
func (s AppointmentStatus) IsValid() bool {
	switch s {
	case StatusDraft, StatusScheduled, StatusOnHold, StatusInProgress, StatusCompleted, StatusArchived:
		return true
	}
	return false
}

// IsTerminal returns true for statuses that can no longer change
func (s AppointmentStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusArchived
}

// RequiresPlacement returns true for statuses that must carry a technician and date
func (s AppointmentStatus) RequiresPlacement() bool {
	return slices.Contains(PlacedStatuses, s)
}

// LineStatus is the completion sub-status of a service line
type LineStatus string

const (
	LinePending    LineStatus = "pending"
	LineInProgress LineStatus = "in_progress"
	LineDone       LineStatus = "done"
)

// ServiceLine is a unit of work inside an appointment
type ServiceLine struct {
	ID          int64
	Description string
	Category    string
	Hours       float64
	Status      LineStatus
}

// Placement is the assigned shape of an appointment: a technician on a day
type Placement struct {
	TechnicianID int64
	Date         time.Time
}

// Equal compares technician and calendar day
func (p Placement) Equal(other Placement) bool {
	return p.TechnicianID == other.TechnicianID && SameDay(p.Date, other.Date)
}

func (p Placement) String() string {
	return fmt.Sprintf("technician=%d date=%s", p.TechnicianID, p.Date.Format(DateFormat))
}

// Appointment represents a repair job on the scheduling board.
//
// Placement and HoldReason form a variant keyed on Status:
// on_hold and draft carry no placement, scheduled/in_progress/completed always do.
type Appointment struct {
	ID             int64
	CustomerRef    string
	VehicleRef     string
	Placement      *Placement
	EstimatedHours float64
	Status         AppointmentStatus
	HoldReason     *string
	ParentID       *int64
	Priority       int // card order inside a technician/day column
	Lines          []ServiceLine
	Notes          *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks the status-keyed shape invariant
func (a *Appointment) Validate() error {
	if !a.Status.IsValid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidShape, a.Status)
	}
	switch {
	case a.Status.RequiresPlacement() && a.Placement == nil:
		return fmt.Errorf("%w: status %s requires technician and date", ErrInvalidShape, a.Status)
	case a.Status == StatusOnHold && a.Placement != nil:
		return fmt.Errorf("%w: on_hold appointment cannot keep a placement", ErrInvalidShape)
	case a.Status == StatusOnHold && (a.HoldReason == nil || *a.HoldReason == ""):
		return fmt.Errorf("%w: on_hold appointment requires a reason", ErrInvalidShape)
	case a.Status == StatusDraft && a.Placement != nil:
		return fmt.Errorf("%w: draft appointment cannot keep a placement", ErrInvalidShape)
	case a.Status != StatusOnHold && a.HoldReason != nil:
		return fmt.Errorf("%w: only on_hold appointments carry a hold reason", ErrInvalidShape)
	}
	if a.EstimatedHours < 0 {
		return fmt.Errorf("%w: negative estimated hours", ErrInvalidShape)
	}
	return nil
}

// IsPlacedOn returns true if the appointment occupies the given placement
func (a *Appointment) IsPlacedOn(p Placement) bool {
	return a.Placement != nil && a.Placement.Equal(p)
}

// CountsTowardCapacity returns true if the appointment consumes technician hours.
// Held, draft and archived appointments do not.
func (a *Appointment) CountsTowardCapacity() bool {
	if a.Placement == nil {
		return false
	}
	return a.Status != StatusOnHold && a.Status != StatusArchived && a.Status != StatusDraft
}

// IsActiveChild returns true for a split child that still blocks its parent's deletion
func (a *Appointment) IsActiveChild() bool {
	return a.ParentID != nil && a.Status != StatusArchived
}

// LinesHours returns the sum of service line hours
func (a *Appointment) LinesHours() float64 {
	var total float64
	for _, l := range a.Lines {
		total += l.Hours
	}
	return total
}

// LineIndex returns the index of the line with id or -1
func (a *Appointment) LineIndex(id int64) int {
	return slices.IndexFunc(a.Lines, func(l ServiceLine) bool { return l.ID == id })
}

// PrimaryCategory returns the category of the first service line, if any
func (a *Appointment) PrimaryCategory() string {
	for _, l := range a.Lines {
		if l.Category != "" {
			return l.Category
		}
	}
	return ""
}

// Clone returns a deep copy
func (a *Appointment) Clone() *Appointment {
	if a == nil {
		return nil
	}
	c := *a
	if a.Placement != nil {
		p := *a.Placement
		c.Placement = &p
	}
	if a.HoldReason != nil {
		r := *a.HoldReason
		c.HoldReason = &r
	}
	if a.ParentID != nil {
		id := *a.ParentID
		c.ParentID = &id
	}
	if a.Notes != nil {
		n := *a.Notes
		c.Notes = &n
	}
	c.Lines = slices.Clone(a.Lines)
	return &c
}

// AppointmentFilter фильтр для выборки записей с доски
type AppointmentFilter struct {
	Range           *DateRange // nil = без ограничения по датам
	TechnicianIDs   []int64    // пусто = все техники
	ParentID        *int64     // только дочерние записи указанного родителя
	Statuses        []AppointmentStatus
	IncludeUnplaced bool // включать черновики и отложенные (без техника и даты)
}

// Matches applies the filter to a single appointment
func (f AppointmentFilter) Matches(a *Appointment) bool {
	if f.ParentID != nil && (a.ParentID == nil || *a.ParentID != *f.ParentID) {
		return false
	}
	if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, a.Status) {
		return false
	}
	if a.Placement == nil {
		return f.IncludeUnplaced || f.ParentID != nil
	}
	if len(f.TechnicianIDs) > 0 && !slices.Contains(f.TechnicianIDs, a.Placement.TechnicianID) {
		return false
	}
	if f.Range != nil && !f.Range.Contains(a.Placement.Date) {
		return false
	}
	return true
}

// SortForBoard orders appointments by date, technician, priority and id
func SortForBoard(list []*Appointment) {
	slices.SortStableFunc(list, func(a, b *Appointment) int {
		switch {
		case a.Placement == nil && b.Placement != nil:
			return 1
		case a.Placement != nil && b.Placement == nil:
			return -1
		case a.Placement != nil && b.Placement != nil:
			if c := a.Placement.Date.Compare(b.Placement.Date); c != 0 {
				return c
			}
			if a.Placement.TechnicianID != b.Placement.TechnicianID {
				return cmp.Compare(a.Placement.TechnicianID, b.Placement.TechnicianID)
			}
		}
		if a.Priority != b.Priority {
			return a.Priority - b.Priority
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

package domain

import "slices"

// AppointmentPatch is a partial update of an appointment.
// Nil pointer fields are left untouched; Clear* flags null the column.
type AppointmentPatch struct {
	Status          *AppointmentStatus
	Placement       *Placement
	ClearPlacement  bool
	HoldReason      *string
	ClearHoldReason bool
	ClearParent     bool
	EstimatedHours  *float64
	Priority        *int
	Lines           []ServiceLine
	ReplaceLines    bool
	Notes           *string
}

// IsEmpty returns true if the patch changes nothing
func (p AppointmentPatch) IsEmpty() bool {
	return p.Status == nil && p.Placement == nil && !p.ClearPlacement &&
		p.HoldReason == nil && !p.ClearHoldReason && !p.ClearParent &&
		p.EstimatedHours == nil && p.Priority == nil && !p.ReplaceLines && p.Notes == nil
}

// Apply writes the patch into a
func (p AppointmentPatch) Apply(a *Appointment) {
	if p.Status != nil {
		a.Status = *p.Status
	}
	if p.ClearPlacement {
		a.Placement = nil
	}
	if p.Placement != nil {
		pl := Placement{TechnicianID: p.Placement.TechnicianID, Date: DateOnly(p.Placement.Date)}
		a.Placement = &pl
	}
	if p.ClearHoldReason {
		a.HoldReason = nil
	}
	if p.HoldReason != nil {
		r := *p.HoldReason
		a.HoldReason = &r
	}
	if p.ClearParent {
		a.ParentID = nil
	}
	if p.EstimatedHours != nil {
		a.EstimatedHours = *p.EstimatedHours
	}
	if p.Priority != nil {
		a.Priority = *p.Priority
	}
	if p.ReplaceLines {
		a.Lines = slices.Clone(p.Lines)
	}
	if p.Notes != nil {
		n := *p.Notes
		a.Notes = &n
	}
}

// DiffPatch builds the minimal patch turning before into after.
// Parent references can only be cleared through a patch, never re-pointed.
func DiffPatch(before, after *Appointment) AppointmentPatch {
	var p AppointmentPatch
	if before.Status != after.Status {
		s := after.Status
		p.Status = &s
	}
	switch {
	case after.Placement == nil && before.Placement != nil:
		p.ClearPlacement = true
	case after.Placement != nil && (before.Placement == nil || !before.Placement.Equal(*after.Placement)):
		pl := *after.Placement
		p.Placement = &pl
	}
	switch {
	case after.HoldReason == nil && before.HoldReason != nil:
		p.ClearHoldReason = true
	case after.HoldReason != nil && (before.HoldReason == nil || *before.HoldReason != *after.HoldReason):
		r := *after.HoldReason
		p.HoldReason = &r
	}
	if after.ParentID == nil && before.ParentID != nil {
		p.ClearParent = true
	}
	if before.EstimatedHours != after.EstimatedHours {
		h := after.EstimatedHours
		p.EstimatedHours = &h
	}
	if before.Priority != after.Priority {
		pr := after.Priority
		p.Priority = &pr
	}
	if !slices.Equal(before.Lines, after.Lines) {
		p.ReplaceLines = true
		p.Lines = slices.Clone(after.Lines)
	}
	if after.Notes != nil && (before.Notes == nil || *before.Notes != *after.Notes) {
		n := *after.Notes
		p.Notes = &n
	}
	return p
}

// Divergence lists the fields in which persisted differs from expected.
// Line identifiers are only compared where expected already had one.
func Divergence(expected, persisted *Appointment) []string {
	var fields []string
	if expected.Status != persisted.Status {
		fields = append(fields, "status")
	}
	if !placementEqual(expected.Placement, persisted.Placement) {
		fields = append(fields, "placement")
	}
	if !stringPtrEqual(expected.HoldReason, persisted.HoldReason) {
		fields = append(fields, "hold_reason")
	}
	if !int64PtrEqual(expected.ParentID, persisted.ParentID) {
		fields = append(fields, "parent_id")
	}
	if expected.EstimatedHours != persisted.EstimatedHours {
		fields = append(fields, "estimated_hours")
	}
	if expected.Priority != persisted.Priority {
		fields = append(fields, "priority")
	}
	if !linesEquivalent(expected.Lines, persisted.Lines) {
		fields = append(fields, "lines")
	}
	return fields
}

func placementEqual(a, b *Placement) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

func stringPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func int64PtrEqual(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func linesEquivalent(expected, persisted []ServiceLine) bool {
	if len(expected) != len(persisted) {
		return false
	}
	for i := range expected {
		e, p := expected[i], persisted[i]
		if e.ID != 0 && e.ID != p.ID {
			return false
		}
		if e.Description != p.Description || e.Category != p.Category || e.Hours != p.Hours || e.Status != p.Status {
			return false
		}
	}
	return true
}

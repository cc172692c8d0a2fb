package lifecycle

import (
	"fmt"
	"slices"

	"github.com/m04kA/SMC-ShopScheduler/internal/domain"
)

// SplitPart строки работ, уходящие в одну дочернюю запись
type SplitPart struct {
	LineIDs   []int64
	Placement *domain.Placement // nil = место родителя (или отложено вместе с ним)
}

// SplitResult результат разделения: обновлённый родитель и новые дети без ID
type SplitResult struct {
	Parent   *domain.Appointment
	Children []*domain.Appointment
}

// FullySplit возвращает true, если все строки ушли к детям
func (r *SplitResult) FullySplit() bool {
	return r.Parent.Status == domain.StatusArchived
}

// Split делит строки работ записи на дочерние записи.
// Если ушли все строки, родитель архивируется с нулевыми часами,
// иначе остаётся в своём статусе с часами оставшихся строк.
func (m *Machine) Split(parent *domain.Appointment, parts []SplitPart) (*SplitResult, error) {
	if _, err := m.Target(parent.Status, EventSplit); err != nil {
		return nil, err
	}
	if len(parts) == 0 {
		return nil, ErrNothingToSplit
	}

	moved := make(map[int64]struct{})
	for i, part := range parts {
		if len(part.LineIDs) == 0 {
			return nil, fmt.Errorf("%w: part %d has no lines", ErrNothingToSplit, i)
		}
		for _, id := range part.LineIDs {
			if parent.LineIndex(id) < 0 {
				return nil, fmt.Errorf("%w: line id=%d does not belong to appointment id=%d", ErrSplitRejected, id, parent.ID)
			}
			if _, dup := moved[id]; dup {
				return nil, fmt.Errorf("%w: line id=%d selected twice", ErrSplitRejected, id)
			}
			moved[id] = struct{}{}
		}
	}

	children := make([]*domain.Appointment, 0, len(parts))
	for _, part := range parts {
		children = append(children, newChild(parent, part))
	}

	next := parent.Clone()
	next.Lines = slices.DeleteFunc(next.Lines, func(l domain.ServiceLine) bool {
		_, ok := moved[l.ID]
		return ok
	})
	if len(next.Lines) == 0 {
		next.Status = domain.StatusArchived
		next.EstimatedHours = 0
		next.HoldReason = nil
	} else {
		next.EstimatedHours = next.LinesHours()
	}

	return &SplitResult{Parent: next, Children: children}, nil
}

func newChild(parent *domain.Appointment, part SplitPart) *domain.Appointment {
	parentID := parent.ID
	child := &domain.Appointment{
		CustomerRef: parent.CustomerRef,
		VehicleRef:  parent.VehicleRef,
		ParentID:    &parentID,
		Priority:    parent.Priority,
	}

	for _, id := range part.LineIDs {
		line := parent.Lines[parent.LineIndex(id)]
		line.ID = 0
		child.Lines = append(child.Lines, line)
	}
	child.EstimatedHours = child.LinesHours()

	switch {
	case part.Placement != nil:
		child.Status = domain.StatusScheduled
		child.Placement = &domain.Placement{TechnicianID: part.Placement.TechnicianID, Date: domain.DateOnly(part.Placement.Date)}
	case parent.Status == domain.StatusOnHold:
		child.Status = domain.StatusOnHold
		reason := *parent.HoldReason
		child.HoldReason = &reason
	default:
		child.Status = domain.StatusScheduled
		p := *parent.Placement
		child.Placement = &p
	}
	return child
}

// Merge возвращает строки и часы дочерней записи в родителя.
// Начатые дети и дети со своими активными детьми не сливаются.
func (m *Machine) Merge(parent, child *domain.Appointment, grandchildren []*domain.Appointment) (*domain.Appointment, error) {
	if child.ParentID == nil || *child.ParentID != parent.ID {
		return nil, fmt.Errorf("%w: appointment id=%d is not a child of id=%d", ErrSplitRejected, child.ID, parent.ID)
	}
	if _, err := m.Target(parent.Status, EventMerge); err != nil {
		return nil, err
	}
	switch child.Status {
	case domain.StatusDraft, domain.StatusScheduled, domain.StatusOnHold:
	default:
		return nil, fmt.Errorf("%w: cannot merge %s child id=%d", ErrInvalidTransition, child.Status, child.ID)
	}
	for _, g := range grandchildren {
		if g.IsActiveChild() {
			return nil, fmt.Errorf("%w: child id=%d has active child id=%d", ErrActiveChildren, child.ID, g.ID)
		}
	}

	next := parent.Clone()
	for _, l := range child.Lines {
		l.ID = 0
		l.Status = domain.LinePending
		next.Lines = append(next.Lines, l)
	}
	next.EstimatedHours = next.LinesHours()
	return next, nil
}

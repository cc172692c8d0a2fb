package scheduling

import (
	"github.com/m04kA/SMC-ShopScheduler/internal/domain"
)

// AppointmentEvent полезная нагрузка событий об изменении записи
type AppointmentEvent struct {
	ID             int64   `json:"id"`
	Status         string  `json:"status"`
	TechnicianID   *int64  `json:"technician_id,omitempty"`
	Date           *string `json:"date,omitempty"`
	EstimatedHours float64 `json:"estimated_hours"`
	ParentID       *int64  `json:"parent_id,omitempty"`
	Priority       int     `json:"priority"`
	HoldReason     *string `json:"hold_reason,omitempty"`
}

func newAppointmentEvent(a *domain.Appointment) AppointmentEvent {
	e := AppointmentEvent{
		ID:             a.ID,
		Status:         string(a.Status),
		EstimatedHours: a.EstimatedHours,
		ParentID:       a.ParentID,
		Priority:       a.Priority,
		HoldReason:     a.HoldReason,
	}
	if a.Placement != nil {
		tech := a.Placement.TechnicianID
		date := a.Placement.Date.Format(domain.DateFormat)
		e.TechnicianID = &tech
		e.Date = &date
	}
	return e
}

func (c *Coordinator) publish(eventType string, a *domain.Appointment) {
	if err := c.publisher.PublishJSON(eventType, a.ID, newAppointmentEvent(a)); err != nil {
		c.logger.Error("Publish: failed to publish %s for appointment=%d: %v", eventType, a.ID, err)
	}
}

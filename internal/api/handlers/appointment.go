package handlers

import (
	"time"

	"github.com/m04kA/SMC-ShopScheduler/internal/domain"
	"github.com/m04kA/SMC-ShopScheduler/internal/service/lifecycle"
)

// transitions подсказывает клиенту доступные действия над записью
var transitions = lifecycle.NewMachine()

// LineResponse строка работ
type LineResponse struct {
	ID          int64   `json:"id"`
	Description string  `json:"description"`
	Category    string  `json:"category,omitempty"`
	Hours       float64 `json:"hours"`
	Status      string  `json:"status"`
}

// AppointmentResponse запись на доске
type AppointmentResponse struct {
	ID             int64          `json:"id"`
	CustomerRef    string         `json:"customerRef"`
	VehicleRef     string         `json:"vehicleRef"`
	TechnicianID   *int64         `json:"technicianId,omitempty"`
	Date           *string        `json:"date,omitempty"`
	EstimatedHours float64        `json:"estimatedHours"`
	Status         string         `json:"status"`
	HoldReason     *string        `json:"holdReason,omitempty"`
	ParentID       *int64         `json:"parentId,omitempty"`
	Priority       int            `json:"priority"`
	Lines          []LineResponse `json:"lines"`
	Notes          *string        `json:"notes,omitempty"`
	Actions        []string       `json:"actions"`
	CreatedAt      string         `json:"createdAt"`
	UpdatedAt      string         `json:"updatedAt"`
}

// SnapshotResponse загрузка техника на день
type SnapshotResponse struct {
	TechnicianID     int64   `json:"technicianId"`
	Date             string  `json:"date"`
	CapacityHours    float64 `json:"capacityHours"`
	CommittedHours   float64 `json:"committedHours"`
	TimeOffHours     float64 `json:"timeOffHours"`
	RemainingHours   float64 `json:"remainingHours"`
	RawRemaining     float64 `json:"rawRemainingHours"`
	Oversubscribed   bool    `json:"oversubscribed"`
	FullyUnavailable bool    `json:"fullyUnavailable"`
}

// SlotResponse свободное место
type SlotResponse struct {
	TechnicianID     int64   `json:"technicianId"`
	Date             string  `json:"date"`
	StartOffsetHours float64 `json:"startOffsetHours"`
	AvailableHours   float64 `json:"availableHours"`
}

// NewAppointmentResponse конвертирует запись в HTTP модель
func NewAppointmentResponse(a *domain.Appointment) *AppointmentResponse {
	resp := &AppointmentResponse{
		ID:             a.ID,
		CustomerRef:    a.CustomerRef,
		VehicleRef:     a.VehicleRef,
		EstimatedHours: a.EstimatedHours,
		Status:         string(a.Status),
		HoldReason:     a.HoldReason,
		ParentID:       a.ParentID,
		Priority:       a.Priority,
		Lines:          make([]LineResponse, 0, len(a.Lines)),
		Notes:          a.Notes,
		CreatedAt:      a.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      a.UpdatedAt.Format(time.RFC3339),
	}
	if a.Placement != nil {
		tech := a.Placement.TechnicianID
		date := a.Placement.Date.Format(domain.DateFormat)
		resp.TechnicianID = &tech
		resp.Date = &date
	}
	events := transitions.Events(a.Status)
	resp.Actions = make([]string, 0, len(events))
	for _, ev := range events {
		resp.Actions = append(resp.Actions, string(ev))
	}
	for _, l := range a.Lines {
		resp.Lines = append(resp.Lines, LineResponse{
			ID:          l.ID,
			Description: l.Description,
			Category:    l.Category,
			Hours:       l.Hours,
			Status:      string(l.Status),
		})
	}
	return resp
}

// NewAppointmentList конвертирует список записей
func NewAppointmentList(list []*domain.Appointment) []*AppointmentResponse {
	result := make([]*AppointmentResponse, 0, len(list))
	for _, a := range list {
		result = append(result, NewAppointmentResponse(a))
	}
	return result
}

// NewSnapshotResponse конвертирует загрузку техника
func NewSnapshotResponse(s domain.CapacitySnapshot) SnapshotResponse {
	return SnapshotResponse{
		TechnicianID:     s.TechnicianID,
		Date:             s.Date.Format(domain.DateFormat),
		CapacityHours:    s.CapacityHours,
		CommittedHours:   s.CommittedHours,
		TimeOffHours:     s.TimeOffHours,
		RemainingHours:   s.Remaining,
		RawRemaining:     s.RawRemaining,
		Oversubscribed:   s.IsOversubscribed(),
		FullyUnavailable: s.IsFullyOff(),
	}
}

// NewSlotResponse конвертирует слот
func NewSlotResponse(s domain.Slot) SlotResponse {
	return SlotResponse{
		TechnicianID:     s.TechnicianID,
		Date:             s.Date.Format(domain.DateFormat),
		StartOffsetHours: s.StartOffsetHours,
		AvailableHours:   s.AvailableHours,
	}
}

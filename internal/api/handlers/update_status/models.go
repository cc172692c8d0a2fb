package update_status

import (
	"github.com/m04kA/SMC-ShopScheduler/internal/api/handlers"
)

// Действия над статусом записи
const (
	ActionHold     = "hold"
	ActionResume   = "resume"
	ActionStart    = "start"
	ActionComplete = "complete"
)

// TransitionRequest HTTP модель перехода статуса.
// Для resume обязательны technicianId и date.
type TransitionRequest struct {
	Action        string  `json:"action"`
	Reason        string  `json:"reason"`
	TechnicianID  *int64  `json:"technicianId"`
	Date          *string `json:"date"`
	AllowOverbook bool    `json:"allowOverbook"`
}

// TransitionResponse HTTP модель ответа
type TransitionResponse struct {
	Appointment *handlers.AppointmentResponse `json:"appointment"`
	Overbooked  bool                          `json:"overbooked"`
}

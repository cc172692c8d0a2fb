package create_appointment

import (
	"fmt"

	"github.com/m04kA/SMC-ShopScheduler/internal/api/handlers"
	"github.com/m04kA/SMC-ShopScheduler/internal/usecase/scheduling"
)

// LineRequest строка работ
type LineRequest struct {
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Hours       float64 `json:"hours"`
}

// CreateAppointmentRequest HTTP модель запроса на создание записи.
// Без book создаётся черновик.
type CreateAppointmentRequest struct {
	CustomerRef    string        `json:"customerRef"`
	VehicleRef     string        `json:"vehicleRef"`
	EstimatedHours float64       `json:"estimatedHours"`
	Lines          []LineRequest `json:"lines"`
	Priority       int           `json:"priority"`
	Notes          *string       `json:"notes"`

	Book                  bool    `json:"book"`
	TechnicianID          *int64  `json:"technicianId"`
	Date                  *string `json:"date"`
	PreferredTechnicianID *int64  `json:"preferredTechnicianId"`
	NotBefore             *string `json:"notBefore"`
	AllowOverbook         bool    `json:"allowOverbook"`
}

// CreateAppointmentResponse HTTP модель ответа
type CreateAppointmentResponse struct {
	Appointment   *handlers.AppointmentResponse `json:"appointment"`
	Overbooked    bool                          `json:"overbooked"`
	OffPreference bool                          `json:"offPreference"`
}

// ToDraftRequest преобразует HTTP запрос в запрос на черновик
func (r *CreateAppointmentRequest) ToDraftRequest() *scheduling.DraftRequest {
	lines := make([]scheduling.LineInput, 0, len(r.Lines))
	for _, l := range r.Lines {
		lines = append(lines, scheduling.LineInput{
			Description: l.Description,
			Category:    l.Category,
			Hours:       l.Hours,
		})
	}
	return &scheduling.DraftRequest{
		CustomerRef:    r.CustomerRef,
		VehicleRef:     r.VehicleRef,
		EstimatedHours: r.EstimatedHours,
		Lines:          lines,
		Priority:       r.Priority,
		Notes:          r.Notes,
	}
}

// ToBookRequest преобразует HTTP запрос в запрос на постановку
func (r *CreateAppointmentRequest) ToBookRequest() (*scheduling.BookRequest, error) {
	date, err := handlers.ParseOptionalDate(r.Date)
	if err != nil {
		return nil, fmt.Errorf("date: %w", err)
	}
	notBefore, err := handlers.ParseOptionalDate(r.NotBefore)
	if err != nil {
		return nil, fmt.Errorf("notBefore: %w", err)
	}
	return &scheduling.BookRequest{
		DraftRequest:          *r.ToDraftRequest(),
		TechnicianID:          r.TechnicianID,
		Date:                  date,
		PreferredTechnicianID: r.PreferredTechnicianID,
		NotBefore:             notBefore,
		AllowOverbook:         r.AllowOverbook,
	}, nil
}

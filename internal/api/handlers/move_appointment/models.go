package move_appointment

import (
	"fmt"

	"github.com/m04kA/SMC-ShopScheduler/internal/api/handlers"
	"github.com/m04kA/SMC-ShopScheduler/internal/domain"
	"github.com/m04kA/SMC-ShopScheduler/internal/usecase/scheduling"
)

// MoveRequest HTTP модель перетаскивания карточки
type MoveRequest struct {
	TechnicianID  int64  `json:"technicianId"`
	Date          string `json:"date"`
	Position      *int   `json:"position"`
	AllowOverbook bool   `json:"allowOverbook"`
}

// ReorderRequest HTTP модель смены позиции в колонке
type ReorderRequest struct {
	Position int `json:"position"`
}

// MoveResponse HTTP модель ответа
type MoveResponse struct {
	Appointment *handlers.AppointmentResponse `json:"appointment"`
	Overbooked  bool                          `json:"overbooked"`
	Capacity    handlers.SnapshotResponse     `json:"capacity"`
}

// ToUseCaseRequest преобразует HTTP запрос в запрос use case
func (r *MoveRequest) ToUseCaseRequest(id int64) (scheduling.DropRequest, error) {
	date, err := domain.ParseDate(r.Date)
	if err != nil {
		return scheduling.DropRequest{}, fmt.Errorf("date: %w", err)
	}
	return scheduling.DropRequest{
		AppointmentID: id,
		TechnicianID:  r.TechnicianID,
		Date:          date,
		Position:      r.Position,
		AllowOverbook: r.AllowOverbook,
	}, nil
}

// FromUseCaseResponse преобразует результат назначения в HTTP модель
func FromUseCaseResponse(result *scheduling.AssignResult) *MoveResponse {
	return &MoveResponse{
		Appointment: handlers.NewAppointmentResponse(result.Appointment),
		Overbooked:  result.Overbooked,
		Capacity:    handlers.NewSnapshotResponse(result.Snapshot),
	}
}

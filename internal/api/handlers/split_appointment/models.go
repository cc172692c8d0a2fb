package split_appointment

import (
	"fmt"

	"github.com/m04kA/SMC-ShopScheduler/internal/api/handlers"
	"github.com/m04kA/SMC-ShopScheduler/internal/usecase/scheduling"
)

// SplitPart строки работ для одной дочерней записи
type SplitPart struct {
	LineIDs      []int64 `json:"lineIds"`
	TechnicianID *int64  `json:"technicianId"`
	Date         *string `json:"date"`
}

// SplitRequest HTTP модель разделения записи
type SplitRequest struct {
	Parts         []SplitPart `json:"parts"`
	AllowOverbook bool        `json:"allowOverbook"`
}

// SplitResponse HTTP модель ответа
type SplitResponse struct {
	Parent     *handlers.AppointmentResponse   `json:"parent"`
	Children   []*handlers.AppointmentResponse `json:"children"`
	Overbooked bool                            `json:"overbooked"`
}

// MergeRequest HTTP модель слияния
type MergeRequest struct {
	ChildID       int64 `json:"childId"`
	AllowOverbook bool  `json:"allowOverbook"`
}

// ToUseCaseRequest преобразует HTTP запрос в запрос use case
func (r *SplitRequest) ToUseCaseRequest(id int64) (*scheduling.SplitRequest, error) {
	parts := make([]scheduling.SplitPartRequest, 0, len(r.Parts))
	for i, p := range r.Parts {
		date, err := handlers.ParseOptionalDate(p.Date)
		if err != nil {
			return nil, fmt.Errorf("parts[%d].date: %w", i, err)
		}
		parts = append(parts, scheduling.SplitPartRequest{
			LineIDs:      p.LineIDs,
			TechnicianID: p.TechnicianID,
			Date:         date,
		})
	}
	return &scheduling.SplitRequest{
		AppointmentID: id,
		Parts:         parts,
		AllowOverbook: r.AllowOverbook,
	}, nil
}

// FromUseCaseResponse преобразует результат разделения в HTTP модель
func FromUseCaseResponse(result *scheduling.SplitResult) *SplitResponse {
	return &SplitResponse{
		Parent:     handlers.NewAppointmentResponse(result.Parent),
		Children:   handlers.NewAppointmentList(result.Children),
		Overbooked: result.Overbooked,
	}
}

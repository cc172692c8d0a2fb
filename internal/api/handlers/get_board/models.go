package get_board

import (
	"github.com/m04kA/SMC-ShopScheduler/internal/api/handlers"
	"github.com/m04kA/SMC-ShopScheduler/internal/domain"
	"github.com/m04kA/SMC-ShopScheduler/internal/usecase/scheduling"
)

// TechnicianResponse техник на доске
type TechnicianResponse struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	Categories    []string   `json:"categories"`
	CapacityHours [7]float64 `json:"capacityHours"` // с воскресенья
	Active        bool       `json:"active"`
}

// ColumnResponse колонка техника на один день
type ColumnResponse struct {
	TechnicianID int64                           `json:"technicianId"`
	Date         string                          `json:"date"`
	Capacity     handlers.SnapshotResponse       `json:"capacity"`
	Appointments []*handlers.AppointmentResponse `json:"appointments"`
}

// BoardResponse HTTP модель доски
type BoardResponse struct {
	From        string                          `json:"from"`
	To          string                          `json:"to"`
	Technicians []TechnicianResponse            `json:"technicians"`
	Columns     []ColumnResponse                `json:"columns"`
	Held        []*handlers.AppointmentResponse `json:"held"`
	Drafts      []*handlers.AppointmentResponse `json:"drafts"`
	Repaired    []int64                         `json:"repaired,omitempty"`
}

// FromUseCaseResponse преобразует снимок доски в HTTP модель
func FromUseCaseResponse(snap *scheduling.BoardSnapshot) *BoardResponse {
	resp := &BoardResponse{
		From:        snap.Range.From.Format(domain.DateFormat),
		To:          snap.Range.To.Format(domain.DateFormat),
		Technicians: make([]TechnicianResponse, 0, len(snap.Technicians)),
		Columns:     make([]ColumnResponse, 0, len(snap.Columns)),
		Held:        handlers.NewAppointmentList(snap.Held),
		Drafts:      handlers.NewAppointmentList(snap.Drafts),
		Repaired:    snap.Repaired,
	}

	for _, t := range snap.Technicians {
		resp.Technicians = append(resp.Technicians, TechnicianResponse{
			ID:            t.ID,
			Name:          t.Name,
			Categories:    t.Categories,
			CapacityHours: t.Capacity,
			Active:        t.Active,
		})
	}

	for _, col := range snap.Columns {
		resp.Columns = append(resp.Columns, ColumnResponse{
			TechnicianID: col.TechnicianID,
			Date:         col.Date.Format(domain.DateFormat),
			Capacity:     handlers.NewSnapshotResponse(col.Snapshot),
			Appointments: handlers.NewAppointmentList(col.Appointments),
		})
	}

	return resp
}

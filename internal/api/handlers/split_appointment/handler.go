package split_appointment

import (
	"net/http"

	"github.com/m04kA/SMC-ShopScheduler/internal/api/handlers"
	"github.com/m04kA/SMC-ShopScheduler/internal/usecase/scheduling"
)

const (
	msgInvalidAppointmentID = "некорректный ID записи"
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgInvalidDate          = "некорректный формат даты, ожидается YYYY-MM-DD"
)

type Handler struct {
	useCase AppointmentSplitter
	logger  Logger
}

func NewHandler(useCase AppointmentSplitter, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/appointments/{appointmentId}/split
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathID(r, "appointmentId")
	if err != nil {
		h.logger.Warn("POST /appointments/{id}/split - Invalid appointment ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidAppointmentID)
		return
	}

	var req SplitRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /appointments/{id}/split - Invalid request body: appointment_id=%d, error=%v", id, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(id)
	if err != nil {
		h.logger.Warn("POST /appointments/{id}/split - Invalid date: appointment_id=%d, error=%v", id, err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.useCase.Split(r.Context(), useCaseReq)
	if err != nil {
		handlers.RespondSchedulingError(w, h.logger, "POST /appointments/{id}/split", err)
		return
	}

	h.logger.Info("POST /appointments/{id}/split - Appointment split: appointment_id=%d, children=%d, overbooked=%t",
		id, len(result.Children), result.Overbooked)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}

// HandleMerge POST /api/v1/appointments/{appointmentId}/merge
func (h *Handler) HandleMerge(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathID(r, "appointmentId")
	if err != nil {
		h.logger.Warn("POST /appointments/{id}/merge - Invalid appointment ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidAppointmentID)
		return
	}

	var req MergeRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /appointments/{id}/merge - Invalid request body: appointment_id=%d, error=%v", id, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	parent, err := h.useCase.Merge(r.Context(), scheduling.MergeRequest{
		ParentID:      id,
		ChildID:       req.ChildID,
		AllowOverbook: req.AllowOverbook,
	})
	if err != nil {
		handlers.RespondSchedulingError(w, h.logger, "POST /appointments/{id}/merge", err)
		return
	}

	h.logger.Info("POST /appointments/{id}/merge - Child merged: parent_id=%d, child_id=%d, hours=%.2f",
		id, req.ChildID, parent.EstimatedHours)
	handlers.RespondJSON(w, http.StatusOK, handlers.NewAppointmentResponse(parent))
}

package move_appointment

import (
	"net/http"

	"github.com/m04kA/SMC-ShopScheduler/internal/api/handlers"
)

const (
	msgInvalidAppointmentID = "некорректный ID записи"
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgInvalidDate          = "некорректный формат даты, ожидается YYYY-MM-DD"
)

type Handler struct {
	useCase AppointmentMover
	logger  Logger
}

func NewHandler(useCase AppointmentMover, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle PUT /api/v1/appointments/{appointmentId}/placement
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathID(r, "appointmentId")
	if err != nil {
		h.logger.Warn("PUT /appointments/{id}/placement - Invalid appointment ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidAppointmentID)
		return
	}

	var req MoveRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /appointments/{id}/placement - Invalid request body: appointment_id=%d, error=%v", id, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(id)
	if err != nil {
		h.logger.Warn("PUT /appointments/{id}/placement - Invalid date: appointment_id=%d, error=%v", id, err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.useCase.Drop(r.Context(), useCaseReq)
	if err != nil {
		handlers.RespondSchedulingError(w, h.logger, "PUT /appointments/{id}/placement", err)
		return
	}

	h.logger.Info("PUT /appointments/{id}/placement - Appointment moved: appointment_id=%d, technician_id=%d, date=%s, overbooked=%t",
		id, req.TechnicianID, req.Date, result.Overbooked)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}

// HandleReorder PUT /api/v1/appointments/{appointmentId}/position
func (h *Handler) HandleReorder(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathID(r, "appointmentId")
	if err != nil {
		h.logger.Warn("PUT /appointments/{id}/position - Invalid appointment ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidAppointmentID)
		return
	}

	var req ReorderRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /appointments/{id}/position - Invalid request body: appointment_id=%d, error=%v", id, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	appt, err := h.useCase.Reorder(r.Context(), id, req.Position)
	if err != nil {
		handlers.RespondSchedulingError(w, h.logger, "PUT /appointments/{id}/position", err)
		return
	}

	h.logger.Info("PUT /appointments/{id}/position - Appointment reordered: appointment_id=%d, priority=%d", id, appt.Priority)
	handlers.RespondJSON(w, http.StatusOK, handlers.NewAppointmentResponse(appt))
}

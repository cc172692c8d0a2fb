package delete_appointment

import (
	"net/http"
	"strconv"

	"github.com/m04kA/SMC-ShopScheduler/internal/api/handlers"
)

const (
	msgInvalidAppointmentID = "некорректный ID записи"
	msgInvalidConfirm       = "параметр confirm должен быть true или false"
)

type Handler struct {
	useCase AppointmentDeleter
	logger  Logger
}

func NewHandler(useCase AppointmentDeleter, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle DELETE /api/v1/appointments/{appointmentId}
// Query params: confirm=true (удаление необратимо и требует подтверждения)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathID(r, "appointmentId")
	if err != nil {
		h.logger.Warn("DELETE /appointments/{id} - Invalid appointment ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidAppointmentID)
		return
	}

	confirmed := false
	if raw := r.URL.Query().Get("confirm"); raw != "" {
		confirmed, err = strconv.ParseBool(raw)
		if err != nil {
			h.logger.Warn("DELETE /appointments/{id} - Invalid confirm: appointment_id=%d, confirm=%q", id, raw)
			handlers.RespondBadRequest(w, msgInvalidConfirm)
			return
		}
	}

	if err := h.useCase.Delete(r.Context(), id, confirmed); err != nil {
		handlers.RespondSchedulingError(w, h.logger, "DELETE /appointments/{id}", err)
		return
	}

	h.logger.Info("DELETE /appointments/{id} - Appointment deleted: appointment_id=%d", id)
	handlers.RespondNoContent(w)
}

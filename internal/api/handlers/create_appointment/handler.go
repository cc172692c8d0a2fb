package create_appointment

import (
	"net/http"

	"github.com/m04kA/SMC-ShopScheduler/internal/api/handlers"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidDate        = "некорректный формат даты, ожидается YYYY-MM-DD"
)

type Handler struct {
	useCase AppointmentCreator
	logger  Logger
}

func NewHandler(useCase AppointmentCreator, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/appointments
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req CreateAppointmentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /appointments - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	// Черновик без места на доске
	if !req.Book {
		appt, err := h.useCase.CreateDraft(r.Context(), req.ToDraftRequest())
		if err != nil {
			handlers.RespondSchedulingError(w, h.logger, "POST /appointments", err)
			return
		}

		h.logger.Info("POST /appointments - Draft created: appointment_id=%d, hours=%.2f", appt.ID, appt.EstimatedHours)
		handlers.RespondJSON(w, http.StatusCreated, &CreateAppointmentResponse{
			Appointment: handlers.NewAppointmentResponse(appt),
		})
		return
	}

	bookReq, err := req.ToBookRequest()
	if err != nil {
		h.logger.Warn("POST /appointments - Invalid date: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.useCase.BookNew(r.Context(), bookReq)
	if err != nil {
		handlers.RespondSchedulingError(w, h.logger, "POST /appointments", err)
		return
	}

	h.logger.Info("POST /appointments - Appointment booked: appointment_id=%d, placement=%s, overbooked=%t, off_preference=%t",
		result.Appointment.ID, result.Appointment.Placement, result.Overbooked, result.OffPreference)
	handlers.RespondJSON(w, http.StatusCreated, &CreateAppointmentResponse{
		Appointment:   handlers.NewAppointmentResponse(result.Appointment),
		Overbooked:    result.Overbooked,
		OffPreference: result.OffPreference,
	})
}

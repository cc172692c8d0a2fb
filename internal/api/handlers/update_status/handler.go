package update_status

import (
	"net/http"

	"github.com/m04kA/SMC-ShopScheduler/internal/api/handlers"
	"github.com/m04kA/SMC-ShopScheduler/internal/domain"
	"github.com/m04kA/SMC-ShopScheduler/internal/usecase/scheduling"
)

const (
	msgInvalidAppointmentID = "некорректный ID записи"
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgUnknownAction        = "неизвестное действие, ожидается hold, resume, start или complete"
	msgMissingPlacement     = "для resume обязательны technicianId и date (YYYY-MM-DD)"
)

type Handler struct {
	useCase StatusUpdater
	logger  Logger
}

func NewHandler(useCase StatusUpdater, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/appointments/{appointmentId}/transitions
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathID(r, "appointmentId")
	if err != nil {
		h.logger.Warn("POST /appointments/{id}/transitions - Invalid appointment ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidAppointmentID)
		return
	}

	var req TransitionRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /appointments/{id}/transitions - Invalid request body: appointment_id=%d, error=%v", id, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	var (
		appt       *domain.Appointment
		overbooked bool
	)

	switch req.Action {
	case ActionHold:
		appt, err = h.useCase.Hold(r.Context(), id, req.Reason)

	case ActionResume:
		date, parseErr := handlers.ParseOptionalDate(req.Date)
		if parseErr != nil || date == nil || req.TechnicianID == nil {
			h.logger.Warn("POST /appointments/{id}/transitions - Missing placement for resume: appointment_id=%d", id)
			handlers.RespondBadRequest(w, msgMissingPlacement)
			return
		}
		var result *scheduling.AssignResult
		result, err = h.useCase.Resume(r.Context(), scheduling.AssignRequest{
			AppointmentID: id,
			TechnicianID:  *req.TechnicianID,
			Date:          *date,
			AllowOverbook: req.AllowOverbook,
		})
		if err == nil {
			appt, overbooked = result.Appointment, result.Overbooked
		}

	case ActionStart:
		appt, err = h.useCase.Start(r.Context(), id)

	case ActionComplete:
		appt, err = h.useCase.Complete(r.Context(), id)

	default:
		h.logger.Warn("POST /appointments/{id}/transitions - Unknown action: appointment_id=%d, action=%q", id, req.Action)
		handlers.RespondBadRequest(w, msgUnknownAction)
		return
	}

	if err != nil {
		handlers.RespondSchedulingError(w, h.logger, "POST /appointments/{id}/transitions", err)
		return
	}

	h.logger.Info("POST /appointments/{id}/transitions - Status changed: appointment_id=%d, action=%s, status=%s",
		id, req.Action, appt.Status)
	handlers.RespondJSON(w, http.StatusOK, &TransitionResponse{
		Appointment: handlers.NewAppointmentResponse(appt),
		Overbooked:  overbooked,
	})
}

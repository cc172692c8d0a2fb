package get_available_slots

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-ShopScheduler/internal/api/handlers"
	"github.com/m04kA/SMC-ShopScheduler/internal/domain"
	getAvailableSlots "github.com/m04kA/SMC-ShopScheduler/internal/usecase/get_available_slots"
)

const (
	msgInvalidQuery = "некорректные параметры запроса: hours, from, to (YYYY-MM-DD) обязательны"
	msgInvalidNext  = "некорректные параметры запроса: hours обязателен, notBefore в формате YYYY-MM-DD"
	msgInvalidInput = "некорректные параметры поиска"
	msgNoSlotFound  = "свободное место не найдено"
)

type Handler struct {
	useCase GetAvailableSlotsUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailableSlotsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/slots
// Query params: hours, from, to (required), technicianId, category, limit
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	useCaseReq, err := ToUseCaseRequest(r.URL.Query())
	if err != nil {
		h.logger.Warn("GET /slots - Invalid query: %v", err)
		handlers.RespondBadRequest(w, msgInvalidQuery)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, getAvailableSlots.ErrInvalidInput):
			h.logger.Warn("GET /slots - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("GET /slots - Failed to get slots: hours=%.2f, error=%v", useCaseReq.Hours, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /slots - Slots retrieved successfully: hours=%.2f, slots_count=%d, truncated=%t",
		useCaseReq.Hours, len(result.Slots), result.Truncated)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}

// HandleNext GET /api/v1/slots/next
// Query params: hours (required), technicianId (предпочтительный техник), notBefore, category
func (h *Handler) HandleNext(w http.ResponseWriter, r *http.Request) {
	useCaseReq, err := ToNextRequest(r.URL.Query())
	if err != nil {
		h.logger.Warn("GET /slots/next - Invalid query: %v", err)
		handlers.RespondBadRequest(w, msgInvalidNext)
		return
	}

	result, err := h.useCase.Next(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, getAvailableSlots.ErrInvalidInput):
			h.logger.Warn("GET /slots/next - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, getAvailableSlots.ErrNoSlotFound):
			h.logger.Warn("GET /slots/next - No slot found: hours=%.2f", useCaseReq.Hours)
			handlers.RespondNotFound(w, msgNoSlotFound)

		default:
			h.logger.Error("GET /slots/next - Failed to find slot: hours=%.2f, error=%v", useCaseReq.Hours, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /slots/next - Slot found: technician_id=%d, date=%s, off_preference=%t",
		result.Slot.TechnicianID, result.Slot.Date.Format(domain.DateFormat), result.OffPreference)
	handlers.RespondJSON(w, http.StatusOK, FromNextResponse(result))
}

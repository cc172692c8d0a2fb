package get_board

import (
	"net/http"

	"github.com/m04kA/SMC-ShopScheduler/internal/api/handlers"
	"github.com/m04kA/SMC-ShopScheduler/internal/domain"
)

const (
	msgMissingRange = "параметры from и to обязательны"
	msgInvalidDate  = "некорректный формат даты, ожидается YYYY-MM-DD"
)

type Handler struct {
	useCase BoardLoader
	logger  Logger
}

func NewHandler(useCase BoardLoader, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/board
// Query params: from, to (required, YYYY-MM-DD)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	fromStr := r.URL.Query().Get("from")
	toStr := r.URL.Query().Get("to")
	if fromStr == "" || toStr == "" {
		h.logger.Warn("GET /board - Missing range")
		handlers.RespondBadRequest(w, msgMissingRange)
		return
	}

	from, err := domain.ParseDate(fromStr)
	if err != nil {
		h.logger.Warn("GET /board - Invalid from: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}
	to, err := domain.ParseDate(toStr)
	if err != nil {
		h.logger.Warn("GET /board - Invalid to: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	snap, err := h.useCase.LoadBoard(r.Context(), domain.NewDateRange(from, to))
	if err != nil {
		handlers.RespondSchedulingError(w, h.logger, "GET /board", err)
		return
	}

	h.logger.Info("GET /board - Board loaded: from=%s, to=%s, columns=%d, held=%d, drafts=%d, repaired=%d",
		fromStr, toStr, len(snap.Columns), len(snap.Held), len(snap.Drafts), len(snap.Repaired))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(snap))
}

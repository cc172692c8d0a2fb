package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/m04kA/SMC-ShopScheduler/internal/domain"
	"github.com/m04kA/SMC-ShopScheduler/internal/usecase/scheduling"
)

const (
	msgCapacityExceeded     = "недостаточно свободных часов у техника на эту дату"
	msgInvalidTransition    = "переход статуса недоступен"
	msgSplitRejected        = "операция недоступна: у записи есть активные дочерние записи или не выбраны строки работ"
	msgNotFound             = "запись или техник не найдены"
	msgInvalidInput         = "некорректные входные данные"
	msgConfirmationRequired = "удаление требует подтверждения (confirm=true)"
	msgNoSlotFound          = "свободное место не найдено"
	msgPersistenceFailure   = "хранилище недоступно, изменение отменено, повторите попытку"
	msgRequestCancelled     = "запрос отменён"
)

// CapacityErrorResponse тело ответа при нехватке ёмкости
type CapacityErrorResponse struct {
	Error          string  `json:"error"`
	AppointmentID  int64   `json:"appointmentId,omitempty"`
	TechnicianID   int64   `json:"technicianId"`
	Date           string  `json:"date"`
	RequestedHours float64 `json:"requestedHours"`
	RemainingHours float64 `json:"remainingHours"`
	FullyOff       bool    `json:"fullyOff"`
}

// Logger интерфейс для логирования
type Logger interface {
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RespondSchedulingError переводит ошибку планирования в HTTP ответ
func RespondSchedulingError(w http.ResponseWriter, logger Logger, route string, err error) {
	var capErr *scheduling.CapacityError
	switch {
	case errors.As(err, &capErr):
		logger.Warn("%s - Capacity exceeded: %v", route, err)
		RespondJSON(w, http.StatusConflict, CapacityErrorResponse{
			Error:          msgCapacityExceeded,
			AppointmentID:  capErr.AppointmentID,
			TechnicianID:   capErr.TechnicianID,
			Date:           capErr.Date.Format(domain.DateFormat),
			RequestedHours: capErr.RequestedHours,
			RemainingHours: capErr.RemainingHours,
			FullyOff:       capErr.FullyOff,
		})

	case errors.Is(err, scheduling.ErrSplitRejected):
		logger.Warn("%s - Split rejected: %v", route, err)
		RespondError(w, http.StatusConflict, msgSplitRejected)

	case errors.Is(err, scheduling.ErrInvalidTransition):
		logger.Warn("%s - Invalid transition: %v", route, err)
		RespondError(w, http.StatusUnprocessableEntity, msgInvalidTransition)

	case errors.Is(err, scheduling.ErrInvalidInput):
		logger.Warn("%s - Invalid input: %v", route, err)
		RespondBadRequest(w, msgInvalidInput)

	case errors.Is(err, scheduling.ErrConfirmationRequired):
		logger.Warn("%s - Confirmation required: %v", route, err)
		RespondBadRequest(w, msgConfirmationRequired)

	case errors.Is(err, scheduling.ErrNotFound):
		logger.Warn("%s - Not found: %v", route, err)
		RespondNotFound(w, msgNotFound)

	case errors.Is(err, scheduling.ErrNoSlotFound):
		logger.Warn("%s - No slot found: %v", route, err)
		RespondNotFound(w, msgNoSlotFound)

	case errors.Is(err, scheduling.ErrPersistenceFailure):
		logger.Error("%s - Persistence failure: %v", route, err)
		RespondError(w, http.StatusBadGateway, msgPersistenceFailure)

	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		logger.Warn("%s - Request cancelled: %v", route, err)
		RespondError(w, http.StatusServiceUnavailable, msgRequestCancelled)

	default:
		logger.Error("%s - Unexpected error: %v", route, err)
		RespondInternalError(w)
	}
}

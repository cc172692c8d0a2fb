package scheduling

import (
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-ShopScheduler/internal/domain"
)

var (
	// ErrCapacityExceeded возвращается, когда назначение превышает остаток часов техника
	ErrCapacityExceeded = errors.New("scheduling: capacity exceeded")

	// ErrInvalidTransition возвращается, когда переход статуса запрещён
	ErrInvalidTransition = errors.New("scheduling: invalid transition")

	// ErrSplitRejected возвращается при недопустимом разделении, слиянии или удалении родителя
	ErrSplitRejected = errors.New("scheduling: split rejected")

	// ErrPersistenceFailure возвращается, когда хранилище не смогло выполнить операцию
	ErrPersistenceFailure = errors.New("scheduling: persistence failure")

	// ErrNotFound возвращается, когда запись или техник больше не существуют
	ErrNotFound = errors.New("scheduling: not found")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("scheduling: invalid input data")

	// ErrConfirmationRequired возвращается при удалении без подтверждения
	ErrConfirmationRequired = errors.New("scheduling: delete requires confirmation")

	// ErrNoSlotFound возвращается, когда свободное место не найдено в горизонте поиска
	ErrNoSlotFound = errors.New("scheduling: no available slot found")
)

// CapacityError подробности отказа по ёмкости
type CapacityError struct {
	AppointmentID  int64
	TechnicianID   int64
	Date           time.Time
	RequestedHours float64
	RemainingHours float64
	FullyOff       bool
}

func (e *CapacityError) Error() string {
	if e.FullyOff {
		return fmt.Sprintf("%v: appointment=%d technician=%d is off on %s",
			ErrCapacityExceeded, e.AppointmentID, e.TechnicianID, e.Date.Format(domain.DateFormat))
	}
	return fmt.Sprintf("%v: appointment=%d technician=%d date=%s requested=%.2fh remaining=%.2fh",
		ErrCapacityExceeded, e.AppointmentID, e.TechnicianID, e.Date.Format(domain.DateFormat),
		e.RequestedHours, e.RemainingHours)
}

func (e *CapacityError) Unwrap() error {
	return ErrCapacityExceeded
}

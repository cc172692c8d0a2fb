package memory

import (
	"fmt"

	"github.com/m04kA/SMC-ShopScheduler/internal/domain"
)

var (
	// ErrAppointmentNotFound возвращается, когда запись не найдена
	ErrAppointmentNotFound = fmt.Errorf("memory.store: appointment %w", domain.ErrNotFound)

	// ErrTechnicianNotFound возвращается, когда техник не найден
	ErrTechnicianNotFound = fmt.Errorf("memory.store: technician %w", domain.ErrNotFound)
)

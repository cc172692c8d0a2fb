package move_appointment

import (
	"context"

	"github.com/m04kA/SMC-ShopScheduler/internal/domain"
	"github.com/m04kA/SMC-ShopScheduler/internal/usecase/scheduling"
)

type AppointmentMover interface {
	Drop(ctx context.Context, req scheduling.DropRequest) (*scheduling.AssignResult, error)
	Reorder(ctx context.Context, id int64, position int) (*domain.Appointment, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

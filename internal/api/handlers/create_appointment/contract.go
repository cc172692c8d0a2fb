package create_appointment

import (
	"context"

	"github.com/m04kA/SMC-ShopScheduler/internal/domain"
	"github.com/m04kA/SMC-ShopScheduler/internal/usecase/scheduling"
)

type AppointmentCreator interface {
	CreateDraft(ctx context.Context, req *scheduling.DraftRequest) (*domain.Appointment, error)
	BookNew(ctx context.Context, req *scheduling.BookRequest) (*scheduling.BookResult, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

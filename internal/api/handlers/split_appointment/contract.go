package split_appointment

import (
	"context"

	"github.com/m04kA/SMC-ShopScheduler/internal/domain"
	"github.com/m04kA/SMC-ShopScheduler/internal/usecase/scheduling"
)

type AppointmentSplitter interface {
	Split(ctx context.Context, req *scheduling.SplitRequest) (*scheduling.SplitResult, error)
	Merge(ctx context.Context, req scheduling.MergeRequest) (*domain.Appointment, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

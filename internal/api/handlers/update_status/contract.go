package update_status

import (
	"context"

	"github.com/m04kA/SMC-ShopScheduler/internal/domain"
	"github.com/m04kA/SMC-ShopScheduler/internal/usecase/scheduling"
)

type StatusUpdater interface {
	Hold(ctx context.Context, id int64, reason string) (*domain.Appointment, error)
	Resume(ctx context.Context, req scheduling.AssignRequest) (*scheduling.AssignResult, error)
	Start(ctx context.Context, id int64) (*domain.Appointment, error)
	Complete(ctx context.Context, id int64) (*domain.Appointment, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

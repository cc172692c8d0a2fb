package get_board

import (
	"context"

	"github.com/m04kA/SMC-ShopScheduler/internal/domain"
	"github.com/m04kA/SMC-ShopScheduler/internal/usecase/scheduling"
)

type BoardLoader interface {
	LoadBoard(ctx context.Context, dateRange domain.DateRange) (*scheduling.BoardSnapshot, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

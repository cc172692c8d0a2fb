package technicians

import (
	"context"

	"github.com/m04kA/SMC-ShopScheduler/internal/domain"
)

// Source источник техников за кешем
type Source interface {
	GetAll(ctx context.Context) ([]*domain.Technician, error)
}

// MetricsRecorder счетчик попаданий в кеш
type MetricsRecorder interface {
	IncCacheLookup(cache string, hit bool)
}

// Logger интерфейс для логирования
type Logger interface {
	Warn(format string, v ...interface{})
}

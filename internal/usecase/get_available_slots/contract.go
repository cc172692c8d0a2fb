package get_available_slots

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ShopScheduler/internal/domain"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	GetByFilter(ctx context.Context, filter domain.AppointmentFilter, ids ...int64) ([]*domain.Appointment, error)
}

// TechnicianProvider источник техников
type TechnicianProvider interface {
	GetAll(ctx context.Context) ([]*domain.Technician, error)
}

// TimeOffRepository интерфейс репозитория отгулов
type TimeOffRepository interface {
	GetByRange(ctx context.Context, dateRange domain.DateRange) ([]domain.TimeOffEntry, error)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}

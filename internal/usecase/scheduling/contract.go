package scheduling

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ShopScheduler/internal/domain"
	"github.com/m04kA/SMC-ShopScheduler/internal/usecase/get_available_slots"
)

// AppointmentRepository хранилище записей (внешний коллаборатор данных)
type AppointmentRepository interface {
	Create(ctx context.Context, a *domain.Appointment) (*domain.Appointment, error)
	GetByID(ctx context.Context, id int64) (*domain.Appointment, error)
	GetByFilter(ctx context.Context, filter domain.AppointmentFilter, ids ...int64) ([]*domain.Appointment, error)
	Update(ctx context.Context, id int64, patch domain.AppointmentPatch) (*domain.Appointment, error)
	Delete(ctx context.Context, id int64) error
}

// TechnicianProvider источник техников (репозиторий или кеш поверх него)
type TechnicianProvider interface {
	GetAll(ctx context.Context) ([]*domain.Technician, error)
}

// TimeOffRepository хранилище отгулов
type TimeOffRepository interface {
	GetByRange(ctx context.Context, dateRange domain.DateRange) ([]domain.TimeOffEntry, error)
}

// Publisher публикует события доски
type Publisher interface {
	PublishJSON(eventType string, appointmentID int64, payload interface{}) error
}

// MetricsRecorder счетчики операций планирования
type MetricsRecorder interface {
	IncAssignment(outcome string)
	IncTransition(event string)
	IncSplits()
	IncMerges()
	IncDeletes()
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

// SlotFinder поиск ближайшего свободного места для новой записи
type SlotFinder interface {
	Next(ctx context.Context, req *get_available_slots.NextRequest) (*get_available_slots.NextResponse, error)
}

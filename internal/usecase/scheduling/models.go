package scheduling

import (
	"time"

	"github.com/m04kA/SMC-ShopScheduler/internal/domain"
)

// Исходы назначения для метрик
const (
	OutcomeOK               = "ok"
	OutcomeOverbooked       = "overbooked"
	OutcomeCapacityExceeded = "capacity_exceeded"
)

// AssignRequest запрос на назначение записи технику на дату
type AssignRequest struct {
	AppointmentID int64
	TechnicianID  int64
	Date          time.Time
	AllowOverbook bool // ручное решение диспетчера превысить ёмкость
}

// AssignResult результат назначения
type AssignResult struct {
	Appointment *domain.Appointment
	Overbooked  bool
	Snapshot    domain.CapacitySnapshot // загрузка дня после назначения
}

// DropRequest перетаскивание карточки на доске
type DropRequest struct {
	AppointmentID int64
	TechnicianID  int64
	Date          time.Time
	Position      *int // позиция в колонке техника/дня; nil = в конец
	AllowOverbook bool
}

// LineInput строка работ во входящем запросе
type LineInput struct {
	Description string
	Category    string
	Hours       float64
}

// DraftRequest запрос на создание черновика
type DraftRequest struct {
	CustomerRef    string
	VehicleRef     string
	EstimatedHours float64 // используется, если строки работ не заданы
	Lines          []LineInput
	Priority       int
	Notes          *string
}

// BookRequest запрос на создание и постановку новой записи.
// Если заданы TechnicianID и Date, запись ставится на это место,
// иначе ищется ближайшее свободное место.
type BookRequest struct {
	DraftRequest

	TechnicianID          *int64
	Date                  *time.Time
	PreferredTechnicianID *int64
	NotBefore             *time.Time // nil = сегодня
	AllowOverbook         bool
}

// BookResult результат постановки новой записи
type BookResult struct {
	Appointment   *domain.Appointment
	Overbooked    bool
	OffPreference bool // место найдено не у предпочтительного техника
}

// SplitPartRequest строки работ, уходящие в одну дочернюю запись
type SplitPartRequest struct {
	LineIDs      []int64
	TechnicianID *int64
	Date         *time.Time
}

// SplitRequest запрос на разделение записи
type SplitRequest struct {
	AppointmentID int64
	Parts         []SplitPartRequest
	AllowOverbook bool
}

// SplitResult результат разделения
type SplitResult struct {
	Parent     *domain.Appointment
	Children   []*domain.Appointment
	Overbooked bool
}

// MergeRequest запрос на слияние дочерней записи с родителем
type MergeRequest struct {
	ParentID      int64
	ChildID       int64
	AllowOverbook bool
}

// Column карточки одного техника на один день
type Column struct {
	TechnicianID int64
	Date         time.Time
	Snapshot     domain.CapacitySnapshot
	Appointments []*domain.Appointment
}

// BoardSnapshot состояние доски на диапазон дат
type BoardSnapshot struct {
	Range       domain.DateRange
	Technicians []*domain.Technician
	Columns     []Column
	Held        []*domain.Appointment
	Drafts      []*domain.Appointment
	Repaired    []int64 // ID записей, у которых сброшена ссылка на удалённого родителя
}

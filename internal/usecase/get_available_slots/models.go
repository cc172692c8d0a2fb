package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-ShopScheduler/internal/domain"
)

// DefaultLimit количество слотов в ответе по умолчанию
const DefaultLimit = 50

// Request модель запроса на получение свободных слотов
type Request struct {
	Hours         float64   // Длительность работы в часах
	From          time.Time // Начало диапазона (включительно)
	To            time.Time // Конец диапазона (включительно)
	TechnicianIDs []int64   // Фильтр по техникам (опционально)
	Category      string    // Категория работ (опционально)
	Limit         int       // Максимум слотов в ответе, 0 = DefaultLimit
}

// Response модель ответа со списком слотов
type Response struct {
	Slots     []domain.Slot // Слоты: дата по возрастанию, остаток по убыванию
	Truncated bool          // true, если слотов больше, чем Limit
}

// NextRequest модель запроса ближайшего свободного места
type NextRequest struct {
	Hours                 float64
	PreferredTechnicianID *int64
	NotBefore             *time.Time // nil = сегодня
	Category              string
}

// NextResponse ближайшее свободное место
type NextResponse struct {
	Slot          domain.Slot
	OffPreference bool // место не у предпочтительного техника
}

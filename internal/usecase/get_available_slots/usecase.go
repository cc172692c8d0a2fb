package get_available_slots

import (
	"context"
	"fmt"

	"github.com/m04kA/SMC-ShopScheduler/internal/domain"
	"github.com/m04kA/SMC-ShopScheduler/internal/service/availability"
	"github.com/m04kA/SMC-ShopScheduler/internal/service/capacity"
)

// UseCase use case для получения свободных слотов и ближайшего места
type UseCase struct {
	appointmentRepo AppointmentRepository
	technicians     TechnicianProvider
	timeOffRepo     TimeOffRepository
	timeProvider    TimeProvider
	logger          Logger

	lookAheadDays int
	horizonDays   int
	maxRangeDays  int
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointmentRepo AppointmentRepository,
	technicians TechnicianProvider,
	timeOffRepo TimeOffRepository,
	lookAheadDays, horizonDays, maxRangeDays int,
	logger Logger,
) *UseCase {
	if maxRangeDays <= 0 {
		maxRangeDays = domain.DefaultMaxRangeDays
	}
	return &UseCase{
		appointmentRepo: appointmentRepo,
		technicians:     technicians,
		timeOffRepo:     timeOffRepo,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
		lookAheadDays:   lookAheadDays,
		horizonDays:     horizonDays,
		maxRangeDays:    maxRangeDays,
	}
}

// WithTimeProvider подменяет источник времени
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute выполняет use case получения свободных слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: hours=%.2f, from=%s, to=%s, technicians=%v, category=%q",
		req.Hours, req.From.Format(domain.DateFormat), req.To.Format(domain.DateFormat), req.TechnicianIDs, req.Category)

	// 1. Валидация входных данных
	if err := validateRequest(req, uc.maxRangeDays); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	// 2. Загружаем данные за диапазон
	dateRange := domain.NewDateRange(req.From, req.To)
	calculator, err := uc.loadCalculator(ctx, "GetAvailableSlots", dateRange)
	if err != nil {
		return nil, err
	}

	// 3. Обходим последовательность слотов до лимита
	limit := req.Limit
	if limit == 0 {
		limit = DefaultLimit
	}
	query := availability.SlotQuery{
		Hours:         req.Hours,
		From:          dateRange.From,
		To:            dateRange.To,
		TechnicianIDs: req.TechnicianIDs,
		Category:      req.Category,
	}

	resp := &Response{Slots: make([]domain.Slot, 0)}
	for slot := range calculator.FindSlots(query) {
		if len(resp.Slots) == limit {
			resp.Truncated = true
			break
		}
		resp.Slots = append(resp.Slots, slot)
	}

	uc.logger.Info("GetAvailableSlots: found %d slots, truncated=%t", len(resp.Slots), resp.Truncated)
	return resp, nil
}

// Next возвращает ближайшее свободное место.
// Сначала ищет у предпочтительного техника в окне look-ahead, затем у всех.
func (uc *UseCase) Next(ctx context.Context, req *NextRequest) (*NextResponse, error) {
	// 1. Валидация входных данных
	if err := validateNextRequest(req); err != nil {
		uc.logger.Warn("NextAvailable: validation failed: %v", err)
		return nil, err
	}

	notBefore := domain.DateOnly(uc.timeProvider.Now())
	if req.NotBefore != nil {
		notBefore = domain.DateOnly(*req.NotBefore)
	}
	uc.logger.Info("NextAvailable: hours=%.2f, notBefore=%s, preferred=%v, category=%q",
		req.Hours, notBefore.Format(domain.DateFormat), req.PreferredTechnicianID, req.Category)

	// 2. Загружаем данные за окно поиска
	finder := availability.NewFinder(nil, uc.lookAheadDays, uc.horizonDays)
	calculator, err := uc.loadCalculator(ctx, "NextAvailable", finder.Window(notBefore))
	if err != nil {
		return nil, err
	}
	finder = availability.NewFinder(calculator, uc.lookAheadDays, uc.horizonDays)

	// 3. Двухфазный поиск
	result, ok := finder.Next(availability.NextQuery{
		Hours:                 req.Hours,
		PreferredTechnicianID: req.PreferredTechnicianID,
		NotBefore:             notBefore,
		Category:              req.Category,
	})
	if !ok {
		uc.logger.Warn("NextAvailable: no slot for %.2fh from %s", req.Hours, notBefore.Format(domain.DateFormat))
		return nil, ErrNoSlotFound
	}

	if result.OffPreference {
		uc.logger.Warn("NextAvailable: preferred technician=%d has no slot, falling back to technician=%d",
			*req.PreferredTechnicianID, result.Slot.TechnicianID)
	}
	uc.logger.Info("NextAvailable: found technician=%d date=%s", result.Slot.TechnicianID, result.Slot.Date.Format(domain.DateFormat))
	return &NextResponse{Slot: result.Slot, OffPreference: result.OffPreference}, nil
}

func (uc *UseCase) loadCalculator(ctx context.Context, op string, dateRange domain.DateRange) (*availability.Calculator, error) {
	technicians, err := uc.technicians.GetAll(ctx)
	if err != nil {
		uc.logger.Error("%s: failed to get technicians: %v", op, err)
		return nil, fmt.Errorf("%w: failed to get technicians: %v", ErrInternal, err)
	}

	appointments, err := uc.appointmentRepo.GetByFilter(ctx, domain.AppointmentFilter{Range: &dateRange})
	if err != nil {
		uc.logger.Error("%s: failed to get appointments: %v", op, err)
		return nil, fmt.Errorf("%w: failed to get appointments: %v", ErrInternal, err)
	}

	timeOff, err := uc.timeOffRepo.GetByRange(ctx, dateRange)
	if err != nil {
		uc.logger.Error("%s: failed to get time off: %v", op, err)
		return nil, fmt.Errorf("%w: failed to get time off: %v", ErrInternal, err)
	}

	return availability.NewCalculator(technicians, capacity.NewModel(appointments, timeOff)), nil
}

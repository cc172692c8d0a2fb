package get_available_slots

import (
	"fmt"

	"github.com/m04kA/SMC-ShopScheduler/internal/domain"
)

// validateHours проверяет запрошенную длительность работы
func validateHours(hours float64) error {
	if hours <= domain.MinRequestedHours || hours > domain.MaxRequestedHours {
		return fmt.Errorf("%w: hours must be in (%.0f, %.0f]", ErrInvalidInput, domain.MinRequestedHours, domain.MaxRequestedHours)
	}
	return nil
}

// validateRequest проверяет запрос списка слотов
func validateRequest(req *Request, maxRangeDays int) error {
	if err := validateHours(req.Hours); err != nil {
		return err
	}
	if req.From.IsZero() || req.To.IsZero() {
		return fmt.Errorf("%w: from and to are required", ErrInvalidInput)
	}
	r := domain.NewDateRange(req.From, req.To)
	if r.IsEmpty() {
		return fmt.Errorf("%w: to is before from", ErrInvalidInput)
	}
	if r.Days() > maxRangeDays {
		return fmt.Errorf("%w: range exceeds %d days", ErrInvalidInput, maxRangeDays)
	}
	if req.Limit < 0 {
		return fmt.Errorf("%w: limit must not be negative", ErrInvalidInput)
	}
	return nil
}

// validateNextRequest проверяет запрос ближайшего слота
func validateNextRequest(req *NextRequest) error {
	if err := validateHours(req.Hours); err != nil {
		return err
	}
	if req.PreferredTechnicianID != nil && *req.PreferredTechnicianID <= 0 {
		return fmt.Errorf("%w: technician id must be positive", ErrInvalidInput)
	}
	return nil
}

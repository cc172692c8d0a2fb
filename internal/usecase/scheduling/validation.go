package scheduling

import (
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-ShopScheduler/internal/domain"
)

// validateHours проверяет запрошенное количество часов
func validateHours(hours float64) error {
	if hours <= domain.MinRequestedHours || hours > domain.MaxRequestedHours {
		return fmt.Errorf("%w: hours must be in (%.0f, %.0f], got %.2f",
			ErrInvalidInput, domain.MinRequestedHours, domain.MaxRequestedHours, hours)
	}
	return nil
}

// validatePlacement проверяет техника и дату назначения
func validatePlacement(technicianID int64, date time.Time) error {
	if technicianID <= 0 {
		return fmt.Errorf("%w: technician id must be positive", ErrInvalidInput)
	}
	if date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	return nil
}

// validateRange проверяет диапазон дат доски или поиска
func validateRange(r domain.DateRange, maxDays int) error {
	if r.IsEmpty() {
		return fmt.Errorf("%w: date range end is before start", ErrInvalidInput)
	}
	if r.Days() > maxDays {
		return fmt.Errorf("%w: date range exceeds %d days", ErrInvalidInput, maxDays)
	}
	return nil
}

// validateDraft проверяет данные новой записи
func validateDraft(req *DraftRequest) error {
	if len(req.Lines) > domain.MaxServiceLines {
		return fmt.Errorf("%w: at most %d service lines", ErrInvalidInput, domain.MaxServiceLines)
	}
	for i, l := range req.Lines {
		if strings.TrimSpace(l.Description) == "" {
			return fmt.Errorf("%w: line %d has no description", ErrInvalidInput, i)
		}
		if len(l.Description) > domain.MaxLineDescriptionLen {
			return fmt.Errorf("%w: line %d description exceeds %d characters", ErrInvalidInput, i, domain.MaxLineDescriptionLen)
		}
		if l.Hours < 0 || l.Hours > domain.MaxRequestedHours {
			return fmt.Errorf("%w: line %d hours out of range", ErrInvalidInput, i)
		}
	}
	if req.Notes != nil && len(*req.Notes) > domain.MaxNotesLength {
		return fmt.Errorf("%w: notes exceed %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}
	if len(req.Lines) == 0 {
		if req.EstimatedHours < 0 || req.EstimatedHours > domain.MaxRequestedHours {
			return fmt.Errorf("%w: estimated hours out of range", ErrInvalidInput)
		}
	}
	return nil
}

// newDraft собирает черновик из запроса
func newDraft(req *DraftRequest) *domain.Appointment {
	a := &domain.Appointment{
		CustomerRef:    strings.TrimSpace(req.CustomerRef),
		VehicleRef:     strings.TrimSpace(req.VehicleRef),
		Status:         domain.StatusDraft,
		EstimatedHours: req.EstimatedHours,
		Priority:       req.Priority,
		Notes:          req.Notes,
	}
	for _, l := range req.Lines {
		a.Lines = append(a.Lines, domain.ServiceLine{
			Description: strings.TrimSpace(l.Description),
			Category:    strings.TrimSpace(l.Category),
			Hours:       l.Hours,
			Status:      domain.LinePending,
		})
	}
	if len(a.Lines) > 0 {
		a.EstimatedHours = a.LinesHours()
	}
	return a
}

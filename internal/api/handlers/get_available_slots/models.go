package get_available_slots

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/m04kA/SMC-ShopScheduler/internal/api/handlers"
	"github.com/m04kA/SMC-ShopScheduler/internal/domain"
	getAvailableSlots "github.com/m04kA/SMC-ShopScheduler/internal/usecase/get_available_slots"
)

// AvailableSlotsResponse HTTP модель ответа со списком слотов
type AvailableSlotsResponse struct {
	Slots     []handlers.SlotResponse `json:"slots"`
	Truncated bool                    `json:"truncated"`
}

// NextSlotResponse HTTP модель ближайшего свободного места
type NextSlotResponse struct {
	Slot          handlers.SlotResponse `json:"slot"`
	OffPreference bool                  `json:"offPreference"`
}

// ToUseCaseRequest разбирает query параметры в запрос use case
func ToUseCaseRequest(q url.Values) (*getAvailableSlots.Request, error) {
	hours, err := parseHours(q.Get("hours"))
	if err != nil {
		return nil, err
	}

	from, err := domain.ParseDate(q.Get("from"))
	if err != nil {
		return nil, fmt.Errorf("from: %w", err)
	}
	to, err := domain.ParseDate(q.Get("to"))
	if err != nil {
		return nil, fmt.Errorf("to: %w", err)
	}

	req := &getAvailableSlots.Request{
		Hours:    hours,
		From:     from,
		To:       to,
		Category: q.Get("category"),
	}

	// technicianId может повторяться или содержать список через запятую
	for _, raw := range q["technicianId"] {
		for _, part := range strings.Split(raw, ",") {
			id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("technicianId: %w", err)
			}
			req.TechnicianIDs = append(req.TechnicianIDs, id)
		}
	}

	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("limit: %w", err)
		}
		req.Limit = limit
	}

	return req, nil
}

// ToNextRequest разбирает query параметры запроса ближайшего места
func ToNextRequest(q url.Values) (*getAvailableSlots.NextRequest, error) {
	hours, err := parseHours(q.Get("hours"))
	if err != nil {
		return nil, err
	}

	req := &getAvailableSlots.NextRequest{
		Hours:    hours,
		Category: q.Get("category"),
	}

	if raw := q.Get("technicianId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("technicianId: %w", err)
		}
		req.PreferredTechnicianID = &id
	}

	if raw := q.Get("notBefore"); raw != "" {
		d, err := domain.ParseDate(raw)
		if err != nil {
			return nil, fmt.Errorf("notBefore: %w", err)
		}
		req.NotBefore = &d
	}

	return req, nil
}

func parseHours(raw string) (float64, error) {
	if raw == "" {
		return 0, fmt.Errorf("hours is required")
	}
	hours, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("hours: %w", err)
	}
	return hours, nil
}

// FromUseCaseResponse преобразует ответ use case в HTTP модель
func FromUseCaseResponse(resp *getAvailableSlots.Response) *AvailableSlotsResponse {
	slots := make([]handlers.SlotResponse, 0, len(resp.Slots))
	for _, s := range resp.Slots {
		slots = append(slots, handlers.NewSlotResponse(s))
	}
	return &AvailableSlotsResponse{Slots: slots, Truncated: resp.Truncated}
}

// FromNextResponse преобразует ближайшее место в HTTP модель
func FromNextResponse(resp *getAvailableSlots.NextResponse) *NextSlotResponse {
	return &NextSlotResponse{
		Slot:          handlers.NewSlotResponse(resp.Slot),
		OffPreference: resp.OffPreference,
	}
}


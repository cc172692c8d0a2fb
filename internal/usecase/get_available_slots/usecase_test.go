package get_available_slots

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ShopScheduler/internal/domain"
	"github.com/m04kA/SMC-ShopScheduler/internal/infra/storage/memory"
	"github.com/m04kA/SMC-ShopScheduler/pkg/ptr"
)

var monday = time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fixedTime struct{ t time.Time }

func (f fixedTime) Now() time.Time { return f.t }

type failingTechnicians struct{}

func (failingTechnicians) GetAll(context.Context) ([]*domain.Technician, error) {
	return nil, errors.New("connection refused")
}

func newUseCase(t *testing.T) (*UseCase, *memory.AppointmentStore) {
	t.Helper()
	technicians := memory.NewTechnicianStore(
		&domain.Technician{ID: 1, Name: "Alex", Capacity: domain.WeekdaysCapacity(8), Active: true, Categories: []string{"brakes"}},
		&domain.Technician{ID: 2, Name: "Sam", Capacity: domain.WeekdaysCapacity(8), Active: true, Categories: []string{"tires"}},
	)
	appointments := memory.NewAppointmentStore()
	uc := NewUseCase(appointments, technicians, memory.NewTimeOffStore(), 14, 60, 92, nopLogger{}).
		WithTimeProvider(fixedTime{t: monday.Add(8 * time.Hour)})
	return uc, appointments
}

func TestExecute(t *testing.T) {
	uc, appointments := newUseCase(t)
	_, err := appointments.Create(context.Background(), &domain.Appointment{
		Status:         domain.StatusScheduled,
		Placement:      &domain.Placement{TechnicianID: 1, Date: monday},
		EstimatedHours: 5,
	})
	require.NoError(t, err)

	resp, err := uc.Execute(context.Background(), &Request{Hours: 4, From: monday, To: monday})
	require.NoError(t, err)
	require.Len(t, resp.Slots, 1)
	assert.Equal(t, int64(2), resp.Slots[0].TechnicianID)
	assert.Equal(t, 8.0, resp.Slots[0].AvailableHours)
	assert.False(t, resp.Truncated)
}

func TestExecuteLimit(t *testing.T) {
	uc, _ := newUseCase(t)

	resp, err := uc.Execute(context.Background(), &Request{Hours: 1, From: monday, To: monday.AddDate(0, 0, 4), Limit: 3})
	require.NoError(t, err)
	assert.Len(t, resp.Slots, 3)
	assert.True(t, resp.Truncated)
}

func TestExecuteValidation(t *testing.T) {
	uc, _ := newUseCase(t)

	tests := []struct {
		name string
		req  *Request
	}{
		{name: "zero hours", req: &Request{Hours: 0, From: monday, To: monday}},
		{name: "too many hours", req: &Request{Hours: 25, From: monday, To: monday}},
		{name: "reversed range", req: &Request{Hours: 1, From: monday, To: monday.AddDate(0, 0, -1)}},
		{name: "range too long", req: &Request{Hours: 1, From: monday, To: monday.AddDate(1, 0, 0)}},
		{name: "missing dates", req: &Request{Hours: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Execute(context.Background(), tt.req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestExecuteStoreFailure(t *testing.T) {
	uc := NewUseCase(memory.NewAppointmentStore(), failingTechnicians{}, memory.NewTimeOffStore(), 14, 60, 92, nopLogger{})

	_, err := uc.Execute(context.Background(), &Request{Hours: 1, From: monday, To: monday})
	assert.ErrorIs(t, err, ErrInternal)
}

func TestNext(t *testing.T) {
	uc, appointments := newUseCase(t)
	ctx := context.Background()

	t.Run("defaults to today", func(t *testing.T) {
		resp, err := uc.Next(ctx, &NextRequest{Hours: 8})
		require.NoError(t, err)
		assert.Equal(t, monday, resp.Slot.Date)
		assert.Equal(t, int64(1), resp.Slot.TechnicianID)
		assert.False(t, resp.OffPreference)
	})

	t.Run("category restricts technicians", func(t *testing.T) {
		resp, err := uc.Next(ctx, &NextRequest{Hours: 2, Category: "tires"})
		require.NoError(t, err)
		assert.Equal(t, int64(2), resp.Slot.TechnicianID)
	})

	t.Run("preferred technician later in window", func(t *testing.T) {
		_, err := appointments.Create(ctx, &domain.Appointment{
			Status:         domain.StatusScheduled,
			Placement:      &domain.Placement{TechnicianID: 2, Date: monday},
			EstimatedHours: 8,
		})
		require.NoError(t, err)

		resp, err := uc.Next(ctx, &NextRequest{Hours: 4, PreferredTechnicianID: ptr.Ptr(int64(2))})
		require.NoError(t, err)
		assert.Equal(t, int64(2), resp.Slot.TechnicianID)
		assert.Equal(t, monday.AddDate(0, 0, 1), resp.Slot.Date)
		assert.False(t, resp.OffPreference)
	})

	t.Run("unknown preferred technician falls back", func(t *testing.T) {
		resp, err := uc.Next(ctx, &NextRequest{Hours: 4, PreferredTechnicianID: ptr.Ptr(int64(99))})
		require.NoError(t, err)
		assert.True(t, resp.OffPreference)
	})

	t.Run("nothing fits", func(t *testing.T) {
		_, err := uc.Next(ctx, &NextRequest{Hours: 9})
		assert.ErrorIs(t, err, ErrNoSlotFound)
	})
}

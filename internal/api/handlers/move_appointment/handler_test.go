package move_appointment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ShopScheduler/internal/domain"
	"github.com/m04kA/SMC-ShopScheduler/internal/usecase/scheduling"
)

type mockMover struct {
	mock.Mock
}

func (m *mockMover) Drop(ctx context.Context, req scheduling.DropRequest) (*scheduling.AssignResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*scheduling.AssignResult), args.Error(1)
}

func (m *mockMover) Reorder(ctx context.Context, id int64, position int) (*domain.Appointment, error) {
	args := m.Called(ctx, id, position)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Appointment), args.Error(1)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func newRequest(method, id, body string) *http.Request {
	req := httptest.NewRequest(method, "/api/v1/appointments/"+id+"/placement", strings.NewReader(body))
	return mux.SetURLVars(req, map[string]string{"appointmentId": id})
}

func TestHandle_Success(t *testing.T) {
	date := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	appt := &domain.Appointment{
		ID:             5,
		Status:         domain.StatusScheduled,
		EstimatedHours: 3,
		Placement:      &domain.Placement{TechnicianID: 2, Date: date},
	}

	uc := &mockMover{}
	uc.On("Drop", mock.Anything, scheduling.DropRequest{
		AppointmentID: 5,
		TechnicianID:  2,
		Date:          date,
	}).Return(&scheduling.AssignResult{
		Appointment: appt,
		Snapshot:    domain.CapacitySnapshot{TechnicianID: 2, Date: date, CapacityHours: 8, CommittedHours: 3, Remaining: 5, RawRemaining: 5},
	}, nil)

	w := httptest.NewRecorder()
	NewHandler(uc, nopLogger{}).Handle(w, newRequest(http.MethodPut, "5", `{"technicianId":2,"date":"2024-06-10"}`))

	require.Equal(t, http.StatusOK, w.Code)
	var resp MoveResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, int64(5), resp.Appointment.ID)
	require.NotNil(t, resp.Appointment.Date)
	assert.Equal(t, "2024-06-10", *resp.Appointment.Date)
	assert.Equal(t, 5.0, resp.Capacity.RemainingHours)
	uc.AssertExpectations(t)
}

func TestHandle_CapacityExceeded(t *testing.T) {
	uc := &mockMover{}
	uc.On("Drop", mock.Anything, mock.Anything).Return(nil, &scheduling.CapacityError{
		AppointmentID:  5,
		TechnicianID:   2,
		Date:           time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
		RequestedHours: 6,
		RemainingHours: 5,
	})

	w := httptest.NewRecorder()
	NewHandler(uc, nopLogger{}).Handle(w, newRequest(http.MethodPut, "5", `{"technicianId":2,"date":"2024-06-10"}`))

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestHandle_BadInput(t *testing.T) {
	tests := []struct {
		name string
		id   string
		body string
	}{
		{name: "invalid id", id: "abc", body: `{"technicianId":2,"date":"2024-06-10"}`},
		{name: "negative id", id: "-1", body: `{"technicianId":2,"date":"2024-06-10"}`},
		{name: "broken json", id: "5", body: `{"technicianId":`},
		{name: "unknown field", id: "5", body: `{"tech":2}`},
		{name: "bad date", id: "5", body: `{"technicianId":2,"date":"10.06.2024"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockMover{}
			w := httptest.NewRecorder()
			NewHandler(uc, nopLogger{}).Handle(w, newRequest(http.MethodPut, tt.id, tt.body))

			assert.Equal(t, http.StatusBadRequest, w.Code)
			uc.AssertNotCalled(t, "Drop", mock.Anything, mock.Anything)
		})
	}
}

func TestHandleReorder_NotOnBoard(t *testing.T) {
	uc := &mockMover{}
	uc.On("Reorder", mock.Anything, int64(5), 1).Return(nil, scheduling.ErrInvalidInput)

	w := httptest.NewRecorder()
	NewHandler(uc, nopLogger{}).HandleReorder(w, newRequest(http.MethodPut, "5", `{"position":1}`))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	uc.AssertExpectations(t)
}

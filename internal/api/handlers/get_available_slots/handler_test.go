package get_available_slots

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ShopScheduler/internal/domain"
	getAvailableSlots "github.com/m04kA/SMC-ShopScheduler/internal/usecase/get_available_slots"
)

type mockUseCase struct {
	mock.Mock
}

func (m *mockUseCase) Execute(ctx context.Context, req *getAvailableSlots.Request) (*getAvailableSlots.Response, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*getAvailableSlots.Response), args.Error(1)
}

func (m *mockUseCase) Next(ctx context.Context, req *getAvailableSlots.NextRequest) (*getAvailableSlots.NextResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*getAvailableSlots.NextResponse), args.Error(1)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func TestHandle_ParsesQuery(t *testing.T) {
	day := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	uc := &mockUseCase{}
	uc.On("Execute", mock.Anything, mock.MatchedBy(func(req *getAvailableSlots.Request) bool {
		return req.Hours == 2.5 &&
			req.From.Equal(day) &&
			req.To.Equal(day.AddDate(0, 0, 4)) &&
			assert.ObjectsAreEqual([]int64{1, 2, 3}, req.TechnicianIDs) &&
			req.Category == "brakes" &&
			req.Limit == 10
	})).Return(&getAvailableSlots.Response{
		Slots:     []domain.Slot{{TechnicianID: 1, Date: day, StartOffsetHours: 2, AvailableHours: 6}},
		Truncated: true,
	}, nil)

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/slots?hours=2.5&from=2024-06-10&to=2024-06-14&technicianId=1,2&technicianId=3&category=brakes&limit=10", nil)
	w := httptest.NewRecorder()
	NewHandler(uc, nopLogger{}).Handle(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp AvailableSlotsResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.Len(t, resp.Slots, 1)
	assert.Equal(t, "2024-06-10", resp.Slots[0].Date)
	assert.Equal(t, 6.0, resp.Slots[0].AvailableHours)
	assert.True(t, resp.Truncated)
	uc.AssertExpectations(t)
}

func TestHandle_MissingHours(t *testing.T) {
	uc := &mockUseCase{}
	w := httptest.NewRecorder()
	NewHandler(uc, nopLogger{}).Handle(w, httptest.NewRequest(http.MethodGet, "/api/v1/slots?from=2024-06-10&to=2024-06-14", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	uc.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}

func TestHandleNext(t *testing.T) {
	day := time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC)

	t.Run("found off preference", func(t *testing.T) {
		uc := &mockUseCase{}
		uc.On("Next", mock.Anything, mock.MatchedBy(func(req *getAvailableSlots.NextRequest) bool {
			return req.Hours == 4 && req.PreferredTechnicianID != nil && *req.PreferredTechnicianID == 7
		})).Return(&getAvailableSlots.NextResponse{
			Slot:          domain.Slot{TechnicianID: 8, Date: day, AvailableHours: 8},
			OffPreference: true,
		}, nil)

		w := httptest.NewRecorder()
		NewHandler(uc, nopLogger{}).HandleNext(w, httptest.NewRequest(http.MethodGet, "/api/v1/slots/next?hours=4&technicianId=7", nil))

		require.Equal(t, http.StatusOK, w.Code)
		var resp NextSlotResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.True(t, resp.OffPreference)
		assert.Equal(t, int64(8), resp.Slot.TechnicianID)
	})

	t.Run("nothing in horizon", func(t *testing.T) {
		uc := &mockUseCase{}
		uc.On("Next", mock.Anything, mock.Anything).Return(nil, getAvailableSlots.ErrNoSlotFound)

		w := httptest.NewRecorder()
		NewHandler(uc, nopLogger{}).HandleNext(w, httptest.NewRequest(http.MethodGet, "/api/v1/slots/next?hours=30", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

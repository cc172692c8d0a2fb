package delete_appointment

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/m04kA/SMC-ShopScheduler/internal/usecase/scheduling"
)

type mockDeleter struct {
	mock.Mock
}

func (m *mockDeleter) Delete(ctx context.Context, id int64, confirmed bool) error {
	return m.Called(ctx, id, confirmed).Error(0)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func newRequest(id, query string) *http.Request {
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/appointments/"+id+query, nil)
	return mux.SetURLVars(req, map[string]string{"appointmentId": id})
}

func TestHandle_Confirmed(t *testing.T) {
	uc := &mockDeleter{}
	uc.On("Delete", mock.Anything, int64(4), true).Return(nil).Once()

	w := httptest.NewRecorder()
	NewHandler(uc, nopLogger{}).Handle(w, newRequest("4", "?confirm=true"))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
	uc.AssertExpectations(t)
}

func TestHandle_WithoutConfirmation(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{name: "missing", query: ""},
		{name: "false", query: "?confirm=false"},
		{name: "zero", query: "?confirm=0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockDeleter{}
			uc.On("Delete", mock.Anything, int64(4), false).
				Return(fmt.Errorf("%w: appointment=4", scheduling.ErrConfirmationRequired)).Once()

			w := httptest.NewRecorder()
			NewHandler(uc, nopLogger{}).Handle(w, newRequest("4", tt.query))

			assert.Equal(t, http.StatusBadRequest, w.Code)
			uc.AssertExpectations(t)
		})
	}
}

func TestHandle_InvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		id    string
		query string
	}{
		{name: "invalid confirm", id: "4", query: "?confirm=yes"},
		{name: "invalid id", id: "abc", query: "?confirm=true"},
		{name: "non positive id", id: "0", query: "?confirm=true"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockDeleter{}
			w := httptest.NewRecorder()
			NewHandler(uc, nopLogger{}).Handle(w, newRequest(tt.id, tt.query))

			assert.Equal(t, http.StatusBadRequest, w.Code)
			uc.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestHandle_ActiveChildren(t *testing.T) {
	uc := &mockDeleter{}
	uc.On("Delete", mock.Anything, int64(4), true).Return(fmt.Errorf("%w: active children", scheduling.ErrSplitRejected))

	w := httptest.NewRecorder()
	NewHandler(uc, nopLogger{}).Handle(w, newRequest("4", "?confirm=1"))

	assert.Equal(t, http.StatusConflict, w.Code)
}

package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ShopScheduler/internal/domain"
)

var monday = time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

func TestAppointmentStoreCRUD(t *testing.T) {
	ctx := context.Background()
	store := NewAppointmentStore()

	created, err := store.Create(ctx, &domain.Appointment{
		Status:         domain.StatusScheduled,
		Placement:      &domain.Placement{TechnicianID: 1, Date: monday.Add(9 * time.Hour)},
		EstimatedHours: 3,
		Lines:          []domain.ServiceLine{{Description: "brakes", Hours: 3}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, monday, created.Placement.Date)
	assert.NotZero(t, created.Lines[0].ID)
	assert.Equal(t, domain.LinePending, created.Lines[0].Status)

	priority := 2
	updated, err := store.Update(ctx, created.ID, domain.AppointmentPatch{Priority: &priority})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Priority)
	assert.Equal(t, created.Lines, updated.Lines)

	day := domain.NewDateRange(monday, monday)
	list, err := store.GetByFilter(ctx, domain.AppointmentFilter{Range: &day, TechnicianIDs: []int64{1}})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, store.Delete(ctx, created.ID))
	_, err = store.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, created.ID), domain.ErrNotFound)

	_, err = store.Update(ctx, 42, domain.AppointmentPatch{Priority: &priority})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAppointmentStoreDeleteOrphansChildren(t *testing.T) {
	ctx := context.Background()
	store := NewAppointmentStore()

	parent, err := store.Create(ctx, &domain.Appointment{Status: domain.StatusDraft})
	require.NoError(t, err)
	child, err := store.Create(ctx, &domain.Appointment{Status: domain.StatusDraft, ParentID: &parent.ID})
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, parent.ID))

	got, err := store.GetByID(ctx, child.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ParentID)
}

func TestStoresRespectCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewAppointmentStore().Create(ctx, &domain.Appointment{Status: domain.StatusDraft})
	assert.ErrorIs(t, err, context.Canceled)
	_, err = NewTechnicianStore().GetAll(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTimeOffStoreGetByRange(t *testing.T) {
	store := NewTimeOffStore(
		domain.TimeOffEntry{ID: 1, TechnicianID: 1, StartDate: monday.AddDate(0, 0, -3), EndDate: monday},
		domain.TimeOffEntry{ID: 2, TechnicianID: 1, StartDate: monday.AddDate(0, 0, 8), EndDate: monday.AddDate(0, 0, 9)},
	)

	entries, err := store.GetByRange(context.Background(), domain.NewDateRange(monday, monday.AddDate(0, 0, 6)))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(1), entries[0].ID)
}

package scheduling

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ShopScheduler/internal/board"
	"github.com/m04kA/SMC-ShopScheduler/internal/domain"
	"github.com/m04kA/SMC-ShopScheduler/internal/events"
	"github.com/m04kA/SMC-ShopScheduler/internal/infra/storage/memory"
	"github.com/m04kA/SMC-ShopScheduler/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-ShopScheduler/pkg/ptr"
)

var monday = time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

const (
	alex = int64(1)
	sam  = int64(2)
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fixedTime struct{ t time.Time }

func (f fixedTime) Now() time.Time { return f.t }

// flakyStore fails reads and writes on demand
type flakyStore struct {
	*memory.AppointmentStore
	failUpdate bool
	failDelete bool
	failFilter bool
	// afterUpdate runs once after the next successful Update
	afterUpdate func()
}

func (s *flakyStore) Update(ctx context.Context, id int64, patch domain.AppointmentPatch) (*domain.Appointment, error) {
	if s.failUpdate {
		return nil, errors.New("store unavailable")
	}
	updated, err := s.AppointmentStore.Update(ctx, id, patch)
	if err == nil && s.afterUpdate != nil {
		hook := s.afterUpdate
		s.afterUpdate = nil
		hook()
	}
	return updated, err
}

func (s *flakyStore) GetByFilter(ctx context.Context, filter domain.AppointmentFilter, ids ...int64) ([]*domain.Appointment, error) {
	if s.failFilter {
		return nil, errors.New("store unavailable")
	}
	return s.AppointmentStore.GetByFilter(ctx, filter, ids...)
}

func (s *flakyStore) Delete(ctx context.Context, id int64) error {
	if s.failDelete {
		return errors.New("store unavailable")
	}
	return s.AppointmentStore.Delete(ctx, id)
}

// cancellingTimeOff cancels the operation right after the last read before a write
type cancellingTimeOff struct {
	TimeOffRepository
	cancel context.CancelFunc
}

func (c cancellingTimeOff) GetByRange(ctx context.Context, r domain.DateRange) ([]domain.TimeOffEntry, error) {
	entries, err := c.TimeOffRepository.GetByRange(ctx, r)
	c.cancel()
	return entries, err
}

type fakeMetrics struct {
	outcomes    []string
	transitions []string
	splits      int
	merges      int
	deletes     int
}

func (m *fakeMetrics) IncAssignment(outcome string) { m.outcomes = append(m.outcomes, outcome) }
func (m *fakeMetrics) IncTransition(event string)   { m.transitions = append(m.transitions, event) }
func (m *fakeMetrics) IncSplits()                   { m.splits++ }
func (m *fakeMetrics) IncMerges()                   { m.merges++ }
func (m *fakeMetrics) IncDeletes()                  { m.deletes++ }

type fixture struct {
	coord       *Coordinator
	store       *flakyStore
	technicians *memory.TechnicianStore
	timeOff     *memory.TimeOffStore
	slots       *get_available_slots.UseCase
	bus         *events.Bus
	metrics     *fakeMetrics
	events      []events.Event
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store: &flakyStore{AppointmentStore: memory.NewAppointmentStore()},
		technicians: memory.NewTechnicianStore(
			&domain.Technician{ID: alex, Name: "Alex", Capacity: domain.WeekdaysCapacity(8), Active: true, Categories: []string{"brakes"}},
			&domain.Technician{ID: sam, Name: "Sam", Capacity: domain.WeekdaysCapacity(8), Active: true, Categories: []string{"tires"}},
		),
		timeOff: memory.NewTimeOffStore(),
		bus:     events.NewBus(nil),
		metrics: &fakeMetrics{},
	}
	f.bus.Subscribe(events.Wildcard, func(e events.Event) error {
		f.events = append(f.events, e)
		return nil
	})
	f.slots = get_available_slots.NewUseCase(f.store, f.technicians, f.timeOff, 14, 60, 92, nopLogger{}).
		WithTimeProvider(fixedTime{t: monday.Add(8 * time.Hour)})
	f.coord = NewCoordinator(f.store, f.technicians, f.timeOff, f.slots, board.New(f.bus, nil, nopLogger{}),
		f.bus, f.metrics, Settings{MaxRangeDays: 31}, nopLogger{})
	return f
}

func (f *fixture) draft(t *testing.T, hours ...float64) *domain.Appointment {
	t.Helper()
	req := &DraftRequest{CustomerRef: "customer-1", VehicleRef: "vin-1"}
	for _, h := range hours {
		req.Lines = append(req.Lines, LineInput{Description: "work", Hours: h})
	}
	a, err := f.coord.CreateDraft(context.Background(), req)
	require.NoError(t, err)
	return a
}

func (f *fixture) scheduled(t *testing.T, technicianID int64, hours ...float64) *domain.Appointment {
	t.Helper()
	a := f.draft(t, hours...)
	res, err := f.coord.Assign(context.Background(), AssignRequest{AppointmentID: a.ID, TechnicianID: technicianID, Date: monday})
	require.NoError(t, err)
	return res.Appointment
}

func (f *fixture) stored(t *testing.T, id int64) *domain.Appointment {
	t.Helper()
	a, err := f.store.GetByID(context.Background(), id)
	require.NoError(t, err)
	return a
}

func (f *fixture) eventTypes() []string {
	types := make([]string, 0, len(f.events))
	for _, e := range f.events {
		types = append(types, e.Type)
	}
	return types
}

func TestAssignCapacityScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.draft(t, 6)
	res, err := f.coord.Assign(ctx, AssignRequest{AppointmentID: first.ID, TechnicianID: alex, Date: monday})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusScheduled, res.Appointment.Status)
	assert.False(t, res.Overbooked)
	assert.Equal(t, 2.0, res.Snapshot.Remaining)

	second := f.draft(t, 5)
	_, err = f.coord.Assign(ctx, AssignRequest{AppointmentID: second.ID, TechnicianID: alex, Date: monday})
	require.ErrorIs(t, err, ErrCapacityExceeded)
	var capErr *CapacityError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, 5.0, capErr.RequestedHours)
	assert.Equal(t, 2.0, capErr.RemainingHours)
	assert.Equal(t, domain.StatusDraft, f.stored(t, second.ID).Status)

	res, err = f.coord.Assign(ctx, AssignRequest{AppointmentID: second.ID, TechnicianID: alex, Date: monday, AllowOverbook: true})
	require.NoError(t, err)
	assert.True(t, res.Overbooked)
	assert.True(t, res.Snapshot.IsOversubscribed())
	assert.Equal(t, -3.0, res.Snapshot.RawRemaining)

	assert.Equal(t, []string{OutcomeOK, OutcomeCapacityExceeded, OutcomeOverbooked}, f.metrics.outcomes)
}

func TestAssignMoveExcludesOwnHours(t *testing.T) {
	f := newFixture(t)
	a := f.scheduled(t, alex, 6)

	res, err := f.coord.Assign(context.Background(), AssignRequest{AppointmentID: a.ID, TechnicianID: alex, Date: monday.AddDate(0, 0, 1)})
	require.NoError(t, err)
	assert.True(t, res.Appointment.IsPlacedOn(domain.Placement{TechnicianID: alex, Date: monday.AddDate(0, 0, 1)}))

	res, err = f.coord.Assign(context.Background(), AssignRequest{AppointmentID: a.ID, TechnicianID: alex, Date: monday.AddDate(0, 0, 1)})
	require.NoError(t, err)
	assert.False(t, res.Overbooked)
}

func TestAssignRejectsCalendarViolations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.draft(t, 1)

	t.Run("non working day", func(t *testing.T) {
		_, err := f.coord.Assign(ctx, AssignRequest{AppointmentID: a.ID, TechnicianID: alex, Date: monday.AddDate(0, 0, -1)})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("unknown technician", func(t *testing.T) {
		_, err := f.coord.Assign(ctx, AssignRequest{AppointmentID: a.ID, TechnicianID: 99, Date: monday})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("unknown appointment", func(t *testing.T) {
		_, err := f.coord.Assign(ctx, AssignRequest{AppointmentID: 404, TechnicianID: alex, Date: monday})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("full day off", func(t *testing.T) {
		f.timeOff.Add(domain.TimeOffEntry{ID: 1, TechnicianID: alex, StartDate: monday.AddDate(0, 0, 2), EndDate: monday.AddDate(0, 0, 2)})
		_, err := f.coord.Assign(ctx, AssignRequest{AppointmentID: a.ID, TechnicianID: alex, Date: monday.AddDate(0, 0, 2)})
		require.ErrorIs(t, err, ErrCapacityExceeded)
		var capErr *CapacityError
		require.ErrorAs(t, err, &capErr)
		assert.True(t, capErr.FullyOff)
	})

	t.Run("missing technician", func(t *testing.T) {
		_, err := f.coord.Assign(ctx, AssignRequest{AppointmentID: a.ID, Date: monday})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestAssignCompletedIsInvalidTransition(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.scheduled(t, alex, 2, 1)

	started, err := f.coord.Start(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, started.Status)
	assert.Equal(t, domain.LineInProgress, started.Lines[0].Status)
	assert.Equal(t, domain.LinePending, started.Lines[1].Status)

	completed, err := f.coord.Complete(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, completed.Status)
	for _, l := range completed.Lines {
		assert.Equal(t, domain.LineDone, l.Status)
	}

	_, err = f.coord.Assign(ctx, AssignRequest{AppointmentID: a.ID, TechnicianID: sam, Date: monday})
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = f.coord.Resume(ctx, AssignRequest{AppointmentID: a.ID, TechnicianID: sam, Date: monday})
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = f.coord.Hold(ctx, a.ID, "late")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestHoldAndResume(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.scheduled(t, alex, 8)
	a := f.scheduled(t, sam, 3)

	_, err := f.coord.Hold(ctx, a.ID, "   ")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	held, err := f.coord.Hold(ctx, a.ID, "waiting for parts")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusOnHold, held.Status)
	assert.Nil(t, held.Placement)
	require.NotNil(t, held.HoldReason)
	assert.Equal(t, "waiting for parts", *held.HoldReason)

	_, err = f.coord.Resume(ctx, AssignRequest{AppointmentID: a.ID, TechnicianID: alex, Date: monday})
	assert.ErrorIs(t, err, ErrCapacityExceeded)
	assert.Equal(t, domain.StatusOnHold, f.stored(t, a.ID).Status)

	res, err := f.coord.Resume(ctx, AssignRequest{AppointmentID: a.ID, TechnicianID: sam, Date: monday.AddDate(0, 0, 1)})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusScheduled, res.Appointment.Status)
	assert.Nil(t, res.Appointment.HoldReason)
	assert.Equal(t, 5.0, res.Snapshot.Remaining)
}

func TestHoldFromDraft(t *testing.T) {
	f := newFixture(t)
	a := f.draft(t, 2)

	held, err := f.coord.Hold(context.Background(), a.ID, "customer unreachable")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusOnHold, held.Status)

	_, err = f.coord.Resume(context.Background(), AssignRequest{AppointmentID: f.draft(t, 1).ID, TechnicianID: alex, Date: monday})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestDropReordersWithinColumn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.scheduled(t, alex, 2)
	b := f.scheduled(t, alex, 2)
	c := f.scheduled(t, alex, 2)
	outcomes := len(f.metrics.outcomes)

	res, err := f.coord.Drop(ctx, DropRequest{AppointmentID: c.ID, TechnicianID: alex, Date: monday, Position: ptr.Ptr(0)})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Appointment.Priority)
	assert.Equal(t, 1, f.stored(t, a.ID).Priority)
	assert.Equal(t, 2, f.stored(t, b.ID).Priority)
	assert.Len(t, f.metrics.outcomes, outcomes, "reorder must not re-validate capacity")

	res, err = f.coord.Drop(ctx, DropRequest{AppointmentID: a.ID, TechnicianID: sam, Date: monday})
	require.NoError(t, err)
	assert.Equal(t, sam, res.Appointment.Placement.TechnicianID)
	assert.Equal(t, 0, res.Appointment.Priority)
	assert.Len(t, f.metrics.outcomes, outcomes+1)

	_, err = f.coord.Reorder(ctx, f.draft(t, 1).ID, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDropAcrossColumnsRevalidates(t *testing.T) {
	f := newFixture(t)
	f.scheduled(t, sam, 7)
	a := f.scheduled(t, alex, 2)

	_, err := f.coord.Drop(context.Background(), DropRequest{AppointmentID: a.ID, TechnicianID: sam, Date: monday})
	assert.ErrorIs(t, err, ErrCapacityExceeded)

	res, err := f.coord.Drop(context.Background(), DropRequest{AppointmentID: a.ID, TechnicianID: sam, Date: monday, AllowOverbook: true})
	require.NoError(t, err)
	assert.True(t, res.Overbooked)
}

func TestDropAcrossColumnsSurvivesCancelAfterMove(t *testing.T) {
	f := newFixture(t)
	waiting := f.scheduled(t, sam, 2)
	a := f.scheduled(t, alex, 2)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.store.afterUpdate = cancel

	res, err := f.coord.Drop(ctx, DropRequest{AppointmentID: a.ID, TechnicianID: sam, Date: monday, Position: ptr.Ptr(0)})
	require.NoError(t, err)
	require.Error(t, ctx.Err())

	assert.Equal(t, sam, res.Appointment.Placement.TechnicianID)
	assert.Equal(t, 0, res.Appointment.Priority)
	moved := f.stored(t, a.ID)
	assert.Equal(t, sam, moved.Placement.TechnicianID)
	assert.Equal(t, 0, moved.Priority)
	assert.Equal(t, 1, f.stored(t, waiting.ID).Priority)
}

func TestDropAcrossColumnsKeepsMoveWhenReorderFails(t *testing.T) {
	f := newFixture(t)
	f.scheduled(t, sam, 2)
	a := f.scheduled(t, alex, 2)

	f.store.afterUpdate = func() { f.store.failFilter = true }

	res, err := f.coord.Drop(context.Background(), DropRequest{AppointmentID: a.ID, TechnicianID: sam, Date: monday, Position: ptr.Ptr(0)})
	require.NoError(t, err)
	assert.Equal(t, sam, res.Appointment.Placement.TechnicianID)

	f.store.failFilter = false
	assert.Equal(t, sam, f.stored(t, a.ID).Placement.TechnicianID)
	assert.Contains(t, f.eventTypes(), events.TypeAppointmentChanged)
}

func TestAssignRejectsDraftWithoutHours(t *testing.T) {
	f := newFixture(t)
	a := f.draft(t)
	require.Zero(t, a.EstimatedHours)

	_, err := f.coord.Assign(context.Background(), AssignRequest{AppointmentID: a.ID, TechnicianID: alex, Date: monday})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.coord.Drop(context.Background(), DropRequest{AppointmentID: a.ID, TechnicianID: alex, Date: monday})
	assert.ErrorIs(t, err, ErrInvalidInput)

	assert.Equal(t, domain.StatusDraft, f.stored(t, a.ID).Status)
	assert.Empty(t, f.metrics.outcomes)
}

func TestSplit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	parent := f.scheduled(t, alex, 2, 3, 1)
	l1, l2, l3 := parent.Lines[0].ID, parent.Lines[1].ID, parent.Lines[2].ID

	res, err := f.coord.Split(ctx, &SplitRequest{
		AppointmentID: parent.ID,
		Parts:         []SplitPartRequest{{LineIDs: []int64{l1}, TechnicianID: ptr.Ptr(sam), Date: ptr.Ptr(monday)}},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusScheduled, res.Parent.Status)
	assert.Equal(t, 4.0, res.Parent.EstimatedHours)
	require.Len(t, res.Children, 1)
	assert.Equal(t, parent.ID, *res.Children[0].ParentID)
	assert.Equal(t, sam, res.Children[0].Placement.TechnicianID)
	assert.Equal(t, 2.0, res.Children[0].EstimatedHours)

	res, err = f.coord.Split(ctx, &SplitRequest{
		AppointmentID: parent.ID,
		Parts:         []SplitPartRequest{{LineIDs: []int64{l2}}, {LineIDs: []int64{l3}}},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusArchived, res.Parent.Status)
	assert.Zero(t, res.Parent.EstimatedHours)
	require.Len(t, res.Children, 2)
	for _, child := range res.Children {
		assert.True(t, child.IsPlacedOn(domain.Placement{TechnicianID: alex, Date: monday}))
	}
	assert.Equal(t, 2, f.metrics.splits)

	_, err = f.coord.Split(ctx, &SplitRequest{AppointmentID: res.Children[0].ID})
	assert.ErrorIs(t, err, ErrSplitRejected)
}

func TestSplitChecksCapacityOfMovedParts(t *testing.T) {
	f := newFixture(t)
	f.scheduled(t, sam, 6)
	parent := f.scheduled(t, alex, 2, 2)

	_, err := f.coord.Split(context.Background(), &SplitRequest{
		AppointmentID: parent.ID,
		Parts: []SplitPartRequest{
			{LineIDs: []int64{parent.Lines[0].ID}, TechnicianID: ptr.Ptr(sam), Date: ptr.Ptr(monday)},
			{LineIDs: []int64{parent.Lines[1].ID}, TechnicianID: ptr.Ptr(sam), Date: ptr.Ptr(monday)},
		},
	})
	assert.ErrorIs(t, err, ErrCapacityExceeded)

	children, err := f.store.GetByFilter(context.Background(), domain.AppointmentFilter{ParentID: &parent.ID})
	require.NoError(t, err)
	assert.Empty(t, children)
}

func TestSplitCompensatesFailedParentUpdate(t *testing.T) {
	f := newFixture(t)
	parent := f.scheduled(t, alex, 2, 2)
	f.store.failUpdate = true

	_, err := f.coord.Split(context.Background(), &SplitRequest{
		AppointmentID: parent.ID,
		Parts:         []SplitPartRequest{{LineIDs: []int64{parent.Lines[0].ID}}},
	})
	require.ErrorIs(t, err, ErrPersistenceFailure)

	children, err := f.store.GetByFilter(context.Background(), domain.AppointmentFilter{ParentID: &parent.ID})
	require.NoError(t, err)
	assert.Empty(t, children)
	assert.Len(t, f.stored(t, parent.ID).Lines, 2)
	assert.Contains(t, f.eventTypes(), events.TypeAppointmentRolledBack)
}

func TestMerge(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	parent := f.scheduled(t, alex, 2, 3)
	split, err := f.coord.Split(ctx, &SplitRequest{
		AppointmentID: parent.ID,
		Parts:         []SplitPartRequest{{LineIDs: []int64{parent.Lines[1].ID}, TechnicianID: ptr.Ptr(sam), Date: ptr.Ptr(monday)}},
	})
	require.NoError(t, err)
	child := split.Children[0]

	other := f.scheduled(t, sam, 1)
	_, err = f.coord.Merge(ctx, MergeRequest{ParentID: parent.ID, ChildID: other.ID})
	assert.ErrorIs(t, err, ErrSplitRejected)

	merged, err := f.coord.Merge(ctx, MergeRequest{ParentID: parent.ID, ChildID: child.ID})
	require.NoError(t, err)
	assert.Equal(t, 5.0, merged.EstimatedHours)
	assert.Len(t, merged.Lines, 2)

	_, err = f.store.GetByID(ctx, child.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 1, f.metrics.merges)
}

func TestMergeRevertsParentWhenChildDeleteFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	parent := f.scheduled(t, alex, 2, 3)
	split, err := f.coord.Split(ctx, &SplitRequest{
		AppointmentID: parent.ID,
		Parts:         []SplitPartRequest{{LineIDs: []int64{parent.Lines[1].ID}}},
	})
	require.NoError(t, err)

	f.store.failDelete = true
	_, err = f.coord.Merge(ctx, MergeRequest{ParentID: parent.ID, ChildID: split.Children[0].ID})
	require.ErrorIs(t, err, ErrPersistenceFailure)

	reverted := f.stored(t, parent.ID)
	assert.Equal(t, 2.0, reverted.EstimatedHours)
	assert.Len(t, reverted.Lines, 1)
}

func TestDeleteParentWithActiveChild(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	parent := f.scheduled(t, alex, 2, 3)
	split, err := f.coord.Split(ctx, &SplitRequest{
		AppointmentID: parent.ID,
		Parts:         []SplitPartRequest{{LineIDs: []int64{parent.Lines[0].ID}}},
	})
	require.NoError(t, err)
	child := split.Children[0]

	err = f.coord.Delete(ctx, parent.ID, true)
	assert.ErrorIs(t, err, ErrSplitRejected)

	err = f.coord.Delete(ctx, child.ID, false)
	assert.ErrorIs(t, err, ErrConfirmationRequired)

	require.NoError(t, f.coord.Delete(ctx, child.ID, true))
	require.NoError(t, f.coord.Delete(ctx, parent.ID, true))

	_, err = f.store.GetByID(ctx, parent.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 2, f.metrics.deletes)
	_, ok := f.coord.Board().Get(parent.ID)
	assert.False(t, ok)
}

func TestDeleteDetachesArchivedChildren(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	parent := f.scheduled(t, alex, 2, 3)
	split, err := f.coord.Split(ctx, &SplitRequest{
		AppointmentID: parent.ID,
		Parts:         []SplitPartRequest{{LineIDs: []int64{parent.Lines[0].ID}}},
	})
	require.NoError(t, err)
	child := split.Children[0]

	// the child itself is fully split and becomes archived
	_, err = f.coord.Split(ctx, &SplitRequest{
		AppointmentID: child.ID,
		Parts:         []SplitPartRequest{{LineIDs: []int64{child.Lines[0].ID}}},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusArchived, f.stored(t, child.ID).Status)

	require.NoError(t, f.coord.Delete(ctx, parent.ID, true))
	assert.Nil(t, f.stored(t, child.ID).ParentID)
	assert.Contains(t, f.eventTypes(), events.TypeAppointmentOrphaned)

	err = f.coord.Delete(ctx, child.ID, true)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestPersistenceFailureRollsBackBoard(t *testing.T) {
	f := newFixture(t)
	a := f.scheduled(t, alex, 2)
	f.store.failUpdate = true

	_, err := f.coord.Hold(context.Background(), a.ID, "parts")
	require.ErrorIs(t, err, ErrPersistenceFailure)

	onBoard, ok := f.coord.Board().Get(a.ID)
	require.True(t, ok)
	assert.Equal(t, domain.StatusScheduled, onBoard.Status)
	assert.Equal(t, domain.StatusScheduled, f.stored(t, a.ID).Status)
	assert.Contains(t, f.eventTypes(), events.TypeAppointmentRolledBack)
}

func TestCancelledBeforeWriteHasNoSideEffects(t *testing.T) {
	f := newFixture(t)
	a := f.draft(t, 2)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	coord := NewCoordinator(f.store, f.technicians, cancellingTimeOff{TimeOffRepository: f.timeOff, cancel: cancel},
		f.slots, board.New(f.bus, nil, nopLogger{}), f.bus, nil, Settings{}, nopLogger{})

	_, err := coord.Assign(ctx, AssignRequest{AppointmentID: a.ID, TechnicianID: alex, Date: monday})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, domain.StatusDraft, f.stored(t, a.ID).Status)
}

func TestBookNew(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("explicit slot", func(t *testing.T) {
		res, err := f.coord.BookNew(ctx, &BookRequest{
			DraftRequest: DraftRequest{Lines: []LineInput{{Description: "oil change", Hours: 1}}},
			TechnicianID: ptr.Ptr(alex),
			Date:         ptr.Ptr(monday),
		})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusScheduled, res.Appointment.Status)
		assert.NotZero(t, res.Appointment.ID)
		assert.False(t, res.OffPreference)
	})

	t.Run("preferred technician is off", func(t *testing.T) {
		f.timeOff.Add(domain.TimeOffEntry{ID: 7, TechnicianID: sam, StartDate: monday, EndDate: monday.AddDate(0, 0, 30)})
		res, err := f.coord.BookNew(ctx, &BookRequest{
			DraftRequest:          DraftRequest{Lines: []LineInput{{Description: "alignment", Hours: 2}}},
			PreferredTechnicianID: ptr.Ptr(sam),
			NotBefore:             ptr.Ptr(monday),
		})
		require.NoError(t, err)
		assert.True(t, res.OffPreference)
		assert.Equal(t, alex, res.Appointment.Placement.TechnicianID)
	})

	t.Run("no slot in horizon", func(t *testing.T) {
		_, err := f.coord.BookNew(ctx, &BookRequest{
			DraftRequest: DraftRequest{Lines: []LineInput{{Description: "engine rebuild", Hours: 9}}},
		})
		assert.ErrorIs(t, err, ErrNoSlotFound)
	})

	t.Run("technician without date", func(t *testing.T) {
		_, err := f.coord.BookNew(ctx, &BookRequest{
			DraftRequest: DraftRequest{Lines: []LineInput{{Description: "tires", Hours: 1}}},
			TechnicianID: ptr.Ptr(alex),
		})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("zero hours", func(t *testing.T) {
		_, err := f.coord.BookNew(ctx, &BookRequest{TechnicianID: ptr.Ptr(alex), Date: ptr.Ptr(monday)})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestLoadBoard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.scheduled(t, alex, 6)
	held := f.scheduled(t, sam, 2)
	_, err := f.coord.Hold(ctx, held.ID, "parts on order")
	require.NoError(t, err)
	orphan, err := f.store.Create(ctx, &domain.Appointment{Status: domain.StatusDraft, ParentID: ptr.Ptr(int64(999))})
	require.NoError(t, err)

	snap, err := f.coord.LoadBoard(ctx, domain.NewDateRange(monday, monday))
	require.NoError(t, err)

	require.Len(t, snap.Columns, 2)
	assert.Equal(t, alex, snap.Columns[0].TechnicianID)
	assert.Equal(t, 6.0, snap.Columns[0].Snapshot.CommittedHours)
	assert.Equal(t, 2.0, snap.Columns[0].Snapshot.Remaining)
	assert.Len(t, snap.Columns[0].Appointments, 1)
	assert.Equal(t, 8.0, snap.Columns[1].Snapshot.Remaining)
	assert.Empty(t, snap.Columns[1].Appointments)

	assert.Len(t, snap.Held, 1)
	assert.Len(t, snap.Drafts, 1)
	assert.Equal(t, []int64{orphan.ID}, snap.Repaired)
	assert.Nil(t, f.stored(t, orphan.ID).ParentID)
	assert.Contains(t, f.eventTypes(), events.TypeAppointmentOrphaned)

	_, err = f.coord.LoadBoard(ctx, domain.NewDateRange(monday, monday.AddDate(0, 2, 0)))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

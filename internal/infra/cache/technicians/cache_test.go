package technicians

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ShopScheduler/internal/domain"
)

type mockSource struct {
	mock.Mock
}

func (m *mockSource) GetAll(ctx context.Context) ([]*domain.Technician, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]*domain.Technician)
	return list, args.Error(1)
}

type nopLogger struct{}

func (nopLogger) Warn(string, ...interface{}) {}

type lookups struct {
	hits, misses int
}

func (l *lookups) IncCacheLookup(_ string, hit bool) {
	if hit {
		l.hits++
	} else {
		l.misses++
	}
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func roster() []*domain.Technician {
	return []*domain.Technician{
		{ID: 1, Name: "Alex", Categories: []string{"brakes"}, Capacity: domain.WeekdaysCapacity(8), Active: true},
		{ID: 2, Name: "Sam", Capacity: domain.WeekdaysCapacity(6), Active: false},
	}
}

func TestGetAllReadThrough(t *testing.T) {
	mr, client := newRedis(t)
	source := &mockSource{}
	source.On("GetAll", mock.Anything).Return(roster(), nil).Once()
	metrics := &lookups{}
	cache := New(source, client, time.Minute, metrics, nopLogger{})
	ctx := context.Background()

	first, err := cache.GetAll(ctx)
	require.NoError(t, err)
	assert.True(t, mr.Exists(Key))

	second, err := cache.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, second, 2)
	assert.Equal(t, first[0].Name, second[0].Name)
	assert.Equal(t, first[0].Capacity, second[0].Capacity)
	assert.Equal(t, []string{"brakes"}, second[0].Categories)
	assert.False(t, second[1].Active)

	source.AssertExpectations(t)
	assert.Equal(t, 1, metrics.hits)
	assert.Equal(t, 1, metrics.misses)
}

func TestGetAllAfterExpiry(t *testing.T) {
	mr, client := newRedis(t)
	source := &mockSource{}
	source.On("GetAll", mock.Anything).Return(roster(), nil).Times(2)
	cache := New(source, client, time.Minute, nil, nopLogger{})
	ctx := context.Background()

	_, err := cache.GetAll(ctx)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)
	assert.False(t, mr.Exists(Key))
	_, err = cache.GetAll(ctx)
	require.NoError(t, err)
	assert.True(t, mr.Exists(Key))

	source.AssertExpectations(t)
}

func TestGetAllCorruptedEntry(t *testing.T) {
	mr, client := newRedis(t)
	require.NoError(t, mr.Set(Key, "not json"))
	source := &mockSource{}
	source.On("GetAll", mock.Anything).Return(roster(), nil).Once()

	list, err := New(source, client, time.Minute, nil, nopLogger{}).GetAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestGetAllDisabled(t *testing.T) {
	source := &mockSource{}
	source.On("GetAll", mock.Anything).Return(nil, errors.New("db down")).Once()

	_, err := New(source, nil, time.Minute, nil, nopLogger{}).GetAll(context.Background())
	assert.EqualError(t, err, "db down")
	source.AssertExpectations(t)
}

package worker_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"todoTracker/internal/repository/session/inmemory"
	"todoTracker/internal/worker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockPurger - мок очищаемого хранилища
type MockPurger struct {
	mock.Mock
}

func (m *MockPurger) PurgeExpired(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func TestJanitor_Sweep(t *testing.T) {
	ok := new(MockPurger)
	ok.On("PurgeExpired", mock.Anything).Return(3, nil)

	failing := new(MockPurger)
	failing.On("PurgeExpired", mock.Anything).Return(0, errors.New("redis down"))

	janitor := worker.NewJanitor(time.Minute,
		worker.WithTarget("sessions", ok),
		worker.WithTarget("broken", failing),
		worker.WithTarget("nil", nil),
	)
	require.Equal(t, 2, janitor.Targets())

	removed := janitor.Sweep(context.Background())

	assert.Equal(t, map[string]int{"sessions": 3}, removed)
	ok.AssertExpectations(t)
	failing.AssertExpectations(t)
}

func TestJanitor_PurgesExpiredSessions(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store := inmemory.NewSessionStore(func() time.Time { return now })

	_, err := store.Create(ctx, 1, time.Minute)
	require.NoError(t, err)
	live, err := store.Create(ctx, 2, time.Hour)
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	removed := worker.NewJanitor(time.Minute, worker.WithTarget("sessions", store)).Sweep(ctx)

	assert.Equal(t, 1, removed["sessions"])
	assert.Equal(t, 1, store.Len())
	userID, err := store.Lookup(ctx, live)
	require.NoError(t, err)
	assert.Equal(t, int64(2), userID)
}

func TestJanitor_StartStopsOnCancel(t *testing.T) {
	purger := new(MockPurger)
	purger.On("PurgeExpired", mock.Anything).Return(0, nil).Maybe()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		worker.NewJanitor(10*time.Millisecond, worker.WithTarget("sessions", purger)).Start(ctx)
		close(done)
	}()

	time.Sleep(35 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop after cancel")
	}
}

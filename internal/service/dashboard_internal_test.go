package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/UnknownOlympus/skyguard/internal/geofence"
	"github.com/UnknownOlympus/skyguard/internal/metrics"
	"github.com/UnknownOlympus/skyguard/internal/models"
	"github.com/UnknownOlympus/skyguard/internal/source"
	"github.com/UnknownOlympus/skyguard/internal/telemetry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type sourceMock struct {
	mock.Mock
}

func (m *sourceMock) Fetch(ctx context.Context) ([]models.Telemetry, error) {
	args := m.Called(ctx)
	batch, _ := args.Get(0).([]models.Telemetry)
	return batch, args.Error(1)
}

func newTestService(t *testing.T, src source.Source, zone geofence.Zone, v telemetry.Validator) (*DashboardService, *metrics.Metrics) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	m := metrics.NewMetrics(prometheus.NewRegistry())

	return NewDashboardService(logger, src, "mock", geofence.NewChecker(zone, v), v, m, 3, 0), m
}

func TestReload(t *testing.T) {
	ctx := t.Context()

	t.Run("initial state is loading", func(t *testing.T) {
		svc, _ := newTestService(t, &sourceMock{}, geofence.ReferenceZone, telemetry.Validator{})

		assert.Equal(t, StateLoading, svc.Snapshot().State)
		assert.True(t, svc.Healthy())
	})

	t.Run("successful fetch keeps order and annotates", func(t *testing.T) {
		src := &sourceMock{}
		src.On("Fetch", ctx).Return(source.Fleet(), nil).Once()
		svc, m := newTestService(t, src, geofence.ReferenceZone, telemetry.Validator{})

		snap := svc.Reload(ctx)

		require.Equal(t, StateReady, snap.State)
		require.Len(t, snap.Drones, 6)
		assert.Empty(t, snap.Error)
		assert.NotEmpty(t, snap.BatchID)
		for idx, want := range source.Fleet() {
			assert.Equal(t, want.ID, snap.Drones[idx].ID)
			assert.False(t, snap.Drones[idx].InNoFlyZone)
			assert.False(t, snap.Drones[idx].Valid, "negative signal strength is rejected by default")
		}
		assert.Equal(t, snap, svc.Snapshot())
		assert.InDelta(t, 6.0, testutil.ToFloat64(m.DronesTracked), 0)
		assert.InDelta(t, 6.0, testutil.ToFloat64(m.RecordsRejected), 0)
		assert.InDelta(t, 1.0, testutil.ToFloat64(m.FetchTotal.WithLabelValues("mock", "success")), 0)
		assert.InDelta(t, 0.0, testutil.ToFloat64(m.ActiveAnnotators), 0)
		src.AssertExpectations(t)
	})

	t.Run("normalized zone flags drones inside", func(t *testing.T) {
		batch := source.Fleet()
		batch[1].Coordinates = &models.Coordinates{Latitude: 30, Longitude: 35}
		src := &sourceMock{}
		src.On("Fetch", ctx).Return(batch, nil).Once()
		lenient := telemetry.Validator{Signal: telemetry.AllowNegativeSignal}
		svc, m := newTestService(t, src, geofence.ReferenceZone.Normalize(), lenient)

		snap := svc.Reload(ctx)

		require.Len(t, snap.Drones, 6)
		assert.True(t, snap.Drones[1].InNoFlyZone)
		for idx, view := range snap.Drones {
			assert.True(t, view.Valid)
			if idx != 1 {
				assert.False(t, view.InNoFlyZone, view.ID)
			}
		}
		assert.InDelta(t, 1.0, testutil.ToFloat64(m.DronesInNoFly), 0)
		assert.InDelta(t, 0.0, testutil.ToFloat64(m.RecordsRejected), 0)
	})

	t.Run("empty batch", func(t *testing.T) {
		src := &sourceMock{}
		src.On("Fetch", ctx).Return([]models.Telemetry{}, nil).Once()
		svc, _ := newTestService(t, src, geofence.ReferenceZone, telemetry.Validator{})

		snap := svc.Reload(ctx)

		assert.Equal(t, StateReady, snap.State)
		assert.Empty(t, snap.Drones)
	})

	t.Run("failed fetch drops the previous batch", func(t *testing.T) {
		src := &sourceMock{}
		src.On("Fetch", ctx).Return(source.Fleet(), nil).Once()
		src.On("Fetch", ctx).Return(nil, source.ErrSimulatedFetch).Once()
		svc, m := newTestService(t, src, geofence.ReferenceZone, telemetry.Validator{})

		first := svc.Reload(ctx)
		second := svc.Reload(ctx)

		require.Equal(t, StateReady, first.State)
		require.Equal(t, StateFailed, second.State)
		assert.Equal(t, "simulated API fetch error", second.Error)
		assert.Empty(t, second.Drones)
		assert.NotEqual(t, first.BatchID, second.BatchID)
		assert.False(t, svc.Healthy())
		assert.InDelta(t, 1.0, testutil.ToFloat64(m.FetchTotal.WithLabelValues("mock", "failure")), 0)
		src.AssertExpectations(t)
	})

	t.Run("retry after failure", func(t *testing.T) {
		src := &sourceMock{}
		src.On("Fetch", ctx).Return(nil, errors.New("First failure")).Once()
		src.On("Fetch", ctx).Return(source.Fleet(), nil).Once()
		svc, _ := newTestService(t, src, geofence.ReferenceZone, telemetry.Validator{})

		assert.Equal(t, StateFailed, svc.Reload(ctx).State)
		assert.Equal(t, StateReady, svc.Reload(ctx).State)
		assert.True(t, svc.Healthy())
		src.AssertExpectations(t)
	})
}

// blockingSource counts calls and blocks until released.
type blockingSource struct {
	mu      sync.Mutex
	once    sync.Once
	calls   int
	started chan struct{}
	release chan struct{}
}

func (b *blockingSource) Fetch(_ context.Context) ([]models.Telemetry, error) {
	b.mu.Lock()
	b.calls++
	b.mu.Unlock()
	b.once.Do(func() { close(b.started) })
	<-b.release
	return source.Fleet(), nil
}

func TestReload_SingleFlight(t *testing.T) {
	src := &blockingSource{started: make(chan struct{}), release: make(chan struct{})}
	svc, _ := newTestService(t, src, geofence.ReferenceZone, telemetry.Validator{})
	ctx := t.Context()

	var wgr sync.WaitGroup
	results := make([]Snapshot, 4)

	wgr.Add(1)
	go func() {
		defer wgr.Done()
		results[0] = svc.Reload(ctx)
	}()
	<-src.started

	assert.Equal(t, StateLoading, svc.Snapshot().State)

	for i := 1; i < len(results); i++ {
		wgr.Add(1)
		go func() {
			defer wgr.Done()
			results[i] = svc.Reload(ctx)
		}()
	}
	// Give the followers a chance to join the in-flight call before it completes.
	time.Sleep(50 * time.Millisecond)
	close(src.release)
	wgr.Wait()

	assert.Equal(t, 1, src.calls)
	for _, snap := range results {
		assert.Equal(t, StateReady, snap.State)
		assert.Equal(t, results[0].BatchID, snap.BatchID)
	}
}

func TestReloadAsync(t *testing.T) {
	src := &blockingSource{started: make(chan struct{}), release: make(chan struct{})}
	svc, _ := newTestService(t, src, geofence.ReferenceZone, telemetry.Validator{})
	svc.snapshot = Snapshot{State: StateFailed, Error: "First failure"}

	snap := svc.ReloadAsync(t.Context())

	assert.Equal(t, StateLoading, snap.State)
	assert.Equal(t, StateLoading, svc.Snapshot().State, "loading is visible before the fetch completes")
	assert.Empty(t, svc.Snapshot().Error)

	<-src.started
	close(src.release)

	require.Eventually(t, func() bool {
		return svc.Snapshot().State == StateReady
	}, time.Second, 5*time.Millisecond)
	assert.Len(t, svc.Snapshot().Drones, 6)
}

func TestRun(t *testing.T) {
	t.Run("fetches once on start", func(t *testing.T) {
		tctx, cancel := context.WithTimeout(t.Context(), 50*time.Millisecond)
		defer cancel()
		src := &sourceMock{}
		src.On("Fetch", mock.Anything).Return(source.Fleet(), nil).Once()
		svc, _ := newTestService(t, src, geofence.ReferenceZone, telemetry.Validator{})

		svc.Run(tctx)

		assert.Equal(t, StateReady, svc.Snapshot().State)
		src.AssertExpectations(t)
	})

	t.Run("refreshes on the poll interval", func(t *testing.T) {
		tctx, cancel := context.WithTimeout(t.Context(), 100*time.Millisecond)
		defer cancel()
		src := &sourceMock{}
		src.On("Fetch", mock.Anything).Return(source.Fleet(), nil)
		svc, _ := newTestService(t, src, geofence.ReferenceZone, telemetry.Validator{})
		svc.pollInterval = 10 * time.Millisecond

		svc.Run(tctx)

		assert.Greater(t, len(src.Calls), 2)
	})

	t.Run("start context cancelled", func(t *testing.T) {
		tctx, cancel := context.WithCancel(t.Context())
		cancel()
		src := &sourceMock{}
		src.On("Fetch", mock.Anything).Return(nil, context.Canceled).Once()
		svc, _ := newTestService(t, src, geofence.ReferenceZone, telemetry.Validator{})

		svc.Run(tctx)

		assert.Equal(t, StateFailed, svc.Snapshot().State)
	})
}

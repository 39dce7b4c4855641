package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/UnknownOlympus/skyguard/internal/geofence"
	"github.com/UnknownOlympus/skyguard/internal/metrics"
	"github.com/UnknownOlympus/skyguard/internal/models"
	"github.com/UnknownOlympus/skyguard/internal/source"
	"github.com/UnknownOlympus/skyguard/internal/telemetry"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// State is the lifecycle phase of the dashboard view.
type State string

const (
	StateLoading State = "loading"
	StateFailed  State = "failed"
	StateReady   State = "ready"
)

// DroneView is a fetched record annotated for display.
type DroneView struct {
	models.Telemetry
	Valid       bool `json:"valid"`
	InNoFlyZone bool `json:"inNoFlyZone"`
}

// Snapshot is the complete view state. A snapshot is replaced wholesale, never mutated.
type Snapshot struct {
	State     State       `json:"state"`
	Drones    []DroneView `json:"drones"`
	Error     string      `json:"error,omitempty"`
	BatchID   string      `json:"batchId,omitempty"`
	FetchedAt time.Time   `json:"fetchedAt"`
}

// DashboardService owns the dashboard view state. It fetches telemetry from a source,
// annotates every record with its validity and no-fly-zone status and keeps the latest result.
type DashboardService struct {
	log          *slog.Logger        // Logger for logging service activities
	source       source.Source       // Telemetry source
	sourceName   string              // Name of the source for metrics labeling
	checker      *geofence.Checker   // No-fly-zone checker
	validator    telemetry.Validator // Field-range validator shown on each card
	metrics      *metrics.Metrics    // Metrics for tracking service performance
	numWorkers   int                 // Number of concurrent annotation workers
	pollInterval time.Duration       // Refresh interval, zero fetches once

	group singleflight.Group

	mu       sync.RWMutex
	snapshot Snapshot
}

// NewDashboardService creates a new instance of DashboardService in the loading state.
func NewDashboardService(
	log *slog.Logger,
	src source.Source,
	sourceName string,
	checker *geofence.Checker,
	validator telemetry.Validator,
	metrics *metrics.Metrics,
	numWorkers int,
	pollInterval time.Duration,
) *DashboardService {
	if numWorkers < 1 {
		numWorkers = 1
	}

	return &DashboardService{
		log:          log,
		source:       src,
		sourceName:   sourceName,
		checker:      checker,
		validator:    validator,
		metrics:      metrics,
		numWorkers:   numWorkers,
		pollInterval: pollInterval,
		snapshot:     Snapshot{State: StateLoading},
	}
}

// Run issues the initial fetch and, if a poll interval is configured, refreshes on a ticker.
// It returns when the context is cancelled.
func (ds *DashboardService) Run(ctx context.Context) {
	ds.log.InfoContext(ctx, "Dashboard service started...")
	ds.Reload(ctx)

	if ds.pollInterval <= 0 {
		<-ctx.Done()
		ds.log.InfoContext(ctx, "Dashboard service stopped.")
		return
	}

	ticker := time.NewTicker(ds.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			ds.log.InfoContext(ctx, "Dashboard service stopped.")
			return
		case <-ticker.C:
			ds.log.DebugContext(ctx, "Refreshing telemetry...")
			ds.Reload(ctx)
		}
	}
}

// Reload fetches a new batch and returns the resulting snapshot. Concurrent callers share a
// single outstanding fetch.
func (ds *DashboardService) Reload(ctx context.Context) Snapshot {
	result, _, _ := ds.group.Do("fetch", func() (any, error) {
		return ds.load(ctx), nil
	})

	snap, _ := result.(Snapshot)
	return snap
}

// ReloadAsync switches the view to loading and fetches in the background. It returns the loading
// snapshot without waiting. A fetch already in flight is joined rather than repeated.
func (ds *DashboardService) ReloadAsync(ctx context.Context) Snapshot {
	snap := ds.markLoading()
	go ds.Reload(ctx)

	return snap
}

// Snapshot returns the current view state.
func (ds *DashboardService) Snapshot() Snapshot {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	return ds.snapshot
}

// Healthy reports whether the last fetch did not fail.
func (ds *DashboardService) Healthy() bool {
	return ds.Snapshot().State != StateFailed
}

// markLoading keeps the drones of the previous batch on screen while the next one is fetched.
func (ds *DashboardService) markLoading() Snapshot {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	ds.snapshot = Snapshot{State: StateLoading, Drones: ds.snapshot.Drones}
	return ds.snapshot
}

func (ds *DashboardService) load(ctx context.Context) Snapshot {
	ds.markLoading()

	batchID := uuid.NewString()
	ds.log.InfoContext(ctx, "Fetching telemetry", "source", ds.sourceName, "batch", batchID)

	startTime := time.Now()
	batch, err := ds.source.Fetch(ctx)
	duration := time.Since(startTime).Seconds()
	ds.metrics.FetchSeconds.WithLabelValues(ds.sourceName).Observe(duration)

	var snap Snapshot
	if err != nil {
		ds.log.ErrorContext(ctx, "Failed to fetch drone telemetry", "batch", batchID, "error", err)
		ds.metrics.FetchTotal.WithLabelValues(ds.sourceName, "failure").Inc()

		snap = Snapshot{State: StateFailed, Error: err.Error(), BatchID: batchID, FetchedAt: time.Now()}
	} else {
		ds.metrics.FetchTotal.WithLabelValues(ds.sourceName, "success").Inc()

		views := ds.annotate(ctx, batch)
		snap = Snapshot{State: StateReady, Drones: views, BatchID: batchID, FetchedAt: time.Now()}

		inZone := 0
		for _, view := range views {
			if view.InNoFlyZone {
				inZone++
			}
		}
		ds.metrics.DronesTracked.Set(float64(len(views)))
		ds.metrics.DronesInNoFly.Set(float64(inZone))
		ds.log.InfoContext(ctx, "Telemetry batch loaded", "batch", batchID, "drones", len(views), "no_fly", inZone)
	}

	ds.mu.Lock()
	ds.snapshot = snap
	ds.mu.Unlock()

	return snap
}

// annotate runs the validator and the geofence over the batch with a worker pool.
// The result keeps the order of the batch.
func (ds *DashboardService) annotate(ctx context.Context, batch []models.Telemetry) []DroneView {
	views := make([]DroneView, len(batch))
	if len(batch) == 0 {
		return views
	}

	jobs := make(chan int, len(batch))
	var wgr sync.WaitGroup

	for i := 1; i <= min(ds.numWorkers, len(batch)); i++ {
		wgr.Add(1)
		go ds.worker(ctx, i, &wgr, batch, views, jobs)
	}

	for idx := range batch {
		jobs <- idx
	}
	close(jobs)

	wgr.Wait()

	return views
}

// worker annotates the records whose indices arrive on jobs. Each index is written by exactly one
// worker.
func (ds *DashboardService) worker(
	ctx context.Context,
	idx int,
	wg *sync.WaitGroup,
	batch []models.Telemetry,
	views []DroneView,
	jobs <-chan int,
) {
	defer wg.Done()
	for pos := range jobs {
		ds.metrics.ActiveAnnotators.Inc()

		rec := &batch[pos]
		valid := ds.validator.Validate(rec)
		if !valid {
			ds.metrics.RecordsRejected.Inc()
			ds.log.DebugContext(ctx, "Record failed field validation", "worker", idx, "drone", rec.ID)
		}

		inZone := ds.checker.IsInNoFlyZone(rec)
		if inZone {
			ds.log.WarnContext(ctx, "Drone inside no-fly zone", "worker", idx, "drone", rec.ID)
		}

		views[pos] = DroneView{Telemetry: *rec, Valid: valid, InNoFlyZone: inZone}

		ds.metrics.ActiveAnnotators.Dec()
	}
}

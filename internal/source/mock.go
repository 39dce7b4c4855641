package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/UnknownOlympus/skyguard/internal/models"
	"github.com/UnknownOlympus/skyguard/internal/telemetry"
)

// Defaults used by the mock source when nothing else is configured.
const (
	DefaultMockDelay       = 2500 * time.Millisecond
	DefaultMockFailureRate = 0.05
)

// ErrSimulatedFetch is returned by the mock source on its random failure path.
var ErrSimulatedFetch = errors.New("simulated API fetch error")

// MockSource stands in for a telemetry ingestion service. After a fixed delay it either fails
// at random or returns its record set validated against the telemetry schema.
type MockSource struct {
	records     []models.Telemetry
	delay       time.Duration
	failureRate float64
	draw        func() float64 // returns a value in [0, 1)
	schema      *telemetry.Schema
	log         *slog.Logger
}

// NewMockSource creates a mock source serving Fleet.
func NewMockSource(delay time.Duration, failureRate float64, log *slog.Logger) *MockSource {
	return NewMockSourceWithRandom(Fleet(), delay, failureRate, rand.Float64, log)
}

// NewMockSourceWithRandom creates a mock source with a custom record set and random draw.
// Useful for deterministic tests.
func NewMockSourceWithRandom(
	records []models.Telemetry,
	delay time.Duration,
	failureRate float64,
	draw func() float64,
	log *slog.Logger,
) *MockSource {
	return &MockSource{
		records:     cloneBatch(records),
		delay:       delay,
		failureRate: failureRate,
		draw:        draw,
		schema:      telemetry.NewSchema(),
		log:         log,
	}
}

// Fetch waits for the configured delay and returns a copy of the record set.
func (ms *MockSource) Fetch(ctx context.Context) ([]models.Telemetry, error) {
	ms.log.DebugContext(ctx, "Fetching telemetry data", "source", "mock", "delay", ms.delay)

	if err := wait(ctx, ms.delay); err != nil {
		return nil, err
	}

	if ms.draw() < ms.failureRate {
		ms.log.ErrorContext(ctx, "Simulated fetch error", "source", "mock")
		return nil, ErrSimulatedFetch
	}

	if err := ms.schema.ValidateBatch(ms.records); err != nil {
		ms.log.ErrorContext(ctx, "Mock data failed schema validation", "error", err)
		return nil, err
	}

	ms.log.DebugContext(ctx, "Data fetched and validated successfully", "records", len(ms.records))

	return cloneBatch(ms.records), nil
}

func wait(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("fetch cancelled: %w", err)
		}
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("fetch cancelled: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}

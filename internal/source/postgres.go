package source

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/UnknownOlympus/skyguard/internal/models"
	"github.com/UnknownOlympus/skyguard/internal/telemetry"
)

// DefaultPostgresLimit caps the number of drones read per fetch.
const DefaultPostgresLimit = 100

// TelemetryReader is the read side of the telemetry repository.
type TelemetryReader interface {
	FetchLatestTelemetry(ctx context.Context, limit int) ([]models.Telemetry, error)
}

// PostgresSource serves the latest reading per drone from a table filled by an external
// ingestion service.
type PostgresSource struct {
	repo   TelemetryReader
	limit  int
	schema *telemetry.Schema
	log    *slog.Logger
}

// NewPostgresSource creates a source on top of the repository.
func NewPostgresSource(repo TelemetryReader, limit int, log *slog.Logger) *PostgresSource {
	if limit <= 0 {
		limit = DefaultPostgresLimit
	}

	return &PostgresSource{repo: repo, limit: limit, schema: telemetry.NewSchema(), log: log}
}

// Fetch reads the latest records and validates them as a single batch.
func (ps *PostgresSource) Fetch(ctx context.Context) ([]models.Telemetry, error) {
	ps.log.DebugContext(ctx, "Fetching telemetry data", "source", "postgres", "limit", ps.limit)

	batch, err := ps.repo.FetchLatestTelemetry(ctx, ps.limit)
	if err != nil {
		return nil, fmt.Errorf("failed to read telemetry from database: %w", err)
	}

	if err = ps.schema.ValidateBatch(batch); err != nil {
		return nil, err
	}

	return batch, nil
}

package repository

import (
	"context"
	"fmt"

	"github.com/UnknownOlympus/skyguard/internal/models"
)

// FetchLatestTelemetry retrieves the most recent reading of each drone.
// Rows without a position are returned with nil coordinates so that schema validation can reject
// them; an unknown status aborts the whole read.
//
// Parameters:
// - ctx: The context for the operation, allowing for cancellation and timeout.
// - limit: The maximum number of drones to retrieve.
//
// Returns:
// - A slice of models.Telemetry ordered by drone ID.
// - An error if the query fails or if there is an issue scanning the results.
func (r *Repository) FetchLatestTelemetry(ctx context.Context, limit int) ([]models.Telemetry, error) {
	var batch []models.Telemetry
	query := `
		SELECT DISTINCT ON (drone_id)
			drone_id, latitude, longitude, altitude, speed, signal_strength, frequency, status
		FROM public.drone_telemetry
		ORDER BY drone_id, reported_at DESC
		LIMIT $1;
	`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest telemetry: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			rec      models.Telemetry
			lat, lon *float64
			status   string
		)
		if errScan := rows.Scan(
			&rec.ID, &lat, &lon, &rec.Altitude, &rec.Speed, &rec.SignalStrength, &rec.Frequency, &status,
		); errScan != nil {
			return nil, fmt.Errorf("failed to scan telemetry row: %w", errScan)
		}

		if lat != nil && lon != nil {
			rec.Coordinates = &models.Coordinates{Latitude: *lat, Longitude: *lon}
		}

		if rec.Status, err = models.ParseStatus(status); err != nil {
			return nil, fmt.Errorf("failed to parse status of drone %s: %w", rec.ID, err)
		}

		r.log.DebugContext(ctx, "Telemetry row received", "drone", rec.ID, "status", rec.Status)
		batch = append(batch, rec)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read row: %w", err)
	}

	return batch, nil
}

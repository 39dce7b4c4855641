package source

import (
	"context"
	"net/http"

	"github.com/UnknownOlympus/skyguard/internal/models"
)

// Source is an interface that defines a method for fetching a telemetry batch.
// Fetch returns either the whole batch or an error; there is no partial success.
type Source interface {
	Fetch(ctx context.Context) ([]models.Telemetry, error)
}

// HTTPClient defines the interface for making HTTP requests.
// This allows for easy mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// cloneBatch returns a deep copy so callers never share coordinates with the source.
func cloneBatch(batch []models.Telemetry) []models.Telemetry {
	out := make([]models.Telemetry, len(batch))
	for idx, rec := range batch {
		if rec.Coordinates != nil {
			coords := *rec.Coordinates
			rec.Coordinates = &coords
		}
		out[idx] = rec
	}

	return out
}

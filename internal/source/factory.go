// Package source provides the telemetry data sources the dashboard can read from.
package source

import (
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Type represents the kind of telemetry source.
type Type string

const (
	// TypeMock is the built-in simulated source.
	TypeMock Type = "mock"
	// TypeHTTP reads a JSON feed over HTTP.
	TypeHTTP Type = "http"
	// TypePostgres reads the latest reading per drone from PostgreSQL.
	TypePostgres Type = "postgres"
)

// Config holds configuration for creating a telemetry source.
type Config struct {
	Type        Type            // Type of source to create
	URL         string          // Feed URL (used by http source)
	RateLimit   int             // Requests per second (used by http source)
	Delay       time.Duration   // Artificial latency (used by mock source)
	FailureRate float64         // Probability of a simulated failure (used by mock source)
	Reader      TelemetryReader // Repository (used by postgres source)
	Limit       int             // Maximum drones per fetch (used by postgres source)
	Logger      *slog.Logger    // Logger for the source
}

// NewSource creates a telemetry source based on the provided configuration.
//
// Supported source types:
// - "mock": fixed six-drone fleet with simulated latency and failures
// - "http": JSON feed (requires URL)
// - "postgres": latest readings from the drone_telemetry table (requires Reader)
//
// Returns an error if the source type is unsupported or if source creation fails.
func NewSource(config Config) (Source, error) {
	switch config.Type {
	case TypeMock:
		return newMockSource(config)
	case TypeHTTP:
		return newHTTPSource(config)
	case TypePostgres:
		return newPostgresSource(config)
	default:
		return nil, fmt.Errorf("unsupported source type: %s", config.Type)
	}
}

func newMockSource(config Config) (Source, error) {
	if config.FailureRate < 0 || config.FailureRate > 1 {
		return nil, fmt.Errorf("failure rate must be within [0, 1], got %v", config.FailureRate)
	}

	return NewMockSource(config.Delay, config.FailureRate, config.Logger), nil
}

func newHTTPSource(config Config) (Source, error) {
	if config.URL == "" {
		return nil, ErrFeedURLRequired
	}

	return NewHTTPSource(config.URL, config.RateLimit, config.Logger), nil
}

func newPostgresSource(config Config) (Source, error) {
	if config.Reader == nil {
		return nil, errors.New("repository is required for postgres source")
	}

	return NewPostgresSource(config.Reader, config.Limit, config.Logger), nil
}

package source_test

import (
	"log/slog"
	"testing"
	"time"

	"github.com/UnknownOlympus/skyguard/internal/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSource(t *testing.T) {
	logger := slog.Default()

	t.Run("create mock source successfully", func(t *testing.T) {
		src, err := source.NewSource(source.Config{
			Type:        source.TypeMock,
			Delay:       time.Second,
			FailureRate: 0.05,
			Logger:      logger,
		})

		require.NoError(t, err)
		_, ok := src.(*source.MockSource)
		assert.True(t, ok, "expected source to be *MockSource")
	})

	t.Run("mock source with invalid failure rate", func(t *testing.T) {
		src, err := source.NewSource(source.Config{Type: source.TypeMock, FailureRate: 1.5, Logger: logger})

		require.Error(t, err)
		require.Nil(t, src)
		assert.Contains(t, err.Error(), "failure rate must be within [0, 1]")
	})

	t.Run("create http source successfully", func(t *testing.T) {
		src, err := source.NewSource(source.Config{
			Type:      source.TypeHTTP,
			URL:       "https://telemetry.example.com/v1/drones",
			RateLimit: 2,
			Logger:    logger,
		})

		require.NoError(t, err)
		_, ok := src.(*source.HTTPSource)
		assert.True(t, ok, "expected source to be *HTTPSource")
	})

	t.Run("http source without URL fails", func(t *testing.T) {
		src, err := source.NewSource(source.Config{Type: source.TypeHTTP, Logger: logger})

		require.ErrorIs(t, err, source.ErrFeedURLRequired)
		require.Nil(t, src)
	})

	t.Run("create postgres source successfully", func(t *testing.T) {
		src, err := source.NewSource(source.Config{
			Type:   source.TypePostgres,
			Reader: &fakeReader{},
			Logger: logger,
		})

		require.NoError(t, err)
		_, ok := src.(*source.PostgresSource)
		assert.True(t, ok, "expected source to be *PostgresSource")
	})

	t.Run("postgres source without repository fails", func(t *testing.T) {
		src, err := source.NewSource(source.Config{Type: source.TypePostgres, Logger: logger})

		require.Error(t, err)
		require.Nil(t, src)
		assert.Contains(t, err.Error(), "repository is required for postgres source")
	})

	t.Run("unsupported source type", func(t *testing.T) {
		src, err := source.NewSource(source.Config{Type: source.Type("kafka"), Logger: logger})

		require.Error(t, err)
		require.Nil(t, src)
		assert.Contains(t, err.Error(), "unsupported source type: kafka")
	})
}

func TestType_Constants(t *testing.T) {
	assert.Equal(t, "mock", string(source.TypeMock))
	assert.Equal(t, "http", string(source.TypeHTTP))
	assert.Equal(t, "postgres", string(source.TypePostgres))
}

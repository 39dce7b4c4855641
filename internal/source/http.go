package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/UnknownOlympus/skyguard/internal/models"
	"github.com/UnknownOlympus/skyguard/internal/telemetry"
	"golang.org/x/time/rate"
)

const userAgent = "Skyguard-Telemetry-Dashboard/1.0 (https://github.com/UnknownOlympus/skyguard)"

// Common errors for the HTTP feed source.
var (
	ErrFeedURLRequired  = errors.New("feed URL is required for http source")
	ErrUnexpectedStatus = errors.New("telemetry feed returned unexpected status")
)

// HTTPSource reads a JSON array of telemetry records from a remote feed.
type HTTPSource struct {
	client  HTTPClient    // HTTP client for making requests
	url     string        // Feed endpoint
	limiter *rate.Limiter // Rate limiter
	schema  *telemetry.Schema
	log     *slog.Logger
}

// NewHTTPSource creates a feed source with a default HTTP client.
// A non-positive rateLimit disables rate limiting.
func NewHTTPSource(url string, rateLimit int, log *slog.Logger) *HTTPSource {
	const timeout = 10

	return NewHTTPSourceWithClient(
		&http.Client{Timeout: timeout * time.Second},
		url,
		newLimiter(rateLimit),
		log,
	)
}

// NewHTTPSourceWithClient allows injecting custom HTTP client.
func NewHTTPSourceWithClient(client HTTPClient, url string, limiter *rate.Limiter, log *slog.Logger) *HTTPSource {
	return &HTTPSource{
		client:  client,
		url:     url,
		limiter: limiter,
		schema:  telemetry.NewSchema(),
		log:     log,
	}
}

func newLimiter(rateLimit int) *rate.Limiter {
	if rateLimit <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}

	return rate.NewLimiter(rate.Limit(rateLimit), rateLimit)
}

// Fetch downloads the feed and validates it as a single batch.
func (hs *HTTPSource) Fetch(ctx context.Context) ([]models.Telemetry, error) {
	if err := hs.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit exceeded: %w", err)
	}

	hs.log.DebugContext(ctx, "Fetching telemetry data", "source", "http", "url", hs.url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, hs.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := hs.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute telemetry request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		hs.log.ErrorContext(ctx, "Telemetry feed error", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("%w %d: %s", ErrUnexpectedStatus, resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var records []telemetry.Record
	if err = json.Unmarshal(body, &records); err != nil {
		hs.log.ErrorContext(ctx, "Failed to parse telemetry feed", "error", err, "body", string(body))
		return nil, fmt.Errorf("failed to decode telemetry feed: %w", err)
	}

	batch, err := hs.schema.ValidateRecords(records)
	if err != nil {
		return nil, err
	}

	hs.log.DebugContext(ctx, "Telemetry feed fetched", "records", len(batch))

	return batch, nil
}

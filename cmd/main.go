package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/UnknownOlympus/skyguard/internal/config"
	"github.com/UnknownOlympus/skyguard/internal/dashboard"
	"github.com/UnknownOlympus/skyguard/internal/geofence"
	"github.com/UnknownOlympus/skyguard/internal/metrics"
	"github.com/UnknownOlympus/skyguard/internal/repository"
	"github.com/UnknownOlympus/skyguard/internal/service"
	"github.com/UnknownOlympus/skyguard/internal/source"
	"github.com/UnknownOlympus/skyguard/internal/telemetry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Constants for different environment types.
const (
	envLocal = "local"
	envDev   = "development"
	envProd  = "production"
)

const shutdownTimeout = 5 * time.Second

// healthChecker reports whether the last telemetry fetch succeeded.
type healthChecker interface {
	Healthy() bool
}

// main is the entry point of the application.
func main() {
	// Create a context that will be canceled when an interrupt signal is received.
	// This allows for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load application configuration.
	cfg := config.MustLoad()

	// Set up the logger based on the environment.
	logger := setupLogger(cfg.Env)

	// Create a separate registry for metrics with exemplar
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	sourceConfig := source.Config{
		Type:        source.Type(cfg.Source.Type),
		URL:         cfg.Source.URL,
		RateLimit:   cfg.Source.RateLimit,
		Delay:       cfg.Source.Delay,
		FailureRate: cfg.Source.FailureRate,
		Limit:       source.DefaultPostgresLimit,
		Logger:      logger,
	}

	// The database is only needed when telemetry is read from the ingestion table.
	if sourceConfig.Type == source.TypePostgres {
		dtb, err := repository.NewDatabase(
			cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Password, cfg.Database.Name,
		)
		if err != nil {
			log.Fatalf("Failed to connect to DB: %v", err)
		}
		defer dtb.Close()

		sourceConfig.Reader = repository.NewRepository(dtb, logger)
	}

	src, err := source.NewSource(sourceConfig)
	if err != nil {
		log.Fatalf("Failed to create telemetry source: %v", err)
	}

	logger.InfoContext(ctx, "Telemetry source initialized", "type", cfg.Source.Type)

	validator := telemetry.Validator{Signal: telemetry.RejectNegativeSignal}
	if cfg.AllowNegativeSignal {
		validator.Signal = telemetry.AllowNegativeSignal
	}

	checker := geofence.NewChecker(noFlyZone(ctx, logger, cfg.Zone), validator)

	dashboardService := service.NewDashboardService(
		logger,
		src,
		cfg.Source.Type, // Source name for metrics
		checker,
		validator,
		appMetrics,
		cfg.Workers,
		cfg.RefreshInterval,
	)

	// Log that the application has started.
	logger.InfoContext(ctx, "Application started. Press Ctrl+C to stop.")

	// Start the monitoring server in a goroutine to allow main to listen for signals.
	go startMonitoringServer(ctx, logger, reg, dashboardService, cfg.HealthPort)

	go dashboardService.Run(ctx)

	server := dashboard.New(dashboardService, logger)
	go func() {
		logger.InfoContext(ctx, "Starting dashboard server", "port", cfg.HTTPPort)
		if err := server.Start(fmt.Sprintf(":%d", cfg.HTTPPort)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorContext(ctx, "Dashboard server failed", "error", err)
			stop()
		}
	}()

	// Wait for the context to be canceled (e.g., by Ctrl+C).
	<-ctx.Done()

	// Log that a shutdown signal has been received.
	logger.InfoContext(ctx, "Shutdown signal received. Stopping application...")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.ErrorContext(shutdownCtx, "Failed to stop dashboard server", "error", err)
	}

	// Log graceful shutdown completion.
	logger.InfoContext(shutdownCtx, "Application stopped gracefully.")
}

// noFlyZone builds the configured zone. Swapped bounds are kept as configured unless
// normalization is enabled, in which case the zone is reordered here and nowhere else.
func noFlyZone(ctx context.Context, log *slog.Logger, cfg config.ZoneConfig) geofence.Zone {
	zone := geofence.Zone{North: cfg.North, South: cfg.South, East: cfg.East, West: cfg.West}
	if !zone.Inverted() {
		return zone
	}

	if cfg.Normalize {
		log.InfoContext(ctx, "No-fly zone bounds reordered", "configured", zone, "active", zone.Normalize())
		return zone.Normalize()
	}

	log.WarnContext(ctx, "No-fly zone bounds are inverted, no drone will ever be flagged",
		"north", zone.North, "south", zone.South, "east", zone.East, "west", zone.West)
	return zone
}

// newMonitoringHandler returns the health check and metrics endpoints.
func newMonitoringHandler(
	ctx context.Context,
	log *slog.Logger,
	reg *prometheus.Registry,
	health healthChecker,
) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(writer http.ResponseWriter, _ *http.Request) {
		log.DebugContext(ctx, "Performing health checks...")
		status, body := http.StatusOK, "OK"
		if !health.Healthy() {
			status, body = http.StatusServiceUnavailable, "telemetry unavailable"
		}
		writer.WriteHeader(status)
		_, err := writer.Write([]byte(body))
		if err != nil {
			log.ErrorContext(ctx, "failed to write reply", "error", err)
		}

		log.DebugContext(ctx, "Health checks completed", "status", status)
	})
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	return mux
}

// startMonitoringServer starts an HTTP server that provides health check and metrics endpoints.
// It listens on the specified port and logs the server's status and any errors encountered.
//
// Parameters:
// - ctx: A context.Context for managing cancellation and timeouts.
// - log: A logger for logging server events and errors.
// - reg: A registry with Prometheus collectors.
// - health: The dashboard service, asked whether the last fetch succeeded.
// - port: The port number on which the server will listen.
func startMonitoringServer(
	ctx context.Context,
	log *slog.Logger,
	reg *prometheus.Registry,
	health healthChecker,
	port int,
) {
	log.InfoContext(ctx, "Starting monitoring server", "port", port)
	readTimeout := 5
	writeTimeout := 10
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      newMonitoringHandler(ctx, log, reg, health),
		ReadTimeout:  time.Duration(readTimeout) * time.Second,
		WriteTimeout: time.Duration(writeTimeout) * time.Second,
	}
	if err := server.ListenAndServe(); err != nil {
		log.ErrorContext(ctx, "Monitoring server failed", "error", err)
	}
}

// setupLogger initializes and returns a logger based on the environment provided.
func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelDebug,
				AddSource: true,
			}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:       slog.LevelWarn,
				ReplaceAttr: dropTime,
			}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:       slog.LevelError,
				ReplaceAttr: dropTime,
			}),
		)

		log.Error(
			"The env parameter was not specified or was invalid. Logging will be minimal, by default.",
			slog.String("available_envs", "local, development, production"))
	}

	return log
}

func dropTime(_ []string, a slog.Attr) slog.Attr {
	if a.Key == slog.TimeKey {
		return slog.Attr{}
	}
	return a
}

// Package dashboard serves the drone telemetry dashboard: an HTML page of drone cards and a JSON
// view of the same state.
package dashboard

import (
	"context"
	"log/slog"

	"github.com/UnknownOlympus/skyguard/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// ViewService is the part of service.DashboardService the handlers need.
type ViewService interface {
	Snapshot() service.Snapshot
	Reload(ctx context.Context) service.Snapshot
	ReloadAsync(ctx context.Context) service.Snapshot
}

// New builds the echo instance with all dashboard routes registered.
func New(svc ViewService, log *slog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = newRenderer()

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogger(log))

	h := NewHandler(svc, log)
	e.GET("/", h.Index)
	e.POST("/retry", h.Retry)

	api := e.Group("/api")
	{
		api.GET("/telemetry", h.GetTelemetry)
		api.POST("/telemetry/reload", h.ReloadTelemetry)
	}

	return e
}

func requestLogger(log *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			ctx := c.Request().Context()
			if v.Error != nil {
				log.ErrorContext(ctx, "Request failed",
					"method", v.Method, "uri", v.URI, "status", v.Status, "request_id", v.RequestID, "error", v.Error)
				return nil
			}
			log.DebugContext(ctx, "Request served",
				"method", v.Method, "uri", v.URI, "status", v.Status, "request_id", v.RequestID, "latency", v.Latency)
			return nil
		},
	})
}

package dashboard

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/UnknownOlympus/skyguard/internal/models"
	"github.com/UnknownOlympus/skyguard/internal/service"
	"github.com/labstack/echo/v4"
)

// Handler exposes the dashboard over HTTP.
type Handler struct {
	svc ViewService
	log *slog.Logger
}

// NewHandler constructs a Handler with the provided service.
func NewHandler(svc ViewService, log *slog.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// Index renders the dashboard page for the current state.
func (h *Handler) Index(c echo.Context) error {
	return c.Render(http.StatusOK, "dashboard.html", h.svc.Snapshot())
}

// Retry starts a new fetch and sends the browser straight back to the dashboard, which shows the
// loading page until the fetch completes. The fetch is detached from the request.
func (h *Handler) Retry(c echo.Context) error {
	ctx := context.WithoutCancel(c.Request().Context())
	snap := h.svc.ReloadAsync(ctx)
	h.log.InfoContext(ctx, "Retry requested", "state", snap.State)

	return c.Redirect(http.StatusSeeOther, "/")
}

// GetTelemetry returns the current snapshot as JSON.
func (h *Handler) GetTelemetry(c echo.Context) error {
	return writeSnapshot(c, h.svc.Snapshot())
}

// ReloadTelemetry fetches a new batch and returns the resulting snapshot.
func (h *Handler) ReloadTelemetry(c echo.Context) error {
	return writeSnapshot(c, h.svc.Reload(context.WithoutCancel(c.Request().Context())))
}

func writeSnapshot(c echo.Context, snap service.Snapshot) error {
	switch snap.State {
	case service.StateReady:
		return c.JSON(http.StatusOK, snap)
	case service.StateLoading:
		return c.JSON(http.StatusAccepted, snap)
	case service.StateFailed:
		return c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{Message: snap.Error})
	default:
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "unknown dashboard state"})
	}
}

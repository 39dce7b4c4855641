package dashboard

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strconv"

	"github.com/UnknownOlympus/skyguard/internal/models"
	"github.com/labstack/echo/v4"
)

//go:embed templates/*.html
var templateFS embed.FS

type renderer struct {
	templates *template.Template
}

func newRenderer() *renderer {
	funcs := template.FuncMap{
		"badgeVariant":      BadgeVariant,
		"formatCoordinates": FormatCoordinates,
		"formatNumber":      FormatNumber,
	}

	return &renderer{
		templates: template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")),
	}
}

// Render implements echo.Renderer.
func (r *renderer) Render(w io.Writer, name string, data any, _ echo.Context) error {
	return r.templates.ExecuteTemplate(w, name, data)
}

// BadgeVariant maps a drone status to the visual style of its badge.
func BadgeVariant(status models.Status) string {
	switch status {
	case models.StatusIdle:
		return "secondary"
	case models.StatusMoving:
		return "default"
	case models.StatusJammed:
		return "destructive"
	case models.StatusUnknown:
		return "outline"
	}

	return "outline"
}

// FormatCoordinates renders a position with four decimals.
func FormatCoordinates(c *models.Coordinates) string {
	if c == nil {
		return "unknown"
	}

	return fmt.Sprintf("Lat: %.4f, Lng: %.4f", c.Latitude, c.Longitude)
}

// FormatNumber prints a reading without trailing zeros.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

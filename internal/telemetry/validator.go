// Package telemetry implements the field-range checks applied to drone telemetry records.
package telemetry

import "github.com/UnknownOlympus/skyguard/internal/models"

// SignalPolicy decides how a negative signal strength is treated by Validator.
type SignalPolicy int

const (
	// RejectNegativeSignal treats a negative signal strength like any other negative reading.
	// Real dB readings are usually negative, so this rejects most live traffic.
	RejectNegativeSignal SignalPolicy = iota
	// AllowNegativeSignal accepts any signal strength.
	AllowNegativeSignal
)

// Validator checks single telemetry records. The zero value rejects negative signal strength.
type Validator struct {
	Signal SignalPolicy
}

var defaultValidator = Validator{Signal: RejectNegativeSignal}

// Validate reports whether the record is usable. It never panics and never returns an error:
// a missing record or missing coordinates are simply invalid.
func Validate(t *models.Telemetry) bool {
	return defaultValidator.Validate(t)
}

// ValidateCoordinates reports whether the latitude is within [-90, 90] and the longitude
// within [-180, 180], both inclusive.
func ValidateCoordinates(c *models.Coordinates) bool {
	if c == nil {
		return false
	}

	return c.Latitude >= -90 && c.Latitude <= 90 && c.Longitude >= -180 && c.Longitude <= 180
}

// Validate reports whether the record passes the coordinate check and has no negative readings.
func (v Validator) Validate(t *models.Telemetry) bool {
	if t == nil {
		return false
	}
	if !ValidateCoordinates(t.Coordinates) {
		return false
	}
	if t.Altitude < 0 || t.Speed < 0 || t.Frequency < 0 {
		return false
	}
	if v.Signal == RejectNegativeSignal && t.SignalStrength < 0 {
		return false
	}

	return true
}

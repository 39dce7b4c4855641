package telemetry

import "github.com/UnknownOlympus/skyguard/internal/models"

// Record is the wire form of a telemetry record read from an external feed. Numbers are
// pointers so an absent field fails validation instead of decoding as zero.
type Record struct {
	ID             string             `json:"id"             validate:"required"`
	Coordinates    *RecordCoordinates `json:"coordinates"    validate:"required"`
	Altitude       *float64           `json:"altitude"       validate:"required,gte=0"`
	Speed          *float64           `json:"speed"          validate:"required,gte=0"`
	SignalStrength *float64           `json:"signalStrength" validate:"required"`
	Frequency      *float64           `json:"frequency"      validate:"required,gte=0"`
	Status         models.Status      `json:"status"         validate:"drone_status"`
}

// RecordCoordinates is the wire form of models.Coordinates.
type RecordCoordinates struct {
	Latitude  *float64 `json:"latitude"  validate:"required,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
}

// Telemetry converts a validated record. It must only be called after ValidateRecords accepted it.
func (r *Record) Telemetry() models.Telemetry {
	return models.Telemetry{
		ID: r.ID,
		Coordinates: &models.Coordinates{
			Latitude:  *r.Coordinates.Latitude,
			Longitude: *r.Coordinates.Longitude,
		},
		Altitude:       *r.Altitude,
		Speed:          *r.Speed,
		SignalStrength: *r.SignalStrength,
		Frequency:      *r.Frequency,
		Status:         r.Status,
	}
}

package models

// Telemetry is a single drone telemetry record as returned by a data source.
// Records are treated as immutable once a source has returned them.
type Telemetry struct {
	ID             string       `json:"id"             validate:"required"`
	Coordinates    *Coordinates `json:"coordinates"    validate:"required"`
	Altitude       float64      `json:"altitude"       validate:"gte=0"` // meters
	Speed          float64      `json:"speed"          validate:"gte=0"` // km/h
	SignalStrength float64      `json:"signalStrength"`                  // dB
	Frequency      float64      `json:"frequency"      validate:"gte=0"` // MHz
	Status         Status       `json:"status"         validate:"drone_status"`
}

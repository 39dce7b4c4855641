package models

// Coordinates represents a geographical point defined by its latitude and longitude.
type Coordinates struct {
	Latitude  float64 `json:"latitude"  validate:"gte=-90,lte=90"`   // Latitude in decimal degrees.
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"` // Longitude in decimal degrees.
}

// Package geofence flags drones that report a position inside the no-fly zone.
package geofence

import (
	"github.com/UnknownOlympus/skyguard/internal/models"
	"github.com/UnknownOlympus/skyguard/internal/telemetry"
)

// Zone is an axis-aligned rectangle in degrees.
type Zone struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

// ReferenceZone is the default zone. Its north/south and east/west
// bounds are swapped, so no position can fall inside it. Normalize fixes that.
var ReferenceZone = Zone{
	North: 10.50,
	South: 50.50,
	East:  30.50,
	West:  40.50,
}

// Inverted reports whether south lies above north or west lies east of east.
func (z Zone) Inverted() bool {
	return z.South > z.North || z.West > z.East
}

// Normalize returns the zone with each pair of bounds ordered.
func (z Zone) Normalize() Zone {
	if z.South > z.North {
		z.North, z.South = z.South, z.North
	}
	if z.West > z.East {
		z.East, z.West = z.West, z.East
	}

	return z
}

// Contains tests the point against the bounds, inclusive on every edge.
func (z Zone) Contains(c models.Coordinates) bool {
	return c.Latitude >= z.South &&
		c.Latitude <= z.North &&
		c.Longitude >= z.West &&
		c.Longitude <= z.East
}

// Checker evaluates records against a single zone.
type Checker struct {
	zone      Zone
	validator telemetry.Validator
}

// NewChecker builds a Checker for the zone. Records are validated with v before the bounds test.
func NewChecker(zone Zone, v telemetry.Validator) *Checker {
	return &Checker{zone: zone, validator: v}
}

// Zone returns the zone the checker tests against.
func (c *Checker) Zone() Zone {
	return c.zone
}

// IsInNoFlyZone reports whether a valid record lies inside the zone. Invalid records are never
// flagged.
func (c *Checker) IsInNoFlyZone(t *models.Telemetry) bool {
	if !c.validator.Validate(t) {
		return false
	}

	return c.zone.Contains(*t.Coordinates)
}

var referenceChecker = NewChecker(ReferenceZone, telemetry.Validator{})

// IsInNoFlyZone checks the record against ReferenceZone with the default validator.
func IsInNoFlyZone(t *models.Telemetry) bool {
	return referenceChecker.IsInNoFlyZone(t)
}

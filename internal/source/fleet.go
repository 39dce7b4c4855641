package source

import "github.com/UnknownOlympus/skyguard/internal/models"

// Fleet returns the fixed set of six drones served by the mock source.
func Fleet() []models.Telemetry {
	return []models.Telemetry{
		{
			ID:             "alpha-001",
			Coordinates:    &models.Coordinates{Latitude: 34.025, Longitude: -118.275},
			Altitude:       100,
			Speed:          10,
			SignalStrength: -60,
			Frequency:      2.4,
			Status:         models.StatusMoving,
		},
		{
			ID:             "bravo-002",
			Coordinates:    &models.Coordinates{Latitude: 37.7749, Longitude: -122.4194},
			Altitude:       200,
			Speed:          25,
			SignalStrength: -45,
			Frequency:      5.8,
			Status:         models.StatusIdle,
		},
		{
			ID:             "charlie-003",
			Coordinates:    &models.Coordinates{Latitude: 36.1699, Longitude: -115.1398},
			Altitude:       150,
			Speed:          0,
			SignalStrength: -70,
			Frequency:      2.4,
			Status:         models.StatusIdle,
		},
		{
			ID:             "delta-004",
			Coordinates:    &models.Coordinates{Latitude: 40.7128, Longitude: -74.006},
			Altitude:       300,
			Speed:          40,
			SignalStrength: -50,
			Frequency:      5.8,
			Status:         models.StatusMoving,
		},
		{
			ID:             "echo-005",
			Coordinates:    &models.Coordinates{Latitude: 47.6062, Longitude: -122.3321},
			Altitude:       120,
			Speed:          5,
			SignalStrength: -65,
			Frequency:      2.4,
			Status:         models.StatusJammed,
		},
		{
			ID:             "foxtrot-006",
			Coordinates:    &models.Coordinates{Latitude: 25.7617, Longitude: -80.1918},
			Altitude:       90,
			Speed:          15,
			SignalStrength: -55,
			Frequency:      5.0,
			Status:         models.StatusMoving,
		},
	}
}

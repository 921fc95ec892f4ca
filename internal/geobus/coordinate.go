// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geobus

import (
	"math"

	"github.com/wneessen/waybar-prayertimes/internal/prayer"
)

const (
	EarthRadius = 6371000.0 // meters
	// DistanceThreshold is the distance after which a new position is worth a recomputation. Prayer
	// times only depend on the latitude, so a few kilometers are irrelevant.
	DistanceThreshold = 2500.0
	AccuracyThreshold = 50.0
)

// Coordinate is a position reported by a provider, with its accuracy radius in meters.
type Coordinate struct {
	Lat float64
	Lon float64
	Acc float64
}

// PosHasSignificantChange checks if the position differs significantly from another, based on
// the great-circle distance (haversine) or a clearly better accuracy.
func (c Coordinate) PosHasSignificantChange(other Coordinate) bool {
	if c.Acc < other.Acc && math.Abs(c.Acc-other.Acc) > AccuracyThreshold {
		return true
	}
	return Distance(c, other) > DistanceThreshold
}

// Distance returns the great-circle distance between a and b in meters.
func Distance(a, b Coordinate) float64 {
	dLat := (a.Lat - b.Lat) * math.Pi / 180
	dLon := (a.Lon - b.Lon) * math.Pi / 180
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * EarthRadius * math.Asin(math.Sqrt(h))
}

// Valid checks if the coordinate is a valid WGS84 position.
func (c Coordinate) Valid() bool {
	return c.Coordinates().Valid()
}

// Coordinates returns the position for the prayer time calculation.
func (c Coordinate) Coordinates() prayer.Coordinates {
	return prayer.Coordinates{Latitude: c.Lat, Longitude: c.Lon}
}

// FromCoordinates returns a Coordinate for the given position with unknown accuracy.
func FromCoordinates(coords prayer.Coordinates) Coordinate {
	return Coordinate{Lat: coords.Latitude, Lon: coords.Longitude, Acc: AccuracyUnknown}
}

// Truncate cuts x to the given number of decimals.
func Truncate(x float64, precision int) float64 {
	p := math.Pow(10, float64(precision))
	return math.Trunc(x*p) / p
}

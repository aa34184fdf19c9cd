// Package geo provides coordinate helpers shared by the projection and rendering packages.
package geo

import "math"

const (
	Radians = math.Pi / 180
	Degrees = 180 / math.Pi
)

// Location is a rotation triple (longitude, latitude, roll) in degrees.
type Location [3]float64

// Normalize folds a location into ±180 longitude, ±90 latitude and a roll in [-90, 270].
//
// Each axis is corrected once: a longitude of 200 becomes -20, not -160.
// Values more than one period out of range are not fully normalized.
func Normalize(l Location) Location {
	lambda, phi, gamma := l[0], l[1], l[2]

	lambda = flip(lambda, 180) * math.Mod(lambda, 180)
	phi = flip(phi, 90) * math.Mod(phi, 90)

	if gamma > 270 {
		gamma -= 360
	}
	if gamma < -90 {
		gamma += 360
	}
	return Location{lambda, phi, gamma}
}

func flip(v, limit float64) float64 {
	if math.Abs(v) > limit {
		return -1
	}
	return 1
}

// Point is a geographic position in degrees.
type Point struct {
	Lon, Lat float64
}

// Valid reports whether both components are finite numbers.
func (p Point) Valid() bool {
	return !math.IsNaN(p.Lon) && !math.IsNaN(p.Lat) && !math.IsInf(p.Lon, 0) && !math.IsInf(p.Lat, 0)
}

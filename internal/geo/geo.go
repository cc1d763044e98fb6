// Package geo contains pure geographic and angular computation helpers.
package geo

import (
	"fmt"
	"math"
)

// EarthRadiusMeters is the mean Earth radius used by the haversine formula.
// Spherical Earth is fine for the spans this project cares about (<100 km).
const EarthRadiusMeters = 6371000.0

// Coordinate is a WGS84 position in decimal degrees.
type Coordinate struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

func radiansToDegrees(rad float64) float64 {
	return rad * 180.0 / math.Pi
}

// Distance returns the great-circle distance in meters between two points.
func Distance(a, b Coordinate) float64 {
	dLat := degreesToRadians(b.Latitude - a.Latitude)
	dLon := degreesToRadians(b.Longitude - a.Longitude)

	rLat1 := degreesToRadians(a.Latitude)
	rLat2 := degreesToRadians(b.Latitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusMeters * c
}

// Bearing returns the initial great-circle bearing from one point toward
// another, in degrees in [0,360). 0 is true north, clockwise positive.
// Not symmetric: Bearing(a,b) != Bearing(b,a) in general.
func Bearing(from, to Coordinate) float64 {
	phi1 := degreesToRadians(from.Latitude)
	phi2 := degreesToRadians(to.Latitude)
	dLon := degreesToRadians(to.Longitude - from.Longitude)

	y := math.Sin(dLon) * math.Cos(phi2)
	x := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(dLon)

	return NormalizeAngle(radiansToDegrees(math.Atan2(y, x)))
}

// NormalizeAngle reduces an angle in degrees to [0,360).
// Negative inputs wrap the right way: NormalizeAngle(-10) == 350.
func NormalizeAngle(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

// AngleDifference returns the shortest signed rotation in degrees from a to b,
// in (-180,180]. The magnitude never exceeds 180.
func AngleDifference(a, b float64) float64 {
	d := math.Mod(b-a, 360)
	if d > 180 {
		d -= 360
	} else if d <= -180 {
		d += 360
	}
	return d
}

// FormatDistance renders a distance in meters for display: integer meters
// below one kilometer, whole kilometers plus remainder meters above.
func FormatDistance(meters float64) string {
	m := int(math.Round(meters))
	if m < 1000 {
		return fmt.Sprintf("%d m", m)
	}
	return fmt.Sprintf("%d km %d m", m/1000, m%1000)
}

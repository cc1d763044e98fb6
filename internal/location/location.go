// Package location tracks the last-known GPS position and fans fixes out to
// subscribers. No smoothing happens here: fixes are trusted as-is, accuracy
// gating belongs to the producer feeding them in.
package location

import "github.com/relabs-tech/target_navigator/internal/geo"

// Fix is a single GPS fix suitable for JSON and MQTT. Latitude/longitude are
// decimal degrees; the rest is carried through from the NMEA RMC sentence.
type Fix struct {
	Time       string  `json:"time"`        // e.g. "12:34:56"
	Date       string  `json:"date"`        // e.g. "2026-08-24"
	Latitude   float64 `json:"lat"`         // decimal degrees
	Longitude  float64 `json:"lon"`         // decimal degrees
	SpeedKnots float64 `json:"speed_knots"` // speed over ground
	CourseDeg  float64 `json:"course_deg"`  // course over ground
	Validity   string  `json:"validity"`    // "A" (valid) / "V" (void)
}

// Coordinate extracts the position from the fix.
func (f Fix) Coordinate() geo.Coordinate {
	return geo.Coordinate{Latitude: f.Latitude, Longitude: f.Longitude}
}

// Source is anything that can provide positions over time: a GNSS receiver,
// a mock, a replay from file.
type Source interface {
	Next() (geo.Coordinate, error)
}

// Package orientation turns raw device rotation or magnetometer readings into
// a smoothed, calibrated compass heading plus pitch/roll, and fans the result
// out to subscribers.
package orientation

// Sample is one fused device rotation reading, in radians. Alpha is the
// rotation about the vertical axis (the compass component), beta and gamma
// the front-back and left-right tilts.
type Sample struct {
	Alpha float64 `json:"alpha"`
	Beta  float64 `json:"beta"`
	Gamma float64 `json:"gamma"`
}

// MagneticVector is one raw magnetometer reading, used on the compass-only
// fallback path when no fused rotation is available.
type MagneticVector struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Source is anything that can provide fused rotation samples over time:
// a hardware IMU, a mock, a replay from file.
type Source interface {
	Next() (Sample, error)
}

// CompassSource is the fallback shape: raw magnetic vectors only.
type CompassSource interface {
	Sense() (MagneticVector, error)
}

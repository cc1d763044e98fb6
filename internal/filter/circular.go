package filter

import "math"

// Circular is an exponential average for angles in degrees. It keeps running
// sine/cosine averages and reconstructs the angle with atan2, so averaging
// across the 0/360 boundary behaves: 350 and 10 average near 0, not 180.
type Circular struct {
	alpha       float64
	sinAvg      float64
	cosAvg      float64
	initialized bool
}

// NewCircular returns a circular exponential average with the given
// smoothing factor, clamped to [0,1].
func NewCircular(alpha float64) *Circular {
	return &Circular{alpha: clampAlpha(alpha)}
}

// Update feeds one angle in degrees and returns the smoothed angle in [0,360).
func (f *Circular) Update(deg float64) float64 {
	rad := deg * math.Pi / 180.0
	s := math.Sin(rad)
	c := math.Cos(rad)

	if !f.initialized {
		f.sinAvg = s
		f.cosAvg = c
		f.initialized = true
	} else {
		f.sinAvg = f.alpha*s + (1-f.alpha)*f.sinAvg
		f.cosAvg = f.alpha*c + (1-f.alpha)*f.cosAvg
	}
	return f.Value()
}

func (f *Circular) Reset() {
	f.sinAvg = 0
	f.cosAvg = 0
	f.initialized = false
}

// Value returns the current smoothed angle in [0,360).
func (f *Circular) Value() float64 {
	deg := math.Atan2(f.sinAvg, f.cosAvg) * 180.0 / math.Pi
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

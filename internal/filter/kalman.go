package filter

// Kalman is a one-dimensional estimate/error recursion with fixed process
// noise q and measurement noise r. The first measurement seeds the estimate
// directly with no correction step.
type Kalman struct {
	q, r        float64
	estimate    float64
	errorCov    float64
	initialized bool
}

// NewKalman returns a scalar Kalman estimator. q is the process noise
// (how much the true value is allowed to drift between samples), r the
// measurement noise (how much each sample is distrusted).
func NewKalman(q, r float64) *Kalman {
	return &Kalman{q: q, r: r, errorCov: 1}
}

func (f *Kalman) Update(measurement float64) float64 {
	if !f.initialized {
		f.estimate = measurement
		f.errorCov = f.r
		f.initialized = true
		return f.estimate
	}

	// Predict: the value may have drifted.
	f.errorCov += f.q

	// Correct: blend the measurement in by the Kalman gain.
	gain := f.errorCov / (f.errorCov + f.r)
	f.estimate += gain * (measurement - f.estimate)
	f.errorCov *= (1 - gain)

	return f.estimate
}

func (f *Kalman) Reset() {
	f.estimate = 0
	f.errorCov = 1
	f.initialized = false
}

func (f *Kalman) Value() float64 {
	return f.estimate
}

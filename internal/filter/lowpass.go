package filter

// LowPass is a first-order exponential low-pass: v = a*sample + (1-a)*v.
// The first sample seeds the state directly so there is no warm-up lag.
type LowPass struct {
	alpha       float64
	value       float64
	initialized bool
}

// NewLowPass returns a low-pass filter with the given smoothing factor.
// alpha is clamped to [0,1]; 1 passes samples through unchanged.
func NewLowPass(alpha float64) *LowPass {
	return &LowPass{alpha: clampAlpha(alpha)}
}

func (f *LowPass) Update(sample float64) float64 {
	if !f.initialized {
		f.value = sample
		f.initialized = true
		return f.value
	}
	f.value = f.alpha*sample + (1-f.alpha)*f.value
	return f.value
}

func (f *LowPass) Reset() {
	f.value = 0
	f.initialized = false
}

func (f *LowPass) Value() float64 {
	return f.value
}

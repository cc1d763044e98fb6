package filter

// Complementary fuses a high-frequency rate signal (integrated over dt) with
// a low-frequency absolute signal: v = a*(prior + rate*dt) + (1-a)*absolute.
// Typical use is gyro rate against an accelerometer/magnetometer absolute.
// It takes two inputs per step, so it does not satisfy the single-input
// Filter interface; it shares the Reset/Value shape.
type Complementary struct {
	alpha       float64
	value       float64
	initialized bool
}

// NewComplementary returns a complementary filter. alpha is the weight of
// the integrated rate path, clamped to [0,1]; (1-alpha) goes to the
// absolute reference.
func NewComplementary(alpha float64) *Complementary {
	return &Complementary{alpha: clampAlpha(alpha)}
}

// Update fuses one step. rate is the instantaneous rate of change, dt the
// elapsed time since the previous step, absolute the slow reference reading.
func (f *Complementary) Update(rate, dt, absolute float64) float64 {
	if !f.initialized {
		f.value = absolute
		f.initialized = true
		return f.value
	}
	f.value = f.alpha*(f.value+rate*dt) + (1-f.alpha)*absolute
	return f.value
}

func (f *Complementary) Reset() {
	f.value = 0
	f.initialized = false
}

func (f *Complementary) Value() float64 {
	return f.value
}

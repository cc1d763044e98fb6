// Package filter provides the smoothing strategies used to tame noisy sensor
// streams. Each filter owns its internal estimate; concurrency is the
// caller's problem. All filters are deterministic given their update sequence.
package filter

// Filter is a single-input smoothing strategy. The fusion engine is
// parameterized by a Filter so the noise-reduction strategy can be swapped
// without touching the fusion code.
type Filter interface {
	// Update feeds one raw sample and returns the new smoothed value.
	Update(sample float64) float64
	// Reset clears the filter back to its uninitialized state.
	Reset()
	// Value returns the current smoothed value without feeding a sample.
	Value() float64
}

func clampAlpha(alpha float64) float64 {
	if alpha < 0 {
		return 0
	}
	if alpha > 1 {
		return 1
	}
	return alpha
}

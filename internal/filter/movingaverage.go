package filter

// MovingAverage is a fixed-size sliding window over raw samples. Until the
// window fills, the mean runs over the samples seen so far; afterwards the
// oldest sample is evicted FIFO.
type MovingAverage struct {
	size    int
	samples []float64
	value   float64
}

// NewMovingAverage returns a moving average over the given window size.
// Sizes below 1 are treated as 1.
func NewMovingAverage(size int) *MovingAverage {
	if size < 1 {
		size = 1
	}
	return &MovingAverage{size: size, samples: make([]float64, 0, size)}
}

func (f *MovingAverage) Update(sample float64) float64 {
	if len(f.samples) == f.size {
		f.samples = f.samples[1:]
	}
	f.samples = append(f.samples, sample)

	sum := 0.0
	for _, s := range f.samples {
		sum += s
	}
	f.value = sum / float64(len(f.samples))
	return f.value
}

func (f *MovingAverage) Reset() {
	f.samples = f.samples[:0]
	f.value = 0
}

func (f *MovingAverage) Value() float64 {
	return f.value
}

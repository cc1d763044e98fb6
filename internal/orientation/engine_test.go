package orientation

import (
	"math"
	"testing"

	"github.com/relabs-tech/target_navigator/internal/filter"
)

// passthrough gives calibration tests a filter with no smoothing lag.
func passthrough() filter.Filter {
	return filter.NewCircular(1)
}

func TestIngestSampleConvertsToDegrees(t *testing.T) {
	e := NewEngine(passthrough())

	var heading, pitch, roll float64
	e.Subscribe(func(h, p, r float64) {
		heading, pitch, roll = h, p, r
	})

	e.IngestSample(Sample{Alpha: math.Pi / 2, Beta: math.Pi / 6, Gamma: -math.Pi / 6})

	if math.Abs(heading-90) > 1e-9 {
		t.Fatalf("heading got=%v want=90", heading)
	}
	if math.Abs(pitch-30) > 1e-9 {
		t.Fatalf("pitch got=%v want=30", pitch)
	}
	if math.Abs(roll+30) > 1e-9 {
		t.Fatalf("roll got=%v want=-30", roll)
	}
}

func TestIngestCompassUsesAtan2(t *testing.T) {
	e := NewEngine(passthrough())

	var heading float64
	e.Subscribe(func(h, _, _ float64) { heading = h })

	e.IngestCompass(MagneticVector{X: 1, Y: 1})
	if math.Abs(heading-45) > 1e-9 {
		t.Fatalf("got=%v want=45", heading)
	}

	e.IngestCompass(MagneticVector{X: 1, Y: -1})
	if math.Abs(heading-315) > 1e-9 {
		t.Fatalf("got=%v want=315 (negative atan2 must normalize)", heading)
	}
}

func TestHeadingSmoothedThroughFilter(t *testing.T) {
	e := NewEngine(filter.NewCircular(0.2))

	var heading float64
	e.Subscribe(func(h, _, _ float64) { heading = h })

	// Alternating samples across the wrap boundary must never read near 180.
	for i := 0; i < 50; i++ {
		deg := 350.0
		if i%2 == 1 {
			deg = 10.0
		}
		e.IngestSample(Sample{Alpha: deg * math.Pi / 180})
		if heading > 90 && heading < 270 {
			t.Fatalf("step %d: heading=%v, wrap artifact", i, heading)
		}
	}
}

func TestCalibrateShiftsSubsequentReadings(t *testing.T) {
	e := NewEngine(passthrough())

	var heading float64
	e.Subscribe(func(h, _, _ float64) { heading = h })

	sample := Sample{Alpha: math.Pi / 2} // reads 90 uncalibrated
	e.IngestSample(sample)
	if math.Abs(heading-90) > 1e-9 {
		t.Fatalf("precondition: got=%v want=90", heading)
	}

	e.Calibrate(270)
	e.IngestSample(sample)
	if math.Abs(heading-270) > 1e-9 {
		t.Fatalf("got=%v want=270 after calibration", heading)
	}

	// A second calibration overwrites, it does not accumulate.
	e.Calibrate(100)
	e.IngestSample(sample)
	if math.Abs(heading-100) > 1e-9 {
		t.Fatalf("got=%v want=100 after recalibration", heading)
	}

	e.ResetCalibration()
	e.IngestSample(sample)
	if math.Abs(heading-90) > 1e-9 {
		t.Fatalf("got=%v want=90 after reset", heading)
	}
}

func TestFanOutInRegistrationOrder(t *testing.T) {
	e := NewEngine(passthrough())

	var order []string
	e.Subscribe(func(_, _, _ float64) { order = append(order, "first") })
	e.Subscribe(func(_, _, _ float64) { order = append(order, "second") })

	e.IngestSample(Sample{})

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Fatalf("got=%v want=[first second]", order)
	}
}

func TestUnsubscribeIsOneShot(t *testing.T) {
	e := NewEngine(passthrough())

	calls := 0
	unsub := e.Subscribe(func(_, _, _ float64) { calls++ })
	e.Subscribe(func(_, _, _ float64) {})

	unsub()
	unsub() // second call is a no-op

	e.IngestSample(Sample{})
	if calls != 0 {
		t.Fatalf("calls=%d want=0", calls)
	}
}

func TestPanickingSubscriberIsSkipped(t *testing.T) {
	e := NewEngine(passthrough())

	e.Subscribe(func(_, _, _ float64) { panic("boom") })
	calls := 0
	e.Subscribe(func(_, _, _ float64) { calls++ })

	e.IngestSample(Sample{})
	if calls != 1 {
		t.Fatalf("calls=%d want=1 (later subscriber must still run)", calls)
	}

	// The engine must still be alive.
	if _, ok := e.Heading(); !ok {
		t.Fatalf("expected a heading after ingest")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	e := NewEngine(passthrough())

	calls := 0
	e.Subscribe(func(_, _, _ float64) { calls++ })

	e.Close()
	e.Close() // safe to repeat

	e.IngestSample(Sample{Alpha: 1})
	if calls != 0 {
		t.Fatalf("calls=%d want=0 after close", calls)
	}
	if _, ok := e.Heading(); ok {
		t.Fatalf("expected no heading after close")
	}
}

func TestCloseOnNeverStartedEngine(t *testing.T) {
	e := NewEngine(passthrough())
	e.Close() // must not panic with no subscribers and no samples
}

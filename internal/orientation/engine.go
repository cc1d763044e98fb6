package orientation

import (
	"log"
	"math"
	"sync"

	"github.com/relabs-tech/target_navigator/internal/filter"
	"github.com/relabs-tech/target_navigator/internal/geo"
)

// Callback receives one orientation update. All angles are degrees; heading
// is normalized to [0,360).
type Callback func(heading, pitch, roll float64)

// Engine smooths raw orientation into a stable heading, applies the
// calibration offset, and fans updates out to subscribers synchronously in
// registration order.
//
// The engine never locks around subscriber callbacks' own state; it only
// serializes its read-modify-write of heading/offset/filter, since the
// compass and any control surface (calibration requests) may run on
// different goroutines.
type Engine struct {
	mu sync.Mutex

	headingFilter filter.Filter
	smoothed      float64 // smoothed heading before the calibration offset
	heading       float64 // published heading, offset applied, [0,360)
	pitch         float64
	roll          float64
	offsetDeg     float64
	haveSample    bool

	subs   map[int]Callback
	order  []int
	nextID int
	closed bool
}

// NewEngine returns an engine that smooths heading through the given filter.
// A circular filter is the right choice; anything satisfying filter.Filter
// will do for experiments.
func NewEngine(headingFilter filter.Filter) *Engine {
	return &Engine{
		headingFilter: headingFilter,
		subs:          make(map[int]Callback),
	}
}

// IngestSample feeds one fused rotation sample. Alpha drives the smoothed
// heading; pitch and roll come straight off beta/gamma with no independent
// smoothing, since only heading feeds navigation.
func (e *Engine) IngestSample(s Sample) {
	headingDeg := geo.NormalizeAngle(s.Alpha * 180.0 / math.Pi)
	pitch := s.Beta * 180.0 / math.Pi
	roll := s.Gamma * 180.0 / math.Pi
	e.ingestHeading(headingDeg, pitch, roll)
}

// IngestCompass feeds one raw magnetic vector, the fallback when no fused
// rotation is available. The heading goes through the same smoothing,
// calibration, and normalization steps as the fused path. Pitch and roll are
// unknowable from a 2D magnetic reading and stay at zero.
func (e *Engine) IngestCompass(v MagneticVector) {
	headingDeg := geo.NormalizeAngle(math.Atan2(v.Y, v.X) * 180.0 / math.Pi)
	e.ingestHeading(headingDeg, 0, 0)
}

func (e *Engine) ingestHeading(headingDeg, pitch, roll float64) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.smoothed = e.headingFilter.Update(headingDeg)
	e.heading = geo.NormalizeAngle(e.smoothed + e.offsetDeg)
	e.pitch = pitch
	e.roll = roll
	e.haveSample = true

	heading := e.heading
	callbacks := e.snapshotSubscribers()
	e.mu.Unlock()

	for _, cb := range callbacks {
		notify(cb, heading, pitch, roll)
	}
}

// notify invokes one subscriber, containing any panic so a misbehaving
// consumer cannot take the engine down. The event is skipped for that
// subscriber only.
func notify(cb Callback, heading, pitch, roll float64) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("orientation: subscriber panic: %v", r)
		}
	}()
	cb(heading, pitch, roll)
}

func (e *Engine) snapshotSubscribers() []Callback {
	callbacks := make([]Callback, 0, len(e.order))
	for _, id := range e.order {
		if cb, ok := e.subs[id]; ok {
			callbacks = append(callbacks, cb)
		}
	}
	return callbacks
}

// Heading returns the current calibrated heading and whether any sample has
// been ingested yet.
func (e *Engine) Heading() (float64, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.heading, e.haveSample
}

// Calibrate sets the offset so the current physical orientation reads as
// trueHeading. Calling again overwrites the previous offset; the correction
// is not cumulative. Never fails.
func (e *Engine) Calibrate(trueHeading float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.offsetDeg = trueHeading - e.smoothed
	e.heading = geo.NormalizeAngle(e.smoothed + e.offsetDeg)
}

// ResetCalibration clears the offset. Never fails.
func (e *Engine) ResetCalibration() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.offsetDeg = 0
	e.heading = geo.NormalizeAngle(e.smoothed)
}

// Subscribe registers a callback for every orientation update and returns its
// unregister capability. Calling the returned function twice is a no-op.
func (e *Engine) Subscribe(cb Callback) func() {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := e.nextID
	e.nextID++
	e.subs[id] = cb
	e.order = append(e.order, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			delete(e.subs, id)
			for i, v := range e.order {
				if v == id {
					e.order = append(e.order[:i], e.order[i+1:]...)
					break
				}
			}
		})
	}
}

// Close tears the engine down: clears the subscriber set and resets filter
// state. Idempotent, and safe to call on an engine that never ran. Samples
// ingested after Close are dropped.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	e.subs = make(map[int]Callback)
	e.order = nil
	e.headingFilter.Reset()
	e.smoothed = 0
	e.heading = 0
	e.pitch = 0
	e.roll = 0
	e.haveSample = false
}

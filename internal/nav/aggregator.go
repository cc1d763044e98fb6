package nav

import (
	"log"
	"sync"

	"github.com/relabs-tech/target_navigator/internal/geo"
)

// Callback receives one snapshot per recomputation.
type Callback func(Data)

// Aggregator holds the authoritative navigation state. The two update paths
// are independent reducers over the same snapshot; either may fire first, in
// any interleaving, and each recomputes only what its stream affects while
// carrying the rest forward. A single mutex serializes them because the
// location and orientation streams deliver on different goroutines.
type Aggregator struct {
	mu sync.Mutex

	target geo.Coordinate

	haveLocation bool
	location     geo.Coordinate
	distance     float64
	bearing      float64

	haveHeading bool
	heading     float64

	relative float64

	subs   map[int]Callback
	order  []int
	nextID int
}

// NewAggregator returns an aggregator navigating toward the given target.
func NewAggregator(target geo.Coordinate) *Aggregator {
	return &Aggregator{target: target, subs: make(map[int]Callback)}
}

// UpdateLocation applies a position update: distance and bearing toward the
// target are recomputed, and the relative angle refreshed if a heading is
// already known. Publishes the new snapshot.
func (a *Aggregator) UpdateLocation(c geo.Coordinate) {
	a.mu.Lock()
	a.location = c
	a.haveLocation = true
	a.distance = geo.Distance(c, a.target)
	a.bearing = geo.Bearing(c, a.target)
	if a.haveHeading {
		a.relative = geo.AngleDifference(a.heading, a.bearing)
	}
	a.publishLocked()
}

// UpdateHeading applies a heading update: the heading is normalized, and the
// relative angle refreshed if a bearing is already known. Publishes the new
// snapshot.
func (a *Aggregator) UpdateHeading(headingDeg float64) {
	a.mu.Lock()
	a.heading = geo.NormalizeAngle(headingDeg)
	a.haveHeading = true
	if a.haveLocation {
		a.relative = geo.AngleDifference(a.heading, a.bearing)
	}
	a.publishLocked()
}

// Snapshot builds the current Data without publishing.
func (a *Aggregator) Snapshot() Data {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshotLocked()
}

// snapshotLocked builds a fresh Data value with freshly allocated optionals,
// so no two published snapshots share pointers and a consumer can never
// mutate state the aggregator still owns.
func (a *Aggregator) snapshotLocked() Data {
	d := Data{TargetLocation: a.target}
	if a.haveLocation {
		loc := a.location
		dist := a.distance
		brg := a.bearing
		d.UserLocation = &loc
		d.DistanceMeters = &dist
		d.BearingDeg = &brg
	}
	if a.haveHeading {
		h := a.heading
		d.DeviceHeadingDeg = &h
	}
	// The joint invariant holds by construction: the relative angle exists
	// exactly when both a bearing and a heading do.
	if a.haveLocation && a.haveHeading {
		r := a.relative
		d.RelativeAngleDeg = &r
	}
	return d
}

// publishLocked snapshots, releases the lock, and fans out. Callers must
// hold a.mu; it is released on return.
func (a *Aggregator) publishLocked() {
	d := a.snapshotLocked()
	callbacks := make([]Callback, 0, len(a.order))
	for _, id := range a.order {
		if cb, ok := a.subs[id]; ok {
			callbacks = append(callbacks, cb)
		}
	}
	a.mu.Unlock()

	for _, cb := range callbacks {
		notify(cb, d)
	}
}

func notify(cb Callback, d Data) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("nav: subscriber panic: %v", r)
		}
	}()
	cb(d)
}

// Subscribe registers a callback for every published snapshot and returns
// its unregister capability. Calling the returned function twice is a no-op.
func (a *Aggregator) Subscribe(cb Callback) func() {
	a.mu.Lock()
	defer a.mu.Unlock()

	id := a.nextID
	a.nextID++
	a.subs[id] = cb
	a.order = append(a.order, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			a.mu.Lock()
			defer a.mu.Unlock()
			delete(a.subs, id)
			for i, v := range a.order {
				if v == id {
					a.order = append(a.order[:i], a.order[i+1:]...)
					break
				}
			}
		})
	}
}

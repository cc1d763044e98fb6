package location

import (
	"log"
	"sync"

	"github.com/relabs-tech/target_navigator/internal/geo"
)

// Callback receives one position update.
type Callback func(geo.Coordinate)

// Tracker keeps the last-known coordinate and fans position updates out to
// subscribers synchronously in registration order.
type Tracker struct {
	mu sync.Mutex

	last    geo.Coordinate
	haveFix bool

	subs   map[int]Callback
	order  []int
	nextID int
	closed bool
}

// NewTracker returns an empty tracker; Snapshot reports no fix until the
// first Ingest.
func NewTracker() *Tracker {
	return &Tracker{subs: make(map[int]Callback)}
}

// Snapshot returns the last-known coordinate and whether one exists. No side
// effects.
func (t *Tracker) Snapshot() (geo.Coordinate, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last, t.haveFix
}

// Ingest stores the coordinate as last-known and notifies subscribers. A
// panicking subscriber is logged and skipped for that event.
func (t *Tracker) Ingest(c geo.Coordinate) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.last = c
	t.haveFix = true

	callbacks := make([]Callback, 0, len(t.order))
	for _, id := range t.order {
		if cb, ok := t.subs[id]; ok {
			callbacks = append(callbacks, cb)
		}
	}
	t.mu.Unlock()

	for _, cb := range callbacks {
		notify(cb, c)
	}
}

func notify(cb Callback, c geo.Coordinate) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("location: subscriber panic: %v", r)
		}
	}()
	cb(c)
}

// Subscribe registers a callback for every position update and returns its
// unregister capability. Calling the returned function twice is a no-op.
func (t *Tracker) Subscribe(cb Callback) func() {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.nextID
	t.nextID++
	t.subs[id] = cb
	t.order = append(t.order, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			t.mu.Lock()
			defer t.mu.Unlock()
			delete(t.subs, id)
			for i, v := range t.order {
				if v == id {
					t.order = append(t.order[:i], t.order[i+1:]...)
					break
				}
			}
		})
	}
}

// Close clears the subscriber set and the last-known fix. Idempotent, safe
// to call on a tracker that never received anything. Fixes ingested after
// Close are dropped.
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.closed = true
	t.subs = make(map[int]Callback)
	t.order = nil
	t.last = geo.Coordinate{}
	t.haveFix = false
}

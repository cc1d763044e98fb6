package location

import (
	"time"

	"github.com/relabs-tech/target_navigator/internal/geo"
)

// Walking pace, for the simulated approach toward the target.
const mockWalkSpeedMps = 1.4

type mockWalk struct {
	target geo.Coordinate
	pos    geo.Coordinate
	last   time.Time
}

// NewMockWalk returns a simulated location source that starts the given
// distance south of the target and walks straight toward it, so a full
// approach (far, closing, aligned) can be exercised without a GNSS receiver.
func NewMockWalk(target geo.Coordinate, startOffsetMeters float64) Source {
	// ~111,195 m per degree of latitude on the sphere used by geo.Distance.
	degOffset := startOffsetMeters / 111195.0
	return &mockWalk{
		target: target,
		pos:    geo.Coordinate{Latitude: target.Latitude - degOffset, Longitude: target.Longitude},
		last:   time.Now(),
	}
}

// Next advances the walk by the elapsed wall time and returns the new
// position. Once the target is reached the position stays put.
func (m *mockWalk) Next() (geo.Coordinate, error) {
	now := time.Now()
	dt := now.Sub(m.last).Seconds()
	m.last = now

	remaining := geo.Distance(m.pos, m.target)
	step := mockWalkSpeedMps * dt
	if step >= remaining || remaining == 0 {
		m.pos = m.target
		return m.pos, nil
	}

	frac := step / remaining
	m.pos = geo.Coordinate{
		Latitude:  m.pos.Latitude + (m.target.Latitude-m.pos.Latitude)*frac,
		Longitude: m.pos.Longitude + (m.target.Longitude-m.pos.Longitude)*frac,
	}
	return m.pos, nil
}

// Package nav aggregates the orientation and location streams into a single
// coherent navigation snapshot toward a fixed target.
package nav

import (
	"errors"

	"github.com/relabs-tech/target_navigator/internal/geo"
)

// DefaultAlignmentThresholdDeg is the contract for "aligned with target":
// the indicator counts as pointing at the target when |relative angle| is
// below this.
const DefaultAlignmentThresholdDeg = 10.0

// Initialization failures surfaced by source setup. PermissionDenied is kept
// distinct so a caller can prompt for a settings change instead of retrying.
var (
	ErrSourceUnavailable = errors.New("nav: source unavailable")
	ErrPermissionDenied  = errors.New("nav: permission denied")
)

// Data is one published navigation snapshot. TargetLocation is fixed; every
// other field starts null and fills in as its stream delivers. Consumers must
// treat a snapshot as immutable.
//
// Invariants, enforced by the Aggregator: DistanceMeters and BearingDeg are
// set iff UserLocation is set; RelativeAngleDeg is set iff both BearingDeg
// and DeviceHeadingDeg are set.
type Data struct {
	UserLocation     *geo.Coordinate `json:"user_location"`
	TargetLocation   geo.Coordinate  `json:"target_location"`
	DistanceMeters   *float64        `json:"distance_m"`
	BearingDeg       *float64        `json:"bearing_deg"`
	DeviceHeadingDeg *float64        `json:"device_heading_deg"`
	RelativeAngleDeg *float64        `json:"relative_angle_deg"`
}

// Aligned reports whether the device points at the target within the given
// threshold in degrees. False while the relative angle is still unknown.
func (d Data) Aligned(thresholdDeg float64) bool {
	return d.RelativeAngleDeg != nil && abs(*d.RelativeAngleDeg) < thresholdDeg
}

// TurnDirection renders the turn hint for displays: positive relative angle
// means turn left, negative turn right. Empty while unknown.
func (d Data) TurnDirection(thresholdDeg float64) string {
	if d.RelativeAngleDeg == nil {
		return ""
	}
	if d.Aligned(thresholdDeg) {
		return "on target"
	}
	if *d.RelativeAngleDeg > 0 {
		return "turn left"
	}
	return "turn right"
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

package nav

import (
	"math"
	"testing"

	"github.com/relabs-tech/target_navigator/internal/geo"
)

var (
	testTarget = geo.Coordinate{Latitude: 13.0453132, Longitude: 77.5733936}
	testUser   = geo.Coordinate{Latitude: 13.0443132, Longitude: 77.5733936} // ~111 m due south of target
)

func TestSnapshotStartsWithTargetOnly(t *testing.T) {
	a := NewAggregator(testTarget)
	d := a.Snapshot()

	if d.TargetLocation != testTarget {
		t.Fatalf("target got=%v want=%v", d.TargetLocation, testTarget)
	}
	if d.UserLocation != nil || d.DistanceMeters != nil || d.BearingDeg != nil ||
		d.DeviceHeadingDeg != nil || d.RelativeAngleDeg != nil {
		t.Fatalf("expected all optional fields nil, got %+v", d)
	}
}

func TestLocationOnlyUpdate(t *testing.T) {
	a := NewAggregator(testTarget)
	a.UpdateLocation(testUser)
	d := a.Snapshot()

	if d.UserLocation == nil || d.DistanceMeters == nil || d.BearingDeg == nil {
		t.Fatalf("expected location-derived fields set, got %+v", d)
	}
	if d.RelativeAngleDeg != nil {
		t.Fatalf("relative angle must stay nil without a heading")
	}
	if math.Abs(*d.DistanceMeters-111) > 111*0.02 {
		t.Fatalf("distance got=%v want ~111", *d.DistanceMeters)
	}
	if math.Abs(*d.BearingDeg) > 0.01 {
		t.Fatalf("bearing got=%v want ~0 (target due north)", *d.BearingDeg)
	}
}

func TestHeadingOnlyUpdate(t *testing.T) {
	a := NewAggregator(testTarget)
	a.UpdateHeading(-10) // normalized on the way in
	d := a.Snapshot()

	if d.DeviceHeadingDeg == nil {
		t.Fatalf("expected heading set")
	}
	if *d.DeviceHeadingDeg != 350 {
		t.Fatalf("heading got=%v want=350", *d.DeviceHeadingDeg)
	}
	if d.UserLocation != nil || d.DistanceMeters != nil || d.BearingDeg != nil || d.RelativeAngleDeg != nil {
		t.Fatalf("expected location-derived fields nil, got %+v", d)
	}
}

func TestUpdateOrderIndependence(t *testing.T) {
	locFirst := NewAggregator(testTarget)
	locFirst.UpdateLocation(testUser)
	locFirst.UpdateHeading(190)

	headingFirst := NewAggregator(testTarget)
	headingFirst.UpdateHeading(190)
	headingFirst.UpdateLocation(testUser)

	a := locFirst.Snapshot()
	b := headingFirst.Snapshot()
	if a.RelativeAngleDeg == nil || b.RelativeAngleDeg == nil {
		t.Fatalf("expected relative angle in both orders")
	}
	if math.Abs(*a.RelativeAngleDeg-*b.RelativeAngleDeg) > 1e-9 {
		t.Fatalf("order-dependent: loc-first=%v heading-first=%v", *a.RelativeAngleDeg, *b.RelativeAngleDeg)
	}
}

func TestEndToEndScenario(t *testing.T) {
	a := NewAggregator(testTarget)
	a.UpdateLocation(testUser)

	// Facing north: aligned with the target.
	a.UpdateHeading(0)
	d := a.Snapshot()
	if d.RelativeAngleDeg == nil {
		t.Fatalf("expected relative angle")
	}
	if math.Abs(*d.RelativeAngleDeg) > 0.01 {
		t.Fatalf("relative got=%v want ~0", *d.RelativeAngleDeg)
	}
	if !d.Aligned(DefaultAlignmentThresholdDeg) {
		t.Fatalf("expected aligned at relative %v", *d.RelativeAngleDeg)
	}
	if got := d.TurnDirection(DefaultAlignmentThresholdDeg); got != "on target" {
		t.Fatalf("got=%q want=%q", got, "on target")
	}

	// Facing 190: shortest rotation is 170 to the left.
	a.UpdateHeading(190)
	d = a.Snapshot()
	if math.Abs(*d.RelativeAngleDeg-170) > 0.01 {
		t.Fatalf("relative got=%v want ~170", *d.RelativeAngleDeg)
	}
	if d.Aligned(DefaultAlignmentThresholdDeg) {
		t.Fatalf("must not be aligned at relative %v", *d.RelativeAngleDeg)
	}
	if got := d.TurnDirection(DefaultAlignmentThresholdDeg); got != "turn left" {
		t.Fatalf("got=%q want=%q", got, "turn left")
	}
}

func TestTurnRight(t *testing.T) {
	a := NewAggregator(testTarget)
	a.UpdateLocation(testUser)
	a.UpdateHeading(30) // target bearing ~0, so rotate 30 to the right
	d := a.Snapshot()

	if *d.RelativeAngleDeg >= 0 {
		t.Fatalf("relative got=%v want negative", *d.RelativeAngleDeg)
	}
	if got := d.TurnDirection(DefaultAlignmentThresholdDeg); got != "turn right" {
		t.Fatalf("got=%q want=%q", got, "turn right")
	}
}

func TestFieldsCarriedForward(t *testing.T) {
	a := NewAggregator(testTarget)
	a.UpdateLocation(testUser)
	a.UpdateHeading(90)

	// A later location update must not lose the heading.
	a.UpdateLocation(geo.Coordinate{Latitude: 13.0448132, Longitude: 77.5733936})
	d := a.Snapshot()
	if d.DeviceHeadingDeg == nil || *d.DeviceHeadingDeg != 90 {
		t.Fatalf("heading lost across location update: %+v", d)
	}
	if d.RelativeAngleDeg == nil {
		t.Fatalf("relative angle lost across location update")
	}
}

func TestPublishedSnapshotsAreIndependent(t *testing.T) {
	a := NewAggregator(testTarget)

	var published []Data
	a.Subscribe(func(d Data) { published = append(published, d) })

	a.UpdateLocation(testUser)
	a.UpdateHeading(0)

	if len(published) != 2 {
		t.Fatalf("published=%d want=2", len(published))
	}

	// Mutating a delivered snapshot must not leak into the aggregator.
	*published[1].DeviceHeadingDeg = 999
	d := a.Snapshot()
	if *d.DeviceHeadingDeg != 0 {
		t.Fatalf("aggregator state mutated through a published snapshot: %v", *d.DeviceHeadingDeg)
	}
}

func TestSubscribeFanOutAndUnsubscribe(t *testing.T) {
	a := NewAggregator(testTarget)

	var order []string
	a.Subscribe(func(Data) { order = append(order, "first") })
	unsub := a.Subscribe(func(Data) { order = append(order, "second") })

	a.UpdateHeading(10)
	unsub()
	unsub() // no-op
	a.UpdateHeading(20)

	want := []string{"first", "second", "first"}
	if len(order) != len(want) {
		t.Fatalf("got=%v want=%v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("got=%v want=%v", order, want)
		}
	}
}

func TestPanickingSubscriberIsSkipped(t *testing.T) {
	a := NewAggregator(testTarget)

	a.Subscribe(func(Data) { panic("boom") })
	calls := 0
	a.Subscribe(func(Data) { calls++ })

	a.UpdateHeading(5)
	if calls != 1 {
		t.Fatalf("calls=%d want=1", calls)
	}
}

func TestAlignedFalseWhileUnknown(t *testing.T) {
	d := Data{}
	if d.Aligned(DefaultAlignmentThresholdDeg) {
		t.Fatalf("unknown relative angle must not count as aligned")
	}
	if got := d.TurnDirection(DefaultAlignmentThresholdDeg); got != "" {
		t.Fatalf("got=%q want empty", got)
	}
}

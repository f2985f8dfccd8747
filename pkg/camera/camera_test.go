package camera

import (
	"math"
	"testing"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/sagargiradkar1/industrial-3d-bom-viewer/pkg/geom"
)

func box(min, max float64) geom.Box {
	return geom.NewBox(
		r3.Vec{X: min, Y: min, Z: min},
		r3.Vec{X: max, Y: max, Z: max},
	)
}

func TestFramingDistance(t *testing.T) {
	// A 10-unit cube at 60 degrees vertical FOV with the single-part
	// factor: 5/sin(30 deg) * 2.5 = 25.
	b := box(0, 10)
	got := FramingDistance(b, DefaultFOV, PartFactor)
	if math.Abs(got-25) > 1e-9 {
		t.Errorf("FramingDistance = %v, want 25", got)
	}

	// Whole-scene framing of the same box: 5/sin(30 deg) * 1.5 = 15.
	got = FramingDistance(b, DefaultFOV, SceneFactor)
	if math.Abs(got-15) > 1e-9 {
		t.Errorf("scene FramingDistance = %v, want 15", got)
	}
}

func TestFramingPose(t *testing.T) {
	b := box(0, 10)
	p := FramingPose(b, DefaultFOV, PartFactor)

	center := r3.Vec{X: 5, Y: 5, Z: 5}
	if p.Target != center {
		t.Errorf("Target = %v, want %v", p.Target, center)
	}
	if d := r3.Norm(r3.Sub(p.Position, center)); math.Abs(d-25) > 1e-9 {
		t.Errorf("position distance from center = %v, want 25", d)
	}
}

func TestAdvanceReachesTarget(t *testing.T) {
	c := NewController(WithDuration(time.Second))
	b := box(0, 10)
	c.FramePart(b)

	if !c.Animating() {
		t.Fatal("FramePart should start a transition")
	}
	for i := 0; i < 60; i++ {
		c.Advance(time.Second / 60)
	}
	// 60 frames of 1/60s overshoots by rounding; one more frame must
	// land exactly on the target and stop.
	c.Advance(time.Second / 60)

	if c.Animating() {
		t.Error("transition should have finished")
	}
	want := FramingPose(b, DefaultFOV, PartFactor)
	if c.Pose() != want {
		t.Errorf("final pose = %+v, want %+v", c.Pose(), want)
	}
}

func TestAdvanceEasesInAndOut(t *testing.T) {
	c := NewController(WithDuration(time.Second))
	c.JumpTo(Pose{})
	c.FramePart(box(0, 10))

	c.Advance(100 * time.Millisecond)
	early := r3.Norm(c.Pose().Position)

	c.Advance(400 * time.Millisecond) // now at t=0.5
	mid := c.Pose()

	// Ease-in-out quadratic is exactly halfway at t=0.5.
	want := FramingPose(box(0, 10), DefaultFOV, PartFactor)
	halfway := lerp(r3.Vec{}, want.Position, 0.5)
	if r3.Norm(r3.Sub(mid.Position, halfway)) > 1e-9 {
		t.Errorf("pose at t=0.5 = %v, want %v", mid.Position, halfway)
	}

	// The first 10% of the duration covers far less than 10% of the
	// distance.
	if early > 0.05*r3.Norm(want.Position) {
		t.Errorf("moved %v in first 100ms, ease-in should keep it small", early)
	}
}

func TestRetargetMidFlightStartsFromCurrentPose(t *testing.T) {
	c := NewController(WithDuration(time.Second))
	c.FramePart(box(0, 10))
	c.Advance(500 * time.Millisecond)
	mid := c.Pose()

	c.FramePart(box(100, 110))
	if c.Pose() != mid {
		t.Error("starting a new transition must not move the camera")
	}
	c.Advance(time.Nanosecond)
	moved := r3.Norm(r3.Sub(c.Pose().Position, mid.Position))
	if moved > 1e-3 {
		t.Errorf("first frame of new transition jumped %v units", moved)
	}

	c.Advance(2 * time.Second)
	want := FramingPose(box(100, 110), DefaultFOV, PartFactor)
	if c.Pose() != want {
		t.Errorf("final pose = %+v, want %+v", c.Pose(), want)
	}
}

func TestCancelLeavesPoseInPlace(t *testing.T) {
	c := NewController(WithDuration(time.Second))
	c.FramePart(box(0, 10))
	c.Advance(300 * time.Millisecond)
	mid := c.Pose()

	c.Cancel()
	if c.Animating() {
		t.Error("Cancel should stop the transition")
	}
	if c.Advance(time.Second) {
		t.Error("Advance after Cancel should report no transition")
	}
	if c.Pose() != mid {
		t.Error("pose moved after Cancel")
	}
}

func TestFrameEmptyBoxIsNoOp(t *testing.T) {
	c := NewController()
	c.FrameScene(geom.EmptyBox())
	if c.Animating() {
		t.Error("framing an empty box should not start a transition")
	}
}

func TestEaseInOutQuad(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{0, 0},
		{0.25, 0.125},
		{0.5, 0.5},
		{0.75, 0.875},
		{1, 1},
	}
	for _, tc := range tests {
		if got := easeInOutQuad(tc.in); math.Abs(got-tc.want) > 1e-12 {
			t.Errorf("easeInOutQuad(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

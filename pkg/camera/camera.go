// Package camera computes framing poses and animates transitions between
// them.
//
// Framing places the camera along a fixed diagonal from the target's
// center, far enough back that the target fits the vertical field of view
// with some clearance. Transitions tween position and look-at together
// over a fixed duration with an ease-in-out quadratic curve, advanced once
// per rendered frame.
package camera

import (
	"math"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/sagargiradkar1/industrial-3d-bom-viewer/pkg/geom"
)

const (
	// DefaultFOV is the vertical field of view in radians (60 degrees).
	DefaultFOV = math.Pi / 3

	// SceneFactor is the clearance multiplier when framing the whole
	// scene; PartFactor is used for a single part, which fills more of
	// the view and needs more room.
	SceneFactor = 1.5
	PartFactor  = 2.5

	// DefaultDuration is how long a framing transition takes.
	DefaultDuration = time.Second
)

// viewDirection is the fixed diagonal the camera sits on, relative to the
// framed center.
var viewDirection = r3.Unit(r3.Vec{X: 1, Y: 1, Z: 1})

// Pose is a camera position plus look-at target.
type Pose struct {
	Position r3.Vec
	Target   r3.Vec
}

// FramingDistance returns how far from the target center the camera must
// sit so the box fits the given vertical FOV with the given clearance
// factor. The half extent of the largest dimension subtends half the FOV.
func FramingDistance(b geom.Box, fov, factor float64) float64 {
	half := b.MaxDim() / 2
	return math.Abs(half/math.Sin(fov/2)) * factor
}

// FramingPose returns the static pose that frames b.
func FramingPose(b geom.Box, fov, factor float64) Pose {
	center := b.Center()
	dist := FramingDistance(b, fov, factor)
	return Pose{
		Position: r3.Add(center, r3.Scale(dist, viewDirection)),
		Target:   center,
	}
}

type animation struct {
	from     Pose
	to       Pose
	elapsed  time.Duration
	duration time.Duration
}

// Controller owns the camera pose and at most one in-flight transition.
// Not safe for concurrent use; Advance is called from the frame loop.
type Controller struct {
	pose     Pose
	fov      float64
	duration time.Duration
	anim     *animation
}

// Option configures a Controller.
type Option func(*Controller)

// WithFOV sets the vertical field of view in radians.
func WithFOV(fov float64) Option {
	return func(c *Controller) {
		if fov > 0 {
			c.fov = fov
		}
	}
}

// WithDuration sets the transition duration.
func WithDuration(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.duration = d
		}
	}
}

// NewController returns a controller at the zero pose.
func NewController(opts ...Option) *Controller {
	c := &Controller{
		fov:      DefaultFOV,
		duration: DefaultDuration,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Pose returns the camera's current pose, possibly mid-transition.
func (c *Controller) Pose() Pose {
	return c.pose
}

// Animating reports whether a transition is in flight.
func (c *Controller) Animating() bool {
	return c.anim != nil
}

// FrameScene starts a transition framing the whole scene.
func (c *Controller) FrameScene(b geom.Box) {
	c.frame(b, SceneFactor)
}

// FramePart starts a transition framing a single part. A transition
// started mid-flight replaces the old one and tweens from the camera's
// current intermediate pose.
func (c *Controller) FramePart(b geom.Box) {
	c.frame(b, PartFactor)
}

// JumpTo snaps to a pose immediately, cancelling any transition. Used on
// initial load before the first frame is rendered.
func (c *Controller) JumpTo(p Pose) {
	c.pose = p
	c.anim = nil
}

// Cancel drops an in-flight transition, leaving the camera wherever it is.
func (c *Controller) Cancel() {
	c.anim = nil
}

// Advance steps the in-flight transition by the frame's elapsed time and
// reports whether a transition is still running.
func (c *Controller) Advance(dt time.Duration) bool {
	if c.anim == nil {
		return false
	}
	a := c.anim
	a.elapsed += dt
	t := float64(a.elapsed) / float64(a.duration)
	if t >= 1 {
		c.pose = a.to
		c.anim = nil
		return false
	}
	k := easeInOutQuad(t)
	c.pose = Pose{
		Position: lerp(a.from.Position, a.to.Position, k),
		Target:   lerp(a.from.Target, a.to.Target, k),
	}
	return true
}

func (c *Controller) frame(b geom.Box, factor float64) {
	if b.IsEmpty() {
		return
	}
	c.anim = &animation{
		from:     c.pose,
		to:       FramingPose(b, c.fov, factor),
		duration: c.duration,
	}
}

// easeInOutQuad accelerates through the first half and decelerates
// through the second.
func easeInOutQuad(t float64) float64 {
	if t < 0.5 {
		return 2 * t * t
	}
	u := -2*t + 2
	return 1 - u*u/2
}

func lerp(a, b r3.Vec, t float64) r3.Vec {
	return r3.Add(a, r3.Scale(t, r3.Sub(b, a)))
}

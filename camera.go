package rowan

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Camera is a view into the 3D rendering space. Exactly one controller may
// drive the camera transform at a time: orbit, follow, scroll, and shake
// are all CameraControllers, and replacing the active controller detaches
// the previous one. Effects that layer on top of another behavior (shake
// while following) wrap the inner controller instead of writing to the
// camera alongside it, so there is never a second writer.
type Camera struct {
	Position mgl64.Vec3
	Target   mgl64.Vec3
	Up       mgl64.Vec3

	controller CameraController
}

// CameraController drives a camera's Position/Target each frame.
type CameraController interface {
	Update(cam *Camera, delta float64)
}

// NewCamera creates a camera at (0, 0, 10) looking at the origin.
func NewCamera() *Camera {
	return &Camera{
		Position: mgl64.Vec3{0, 0, 10},
		Up:       mgl64.Vec3{0, 1, 0},
	}
}

// SetController installs the active controller and returns the previous
// one. Pass nil to leave the camera static.
func (c *Camera) SetController(ctrl CameraController) CameraController {
	prev := c.controller
	c.controller = ctrl
	return prev
}

// Controller returns the active controller, or nil.
func (c *Camera) Controller() CameraController {
	return c.controller
}

// Update advances the active controller. Called by SceneTree.Step for
// attached cameras.
func (c *Camera) Update(delta float64) {
	if c.controller != nil {
		c.controller.Update(c, delta)
	}
}

// ViewMatrix returns the camera's look-at view matrix.
func (c *Camera) ViewMatrix() mgl64.Mat4 {
	return mgl64.LookAtV(c.Position, c.Target, c.Up)
}

// --- Orbit ---

// OrbitController circles the camera around a target at a fixed distance.
// When Around is set the orbit center tracks that node's global position;
// otherwise Center is used.
type OrbitController struct {
	Around   *Node // optional Space3D node to orbit
	Center   mgl64.Vec3
	Yaw      float64 // radians around the Y (up) axis
	Pitch    float64 // radians above the horizon, clamped short of the poles
	Distance float64
}

// maxOrbitPitch keeps the orbit off the poles where the up vector degenerates.
const maxOrbitPitch = math.Pi/2 - 0.01

// Update positions the camera on the orbit sphere and aims it at the center.
func (o *OrbitController) Update(cam *Camera, delta float64) {
	center := o.Center
	if o.Around != nil && !o.Around.IsFreed() {
		center = o.Around.GlobalPosition3D()
	}
	pitch := o.Pitch
	if pitch > maxOrbitPitch {
		pitch = maxOrbitPitch
	} else if pitch < -maxOrbitPitch {
		pitch = -maxOrbitPitch
	}
	cosP := math.Cos(pitch)
	cam.Target = center
	cam.Position = center.Add(mgl64.Vec3{
		o.Distance * cosP * math.Sin(o.Yaw),
		o.Distance * math.Sin(pitch),
		o.Distance * cosP * math.Cos(o.Yaw),
	})
}

// --- Follow ---

// FollowController tracks a node's global position with an offset. A Lerp
// of 1 snaps immediately; lower values give smoother following.
type FollowController struct {
	Node   *Node
	Offset mgl64.Vec3
	Lerp   float64
}

// Update eases the camera toward the followed node.
func (f *FollowController) Update(cam *Camera, delta float64) {
	if f.Node == nil || f.Node.IsFreed() {
		return
	}
	target := f.Node.GlobalPosition3D()
	goal := target.Add(f.Offset)
	lerp := f.Lerp
	if lerp <= 0 || lerp > 1 {
		lerp = 1
	}
	cam.Position = cam.Position.Add(goal.Sub(cam.Position).Mul(lerp))
	cam.Target = target
}

// --- Scroll ---

// ScrollController animates the camera position to a destination over a
// fixed duration, then holds it there.
type ScrollController struct {
	tweenX, tweenY, tweenZ *gween.Tween
	doneX, doneY, doneZ    bool
	target                 mgl64.Vec3
}

// NewScrollController builds a scroll animation from the camera's current
// position to the given destination.
func NewScrollController(cam *Camera, to mgl64.Vec3, duration float32, easeFn ease.TweenFunc) *ScrollController {
	return &ScrollController{
		tweenX: gween.New(float32(cam.Position.X()), float32(to.X()), duration, easeFn),
		tweenY: gween.New(float32(cam.Position.Y()), float32(to.Y()), duration, easeFn),
		tweenZ: gween.New(float32(cam.Position.Z()), float32(to.Z()), duration, easeFn),
		target: to,
	}
}

// Done reports whether the scroll has reached its destination.
func (s *ScrollController) Done() bool {
	return s.doneX && s.doneY && s.doneZ
}

// Update advances the three axis tweens.
func (s *ScrollController) Update(cam *Camera, delta float64) {
	dt := float32(delta)
	x, y, z := cam.Position.X(), cam.Position.Y(), cam.Position.Z()
	if !s.doneX {
		v, done := s.tweenX.Update(dt)
		x = float64(v)
		s.doneX = done
	}
	if !s.doneY {
		v, done := s.tweenY.Update(dt)
		y = float64(v)
		s.doneY = done
	}
	if !s.doneZ {
		v, done := s.tweenZ.Update(dt)
		z = float64(v)
		s.doneZ = done
	}
	cam.Position = mgl64.Vec3{x, y, z}
}

// --- Shake ---

// ShakeController decorates another controller with a decaying positional
// shake. The inner controller runs first each frame; the shake offset is
// applied on top, so the camera still has a single driving chain.
type ShakeController struct {
	Inner     CameraController
	Amplitude float64 // world units at full strength
	Frequency float64 // oscillations per second
	Duration  float64 // seconds until fully decayed

	elapsed float64
}

// Done reports whether the shake has fully decayed.
func (s *ShakeController) Done() bool {
	return s.Duration > 0 && s.elapsed >= s.Duration
}

// Update runs the wrapped controller, then offsets the camera position by a
// deterministic decaying oscillation.
func (s *ShakeController) Update(cam *Camera, delta float64) {
	if s.Inner != nil {
		s.Inner.Update(cam, delta)
	}
	if s.Done() {
		return
	}
	s.elapsed += delta
	strength := 1.0
	if s.Duration > 0 {
		strength = 1 - s.elapsed/s.Duration
		if strength < 0 {
			strength = 0
		}
	}
	phase := 2 * math.Pi * s.Frequency * s.elapsed
	offset := mgl64.Vec3{
		s.Amplitude * strength * math.Sin(phase),
		s.Amplitude * strength * math.Sin(phase*1.3+1.7),
		0,
	}
	cam.Position = cam.Position.Add(offset)
}

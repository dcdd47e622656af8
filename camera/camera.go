// Package camera provides an orbit camera for viewing the particle field.
package camera

import (
	"math"

	"github.com/pthm-cable/pingpong/sim"
)

// Up is the world up axis. Gravity and swirl both act around z.
var Up = sim.V3(0, 0, 1)

const maxPitch = 1.55 // just short of straight down/up

// Orbit circles a target point at a given distance.
// Yaw rotates about z, pitch lifts the camera above the xy plane.
type Orbit struct {
	Target   sim.Vec3
	Yaw      float32 // radians
	Pitch    float32 // radians
	Distance float32

	// Vertical field of view in degrees
	FOVY float32

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float32

	// Zoom constraints
	MinDistance, MaxDistance float32

	// Radians per pixel of drag
	Sensitivity float32
}

// New creates a camera looking at the world origin from distance.
func New(viewportW, viewportH, distance float32) *Orbit {
	o := &Orbit{
		FOVY:        45,
		ViewportW:   viewportW,
		ViewportH:   viewportH,
		MinDistance: 0.5,
		MaxDistance: 50,
		Sensitivity: 0.005,
	}
	o.Distance = distance
	o.Reset()
	return o
}

// Position returns the camera eye in world coordinates.
func (o *Orbit) Position() sim.Vec3 {
	cp := float32(math.Cos(float64(o.Pitch)))
	offset := sim.V3(
		o.Distance*cp*float32(math.Cos(float64(o.Yaw))),
		o.Distance*cp*float32(math.Sin(float64(o.Yaw))),
		o.Distance*float32(math.Sin(float64(o.Pitch))),
	)
	return o.Target.Add(offset)
}

// Orbit rotates the camera by a drag of (dx, dy) screen pixels.
func (o *Orbit) Orbit(dx, dy float32) {
	o.Yaw = wrapAngle(o.Yaw - dx*o.Sensitivity)
	o.Pitch = clamp(o.Pitch+dy*o.Sensitivity, -maxPitch, maxPitch)
}

// Zoom moves the camera in for positive delta (mouse wheel steps) and out
// for negative.
func (o *Orbit) Zoom(delta float32) {
	o.ZoomBy(float32(math.Pow(0.9, float64(delta))))
}

// ZoomBy multiplies the distance by factor, clamped to min/max.
func (o *Orbit) ZoomBy(factor float32) {
	o.SetDistance(o.Distance * factor)
}

// SetDistance sets the distance to the target, clamped to min/max.
func (o *Orbit) SetDistance(d float32) {
	o.Distance = clamp(d, o.MinDistance, o.MaxDistance)
}

// Resize updates viewport dimensions.
func (o *Orbit) Resize(viewportW, viewportH float32) {
	o.ViewportW = viewportW
	o.ViewportH = viewportH
}

// Reset returns the camera to the default angle, keeping its distance.
func (o *Orbit) Reset() {
	o.Target = sim.Vec3{}
	o.Yaw = -math.Pi / 2
	o.Pitch = 0.35
	o.SetDistance(o.Distance)
}

// Basis returns the camera's forward, right and up unit vectors.
func (o *Orbit) Basis() (forward, right, up sim.Vec3) {
	forward = o.Target.Sub(o.Position()).Normalize()
	right = forward.Cross(Up).Normalize()
	up = right.Cross(forward)
	return forward, right, up
}

// Ray returns the pick ray through screen point (sx, sy).
func (o *Orbit) Ray(sx, sy float32) (origin, dir sim.Vec3) {
	forward, right, up := o.Basis()
	tanHalf := float32(math.Tan(float64(o.FOVY) * math.Pi / 360))
	aspect := float32(1)
	if o.ViewportH > 0 {
		aspect = o.ViewportW / o.ViewportH
	}

	nx := (2*sx/o.ViewportW - 1) * aspect * tanHalf
	ny := (1 - 2*sy/o.ViewportH) * tanHalf

	dir = forward.Add(right.Scale(nx)).Add(up.Scale(ny)).Normalize()
	return o.Position(), dir
}

// PointerOnPlane intersects a ray with the horizontal plane at height z.
// ok is false when the ray is parallel to the plane or points away from it.
func PointerOnPlane(origin, dir sim.Vec3, z float32) (hit sim.Vec3, ok bool) {
	if absf(dir.Z) < 1e-6 {
		return sim.Vec3{}, false
	}
	t := (z - origin.Z) / dir.Z
	if t < 0 {
		return sim.Vec3{}, false
	}
	return origin.Add(dir.Scale(t)), true
}

// wrapAngle keeps an angle in [-pi, pi).
func wrapAngle(a float32) float32 {
	r := float32(math.Mod(float64(a)+math.Pi, 2*math.Pi))
	if r < 0 {
		r += 2 * math.Pi
	}
	return r - math.Pi
}

// absf returns the absolute value of a float32.
func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

// clamp restricts a value to a range.
func clamp(x, min, max float32) float32 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}

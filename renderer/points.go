// Package renderer draws the particle field and provides a headless
// recording display for runs without a window.
package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/pingpong/camera"
	"github.com/pthm-cable/pingpong/engine"
)

// Speed ramp endpoints: slow particles are cool, fast ones hot.
var (
	slowColor = rl.Color{R: 70, G: 130, B: 255, A: 200}
	fastColor = rl.Color{R: 255, G: 120, B: 60, A: 230}
)

// PointDisplay draws every stride-th texel of the current position buffer
// as a 3D point. Present must run between BeginMode3D and EndMode3D.
type PointDisplay struct {
	Stride   int
	MaxSpeed float32 // speed mapped to fastColor
	Size     float32 // cube edge used instead of a point when > 0

	drawn   int
	last    engine.Frame
	hasLast bool
}

// NewPointDisplay creates a display drawing every stride-th particle.
func NewPointDisplay(stride int) *PointDisplay {
	if stride < 1 {
		stride = 1
	}
	return &PointDisplay{Stride: stride, MaxSpeed: 0.05}
}

// Present implements engine.Display.
func (d *PointDisplay) Present(f engine.Frame) {
	d.last, d.hasLast = f, true
	d.drawn = 0
	if !f.Visible || !f.Positions.Valid() {
		return
	}

	n := f.Positions.Len()
	for i := 0; i < n; i += d.Stride {
		p := f.Positions.Texel(i)
		v := f.Velocities.Texel(i)
		color := SpeedColor(v[0], v[1], v[2], d.MaxSpeed)
		pos := rl.Vector3{X: p[0], Y: p[1], Z: p[2]}

		if d.Size > 0 {
			rl.DrawCube(pos, d.Size, d.Size, d.Size, color)
		} else {
			rl.DrawPoint3D(pos, color)
		}
		d.drawn++
	}
}

// Redraw presents the last frame again, for frames in which the engine did
// not tick (paused). The views still point at the engine's buffers, so a
// reset while paused shows up. It is a no-op before the first Present.
func (d *PointDisplay) Redraw() {
	if d.hasLast {
		d.Present(d.last)
	}
}

// Last returns the most recently presented frame.
func (d *PointDisplay) Last() (engine.Frame, bool) { return d.last, d.hasLast }

// Drawn returns how many particles the last Present drew.
func (d *PointDisplay) Drawn() int { return d.drawn }

// SpeedColor maps |(vx, vy, vz)| onto the slow to fast ramp.
func SpeedColor(vx, vy, vz, maxSpeed float32) rl.Color {
	t := float32(0)
	if maxSpeed > 0 {
		speed := float32(math.Sqrt(float64(vx*vx + vy*vy + vz*vz)))
		t = speed / maxSpeed
		if t > 1 {
			t = 1
		}
	}
	lerp := func(a, b uint8) uint8 {
		return uint8(float32(a) + (float32(b)-float32(a))*t)
	}
	return rl.Color{
		R: lerp(slowColor.R, fastColor.R),
		G: lerp(slowColor.G, fastColor.G),
		B: lerp(slowColor.B, fastColor.B),
		A: lerp(slowColor.A, fastColor.A),
	}
}

// Camera3D converts an orbit camera for raylib's 3D mode.
func Camera3D(o *camera.Orbit) rl.Camera3D {
	pos := o.Position()
	return rl.Camera3D{
		Position:   rl.Vector3{X: pos.X, Y: pos.Y, Z: pos.Z},
		Target:     rl.Vector3{X: o.Target.X, Y: o.Target.Y, Z: o.Target.Z},
		Up:         rl.Vector3{X: camera.Up.X, Y: camera.Up.Y, Z: camera.Up.Z},
		Fovy:       o.FOVY,
		Projection: rl.CameraPerspective,
	}
}

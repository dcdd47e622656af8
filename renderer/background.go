package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/pingpong/sim"
)

// Segment is one line of the ground grid.
type Segment struct {
	From, To sim.Vec3
}

// Backdrop draws a vertical gradient behind the field and a reference grid
// on the z=0 plane, the plane the pointer is projected onto.
type Backdrop struct {
	Top, Bottom rl.Color
	GridColor   rl.Color
	AxisColor   rl.Color

	grid []Segment
}

// NewBackdrop creates a backdrop whose grid spans [-extent, extent] in x and y.
func NewBackdrop(extent float32, step float32) *Backdrop {
	return &Backdrop{
		Top:       rl.Color{R: 14, G: 18, B: 26, A: 255},
		Bottom:    rl.Color{R: 4, G: 5, B: 8, A: 255},
		GridColor: rl.Color{R: 40, G: 46, B: 58, A: 255},
		AxisColor: rl.Color{R: 70, G: 80, B: 100, A: 255},
		grid:      GridLines(extent, step),
	}
}

// GridLines returns the lines of a square grid on the z=0 plane. Lines through
// the origin come first (x axis, then y axis).
func GridLines(extent, step float32) []Segment {
	if extent <= 0 || step <= 0 {
		return nil
	}
	n := int(extent / step)
	lines := []Segment{
		{From: sim.V3(-extent, 0, 0), To: sim.V3(extent, 0, 0)},
		{From: sim.V3(0, -extent, 0), To: sim.V3(0, extent, 0)},
	}
	for i := 1; i <= n; i++ {
		d := float32(i) * step
		for _, s := range []float32{-d, d} {
			lines = append(lines,
				Segment{From: sim.V3(-extent, s, 0), To: sim.V3(extent, s, 0)},
				Segment{From: sim.V3(s, -extent, 0), To: sim.V3(s, extent, 0)},
			)
		}
	}
	return lines
}

// DrawScreen fills the screen with the gradient. Call before BeginMode3D.
func (b *Backdrop) DrawScreen(w, h int32) {
	rl.DrawRectangleGradientV(0, 0, w, h, b.Top, b.Bottom)
}

// DrawGrid draws the ground grid. Call inside BeginMode3D.
func (b *Backdrop) DrawGrid() {
	for i, s := range b.grid {
		c := b.GridColor
		if i < 2 {
			c = b.AxisColor
		}
		rl.DrawLine3D(
			rl.Vector3{X: s.From.X, Y: s.From.Y, Z: s.From.Z},
			rl.Vector3{X: s.To.X, Y: s.To.Y, Z: s.To.Z},
			c,
		)
	}
}

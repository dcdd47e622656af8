package game

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/pingpong/camera"
	"github.com/pthm-cable/pingpong/engine"
)

// burstCount is the extra emission fired by the burst key.
const burstCount = 500

// handleInput processes keyboard and mouse input.
func (g *Game) handleInput() {
	// Window resize propagation
	g.handleResize()

	// Fullscreen toggle
	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		g.togglePause()
	}
	if rl.IsKeyPressed(rl.KeyR) {
		g.resetParticles()
	}
	if rl.IsKeyPressed(rl.KeyTab) {
		g.panel.Toggle()
	}
	if rl.IsKeyPressed(rl.KeyE) {
		for i := range g.cfg.Emitters {
			if err := g.engine.TriggerEmission(i, burstCount); err != nil {
				slog.Warn("burst rejected", "emitter", i, "error", err)
			}
		}
	}

	g.handleCameraInput()
	g.handlePointer()
}

// handleResize checks for window resize and propagates new dimensions.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == g.screenWidth && h == g.screenHeight {
		return
	}
	g.screenWidth = w
	g.screenHeight = h
	g.camera.Resize(w, h)
}

// handleCameraInput processes orbit and zoom controls.
func (g *Game) handleCameraInput() {
	if rl.IsMouseButtonDown(rl.MouseButtonRight) {
		d := rl.GetMouseDelta()
		g.camera.Orbit(d.X, d.Y)
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		g.camera.Zoom(wheel)
	}

	// Keyboard zoom with +/- (= and - keys)
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		g.camera.ZoomBy(0.8)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		g.camera.ZoomBy(1.25)
	}

	// Home key to reset camera
	if rl.IsKeyPressed(rl.KeyHome) {
		g.camera.Reset()
	}
}

// handlePointer projects the mouse onto the z=0 plane as the repel point.
// The pointer is cleared while the mouse is over the panel or off the plane.
func (g *Game) handlePointer() {
	m := rl.GetMousePosition()
	if g.panel.IsVisible() && m.X >= g.screenWidth-290 {
		g.engine.SetPointer(nil)
		return
	}
	origin, dir := g.camera.Ray(m.X, m.Y)
	hit, ok := camera.PointerOnPlane(origin, dir, 0)
	if !ok {
		g.engine.SetPointer(nil)
		return
	}
	g.engine.SetPointer(&hit)
}

func (g *Game) togglePause() {
	var err error
	if g.engine.State() == engine.Paused {
		err = g.engine.Resume()
	} else {
		err = g.engine.Pause()
	}
	if err != nil {
		slog.Warn("pause toggle rejected", "error", err)
	}
}

func (g *Game) resetParticles() {
	if err := g.engine.ResetEmission(); err != nil {
		slog.Warn("reset rejected", "error", err)
	}
}

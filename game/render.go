package game

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/pingpong/engine"
	"github.com/pthm-cable/pingpong/renderer"
	"github.com/pthm-cable/pingpong/ui"
)

var emitterColor = rl.Color{R: 255, G: 220, B: 120, A: 255}

// Update handles input and moves the emitters. The engine ticks in Draw.
func (g *Game) Update() {
	g.handleInput()
	g.moveEmitters()
}

// Draw renders one frame. The scheduled engine tick runs inside 3D mode so
// the point display draws straight into the frame.
func (g *Game) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(g.backdrop.Bottom)
	g.backdrop.DrawScreen(int32(g.screenWidth), int32(g.screenHeight))

	rl.BeginMode3D(renderer.Camera3D(g.camera))
	g.backdrop.DrawGrid()
	before := g.engine.Tick()
	g.manual.RunPending()
	if g.engine.Tick() == before {
		// Paused: keep the last field on screen
		g.display.Redraw()
	}
	for _, p := range g.engine.EmitterPositions() {
		rl.DrawSphere(rl.Vector3{X: p.X, Y: p.Y, Z: p.Z}, 0.02, emitterColor)
	}
	rl.EndMode3D()
	g.saveSnapshots()

	paused := g.engine.State() == engine.Paused
	g.hud.Draw(ui.HUDData{
		Title:     "Ping-pong particles",
		Tick:      g.engine.Tick(),
		Progress:  g.engine.Progress(),
		Cursor:    g.engine.Cursor(),
		Particles: g.cfg.Field.Size * g.cfg.Field.Size,
		Drawn:     g.display.Drawn(),
		FPS:       rl.GetFPS(),
		Paused:    paused,
	})

	patch, action := g.panel.Draw(g.engine.Config(), paused)
	if !patch.Empty() {
		if err := g.engine.SetConfig(patch); err != nil {
			slog.Warn("panel patch rejected", "error", err)
		}
	}
	switch action {
	case ui.ActionTogglePause:
		g.togglePause()
	case ui.ActionReset:
		g.resetParticles()
	}

	rl.EndDrawing()
}

package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title     string
	Tick      int64
	Progress  float64
	Cursor    int
	Particles int
	Drawn     int
	FPS       int32
	Paused    bool
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{renderer: NewRenderer()}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("Tick: %d | FPS: %d | Particles: %d (drawn %d)", data.Tick, data.FPS, data.Particles, data.Drawn),
		10, 35, 16, rl.LightGray,
	)

	h.renderer.DrawBar(10, 57, "Emitted", float32(data.Progress), 300)
	rl.DrawText(fmt.Sprintf("cursor %d", data.Cursor), 10, 77, 14, rl.Gray)

	if data.Paused {
		rl.DrawText("PAUSED", 10, 97, 16, rl.Yellow)
	}

	rl.DrawText("[Space] Pause  [R] Reset  [Tab] Panel  [E] Burst  Right-drag orbit, wheel zoom", 10, 117, 12, rl.Gray)
}

package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/pingpong/config"
)

// Action is a button press reported by the panel.
type Action int

const (
	ActionNone Action = iota
	ActionTogglePause
	ActionReset
)

// SliderDescriptor binds one slider to a tunable parameter.
type SliderDescriptor struct {
	ID       string
	Label    string
	Min, Max float32
	Format   string
	Get      func(cfg *config.Config) float32
	Set      func(p *config.Patch, v float32)
}

// DefaultSliders returns the tuning rows shown by the panel.
func DefaultSliders() []SliderDescriptor {
	f64 := func(v float32) *float64 { return config.Float(float64(v)) }
	return []SliderDescriptor{
		{
			ID: "damping", Label: "Damping", Min: 0.8, Max: 1, Format: "%.3f",
			Get: func(c *config.Config) float32 { return float32(c.Simulation.Damping) },
			Set: func(p *config.Patch, v float32) { p.Damping = f64(v) },
		},
		{
			ID: "attraction", Label: "Attraction", Min: 0, Max: 0.01, Format: "%.4f",
			Get: func(c *config.Config) float32 { return float32(c.Simulation.Attraction) },
			Set: func(p *config.Patch, v float32) { p.Attraction = f64(v) },
		},
		{
			ID: "swirl", Label: "Swirl", Min: 0, Max: 0.002, Format: "%.4f",
			Get: func(c *config.Config) float32 { return float32(c.Simulation.Swirl) },
			Set: func(p *config.Patch, v float32) { p.Swirl = f64(v) },
		},
		{
			ID: "repel_radius", Label: "Repel radius", Min: 0, Max: 3, Format: "%.2f",
			Get: func(c *config.Config) float32 { return float32(c.Simulation.RepelRadius) },
			Set: func(p *config.Patch, v float32) { p.RepelRadius = f64(v) },
		},
		{
			ID: "repel_strength", Label: "Repel force", Min: 0, Max: 0.5, Format: "%.3f",
			Get: func(c *config.Config) float32 { return float32(c.Simulation.RepelStrength) },
			Set: func(p *config.Patch, v float32) { p.RepelStrength = f64(v) },
		},
		{
			ID: "gravity_z", Label: "Gravity z", Min: -10, Max: 10, Format: "%.1f",
			Get: func(c *config.Config) float32 { return float32(c.Simulation.Gravity[2]) },
			Set: func(p *config.Patch, v float32) {
				// Patch carries the whole vector; x and y are filled by Panel.Draw.
				g := [3]float64{0, 0, float64(v)}
				if p.Gravity != nil {
					g[0], g[1] = p.Gravity[0], p.Gravity[1]
				}
				p.Gravity = &g
			},
		},
		{
			ID: "count_per_tick", Label: "Emit / tick", Min: 0, Max: 500, Format: "%.0f",
			Get: func(c *config.Config) float32 { return float32(c.Emission.CountPerTick) },
			Set: func(p *config.Patch, v float32) { p.CountPerTick = config.Int(int(v + 0.5)) },
		},
		{
			ID: "randomness", Label: "Randomness", Min: 0, Max: 2, Format: "%.2f",
			Get: func(c *config.Config) float32 { return float32(c.Emission.Randomness) },
			Set: func(p *config.Patch, v float32) { p.Randomness = f64(v) },
		},
		{
			ID: "morph", Label: "Morph", Min: 0, Max: 1, Format: "%.2f",
			Get: func(c *config.Config) float32 { return float32(c.Simulation.Morph) },
			Set: func(p *config.Patch, v float32) { p.Morph = f64(v) },
		},
	}
}

// Panel is the right-side tuning panel.
type Panel struct {
	renderer *Renderer
	sliders  []SliderDescriptor
	x, y     int32
	width    int32
	visible  bool
}

// NewPanel creates a panel with the default sliders.
func NewPanel(x, y, width int32) *Panel {
	return &Panel{
		renderer: NewRenderer(),
		sliders:  DefaultSliders(),
		x:        x,
		y:        y,
		width:    width,
		visible:  true,
	}
}

// Toggle switches panel visibility.
func (p *Panel) Toggle() bool {
	p.visible = !p.visible
	return p.visible
}

// IsVisible returns whether the panel is shown.
func (p *Panel) IsVisible() bool {
	return p.visible
}

// Draw renders the panel against cfg and returns the edits made this frame.
func (p *Panel) Draw(cfg *config.Config, paused bool) (config.Patch, Action) {
	var patch config.Patch
	action := ActionNone
	if !p.visible {
		return patch, action
	}

	r := p.renderer
	pad := r.Theme.Padding
	rowH := int32(38)
	height := pad*3 + r.Theme.LineHeight + int32(len(p.sliders))*rowH + 30
	r.DrawPanel(p.x, p.y, p.width, height)

	y := r.DrawSectionHeader(p.x+pad, p.y+pad, "Field")
	sliderW := float32(p.width - pad*2 - 60)

	for _, s := range p.sliders {
		cur := s.Get(cfg)
		rl.DrawText(s.Label, p.x+pad, y, r.Theme.FontSize, r.Theme.LabelColor)
		y += 14
		next := gui.SliderBar(
			rl.Rectangle{X: float32(p.x + pad), Y: float32(y), Width: sliderW, Height: 16},
			"", "",
			cur, s.Min, s.Max,
		)
		rl.DrawText(fmt.Sprintf(s.Format, cur), p.x+pad+int32(sliderW)+6, y+2, r.Theme.FontSize, r.Theme.ValueColor)
		if next != cur {
			s.Set(&patch, next)
		}
		y += rowH - 14
	}
	if patch.Gravity != nil {
		patch.Gravity[0] = cfg.Simulation.Gravity[0]
		patch.Gravity[1] = cfg.Simulation.Gravity[1]
	}

	btnW := float32(p.width-pad*3) / 2
	label := "Pause"
	if paused {
		label = "Resume"
	}
	if gui.Button(rl.Rectangle{X: float32(p.x + pad), Y: float32(y), Width: btnW, Height: 24}, label) {
		action = ActionTogglePause
	}
	if gui.Button(rl.Rectangle{X: float32(p.x+pad*2) + btnW, Y: float32(y), Width: btnW, Height: 24}, "Reset particles") {
		action = ActionReset
	}

	return patch, action
}

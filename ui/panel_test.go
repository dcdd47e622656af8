package ui

import (
	"math"
	"testing"

	"github.com/pthm-cable/pingpong/config"
)

func TestSlidersRoundtrip(t *testing.T) {
	for _, s := range DefaultSliders() {
		t.Run(s.ID, func(t *testing.T) {
			cfg := config.Defaults()
			mid := (s.Min + s.Max) / 2

			var p config.Patch
			s.Set(&p, mid)
			if p.Empty() {
				t.Fatal("Set produced an empty patch")
			}
			cfg.Apply(p)
			if err := cfg.Validate(); err != nil {
				t.Fatalf("midpoint is invalid: %v", err)
			}
			if got := s.Get(cfg); math.Abs(float64(got-mid)) > 1e-3 {
				t.Errorf("Get = %g, want %g", got, mid)
			}
		})
	}
}

func TestSliderIDsUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, s := range DefaultSliders() {
		if seen[s.ID] {
			t.Errorf("duplicate slider %q", s.ID)
		}
		seen[s.ID] = true
		if s.Min >= s.Max {
			t.Errorf("%s: empty range [%g, %g]", s.ID, s.Min, s.Max)
		}
	}
}

func TestPanelToggle(t *testing.T) {
	p := NewPanel(0, 0, 300)
	if !p.IsVisible() {
		t.Fatal("panel should start visible")
	}
	if p.Toggle() || p.IsVisible() {
		t.Error("toggle did not hide the panel")
	}
	// Hidden panels draw nothing and report no edits.
	patch, action := p.Draw(config.Defaults(), false)
	if !patch.Empty() || action != ActionNone {
		t.Errorf("hidden panel returned %+v, %v", patch, action)
	}
}

func TestClamp01(t *testing.T) {
	tests := []struct{ in, want float32 }{{-1, 0}, {0.25, 0.25}, {3, 1}}
	for _, tt := range tests {
		if got := clamp01(tt.in); got != tt.want {
			t.Errorf("clamp01(%g) = %g, want %g", tt.in, got, tt.want)
		}
	}
}

package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Patch is a partial update of the runtime-tunable parameters.
// Nil fields are left unchanged. Field size is deliberately absent.
type Patch struct {
	Damping       *float64    `yaml:"damping,omitempty"`
	Attraction    *float64    `yaml:"attraction,omitempty"`
	Swirl         *float64    `yaml:"swirl,omitempty"`
	Epsilon       *float64    `yaml:"epsilon,omitempty"`
	RepelRadius   *float64    `yaml:"repel_radius,omitempty"`
	RepelStrength *float64    `yaml:"repel_strength,omitempty"`
	Gravity       *[3]float64 `yaml:"gravity,omitempty"`
	DT            *float64    `yaml:"dt,omitempty"`
	Morph         *float64    `yaml:"morph,omitempty"`

	CountPerTick *int     `yaml:"count_per_tick,omitempty"`
	ImpulseScale *float64 `yaml:"impulse_scale,omitempty"`
	Flip         *string  `yaml:"flip,omitempty"`
	Randomness   *float64 `yaml:"randomness,omitempty"`

	Visible *bool `yaml:"visible,omitempty"`
}

// Empty reports whether the patch sets nothing.
func (p Patch) Empty() bool {
	return p == Patch{}
}

// ParsePatch decodes a YAML document into a Patch.
func ParsePatch(data []byte) (Patch, error) {
	var p Patch
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Patch{}, fmt.Errorf("parsing patch: %w", err)
	}
	return p, nil
}

// Apply copies every set field of p into c and recomputes derived values.
// The result is not validated; callers validate before committing.
func (c *Config) Apply(p Patch) {
	set := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
		}
	}
	set(&c.Simulation.Damping, p.Damping)
	set(&c.Simulation.Attraction, p.Attraction)
	set(&c.Simulation.Swirl, p.Swirl)
	set(&c.Simulation.Epsilon, p.Epsilon)
	set(&c.Simulation.RepelRadius, p.RepelRadius)
	set(&c.Simulation.RepelStrength, p.RepelStrength)
	set(&c.Simulation.DT, p.DT)
	set(&c.Simulation.Morph, p.Morph)
	if p.Gravity != nil {
		c.Simulation.Gravity = *p.Gravity
	}

	if p.CountPerTick != nil {
		c.Emission.CountPerTick = *p.CountPerTick
	}
	set(&c.Emission.ImpulseScale, p.ImpulseScale)
	if p.Flip != nil {
		c.Emission.Flip = *p.Flip
	}
	set(&c.Emission.Randomness, p.Randomness)

	if p.Visible != nil {
		c.Screen.Visible = *p.Visible
	}

	c.computeDerived()
}

// Float returns a pointer to v, for building patches in code.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

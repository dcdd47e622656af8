package config

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Origin shapes understood by the generators.
var originShapes = map[string]bool{
	"sphere":    true,
	"fibonacci": true,
	"grid":      true,
	"spiral":    true,
	"image":     true,
	"zero":      true,
}

var flipPolicies = map[string]bool{
	"random": true,
	"never":  true,
	"always": true,
}

// Validate reports every violation found in the configuration.
func (c *Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if c.Field.Size < 1 {
		bad("field.size must be a positive integer, got %d", c.Field.Size)
	}
	if c.Field.MaxTexels < 0 {
		bad("field.max_texels must not be negative, got %d", c.Field.MaxTexels)
	}
	if c.Field.Workers < 0 {
		bad("field.workers must not be negative, got %d", c.Field.Workers)
	}

	if !originShapes[c.Origin.Shape] {
		bad("origin.shape %q is not one of sphere, fibonacci, grid, spiral, image, zero", c.Origin.Shape)
	}
	if c.Origin.TargetShape != "" && !originShapes[c.Origin.TargetShape] {
		bad("origin.target_shape %q is not a known shape", c.Origin.TargetShape)
	}
	if (c.Origin.Shape == "image" || c.Origin.TargetShape == "image") && c.Origin.ImagePath == "" {
		bad("origin.image_path is required for the image shape")
	}
	if c.Origin.Shape == "spiral" && c.Origin.Branches < 1 {
		bad("origin.branches must be at least 1, got %d", c.Origin.Branches)
	}

	errs = append(errs, c.validateOrigins()...)
	errs = append(errs, c.validateSimulation()...)
	errs = append(errs, c.validateEmission()...)

	if c.Telemetry.StatsWindow < 1 {
		bad("telemetry.stats_window must be at least 1, got %d", c.Telemetry.StatsWindow)
	}
	if c.Telemetry.PerfWindow < 1 {
		bad("telemetry.perf_window must be at least 1, got %d", c.Telemetry.PerfWindow)
	}

	return errors.Join(errs...)
}

func (c *Config) validateSimulation() []error {
	var errs []error
	s := c.Simulation
	errs = append(errs, nonFinite(
		named{"simulation.damping", s.Damping},
		named{"simulation.attraction", s.Attraction},
		named{"simulation.swirl", s.Swirl},
		named{"simulation.epsilon", s.Epsilon},
		named{"simulation.repel_radius", s.RepelRadius},
		named{"simulation.repel_strength", s.RepelStrength},
		named{"simulation.gravity[0]", s.Gravity[0]},
		named{"simulation.gravity[1]", s.Gravity[1]},
		named{"simulation.gravity[2]", s.Gravity[2]},
		named{"simulation.dt", s.DT},
		named{"simulation.morph", s.Morph},
	)...)
	if s.Damping < 0 || s.Damping > 1 {
		errs = append(errs, fmt.Errorf("%w: simulation.damping must be in [0, 1], got %g", ErrInvalid, s.Damping))
	}
	if s.Epsilon < 0 {
		errs = append(errs, fmt.Errorf("%w: simulation.epsilon must not be negative, got %g", ErrInvalid, s.Epsilon))
	}
	if s.RepelRadius < 0 {
		errs = append(errs, fmt.Errorf("%w: simulation.repel_radius must not be negative, got %g", ErrInvalid, s.RepelRadius))
	}
	if s.DT < 0 {
		errs = append(errs, fmt.Errorf("%w: simulation.dt must not be negative, got %g", ErrInvalid, s.DT))
	}
	if s.Morph < 0 || s.Morph > 1 {
		errs = append(errs, fmt.Errorf("%w: simulation.morph must be in [0, 1], got %g", ErrInvalid, s.Morph))
	}
	return errs
}

func (c *Config) validateEmission() []error {
	var errs []error
	e := c.Emission
	if e.CountPerTick < 0 {
		errs = append(errs, fmt.Errorf("%w: emission.count_per_tick must not be negative, got %d", ErrInvalid, e.CountPerTick))
	}
	if !flipPolicies[e.Flip] {
		errs = append(errs, fmt.Errorf("%w: emission.flip %q is not one of random, never, always", ErrInvalid, e.Flip))
	}
	if e.Randomness < 0 {
		errs = append(errs, fmt.Errorf("%w: emission.randomness must not be negative, got %g", ErrInvalid, e.Randomness))
	}
	errs = append(errs, nonFinite(
		named{"emission.impulse_scale", e.ImpulseScale},
		named{"emission.randomness", e.Randomness},
		named{"emission.park[0]", e.Park[0]},
		named{"emission.park[1]", e.Park[1]},
		named{"emission.park[2]", e.Park[2]},
	)...)
	return errs
}

func (c *Config) validateOrigins() []error {
	errs := nonFinite(
		named{"origin.radius", c.Origin.Radius},
		named{"origin.spread", c.Origin.Spread},
	)
	for i, em := range c.Emitters {
		errs = append(errs, nonFinite(
			named{fmt.Sprintf("emitters[%d].position[0]", i), em.Position[0]},
			named{fmt.Sprintf("emitters[%d].position[1]", i), em.Position[1]},
			named{fmt.Sprintf("emitters[%d].position[2]", i), em.Position[2]},
			named{fmt.Sprintf("emitters[%d].orbit_radius", i), em.OrbitRadius},
			named{fmt.Sprintf("emitters[%d].orbit_speed", i), em.OrbitSpeed},
		)...)
	}
	return errs
}

type named struct {
	name string
	v    float64
}

// nonFinite reports every NaN or infinite value. Range checks alone pass NaN.
func nonFinite(vals ...named) []error {
	var errs []error
	for _, n := range vals {
		if math.IsNaN(n.v) || math.IsInf(n.v, 0) {
			errs = append(errs, fmt.Errorf("%w: %s must be finite, got %g", ErrInvalid, n.name, n.v))
		}
	}
	return errs
}

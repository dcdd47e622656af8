package sim

import "github.com/pthm-cable/pingpong/config"

// Params holds the STEP coefficients as float32 for the hot loop.
type Params struct {
	Damping       float32
	Attraction    float32
	Swirl         float32
	Epsilon       float32
	RepelRadius   float32
	RepelStrength float32
	Gravity       Vec3
	DT            float32
	Morph         float32
}

// ParamsFromConfig converts the simulation section of cfg.
func ParamsFromConfig(cfg *config.Config) Params {
	s := cfg.Simulation
	return Params{
		Damping:       float32(s.Damping),
		Attraction:    float32(s.Attraction),
		Swirl:         float32(s.Swirl),
		Epsilon:       float32(s.Epsilon),
		RepelRadius:   float32(s.RepelRadius),
		RepelStrength: float32(s.RepelStrength),
		Gravity:       FromArray(cfg.Derived.Gravity32),
		DT:            cfg.Derived.DT32,
		Morph:         float32(s.Morph),
	}
}

package sim

import "github.com/ojrac/opensimplex-go"

// Jitter perturbs bootstrap directions with smooth noise so an emitted
// slice fans out instead of moving as one rigid block.
type Jitter struct {
	noise opensimplex.Noise32
}

// NewJitter creates a jitter source for the given seed.
func NewJitter(seed int64) *Jitter {
	return &Jitter{noise: opensimplex.New32(seed)}
}

// Offset returns a vector with components in about [-1, 1] for particle i.
// The same (i, salt) always yields the same offset.
func (j *Jitter) Offset(i int, salt float32) Vec3 {
	x := float32(i) * 0.61803
	return Vec3{
		X: j.noise.Eval2(x, salt),
		Y: j.noise.Eval2(x+31.4, salt),
		Z: j.noise.Eval2(x+77.7, salt),
	}
}

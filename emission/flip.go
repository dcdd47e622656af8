package emission

import (
	"fmt"
	"math/rand"
)

// Flipper decides whether an emission mirrors its X channel.
type Flipper interface {
	Flip() bool
}

// RandomFlip mirrors with probability P.
type RandomFlip struct {
	Rng *rand.Rand
	P   float64
}

func (f RandomFlip) Flip() bool { return f.Rng.Float64() < f.P }

// NeverFlip never mirrors.
type NeverFlip struct{}

func (NeverFlip) Flip() bool { return false }

// AlwaysFlip always mirrors.
type AlwaysFlip struct{}

func (AlwaysFlip) Flip() bool { return true }

// ParseFlip builds the policy named by emission.flip.
func ParseFlip(name string, rng *rand.Rand) (Flipper, error) {
	switch name {
	case "random":
		return RandomFlip{Rng: rng, P: 0.5}, nil
	case "never":
		return NeverFlip{}, nil
	case "always":
		return AlwaysFlip{}, nil
	}
	return nil, fmt.Errorf("unknown flip policy %q", name)
}

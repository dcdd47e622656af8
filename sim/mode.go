package sim

import "fmt"

// Mode selects what a pass writes. It is a closed set:
// BootstrapDirections, BootstrapPositions or Step.
type Mode interface {
	fmt.Stringer
	isMode()
}

// BootstrapDirections writes velocities derived only from Source, ignoring
// previous state. Randomness scales a simplex-noise perturbation relative to
// |Source|; Salt decorrelates successive emissions.
type BootstrapDirections struct {
	Source     Vec3
	Randomness float32
	Salt       float32
}

// BootstrapPositions writes Source into every position of the range.
type BootstrapPositions struct {
	Source Vec3
}

// Step is the steady-state update reading the previous buffers.
type Step struct{}

func (BootstrapDirections) isMode() {}
func (BootstrapPositions) isMode()  {}
func (Step) isMode()                {}

func (m BootstrapDirections) String() string {
	return fmt.Sprintf("bootstrap_directions(%g,%g,%g)", m.Source.X, m.Source.Y, m.Source.Z)
}

func (m BootstrapPositions) String() string {
	return fmt.Sprintf("bootstrap_positions(%g,%g,%g)", m.Source.X, m.Source.Y, m.Source.Z)
}

func (Step) String() string { return "step" }

package sim

import (
	"errors"
	"fmt"

	"github.com/pthm-cable/pingpong/field"
)

var (
	// ErrMissingBuffer is returned when a pass lacks a texture its mode needs.
	ErrMissingBuffer = errors.New("pass is missing a required buffer")
	// ErrMismatchedBuffer is returned when the textures of a pass differ in size.
	ErrMismatchedBuffer = errors.New("pass buffers differ in size")
)

// Buffers names the textures a pass reads and writes.
// Step reads PosIn, VelIn and Origin and writes PosOut and VelOut.
// BootstrapDirections writes VelOut only; BootstrapPositions writes PosOut only.
type Buffers struct {
	PosIn, VelIn   *field.Texture
	PosOut, VelOut *field.Texture
	Origin         *field.Texture
	Target         *field.Texture // optional morph target for Origin
}

func (b *Buffers) check(mode Mode) error {
	need := func(t *field.Texture, name string) error {
		if t == nil {
			return fmt.Errorf("%w: %s needs %s", ErrMissingBuffer, mode, name)
		}
		return nil
	}
	var ref *field.Texture
	switch mode.(type) {
	case Step:
		if err := errors.Join(
			need(b.PosIn, "position input"),
			need(b.VelIn, "velocity input"),
			need(b.PosOut, "position output"),
			need(b.VelOut, "velocity output"),
			need(b.Origin, "origin"),
		); err != nil {
			return err
		}
		ref = b.PosOut
	case BootstrapDirections:
		if err := need(b.VelOut, "velocity output"); err != nil {
			return err
		}
		ref = b.VelOut
	case BootstrapPositions:
		if err := need(b.PosOut, "position output"); err != nil {
			return err
		}
		ref = b.PosOut
	default:
		return fmt.Errorf("unknown mode %T", mode)
	}

	// Every texture present must match the output, even ones the mode ignores.
	var errs []error
	for _, t := range []struct {
		tex  *field.Texture
		name string
	}{
		{b.PosIn, "position input"},
		{b.VelIn, "velocity input"},
		{b.PosOut, "position output"},
		{b.VelOut, "velocity output"},
		{b.Origin, "origin"},
		{b.Target, "target"},
	} {
		if t.tex != nil && t.tex.Size() != ref.Size() {
			errs = append(errs, fmt.Errorf("%w: %s %s is %dx%d, output is %dx%d",
				ErrMismatchedBuffer, mode, t.name, t.tex.Size(), t.tex.Size(), ref.Size(), ref.Size()))
		}
	}
	return errors.Join(errs...)
}

// Velocity computes the next velocity of one particle:
// damping, attraction toward origin with a tangential swirl, pointer
// repulsion, then gravity. A particle within Epsilon of its origin gets no
// attraction, and a particle exactly on the pointer gets no repulsion.
func Velocity(pos, vel, origin Vec3, p *Params, pointer *Vec3) Vec3 {
	vel = vel.Scale(p.Damping)

	toOrigin := origin.Sub(pos)
	if toOrigin.Len() > p.Epsilon {
		dir := toOrigin.Normalize()
		vel = vel.Add(dir.Scale(p.Attraction))
		if p.Swirl != 0 {
			vel = vel.Add(dir.RotateZ90().Scale(p.Swirl))
		}
	}

	if pointer != nil && p.RepelRadius > 0 {
		d := pos.Dist(*pointer)
		if d < p.RepelRadius {
			falloff := 1 - d/p.RepelRadius
			vel = vel.Add(pos.Sub(*pointer).Normalize().Scale(falloff * p.RepelStrength))
		}
	}

	return vel.Add(p.Gravity.Scale(p.DT))
}

func stepRange(lo, hi int, b *Buffers, p *Params, pointer *Vec3) {
	for i := lo; i < hi; i++ {
		pt := b.PosIn.Texel(i)
		vt := b.VelIn.Texel(i)
		pos := FromTexel(pt)

		origin := FromTexel(b.Origin.Texel(i))
		if b.Target != nil && p.Morph != 0 {
			origin = origin.Lerp(FromTexel(b.Target.Texel(i)), p.Morph)
		}

		vel := Velocity(pos, FromTexel(vt), origin, p, pointer)
		pos = pos.Add(vel)

		b.PosOut.SetTexel(i, pos.Texel(pt[3]))
		b.VelOut.SetTexel(i, vel.Texel(vt[3]))
	}
}

func directionsRange(lo, hi int, b *Buffers, m BootstrapDirections, jitter *Jitter) {
	amount := m.Randomness * m.Source.Len()
	for i := lo; i < hi; i++ {
		v := m.Source
		if amount != 0 && jitter != nil {
			v = v.Add(jitter.Offset(i, m.Salt).Scale(amount))
		}
		b.VelOut.SetTexel(i, v.Texel(0))
	}
}

func positionsRange(lo, hi int, b *Buffers, m BootstrapPositions) {
	for i := lo; i < hi; i++ {
		w := float32(0)
		if b.Origin != nil {
			w = b.Origin.Texel(i)[3]
		}
		b.PosOut.SetTexel(i, m.Source.Texel(w))
	}
}

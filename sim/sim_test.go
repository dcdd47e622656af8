package sim

import (
	"errors"
	"math"
	"testing"

	"github.com/pthm-cable/pingpong/config"
	"github.com/pthm-cable/pingpong/field"
)

func approx(a, b, tol float32) bool {
	return math.Abs(float64(a-b)) <= float64(tol)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   Vec3
		want Vec3
	}{
		{"unit x", V3(3, 0, 0), V3(1, 0, 0)},
		{"diagonal", V3(0, 3, 4), V3(0, 0.6, 0.8)},
		{"zero", Vec3{}, Vec3{}},
		{"tiny", V3(1e-20, 0, 0), Vec3{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Normalize()
			if got.IsNaN() {
				t.Fatalf("Normalize(%v) produced NaN", tt.in)
			}
			if !approx(got.X, tt.want.X, 1e-6) || !approx(got.Y, tt.want.Y, 1e-6) || !approx(got.Z, tt.want.Z, 1e-6) {
				t.Errorf("Normalize(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestVecHelpers(t *testing.T) {
	if got := V3(1, 0, 0).RotateZ90(); got != V3(0, 1, 0) {
		t.Errorf("RotateZ90 = %v, want (0,1,0)", got)
	}
	if got := V3(0, 0, 0).Lerp(V3(2, 4, 6), 0.5); got != V3(1, 2, 3) {
		t.Errorf("Lerp = %v", got)
	}
	if got := V3(1, 2, 3).FlipX(); got != V3(-1, 2, 3) {
		t.Errorf("FlipX = %v", got)
	}
	if d := V3(1, 0, 0).Dist(V3(4, 4, 0)); !approx(d, 5, 1e-6) {
		t.Errorf("Dist = %v, want 5", d)
	}
}

func baseParams() Params {
	return Params{
		Damping:       0.9,
		Attraction:    0.01,
		Epsilon:       0.01,
		RepelRadius:   1,
		RepelStrength: 0.1,
		DT:            1,
	}
}

func TestVelocityAtOriginIsUnchanged(t *testing.T) {
	p := baseParams()
	p.Swirl = 0.5
	for _, eps := range []float32{0, 0.01} {
		p.Epsilon = eps
		pos := V3(0.3, -0.2, 0.7)
		got := Velocity(pos, Vec3{}, pos, &p, nil)
		if got != (Vec3{}) {
			t.Errorf("epsilon %v: particle at rest on its origin got velocity %v", eps, got)
		}
	}
}

func TestVelocityPointerOnParticle(t *testing.T) {
	p := baseParams()
	pos := V3(1, 1, 1)
	got := Velocity(pos, Vec3{}, pos, &p, &pos)
	if got.IsNaN() {
		t.Fatalf("pointer on particle produced NaN: %v", got)
	}
	if got != (Vec3{}) {
		t.Errorf("velocity = %v, want zero", got)
	}
}

func TestVelocityTerms(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *Params)
		pos     Vec3
		vel     Vec3
		origin  Vec3
		pointer *Vec3
		want    Vec3
	}{
		{
			name:   "damping only",
			mutate: func(p *Params) { p.Attraction = 0 },
			pos:    V3(1, 0, 0), vel: V3(1, 2, 0), origin: V3(1, 0, 0),
			want: V3(0.9, 1.8, 0),
		},
		{
			name:   "attraction toward origin",
			mutate: func(p *Params) {},
			pos:    V3(2, 0, 0), vel: Vec3{}, origin: Vec3{},
			want: V3(-0.01, 0, 0),
		},
		{
			name:   "swirl is perpendicular",
			mutate: func(p *Params) { p.Attraction = 0; p.Swirl = 0.5 },
			pos:    V3(2, 0, 0), vel: Vec3{}, origin: Vec3{},
			want: V3(0, -0.5, 0),
		},
		{
			name:   "repel with linear falloff",
			mutate: func(p *Params) { p.Attraction = 0 },
			pos:    V3(0.5, 0, 0), vel: Vec3{}, origin: V3(0.5, 0, 0),
			pointer: &Vec3{},
			want:    V3(0.05, 0, 0),
		},
		{
			name:   "pointer out of radius",
			mutate: func(p *Params) { p.Attraction = 0 },
			pos:    V3(3, 0, 0), vel: Vec3{}, origin: V3(3, 0, 0),
			pointer: &Vec3{},
			want:    Vec3{},
		},
		{
			name:   "gravity scaled by dt",
			mutate: func(p *Params) { p.Attraction = 0; p.Gravity = V3(0, 0, -2); p.DT = 0.5 },
			pos:    Vec3{}, vel: Vec3{}, origin: Vec3{},
			want: V3(0, 0, -1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := baseParams()
			tt.mutate(&p)
			got := Velocity(tt.pos, tt.vel, tt.origin, &p, tt.pointer)
			if !approx(got.X, tt.want.X, 1e-6) || !approx(got.Y, tt.want.Y, 1e-6) || !approx(got.Z, tt.want.Z, 1e-6) {
				t.Errorf("Velocity = %v, want %v", got, tt.want)
			}
		})
	}
}

type fixture struct {
	alloc          *field.Allocator
	pos, vel       *field.Slot
	origin, target *field.Texture
}

func newFixture(t *testing.T, size int) *fixture {
	t.Helper()
	alloc := field.NewAllocator(0)
	mk := func() *field.Texture {
		tex, err := alloc.Alloc(size)
		if err != nil {
			t.Fatal(err)
		}
		return tex
	}
	return &fixture{
		alloc:  alloc,
		pos:    field.NewSlot(mk(), mk()),
		vel:    field.NewSlot(mk(), mk()),
		origin: mk(),
		target: mk(),
	}
}

func (f *fixture) stepBuffers() Buffers {
	return Buffers{
		PosIn:  f.pos.Current(),
		VelIn:  f.vel.Current(),
		PosOut: f.pos.Previous(),
		VelOut: f.vel.Previous(),
		Origin: f.origin,
	}
}

func TestPassBootstrapWritesOnlyRange(t *testing.T) {
	f := newFixture(t, 4)
	pass := NewPass(1, NewJitter(1))
	defer pass.Close()

	b := f.stepBuffers()
	r := field.Range{Lo: 4, Hi: 8}
	if err := pass.Run(BootstrapDirections{Source: V3(1, 2, 3)}, b, Params{}, nil, r); err != nil {
		t.Fatal(err)
	}
	if err := pass.Run(BootstrapPositions{Source: V3(-1, 0, 5)}, b, Params{}, nil, r); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 16; i++ {
		vel := FromTexel(b.VelOut.Texel(i))
		pos := FromTexel(b.PosOut.Texel(i))
		inside := i >= 4 && i < 8
		if inside && (vel != V3(1, 2, 3) || pos != V3(-1, 0, 5)) {
			t.Errorf("texel %d inside range: vel %v pos %v", i, vel, pos)
		}
		if !inside && (vel != Vec3{} || pos != Vec3{}) {
			t.Errorf("texel %d outside range was written: vel %v pos %v", i, vel, pos)
		}
	}
}

func TestPassBootstrapRandomness(t *testing.T) {
	f := newFixture(t, 4)
	pass := NewPass(1, NewJitter(7))
	b := f.stepBuffers()

	mode := BootstrapDirections{Source: V3(0, 1, 0), Randomness: 0.5, Salt: 3}
	if err := pass.Run(mode, b, Params{}, nil, field.Full(16)); err != nil {
		t.Fatal(err)
	}
	first := make([]float32, 64)
	field.NewView(b.VelOut).CopyTo(first)

	varied := false
	for i := 0; i < 16; i++ {
		v := FromTexel(b.VelOut.Texel(i))
		if v.IsNaN() {
			t.Fatalf("texel %d is NaN", i)
		}
		if v.Sub(V3(0, 1, 0)).Len() > 0.5*float32(math.Sqrt(3))+1e-3 {
			t.Errorf("texel %d perturbed beyond randomness bound: %v", i, v)
		}
		if v != V3(0, 1, 0) {
			varied = true
		}
	}
	if !varied {
		t.Error("randomness produced no variation")
	}

	// Same salt, same output
	if err := pass.Run(mode, b, Params{}, nil, field.Full(16)); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 64; i++ {
		if b.VelOut.Data()[i] != first[i] {
			t.Fatalf("jitter not deterministic at float %d", i)
		}
	}
}

func TestPassStepParallelMatchesSerial(t *testing.T) {
	const size = 16
	serial := newFixture(t, size)
	parallel := newFixture(t, size)

	for _, f := range []*fixture{serial, parallel} {
		for i := 0; i < size*size; i++ {
			fi := float32(i)
			f.pos.Current().SetTexel(i, field.Texel{fi * 0.01, -fi * 0.02, 1, 0.5})
			f.vel.Current().SetTexel(i, field.Texel{0.1, 0, -0.1, 0})
			f.origin.SetTexel(i, field.Texel{0, fi * 0.001, 0, 0})
		}
	}

	p := ParamsFromConfig(config.Defaults())
	pointer := V3(0.5, -0.5, 1)

	before := serial.pos.Current().Texel(3)

	sp := NewPass(1, nil)
	pp := NewPass(4, nil)
	defer pp.Close()

	if err := sp.Run(Step{}, serial.stepBuffers(), p, &pointer, field.Full(size*size)); err != nil {
		t.Fatal(err)
	}
	if err := pp.Run(Step{}, parallel.stepBuffers(), p, &pointer, field.Full(size*size)); err != nil {
		t.Fatal(err)
	}

	a, b := serial.pos.Previous().Data(), parallel.pos.Previous().Data()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("position float %d differs: serial %v parallel %v", i, a[i], b[i])
		}
	}
	va, vb := serial.vel.Previous().Data(), parallel.vel.Previous().Data()
	for i := range va {
		if va[i] != vb[i] {
			t.Fatalf("velocity float %d differs: serial %v parallel %v", i, va[i], vb[i])
		}
	}
	// Inputs are never written by Step
	if serial.pos.Current().Texel(3) != before {
		t.Error("step wrote into its input buffer")
	}
}

func TestPassStepMorph(t *testing.T) {
	f := newFixture(t, 1)
	f.origin.SetTexel(0, field.Texel{0, 0, 0, 0})
	f.target.SetTexel(0, field.Texel{4, 0, 0, 0})
	f.pos.Current().SetTexel(0, field.Texel{1, 0, 0, 0})

	b := f.stepBuffers()
	b.Target = f.target
	p := Params{Damping: 1, Attraction: 0.1, Epsilon: 0.01, Morph: 0.5}

	if err := NewPass(1, nil).Run(Step{}, b, p, nil, field.Full(1)); err != nil {
		t.Fatal(err)
	}
	// Blended origin is (2,0,0): attraction pushes +x
	if v := FromTexel(b.VelOut.Texel(0)); !approx(v.X, 0.1, 1e-6) {
		t.Errorf("velocity x = %v, want 0.1 toward blended origin", v.X)
	}
}

func TestPassMissingBuffers(t *testing.T) {
	f := newFixture(t, 2)
	pass := NewPass(1, nil)

	b := f.stepBuffers()
	b.Origin = nil
	if err := pass.Run(Step{}, b, Params{}, nil, field.Full(4)); !errors.Is(err, ErrMissingBuffer) {
		t.Errorf("Step without origin: error = %v, want ErrMissingBuffer", err)
	}
	if err := pass.Run(BootstrapPositions{}, Buffers{}, Params{}, nil, field.Full(4)); !errors.Is(err, ErrMissingBuffer) {
		t.Errorf("positions without output: error = %v, want ErrMissingBuffer", err)
	}
	if err := pass.Run(BootstrapPositions{}, b, Params{}, nil, field.Full(4)); err != nil {
		t.Errorf("positions with output should not need origin: %v", err)
	}
}

func TestPassMismatchedBuffers(t *testing.T) {
	f := newFixture(t, 4)
	small, err := f.alloc.Alloc(2)
	if err != nil {
		t.Fatal(err)
	}
	pass := NewPass(1, NewJitter(1))
	defer pass.Close()

	tests := []struct {
		name   string
		mode   Mode
		mutate func(b *Buffers)
	}{
		{"step small origin", Step{}, func(b *Buffers) { b.Origin = small }},
		{"step small target", Step{}, func(b *Buffers) { b.Target = small }},
		{"step small position input", Step{}, func(b *Buffers) { b.PosIn = small }},
		{"step small velocity input", Step{}, func(b *Buffers) { b.VelIn = small }},
		{"step small velocity output", Step{}, func(b *Buffers) { b.VelOut = small }},
		{"directions small position output", BootstrapDirections{}, func(b *Buffers) { b.PosOut = small }},
		{"positions small velocity output", BootstrapPositions{}, func(b *Buffers) { b.VelOut = small }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := f.stepBuffers()
			tt.mutate(&b)
			err := pass.Run(tt.mode, b, Params{Damping: 1}, nil, field.Full(16))
			if !errors.Is(err, ErrMismatchedBuffer) {
				t.Errorf("error = %v, want ErrMismatchedBuffer", err)
			}
		})
	}

	// Matching sizes still run
	b := f.stepBuffers()
	b.Target = f.target
	if err := pass.Run(Step{}, b, Params{Damping: 1}, nil, field.Full(16)); err != nil {
		t.Errorf("matching buffers: %v", err)
	}
}

func TestModeStrings(t *testing.T) {
	modes := []Mode{Step{}, BootstrapDirections{}, BootstrapPositions{}}
	want := []string{"step", "bootstrap_directions(0,0,0)", "bootstrap_positions(0,0,0)"}
	for i, m := range modes {
		if m.String() != want[i] {
			t.Errorf("String() = %q, want %q", m.String(), want[i])
		}
	}
}

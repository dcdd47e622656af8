package emission

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/pthm-cable/pingpong/field"
	"github.com/pthm-cable/pingpong/sim"
)

func TestControllerCursorSequence(t *testing.T) {
	c := NewController(100)

	wantCursor := []int{30, 60, 90, 0}
	wantRange := []field.Range{{Lo: 0, Hi: 30}, {Lo: 30, Hi: 60}, {Lo: 60, Hi: 90}, {Lo: 90, Hi: 100}}

	for i := range wantCursor {
		r := c.Emit(30)
		if r != wantRange[i] {
			t.Errorf("emit %d: range = %v, want %v", i+1, r, wantRange[i])
		}
		if c.Cursor() != wantCursor[i] {
			t.Errorf("emit %d: cursor = %d, want %d", i+1, c.Cursor(), wantCursor[i])
		}
	}
	if c.Wraps() != 1 {
		t.Errorf("wraps = %d, want 1", c.Wraps())
	}
}

func TestControllerEdgeCases(t *testing.T) {
	tests := []struct {
		name       string
		n          int
		counts     []int
		wantCursor int
		wantLast   field.Range
		wantTotal  int64
	}{
		{"zero count", 10, []int{0}, 0, field.Range{Lo: 0, Hi: 0}, 0},
		{"negative count", 10, []int{-5}, 0, field.Range{Lo: 0, Hi: 0}, 0},
		{"exact fill resets", 16, []int{16}, 0, field.Range{Lo: 0, Hi: 16}, 16},
		{"oversized count clamps", 8, []int{50}, 0, field.Range{Lo: 0, Hi: 8}, 8},
		{"exact multiple", 100, []int{25, 25, 25, 25}, 0, field.Range{Lo: 75, Hi: 100}, 100},
		{"second lap", 10, []int{6, 6, 6}, 6, field.Range{Lo: 0, Hi: 6}, 16},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewController(tt.n)
			var last field.Range
			for _, n := range tt.counts {
				last = c.Emit(n)
			}
			if c.Cursor() != tt.wantCursor {
				t.Errorf("cursor = %d, want %d", c.Cursor(), tt.wantCursor)
			}
			if last != tt.wantLast {
				t.Errorf("last range = %v, want %v", last, tt.wantLast)
			}
			if c.Emitted() != tt.wantTotal {
				t.Errorf("emitted = %d, want %d", c.Emitted(), tt.wantTotal)
			}
			if c.Cursor() < 0 || c.Cursor() >= tt.n {
				t.Errorf("cursor %d left [0, %d)", c.Cursor(), tt.n)
			}
		})
	}
}

func TestControllerProgress(t *testing.T) {
	c := NewController(100)
	if c.Progress() != 0 {
		t.Errorf("initial progress = %v", c.Progress())
	}
	c.Emit(25)
	if math.Abs(c.Progress()-0.25) > 1e-9 {
		t.Errorf("progress = %v, want 0.25", c.Progress())
	}
	for i := 0; i < 10; i++ {
		c.Emit(25)
	}
	if c.Progress() != 1 {
		t.Errorf("progress after several laps = %v, want 1", c.Progress())
	}

	c.Reset()
	if c.Progress() != 0 || c.Cursor() != 0 || c.Wraps() != 0 {
		t.Error("Reset did not clear state")
	}
}

func TestParseFlip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	never, err := ParseFlip("never", rng)
	if err != nil || never.Flip() {
		t.Errorf("never policy: %v %v", never, err)
	}
	always, err := ParseFlip("always", rng)
	if err != nil || !always.Flip() {
		t.Errorf("always policy: %v %v", always, err)
	}
	if _, err := ParseFlip("maybe", rng); err == nil {
		t.Error("expected error for unknown policy")
	}

	random, _ := ParseFlip("random", rng)
	flips := 0
	for i := 0; i < 2000; i++ {
		if random.Flip() {
			flips++
		}
	}
	if flips < 800 || flips > 1200 {
		t.Errorf("random policy flipped %d of 2000", flips)
	}
}

func TestRegistryImpulse(t *testing.T) {
	r := NewRegistry()
	idx := r.Add(sim.V3(1, 0, 0), sim.V3(0, 0, 0))
	if idx != 0 || r.Len() != 1 {
		t.Fatalf("Add returned %d, len %d", idx, r.Len())
	}

	dir, at, err := r.Impulse(0, 100)
	if err != nil {
		t.Fatal(err)
	}
	if dir != sim.V3(100, 0, 0) || at != sim.V3(1, 0, 0) {
		t.Errorf("impulse = %v at %v, want (100,0,0) at (1,0,0)", dir, at)
	}

	if err := r.Commit(0); err != nil {
		t.Fatal(err)
	}
	dir, _, _ = r.Impulse(0, 100)
	if dir != (sim.Vec3{}) {
		t.Errorf("impulse after commit = %v, want zero", dir)
	}

	if err := r.Move(0, sim.V3(1, 2, 0)); err != nil {
		t.Fatal(err)
	}
	dir, at, _ = r.Impulse(0, 1)
	if dir != sim.V3(0, 2, 0) || at != sim.V3(1, 2, 0) {
		t.Errorf("impulse after move = %v at %v", dir, at)
	}
}

func TestRegistryUnknownEmitter(t *testing.T) {
	r := NewRegistry()
	r.Add(sim.Vec3{}, sim.Vec3{})
	for _, idx := range []int{-1, 1, 5} {
		if err := r.Move(idx, sim.Vec3{}); !errors.Is(err, ErrUnknownEmitter) {
			t.Errorf("Move(%d) error = %v", idx, err)
		}
		if _, _, err := r.Impulse(idx, 1); !errors.Is(err, ErrUnknownEmitter) {
			t.Errorf("Impulse(%d) error = %v", idx, err)
		}
	}
}

func TestRegistryPositions(t *testing.T) {
	r := NewRegistry()
	r.Add(sim.V3(1, 0, 0), sim.Vec3{})
	r.Add(sim.V3(0, 1, 0), sim.Vec3{})
	r.Add(sim.V3(0, 0, 1), sim.Vec3{})

	got := r.Positions()
	if len(got) != 3 {
		t.Fatalf("positions len = %d, want 3", len(got))
	}
	seen := map[sim.Vec3]bool{}
	for _, p := range got {
		seen[p] = true
	}
	for _, want := range []sim.Vec3{sim.V3(1, 0, 0), sim.V3(0, 1, 0), sim.V3(0, 0, 1)} {
		if !seen[want] {
			t.Errorf("missing emitter at %v", want)
		}
	}
}

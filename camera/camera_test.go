package camera

import (
	"math"
	"testing"

	"github.com/pthm-cable/pingpong/sim"
)

func approx(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-4
}

func approxVec(a, b sim.Vec3) bool {
	return approx(a.X, b.X) && approx(a.Y, b.Y) && approx(a.Z, b.Z)
}

func TestNew(t *testing.T) {
	cam := New(800, 600, 5)

	if cam.Distance != 5 {
		t.Errorf("expected distance 5, got %f", cam.Distance)
	}
	pos := cam.Position()
	want := sim.V3(0, -5*float32(math.Cos(0.35)), 5*float32(math.Sin(0.35)))
	if !approxVec(pos, want) {
		t.Errorf("expected eye %v, got %v", want, pos)
	}
}

func TestPosition(t *testing.T) {
	cam := New(800, 600, 5)
	cam.Yaw, cam.Pitch = 0, 0
	if p := cam.Position(); !approxVec(p, sim.V3(5, 0, 0)) {
		t.Errorf("expected (5,0,0), got %v", p)
	}

	cam.Target = sim.V3(1, 2, 3)
	if p := cam.Position(); !approxVec(p, sim.V3(6, 2, 3)) {
		t.Errorf("position ignores target: %v", p)
	}
}

func TestOrbitClampsPitch(t *testing.T) {
	cam := New(800, 600, 5)
	cam.Orbit(0, 1e6)
	if cam.Pitch != maxPitch {
		t.Errorf("expected pitch clamped to %f, got %f", maxPitch, cam.Pitch)
	}
	cam.Orbit(0, -1e6)
	if cam.Pitch != -maxPitch {
		t.Errorf("expected pitch clamped to %f, got %f", -maxPitch, cam.Pitch)
	}

	yaw := cam.Yaw
	cam.Orbit(100, 0)
	if approx(cam.Yaw, yaw) {
		t.Error("horizontal drag did not change yaw")
	}
	if cam.Yaw < -math.Pi || cam.Yaw >= math.Pi {
		t.Errorf("yaw %f outside [-pi, pi)", cam.Yaw)
	}
}

func TestZoom(t *testing.T) {
	cam := New(800, 600, 5)

	cam.Zoom(1)
	if !approx(cam.Distance, 4.5) {
		t.Errorf("expected distance 4.5 after one step in, got %f", cam.Distance)
	}
	cam.Zoom(-1)
	if !approx(cam.Distance, 5) {
		t.Errorf("expected distance 5 after one step out, got %f", cam.Distance)
	}

	cam.SetDistance(1000)
	if cam.Distance != cam.MaxDistance {
		t.Errorf("expected max distance, got %f", cam.Distance)
	}
	cam.ZoomBy(0)
	if cam.Distance != cam.MinDistance {
		t.Errorf("expected min distance, got %f", cam.Distance)
	}
}

func TestRay(t *testing.T) {
	cam := New(800, 600, 5)
	forward, right, _ := cam.Basis()

	origin, dir := cam.Ray(400, 300)
	if !approxVec(origin, cam.Position()) {
		t.Errorf("ray origin %v, want eye %v", origin, cam.Position())
	}
	if !approxVec(dir, forward) {
		t.Errorf("center ray %v, want forward %v", dir, forward)
	}

	_, dir = cam.Ray(700, 300)
	if dir.Dot(right) <= 0 {
		t.Errorf("ray right of center points left: %v", dir)
	}
	if !approx(dir.Len(), 1) {
		t.Errorf("ray not normalized: %f", dir.Len())
	}
}

func TestPointerOnPlane(t *testing.T) {
	tests := []struct {
		name   string
		origin sim.Vec3
		dir    sim.Vec3
		hit    sim.Vec3
		ok     bool
	}{
		{"straight down", sim.V3(1, 2, 5), sim.V3(0, 0, -1), sim.V3(1, 2, 0), true},
		{"slanted", sim.V3(0, 0, 2), sim.V3(1, 0, -1), sim.V3(2, 0, 0), true},
		{"parallel", sim.V3(0, 0, 2), sim.V3(1, 0, 0), sim.Vec3{}, false},
		{"away", sim.V3(0, 0, 2), sim.V3(0, 0, 1), sim.Vec3{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit, ok := PointerOnPlane(tt.origin, tt.dir, 0)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && !approxVec(hit, tt.hit) {
				t.Errorf("hit %v, want %v", hit, tt.hit)
			}
		})
	}
}

func TestCenterRayHitsTarget(t *testing.T) {
	cam := New(1280, 800, 4)
	origin, dir := cam.Ray(640, 400)
	hit, ok := PointerOnPlane(origin, dir, 0)
	if !ok {
		t.Fatal("center ray missed the ground plane")
	}
	if !approxVec(hit, cam.Target) {
		t.Errorf("center ray hit %v, want target %v", hit, cam.Target)
	}
}

func TestWrapAngle(t *testing.T) {
	if got := wrapAngle(2*math.Pi + 0.5); !approx(got, 0.5) {
		t.Errorf("wrapAngle(2pi+0.5) = %f", got)
	}
	if got := wrapAngle(-0.5); !approx(got, -0.5) {
		t.Errorf("wrapAngle(-0.5) = %f", got)
	}
}

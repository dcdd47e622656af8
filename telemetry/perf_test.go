package telemetry

import (
	"math"
	"testing"
	"time"
)

// fakeClock drives a PerfCollector without sleeping.
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestCollector(window int) (*PerfCollector, *fakeClock) {
	clk := &fakeClock{t: time.Unix(1000, 0)}
	pc := NewPerfCollector(window)
	pc.now = clk.now
	return pc, clk
}

func TestPerfCollector_PhaseBreakdown(t *testing.T) {
	pc, clk := newTestCollector(10)

	for i := 0; i < 4; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseStep)
		clk.advance(3 * time.Millisecond)
		pc.StartPhase(PhaseEmission)
		clk.advance(time.Millisecond)
		pc.EndTick()
	}

	s := pc.Stats()
	if s.Ticks != 4 {
		t.Errorf("ticks = %d, want 4", s.Ticks)
	}
	if s.AvgTickDuration != 4*time.Millisecond {
		t.Errorf("avg tick = %v, want 4ms", s.AvgTickDuration)
	}
	if s.PhaseAvg[PhaseStep] != 3*time.Millisecond || s.PhaseAvg[PhaseEmission] != time.Millisecond {
		t.Errorf("phase averages = %v", s.PhaseAvg)
	}
	if math.Abs(s.PhasePct[PhaseStep]-75) > 1e-9 || math.Abs(s.PhasePct[PhaseEmission]-25) > 1e-9 {
		t.Errorf("phase shares = %v", s.PhasePct)
	}
	if s.PhaseAvg[PhaseSwap] != 0 {
		t.Errorf("untouched phase timed: %v", s.PhaseAvg[PhaseSwap])
	}
	if math.Abs(s.TicksPerSecond-250) > 1e-9 {
		t.Errorf("ticks/s = %g, want 250", s.TicksPerSecond)
	}
}

func TestPerfCollector_RollingWindow(t *testing.T) {
	pc, clk := newTestCollector(3)

	for i := 1; i <= 5; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseStep)
		clk.advance(time.Duration(i) * time.Millisecond)
		pc.EndTick()
	}

	// Only the last three ticks (3, 4, 5ms) remain
	s := pc.Stats()
	if s.Ticks != 3 {
		t.Errorf("ticks = %d, want 3", s.Ticks)
	}
	if s.AvgTickDuration != 4*time.Millisecond {
		t.Errorf("avg tick = %v, want 4ms", s.AvgTickDuration)
	}
	if s.MaxTickDuration != 5*time.Millisecond {
		t.Errorf("max tick = %v, want 5ms", s.MaxTickDuration)
	}
	if pc.LastTickDuration() != 5*time.Millisecond {
		t.Errorf("last tick = %v, want 5ms", pc.LastTickDuration())
	}
}

func TestPerfCollector_P95(t *testing.T) {
	pc, clk := newTestCollector(20)

	for i := 20; i >= 1; i-- {
		pc.StartTick()
		clk.advance(time.Duration(i) * time.Millisecond)
		pc.EndTick()
	}

	s := pc.Stats()
	if s.P95TickDuration < 18*time.Millisecond || s.P95TickDuration > s.MaxTickDuration {
		t.Errorf("p95 = %v, max = %v", s.P95TickDuration, s.MaxTickDuration)
	}
	if s.MaxTickDuration != 20*time.Millisecond {
		t.Errorf("max = %v, want 20ms", s.MaxTickDuration)
	}
}

func TestPerfCollector_Empty(t *testing.T) {
	pc, clk := newTestCollector(10)
	if pc.LastTickDuration() != 0 {
		t.Error("expected zero before any tick")
	}

	s := pc.Stats()
	if s.Ticks != 0 || s.AvgTickDuration != 0 || s.TicksPerSecond != 0 {
		t.Errorf("empty collector stats = %+v", s)
	}

	// Frame timing does not need ticks: paused engines still record frames
	pc.RecordFrame()
	clk.advance(16 * time.Millisecond)
	pc.RecordFrame()

	s = pc.Stats()
	if s.FrameDuration != 16*time.Millisecond {
		t.Errorf("frame = %v, want 16ms", s.FrameDuration)
	}
	if math.Abs(s.FPS-62.5) > 1e-9 {
		t.Errorf("fps = %g, want 62.5", s.FPS)
	}
}

func TestPhaseString(t *testing.T) {
	want := []string{"step", "emission", "swap", "display", "telemetry"}
	for i, name := range want {
		if got := Phase(i).String(); got != name {
			t.Errorf("Phase(%d) = %q, want %q", i, got, name)
		}
	}
	if Phase(99).String() != "unknown" {
		t.Error("out-of-range phase should be unknown")
	}
}

func TestPerfStats_ToCSV(t *testing.T) {
	var stats PerfStats
	stats.AvgTickDuration = 1500 * time.Microsecond
	stats.PhasePct[PhaseStep] = 80
	stats.PhasePct[PhaseEmission] = 15
	stats.PhasePct[PhaseDisplay] = 5

	row := stats.ToCSV(120)
	if row.WindowEnd != 120 || row.AvgTickUS != 1500 {
		t.Errorf("unexpected row header fields: %+v", row)
	}
	if row.StepPct != 80 || row.EmissionPct != 15 || row.DisplayPct != 5 || row.SwapPct != 0 {
		t.Errorf("unexpected phase percentages: %+v", row)
	}
}

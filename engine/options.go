package engine

import (
	"log/slog"

	"github.com/pthm-cable/pingpong/emission"
	"github.com/pthm-cable/pingpong/field"
	"github.com/pthm-cable/pingpong/telemetry"
)

// Frame is what the display step receives after each simulated tick.
// The views are read-only and only valid until the next tick.
type Frame struct {
	Tick       int64
	Positions  field.View
	Velocities field.View
	Progress   float64
	Visible    bool
}

// Display consumes the current state buffer. Present runs inside the tick
// and must not call back into the engine.
type Display interface {
	Present(f Frame)
}

// StatsFunc receives each completed stats window.
type StatsFunc func(stats telemetry.FieldStats, perf telemetry.PerfStats)

// Options configures an Engine. Zero values select defaults.
type Options struct {
	Scheduler Scheduler        // default: NewManualScheduler()
	Display   Display          // optional
	Allocator *field.Allocator // default: budget from field.max_texels
	Flipper   emission.Flipper // default: policy named by emission.flip
	Seed      int64            // RNG seed for flips and jitter
	ID        string           // default: a random UUID
	Logger    *slog.Logger     // default: slog.Default()
	Metrics   *telemetry.Metrics
	OnStats   StatsFunc
}

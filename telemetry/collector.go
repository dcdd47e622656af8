package telemetry

import "github.com/pthm-cable/pingpong/field"

// Collector accumulates emission events within tick windows and produces FieldStats.
type Collector struct {
	windowTicks     int64
	windowStartTick int64

	// Event counters for current window
	emissions     int
	emittedWindow int
	triggered     int
	wraps         int
	idleFrames    int
}

// NewCollector creates a collector flushing every windowTicks ticks.
func NewCollector(windowTicks int) *Collector {
	if windowTicks < 1 {
		windowTicks = 1
	}
	return &Collector{windowTicks: int64(windowTicks)}
}

// RecordEmission records one emitted slice of n particles.
// triggered marks slices requested explicitly rather than per tick.
func (c *Collector) RecordEmission(n int, triggered bool) {
	c.emissions++
	c.emittedWindow += n
	if triggered {
		c.triggered++
	}
}

// RecordWrap records the emission cursor resetting to 0.
func (c *Collector) RecordWrap() {
	c.wraps++
}

// RecordIdleFrame records a frame skipped while paused.
func (c *Collector) RecordIdleFrame() {
	c.idleFrames++
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int64) bool {
	return currentTick-c.windowStartTick >= c.windowTicks
}

// EmissionState is the cursor state handed to Flush.
type EmissionState struct {
	Progress float64
	Emitted  int64
	Cursor   int
}

// Flush measures the field, attaches the window's events and resets the
// counters for the next window.
func (c *Collector) Flush(currentTick int64, positions, velocities, origin field.View, snap EmissionState) FieldStats {
	stats := ComputeFieldStats(positions, velocities, origin)

	stats.WindowStartTick = c.windowStartTick
	stats.WindowEndTick = currentTick
	stats.Progress = snap.Progress
	stats.Emitted = snap.Emitted
	stats.Cursor = snap.Cursor
	stats.Emissions = c.emissions
	stats.EmittedWindow = c.emittedWindow
	stats.Triggered = c.triggered
	stats.Wraps = c.wraps
	stats.IdleFrames = c.idleFrames

	// Reset for next window
	c.windowStartTick = currentTick
	c.emissions = 0
	c.emittedWindow = 0
	c.triggered = 0
	c.wraps = 0
	c.idleFrames = 0

	return stats
}

// WindowTicks returns the number of ticks per window.
func (c *Collector) WindowTicks() int64 {
	return c.windowTicks
}

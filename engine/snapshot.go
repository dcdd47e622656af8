package engine

import (
	"github.com/pthm-cable/pingpong/telemetry"
)

// Snapshot copies the current position and velocity buffers together with
// the emission counters. It must not be called from a Display or StatsFunc.
func (e *Engine) Snapshot() (*telemetry.Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == Destroyed {
		return nil, e.reject("snapshot")
	}

	n := e.enc.N() * 4
	s := &telemetry.Snapshot{
		Version:    telemetry.SnapshotVersion,
		RNGSeed:    e.seed,
		EngineID:   e.id,
		Size:       e.enc.Size(),
		Tick:       e.tick,
		Cursor:     e.cursor.Cursor(),
		Emitted:    e.cursor.Emitted(),
		Progress:   e.cursor.Progress(),
		Positions:  make([]float32, n),
		Velocities: make([]float32, n),
	}
	copy(s.Positions, e.pos.Current().Data())
	copy(s.Velocities, e.vel.Current().Data())
	return s, nil
}

package engine

import (
	"github.com/pthm-cable/pingpong/field"
	"github.com/pthm-cable/pingpong/sim"
	"github.com/pthm-cable/pingpong/telemetry"
)

// scheduleLocked queues the next frame under a fresh generation. A callback
// from an older generation is ignored when it fires.
func (e *Engine) scheduleLocked() {
	e.gen++
	gen := e.gen
	e.token = e.sched.Schedule(func() { e.frame(gen) })
}

// frame is one scheduled callback. Paused frames only reschedule.
func (e *Engine) frame(gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == Destroyed || gen != e.gen {
		return
	}

	e.perf.RecordFrame()
	switch e.state {
	case Paused:
		e.collector.RecordIdleFrame()
	case Running:
		if err := e.tickLocked(); err != nil {
			e.logger.Error("tick failed, pausing", "tick", e.tick, "error", err)
			e.setState(Paused)
		}
	}
	e.scheduleLocked()
}

// tickLocked advances the simulation by one tick:
// STEP over the whole field into the previous buffers, emissions into the
// same buffers, swap, display, telemetry.
func (e *Engine) tickLocked() error {
	e.perf.StartTick()

	e.perf.StartPhase(telemetry.PhaseStep)
	b := sim.Buffers{
		PosIn:  e.pos.Current(),
		VelIn:  e.vel.Current(),
		PosOut: e.pos.Previous(),
		VelOut: e.vel.Previous(),
		Origin: e.origin,
		Target: e.target,
	}
	if err := e.pass.Run(sim.Step{}, b, e.params, e.pointer.Load(), field.Full(e.enc.N())); err != nil {
		return err
	}

	e.perf.StartPhase(telemetry.PhaseEmission)
	if err := e.emitLocked(b); err != nil {
		return err
	}

	e.perf.StartPhase(telemetry.PhaseSwap)
	e.pos.Swap()
	e.vel.Swap()
	e.tick++

	e.perf.StartPhase(telemetry.PhaseDisplay)
	if e.display != nil {
		e.display.Present(Frame{
			Tick:       e.tick,
			Positions:  field.NewView(e.pos.Current()),
			Velocities: field.NewView(e.vel.Current()),
			Progress:   e.cursor.Progress(),
			Visible:    e.cfg.Screen.Visible,
		})
	}

	e.perf.StartPhase(telemetry.PhaseTelemetry)
	e.flushStatsLocked()

	e.perf.EndTick()
	e.metrics.ObserveTick(e.perf.LastTickDuration())
	return nil
}

// emitLocked runs the per-tick emission of every emitter, then the queued
// triggers, each bootstrapping the next slice of the field.
func (e *Engine) emitLocked(b sim.Buffers) error {
	count := e.cfg.Emission.CountPerTick
	if count > 0 {
		for i := 0; i < e.emitters.Len(); i++ {
			if err := e.emitOneLocked(b, i, count, false); err != nil {
				return err
			}
		}
	}

	pending := e.pending
	e.pending = nil
	for _, t := range pending {
		if err := e.emitOneLocked(b, t.emitter, t.count, true); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) emitOneLocked(b sim.Buffers, index, count int, triggered bool) error {
	dir, at, err := e.emitters.Impulse(index, float32(e.cfg.Emission.ImpulseScale))
	if err != nil {
		return err
	}
	if e.flipper.Flip() {
		dir = dir.FlipX()
		at = at.FlipX()
	}

	wraps := e.cursor.Wraps()
	r := e.cursor.Emit(count)
	if e.cursor.Wraps() != wraps {
		e.collector.RecordWrap()
	}

	e.salt = e.rng.Float32()
	directions := sim.BootstrapDirections{
		Source:     dir,
		Randomness: float32(e.cfg.Emission.Randomness),
		Salt:       e.salt,
	}
	if err := e.pass.Run(directions, b, e.params, nil, r); err != nil {
		return err
	}
	if err := e.pass.Run(sim.BootstrapPositions{Source: at}, b, e.params, nil, r); err != nil {
		return err
	}

	e.collector.RecordEmission(r.Len(), triggered)
	return e.emitters.Commit(index)
}

// flushStatsLocked closes a stats window when one is due.
func (e *Engine) flushStatsLocked() {
	if !e.collector.ShouldFlush(e.tick) {
		return
	}
	stats := e.collector.Flush(e.tick,
		field.NewView(e.pos.Current()),
		field.NewView(e.vel.Current()),
		field.NewView(e.origin),
		telemetry.EmissionState{
			Progress: e.cursor.Progress(),
			Emitted:  e.cursor.Emitted(),
			Cursor:   e.cursor.Cursor(),
		})
	e.metrics.Observe(stats)
	if e.onStats != nil {
		e.onStats(stats, e.perf.Stats())
	}
}

package game

import (
	"log/slog"
	"math"
	"time"

	"github.com/pthm-cable/pingpong/config"
	"github.com/pthm-cable/pingpong/sim"
)

// OrbitPosition returns where an orbiting emitter is t seconds into the run.
// The orbit is a circle about z through the configured position, so t = 0
// is the configured position itself.
func OrbitPosition(ec config.EmitterConfig, t float64) sim.Vec3 {
	x, y, z := ec.Position[0], ec.Position[1], ec.Position[2]
	if ec.OrbitRadius <= 0 || ec.OrbitSpeed == 0 {
		return sim.V3(float32(x), float32(y), float32(z))
	}
	phase := math.Atan2(y, x)
	a := phase + ec.OrbitSpeed*t
	return sim.V3(
		float32(ec.OrbitRadius*math.Cos(a)),
		float32(ec.OrbitRadius*math.Sin(a)),
		float32(z),
	)
}

// moveEmitters advances every orbiting emitter to the current wall time.
func (g *Game) moveEmitters() {
	t := time.Since(g.started).Seconds()
	for i, ec := range g.cfg.Emitters {
		if ec.OrbitRadius <= 0 {
			continue
		}
		if err := g.engine.MoveEmitter(i, OrbitPosition(ec, t)); err != nil {
			slog.Debug("emitter not moved", "index", i, "error", err)
			return
		}
	}
}

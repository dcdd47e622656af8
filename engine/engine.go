// Package engine drives a ping-pong particle field through its lifecycle:
// construction, origin loading, bootstrap, ticking, pausing and teardown.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/pthm-cable/pingpong/config"
	"github.com/pthm-cable/pingpong/emission"
	"github.com/pthm-cable/pingpong/field"
	"github.com/pthm-cable/pingpong/sim"
	"github.com/pthm-cable/pingpong/telemetry"
)

// trigger is an emission requested through TriggerEmission.
type trigger struct {
	emitter int
	count   int
}

// Engine owns one particle field. All methods are safe for concurrent use;
// ticks run one at a time on whatever goroutine the Scheduler uses.
type Engine struct {
	mu     sync.Mutex
	id     string
	logger *slog.Logger

	cfg    *config.Config
	params sim.Params
	state  State
	loaded bool
	tick   int64

	enc      field.Encoder
	alloc    *field.Allocator
	pos, vel *field.Slot
	origin   *field.Texture
	target   *field.Texture // nil unless origin.target_shape is set

	pass     *sim.Pass
	cursor   *emission.Controller
	emitters *emission.Registry
	flipper  emission.Flipper
	rng      *rand.Rand
	seed     int64
	salt     float32
	pending  []trigger
	pointer  atomic.Pointer[sim.Vec3]

	sched   Scheduler
	token   Token  // cancels the queued frame
	gen     uint64 // generation of the queued frame
	display Display

	perf      *telemetry.PerfCollector
	collector *telemetry.Collector
	metrics   *telemetry.Metrics
	onStats   StatsFunc
}

// New validates cfg, allocates every buffer and registers the configured
// emitters. The engine starts in Loading and waits for Load. On error
// nothing stays allocated.
func New(cfg *config.Config, opts Options) (*Engine, error) {
	if cfg == nil {
		return nil, configError("nil config")
	}
	cfg = cfg.Clone()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	enc, err := field.NewEncoder(cfg.Field.Size)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	flipper := opts.Flipper
	if flipper == nil {
		if flipper, err = emission.ParseFlip(cfg.Emission.Flip, rng); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
		}
	}

	alloc := opts.Allocator
	if alloc == nil {
		alloc = field.NewAllocator(cfg.Field.MaxTexels)
	}
	textures, err := allocTextures(alloc, cfg.Field.Size, cfg.Origin.TargetShape != "")
	if err != nil {
		return nil, err
	}

	id := opts.ID
	if id == "" {
		id = uuid.NewString()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	sched := opts.Scheduler
	if sched == nil {
		sched = NewManualScheduler()
	}

	e := &Engine{
		id:        id,
		logger:    logger.With("engine_id", id),
		cfg:       cfg,
		params:    sim.ParamsFromConfig(cfg),
		enc:       enc,
		alloc:     alloc,
		pos:       field.NewSlot(textures[0], textures[1]),
		vel:       field.NewSlot(textures[2], textures[3]),
		origin:    textures[4],
		pass:      sim.NewPass(cfg.Field.Workers, sim.NewJitter(opts.Seed)),
		cursor:    emission.NewController(enc.N()),
		emitters:  emission.NewRegistry(),
		flipper:   flipper,
		rng:       rng,
		seed:      opts.Seed,
		sched:     sched,
		display:   opts.Display,
		perf:      telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		collector: telemetry.NewCollector(cfg.Telemetry.StatsWindow),
		metrics:   opts.Metrics,
		onStats:   opts.OnStats,
	}
	if len(textures) > 5 {
		e.target = textures[5]
	}
	for _, em := range cfg.Emitters {
		p := sim.V3(float32(em.Position[0]), float32(em.Position[1]), float32(em.Position[2]))
		e.emitters.Add(p, p)
	}

	e.setState(Loading)
	return e, nil
}

// allocTextures allocates position A/B, velocity A/B, origin and optionally
// the morph target, releasing everything if any allocation fails.
func allocTextures(alloc *field.Allocator, size int, withTarget bool) ([]*field.Texture, error) {
	count := 5
	if withTarget {
		count = 6
	}
	textures := make([]*field.Texture, 0, count)
	for i := 0; i < count; i++ {
		tex, err := alloc.Alloc(size)
		if err != nil {
			for _, t := range textures {
				alloc.Release(t)
			}
			return nil, fmt.Errorf("allocating field buffers: %w", err)
		}
		textures = append(textures, tex)
	}
	return textures, nil
}

// setState records a transition. Caller holds mu (or owns e exclusively).
func (e *Engine) setState(to State) {
	e.logger.Info("engine state", "from", e.state.String(), "to", to.String())
	e.state = to
}

func (e *Engine) reject(op string) error {
	err := &TransitionError{Op: op, From: e.state}
	e.logger.Warn("rejected lifecycle call", "op", op, "state", e.state.String())
	return err
}

// Load fetches the origin (and morph target, when configured) and copies
// them into the engine. Data of the wrong length is a configuration error.
// The sources run without holding the engine lock.
func (e *Engine) Load(ctx context.Context, origin, target OriginSource) error {
	e.mu.Lock()
	if e.state != Loading {
		defer e.mu.Unlock()
		return e.reject("load")
	}
	size := e.enc.Size()
	wantTarget := e.target != nil
	e.mu.Unlock()

	if origin == nil {
		return configError("origin source is required")
	}
	if wantTarget && target == nil {
		return configError("origin.target_shape is set but no target source was given")
	}
	if !wantTarget && target != nil {
		return configError("target source given but origin.target_shape is empty")
	}

	originData, err := origin.Origin(ctx, size)
	if err != nil {
		return fmt.Errorf("loading origin: %w", err)
	}
	var targetData []float32
	if target != nil {
		if targetData, err = target.Origin(ctx, size); err != nil {
			return fmt.Errorf("loading morph target: %w", err)
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != Loading {
		return e.reject("load")
	}
	if err := e.origin.CopyFrom(originData); err != nil {
		return fmt.Errorf("%w: origin: %w", ErrConfiguration, err)
	}
	if e.target != nil {
		if err := e.target.CopyFrom(targetData); err != nil {
			return fmt.Errorf("%w: morph target: %w", ErrConfiguration, err)
		}
	}
	e.loaded = true
	e.logger.Info("origin loaded", "size", size, "particles", e.enc.N(), "morph_target", e.target != nil)
	return nil
}

// Start seeds the whole field (zero velocity, every particle parked) and
// schedules the first tick.
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != Loading {
		return e.reject("start")
	}
	if !e.loaded {
		return fmt.Errorf("%w: start before the origin was loaded", ErrInvalidTransition)
	}
	if err := e.parkLocked(); err != nil {
		return err
	}
	e.setState(Running)
	e.scheduleLocked()
	return nil
}

// parkLocked writes the bootstrap state over the entire field into the
// current buffers without swapping.
func (e *Engine) parkLocked() error {
	b := sim.Buffers{
		PosOut: e.pos.Current(),
		VelOut: e.vel.Current(),
		Origin: e.origin,
	}
	all := field.Full(e.enc.N())
	park := sim.FromArray(e.cfg.Derived.Park32)
	if err := e.pass.Run(sim.BootstrapDirections{}, b, e.params, nil, all); err != nil {
		return err
	}
	return e.pass.Run(sim.BootstrapPositions{Source: park}, b, e.params, nil, all)
}

// Pause stops simulation work while frames keep being scheduled.
// Pausing a paused engine is a no-op.
func (e *Engine) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch e.state {
	case Paused:
		return nil
	case Running:
		e.setState(Paused)
		return nil
	}
	return e.reject("pause")
}

// Resume continues a paused engine. It is rejected in any other state.
func (e *Engine) Resume() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != Paused {
		return e.reject("resume")
	}
	e.setState(Running)
	return nil
}

// Destroy cancels the scheduled tick, then releases every buffer.
// Calling it again is a no-op.
func (e *Engine) Destroy() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == Destroyed {
		return nil
	}

	if e.token != 0 {
		e.sched.Cancel(e.token)
		e.token = 0
	}
	e.gen++
	e.pass.Close()

	e.pos.Release(e.alloc)
	e.vel.Release(e.alloc)
	e.alloc.Release(e.origin)
	e.alloc.Release(e.target)
	e.pending = nil

	e.setState(Destroyed)
	return nil
}

// SetConfig applies a partial update of the tunable parameters. An invalid
// result is rejected and the previous configuration stays in force.
func (e *Engine) SetConfig(p config.Patch) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == Destroyed {
		return e.reject("set config")
	}

	next := e.cfg.Clone()
	next.Apply(p)
	if err := next.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	if p.Flip != nil && *p.Flip != e.cfg.Emission.Flip {
		flipper, err := emission.ParseFlip(*p.Flip, e.rng)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrConfiguration, err)
		}
		e.flipper = flipper
	}

	e.cfg = next
	e.params = sim.ParamsFromConfig(next)
	e.logger.Debug("config patched", "damping", next.Simulation.Damping, "count_per_tick", next.Emission.CountPerTick)
	return nil
}

// TriggerEmission queues count particles from the given emitter for the
// next simulated tick, on top of the per-tick emission.
func (e *Engine) TriggerEmission(emitterIndex, count int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == Destroyed {
		return e.reject("trigger emission")
	}
	if emitterIndex < 0 || emitterIndex >= e.emitters.Len() {
		return fmt.Errorf("%w: %w: index %d of %d", ErrConfiguration, emission.ErrUnknownEmitter, emitterIndex, e.emitters.Len())
	}
	if count <= 0 {
		return configError("emission count must be positive, got %d", count)
	}
	e.pending = append(e.pending, trigger{emitter: emitterIndex, count: count})
	return nil
}

// ResetEmission parks every particle again and rewinds the emission cursor.
func (e *Engine) ResetEmission() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != Running && e.state != Paused {
		return e.reject("reset emission")
	}
	e.cursor.Reset()
	e.pending = nil
	if err := e.parkLocked(); err != nil {
		return err
	}
	e.logger.Info("emission reset")
	return nil
}

// SetPointer sets the repel position read by the next STEP. nil disables
// repulsion. Safe to call from input callbacks at any time.
func (e *Engine) SetPointer(p *sim.Vec3) {
	if p == nil {
		e.pointer.Store(nil)
		return
	}
	v := *p
	e.pointer.Store(&v)
}

// AddEmitter registers an emitter and returns its index.
func (e *Engine) AddEmitter(pos, prev sim.Vec3) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == Destroyed {
		return 0, e.reject("add emitter")
	}
	return e.emitters.Add(pos, prev), nil
}

// MoveEmitter updates an emitter's world position.
func (e *Engine) MoveEmitter(index int, pos sim.Vec3) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == Destroyed {
		return e.reject("move emitter")
	}
	if err := e.emitters.Move(index, pos); err != nil {
		return fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	return nil
}

// EmitterPositions returns the current position of every emitter.
func (e *Engine) EmitterPositions() []sim.Vec3 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.emitters.Positions()
}

// ID returns the engine instance id used in logs and metrics.
func (e *Engine) ID() string { return e.id }

// State returns the lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Tick returns the number of simulated ticks (paused frames excluded).
func (e *Engine) Tick() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tick
}

// Progress returns the fraction of the field emitted at least once.
func (e *Engine) Progress() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cursor.Progress()
}

// Cursor returns the start of the next emission slice.
func (e *Engine) Cursor() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cursor.Cursor()
}

// Size returns the field side.
func (e *Engine) Size() int { return e.enc.Size() }

// Config returns a copy of the effective configuration.
func (e *Engine) Config() *config.Config {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg.Clone()
}

// Current returns the position buffer written by the last tick.
func (e *Engine) Current() (field.View, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == Destroyed {
		return field.View{}, e.reject("current")
	}
	return field.NewView(e.pos.Current()), nil
}

// CurrentVelocities returns the velocity buffer written by the last tick.
func (e *Engine) CurrentVelocities() (field.View, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == Destroyed {
		return field.View{}, e.reject("current velocities")
	}
	return field.NewView(e.vel.Current()), nil
}

// PositionBuffers returns the two position textures in allocation order.
func (e *Engine) PositionBuffers() (a, b *field.Texture) {
	return e.pos.A(), e.pos.B()
}

// IsDestroyed reports whether err came from a call after Destroy.
func IsDestroyed(err error) bool { return errors.Is(err, ErrDestroyed) }

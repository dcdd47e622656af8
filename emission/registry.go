package emission

import (
	"errors"
	"fmt"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/pingpong/sim"
)

// ErrUnknownEmitter is returned for an emitter index that was never registered.
var ErrUnknownEmitter = errors.New("unknown emitter")

// Location is an emitter's current world position.
type Location struct {
	sim.Vec3
}

// Trail is an emitter's position at its last emission.
type Trail struct {
	sim.Vec3
}

// Registry stores emitters as ECS entities. Indices are assigned in
// registration order and stay stable.
type Registry struct {
	world    *ecs.World
	mapper   *ecs.Map2[Location, Trail]
	filter   *ecs.Filter2[Location, Trail]
	locMap   *ecs.Map1[Location]
	trailMap *ecs.Map1[Trail]
	entities []ecs.Entity
}

// NewRegistry creates an empty registry with its own world.
func NewRegistry() *Registry {
	world := ecs.NewWorld()
	return &Registry{
		world:    world,
		mapper:   ecs.NewMap2[Location, Trail](world),
		filter:   ecs.NewFilter2[Location, Trail](world),
		locMap:   ecs.NewMap1[Location](world),
		trailMap: ecs.NewMap1[Trail](world),
	}
}

// Add registers an emitter at pos whose last emission happened at prev,
// and returns its index.
func (r *Registry) Add(pos, prev sim.Vec3) int {
	loc := Location{pos}
	trail := Trail{prev}
	e := r.mapper.NewEntity(&loc, &trail)
	r.entities = append(r.entities, e)
	return len(r.entities) - 1
}

// Len returns the number of emitters.
func (r *Registry) Len() int { return len(r.entities) }

func (r *Registry) entity(index int) (ecs.Entity, error) {
	if index < 0 || index >= len(r.entities) {
		return ecs.Entity{}, fmt.Errorf("%w: index %d of %d", ErrUnknownEmitter, index, len(r.entities))
	}
	return r.entities[index], nil
}

// Move sets the current world position of an emitter.
func (r *Registry) Move(index int, pos sim.Vec3) error {
	e, err := r.entity(index)
	if err != nil {
		return err
	}
	r.locMap.Get(e).Vec3 = pos
	return nil
}

// Impulse returns the emitter's displacement since its last emission scaled
// by scale, and its current position.
func (r *Registry) Impulse(index int, scale float32) (dir, at sim.Vec3, err error) {
	e, err := r.entity(index)
	if err != nil {
		return sim.Vec3{}, sim.Vec3{}, err
	}
	loc, trail := r.mapper.Get(e)
	return loc.Sub(trail.Vec3).Scale(scale), loc.Vec3, nil
}

// Commit records the current position as the last emission position.
func (r *Registry) Commit(index int) error {
	e, err := r.entity(index)
	if err != nil {
		return err
	}
	r.trailMap.Get(e).Vec3 = r.locMap.Get(e).Vec3
	return nil
}

// Positions returns the current position of every emitter.
func (r *Registry) Positions() []sim.Vec3 {
	out := make([]sim.Vec3, 0, len(r.entities))
	query := r.filter.Query()
	for query.Next() {
		loc, _ := query.Get()
		out = append(out, loc.Vec3)
	}
	return out
}

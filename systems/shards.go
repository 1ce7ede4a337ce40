package systems

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/grotto/components"
	"github.com/pthm-cable/grotto/config"
)

// ShardSystem drifts and spins a group of shard entities.
// Velocities are per frame, spin is per second.
type ShardSystem struct {
	mapper *ecs.Map5[components.Position, components.Velocity, components.Rotation, components.Spin, components.Body]
	filter *ecs.Filter5[components.Position, components.Velocity, components.Rotation, components.Spin, components.Body]
	bounds Boundary
	count  int
}

// NewShardSystem creates a shard system on the given world.
func NewShardSystem(w *ecs.World, bounds Boundary) *ShardSystem {
	return &ShardSystem{
		mapper: ecs.NewMap5[components.Position, components.Velocity, components.Rotation, components.Spin, components.Body](w),
		filter: ecs.NewFilter5[components.Position, components.Velocity, components.Rotation, components.Spin, components.Body](w),
		bounds: bounds,
	}
}

// ShardsFromConfig creates a shard system and spawns the configured group.
func ShardsFromConfig(w *ecs.World, sc config.ShardConfig, rng *rand.Rand) (*ShardSystem, error) {
	if sc.Count < 0 {
		return nil, fmt.Errorf("%w: shard count must be >= 0, got %d", config.ErrInvalidConfig, sc.Count)
	}
	bounds, err := BoundaryFromConfig(sc.Bounds)
	if err != nil {
		return nil, fmt.Errorf("shard bounds: %w", err)
	}
	dist, err := VelocityFromConfig(sc.Velocity)
	if err != nil {
		return nil, fmt.Errorf("shard velocity: %w", err)
	}

	s := NewShardSystem(w, bounds)
	spawn := Volume{Min: components.Point3(sc.Spawn.Min), Max: components.Point3(sc.Spawn.Max)}
	body := components.Body{Radius: sc.Radius, Height: sc.Height}
	s.Spawn(sc.Count, spawn, dist, components.Spin(sc.Spin), body, rng)
	return s, nil
}

// Spawn adds count shards with random positions, velocities and initial rotations.
func (s *ShardSystem) Spawn(count int, spawn Volume, dist VelocityDistribution, spin components.Spin, body components.Body, rng *rand.Rand) {
	for i := 0; i < count; i++ {
		pos := components.Position(spawn.Sample(rng))
		vel := components.Velocity(dist.Sample(rng))
		rot := components.Rotation{
			X: rng.Float64() * math.Pi,
			Y: rng.Float64() * math.Pi,
			Z: rng.Float64() * math.Pi,
		}
		sp := spin
		b := body
		s.mapper.NewEntity(&pos, &vel, &rot, &sp, &b)
	}
	s.count += count
}

// Update drifts every shard, applies the boundary, and spins it by delta.
func (s *ShardSystem) Update(delta float64) int {
	events := 0
	query := s.filter.Query()
	for query.Next() {
		pos, vel, rot, spin, _ := query.Get()

		pos.X += vel.X
		pos.Y += vel.Y
		pos.Z += vel.Z
		if s.bounds.Apply((*components.Point3)(pos), (*components.Point3)(vel)) {
			events++
		}

		rot.X += spin.X * delta
		rot.Y += spin.Y * delta
		rot.Z += spin.Z * delta
	}
	return events
}

// Each calls fn for every shard.
func (s *ShardSystem) Each(fn func(pos components.Position, rot components.Rotation, body components.Body)) {
	query := s.filter.Query()
	for query.Next() {
		pos, _, rot, _, body := query.Get()
		fn(*pos, *rot, *body)
	}
}

// Count returns the number of shards.
func (s *ShardSystem) Count() int {
	return s.count
}

package systems

import (
	"fmt"
	"math/rand"

	"github.com/pthm-cable/grotto/components"
	"github.com/pthm-cable/grotto/config"
)

// VelocityKind selects how particle velocities are stored and applied.
type VelocityKind uint8

const (
	VelocityVector   VelocityKind = iota // Full 3D velocity per particle
	VelocityVertical                     // Signed speed on Y only
)

// Units selects whether velocities are per call or per second.
type Units uint8

const (
	PerFrame  Units = iota // pos += vel on every Advance
	PerSecond              // pos += vel * delta
)

// Volume is an axis-aligned spawn box.
type Volume struct {
	Min, Max components.Point3
}

// Sample returns a uniformly distributed point inside the volume.
func (v Volume) Sample(rng *rand.Rand) components.Point3 {
	return components.Point3{
		X: v.Min.X + rng.Float64()*(v.Max.X-v.Min.X),
		Y: v.Min.Y + rng.Float64()*(v.Max.Y-v.Min.Y),
		Z: v.Min.Z + rng.Float64()*(v.Max.Z-v.Min.Z),
	}
}

// VelocityDistribution describes how initial velocities are drawn.
type VelocityDistribution struct {
	Kind VelocityKind

	// Vector: Base + uniform(-Spread/2, Spread/2) per axis
	Base   components.Point3
	Spread components.Point3

	// Vertical: uniform(MinSpeed, MaxSpeed)
	MinSpeed float64
	MaxSpeed float64
}

// Sample draws one velocity.
func (d VelocityDistribution) Sample(rng *rand.Rand) components.Point3 {
	if d.Kind == VelocityVertical {
		return components.Point3{Y: d.MinSpeed + rng.Float64()*(d.MaxSpeed-d.MinSpeed)}
	}
	return components.Point3{
		X: d.Base.X + (rng.Float64()-0.5)*d.Spread.X,
		Y: d.Base.Y + (rng.Float64()-0.5)*d.Spread.Y,
		Z: d.Base.Z + (rng.Float64()-0.5)*d.Spread.Z,
	}
}

// VelocityFromConfig converts a velocity section.
func VelocityFromConfig(vc config.VelocityConfig) (VelocityDistribution, error) {
	d := VelocityDistribution{
		Base:     components.Point3(vc.Base),
		Spread:   components.Point3(vc.Spread),
		MinSpeed: vc.MinSpeed,
		MaxSpeed: vc.MaxSpeed,
	}
	switch vc.Mode {
	case config.ModeVector, "":
		d.Kind = VelocityVector
	case config.ModeVertical:
		d.Kind = VelocityVertical
		if d.MinSpeed > d.MaxSpeed {
			return d, fmt.Errorf("%w: min_speed %v exceeds max_speed %v", config.ErrInvalidConfig, d.MinSpeed, d.MaxSpeed)
		}
	default:
		return d, fmt.Errorf("%w: unknown velocity mode %q", config.ErrInvalidConfig, vc.Mode)
	}
	return d, nil
}

// ParticleField is a fixed-size set of points advected every frame.
// positions[i] always moves by velocities[i]; the slices are never resized.
type ParticleField struct {
	positions  []components.Point3
	velocities []components.Point3
	kind       VelocityKind
	units      Units
	bounds     Boundary

	// respawn re-draws X and Z of particles reset by the respawn policy.
	respawn *Volume
	rng     *rand.Rand

	lastEvents int
}

// InitParticleField spawns count particles inside spawn with velocities drawn from dist.
func InitParticleField(count int, spawn Volume, dist VelocityDistribution, bounds Boundary, rng *rand.Rand) (*ParticleField, error) {
	if count < 0 {
		return nil, fmt.Errorf("%w: particle count must be >= 0, got %d", config.ErrInvalidConfig, count)
	}

	f := &ParticleField{
		positions:  make([]components.Point3, count),
		velocities: make([]components.Point3, count),
		kind:       dist.Kind,
		bounds:     bounds,
	}
	for i := range f.positions {
		f.positions[i] = spawn.Sample(rng)
		f.velocities[i] = dist.Sample(rng)
	}
	f.SetRespawnVolume(spawn, rng)
	return f, nil
}

// NewParticleField builds a field from explicit positions and vector velocities.
// The slices are copied.
func NewParticleField(positions, velocities []components.Point3, bounds Boundary) (*ParticleField, error) {
	if len(positions) != len(velocities) {
		return nil, fmt.Errorf("%w: %d positions but %d velocities", config.ErrInvalidConfig, len(positions), len(velocities))
	}
	for i := range positions {
		if !positions[i].IsFinite() || !velocities[i].IsFinite() {
			return nil, fmt.Errorf("%w: particle %d is not finite", config.ErrInvalidConfig, i)
		}
	}

	f := &ParticleField{
		positions:  make([]components.Point3, len(positions)),
		velocities: make([]components.Point3, len(velocities)),
		kind:       VelocityVector,
		bounds:     bounds,
	}
	copy(f.positions, positions)
	copy(f.velocities, velocities)
	return f, nil
}

// NewVerticalField builds a field whose particles move only along Y at the given signed speeds.
func NewVerticalField(positions []components.Point3, speeds []float64, bounds Boundary) (*ParticleField, error) {
	velocities := make([]components.Point3, len(speeds))
	for i, s := range speeds {
		velocities[i] = components.Point3{Y: s}
	}
	f, err := NewParticleField(positions, velocities, bounds)
	if err != nil {
		return nil, err
	}
	f.kind = VelocityVertical
	return f, nil
}

// ParticleFieldFromConfig spawns a field described by a particles section.
func ParticleFieldFromConfig(pc config.ParticleConfig, rng *rand.Rand) (*ParticleField, error) {
	dist, err := VelocityFromConfig(pc.Velocity)
	if err != nil {
		return nil, fmt.Errorf("particle velocity: %w", err)
	}
	bounds, err := BoundaryFromConfig(pc.Bounds)
	if err != nil {
		return nil, fmt.Errorf("particle bounds: %w", err)
	}
	spawn := Volume{Min: components.Point3(pc.Spawn.Min), Max: components.Point3(pc.Spawn.Max)}

	f, err := InitParticleField(pc.Count, spawn, dist, bounds, rng)
	if err != nil {
		return nil, err
	}
	if pc.Units == config.UnitsSecond {
		f.units = PerSecond
	}
	return f, nil
}

// SetRespawnVolume makes the respawn policy re-draw X and Z from spawn, so
// particles with a horizontal drift return to the spawn area on every respawn.
// Without it only Y is reset.
func (f *ParticleField) SetRespawnVolume(spawn Volume, rng *rand.Rand) {
	f.respawn = &spawn
	f.rng = rng
}

// SetUnits switches between per-frame and per-second velocities.
func (f *ParticleField) SetUnits(u Units) {
	f.units = u
}

// Advance moves every particle by its velocity and applies the boundary policy.
// delta is only used for per-second velocities.
func (f *ParticleField) Advance(delta float64) {
	scale := 1.0
	if f.units == PerSecond {
		scale = delta
	}

	events := 0
	for i := range f.positions {
		p := &f.positions[i]
		v := &f.velocities[i]

		if f.kind == VelocityVertical {
			p.Y += v.Y * scale
		} else {
			p.X += v.X * scale
			p.Y += v.Y * scale
			p.Z += v.Z * scale
		}

		if f.bounds.Apply(p, v) {
			events++
			if f.bounds.Policy == PolicyRespawn && f.respawn != nil && f.rng != nil {
				s := f.respawn.Sample(f.rng)
				p.X, p.Z = s.X, s.Z
			}
		}
	}
	f.lastEvents = events
}

// Len returns the number of particles.
func (f *ParticleField) Len() int {
	return len(f.positions)
}

// Positions returns the live position buffer. Callers must not resize it.
func (f *ParticleField) Positions() []components.Point3 {
	return f.positions
}

// Velocity returns the velocity of particle i.
func (f *ParticleField) Velocity(i int) components.Point3 {
	return f.velocities[i]
}

// Bounds returns the field's boundary.
func (f *ParticleField) Bounds() Boundary {
	return f.bounds
}

// LastEvents returns how many particles hit a boundary in the last Advance.
func (f *ParticleField) LastEvents() int {
	return f.lastEvents
}

// MeanHeight returns the average Y of all particles (0 for an empty field).
func (f *ParticleField) MeanHeight() float64 {
	if len(f.positions) == 0 {
		return 0
	}
	var sum float64
	for _, p := range f.positions {
		sum += p.Y
	}
	return sum / float64(len(f.positions))
}

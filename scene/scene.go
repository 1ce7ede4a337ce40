// Package scene assembles the animated components of one preset and drives them frame by frame.
package scene

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/grotto/assets"
	"github.com/pthm-cable/grotto/camera"
	"github.com/pthm-cable/grotto/components"
	"github.com/pthm-cable/grotto/config"
	"github.com/pthm-cable/grotto/systems"
	"github.com/pthm-cable/grotto/telemetry"
)

// Style holds the static colors of a scene.
type Style struct {
	Background    colorful.Color
	Sky           systems.Gradient
	SkyRadius     float64
	Floor         systems.FloorPalette
	ParticleColor colorful.Color
	ParticleSize  float64
	ShardColor    colorful.Color
	ShardEmissive colorful.Color
}

// Scene owns every animated component of one preset.
// It is mutated only by the frame loop.
type Scene struct {
	Name  string
	Style Style

	Particles *systems.ParticleField
	Shards    *systems.ShardSystem
	Surface   *systems.SurfaceGrid
	Lights    *systems.LightRig
	Prop      *systems.PropAnimator
	PropSlot  *assets.Slot
	Camera    *camera.Camera

	world  *ecs.World
	cfg    *config.SceneConfig
	perf   *telemetry.PerfCollector
	events int

	elapsed float64
	delta   float64
	frames  uint64
}

// New builds a scene from a preset. Invalid configuration fails here rather
// than producing NaN state later.
func New(name string, sc *config.SceneConfig, cc config.CameraConfig, width, height int, rng *rand.Rand) (*Scene, error) {
	if sc == nil {
		return nil, fmt.Errorf("%w: scene %q is nil", config.ErrInvalidConfig, name)
	}
	if err := config.ValidateScene(sc); err != nil {
		return nil, fmt.Errorf("scene %s: %w", name, err)
	}

	s := &Scene{
		Name:     name,
		cfg:      sc,
		world:    ecs.NewWorld(),
		PropSlot: &assets.Slot{},
		Camera:   camera.FromConfig(cc, width, height),
	}

	var err error
	if s.Style, err = styleFromConfig(sc); err != nil {
		return nil, fmt.Errorf("scene %s: %w", name, err)
	}
	if s.Particles, err = systems.ParticleFieldFromConfig(sc.Particles, rng); err != nil {
		return nil, fmt.Errorf("scene %s: %w", name, err)
	}
	if s.Shards, err = systems.ShardsFromConfig(s.world, sc.Shards, rng); err != nil {
		return nil, fmt.Errorf("scene %s: %w", name, err)
	}
	if s.Surface, err = systems.SurfaceFromConfig(sc.Surface); err != nil {
		return nil, fmt.Errorf("scene %s: %w", name, err)
	}
	if s.Lights, err = systems.LightRigFromConfig(sc.Lights); err != nil {
		return nil, fmt.Errorf("scene %s: %w", name, err)
	}
	if s.Prop, err = systems.PropFromConfig(sc.Prop, s.PropSlot); err != nil {
		return nil, fmt.Errorf("scene %s: %w", name, err)
	}

	// Evaluate the time-based components at t=0 so the first frame is complete.
	s.Surface.Update(0)
	s.Lights.Update(0)
	return s, nil
}

// FromConfig builds the active scene of cfg.
func FromConfig(cfg *config.Config, width, height int, rng *rand.Rand) (*Scene, error) {
	return New(cfg.Active, cfg.Scene(), cfg.Camera, width, height, rng)
}

func styleFromConfig(sc *config.SceneConfig) (Style, error) {
	var st Style
	var err error
	if st.Background, err = systems.ParseColor(sc.Background); err != nil {
		return st, err
	}
	if st.Sky, err = systems.NewGradient(sc.Sky.Inner, sc.Sky.Outer); err != nil {
		return st, err
	}
	st.SkyRadius = sc.Sky.Radius
	floor, err := systems.NewGradient(sc.Surface.Color1, sc.Surface.Color2)
	if err != nil {
		return st, err
	}
	st.Floor = systems.FloorPalette{Gradient: floor, Freq: sc.Surface.BlendFreq}
	if st.ParticleColor, err = systems.ParseColor(sc.Particles.Color); err != nil {
		return st, err
	}
	st.ParticleSize = sc.Particles.Size
	if st.ShardColor, err = systems.ParseColor(sc.Shards.Color); err != nil {
		return st, err
	}
	if st.ShardEmissive, err = systems.ParseColor(sc.Shards.Emissive); err != nil {
		return st, err
	}
	return st, nil
}

// SetPerf attaches a collector that receives per-phase timings from Step.
func (s *Scene) SetPerf(p *telemetry.PerfCollector) {
	s.perf = p
}

func (s *Scene) phase(name string) {
	if s.perf != nil {
		s.perf.StartPhase(name)
	}
}

// LoadProp starts loading the configured prop in the background.
// The returned channel is closed when loading finishes; it is nil when the
// scene has no prop.
func (s *Scene) LoadProp(ctx context.Context, l *assets.Loader) <-chan struct{} {
	if s.cfg.Prop.URL == "" {
		return nil
	}
	return l.LoadAsync(ctx, s.cfg.Prop.URL, s.PropSlot)
}

// Step advances every component to elapsed seconds. delta is the time since
// the previous step. The components are independent of each other.
func (s *Scene) Step(elapsed, delta float64) {
	s.elapsed, s.delta = elapsed, delta
	s.frames++

	s.phase(telemetry.PhaseParticles)
	s.Particles.Advance(delta)

	s.phase(telemetry.PhaseShards)
	shardEvents := s.Shards.Update(delta)
	s.events = s.Particles.LastEvents() + shardEvents

	s.phase(telemetry.PhaseSurface)
	s.Surface.Update(elapsed)

	s.phase(telemetry.PhaseLights)
	s.Lights.Update(elapsed)

	s.phase(telemetry.PhaseProp)
	s.Prop.Update(elapsed, delta)
	s.Camera.Orbit(float32(elapsed))
}

// Resize reacts to a viewport change. Only the projection depends on it.
func (s *Scene) Resize(width, height int) bool {
	return s.Camera.Resize(float32(width), float32(height))
}

// Elapsed returns the time of the last step.
func (s *Scene) Elapsed() float64 { return s.elapsed }

// Delta returns the delta of the last step.
func (s *Scene) Delta() float64 { return s.delta }

// Frames returns the number of steps taken.
func (s *Scene) Frames() uint64 { return s.frames }

// BoundaryEvents returns the boundary events fired during the last step.
func (s *Scene) BoundaryEvents() int { return s.events }

// Config returns the preset the scene was built from.
func (s *Scene) Config() *config.SceneConfig { return s.cfg }

// FrameState summarizes the scene for telemetry.
func (s *Scene) FrameState(frame uint64) telemetry.FrameState {
	lo, hi := s.Surface.HeightRange()
	st := telemetry.FrameState{
		Frame:      frame,
		Elapsed:    s.elapsed,
		Delta:      s.delta,
		Scene:      s.Name,
		Particles:  s.Particles.Len(),
		MeanHeight: s.Particles.MeanHeight(),
		Shards:     s.Shards.Count(),
		SurfaceMin: lo,
		SurfaceMax: hi,
	}
	for _, l := range s.Lights.States() {
		if l.Kind == systems.LightPoint {
			st.Intensities = append(st.Intensities, l.Intensity)
		}
	}
	if s.Prop.Model() != nil {
		r := s.Prop.Transform().Rotation
		st.PropLoaded = true
		st.PropRot = [3]float64{r.X, r.Y, r.Z}
	}
	return st
}

// Snapshot captures the frame for browser renderers, keeping at most
// maxPoints particle positions (0 = all).
func (s *Scene) Snapshot(frame uint64, maxPoints int) *telemetry.Snapshot {
	lo, hi := s.Surface.HeightRange()
	snap := &telemetry.Snapshot{
		Version:      telemetry.SnapshotVersion,
		Scene:        s.Name,
		Frame:        frame,
		Elapsed:      s.elapsed,
		Background:   s.Style.Background.Hex(),
		ParticleSize: s.Style.ParticleSize,
		SurfaceMin:   lo,
		SurfaceMax:   hi,
	}

	for _, l := range s.Lights.States() {
		kind := config.KindPoint
		if l.Kind == systems.LightAmbient {
			kind = config.KindAmbient
		}
		snap.Lights = append(snap.Lights, telemetry.LightSnapshot{
			Name:      l.Name,
			Kind:      kind,
			Color:     l.Color.Hex(),
			Position:  triple(l.Position),
			Intensity: l.Intensity,
		})
	}

	if m := s.Prop.Model(); m != nil {
		tr := s.Prop.Transform()
		snap.Prop = &telemetry.PropSnapshot{
			Name:     m.Name,
			Rotation: triple(tr.Rotation),
			Position: triple(tr.Position),
			Scale:    m.Scale,
		}
	}

	pos := s.Particles.Positions()
	stride := 1
	if maxPoints > 0 && len(pos) > maxPoints {
		stride = int(math.Ceil(float64(len(pos)) / float64(maxPoints)))
	}
	snap.Particles = make([][3]float32, 0, len(pos)/stride+1)
	for i := 0; i < len(pos); i += stride {
		p := pos[i]
		snap.Particles = append(snap.Particles, [3]float32{float32(p.X), float32(p.Y), float32(p.Z)})
	}

	s.Shards.Each(func(p components.Position, r components.Rotation, _ components.Body) {
		snap.Shards = append(snap.Shards, telemetry.ShardState{
			Position: [3]float32{float32(p.X), float32(p.Y), float32(p.Z)},
			Rotation: [3]float32{float32(r.X), float32(r.Y), float32(r.Z)},
		})
	})
	return snap
}

func triple(p components.Point3) [3]float64 {
	return [3]float64{p.X, p.Y, p.Z}
}

package config

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Policy and mode names accepted in configuration files.
const (
	PolicyNone    = "none"
	PolicyWrap    = "wrap"
	PolicyBounce  = "bounce"
	PolicyRespawn = "respawn"

	PolicyAccumulate = "accumulate"
	PolicyPeriodic   = "periodic"

	ModeVector   = "vector"
	ModeVertical = "vertical"

	UnitsFrame  = "frame"
	UnitsSecond = "second"

	KindPoint   = "point"
	KindAmbient = "ambient"
)

// MaxSegments caps the surface grid at 301x301 vertices.
const MaxSegments = 300

// validator accumulates problems under a field path prefix.
type validator struct {
	errs []error
}

func (v *validator) failf(format string, args ...any) {
	v.errs = append(v.errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
}

func (v *validator) finite(path string, vals ...float64) {
	for _, f := range vals {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			v.failf("%s must be finite", path)
			return
		}
	}
}

func (v *validator) vec(path string, p Vec3) {
	v.finite(path, p.X, p.Y, p.Z)
}

func (v *validator) color(path, hex string) {
	if hex == "" {
		return
	}
	if _, err := colorful.Hex(hex); err != nil {
		v.failf("%s: bad color %q", path, hex)
	}
}

// Validate checks the whole configuration and fails fast on anything that
// would otherwise produce NaN positions or divide by zero later.
func (c *Config) Validate() error {
	v := &validator{}

	if c.Screen.Width <= 0 || c.Screen.Height <= 0 {
		v.failf("screen size must be positive, got %dx%d", c.Screen.Width, c.Screen.Height)
	}
	if c.Screen.TargetFPS < 0 {
		v.failf("screen.target_fps must be >= 0, got %d", c.Screen.TargetFPS)
	}
	if c.Camera.FovY <= 0 || c.Camera.FovY >= 180 {
		v.failf("camera.fov_y must be in (0, 180), got %v", c.Camera.FovY)
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		v.failf("camera clip planes must satisfy 0 < near < far, got near=%v far=%v", c.Camera.Near, c.Camera.Far)
	}
	v.vec("camera.position", c.Camera.Position)
	v.vec("camera.target", c.Camera.Target)
	if c.Telemetry.PerfWindow < 0 || c.Telemetry.SceneSamples < 0 {
		v.failf("telemetry windows must be >= 0")
	}
	if c.Stream.Every < 0 || c.Stream.MaxPoints < 0 {
		v.failf("stream.every and stream.max_points must be >= 0")
	}

	if _, ok := c.Scenes.Get(c.Active); !ok {
		v.failf("unknown active scene %q (want one of %s)", c.Active, strings.Join(c.Scenes.Names(), ", "))
	}
	for _, name := range c.Scenes.Names() {
		s, _ := c.Scenes.Get(name)
		s.validate(v, "scenes."+name)
	}

	return errors.Join(v.errs...)
}

// ValidateScene checks a single preset, e.g. one built in code.
func ValidateScene(s *SceneConfig) error {
	v := &validator{}
	s.validate(v, "scene")
	return errors.Join(v.errs...)
}

func (s *SceneConfig) validate(v *validator, path string) {
	v.color(path+".background", s.Background)

	p := s.Particles
	if p.Count < 0 {
		v.failf("%s.particles.count must be >= 0, got %d", path, p.Count)
	}
	if p.Units != UnitsFrame && p.Units != UnitsSecond {
		v.failf("%s.particles.units must be %q or %q, got %q", path, UnitsFrame, UnitsSecond, p.Units)
	}
	validateVolume(v, path+".particles.spawn", p.Spawn)
	validateVelocity(v, path+".particles.velocity", p.Velocity)
	validateBounds(v, path+".particles.bounds", p.Bounds)
	v.color(path+".particles.color", p.Color)

	sh := s.Shards
	if sh.Count < 0 {
		v.failf("%s.shards.count must be >= 0, got %d", path, sh.Count)
	}
	validateVolume(v, path+".shards.spawn", sh.Spawn)
	validateVelocity(v, path+".shards.velocity", sh.Velocity)
	validateBounds(v, path+".shards.bounds", sh.Bounds)
	v.vec(path+".shards.spin", sh.Spin)
	v.color(path+".shards.color", sh.Color)
	v.color(path+".shards.emissive", sh.Emissive)

	sf := s.Surface
	if sf.Segments < 1 || sf.Segments > MaxSegments {
		v.failf("%s.surface.segments must be in [1, %d], got %d", path, MaxSegments, sf.Segments)
	}
	if sf.Width <= 0 || sf.Depth <= 0 {
		v.failf("%s.surface size must be positive", path)
	}
	v.finite(path+".surface", sf.AmpX, sf.FreqX, sf.SpeedX, sf.PhaseX, sf.AmpZ, sf.FreqZ, sf.SpeedZ, sf.PhaseZ, sf.BlendFreq)
	if sf.AmpX != 0 && sf.FreqX <= 0 {
		v.failf("%s.surface.freq_x must be > 0 when amp_x is set, got %v", path, sf.FreqX)
	}
	if sf.AmpZ != 0 && sf.FreqZ <= 0 {
		v.failf("%s.surface.freq_z must be > 0 when amp_z is set, got %v", path, sf.FreqZ)
	}
	v.color(path+".surface.color1", sf.Color1)
	v.color(path+".surface.color2", sf.Color2)
	v.color(path+".sky.inner", s.Sky.Inner)
	v.color(path+".sky.outer", s.Sky.Outer)

	for i, l := range s.Lights {
		lp := fmt.Sprintf("%s.lights[%d]", path, i)
		if l.Kind != KindPoint && l.Kind != KindAmbient {
			v.failf("%s.kind must be %q or %q, got %q", lp, KindPoint, KindAmbient, l.Kind)
		}
		v.vec(lp+".position", l.Position)
		v.finite(lp, l.Range, l.Orbit.Radius, l.Orbit.Speed, l.Orbit.BobAmp, l.Orbit.BobFreq, l.Pulse.Base, l.Pulse.Amp, l.Pulse.Freq)
		if l.Orbit.Radius < 0 {
			v.failf("%s.orbit.radius must be >= 0, got %v", lp, l.Orbit.Radius)
		}
		if l.Orbit.Radius > 0 && l.Orbit.Speed == 0 {
			v.failf("%s.orbit.speed must be non-zero for an orbiting light", lp)
		}
		if l.Orbit.BobAmp != 0 && l.Orbit.BobFreq <= 0 {
			v.failf("%s.orbit.bob_freq must be > 0 when bob_amp is set, got %v", lp, l.Orbit.BobFreq)
		}
		if l.Pulse.Amp != 0 && l.Pulse.Freq <= 0 {
			v.failf("%s.pulse.freq must be > 0 when amp is set, got %v", lp, l.Pulse.Freq)
		}
		if l.Pulse.Base < 0 {
			v.failf("%s.pulse.base must be >= 0, got %v", lp, l.Pulse.Base)
		}
		if math.Abs(l.Pulse.Amp) > l.Pulse.Base {
			v.failf("%s.pulse.amp (%v) would drive intensity below zero (base %v)", lp, l.Pulse.Amp, l.Pulse.Base)
		}
		v.color(lp+".color", l.Color)
	}

	pr := s.Prop
	v.vec(path+".prop.position", pr.Position)
	switch pr.Policy {
	case PolicyAccumulate:
		v.vec(path+".prop.rate", pr.Rate)
	case PolicyPeriodic:
		v.vec(path+".prop.amp", pr.Amp)
		if pr.Freq <= 0 {
			v.failf("%s.prop.freq must be > 0 for the periodic policy, got %v", path, pr.Freq)
		}
	default:
		v.failf("%s.prop.policy must be %q or %q, got %q", path, PolicyAccumulate, PolicyPeriodic, pr.Policy)
	}
	if pr.BobAmp != 0 && pr.BobFreq <= 0 {
		v.failf("%s.prop.bob_freq must be > 0 when bob_amp is set, got %v", path, pr.BobFreq)
	}
}

func validateVolume(v *validator, path string, vol VolumeConfig) {
	v.vec(path+".min", vol.Min)
	v.vec(path+".max", vol.Max)
	if vol.Min.X > vol.Max.X || vol.Min.Y > vol.Max.Y || vol.Min.Z > vol.Max.Z {
		v.failf("%s: min must not exceed max", path)
	}
}

func validateVelocity(v *validator, path string, vel VelocityConfig) {
	switch vel.Mode {
	case ModeVector:
		v.vec(path+".base", vel.Base)
		v.vec(path+".spread", vel.Spread)
		if vel.Spread.X < 0 || vel.Spread.Y < 0 || vel.Spread.Z < 0 {
			v.failf("%s.spread must be >= 0", path)
		}
	case ModeVertical:
		v.finite(path, vel.MinSpeed, vel.MaxSpeed)
		if vel.MinSpeed > vel.MaxSpeed {
			v.failf("%s: min_speed must not exceed max_speed", path)
		}
	default:
		v.failf("%s.mode must be %q or %q, got %q", path, ModeVector, ModeVertical, vel.Mode)
	}
}

func validateBounds(v *validator, path string, b BoundsConfig) {
	switch b.Policy {
	case PolicyNone:
		return
	case PolicyWrap, PolicyBounce, PolicyRespawn:
	default:
		v.failf("%s.policy must be one of none, wrap, bounce, respawn, got %q", path, b.Policy)
		return
	}
	v.vec(path+".min", b.Min)
	v.vec(path+".max", b.Max)
	if b.Policy == PolicyRespawn {
		if b.Min.Y >= b.Max.Y {
			v.failf("%s: respawn floor (min.y=%v) must be below ceiling (max.y=%v)", path, b.Min.Y, b.Max.Y)
		}
		return
	}
	if b.Axes == "" || strings.Trim(b.Axes, "xyz") != "" {
		v.failf("%s.axes must be a subset of \"xyz\", got %q", path, b.Axes)
		return
	}
	for _, axis := range b.Axes {
		lo, hi := axisOf(b.Min, axis), axisOf(b.Max, axis)
		if lo >= hi {
			v.failf("%s: min.%c (%v) must be below max.%c (%v)", path, axis, lo, axis, hi)
		}
	}
}

func axisOf(p Vec3, axis rune) float64 {
	switch axis {
	case 'x':
		return p.X
	case 'y':
		return p.Y
	}
	return p.Z
}

// period converts an angular frequency to seconds per cycle.
func period(freq float64) float64 {
	return 2 * math.Pi / math.Abs(freq)
}

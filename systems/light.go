package systems

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/pthm-cable/grotto/components"
	"github.com/pthm-cable/grotto/config"
)

// LightKind distinguishes positional lights from ambient fill.
type LightKind uint8

const (
	LightPoint LightKind = iota
	LightAmbient
)

// Orbit moves a light around the Y axis. Radius 0 keeps it static.
type Orbit struct {
	Radius  float64
	Speed   float64 // radians per second
	BobAmp  float64
	BobFreq float64
}

// Pulse modulates intensity as Base + sin(t*Freq)*Amp.
type Pulse struct {
	Base float64
	Amp  float64
	Freq float64
}

// Light is a light source whose state is a closed-form function of time.
type Light struct {
	Name     string
	Kind     LightKind
	Color    colorful.Color
	Position components.Point3 // static position, Y is the orbit base height
	Range    float64
	Orbit    Orbit
	Pulse    Pulse
}

// LightState is a light evaluated at a point in time.
type LightState struct {
	Name      string
	Kind      LightKind
	Color     colorful.Color
	Position  components.Point3
	Intensity float64
	Range     float64
}

// At evaluates the light at elapsed time t.
func (l Light) At(t float64) LightState {
	pos := l.Position
	if l.Orbit.Radius > 0 {
		pos.X = math.Sin(t*l.Orbit.Speed) * l.Orbit.Radius
		pos.Z = math.Cos(t*l.Orbit.Speed) * l.Orbit.Radius
	}
	if l.Orbit.BobAmp != 0 {
		pos.Y = l.Position.Y + math.Sin(t*l.Orbit.BobFreq)*l.Orbit.BobAmp
	}

	return LightState{
		Name:      l.Name,
		Kind:      l.Kind,
		Color:     l.Color,
		Position:  pos,
		Intensity: l.Pulse.Base + math.Sin(t*l.Pulse.Freq)*l.Pulse.Amp,
		Range:     l.Range,
	}
}

// LightRig holds every light of a scene.
type LightRig struct {
	lights []Light
	states []LightState
}

// NewLightRig creates a rig from the given lights.
func NewLightRig(lights ...Light) *LightRig {
	return &LightRig{
		lights: lights,
		states: make([]LightState, len(lights)),
	}
}

// LightRigFromConfig converts the lights section of a scene.
func LightRigFromConfig(lcs []config.LightConfig) (*LightRig, error) {
	lights := make([]Light, 0, len(lcs))
	for i, lc := range lcs {
		l, err := lightFromConfig(lc)
		if err != nil {
			return nil, fmt.Errorf("light %d (%s): %w", i, lc.Name, err)
		}
		lights = append(lights, l)
	}
	return NewLightRig(lights...), nil
}

func lightFromConfig(lc config.LightConfig) (Light, error) {
	c, err := ParseColor(lc.Color)
	if err != nil {
		return Light{}, err
	}

	l := Light{
		Name:     lc.Name,
		Color:    c,
		Position: components.Point3(lc.Position),
		Range:    lc.Range,
		Orbit:    Orbit(lc.Orbit),
		Pulse:    Pulse(lc.Pulse),
	}
	switch lc.Kind {
	case config.KindPoint:
		l.Kind = LightPoint
	case config.KindAmbient:
		l.Kind = LightAmbient
	default:
		return Light{}, fmt.Errorf("%w: unknown light kind %q", config.ErrInvalidConfig, lc.Kind)
	}
	if l.Orbit.Radius > 0 && l.Orbit.Speed == 0 {
		return Light{}, fmt.Errorf("%w: orbiting light needs a non-zero speed", config.ErrInvalidConfig)
	}
	if l.Pulse.Amp != 0 && l.Pulse.Freq <= 0 {
		return Light{}, fmt.Errorf("%w: pulse frequency must be > 0, got %v", config.ErrInvalidConfig, l.Pulse.Freq)
	}
	return l, nil
}

// Update evaluates every light at t. The returned slice is reused between calls.
func (r *LightRig) Update(t float64) []LightState {
	for i, l := range r.lights {
		r.states[i] = l.At(t)
	}
	return r.states
}

// States returns the states from the last Update.
func (r *LightRig) States() []LightState {
	return r.states
}

// Len returns the number of lights.
func (r *LightRig) Len() int {
	return len(r.lights)
}

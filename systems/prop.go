package systems

import (
	"fmt"
	"math"

	"github.com/pthm-cable/grotto/assets"
	"github.com/pthm-cable/grotto/components"
	"github.com/pthm-cable/grotto/config"
)

// PropPolicy selects how a prop's rotation evolves.
// The two policies are not interchangeable: accumulate depends on the full
// sequence of deltas, periodic only on the current time.
type PropPolicy uint8

const (
	PropAccumulate PropPolicy = iota // rotation += rate * delta
	PropPeriodic                     // rotation = sin(t*freq) * amp
)

// PropTransform is the animated transform of a prop.
type PropTransform struct {
	Rotation components.Point3
	Position components.Point3
}

// PropAnimator animates whatever model has been published to its slot.
type PropAnimator struct {
	policy  PropPolicy
	rate    components.Point3
	amp     components.Point3
	freq    float64
	bobAmp  float64
	bobFreq float64
	base    components.Point3

	slot      *assets.Slot
	model     *assets.Model
	transform PropTransform
}

// NewAccumulatingProp rotates at a constant rate (radians per second per axis).
func NewAccumulatingProp(slot *assets.Slot, base, rate components.Point3) *PropAnimator {
	return &PropAnimator{
		policy:    PropAccumulate,
		rate:      rate,
		base:      base,
		slot:      slot,
		transform: PropTransform{Position: base},
	}
}

// NewPeriodicProp sways with rotation = sin(t*freq)*amp.
func NewPeriodicProp(slot *assets.Slot, base, amp components.Point3, freq float64) (*PropAnimator, error) {
	if freq <= 0 || math.IsNaN(freq) || math.IsInf(freq, 0) {
		return nil, fmt.Errorf("%w: periodic prop frequency must be > 0, got %v", config.ErrInvalidConfig, freq)
	}
	return &PropAnimator{
		policy:    PropPeriodic,
		amp:       amp,
		freq:      freq,
		base:      base,
		slot:      slot,
		transform: PropTransform{Position: base},
	}, nil
}

// PropFromConfig builds the animator for a prop section.
func PropFromConfig(pc config.PropConfig, slot *assets.Slot) (*PropAnimator, error) {
	var a *PropAnimator
	switch pc.Policy {
	case config.PolicyAccumulate:
		a = NewAccumulatingProp(slot, components.Point3(pc.Position), components.Point3(pc.Rate))
	case config.PolicyPeriodic:
		var err error
		a, err = NewPeriodicProp(slot, components.Point3(pc.Position), components.Point3(pc.Amp), pc.Freq)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: unknown prop policy %q", config.ErrInvalidConfig, pc.Policy)
	}
	if err := a.SetBob(pc.BobAmp, pc.BobFreq); err != nil {
		return nil, err
	}
	return a, nil
}

// SetBob adds a vertical bob of base.Y + sin(t*freq)*amp.
func (a *PropAnimator) SetBob(amp, freq float64) error {
	if amp != 0 && freq <= 0 {
		return fmt.Errorf("%w: bob frequency must be > 0, got %v", config.ErrInvalidConfig, freq)
	}
	a.bobAmp, a.bobFreq = amp, freq
	return nil
}

// Update advances the prop. It is a no-op until a model has been published,
// and returns whether a model is attached.
func (a *PropAnimator) Update(t, delta float64) bool {
	if a.model == nil {
		if a.slot == nil {
			return false
		}
		// The model is picked up here and animated from the next frame on.
		a.model = a.slot.Load()
		return false
	}

	switch a.policy {
	case PropAccumulate:
		a.transform.Rotation.X += a.rate.X * delta
		a.transform.Rotation.Y += a.rate.Y * delta
		a.transform.Rotation.Z += a.rate.Z * delta
	case PropPeriodic:
		s := math.Sin(t * a.freq)
		a.transform.Rotation = a.amp.Scale(s)
	}

	a.transform.Position = a.base
	if a.bobAmp != 0 {
		a.transform.Position.Y += math.Sin(t*a.bobFreq) * a.bobAmp
	}
	return true
}

// Policy returns the animation policy.
func (a *PropAnimator) Policy() PropPolicy {
	return a.policy
}

// Model returns the attached model, or nil.
func (a *PropAnimator) Model() *assets.Model {
	return a.model
}

// Transform returns the current transform.
func (a *PropAnimator) Transform() PropTransform {
	return a.transform
}

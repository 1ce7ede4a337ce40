// Package systems contains the per-frame animation systems of a scene.
package systems

import (
	"fmt"

	"github.com/pthm-cable/grotto/components"
	"github.com/pthm-cable/grotto/config"
)

// Policy selects what happens when a coordinate leaves its bounds.
type Policy uint8

const (
	PolicyNone    Policy = iota
	PolicyWrap           // Reset to the opposite bound
	PolicyBounce         // Clamp to the bound and reverse the velocity component
	PolicyRespawn        // Below the floor, reset Y to the ceiling (X and Z re-drawn by the field)
)

func (p Policy) String() string {
	switch p {
	case PolicyWrap:
		return config.PolicyWrap
	case PolicyBounce:
		return config.PolicyBounce
	case PolicyRespawn:
		return config.PolicyRespawn
	}
	return config.PolicyNone
}

// Axes is a bit set of the axes a boundary applies to.
type Axes uint8

const (
	AxisX Axes = 1 << iota
	AxisY
	AxisZ
)

// ParseAxes converts a string such as "xz" to an axis set.
func ParseAxes(s string) (Axes, error) {
	var a Axes
	for _, r := range s {
		switch r {
		case 'x':
			a |= AxisX
		case 'y':
			a |= AxisY
		case 'z':
			a |= AxisZ
		default:
			return 0, fmt.Errorf("%w: unknown axis %q", config.ErrInvalidConfig, r)
		}
	}
	return a, nil
}

// Boundary holds a policy and its per-axis thresholds.
// All comparisons are strict: a coordinate exactly on a bound is inside.
type Boundary struct {
	Policy Policy
	Axes   Axes
	Min    components.Point3
	Max    components.Point3
}

// Wrap returns a wrap boundary on the Y axis between lo and hi.
func Wrap(lo, hi float64) Boundary {
	return Boundary{
		Policy: PolicyWrap,
		Axes:   AxisY,
		Min:    components.Point3{Y: lo},
		Max:    components.Point3{Y: hi},
	}
}

// BoundaryFromConfig builds a Boundary from a validated bounds section.
func BoundaryFromConfig(bc config.BoundsConfig) (Boundary, error) {
	b := Boundary{
		Min: components.Point3(bc.Min),
		Max: components.Point3(bc.Max),
	}
	switch bc.Policy {
	case config.PolicyNone, "":
		b.Policy = PolicyNone
		return b, nil
	case config.PolicyWrap:
		b.Policy = PolicyWrap
	case config.PolicyBounce:
		b.Policy = PolicyBounce
	case config.PolicyRespawn:
		b.Policy = PolicyRespawn
		b.Axes = AxisY
		if b.Min.Y >= b.Max.Y {
			return b, fmt.Errorf("%w: respawn floor %v must be below ceiling %v", config.ErrInvalidConfig, b.Min.Y, b.Max.Y)
		}
		return b, nil
	default:
		return b, fmt.Errorf("%w: unknown boundary policy %q", config.ErrInvalidConfig, bc.Policy)
	}

	axes, err := ParseAxes(bc.Axes)
	if err != nil {
		return b, err
	}
	b.Axes = axes
	return b, b.check()
}

func (b Boundary) check() error {
	if b.Axes&AxisX != 0 && b.Min.X >= b.Max.X {
		return fmt.Errorf("%w: x bounds [%v, %v] are empty", config.ErrInvalidConfig, b.Min.X, b.Max.X)
	}
	if b.Axes&AxisY != 0 && b.Min.Y >= b.Max.Y {
		return fmt.Errorf("%w: y bounds [%v, %v] are empty", config.ErrInvalidConfig, b.Min.Y, b.Max.Y)
	}
	if b.Axes&AxisZ != 0 && b.Min.Z >= b.Max.Z {
		return fmt.Errorf("%w: z bounds [%v, %v] are empty", config.ErrInvalidConfig, b.Min.Z, b.Max.Z)
	}
	return nil
}

// Apply enforces the boundary on p, reversing components of v on bounce.
// Returns true if any axis fired.
func (b Boundary) Apply(p, v *components.Point3) bool {
	switch b.Policy {
	case PolicyWrap:
		fired := false
		if b.Axes&AxisX != 0 {
			fired = wrap(&p.X, b.Min.X, b.Max.X) || fired
		}
		if b.Axes&AxisY != 0 {
			fired = wrap(&p.Y, b.Min.Y, b.Max.Y) || fired
		}
		if b.Axes&AxisZ != 0 {
			fired = wrap(&p.Z, b.Min.Z, b.Max.Z) || fired
		}
		return fired
	case PolicyBounce:
		fired := false
		if b.Axes&AxisX != 0 {
			fired = bounce(&p.X, &v.X, b.Min.X, b.Max.X) || fired
		}
		if b.Axes&AxisY != 0 {
			fired = bounce(&p.Y, &v.Y, b.Min.Y, b.Max.Y) || fired
		}
		if b.Axes&AxisZ != 0 {
			fired = bounce(&p.Z, &v.Z, b.Min.Z, b.Max.Z) || fired
		}
		return fired
	case PolicyRespawn:
		if p.Y < b.Min.Y {
			p.Y = b.Max.Y
			return true
		}
	}
	return false
}

func wrap(c *float64, lo, hi float64) bool {
	if *c > hi {
		*c = lo
		return true
	}
	if *c < lo {
		*c = hi
		return true
	}
	return false
}

// bounce only reverses a velocity still heading out of bounds, so a particle
// sitting on the bound after a clamp is not flipped back outward.
func bounce(c, v *float64, lo, hi float64) bool {
	if *c > hi {
		*c = hi
		if *v > 0 {
			*v = -*v
		}
		return true
	}
	if *c < lo {
		*c = lo
		if *v < 0 {
			*v = -*v
		}
		return true
	}
	return false
}

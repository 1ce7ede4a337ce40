package systems

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/pthm-cable/grotto/config"
)

// ParseColor parses a "#rrggbb" string. Empty strings are black.
func ParseColor(hex string) (colorful.Color, error) {
	if hex == "" {
		return colorful.Color{}, nil
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return colorful.Color{}, fmt.Errorf("%w: bad color %q", config.ErrInvalidConfig, hex)
	}
	return c, nil
}

// Gradient linearly mixes two colors in RGB, like GLSL mix().
type Gradient struct {
	A, B colorful.Color
}

// NewGradient parses both ends of a gradient.
func NewGradient(a, b string) (Gradient, error) {
	ca, err := ParseColor(a)
	if err != nil {
		return Gradient{}, err
	}
	cb, err := ParseColor(b)
	if err != nil {
		return Gradient{}, err
	}
	return Gradient{A: ca, B: cb}, nil
}

// At returns the color at f, clamped to [0, 1].
func (g Gradient) At(f float64) colorful.Color {
	return g.A.BlendRgb(g.B, math.Max(0, math.Min(1, f)))
}

// FloorPalette colors the surface with diagonal bands across its UV space.
type FloorPalette struct {
	Gradient
	Freq float64
}

// Blend returns the floor color at texture coordinate (u, v).
func (p FloorPalette) Blend(u, v float64) colorful.Color {
	return p.At(math.Sin(v*p.Freq+u*p.Freq)*0.5 + 0.5)
}

// SkyColor returns the skybox color for a unit direction with vertical component dirY.
func (g Gradient) SkyColor(dirY float64) colorful.Color {
	return g.At(dirY*0.5 + 0.5)
}

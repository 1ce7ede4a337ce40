package systems

import (
	"fmt"
	"math"

	"github.com/pthm-cable/grotto/components"
	"github.com/pthm-cable/grotto/config"
)

// SurfaceParams are the uniforms of the oscillating surface.
type SurfaceParams struct {
	AmpX, FreqX, SpeedX, PhaseX float64
	AmpZ, FreqZ, SpeedZ, PhaseZ float64
}

// SurfaceParamsFromConfig extracts the height-function coefficients.
func SurfaceParamsFromConfig(sc config.SurfaceConfig) SurfaceParams {
	return SurfaceParams{
		AmpX: sc.AmpX, FreqX: sc.FreqX, SpeedX: sc.SpeedX, PhaseX: sc.PhaseX,
		AmpZ: sc.AmpZ, FreqZ: sc.FreqZ, SpeedZ: sc.SpeedZ, PhaseZ: sc.PhaseZ,
	}
}

// Height is the surface displacement at (x, z) and time t.
// It is a pure function of its arguments.
func Height(x, z, t float64, p SurfaceParams) float64 {
	return math.Sin(x*p.FreqX+t*p.SpeedX+p.PhaseX)*p.AmpX +
		math.Cos(z*p.FreqZ+t*p.SpeedZ+p.PhaseZ)*p.AmpZ
}

// SurfaceGrid is a plane of (segments+1)^2 vertices centered on the origin.
// XZ is fixed at construction; heights are recomputed from scratch on every Update.
type SurfaceGrid struct {
	params   SurfaceParams
	segments int
	width    float64
	depth    float64

	xs      []float64 // column X coordinates
	zs      []float64 // row Z coordinates
	heights []float64 // row-major, len = len(xs)*len(zs)
	time    float64
}

// NewSurfaceGrid allocates a grid and computes heights at t=0.
func NewSurfaceGrid(width, depth float64, segments int, p SurfaceParams) (*SurfaceGrid, error) {
	if segments < 1 || segments > config.MaxSegments {
		return nil, fmt.Errorf("%w: surface segments must be in [1, %d], got %d", config.ErrInvalidConfig, config.MaxSegments, segments)
	}
	if width <= 0 || depth <= 0 {
		return nil, fmt.Errorf("%w: surface size must be positive, got %vx%v", config.ErrInvalidConfig, width, depth)
	}

	n := segments + 1
	g := &SurfaceGrid{
		params:   p,
		segments: segments,
		width:    width,
		depth:    depth,
		xs:       make([]float64, n),
		zs:       make([]float64, n),
		heights:  make([]float64, n*n),
	}
	for i := 0; i < n; i++ {
		f := float64(i) / float64(segments)
		g.xs[i] = (f - 0.5) * width
		g.zs[i] = (f - 0.5) * depth
	}
	g.Update(0)
	return g, nil
}

// SurfaceFromConfig builds the grid described by a surface section.
func SurfaceFromConfig(sc config.SurfaceConfig) (*SurfaceGrid, error) {
	return NewSurfaceGrid(sc.Width, sc.Depth, sc.Segments, SurfaceParamsFromConfig(sc))
}

// Update recomputes every vertex height for time t.
func (g *SurfaceGrid) Update(t float64) {
	g.time = t
	n := len(g.xs)
	p := g.params
	for j, z := range g.zs {
		// The Z term is constant along a row.
		zTerm := math.Cos(z*p.FreqZ+t*p.SpeedZ+p.PhaseZ) * p.AmpZ
		row := g.heights[j*n : (j+1)*n]
		for i, x := range g.xs {
			row[i] = math.Sin(x*p.FreqX+t*p.SpeedX+p.PhaseX)*p.AmpX + zTerm
		}
	}
}

// Size returns the number of vertices per side.
func (g *SurfaceGrid) Size() int {
	return len(g.xs)
}

// Heights returns the row-major height buffer.
func (g *SurfaceGrid) Heights() []float64 {
	return g.heights
}

// Vertex returns the position of vertex (i, j) where i is the column and j the row.
func (g *SurfaceGrid) Vertex(i, j int) components.Point3 {
	return components.Point3{X: g.xs[i], Y: g.heights[j*len(g.xs)+i], Z: g.zs[j]}
}

// UV returns texture coordinates of vertex (i, j) in [0, 1].
func (g *SurfaceGrid) UV(i, j int) (u, v float64) {
	return float64(i) / float64(g.segments), float64(j) / float64(g.segments)
}

// Params returns the height-function coefficients.
func (g *SurfaceGrid) Params() SurfaceParams {
	return g.params
}

// Time returns the time of the last Update.
func (g *SurfaceGrid) Time() float64 {
	return g.time
}

// HeightRange returns the min and max height of the last Update.
func (g *SurfaceGrid) HeightRange() (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, h := range g.heights {
		lo = math.Min(lo, h)
		hi = math.Max(hi, h)
	}
	return lo, hi
}

package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/grotto/systems"
)

// SurfaceRenderer draws the oscillating surface as a colored wire grid.
type SurfaceRenderer struct {
	// maxLines caps the grid lines drawn per direction.
	maxLines int
}

// NewSurfaceRenderer creates a surface renderer.
func NewSurfaceRenderer(maxLines int) *SurfaceRenderer {
	if maxLines < 2 {
		maxLines = 2
	}
	return &SurfaceRenderer{maxLines: maxLines}
}

// Draw renders g. Dense grids are decimated to keep the line count bounded.
func (r *SurfaceRenderer) Draw(g *systems.SurfaceGrid, palette systems.FloorPalette) {
	n := g.Size()
	step := (n + r.maxLines - 1) / r.maxLines
	if step < 1 {
		step = 1
	}

	for j := 0; j < n; j += step {
		for i := 0; i < n; i += step {
			a := g.Vertex(i, j)
			col := toColor(palette.Blend(g.UV(i, j)), 255)
			pa := vec3(a.X, a.Y, a.Z)

			if i+step < n {
				b := g.Vertex(i+step, j)
				rl.DrawLine3D(pa, vec3(b.X, b.Y, b.Z), col)
			}
			if j+step < n {
				c := g.Vertex(i, j+step)
				rl.DrawLine3D(pa, vec3(c.X, c.Y, c.Z), col)
			}
		}
	}
}

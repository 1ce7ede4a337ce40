package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/pthm-cable/grotto/components"
	"github.com/pthm-cable/grotto/systems"
)

// BodyRenderer draws particles, shards and the prop placeholder.
type BodyRenderer struct {
	propModel   rl.Model
	initialized bool
}

// NewBodyRenderer creates a body renderer.
func NewBodyRenderer() *BodyRenderer {
	return &BodyRenderer{}
}

// Init loads the prop placeholder mesh (must be called after the raylib window is created).
func (b *BodyRenderer) Init() {
	if b.initialized {
		return
	}
	mesh := rl.GenMeshCube(1, 1, 1)
	b.propModel = rl.LoadModelFromMesh(mesh)
	b.initialized = true
}

// DrawParticles renders particles as small cubes, or points when size is 0.
func (b *BodyRenderer) DrawParticles(positions []components.Point3, c colorful.Color, size float64) {
	col := toColor(c, 220)
	s := float32(size)
	for _, p := range positions {
		v := vec3(p.X, p.Y, p.Z)
		if s <= 0 {
			rl.DrawPoint3D(v, col)
			continue
		}
		rl.DrawCube(v, s, s, s, col)
	}
}

// DrawShards renders each shard as a cone pointing along its rotated up axis.
func (b *BodyRenderer) DrawShards(shards *systems.ShardSystem, c, emissive colorful.Color) {
	body := toColor(c, 255)
	edge := toColor(emissive, 255)
	shards.Each(func(pos components.Position, rot components.Rotation, bd components.Body) {
		axis := rotateUp(components.Point3(rot), bd.Height)
		base := vec3(pos.X-axis.X/2, pos.Y-axis.Y/2, pos.Z-axis.Z/2)
		tip := vec3(pos.X+axis.X/2, pos.Y+axis.Y/2, pos.Z+axis.Z/2)
		r := float32(bd.Radius)
		rl.DrawCylinderEx(base, tip, r, 0, 6, body)
		rl.DrawCylinderWiresEx(base, tip, r, 0, 6, edge)
	})
}

// DrawProp renders a wire cube standing in for the loaded model.
// Nothing is drawn until the model has been published.
func (b *BodyRenderer) DrawProp(p *systems.PropAnimator) {
	m := p.Model()
	if m == nil {
		return
	}
	b.Init()

	tr := p.Transform()
	b.propModel.Transform = rl.MatrixRotateXYZ(vec3(tr.Rotation.X, tr.Rotation.Y, tr.Rotation.Z))

	col := rl.RayWhite
	if c, err := systems.ParseColor(m.Color); err == nil && m.Color != "" {
		col = toColor(c, 255)
	}
	rl.DrawModelWires(b.propModel, vec3(tr.Position.X, tr.Position.Y, tr.Position.Z), float32(m.Scale), col)
}

// Unload frees resources.
func (b *BodyRenderer) Unload() {
	if b.initialized {
		rl.UnloadModel(b.propModel)
		b.initialized = false
	}
}

// rotateUp rotates (0, length, 0) by Euler angles applied X, then Y, then Z.
func rotateUp(r components.Point3, length float64) components.Point3 {
	x, y, z := 0.0, length, 0.0

	sx, cx := math.Sincos(r.X)
	y, z = y*cx-z*sx, y*sx+z*cx

	sy, cy := math.Sincos(r.Y)
	x, z = x*cy+z*sy, -x*sy+z*cy

	sz, cz := math.Sincos(r.Z)
	x, y = x*cz-y*sz, x*sz+y*cz

	return components.Point3{X: x, Y: y, Z: z}
}

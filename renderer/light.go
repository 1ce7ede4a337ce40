package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/grotto/scene"
	"github.com/pthm-cable/grotto/systems"
)

// LightRenderer draws light gizmos and the sky gradient.
type LightRenderer struct{}

// NewLightRenderer creates a light renderer.
func NewLightRenderer() *LightRenderer {
	return &LightRenderer{}
}

// Draw renders point lights as spheres sized by intensity.
func (l *LightRenderer) Draw(states []systems.LightState) {
	for _, st := range states {
		if st.Kind != systems.LightPoint {
			continue
		}
		r := float32(0.2 + 0.1*st.Intensity)
		pos := vec3(st.Position.X, st.Position.Y, st.Position.Z)
		rl.DrawSphere(pos, r, toColor(st.Color, 255))
		rl.DrawSphereWires(pos, r*1.6, 6, 8, toColor(st.Color, 60))
	}
}

// DrawSky fills the screen with the sky gradient as seen from the camera.
// The top and bottom rows sample the gradient at the view ray's elevation.
func (l *LightRenderer) DrawSky(s *scene.Scene) {
	if s.Style.SkyRadius <= 0 {
		return
	}
	c := s.Camera
	dx := float64(c.Target.X - c.Position.X)
	dy := float64(c.Target.Y - c.Position.Y)
	dz := float64(c.Target.Z - c.Position.Z)
	pitch := math.Atan2(dy, math.Hypot(dx, dz))
	half := float64(c.FovY) * math.Pi / 360

	top := toColor(s.Style.Sky.SkyColor(math.Sin(math.Min(pitch+half, math.Pi/2))), 255)
	bottom := toColor(s.Style.Sky.SkyColor(math.Sin(math.Max(pitch-half, -math.Pi/2))), 255)
	rl.DrawRectangleGradientV(0, 0, int32(rl.GetScreenWidth()), int32(rl.GetScreenHeight()), top, bottom)
}

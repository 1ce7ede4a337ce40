// Package renderer draws scenes with raylib.
package renderer

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/pthm-cable/grotto/scene"
)

// Renderer draws a scene once per frame. It must be created and used on the
// goroutine that opened the raylib window.
type Renderer struct {
	surface *SurfaceRenderer
	bodies  *BodyRenderer
	lights  *LightRenderer

	showHUD bool
}

// New creates a renderer that draws the HUD overlay when showHUD is set.
// Call after rl.InitWindow.
func New(showHUD bool) *Renderer {
	return &Renderer{
		surface: NewSurfaceRenderer(100),
		bodies:  NewBodyRenderer(),
		lights:  NewLightRenderer(),
		showHUD: showHUD,
	}
}

// Render implements scene.Renderer.
func (r *Renderer) Render(s *scene.Scene) error {
	if rl.IsWindowResized() {
		s.Resize(rl.GetScreenWidth(), rl.GetScreenHeight())
	}

	cam := toCamera3D(s)

	rl.BeginDrawing()
	rl.ClearBackground(toColor(s.Style.Background, 255))
	r.lights.DrawSky(s)

	rl.BeginMode3D(cam)
	r.surface.Draw(s.Surface, s.Style.Floor)
	r.bodies.DrawParticles(s.Particles.Positions(), s.Style.ParticleColor, s.Style.ParticleSize)
	r.bodies.DrawShards(s.Shards, s.Style.ShardColor, s.Style.ShardEmissive)
	r.bodies.DrawProp(s.Prop)
	r.lights.Draw(s.Lights.States())
	rl.EndMode3D()

	if r.showHUD {
		r.drawHUD(s)
	}
	rl.EndDrawing()
	return nil
}

// ShouldClose implements scene.Renderer.
func (r *Renderer) ShouldClose() bool {
	return rl.WindowShouldClose()
}

func (r *Renderer) drawHUD(s *scene.Scene) {
	rl.DrawFPS(10, 10)

	prop := "loading"
	if m := s.Prop.Model(); m != nil {
		prop = m.Name
	} else if s.Config().Prop.URL == "" {
		prop = "none"
	}
	lines := []string{
		fmt.Sprintf("%s  t=%.1fs", s.Name, s.Elapsed()),
		fmt.Sprintf("particles %d  shards %d  lights %d", s.Particles.Len(), s.Shards.Count(), s.Lights.Len()),
		fmt.Sprintf("prop %s", prop),
	}
	for i, line := range lines {
		rl.DrawText(line, 10, int32(34+i*18), 16, rl.RayWhite)
	}
}

// Unload frees GPU resources.
func (r *Renderer) Unload() {
	r.bodies.Unload()
}

func toCamera3D(s *scene.Scene) rl.Camera3D {
	c := s.Camera
	return rl.Camera3D{
		Position:   rl.NewVector3(c.Position.X, c.Position.Y, c.Position.Z),
		Target:     rl.NewVector3(c.Target.X, c.Target.Y, c.Target.Z),
		Up:         rl.NewVector3(c.Up.X, c.Up.Y, c.Up.Z),
		Fovy:       c.FovY,
		Projection: rl.CameraPerspective,
	}
}

func toColor(c colorful.Color, alpha uint8) rl.Color {
	r, g, b := c.Clamped().RGB255()
	return rl.NewColor(r, g, b, alpha)
}

func vec3(x, y, z float64) rl.Vector3 {
	return rl.NewVector3(float32(x), float32(y), float32(z))
}

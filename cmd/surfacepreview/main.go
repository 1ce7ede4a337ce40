// Surface preview tool - interactive height map of a scene's floor with sliders.
//
// Usage: go run ./cmd/surfacepreview [-config overrides.yaml] [-scene desert]
package main

import (
	"flag"
	"fmt"
	"image/color"
	"log/slog"
	"math"
	"os"
	"strings"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/grotto/config"
	"github.com/pthm-cable/grotto/systems"
)

const (
	windowWidth  = 1000
	windowHeight = 720
	previewSize  = 512
	panelWidth   = windowWidth - previewSize - 30
	textureSize  = 256
)

// slider describes one adjustable surface coefficient.
type slider struct {
	label    string
	min, max float64
	value    func(p *systems.SurfaceParams) *float64
}

var sliders = []slider{
	{"Amplitude X", 0, 5, func(p *systems.SurfaceParams) *float64 { return &p.AmpX }},
	{"Frequency X", 0, 2, func(p *systems.SurfaceParams) *float64 { return &p.FreqX }},
	{"Speed X", -3, 3, func(p *systems.SurfaceParams) *float64 { return &p.SpeedX }},
	{"Phase X", 0, 2 * math.Pi, func(p *systems.SurfaceParams) *float64 { return &p.PhaseX }},
	{"Amplitude Z", 0, 5, func(p *systems.SurfaceParams) *float64 { return &p.AmpZ }},
	{"Frequency Z", 0, 2, func(p *systems.SurfaceParams) *float64 { return &p.FreqZ }},
	{"Speed Z", -3, 3, func(p *systems.SurfaceParams) *float64 { return &p.SpeedZ }},
	{"Phase Z", 0, 2 * math.Pi, func(p *systems.SurfaceParams) *float64 { return &p.PhaseZ }},
}

// preview is the state of the tool for the selected scene.
type preview struct {
	cfg     *config.Config
	names   []string
	index   int
	surface config.SurfaceConfig
	params  systems.SurfaceParams
	palette systems.FloorPalette
}

func main() {
	configPath := flag.String("config", "", "Path to config overlay (YAML or TOML)")
	sceneName := flag.String("scene", "", "Scene to preview (default: active scene)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	p := &preview{cfg: cfg, names: cfg.Scenes.Names()}
	name := cfg.Active
	if *sceneName != "" {
		name = *sceneName
	}
	for i, n := range p.names {
		if n == name {
			p.index = i
		}
	}
	if err := p.selectScene(p.index); err != nil {
		slog.Error("failed to build surface", "scene", name, "error", err)
		os.Exit(1)
	}

	rl.InitWindow(windowWidth, windowHeight, "Surface Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	img := rl.GenImageColor(textureSize, textureSize, rl.Black)
	texture := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	defer rl.UnloadTexture(texture)

	var t float64
	animating := true
	pixels := make([]color.RGBA, textureSize*textureSize)

	for !rl.WindowShouldClose() {
		if animating {
			t += float64(rl.GetFrameTime())
		}

		lo, hi := p.fill(pixels, t)
		rl.UpdateTexture(texture, pixels)

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		rl.DrawTexturePro(
			texture,
			rl.Rectangle{X: 0, Y: 0, Width: textureSize, Height: textureSize},
			rl.Rectangle{X: 10, Y: 10, Width: previewSize, Height: previewSize},
			rl.Vector2{},
			0,
			rl.White,
		)
		rl.DrawRectangleLines(10, 10, previewSize, previewSize, rl.DarkGray)

		statsY := int32(previewSize + 25)
		rl.DrawText(fmt.Sprintf("Scene: %s", p.names[p.index]), 15, statsY, 16, rl.DarkGray)
		rl.DrawText(fmt.Sprintf("Min: %.3f  Max: %.3f", lo, hi), 15, statsY+20, 16, rl.DarkGray)
		rl.DrawText(fmt.Sprintf("Time: %.1f", t), 15, statsY+40, 16, rl.DarkGray)

		panelX := float32(previewSize + 20)
		panelY := float32(10)

		rl.DrawText("Surface Parameters", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 35

		for _, s := range sliders {
			v := s.value(&p.params)
			rl.DrawText(s.label, int32(panelX), int32(panelY), 14, rl.Gray)
			panelY += 18
			next := gui.SliderBar(
				rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
				fmt.Sprintf("%.1f", s.min), fmt.Sprintf("%.1f", s.max),
				float32(*v), float32(s.min), float32(s.max),
			)
			rl.DrawText(fmt.Sprintf("%.3f", *v), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
			if next != float32(*v) {
				*v = float64(next)
			}
			panelY += 35
		}
		panelY += 10

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, toggleText(animating, "Stop", "Animate")) {
			animating = !animating
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Reset Time") {
			t = 0
		}
		panelY += 40

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "Next Scene") {
			if err := p.selectScene((p.index + 1) % len(p.names)); err != nil {
				slog.Error("failed to build surface", "scene", p.names[p.index], "error", err)
			}
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Reset Scene") {
			if err := p.selectScene(p.index); err != nil {
				slog.Error("failed to build surface", "scene", p.names[p.index], "error", err)
			}
		}
		panelY += 45

		rl.DrawText("Press C to copy YAML to clipboard", int32(panelX), int32(panelY), 12, rl.LightGray)
		if rl.IsKeyPressed(rl.KeyC) {
			rl.SetClipboardText(p.yaml())
		}

		rl.EndDrawing()
	}
}

// selectScene loads the surface section of scene i and resets the sliders to it.
func (p *preview) selectScene(i int) error {
	sc, ok := p.cfg.Scenes.Get(p.names[i])
	if !ok {
		return fmt.Errorf("unknown scene %q", p.names[i])
	}
	grid, err := systems.SurfaceFromConfig(sc.Surface)
	if err != nil {
		return err
	}
	floor, err := systems.NewGradient(sc.Surface.Color1, sc.Surface.Color2)
	if err != nil {
		return err
	}
	p.index = i
	p.surface = sc.Surface
	p.params = grid.Params()
	p.palette = systems.FloorPalette{Gradient: floor, Freq: sc.Surface.BlendFreq}
	return nil
}

// fill shades a top-down view of the surface into pixels and returns the height range.
// Heights are sampled directly so slider changes apply without rebuilding the grid.
func (p *preview) fill(pixels []color.RGBA, t float64) (lo, hi float64) {
	heights := make([]float64, len(pixels))
	lo, hi = math.Inf(1), math.Inf(-1)
	for y := 0; y < textureSize; y++ {
		v := (float64(y) + 0.5) / textureSize
		z := (v - 0.5) * p.surface.Depth
		for x := 0; x < textureSize; x++ {
			u := (float64(x) + 0.5) / textureSize
			h := systems.Height((u-0.5)*p.surface.Width, z, t, p.params)
			heights[y*textureSize+x] = h
			lo = math.Min(lo, h)
			hi = math.Max(hi, h)
		}
	}

	span := hi - lo
	for y := 0; y < textureSize; y++ {
		v := (float64(y) + 0.5) / textureSize
		for x := 0; x < textureSize; x++ {
			u := (float64(x) + 0.5) / textureSize
			shade := 0.5
			if span > 0 {
				shade = 0.25 + 0.75*(heights[y*textureSize+x]-lo)/span
			}
			c := p.palette.Blend(u, v)
			r, g, b := c.RGB255()
			pixels[y*textureSize+x] = color.RGBA{
				R: uint8(float64(r) * shade),
				G: uint8(float64(g) * shade),
				B: uint8(float64(b) * shade),
				A: 255,
			}
		}
	}
	return lo, hi
}

func (p *preview) yaml() string {
	var b strings.Builder
	fmt.Fprintf(&b, "scenes:\n  %s:\n    surface:\n", p.names[p.index])
	fmt.Fprintf(&b, "      amp_x: %.3f\n      freq_x: %.3f\n      speed_x: %.3f\n      phase_x: %.3f\n",
		p.params.AmpX, p.params.FreqX, p.params.SpeedX, p.params.PhaseX)
	fmt.Fprintf(&b, "      amp_z: %.3f\n      freq_z: %.3f\n      speed_z: %.3f\n      phase_z: %.3f\n",
		p.params.AmpZ, p.params.FreqZ, p.params.SpeedZ, p.params.PhaseZ)
	return b.String()
}

func toggleText(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}

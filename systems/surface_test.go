package systems

import (
	"errors"
	"math"
	"testing"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/pthm-cable/grotto/config"
)

// crystal floor uniforms from the cave scene
var caveFloor = SurfaceParams{AmpX: 0.5, FreqX: 0.8, SpeedX: 1, AmpZ: 0.5, FreqZ: 1.2, SpeedZ: 1}

func TestHeightIsPure(t *testing.T) {
	inputs := []struct{ x, z, t float64 }{
		{0, 0, 0},
		{12.5, -7.25, 3.3},
		{-50, 50, 1e6},
	}
	for _, in := range inputs {
		a := Height(in.x, in.z, in.t, caveFloor)
		b := Height(in.x, in.z, in.t, caveFloor)
		if math.Float64bits(a) != math.Float64bits(b) {
			t.Errorf("Height(%v, %v, %v) not bit-identical: %v vs %v", in.x, in.z, in.t, a, b)
		}
	}
}

func TestHeightMatchesFormula(t *testing.T) {
	x, z, tm := 1.5, -2.0, 0.75
	want := math.Sin(x*0.8+tm)*0.5 + math.Cos(z*1.2+tm)*0.5
	if got := Height(x, z, tm, caveFloor); math.Abs(got-want) > 1e-12 {
		t.Errorf("Height = %v, want %v", got, want)
	}
}

func TestHeightBoundedForLargeTime(t *testing.T) {
	limit := caveFloor.AmpX + caveFloor.AmpZ
	for _, tm := range []float64{1e3, 1e6, 1e9} {
		h := Height(10, 10, tm, caveFloor)
		if math.IsNaN(h) || math.Abs(h) > limit+1e-9 {
			t.Errorf("t=%v: height %v outside [-%v, %v]", tm, h, limit, limit)
		}
	}
}

func TestSurfaceGridRecomputes(t *testing.T) {
	g, err := NewSurfaceGrid(100, 100, 300, caveFloor)
	if err != nil {
		t.Fatal(err)
	}
	if g.Size() != 301 || len(g.Heights()) != 301*301 {
		t.Fatalf("expected 301x301 grid, got size %d with %d heights", g.Size(), len(g.Heights()))
	}

	// Corners sit on the plane edges
	if v := g.Vertex(0, 0); v.X != -50 || v.Z != -50 {
		t.Errorf("expected first vertex at (-50, -50), got %v", v)
	}
	if v := g.Vertex(300, 300); v.X != 50 || v.Z != 50 {
		t.Errorf("expected last vertex at (50, 50), got %v", v)
	}

	g.Update(2.5)
	first := append([]float64(nil), g.Heights()...)

	// Jumping around in time and back gives the same heights: no hidden state.
	g.Update(1000)
	g.Update(2.5)

	for idx, h := range g.Heights() {
		if math.Float64bits(h) != math.Float64bits(first[idx]) {
			t.Fatalf("vertex %d: %v != %v after revisiting t", idx, h, first[idx])
		}
	}

	for _, ij := range [][2]int{{0, 0}, {150, 42}, {300, 300}} {
		v := g.Vertex(ij[0], ij[1])
		want := Height(v.X, v.Z, 2.5, caveFloor)
		if math.Abs(v.Y-want) > 1e-12 {
			t.Errorf("vertex %v: height %v, want %v", ij, v.Y, want)
		}
	}
}

func TestSurfaceGridRejectsBadLayout(t *testing.T) {
	if _, err := NewSurfaceGrid(100, 100, 0, caveFloor); !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for zero segments, got %v", err)
	}
	if _, err := NewSurfaceGrid(100, 100, 301, caveFloor); !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for too many segments, got %v", err)
	}
	if _, err := NewSurfaceGrid(0, 100, 10, caveFloor); !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for zero width, got %v", err)
	}
}

func TestFloorPaletteBlend(t *testing.T) {
	g, err := NewGradient("#6a0dad", "#8a2be2")
	if err != nil {
		t.Fatal(err)
	}
	p := FloorPalette{Gradient: g, Freq: 10}

	// sin(0)*0.5+0.5 = 0.5: halfway between the two colors
	c := p.Blend(0, 0)
	want := g.A.BlendRgb(g.B, 0.5)
	if !colorClose(c, want) {
		t.Errorf("Blend(0,0) = %v, want %v", c, want)
	}

	if got := g.At(-1); got != g.A {
		t.Errorf("At clamps below 0: got %v, want %v", got, g.A)
	}
	if got := g.At(2); !colorClose(got, g.B) {
		t.Errorf("At clamps above 1: got %v, want %v", got, g.B)
	}
}

func TestSkyColor(t *testing.T) {
	g, err := NewGradient("#000080", "#1e90ff")
	if err != nil {
		t.Fatal(err)
	}
	if got := g.SkyColor(-1); got != g.A {
		t.Errorf("straight down should be the inner color, got %v", got)
	}
	if got := g.SkyColor(1); !colorClose(got, g.B) {
		t.Errorf("straight up should be the outer color, got %v", got)
	}
}

func colorClose(a, b colorful.Color) bool {
	return math.Abs(a.R-b.R) < 1e-12 && math.Abs(a.G-b.G) < 1e-12 && math.Abs(a.B-b.B) < 1e-12
}

func TestParseColorRejects(t *testing.T) {
	if _, err := ParseColor("not-a-color"); !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

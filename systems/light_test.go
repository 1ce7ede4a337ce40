package systems

import (
	"errors"
	"math"
	"testing"

	"github.com/pthm-cable/grotto/components"
	"github.com/pthm-cable/grotto/config"
)

func TestLightOrbitEndpoints(t *testing.T) {
	l := Light{
		Position: components.Point3{Y: 4},
		Orbit:    Orbit{Radius: 15, Speed: 1},
	}

	at0 := l.At(0).Position
	if math.Abs(at0.X) > 1e-12 || at0.Y != 4 || math.Abs(at0.Z-15) > 1e-12 {
		t.Errorf("t=0: expected (0, 4, 15), got %v", at0)
	}

	atQuarter := l.At(math.Pi / 2).Position
	if math.Abs(atQuarter.X-15) > 1e-9 || atQuarter.Y != 4 || math.Abs(atQuarter.Z) > 1e-9 {
		t.Errorf("t=pi/2: expected (15, 4, 0), got %v", atQuarter)
	}
}

func TestLightStaysOnOrbit(t *testing.T) {
	l := Light{
		Position: components.Point3{Y: 5},
		Orbit:    Orbit{Radius: 30, Speed: 0.3, BobAmp: 5, BobFreq: 0.7},
	}
	for tm := 0.0; tm < 200; tm += 0.37 {
		p := l.At(tm).Position
		r := math.Hypot(p.X, p.Z)
		if math.Abs(r-30) > 1e-9 {
			t.Fatalf("t=%v: radius %v, want 30", tm, r)
		}
		if p.Y < 0-1e-9 || p.Y > 10+1e-9 {
			t.Fatalf("t=%v: bob height %v outside [0, 10]", tm, p.Y)
		}
	}
}

func TestLightIsIdempotent(t *testing.T) {
	rig := NewLightRig(
		Light{Orbit: Orbit{Radius: 10, Speed: 2}, Pulse: Pulse{Base: 2, Amp: 0.5, Freq: 1.5}},
		Light{Position: components.Point3{X: 1, Y: 2, Z: 3}, Pulse: Pulse{Base: 1}},
	)

	a := append([]LightState(nil), rig.Update(12.5)...)
	rig.Update(99)
	b := rig.Update(12.5)

	for i := range a {
		if a[i] != b[i] {
			t.Errorf("light %d: state differs between identical t: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestLightPulse(t *testing.T) {
	l := Light{Pulse: Pulse{Base: 2, Amp: 0.5, Freq: 1.5}}

	if got := l.At(0).Intensity; got != 2 {
		t.Errorf("t=0: intensity %v, want 2", got)
	}
	peak := math.Pi / 2 / 1.5
	if got := l.At(peak).Intensity; math.Abs(got-2.5) > 1e-9 {
		t.Errorf("peak intensity %v, want 2.5", got)
	}
}

func TestStaticLightKeepsPosition(t *testing.T) {
	l := Light{Position: components.Point3{X: 0, Y: 10, Z: 0}}
	for _, tm := range []float64{0, 1, 1000} {
		if got := l.At(tm).Position; got != l.Position {
			t.Errorf("t=%v: static light moved to %v", tm, got)
		}
	}
}

func TestLightRigFromConfig(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}

	rig, err := LightRigFromConfig(cfg.Scenes.Nebula.Lights)
	if err != nil {
		t.Fatal(err)
	}
	if rig.Len() != 2 {
		t.Fatalf("expected 2 lights, got %d", rig.Len())
	}
	states := rig.Update(0)
	if states[0].Kind != LightAmbient || states[1].Kind != LightPoint {
		t.Errorf("unexpected kinds: %v, %v", states[0].Kind, states[1].Kind)
	}

	bad := []config.LightConfig{{Name: "x", Kind: "spot"}}
	if _, err := LightRigFromConfig(bad); !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for unknown kind, got %v", err)
	}
}

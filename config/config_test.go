package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}

	if cfg.Active != SceneCrystalCave {
		t.Errorf("expected active scene %q, got %q", SceneCrystalCave, cfg.Active)
	}

	s := cfg.Scene()
	if s == nil {
		t.Fatal("expected active scene to resolve")
	}
	if s.Shards.Count != 50 {
		t.Errorf("expected 50 shards, got %d", s.Shards.Count)
	}
	if s.Derived.Vertices != 301*301 {
		t.Errorf("expected %d vertices, got %d", 301*301, s.Derived.Vertices)
	}
	if s.Derived.Name != SceneCrystalCave {
		t.Errorf("expected derived name %q, got %q", SceneCrystalCave, s.Derived.Name)
	}
}

func TestEveryPresetValid(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}
	for _, name := range cfg.Scenes.Names() {
		s, ok := cfg.Scenes.Get(name)
		if !ok {
			t.Fatalf("preset %q missing", name)
		}
		if err := ValidateScene(s); err != nil {
			t.Errorf("preset %q invalid: %v", name, err)
		}
	}
}

func TestDerivedPeriods(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}

	neb := &cfg.Scenes.Nebula
	// star light orbits at 0.3 rad/s
	want := 2 * math.Pi / 0.3
	if got := neb.Derived.OrbitPeriods[1]; math.Abs(got-want) > 1e-9 {
		t.Errorf("orbit period = %v, want %v", got, want)
	}
	// ambient light does not orbit
	if got := neb.Derived.OrbitPeriods[0]; got != 0 {
		t.Errorf("static light orbit period = %v, want 0", got)
	}

	desert := &cfg.Scenes.Desert
	if got, want := desert.Derived.PropPeriod, 2*math.Pi/1.2; math.Abs(got-want) > 1e-9 {
		t.Errorf("prop period = %v, want %v", got, want)
	}
}

func TestOverlayYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.yaml")
	data := []byte("active: desert\nscenes:\n  desert:\n    particles:\n      count: 42\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("loading overlay: %v", err)
	}
	if cfg.Active != SceneDesert {
		t.Errorf("expected active %q, got %q", SceneDesert, cfg.Active)
	}
	if cfg.Scenes.Desert.Particles.Count != 42 {
		t.Errorf("expected overridden count 42, got %d", cfg.Scenes.Desert.Particles.Count)
	}
	// Untouched fields keep their defaults
	if cfg.Scenes.Desert.Particles.Bounds.Policy != PolicyRespawn {
		t.Errorf("expected respawn policy to survive overlay, got %q", cfg.Scenes.Desert.Particles.Bounds.Policy)
	}
}

func TestHUDFlag(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Screen.ShowHUD {
		t.Error("expected HUD on by default")
	}

	path := filepath.Join(t.TempDir(), "quiet.toml")
	if err := os.WriteFile(path, []byte("[screen]\nshow_hud = false\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err = Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Screen.ShowHUD {
		t.Error("expected overlay to turn the HUD off")
	}
}

func TestOverlayResolvesRelativePropPaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.yaml")
	data := []byte("scenes:\n  desert:\n    prop:\n      url: props/cactus.yaml\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := cfg.Scenes.Desert.Prop.URL, filepath.Join(dir, "props", "cactus.yaml"); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
	if got := cfg.Scenes.CrystalCave.Prop.URL; got != "builtin:geode.yaml" {
		t.Errorf("expected builtin URL untouched, got %q", got)
	}
}

func TestOverlayTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.toml")
	data := []byte("active = \"nebula\"\n\n[scenes.nebula.particles]\ncount = 7\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("loading overlay: %v", err)
	}
	if cfg.Active != SceneNebula {
		t.Errorf("expected active %q, got %q", SceneNebula, cfg.Active)
	}
	if cfg.Scenes.Nebula.Particles.Count != 7 {
		t.Errorf("expected overridden count 7, got %d", cfg.Scenes.Nebula.Particles.Count)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"negative particle count", func(c *Config) { c.Scenes.CrystalCave.Particles.Count = -1 }},
		{"zero pulse frequency", func(c *Config) { c.Scenes.CrystalCave.Lights[1].Pulse.Freq = 0 }},
		{"zero orbit speed", func(c *Config) { c.Scenes.Nebula.Lights[1].Orbit.Speed = 0 }},
		{"zero prop frequency", func(c *Config) { c.Scenes.Desert.Prop.Freq = 0 }},
		{"zero surface frequency", func(c *Config) { c.Scenes.CrystalCave.Surface.FreqX = 0 }},
		{"inverted bounds", func(c *Config) { c.Scenes.CrystalCave.Particles.Bounds.Min.Y = 20 }},
		{"respawn floor above ceiling", func(c *Config) { c.Scenes.Desert.Particles.Bounds.Min.Y = 30 }},
		{"unknown policy", func(c *Config) { c.Scenes.CrystalCave.Shards.Bounds.Policy = "teleport" }},
		{"unknown prop policy", func(c *Config) { c.Scenes.CrystalCave.Prop.Policy = "spin" }},
		{"too many segments", func(c *Config) { c.Scenes.CrystalCave.Surface.Segments = 1000 }},
		{"nan amplitude", func(c *Config) { c.Scenes.CrystalCave.Surface.AmpX = math.NaN() }},
		{"bad color", func(c *Config) { c.Scenes.CrystalCave.Surface.Color1 = "purple" }},
		{"unknown active scene", func(c *Config) { c.Active = "moon" }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := Load("")
			if err != nil {
				t.Fatalf("loading defaults: %v", err)
			}
			tc.mutate(cfg)
			err = cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	data := []byte("scenes:\n  crystal_cave:\n    particles:\n      count: -5\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestPendingTake(t *testing.T) {
	var p Pending
	if _, ok := p.Take(); ok {
		t.Fatal("expected empty pending slot")
	}

	a, b := &Config{Active: "a"}, &Config{Active: "b"}
	p.Publish(a)
	p.Publish(b)

	got, ok := p.Take()
	if !ok || got != b {
		t.Fatalf("expected latest config, got %v", got)
	}
	if _, ok := p.Take(); ok {
		t.Error("expected slot cleared after take")
	}
}

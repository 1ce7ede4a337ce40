// Package config provides configuration loading and access for the scene animator.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all animator configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen" toml:"screen"`
	Camera    CameraConfig    `yaml:"camera" toml:"camera"`
	Telemetry TelemetryConfig `yaml:"telemetry" toml:"telemetry"`
	Stream    StreamConfig    `yaml:"stream" toml:"stream"`

	// Active names the scene preset to run.
	Active string       `yaml:"active" toml:"active"`
	Scenes ScenesConfig `yaml:"scenes" toml:"scenes"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int    `yaml:"width" toml:"width"`
	Height    int    `yaml:"height" toml:"height"`
	TargetFPS int    `yaml:"target_fps" toml:"target_fps"`
	Title     string `yaml:"title" toml:"title"`
	ShowHUD   bool   `yaml:"show_hud" toml:"show_hud"` // Text overlay with frame stats
}

// CameraConfig holds perspective projection and orbit camera parameters.
type CameraConfig struct {
	FovY     float64 `yaml:"fov_y" toml:"fov_y"` // Vertical field of view in degrees
	Near     float64 `yaml:"near" toml:"near"`
	Far      float64 `yaml:"far" toml:"far"`
	Position Vec3    `yaml:"position" toml:"position"`
	Target   Vec3    `yaml:"target" toml:"target"`
	Orbit    float64 `yaml:"orbit" toml:"orbit"` // Auto-orbit speed in radians per second (0 = fixed)
}

// TelemetryConfig holds frame telemetry parameters.
type TelemetryConfig struct {
	PerfWindow   int     `yaml:"perf_window" toml:"perf_window"`     // Frames per rolling perf window
	LogInterval  float64 `yaml:"log_interval" toml:"log_interval"`   // Seconds between perf log lines
	SceneSamples int     `yaml:"scene_samples" toml:"scene_samples"` // Frames between scene.csv rows
}

// StreamConfig holds websocket state feed parameters.
type StreamConfig struct {
	Every     int `yaml:"every" toml:"every"`           // Publish a snapshot every N frames
	MaxPoints int `yaml:"max_points" toml:"max_points"` // Particle positions per snapshot (subsampled)
}

// ScenesConfig holds the four scene presets.
// Fixed fields (rather than a map) let overlay files patch a single value in place.
type ScenesConfig struct {
	CrystalCave SceneConfig `yaml:"crystal_cave" toml:"crystal_cave"`
	Nebula      SceneConfig `yaml:"nebula" toml:"nebula"`
	Desert      SceneConfig `yaml:"desert" toml:"desert"`
	Snowfield   SceneConfig `yaml:"snowfield" toml:"snowfield"`
}

// Scene names as used by Config.Active.
const (
	SceneCrystalCave = "crystal_cave"
	SceneNebula      = "nebula"
	SceneDesert      = "desert"
	SceneSnowfield   = "snowfield"
)

// Names returns every preset name in a stable order.
func (s *ScenesConfig) Names() []string {
	return []string{SceneCrystalCave, SceneNebula, SceneDesert, SceneSnowfield}
}

// Get returns the preset with the given name.
func (s *ScenesConfig) Get(name string) (*SceneConfig, bool) {
	switch name {
	case SceneCrystalCave:
		return &s.CrystalCave, true
	case SceneNebula:
		return &s.Nebula, true
	case SceneDesert:
		return &s.Desert, true
	case SceneSnowfield:
		return &s.Snowfield, true
	}
	return nil, false
}

// SceneConfig describes one decorative scene.
type SceneConfig struct {
	Background string         `yaml:"background" toml:"background"` // Hex color
	Particles  ParticleConfig `yaml:"particles" toml:"particles"`
	Shards     ShardConfig    `yaml:"shards" toml:"shards"`
	Surface    SurfaceConfig  `yaml:"surface" toml:"surface"`
	Sky        SkyConfig      `yaml:"sky" toml:"sky"`
	Lights     []LightConfig  `yaml:"lights" toml:"lights"`
	Prop       PropConfig     `yaml:"prop" toml:"prop"`

	// Derived values computed after validation
	Derived DerivedConfig `yaml:"-" toml:"-"`
}

// Vec3 is a configuration triple.
type Vec3 struct {
	X float64 `yaml:"x" toml:"x"`
	Y float64 `yaml:"y" toml:"y"`
	Z float64 `yaml:"z" toml:"z"`
}

// VolumeConfig is an axis-aligned box used for spawning.
type VolumeConfig struct {
	Min Vec3 `yaml:"min" toml:"min"`
	Max Vec3 `yaml:"max" toml:"max"`
}

// BoundsConfig describes a boundary policy and its thresholds.
// For the respawn policy Min.Y is the floor and Max.Y the ceiling.
type BoundsConfig struct {
	Policy string `yaml:"policy" toml:"policy"` // wrap, bounce, respawn, none
	Axes   string `yaml:"axes" toml:"axes"`     // Subset of "xyz" the policy applies to
	Min    Vec3   `yaml:"min" toml:"min"`
	Max    Vec3   `yaml:"max" toml:"max"`
}

// VelocityConfig describes the per-particle velocity distribution.
type VelocityConfig struct {
	Mode     string  `yaml:"mode" toml:"mode"`           // vector or vertical
	Base     Vec3    `yaml:"base" toml:"base"`           // vector mode: mean velocity
	Spread   Vec3    `yaml:"spread" toml:"spread"`       // vector mode: uniform +/- spread/2 per axis
	MinSpeed float64 `yaml:"min_speed" toml:"min_speed"` // vertical mode: signed speed range
	MaxSpeed float64 `yaml:"max_speed" toml:"max_speed"`
}

// ParticleConfig holds particle field parameters.
type ParticleConfig struct {
	Count    int            `yaml:"count" toml:"count"`
	Units    string         `yaml:"units" toml:"units"` // frame (velocity per call) or second (scaled by delta)
	Spawn    VolumeConfig   `yaml:"spawn" toml:"spawn"`
	Velocity VelocityConfig `yaml:"velocity" toml:"velocity"`
	Bounds   BoundsConfig   `yaml:"bounds" toml:"bounds"`
	Size     float64        `yaml:"size" toml:"size"`
	Color    string         `yaml:"color" toml:"color"`
}

// ShardConfig holds parameters for the drifting shard group.
type ShardConfig struct {
	Count    int            `yaml:"count" toml:"count"`
	Spawn    VolumeConfig   `yaml:"spawn" toml:"spawn"`
	Velocity VelocityConfig `yaml:"velocity" toml:"velocity"`
	Spin     Vec3           `yaml:"spin" toml:"spin"` // Radians per second per axis
	Bounds   BoundsConfig   `yaml:"bounds" toml:"bounds"`
	Radius   float64        `yaml:"radius" toml:"radius"`
	Height   float64        `yaml:"height" toml:"height"`
	Color    string         `yaml:"color" toml:"color"`
	Emissive string         `yaml:"emissive" toml:"emissive"`
}

// SurfaceConfig holds oscillating surface parameters.
type SurfaceConfig struct {
	Width     float64 `yaml:"width" toml:"width"`
	Depth     float64 `yaml:"depth" toml:"depth"`
	Segments  int     `yaml:"segments" toml:"segments"`
	AmpX      float64 `yaml:"amp_x" toml:"amp_x"`
	FreqX     float64 `yaml:"freq_x" toml:"freq_x"`
	SpeedX    float64 `yaml:"speed_x" toml:"speed_x"`
	PhaseX    float64 `yaml:"phase_x" toml:"phase_x"`
	AmpZ      float64 `yaml:"amp_z" toml:"amp_z"`
	FreqZ     float64 `yaml:"freq_z" toml:"freq_z"`
	SpeedZ    float64 `yaml:"speed_z" toml:"speed_z"`
	PhaseZ    float64 `yaml:"phase_z" toml:"phase_z"`
	Color1    string  `yaml:"color1" toml:"color1"`
	Color2    string  `yaml:"color2" toml:"color2"`
	BlendFreq float64 `yaml:"blend_freq" toml:"blend_freq"`
}

// SkyConfig holds the skybox gradient.
type SkyConfig struct {
	Radius float64 `yaml:"radius" toml:"radius"`
	Inner  string  `yaml:"inner" toml:"inner"`
	Outer  string  `yaml:"outer" toml:"outer"`
}

// OrbitConfig describes a circular light orbit. Radius 0 keeps the light static.
type OrbitConfig struct {
	Radius  float64 `yaml:"radius" toml:"radius"`
	Speed   float64 `yaml:"speed" toml:"speed"`
	BobAmp  float64 `yaml:"bob_amp" toml:"bob_amp"`
	BobFreq float64 `yaml:"bob_freq" toml:"bob_freq"`
}

// PulseConfig describes a sinusoidal intensity pulse.
type PulseConfig struct {
	Base float64 `yaml:"base" toml:"base"`
	Amp  float64 `yaml:"amp" toml:"amp"`
	Freq float64 `yaml:"freq" toml:"freq"`
}

// LightConfig holds a single light of the rig.
type LightConfig struct {
	Name     string      `yaml:"name" toml:"name"`
	Kind     string      `yaml:"kind" toml:"kind"` // point or ambient
	Color    string      `yaml:"color" toml:"color"`
	Position Vec3        `yaml:"position" toml:"position"` // Static position; Y is the orbit base height
	Range    float64     `yaml:"range" toml:"range"`
	Orbit    OrbitConfig `yaml:"orbit" toml:"orbit"`
	Pulse    PulseConfig `yaml:"pulse" toml:"pulse"`
}

// PropConfig holds the loaded prop and its animation policy.
type PropConfig struct {
	URL      string  `yaml:"url" toml:"url"`       // Empty = no prop
	Policy   string  `yaml:"policy" toml:"policy"` // accumulate or periodic
	Rate     Vec3    `yaml:"rate" toml:"rate"`     // accumulate: radians per second
	Amp      Vec3    `yaml:"amp" toml:"amp"`       // periodic: radians
	Freq     float64 `yaml:"freq" toml:"freq"`     // periodic: angular frequency
	BobAmp   float64 `yaml:"bob_amp" toml:"bob_amp"`
	BobFreq  float64 `yaml:"bob_freq" toml:"bob_freq"`
	Position Vec3    `yaml:"position" toml:"position"`
}

// DerivedConfig holds computed values derived from a validated scene.
type DerivedConfig struct {
	Name          string    // Preset name
	LightPeriods  []float64 // Seconds per pulse cycle, 0 when the light does not pulse
	OrbitPeriods  []float64 // Seconds per orbit, 0 for static lights
	SurfacePeriod float64   // Seconds until the X term repeats, 0 when flat
	PropPeriod    float64   // Seconds per periodic sway, 0 for accumulate
	Vertices      int       // (Segments+1)^2
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML or TOML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := cfg.overlay(path, data); err != nil {
			return nil, err
		}
		cfg.resolvePropURLs(filepath.Dir(path))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// overlay unmarshals data into the already-populated config.
// Only fields present in the file are overwritten.
func (c *Config) overlay(path string, data []byte) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("parsing config file: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("parsing config file: %w", err)
		}
	}
	return nil
}

// resolvePropURLs makes relative prop file paths relative to dir, the
// directory of the overlay file, instead of the working directory.
func (c *Config) resolvePropURLs(dir string) {
	for _, name := range c.Scenes.Names() {
		s, _ := c.Scenes.Get(name)
		u := s.Prop.URL
		if u == "" || filepath.IsAbs(u) || strings.Contains(u, ":") {
			continue
		}
		s.Prop.URL = filepath.Join(dir, u)
	}
}

// Scene returns the active scene preset.
func (c *Config) Scene() *SceneConfig {
	s, _ := c.Scenes.Get(c.Active)
	return s
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	for _, name := range c.Scenes.Names() {
		s, _ := c.Scenes.Get(name)
		s.computeDerived(name)
	}
}

func (s *SceneConfig) computeDerived(name string) {
	d := DerivedConfig{Name: name}

	d.LightPeriods = make([]float64, len(s.Lights))
	d.OrbitPeriods = make([]float64, len(s.Lights))
	for i, l := range s.Lights {
		if l.Pulse.Amp != 0 {
			d.LightPeriods[i] = period(l.Pulse.Freq)
		}
		if l.Orbit.Radius > 0 {
			d.OrbitPeriods[i] = period(l.Orbit.Speed)
		}
	}

	if s.Surface.AmpX != 0 && s.Surface.SpeedX != 0 {
		d.SurfacePeriod = period(s.Surface.SpeedX)
	}
	if s.Prop.Policy == PolicyPeriodic {
		d.PropPeriod = period(s.Prop.Freq)
	}
	d.Vertices = (s.Surface.Segments + 1) * (s.Surface.Segments + 1)

	s.Derived = d
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

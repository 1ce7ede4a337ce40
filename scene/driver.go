package scene

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/pthm-cable/grotto/assets"
	"github.com/pthm-cable/grotto/clock"
	"github.com/pthm-cable/grotto/config"
	"github.com/pthm-cable/grotto/telemetry"
)

// Renderer draws a stepped scene. It is called once per frame on the frame
// loop's goroutine.
type Renderer interface {
	Render(s *Scene) error
	ShouldClose() bool
}

// Publisher receives frame snapshots. Publish must not block on I/O.
type Publisher interface {
	Publish(s *telemetry.Snapshot) error
}

// Options configures a Driver. Only Config is required.
type Options struct {
	Config   *config.Config
	Clock    *clock.Clock
	Renderer Renderer
	Loader   *assets.Loader
	Reloads  *config.Pending
	Stream   Publisher
	Output   *telemetry.OutputManager
	Seed     int64

	// MaxFrames stops Run after this many frames (0 = unbounded).
	MaxFrames uint64
	// LogStats enables periodic perf log lines.
	LogStats bool
}

// Driver runs the frame loop: tick the clock, step the scene, render,
// then publish telemetry.
type Driver struct {
	cfg      *config.Config
	clock    *clock.Clock
	renderer Renderer
	loader   *assets.Loader
	reloads  *config.Pending
	stream   Publisher
	output   *telemetry.OutputManager
	rng      *rand.Rand

	scene     *Scene
	perf      *telemetry.PerfCollector
	collector *telemetry.Collector

	ctx       context.Context
	frame     uint64
	maxFrames uint64
	logStats  bool
	lastLog   float64
}

// NewDriver builds the active scene and starts loading its prop.
// ctx bounds background asset loads.
func NewDriver(ctx context.Context, opts Options) (*Driver, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("%w: driver needs a config", config.ErrInvalidConfig)
	}
	d := &Driver{
		cfg:       opts.Config,
		clock:     opts.Clock,
		renderer:  opts.Renderer,
		loader:    opts.Loader,
		reloads:   opts.Reloads,
		stream:    opts.Stream,
		output:    opts.Output,
		rng:       rand.New(rand.NewSource(opts.Seed)),
		perf:      telemetry.NewPerfCollector(opts.Config.Telemetry.PerfWindow),
		collector: telemetry.NewCollector(opts.Config.Telemetry.SceneSamples),
		ctx:       ctx,
		maxFrames: opts.MaxFrames,
		logStats:  opts.LogStats,
	}
	if d.clock == nil {
		d.clock = clock.New(nil)
	}
	if d.loader == nil {
		d.loader = assets.NewLoader(nil)
	}

	s, err := FromConfig(d.cfg, d.cfg.Screen.Width, d.cfg.Screen.Height, d.rng)
	if err != nil {
		return nil, err
	}
	d.install(s)

	if err := d.output.WriteConfig(d.cfg); err != nil {
		slog.Error("failed to write config snapshot", "error", err)
	}
	return d, nil
}

// install makes s the current scene and starts its prop load.
func (d *Driver) install(s *Scene) {
	s.SetPerf(d.perf)
	d.scene = s
	s.LoadProp(d.ctx, d.loader)
	slog.Info("scene ready",
		"scene", s.Name,
		"particles", s.Particles.Len(),
		"shards", s.Shards.Count(),
		"vertices", s.Config().Derived.Vertices,
		"lights", s.Lights.Len(),
		"prop", s.Config().Prop.URL,
	)
}

// reload swaps in a scene built from a newly published config.
// A config that fails to build leaves the running scene in place.
func (d *Driver) reload() {
	if d.reloads == nil {
		return
	}
	cfg, ok := d.reloads.Take()
	if !ok {
		return
	}

	w, h := int(d.scene.Camera.ViewportW), int(d.scene.Camera.ViewportH)
	s, err := FromConfig(cfg, w, h, d.rng)
	if err != nil {
		slog.Error("scene rebuild failed, keeping current scene", "error", err)
		return
	}
	d.cfg = cfg
	d.perf = telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow)
	d.collector = telemetry.NewCollector(cfg.Telemetry.SceneSamples)
	d.install(s)
}

// Frame runs one iteration of the loop.
func (d *Driver) Frame() error {
	d.reload()

	elapsed, delta := d.clock.Tick()
	d.frame++

	d.perf.StartFrame()
	d.scene.Step(elapsed, delta)

	if d.renderer != nil {
		d.perf.StartPhase(telemetry.PhaseRender)
		if err := d.renderer.Render(d.scene); err != nil {
			return fmt.Errorf("rendering frame %d: %w", d.frame, err)
		}
	}

	if d.stream != nil && d.cfg.Stream.Every > 0 && d.frame%uint64(d.cfg.Stream.Every) == 0 {
		d.perf.StartPhase(telemetry.PhaseStream)
		if err := d.stream.Publish(d.scene.Snapshot(d.frame, d.cfg.Stream.MaxPoints)); err != nil {
			slog.Warn("snapshot publish failed", "error", err)
		}
	}

	d.perf.EndFrame()
	d.perf.RecordPresent()

	d.flushTelemetry(elapsed)
	return nil
}

// flushTelemetry writes scene samples and perf stats when their windows close.
func (d *Driver) flushTelemetry(elapsed float64) {
	d.collector.RecordBoundaryEvents(d.scene.BoundaryEvents())
	if d.collector.ShouldFlush(d.frame) {
		sample := d.collector.Flush(d.scene.FrameState(d.frame))
		if err := d.output.WriteScene(sample); err != nil {
			slog.Error("failed to write scene sample", "error", err)
		}
	}

	interval := d.cfg.Telemetry.LogInterval
	if interval <= 0 || elapsed-d.lastLog < interval {
		return
	}
	d.lastLog = elapsed

	stats := d.perf.Stats()
	if d.logStats {
		stats.LogStats()
	}
	if err := d.output.WritePerf(stats, d.frame); err != nil {
		slog.Error("failed to write perf", "error", err)
	}
}

// Run loops until ctx is cancelled, the renderer asks to close or MaxFrames
// frames have run.
func (d *Driver) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		if d.renderer != nil && d.renderer.ShouldClose() {
			return nil
		}
		if d.maxFrames > 0 && d.frame >= d.maxFrames {
			return nil
		}
		if err := d.Frame(); err != nil {
			return err
		}
	}
}

// Close writes a final snapshot to the output directory.
func (d *Driver) Close() error {
	path, err := d.output.WriteSnapshot(d.scene.Snapshot(d.frame, 0))
	if err != nil {
		return fmt.Errorf("writing final snapshot: %w", err)
	}
	if path != "" {
		slog.Info("final snapshot saved", "path", path, "frame", d.frame)
	}
	return nil
}

// Scene returns the current scene.
func (d *Driver) Scene() *Scene { return d.scene }

// Frames returns the number of frames run.
func (d *Driver) Frames() uint64 { return d.frame }

// Perf returns the current perf collector.
func (d *Driver) Perf() *telemetry.PerfCollector { return d.perf }

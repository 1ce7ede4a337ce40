package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/grotto/assets"
	"github.com/pthm-cable/grotto/clock"
	"github.com/pthm-cable/grotto/config"
	"github.com/pthm-cable/grotto/renderer"
	"github.com/pthm-cable/grotto/scene"
	"github.com/pthm-cable/grotto/stream"
	"github.com/pthm-cable/grotto/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to a YAML or TOML config overlay (empty = use defaults)")
	sceneName := flag.String("scene", "", "Scene preset to run (overrides config)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output perf stats via slog")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs, config and final snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxFrames := flag.Uint64("max-frames", 0, "Stop after N frames (0 = unlimited)")
	step := flag.Duration("step", time.Second/60, "Fixed frame step in headless mode")
	serve := flag.String("serve", "", "Serve frame snapshots over websocket on this address, e.g. :8080")
	watch := flag.Bool("watch", false, "Reload the scene when the config file changes")

	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	if *sceneName != "" {
		if _, ok := cfg.Scenes.Get(*sceneName); !ok {
			slog.Error("unknown scene", "scene", *sceneName, "available", cfg.Scenes.Names())
			os.Exit(1)
		}
		cfg.Active = *sceneName
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	output, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		slog.Error("failed to create output", "error", err)
		os.Exit(1)
	}
	defer output.Close()

	opts := scene.Options{
		Config:    cfg,
		Loader:    assets.NewLoader(nil),
		Output:    output,
		Seed:      rngSeed,
		MaxFrames: *maxFrames,
		LogStats:  *logStats,
	}

	if *serve != "" {
		hub := stream.NewHub()
		opts.Stream = hub
		go func() {
			if err := hub.Serve(ctx, *serve); err != nil {
				slog.Error("stream server stopped", "error", err)
			}
		}()
	}

	if *watch {
		if *configPath == "" {
			slog.Warn("-watch needs -config, ignoring")
		} else {
			opts.Reloads = &config.Pending{}
			if err := config.Watch(ctx, *configPath, opts.Reloads); err != nil {
				slog.Error("failed to watch config", "error", err)
				os.Exit(1)
			}
		}
	}

	if *headless {
		opts.Clock = clock.New(clock.NewFixed(*step))
		slog.Info("starting headless run",
			"scene", cfg.Active,
			"seed", rngSeed,
			"max_frames", *maxFrames,
			"step", step.String(),
		)
	} else {
		rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
		rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), cfg.Screen.Title)
		defer rl.CloseWindow()
		rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

		r := renderer.New(cfg.Screen.ShowHUD)
		defer r.Unload()
		opts.Renderer = r

		c := clock.New(nil)
		c.SetMaxDelta(0.25)
		opts.Clock = c
	}

	d, err := scene.NewDriver(ctx, opts)
	if err != nil {
		slog.Error("failed to build scene", "error", err)
		os.Exit(1)
	}

	if err := d.Run(ctx); err != nil {
		slog.Error("frame loop failed", "error", err)
	}
	if err := d.Close(); err != nil {
		slog.Error("shutdown", "error", err)
	}
	d.Perf().Stats().LogStats()
	slog.Info("stopped", "frames", d.Frames())
}

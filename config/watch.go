package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
)

// Pending holds the most recent reloaded config until the frame loop takes it.
type Pending struct {
	next atomic.Pointer[Config]
}

// Publish stores cfg as the latest pending config, replacing any untaken one.
func (p *Pending) Publish(cfg *Config) {
	p.next.Store(cfg)
}

// Take returns the pending config, if any, and clears it.
func (p *Pending) Take() (*Config, bool) {
	cfg := p.next.Swap(nil)
	return cfg, cfg != nil
}

// Watch reloads path whenever it is written and publishes valid configs to dst.
// Invalid files are logged and ignored; the previous config stays active.
// The watcher stops when ctx is done.
func Watch(ctx context.Context, path string, dst *Pending) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating config watcher: %w", err)
	}

	// Editors often replace files via rename, so watch the directory.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watching config dir: %w", err)
	}

	target := filepath.Clean(path)
	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				cfg, err := Load(path)
				if err != nil {
					slog.Error("config reload rejected", "path", path, "error", err)
					continue
				}
				slog.Info("config reloaded", "path", path, "scene", cfg.Active)
				dst.Publish(cfg)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Error("config watcher error", "error", err)
			}
		}
	}()

	return nil
}

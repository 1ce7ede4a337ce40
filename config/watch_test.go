package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// waitFor polls p until a config with the wanted active scene shows up.
// A write can be observed mid-truncate, so other valid configs may come first.
func waitFor(t *testing.T, p *Pending, active string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cfg, ok := p.Take(); ok && cfg.Active == active {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for reload to %q", active)
}

func TestWatchPublishesReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grotto.yaml")
	if err := os.WriteFile(path, []byte("active: nebula\n"), 0644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var p Pending
	if err := Watch(ctx, path, &p); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(path, []byte("active: desert\n"), 0644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, &p, SceneDesert)

	// An invalid file is skipped; the next valid write still comes through.
	if err := os.WriteFile(path, []byte("active: volcano\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("active: snowfield\n"), 0644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, &p, SceneSnowfield)
}

func TestWatchIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "grotto.yaml")
	if err := os.WriteFile(path, []byte("active: nebula\n"), 0644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var p Pending
	if err := Watch(ctx, path, &p); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("active: desert\n"), 0644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)
	if cfg, ok := p.Take(); ok {
		t.Errorf("unexpected reload from unrelated file: %q", cfg.Active)
	}
}

func TestWatchMissingDir(t *testing.T) {
	var p Pending
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "nope", "grotto.yaml"), &p)
	if err == nil {
		t.Error("expected error for a missing directory")
	}
}

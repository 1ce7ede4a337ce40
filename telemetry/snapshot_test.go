package telemetry

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSnapshotSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()

	snapshot := &Snapshot{
		Version:    SnapshotVersion,
		Scene:      "crystal_cave",
		Frame:      600,
		Elapsed:    10,
		Background: "#202020",
		Lights: []LightSnapshot{
			{Name: "glow", Kind: "point", Color: "#ffffff", Position: [3]float64{0, 10, 0}, Intensity: 2.5},
		},
		Prop:      &PropSnapshot{Name: "geode", Rotation: [3]float64{0, 3, 0}, Scale: 1},
		Particles: [][3]float32{{1, 2, 3}, {-1, -2, -3}},
	}

	path, err := SaveSnapshot(snapshot, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	if filepath.Base(path) != "snapshot_crystal_cave_600.json" {
		t.Errorf("unexpected file name %q", filepath.Base(path))
	}

	loaded, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}
	if loaded.Scene != snapshot.Scene || loaded.Frame != snapshot.Frame {
		t.Errorf("header mismatch: %+v", loaded)
	}
	if len(loaded.Lights) != 1 || loaded.Lights[0].Intensity != 2.5 {
		t.Errorf("lights mismatch: %+v", loaded.Lights)
	}
	if loaded.Prop == nil || loaded.Prop.Rotation[1] != 3 {
		t.Errorf("prop mismatch: %+v", loaded.Prop)
	}
	if len(loaded.Particles) != 2 || loaded.Particles[1][2] != -3 {
		t.Errorf("particles mismatch: %v", loaded.Particles)
	}
}

func TestLoadSnapshotRejectsVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.json")
	if err := os.WriteFile(path, []byte(`{"version": 99}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSnapshot(path); err == nil {
		t.Error("expected error for unknown version")
	}
}

func TestCollectorWindows(t *testing.T) {
	c := NewCollector(3)

	var flushed []SceneSample
	for frame := uint64(1); frame <= 7; frame++ {
		c.RecordBoundaryEvents(2)
		if c.ShouldFlush(frame) {
			flushed = append(flushed, c.Flush(FrameState{
				Frame:       frame,
				Intensities: []float64{1, 3},
			}))
		}
	}

	if len(flushed) != 2 {
		t.Fatalf("expected 2 windows, got %d", len(flushed))
	}
	if flushed[0].Frame != 3 || flushed[1].Frame != 6 {
		t.Errorf("unexpected window ends: %d, %d", flushed[0].Frame, flushed[1].Frame)
	}
	if flushed[0].BoundaryEvents != 6 || flushed[1].BoundaryEvents != 6 {
		t.Errorf("expected 6 events per window, got %d, %d", flushed[0].BoundaryEvents, flushed[1].BoundaryEvents)
	}
	if flushed[0].IntensityMean != 2 {
		t.Errorf("expected mean intensity 2, got %v", flushed[0].IntensityMean)
	}
}

func TestCollectorIntensityPercentiles(t *testing.T) {
	c := NewCollector(1)
	s := c.Flush(FrameState{Frame: 1, Intensities: []float64{4, 1, 3, 2}})

	if s.IntensityP50 != 2 {
		t.Errorf("expected p50 2, got %v", s.IntensityP50)
	}
	if s.IntensityP95 != 4 {
		t.Errorf("expected p95 4, got %v", s.IntensityP95)
	}
}

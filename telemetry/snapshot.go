package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot is a compact JSON view of one frame, streamed to browser
// renderers and written to disk at shutdown.
type Snapshot struct {
	Version int     `json:"version"`
	Scene   string  `json:"scene"`
	Frame   uint64  `json:"frame"`
	Elapsed float64 `json:"elapsed"`

	Background string `json:"background"`

	Lights []LightSnapshot `json:"lights"`
	Prop   *PropSnapshot   `json:"prop,omitempty"`

	// Particles is a subsample of particle positions.
	Particles    [][3]float32 `json:"particles"`
	ParticleSize float64      `json:"particle_size"`
	Shards       []ShardState `json:"shards,omitempty"`

	SurfaceMin float64 `json:"surface_min"`
	SurfaceMax float64 `json:"surface_max"`
}

// LightSnapshot is one light at the snapshot frame.
type LightSnapshot struct {
	Name      string     `json:"name"`
	Kind      string     `json:"kind"`
	Color     string     `json:"color"`
	Position  [3]float64 `json:"position"`
	Intensity float64    `json:"intensity"`
}

// PropSnapshot is the prop transform at the snapshot frame.
type PropSnapshot struct {
	Name     string     `json:"name"`
	Rotation [3]float64 `json:"rotation"`
	Position [3]float64 `json:"position"`
	Scale    float64    `json:"scale"`
}

// ShardState is one shard at the snapshot frame.
type ShardState struct {
	Position [3]float32 `json:"p"`
	Rotation [3]float32 `json:"r"`
}

// SaveSnapshot writes a snapshot to dir and returns the file path.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	name := fmt.Sprintf("snapshot_%s_%d.json", snapshot.Scene, snapshot.Frame)
	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snapshot.Version != SnapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", snapshot.Version)
	}
	return &snapshot, nil
}

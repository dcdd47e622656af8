package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds the particle state of a run at one tick.
type Snapshot struct {
	Version  int    `json:"version"`
	RNGSeed  int64  `json:"rng_seed"`
	EngineID string `json:"engine_id"`

	Size int   `json:"size"`
	Tick int64 `json:"tick"`

	Cursor   int     `json:"cursor"`
	Emitted  int64   `json:"emitted"`
	Progress float64 `json:"progress"`

	// RGBA texels, size*size*4 floats each
	Positions  []float32 `json:"positions"`
	Velocities []float32 `json:"velocities"`

	Bookmark *Bookmark `json:"bookmark,omitempty"`
}

// Validate checks that the buffers match the field size.
func (s *Snapshot) Validate() error {
	if s.Version != SnapshotVersion {
		return fmt.Errorf("snapshot version %d, want %d", s.Version, SnapshotVersion)
	}
	want := s.Size * s.Size * 4
	if s.Size < 1 || len(s.Positions) != want || len(s.Velocities) != want {
		return fmt.Errorf("snapshot buffers (%d, %d floats) do not match size %d",
			len(s.Positions), len(s.Velocities), s.Size)
	}
	return nil
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	// Build filename
	name := fmt.Sprintf("snapshot_%d", snapshot.Tick)
	if snapshot.Bookmark != nil {
		// Sanitize bookmark type for filename
		sanitized := strings.ReplaceAll(string(snapshot.Bookmark.Type), " ", "_")
		name = fmt.Sprintf("snapshot_%d_%s", snapshot.Tick, sanitized)
	}
	name += ".json"

	path := filepath.Join(dir, name)

	data, err := json.Marshal(snapshot)
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
	if err := snapshot.Validate(); err != nil {
		return nil, err
	}

	return &snapshot, nil
}

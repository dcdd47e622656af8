package telemetry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testSnapshot(size int) *Snapshot {
	n := size * size * 4
	s := &Snapshot{
		Version:    SnapshotVersion,
		RNGSeed:    42,
		EngineID:   "test",
		Size:       size,
		Tick:       1000,
		Cursor:     3,
		Emitted:    7,
		Progress:   1,
		Positions:  make([]float32, n),
		Velocities: make([]float32, n),
	}
	for i := range s.Positions {
		s.Positions[i] = float32(i) * 0.5
		s.Velocities[i] = -float32(i) * 0.01
	}
	return s
}

func TestSnapshotSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	snapshot := testSnapshot(2)

	path, err := SaveSnapshot(snapshot, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	expectedPath := filepath.Join(tmpDir, "snapshot_1000.json")
	if path != expectedPath {
		t.Errorf("expected path %s, got %s", expectedPath, path)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Fatal("snapshot file was not created")
	}

	loaded, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}

	if loaded.RNGSeed != 42 || loaded.EngineID != "test" {
		t.Errorf("identity mismatch: seed %d, id %q", loaded.RNGSeed, loaded.EngineID)
	}
	if loaded.Tick != 1000 || loaded.Cursor != 3 || loaded.Emitted != 7 {
		t.Errorf("counters mismatch: tick %d, cursor %d, emitted %d", loaded.Tick, loaded.Cursor, loaded.Emitted)
	}
	for i := range snapshot.Positions {
		if loaded.Positions[i] != snapshot.Positions[i] || loaded.Velocities[i] != snapshot.Velocities[i] {
			t.Fatalf("texel data mismatch at %d", i)
		}
	}
}

func TestSnapshotWithBookmark(t *testing.T) {
	tmpDir := t.TempDir()

	snapshot := testSnapshot(1)
	snapshot.Tick = 500
	snapshot.Bookmark = &Bookmark{
		Type:        BookmarkFieldFilled,
		Tick:        500,
		Description: "Every particle emitted",
	}

	path, err := SaveSnapshot(snapshot, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	if !strings.HasSuffix(path, "snapshot_500_field_filled.json") {
		t.Errorf("unexpected snapshot name %s", path)
	}

	loaded, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}
	if loaded.Bookmark == nil || loaded.Bookmark.Type != BookmarkFieldFilled {
		t.Errorf("bookmark not restored: %+v", loaded.Bookmark)
	}
}

func TestLoadSnapshotRejectsMismatch(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Snapshot)
	}{
		{"version", func(s *Snapshot) { s.Version = SnapshotVersion + 1 }},
		{"short positions", func(s *Snapshot) { s.Positions = s.Positions[:4] }},
		{"short velocities", func(s *Snapshot) { s.Velocities = nil }},
		{"zero size", func(s *Snapshot) { s.Size = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testSnapshot(2)
			tt.mutate(s)

			data, err := json.Marshal(s)
			if err != nil {
				t.Fatal(err)
			}
			path := filepath.Join(t.TempDir(), "bad.json")
			if err := os.WriteFile(path, data, 0644); err != nil {
				t.Fatal(err)
			}

			if _, err := LoadSnapshot(path); err == nil {
				t.Error("expected error")
			}
		})
	}
}

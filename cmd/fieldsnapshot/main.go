// Field snapshot tool - runs the engine headlessly for N ticks, or loads a
// saved snapshot, and renders the position buffer to a PNG file for inspection.
//
// Usage: go run ./cmd/fieldsnapshot -ticks 300 -out field.png
//
//	go run ./cmd/fieldsnapshot -from snapshots/snapshot_600.json -out field.png
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/pingpong/camera"
	"github.com/pthm-cable/pingpong/config"
	"github.com/pthm-cable/pingpong/engine"
	"github.com/pthm-cable/pingpong/field"
	"github.com/pthm-cable/pingpong/renderer"
	"github.com/pthm-cable/pingpong/telemetry"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	fromPath := flag.String("from", "", "Render a saved snapshot instead of simulating")
	outPath := flag.String("out", "field.png", "Output PNG path")
	ticks := flag.Int("ticks", 300, "Ticks to simulate before the snapshot")
	width := flag.Int("width", 768, "Render width")
	height := flag.Int("height", 768, "Render height")
	distance := flag.Float64("distance", 3, "Camera distance from the origin")
	seed := flag.Int64("seed", 1, "RNG seed")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	var frame engine.Frame
	if *fromPath != "" {
		frame, err = loadFrame(*fromPath)
	} else {
		frame, err = simulate(cfg, *ticks, *seed)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	// Initialize raylib with hidden window
	rl.SetConfigFlags(rl.FlagWindowHidden)
	rl.InitWindow(int32(*width), int32(*height), "Field Snapshot")
	defer rl.CloseWindow()

	// Create render texture
	rt := rl.LoadRenderTexture(int32(*width), int32(*height))
	defer rl.UnloadRenderTexture(rt)

	cam := camera.New(float32(*width), float32(*height), float32(*distance))
	display := renderer.NewPointDisplay(cfg.Screen.PointStride)

	// Render field to texture
	rl.BeginTextureMode(rt)
	rl.ClearBackground(rl.Black)
	rl.BeginMode3D(renderer.Camera3D(cam))
	display.Present(frame)
	rl.EndMode3D()
	rl.EndTextureMode()

	// Get image from texture and flip it (OpenGL convention)
	img := rl.LoadImageFromTexture(rt.Texture)
	rl.ImageFlipVertical(img)

	// Export to PNG
	success := rl.ExportImage(*img, *outPath)
	rl.UnloadImage(img)

	if !success {
		fmt.Fprintf(os.Stderr, "Failed to export image to: %s\n", *outPath)
		os.Exit(1)
	}

	slog.Info("snapshot written",
		"path", *outPath,
		"tick", frame.Tick,
		"progress", frame.Progress,
		"drawn", display.Drawn(),
	)
}

// simulate runs a fresh engine for ticks ticks and returns a copy of its last
// frame, so the engine can be destroyed before rendering.
func simulate(cfg *config.Config, ticks int, seed int64) (engine.Frame, error) {
	sched := engine.NewManualScheduler()
	rec := renderer.NewRecorder()
	e, err := engine.New(cfg, engine.Options{Scheduler: sched, Display: rec, Seed: seed})
	if err != nil {
		return engine.Frame{}, fmt.Errorf("create engine: %w", err)
	}
	defer e.Destroy()

	var target engine.OriginSource
	if cfg.Origin.TargetShape != "" {
		target = engine.ShapeOrigin(cfg.Origin, cfg.Origin.TargetShape, seed+1)
	}
	if err := e.Load(context.Background(), engine.ShapeOrigin(cfg.Origin, cfg.Origin.Shape, seed), target); err != nil {
		return engine.Frame{}, fmt.Errorf("load origin: %w", err)
	}
	if err := e.Start(); err != nil {
		return engine.Frame{}, fmt.Errorf("start engine: %w", err)
	}
	for e.Tick() < int64(ticks) {
		if sched.RunPending() == 0 {
			break
		}
	}
	slog.Info("simulated", "ticks", e.Tick(), "frames", len(rec.Ticks()), "progress", rec.Progress())

	s, err := e.Snapshot()
	if err != nil {
		return engine.Frame{}, fmt.Errorf("read field: %w", err)
	}
	return frameFromSnapshot(s)
}

// loadFrame reads a snapshot written by the main binary.
func loadFrame(path string) (engine.Frame, error) {
	s, err := telemetry.LoadSnapshot(path)
	if err != nil {
		return engine.Frame{}, err
	}
	slog.Info("loaded snapshot", "path", path, "engine_id", s.EngineID, "tick", s.Tick)
	return frameFromSnapshot(s)
}

// frameFromSnapshot uploads snapshot buffers into standalone textures.
func frameFromSnapshot(s *telemetry.Snapshot) (engine.Frame, error) {
	alloc := field.NewAllocator(0)
	pos, err := alloc.Alloc(s.Size)
	if err != nil {
		return engine.Frame{}, err
	}
	vel, err := alloc.Alloc(s.Size)
	if err != nil {
		return engine.Frame{}, err
	}
	if err := pos.CopyFrom(s.Positions); err != nil {
		return engine.Frame{}, fmt.Errorf("positions: %w", err)
	}
	if err := vel.CopyFrom(s.Velocities); err != nil {
		return engine.Frame{}, fmt.Errorf("velocities: %w", err)
	}
	return engine.Frame{
		Tick:       s.Tick,
		Positions:  field.NewView(pos),
		Velocities: field.NewView(vel),
		Progress:   s.Progress,
		Visible:    true,
	}, nil
}

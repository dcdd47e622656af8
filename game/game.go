// Package game hosts an engine: it builds it from config, feeds it input,
// moves the emitters and routes telemetry to logs, CSV and metrics.
package game

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pthm-cable/pingpong/camera"
	"github.com/pthm-cable/pingpong/config"
	"github.com/pthm-cable/pingpong/engine"
	"github.com/pthm-cable/pingpong/renderer"
	"github.com/pthm-cable/pingpong/telemetry"
	"github.com/pthm-cable/pingpong/ui"
)

// Game owns one engine and everything around it.
type Game struct {
	cfg    *config.Config
	engine *engine.Engine

	manual *engine.ManualScheduler // nil when ticking on a timer
	timer  *engine.TimerScheduler

	headless bool
	logStats bool
	started  time.Time

	// Graphics (nil when headless)
	camera   *camera.Orbit
	display  *renderer.PointDisplay
	backdrop *renderer.Backdrop
	panel    *ui.Panel
	hud      *ui.HUD

	screenWidth, screenHeight float32

	outputManager *telemetry.OutputManager
	metrics       *telemetry.Metrics

	bookmarks        *telemetry.BookmarkDetector
	snapshotDir      string
	snapMu           sync.Mutex // guards pendingSnapshots; stats arrive on the tick goroutine
	pendingSnapshots []telemetry.Bookmark
}

// NewGameWithOptions builds, loads and starts an engine from the global config.
// Graphics components require an open raylib window unless opts.Headless.
func NewGameWithOptions(opts Options) (*Game, error) {
	cfg := config.Cfg().Clone()
	g := &Game{
		cfg:          cfg,
		headless:     opts.Headless,
		logStats:     opts.LogStats,
		started:      time.Now(),
		bookmarks:    telemetry.NewBookmarkDetector(10),
		snapshotDir:  opts.SnapshotDir,
		screenWidth:  float32(cfg.Screen.Width),
		screenHeight: float32(cfg.Screen.Height),
	}

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	g.outputManager = om
	if err := om.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config snapshot", "error", err)
	}

	var sched engine.Scheduler
	if opts.Realtime && opts.Headless {
		fps := cfg.Screen.TargetFPS
		if fps < 1 {
			fps = 60
		}
		g.timer = engine.NewTimerScheduler(time.Second / time.Duration(fps))
		sched = g.timer
	} else {
		g.manual = engine.NewManualScheduler()
		sched = g.manual
	}

	id := uuid.NewString()
	if cfg.Telemetry.MetricsAddr != "" {
		g.metrics = telemetry.NewMetrics(id)
	}

	engineOpts := engine.Options{
		Scheduler: sched,
		Seed:      opts.Seed,
		ID:        id,
		Metrics:   g.metrics,
		OnStats:   g.flushTelemetry,
	}
	if !opts.Headless {
		g.display = renderer.NewPointDisplay(cfg.Screen.PointStride)
		engineOpts.Display = g.display
	}

	e, err := engine.New(cfg, engineOpts)
	if err != nil {
		om.Close()
		return nil, err
	}
	g.engine = e

	if err := g.load(opts.Seed); err != nil {
		e.Destroy()
		om.Close()
		return nil, err
	}
	if err := e.Start(); err != nil {
		e.Destroy()
		om.Close()
		return nil, err
	}

	if !opts.Headless {
		g.camera = camera.New(g.screenWidth, g.screenHeight, 3)
		g.backdrop = renderer.NewBackdrop(2, 0.25)
		g.panel = ui.NewPanel(int32(g.screenWidth)-280, 10, 270)
		g.hud = ui.NewHUD()
	}

	slog.Info("engine started",
		"engine_id", e.ID(),
		"size", cfg.Field.Size,
		"particles", cfg.Field.Size*cfg.Field.Size,
		"origin", cfg.Origin.Shape,
		"emitters", len(cfg.Emitters),
	)
	return g, nil
}

// load fills the origin (and morph target) textures from the configured shapes.
func (g *Game) load(seed int64) error {
	var target engine.OriginSource
	if g.cfg.Origin.TargetShape != "" {
		target = engine.ShapeOrigin(g.cfg.Origin, g.cfg.Origin.TargetShape, seed+1)
	}
	origin := engine.ShapeOrigin(g.cfg.Origin, g.cfg.Origin.Shape, seed)
	if err := g.engine.Load(context.Background(), origin, target); err != nil {
		return fmt.Errorf("loading origin %q: %w", g.cfg.Origin.Shape, err)
	}
	return nil
}

// Engine returns the hosted engine.
func (g *Game) Engine() *engine.Engine { return g.engine }

// Metrics returns the Prometheus collector, or nil when disabled.
func (g *Game) Metrics() *telemetry.Metrics { return g.metrics }

// Tick returns the number of simulated ticks.
func (g *Game) Tick() int64 { return g.engine.Tick() }

// UpdateHeadless advances one frame without graphics. On a timer scheduler
// the engine ticks on its own and this only moves the emitters.
func (g *Game) UpdateHeadless() {
	g.moveEmitters()
	if g.manual != nil {
		g.manual.RunPending()
	}
	g.saveSnapshots()
}

// RunHeadless loops until ctx is done or maxTicks (0 = unlimited) is reached.
func (g *Game) RunHeadless(ctx context.Context, maxTicks int64) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		g.UpdateHeadless()
		if g.timer != nil {
			time.Sleep(time.Millisecond)
		}

		if maxTicks > 0 && g.Tick() >= maxTicks {
			slog.Info("max ticks reached", "tick", g.Tick())
			return nil
		}
		if g.engine.State() == engine.Destroyed {
			return engine.ErrDestroyed
		}
	}
}

// Unload saves a final snapshot, destroys the engine and closes output files.
func (g *Game) Unload() {
	g.saveSnapshots()
	g.saveSnapshot(nil)
	if err := g.engine.Destroy(); err != nil {
		slog.Error("failed to destroy engine", "error", err)
	}
	if err := g.outputManager.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
}

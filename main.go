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
	"golang.org/x/sync/errgroup"

	"github.com/pthm-cable/pingpong/config"
	"github.com/pthm-cable/pingpong/game"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	snapshotDir := flag.String("snapshot-dir", "", "Save field snapshots on bookmarks and at exit to this directory")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int64("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	watchPath := flag.String("watch", "", "Patch file to hot-reload simulation parameters from")
	metricsAddr := flag.String("metrics-addr", "", "Serve Prometheus metrics on this address (overrides config)")
	realtime := flag.Bool("realtime", false, "Headless: tick at screen.target_fps instead of as fast as possible")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	if *metricsAddr != "" {
		cfg.Telemetry.MetricsAddr = *metricsAddr
	}

	// Set up seed
	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	opts := game.Options{
		Seed:        rngSeed,
		LogStats:    *logStats,
		OutputDir:   *outputDir,
		SnapshotDir: *snapshotDir,
		Headless:    *headless,
		Realtime:    *realtime,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *headless {
		if err := runHeadless(ctx, opts, *maxTicks, *watchPath); err != nil {
			slog.Error("headless run failed", "error", err)
			os.Exit(1)
		}
		return
	}

	// Graphical mode
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Ping-pong particles")
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	g, err := game.NewGameWithOptions(opts)
	if err != nil {
		slog.Error("failed to start engine", "error", err)
		os.Exit(1)
	}
	defer g.Unload()

	group, gctx := errgroup.WithContext(ctx)
	startSidecars(gctx, group, g, *watchPath)

	for !rl.WindowShouldClose() && gctx.Err() == nil {
		g.Update()
		g.Draw()

		if *maxTicks > 0 && g.Tick() >= *maxTicks {
			break
		}
	}

	stop()
	if err := group.Wait(); err != nil {
		slog.Error("background task failed", "error", err)
	}
}

// runHeadless ticks the engine alongside the optional watcher and metrics
// server until max ticks, a signal, or a failure.
func runHeadless(ctx context.Context, opts game.Options, maxTicks int64, watchPath string) error {
	g, err := game.NewGameWithOptions(opts)
	if err != nil {
		return err
	}
	defer g.Unload()

	slog.Info("starting headless simulation",
		"seed", opts.Seed,
		"max_ticks", maxTicks,
		"realtime", opts.Realtime,
	)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	group, gctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		defer cancel()
		return g.RunHeadless(gctx, maxTicks)
	})
	startSidecars(gctx, group, g, watchPath)

	return group.Wait()
}

// startSidecars launches the patch watcher and metrics server when enabled.
func startSidecars(ctx context.Context, group *errgroup.Group, g *game.Game, watchPath string) {
	if watchPath != "" {
		w, err := config.NewWatcher(watchPath, g.Engine().SetConfig)
		if err != nil {
			slog.Error("failed to watch patch file", "path", watchPath, "error", err)
		} else {
			group.Go(func() error { return w.Run(ctx) })
		}
	}

	if m := g.Metrics(); m != nil {
		addr := config.Cfg().Telemetry.MetricsAddr
		slog.Info("serving metrics", "addr", addr)
		group.Go(func() error { return m.Serve(ctx, addr) })
	}
}

package game

import (
	"log/slog"

	"github.com/pthm-cable/pingpong/telemetry"
)

// flushTelemetry receives each closed stats window from the engine. It runs
// inside the engine tick and must not call back into the engine.
func (g *Game) flushTelemetry(stats telemetry.FieldStats, perfStats telemetry.PerfStats) {
	// Log stats if enabled (console output)
	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	// Write to CSV if output manager is enabled
	if g.outputManager != nil {
		if err := g.outputManager.WriteStats(stats); err != nil {
			slog.Error("failed to write stats", "error", err)
		}
		if err := g.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}

	for _, b := range g.bookmarks.Check(stats) {
		b.LogBookmark()
		if err := g.outputManager.WriteBookmark(b); err != nil {
			slog.Error("failed to write bookmark", "error", err)
		}
		if g.snapshotDir != "" {
			g.snapMu.Lock()
			g.pendingSnapshots = append(g.pendingSnapshots, b)
			g.snapMu.Unlock()
		}
	}
}

// saveSnapshots writes the snapshots queued by bookmarks. Call it between
// ticks, never from inside one.
func (g *Game) saveSnapshots() {
	g.snapMu.Lock()
	pending := g.pendingSnapshots
	g.pendingSnapshots = nil
	g.snapMu.Unlock()
	for i := range pending {
		g.saveSnapshot(&pending[i])
	}
}

// saveSnapshot writes the current field state, tagged with b when non-nil.
func (g *Game) saveSnapshot(b *telemetry.Bookmark) {
	if g.snapshotDir == "" {
		return
	}
	s, err := g.engine.Snapshot()
	if err != nil {
		slog.Error("failed to capture snapshot", "error", err)
		return
	}
	s.Bookmark = b
	path, err := telemetry.SaveSnapshot(s, g.snapshotDir)
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}
	slog.Info("snapshot saved", "path", path, "tick", s.Tick)
}

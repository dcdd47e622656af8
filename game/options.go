package game

// Options configures the host around the engine.
type Options struct {
	Seed        int64
	LogStats    bool   // log every stats window via slog
	OutputDir   string // CSV + config snapshot directory (empty = disabled)
	SnapshotDir string // field snapshots on bookmarks and exit (empty = disabled)
	Headless    bool
	Realtime    bool // tick on a wall-clock timer instead of as fast as possible
}

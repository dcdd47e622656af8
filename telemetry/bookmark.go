package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkFieldFilled BookmarkType = "field_filled"
	BookmarkNaN         BookmarkType = "nan_detected"
	BookmarkSpeedSpike  BookmarkType = "speed_spike"
	BookmarkSettled     BookmarkType = "settled"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type" json:"type"`
	Tick        int64        `csv:"tick" json:"tick"`
	Description string       `csv:"description" json:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// BookmarkDetector detects interesting moments in a run.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []FieldStats
	historySize int
	historyIdx  int
	historyFull bool

	filled             bool
	lastNaN            int
	settledWindowCount int
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 5 {
		historySize = 5 // minimum for settle detection
	}
	return &BookmarkDetector{
		history:     make([]FieldStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats FieldStats) []Bookmark {
	var bookmarks []Bookmark

	if !bd.filled && stats.Progress >= 1 {
		bd.filled = true
		bookmarks = append(bookmarks, Bookmark{
			Type:        BookmarkFieldFilled,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Every particle emitted after %d emissions", stats.Emitted),
		})
	}

	// NaN appears: report the transition, not every window
	if stats.NaNCount > 0 && bd.lastNaN == 0 {
		bookmarks = append(bookmarks, Bookmark{
			Type:        BookmarkNaN,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("%d particles have NaN state", stats.NaNCount),
		})
	}
	bd.lastNaN = stats.NaNCount

	if b := bd.checkSpeedSpike(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkSettled(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	bd.addToHistory(stats)
	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats FieldStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

// getHistory returns the recorded windows, oldest first.
func (bd *BookmarkDetector) getHistory() []FieldStats {
	if !bd.historyFull {
		return bd.history[:bd.historyIdx]
	}
	out := make([]FieldStats, 0, bd.historySize)
	out = append(out, bd.history[bd.historyIdx:]...)
	return append(out, bd.history[:bd.historyIdx]...)
}

func (bd *BookmarkDetector) checkSpeedSpike(stats FieldStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	var total float64
	for _, h := range history {
		total += h.SpeedMean
	}
	avg := total / float64(len(history))
	if avg == 0 {
		return nil
	}

	if stats.SpeedMean > avg*2.0 && stats.SpeedMean > 1e-4 {
		return &Bookmark{
			Type:        BookmarkSpeedSpike,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Mean speed %.4g is %.1fx average (%.4g)", stats.SpeedMean, stats.SpeedMean/avg, avg),
		}
	}
	return nil
}

// checkSettled fires once after five consecutive low-variance windows.
func (bd *BookmarkDetector) checkSettled(stats FieldStats) *Bookmark {
	if stats.Emitted == 0 {
		bd.settledWindowCount = 0
		return nil
	}

	history := bd.getHistory()
	if len(history) < 4 {
		return nil
	}

	recent := history[len(history)-4:]
	var sum float64
	for _, h := range recent {
		sum += h.SpeedMean
	}
	mean := sum / 4

	var variance float64
	for _, h := range recent {
		d := h.SpeedMean - mean
		variance += d * d
	}
	variance /= 4

	cv2 := 0.0
	if mean > 0 {
		cv2 = variance / (mean * mean)
	}

	if cv2 < 0.04 { // CV^2 < 0.04 means CV < 0.2
		bd.settledWindowCount++
	} else {
		bd.settledWindowCount = 0
	}

	if bd.settledWindowCount == 5 {
		return &Bookmark{
			Type:        BookmarkSettled,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Mean speed steady near %.4g over 5+ windows", mean),
		}
	}
	return nil
}

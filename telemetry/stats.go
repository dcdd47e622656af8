package telemetry

import (
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/pingpong/field"
)

// FieldStats holds a snapshot of the particle field plus the emission
// activity of the window that ended with it.
type FieldStats struct {
	WindowStartTick int64 `csv:"-"`
	WindowEndTick   int64 `csv:"window_end"`

	// Emission state at window end
	Progress float64 `csv:"progress"`
	Emitted  int64   `csv:"emitted"`
	Cursor   int     `csv:"cursor"`

	// Events during window
	Emissions     int `csv:"emissions"`
	EmittedWindow int `csv:"emitted_window"`
	Triggered     int `csv:"triggered"`
	Wraps         int `csv:"wraps"`
	IdleFrames    int `csv:"idle_frames"`

	// Speed distribution (|velocity| per particle)
	SpeedMean float64 `csv:"speed_mean"`
	SpeedStd  float64 `csv:"speed_std"`
	SpeedP10  float64 `csv:"speed_p10"`
	SpeedP50  float64 `csv:"speed_p50"`
	SpeedP90  float64 `csv:"speed_p90"`

	// Distance from each particle to its origin
	OriginDistMean float64 `csv:"origin_dist_mean"`
	OriginDistP90  float64 `csv:"origin_dist_p90"`

	// Particles with any NaN channel
	NaNCount int `csv:"nan_count"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// Distribution summarises a sample.
type Distribution struct {
	Mean, Std     float64
	P10, P50, P90 float64
}

// ComputeDistribution calculates mean, population std and percentiles.
// values is sorted in place.
func ComputeDistribution(values []float64) Distribution {
	if len(values) == 0 {
		return Distribution{}
	}
	mean, std := stat.PopMeanStdDev(values, nil)
	sort.Float64s(values)
	return Distribution{
		Mean: mean,
		Std:  std,
		P10:  Percentile(values, 0.10),
		P50:  Percentile(values, 0.50),
		P90:  Percentile(values, 0.90),
	}
}

// ComputeFieldStats measures the current position and velocity buffers.
// NaN particles are counted and excluded from the distributions.
func ComputeFieldStats(positions, velocities, origin field.View) FieldStats {
	n := positions.Len()
	speeds := make([]float64, 0, n)
	dists := make([]float64, 0, n)
	var nan int

	for i := 0; i < n; i++ {
		p := positions.Texel(i)
		v := velocities.Texel(i)
		if hasNaN(p) || hasNaN(v) {
			nan++
			continue
		}
		speeds = append(speeds, norm(v[0], v[1], v[2]))
		if origin.Valid() {
			o := origin.Texel(i)
			dists = append(dists, norm(p[0]-o[0], p[1]-o[1], p[2]-o[2]))
		}
	}

	speed := ComputeDistribution(speeds)
	dist := ComputeDistribution(dists)

	return FieldStats{
		SpeedMean:      speed.Mean,
		SpeedStd:       speed.Std,
		SpeedP10:       speed.P10,
		SpeedP50:       speed.P50,
		SpeedP90:       speed.P90,
		OriginDistMean: dist.Mean,
		OriginDistP90:  dist.P90,
		NaNCount:       nan,
	}
}

func hasNaN(t field.Texel) bool {
	for _, c := range t {
		if c != c {
			return true
		}
	}
	return false
}

func norm(x, y, z float32) float64 {
	return math.Sqrt(float64(x)*float64(x) + float64(y)*float64(y) + float64(z)*float64(z))
}

// LogValue implements slog.LogValuer for structured logging.
func (s FieldStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("window_start", s.WindowStartTick),
		slog.Int64("window_end", s.WindowEndTick),
		slog.Float64("progress", s.Progress),
		slog.Int64("emitted", s.Emitted),
		slog.Int("cursor", s.Cursor),
		slog.Int("emissions", s.Emissions),
		slog.Int("emitted_window", s.EmittedWindow),
		slog.Int("triggered", s.Triggered),
		slog.Int("wraps", s.Wraps),
		slog.Int("idle_frames", s.IdleFrames),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_std", s.SpeedStd),
		slog.Float64("speed_p50", s.SpeedP50),
		slog.Float64("origin_dist_mean", s.OriginDistMean),
		slog.Int("nan_count", s.NaNCount),
	)
}

// LogStats logs the field stats using slog.
func (s FieldStats) LogStats() {
	slog.Info("stats", "field", s)
}

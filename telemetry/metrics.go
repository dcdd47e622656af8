package telemetry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exposes engine counters to Prometheus. Each instance owns its
// registry so several engines (or tests) never collide on registration.
type Metrics struct {
	registry *prometheus.Registry

	ticks        prometheus.Counter
	tickDuration prometheus.Histogram
	progress     prometheus.Gauge
	emitted      prometheus.Gauge
	speedMean    prometheus.Gauge
	nanParticles prometheus.Gauge
}

// NewMetrics creates the collectors, labelled with the engine id.
func NewMetrics(engineID string) *Metrics {
	labels := prometheus.Labels{"engine": engineID}
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "pingpong_ticks_total",
			Help:        "Simulated ticks (paused frames excluded)",
			ConstLabels: labels,
		}),
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        "pingpong_tick_duration_seconds",
			Help:        "Wall time of one simulated tick",
			Buckets:     prometheus.ExponentialBuckets(0.0001, 2, 14),
			ConstLabels: labels,
		}),
		progress: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "pingpong_progress_ratio",
			Help:        "Fraction of the field emitted at least once",
			ConstLabels: labels,
		}),
		emitted: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "pingpong_emitted_particles",
			Help:        "Total particles emitted",
			ConstLabels: labels,
		}),
		speedMean: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "pingpong_speed_mean",
			Help:        "Mean particle speed at the last stats window",
			ConstLabels: labels,
		}),
		nanParticles: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "pingpong_nan_particles",
			Help:        "Particles holding a NaN channel at the last stats window",
			ConstLabels: labels,
		}),
	}
	m.registry.MustRegister(m.ticks, m.tickDuration, m.progress, m.emitted, m.speedMean, m.nanParticles)
	return m
}

// ObserveTick records one simulated tick. Nil-safe.
func (m *Metrics) ObserveTick(d time.Duration) {
	if m == nil {
		return
	}
	m.ticks.Inc()
	m.tickDuration.Observe(d.Seconds())
}

// Observe publishes a stats window. Nil-safe.
func (m *Metrics) Observe(s FieldStats) {
	if m == nil {
		return
	}
	m.progress.Set(s.Progress)
	m.emitted.Set(float64(s.Emitted))
	m.speedMean.Set(s.SpeedMean)
	m.nanParticles.Set(float64(s.NaNCount))
}

// Handler returns the /metrics HTTP handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// NewServer builds the metrics HTTP server.
func (m *Metrics) NewServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	return &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  15 * time.Second,
	}
}

// Serve runs the metrics server until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	srv := m.NewServer(addr)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

package app

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/specialistvlad/apsimgo/internal/executor"
)

// metrics are the collectors served on /metrics. Each App owns its own
// registry so tests and embedded uses do not collide on the default one.
type metrics struct {
	registry *prometheus.Registry
	points   *prometheus.CounterVec
	duration prometheus.Histogram
	inFlight prometheus.Gauge
	runs     *prometheus.CounterVec
}

func newMetrics() *metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &metrics{
		registry: reg,
		points: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "apsimgo_points_total",
			Help: "Workflow points finished, by status.",
		}, []string{"status"}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "apsimgo_point_duration_seconds",
			Help:    "Wall time of one workflow point.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
		inFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "apsimgo_points_in_flight",
			Help: "Workflow points currently running.",
		}),
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "apsimgo_runs_total",
			Help: "Single model runs, by result.",
		}, []string{"result"}),
	}
}

// Observe implements executor.Observer.
func (m *metrics) Observe(_ context.Context, ev executor.Event) {
	switch ev.Status {
	case executor.StatusStarted:
		m.inFlight.Inc()
		return
	case executor.StatusSucceeded, executor.StatusFailed:
		m.inFlight.Dec()
		m.duration.Observe(ev.Duration.Seconds())
	}
	m.points.WithLabelValues(string(ev.Status)).Inc()
}

func (m *metrics) run(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.runs.WithLabelValues(result).Inc()
}

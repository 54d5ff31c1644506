// Package metrics holds the Prometheus collectors for planning runs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

const namespace = "merchplan"

// Registry holds all Prometheus metrics for merchplan.
type Registry struct {
	reg *prometheus.Registry

	RunDuration *prometheus.HistogramVec
	Runs        *prometheus.CounterVec
	ActiveRuns  prometheus.Gauge

	CacheHits   *prometheus.CounterVec
	CacheMisses *prometheus.CounterVec

	Recommendations *prometheus.CounterVec
	Alerts          *prometheus.CounterVec
	ForecastMAPE    *prometheus.HistogramVec
	ReportUploads   *prometheus.CounterVec
}

// NewRegistry builds the collectors on a private registry, plus the Go and process collectors.
func NewRegistry() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),

		RunDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "Duration of planning operations in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
			[]string{"operation", "result"},
		),

		Runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Total number of planning operations by result",
			},
			[]string{"operation", "result"},
		),

		ActiveRuns: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "active_runs",
				Help:      "Number of planning operations in flight",
			},
		),

		CacheHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_hits_total",
				Help:      "Total number of cache hits by cache",
			},
			[]string{"cache"},
		),

		CacheMisses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_misses_total",
				Help:      "Total number of cache misses by cache",
			},
			[]string{"cache"},
		),

		Recommendations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "clearance_recommendations_total",
				Help:      "Clearance recommendations produced by action",
			},
			[]string{"action"},
		),

		Alerts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "replenishment_alerts_total",
				Help:      "Replenishment alerts produced by status",
			},
			[]string{"status"},
		),

		ForecastMAPE: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "forecast_mape_percent",
				Help:      "Held-out MAPE of completed forecast runs",
				Buckets:   []float64{5, 10, 20, 30, 50, 100},
			},
			[]string{"method"},
		),

		ReportUploads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "report_uploads_total",
				Help:      "Report exports to object storage by result",
			},
			[]string{"kind", "result"},
		),
	}

	r.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.RunDuration,
		r.Runs,
		r.ActiveRuns,
		r.CacheHits,
		r.CacheMisses,
		r.Recommendations,
		r.Alerts,
		r.ForecastMAPE,
		r.ReportUploads,
	)

	return r
}

// Handler exposes the registry in the Prometheus text format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// Gatherer is used by tests and the admin server.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// Timer tracks execution time for one operation.
type Timer struct {
	metrics   *Registry
	operation string
	start     time.Time
}

// StartTimer begins timing an operation and marks it active.
func (r *Registry) StartTimer(operation string) *Timer {
	r.ActiveRuns.Inc()
	return &Timer{metrics: r, operation: operation, start: time.Now()}
}

// Stop records the duration and outcome of the operation.
func (t *Timer) Stop(result string) {
	duration := time.Since(t.start)
	t.metrics.ActiveRuns.Dec()
	t.metrics.RunDuration.WithLabelValues(t.operation, result).Observe(duration.Seconds())
	t.metrics.Runs.WithLabelValues(t.operation, result).Inc()

	log.Debug().
		Str("operation", t.operation).
		Str("result", result).
		Dur("duration", duration).
		Msg("Operation completed")
}

// RecordCache records a hit or a miss for the named cache.
func (r *Registry) RecordCache(cache string, hit bool) {
	if hit {
		r.CacheHits.WithLabelValues(cache).Inc()
		return
	}
	r.CacheMisses.WithLabelValues(cache).Inc()
}

func (r *Registry) RecordRecommendation(action string) {
	r.Recommendations.WithLabelValues(action).Inc()
}

func (r *Registry) RecordAlert(status string) {
	r.Alerts.WithLabelValues(status).Inc()
}

func (r *Registry) RecordMAPE(method string, mape float64) {
	r.ForecastMAPE.WithLabelValues(method).Observe(mape)
}

func (r *Registry) RecordUpload(kind string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.ReportUploads.WithLabelValues(kind, result).Inc()
}

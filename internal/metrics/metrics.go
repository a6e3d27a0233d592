// Package metrics exposes Prometheus collectors for the orchestrator.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/cividex/portalwatch/internal/portal"
)

var (
	scrapeRunsTotal       *prometheus.CounterVec
	scrapeDurationSeconds *prometheus.HistogramVec
	activeWorkers         prometheus.Gauge
	alertsSentTotal       *prometheus.CounterVec
	rateLimitDelay        *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus collectors. Safe to call more than once.
func Init() {
	once.Do(func() {
		scrapeRunsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portalwatch_runs_total",
				Help: "Total scrape runs, labeled by terminal status and mode.",
			},
			[]string{"status", "mode"},
		)

		scrapeDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "portalwatch_run_duration_seconds",
				Help:    "Histogram of scrape run durations, labeled by mode.",
				Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
			},
			[]string{"mode"},
		)

		activeWorkers = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "portalwatch_active_workers",
				Help: "Number of workers currently executing a dispatch.",
			},
		)

		alertsSentTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portalwatch_alerts_sent_total",
				Help: "Total alerts handed to the notification channel, labeled by kind and delivery outcome.",
			},
			[]string{"kind", "delivered"},
		)

		rateLimitDelay = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "portalwatch_ratelimit_delay_seconds",
				Help:    "Time spent waiting on per-host rate limits, labeled by portal host.",
				Buckets: []float64{0.01, 0.1, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"host"},
		)
	})
}

// ObserveRun records one terminal run.
func ObserveRun(status string, mode portal.Mode, duration time.Duration) {
	if scrapeRunsTotal == nil {
		return
	}
	scrapeRunsTotal.WithLabelValues(status, string(mode)).Inc()
	scrapeDurationSeconds.WithLabelValues(string(mode)).Observe(duration.Seconds())
}

// WorkerStarted marks a worker busy.
func WorkerStarted() {
	if activeWorkers != nil {
		activeWorkers.Inc()
	}
}

// WorkerFinished marks a worker idle.
func WorkerFinished() {
	if activeWorkers != nil {
		activeWorkers.Dec()
	}
}

// ObserveAlert records one alert handoff.
func ObserveAlert(kind string, delivered bool) {
	if alertsSentTotal == nil {
		return
	}
	outcome := "false"
	if delivered {
		outcome = "true"
	}
	alertsSentTotal.WithLabelValues(kind, outcome).Inc()
}

// ObserveRateLimitDelay records time spent in a rate-limit wait.
func ObserveRateLimitDelay(host string, delay time.Duration) {
	if rateLimitDelay != nil {
		rateLimitDelay.WithLabelValues(host).Observe(delay.Seconds())
	}
}

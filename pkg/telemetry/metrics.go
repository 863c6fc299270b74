// Package telemetry exposes pipeline metrics to Prometheus.
package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "content_optimizer"

// Stage run outcomes
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

var (
	stageRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_runs_total",
			Help:      "Total pipeline stage runs",
		},
		[]string{"stage", "status"},
	)

	stageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of pipeline stage runs in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12), // 100ms to ~7m
		},
		[]string{"stage"},
	)

	rowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_total",
			Help:      "Rows handled by pipeline stages",
		},
		[]string{"stage", "outcome"}, // "read", "written", "skipped"
	)

	snapshotGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_value",
			Help:      "Fields of the most recent metrics snapshot",
		},
		[]string{"field"},
	)

	viralScoreGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "viral_score",
			Help:      "Most recent predicted viral score by platform",
		},
		[]string{"platform"},
	)
)

// RecordStageRun counts one stage run and observes its duration
func RecordStageRun(stage string, err error, duration time.Duration) {
	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	stageRunsTotal.WithLabelValues(stage, status).Inc()
	stageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// RecordRows adds a stage's row counters
func RecordRows(stage string, read, written, skipped int) {
	rowsTotal.WithLabelValues(stage, "read").Add(float64(read))
	rowsTotal.WithLabelValues(stage, "written").Add(float64(written))
	rowsTotal.WithLabelValues(stage, "skipped").Add(float64(skipped))
}

// SetSnapshot publishes the fields of the latest metrics snapshot
func SetSnapshot(fields map[string]float64) {
	for name, v := range fields {
		snapshotGauge.WithLabelValues(name).Set(v)
	}
}

// SetViralScore publishes the latest viral score of a platform
func SetViralScore(platform string, score float64) {
	viralScoreGauge.WithLabelValues(platform).Set(score)
}

// Handler serves the default registry in the Prometheus text format
func Handler() http.Handler {
	return promhttp.Handler()
}

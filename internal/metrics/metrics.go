// Package metrics counts pipeline outcomes and exports them as a Prometheus
// textfile for node_exporter's textfile collector.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder holds the collectors of one run. Labels stay bounded: pipeline
// and outcome only, never item keys.
type Recorder struct {
	registry *prometheus.Registry

	items        *prometheus.CounterVec
	itemDuration *prometheus.HistogramVec
	lastRun      *prometheus.GaugeVec
	runSeconds   *prometheus.GaugeVec
}

// New builds a recorder backed by a private registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Recorder{
		registry: reg,
		items: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "transcriptsync_items_total",
			Help: "Items processed, by pipeline and outcome.",
		}, []string{"pipeline", "outcome"}),
		itemDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "transcriptsync_item_duration_seconds",
			Help:    "Time spent on one item from fetch to ledger record.",
			Buckets: []float64{0.5, 1, 5, 15, 60, 300, 900},
		}, []string{"pipeline"}),
		lastRun: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "transcriptsync_last_run_timestamp_seconds",
			Help: "Unix time the last run of a pipeline finished.",
		}, []string{"pipeline"}),
		runSeconds: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "transcriptsync_last_run_duration_seconds",
			Help: "Wall time of the last run of a pipeline.",
		}, []string{"pipeline"}),
	}
}

// ObserveItem counts one item outcome.
func (r *Recorder) ObserveItem(pipeline, outcome string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.items.WithLabelValues(pipeline, outcome).Inc()
	r.itemDuration.WithLabelValues(pipeline).Observe(elapsed.Seconds())
}

// ObserveRun records when a run finished and how long it took.
func (r *Recorder) ObserveRun(pipeline string, finished time.Time, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.lastRun.WithLabelValues(pipeline).Set(float64(finished.Unix()))
	r.runSeconds.WithLabelValues(pipeline).Set(elapsed.Seconds())
}

// Gatherer exposes the registry.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteTextfile writes the current values to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

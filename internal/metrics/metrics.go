// Package metrics exposes the pipeline's Prometheus collectors and an
// optional scrape endpoint. Collection is always on; the HTTP listener only
// starts when a metrics address is configured.
package metrics

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	examplesEmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mazeforge_examples_emitted_total",
			Help: "Examples yielded to the output sink",
		},
		[]string{"generator"},
	)

	batchesDispatched = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mazeforge_batches_dispatched_total",
			Help: "Batches handed to solver workers",
		},
	)

	currentBatchSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mazeforge_current_batch_size",
			Help: "Batch size the producer applies to the next batch",
		},
	)

	activeWorkers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mazeforge_active_workers",
			Help: "Workers currently solving a batch",
		},
	)

	generateDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mazeforge_generate_batch_duration_seconds",
			Help:    "Producer time to generate one batch",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
		},
	)

	solveDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mazeforge_solve_batch_duration_seconds",
			Help:    "Worker time to decode, solve and serialize one batch",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
		},
	)
)

// Collector provides convenience methods for recording pipeline metrics.
type Collector struct {
	generator string
}

// NewCollector creates a collector labelled with the generator name.
func NewCollector(generator string) *Collector {
	return &Collector{generator: generator}
}

// AddExamples records examples yielded downstream.
func (c *Collector) AddExamples(n int) {
	examplesEmitted.WithLabelValues(c.generator).Add(float64(n))
}

// BatchDispatched records one batch handoff to a worker.
func (c *Collector) BatchDispatched() {
	batchesDispatched.Inc()
}

// SetBatchSize records the batch size currently applied by the producer.
func (c *Collector) SetBatchSize(n int) {
	currentBatchSize.Set(float64(n))
}

// SetActiveWorkers records the number of busy workers.
func (c *Collector) SetActiveWorkers(n int) {
	activeWorkers.Set(float64(n))
}

// ObserveGenerate records producer time for one batch.
func (c *Collector) ObserveGenerate(d time.Duration) {
	generateDuration.Observe(d.Seconds())
}

// ObserveSolve records worker time for one batch.
func (c *Collector) ObserveSolve(d time.Duration) {
	solveDuration.Observe(d.Seconds())
}

// Serve starts the scrape endpoint on addr in the background. Listener
// errors are logged, not fatal: metrics must never take the pipeline down.
func Serve(addr string, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Error("metrics listener stopped", "addr", addr, "error", err)
		}
	}()
}

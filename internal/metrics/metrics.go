// Package metrics exposes Prometheus collectors for the store and the
// persisters. Recording is always on; the HTTP endpoint is opt-in.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	StatusOK    = "ok"
	StatusError = "error"
)

var (
	opsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shardkv_ops_total",
		Help: "Store operations by type and status.",
	}, []string{"op", "status"})

	queueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "shardkv_write_queue_depth",
		Help: "Tasks currently waiting in the async write queue.",
	})

	flushDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "shardkv_shard_flush_duration_seconds",
		Help:    "Time to serialize and rewrite one shard file.",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14),
	})

	flushFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shardkv_shard_flush_failures_total",
		Help: "Shard file writes that failed (before retry accounting).",
	})

	droppedTasks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shardkv_write_tasks_dropped_total",
		Help: "Async write tasks dropped after exhausting retries.",
	})
)

func RecordOp(op, status string) {
	opsTotal.WithLabelValues(op, status).Inc()
}

func SetQueueDepth(n int) {
	queueDepth.Set(float64(n))
}

func ObserveFlush(d time.Duration) {
	flushDuration.Observe(d.Seconds())
}

func RecordFlushFailure() {
	flushFailures.Inc()
}

func RecordDroppedTask() {
	droppedTasks.Inc()
}

// Serve starts a /metrics endpoint on addr. The returned server should
// be closed when the run finishes.
func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		// http.ErrServerClosed is the normal shutdown path.
		_ = srv.ListenAndServe()
	}()
	return srv
}

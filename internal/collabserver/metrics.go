package collabserver

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are package-level, global-only gauges/counters/histograms,
// the same shape etalazz-vsa's telemetry/churn package registers:
// no per-request label cardinality, MustRegister once in init.
var (
	operationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "collabcore_operations_total",
		Help: "Total channel-engine operations processed, by operation and outcome.",
	}, []string{"operation", "outcome"})

	operationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "collabcore_operation_duration_seconds",
		Help:    "Channel-engine operation latency, by operation.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	txConflictsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "collabcore_tx_conflicts_total",
		Help: "Total database serialization conflicts surfaced as Conflict errors (spec §5).",
	})

	activeRooms = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "collabcore_active_rooms",
		Help: "Rooms with at least one participant, last observed count.",
	})
)

func init() {
	prometheus.MustRegister(operationsTotal, operationDuration, txConflictsTotal, activeRooms)
}

func recordOperation(operation string, start time.Time, err error) {
	operationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	operationsTotal.WithLabelValues(operation, outcome).Inc()
}

// SetActiveRooms updates the active-room gauge. cmd/collabd does not
// call it, so the gauge stays at 0 unless another caller sets it.
func SetActiveRooms(n int) {
	activeRooms.Set(float64(n))
}

// RecordConflict increments the retriable-conflict counter; callers
// check channelgraph.Kind(err) == channelgraph.KindConflict first.
func RecordConflict() {
	txConflictsTotal.Inc()
}

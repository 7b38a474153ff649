package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// StoreMetrics records marketplace store operations and durable-mirror failures.
type StoreMetrics struct {
	duration    *prometheus.HistogramVec
	success     *prometheus.CounterVec
	failure     *prometheus.CounterVec
	persistFail *prometheus.CounterVec
}

// NewStoreMetrics registers the store metrics on the provided registerer.
func NewStoreMetrics(reg prometheus.Registerer) *StoreMetrics {
	if reg == nil {
		return &StoreMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "store_operation_duration_seconds",
		Help:    "Duration of marketplace store operations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "store_operation_success_total",
		Help: "Marketplace store operations that completed.",
	}, []string{"operation"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "store_operation_failure_total",
		Help: "Marketplace store operations rejected with an error.",
	}, []string{"operation", "code"})
	persistFail := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "store_persistence_failure_total",
		Help: "Durable mirror writes that failed and were swallowed.",
	}, []string{"key"})
	reg.MustRegister(duration, success, failure, persistFail)
	return &StoreMetrics{
		duration:    duration,
		success:     success,
		failure:     failure,
		persistFail: persistFail,
	}
}

// ObserveDuration records the duration for the named operation.
func (m *StoreMetrics) ObserveDuration(op string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(op)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the named operation.
func (m *StoreMetrics) IncSuccess(op string) {
	if m == nil || m.success == nil {
		return
	}
	m.success.WithLabelValues(normalizeLabel(op)).Inc()
}

// IncFailure increments the failure counter for the named operation and error code.
func (m *StoreMetrics) IncFailure(op, code string) {
	if m == nil || m.failure == nil {
		return
	}
	m.failure.WithLabelValues(normalizeLabel(op), normalizeLabel(code)).Inc()
}

// IncPersistenceFailure counts a failed write of the given storage key.
func (m *StoreMetrics) IncPersistenceFailure(key string) {
	if m == nil || m.persistFail == nil {
		return
	}
	m.persistFail.WithLabelValues(normalizeLabel(key)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}

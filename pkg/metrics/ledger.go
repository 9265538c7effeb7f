package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// LedgerMetrics records ledger write activity per operation.
type LedgerMetrics struct {
	duration *prometheus.HistogramVec
	applied  *prometheus.CounterVec
	skipped  *prometheus.CounterVec
	failure  *prometheus.CounterVec
}

// NewLedgerMetrics registers the ledger metrics on the provided registerer.
func NewLedgerMetrics(reg prometheus.Registerer) *LedgerMetrics {
	if reg == nil {
		return &LedgerMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ledger_op_duration_seconds",
		Help:    "Duration of ledger write operations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})
	applied := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_op_applied",
		Help: "Ledger operations that wrote journal entries.",
	}, []string{"op"})
	skipped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_op_skipped",
		Help: "Ledger operations skipped because no account was mirrored.",
	}, []string{"op"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_op_failure",
		Help: "Failed ledger write operations.",
	}, []string{"op"})
	reg.MustRegister(duration, applied, skipped, failure)
	return &LedgerMetrics{
		duration: duration,
		applied:  applied,
		skipped:  skipped,
		failure:  failure,
	}
}

// ObserveDuration records the duration for the named ledger operation.
func (l *LedgerMetrics) ObserveDuration(op string, duration time.Duration) {
	if l == nil || l.duration == nil {
		return
	}
	l.duration.WithLabelValues(normalizeLabel(op)).Observe(duration.Seconds())
}

// IncApplied increments the applied counter for the named operation.
func (l *LedgerMetrics) IncApplied(op string) {
	if l == nil || l.applied == nil {
		return
	}
	l.applied.WithLabelValues(normalizeLabel(op)).Inc()
}

// IncSkipped increments the skipped counter for the named operation.
func (l *LedgerMetrics) IncSkipped(op string) {
	if l == nil || l.skipped == nil {
		return
	}
	l.skipped.WithLabelValues(normalizeLabel(op)).Inc()
}

// IncFailure increments the failure counter for the named operation.
func (l *LedgerMetrics) IncFailure(op string) {
	if l == nil || l.failure == nil {
		return
	}
	l.failure.WithLabelValues(normalizeLabel(op)).Inc()
}

func normalizeLabel(op string) string {
	if op == "" {
		return "unknown"
	}
	return op
}

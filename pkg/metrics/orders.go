package metrics

import "github.com/prometheus/client_golang/prometheus"

// OrderMetrics records order lifecycle activity.
type OrderMetrics struct {
	created           prometheus.Counter
	completed         prometheus.Counter
	reopened          prometheus.Counter
	cancelled         prometheus.Counter
	sequenceConflicts prometheus.Counter
}

// NewOrderMetrics registers the order metrics on the provided registerer.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	created := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_created",
		Help: "Orders opened.",
	})
	completed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_completed",
		Help: "Orders that reached zero balance and completed.",
	})
	reopened := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_reopened",
		Help: "Completed orders reopened by a payment or item change.",
	})
	cancelled := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_cancelled",
		Help: "Orders cancelled.",
	})
	sequenceConflicts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sequence_conflicts",
		Help: "Number allocations lost to a concurrent seed race.",
	})
	reg.MustRegister(created, completed, reopened, cancelled, sequenceConflicts)
	return &OrderMetrics{
		created:           created,
		completed:         completed,
		reopened:          reopened,
		cancelled:         cancelled,
		sequenceConflicts: sequenceConflicts,
	}
}

// IncCreated increments the created counter.
func (o *OrderMetrics) IncCreated() {
	if o == nil || o.created == nil {
		return
	}
	o.created.Inc()
}

// IncCompleted increments the completed counter.
func (o *OrderMetrics) IncCompleted() {
	if o == nil || o.completed == nil {
		return
	}
	o.completed.Inc()
}

// IncReopened increments the reopened counter.
func (o *OrderMetrics) IncReopened() {
	if o == nil || o.reopened == nil {
		return
	}
	o.reopened.Inc()
}

// IncCancelled increments the cancelled counter.
func (o *OrderMetrics) IncCancelled() {
	if o == nil || o.cancelled == nil {
		return
	}
	o.cancelled.Inc()
}

// IncSequenceConflict increments the sequence conflict counter.
func (o *OrderMetrics) IncSequenceConflict() {
	if o == nil || o.sequenceConflicts == nil {
		return
	}
	o.sequenceConflicts.Inc()
}

package metrics

import "github.com/prometheus/client_golang/prometheus"

// PaymentMetrics records payment lifecycle activity.
type PaymentMetrics struct {
	applied prometheus.Counter
	edited  prometheus.Counter
	deleted prometheus.Counter
}

// NewPaymentMetrics registers the payment metrics on the provided registerer.
func NewPaymentMetrics(reg prometheus.Registerer) *PaymentMetrics {
	if reg == nil {
		return &PaymentMetrics{}
	}
	applied := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "payments_applied",
		Help: "Payments applied to orders.",
	})
	edited := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "payments_edited",
		Help: "Payments edited after application.",
	})
	deleted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "payments_deleted",
		Help: "Payments removed from orders.",
	})
	reg.MustRegister(applied, edited, deleted)
	return &PaymentMetrics{
		applied: applied,
		edited:  edited,
		deleted: deleted,
	}
}

// IncApplied increments the applied counter.
func (p *PaymentMetrics) IncApplied() {
	if p == nil || p.applied == nil {
		return
	}
	p.applied.Inc()
}

// IncEdited increments the edited counter.
func (p *PaymentMetrics) IncEdited() {
	if p == nil || p.edited == nil {
		return
	}
	p.edited.Inc()
}

// IncDeleted increments the deleted counter.
func (p *PaymentMetrics) IncDeleted() {
	if p == nil || p.deleted == nil {
		return
	}
	p.deleted.Inc()
}

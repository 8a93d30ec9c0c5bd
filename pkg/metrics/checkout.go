package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records counters for the express checkout lifecycle.
type CheckoutMetrics struct {
	ordersCreated     prometheus.Counter
	ordersPlaced      *prometheus.CounterVec
	ordersCanceled    prometheus.Counter
	placementFailures prometheus.Counter
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	created := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "express_orders_created_total",
		Help: "Orders created ahead of payment confirmation.",
	})
	placed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "express_orders_placed_total",
		Help: "Orders placed after the buyer returned from the provider.",
	}, []string{"state"})
	canceled := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "express_orders_canceled_total",
		Help: "Stale pending orders canceled on checkout re-entry.",
	})
	failures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "express_placement_failures_total",
		Help: "Order placement attempts that ended in compensating cleanup.",
	})
	reg.MustRegister(created, placed, canceled, failures)
	return &CheckoutMetrics{
		ordersCreated:     created,
		ordersPlaced:      placed,
		ordersCanceled:    canceled,
		placementFailures: failures,
	}
}

// IncCreated increments the created-order counter.
func (m *CheckoutMetrics) IncCreated() {
	if m == nil || m.ordersCreated == nil {
		return
	}
	m.ordersCreated.Inc()
}

// IncPlaced increments the placed-order counter for the final state.
func (m *CheckoutMetrics) IncPlaced(state string) {
	if m == nil || m.ordersPlaced == nil {
		return
	}
	m.ordersPlaced.WithLabelValues(state).Inc()
}

// IncCanceled increments the stale-order cancellation counter.
func (m *CheckoutMetrics) IncCanceled() {
	if m == nil || m.ordersCanceled == nil {
		return
	}
	m.ordersCanceled.Inc()
}

// IncPlacementFailure increments the compensated-failure counter.
func (m *CheckoutMetrics) IncPlacementFailure() {
	if m == nil || m.placementFailures == nil {
		return
	}
	m.placementFailures.Inc()
}

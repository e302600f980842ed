package metrics

import "github.com/prometheus/client_golang/prometheus"

// CartMetrics counts cart activity. It satisfies cart.Recorder.
type CartMetrics struct {
	actions       *prometheus.CounterVec
	persistErrors *prometheus.CounterVec
	fallbacks     *prometheus.CounterVec
	orders        *prometheus.CounterVec
}

// NewCartMetrics registers the cart metrics on the provided registerer.
func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	if reg == nil {
		return &CartMetrics{}
	}
	actions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_actions_total",
		Help: "Cart actions dispatched, by action type.",
	}, []string{"action"})
	persistErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_persist_failures_total",
		Help: "Cart blob store failures, by operation.",
	}, []string{"op"})
	fallbacks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_restore_fallbacks_total",
		Help: "Cart restores that started from an empty cart, by reason.",
	}, []string{"reason"})
	orders := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_submissions_total",
		Help: "Checkout submissions, by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(actions, persistErrors, fallbacks, orders)
	return &CartMetrics{
		actions:       actions,
		persistErrors: persistErrors,
		fallbacks:     fallbacks,
		orders:        orders,
	}
}

func (m *CartMetrics) ActionDispatched(actionType string) {
	if m == nil || m.actions == nil {
		return
	}
	m.actions.WithLabelValues(normalizeLabel(actionType)).Inc()
}

func (m *CartMetrics) PersistFailed(op string) {
	if m == nil || m.persistErrors == nil {
		return
	}
	m.persistErrors.WithLabelValues(normalizeLabel(op)).Inc()
}

func (m *CartMetrics) RestoreFellBack(reason string) {
	if m == nil || m.fallbacks == nil {
		return
	}
	m.fallbacks.WithLabelValues(normalizeLabel(reason)).Inc()
}

// OrderSubmitted records a checkout submission outcome ("submitted", "rejected", "failed").
func (m *CartMetrics) OrderSubmitted(outcome string) {
	if m == nil || m.orders == nil {
		return
	}
	m.orders.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}

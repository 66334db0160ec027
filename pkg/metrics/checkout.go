package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records order placement and payment outcomes.
type CheckoutMetrics struct {
	ordersPlaced     *prometheus.CounterVec
	paymentsVerified prometheus.Counter
	paymentFailures  prometheus.Counter
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	ordersPlaced := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_placed_total",
		Help: "Orders placed, by payment method.",
	}, []string{"payment_method"})
	paymentsVerified := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "payments_verified_total",
		Help: "Online payments verified.",
	})
	paymentFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "payment_failures_total",
		Help: "Online payment verification failures.",
	})
	reg.MustRegister(ordersPlaced, paymentsVerified, paymentFailures)
	return &CheckoutMetrics{
		ordersPlaced:     ordersPlaced,
		paymentsVerified: paymentsVerified,
		paymentFailures:  paymentFailures,
	}
}

// IncOrderPlaced increments the placement counter for the method label.
func (c *CheckoutMetrics) IncOrderPlaced(paymentMethod string) {
	if c == nil || c.ordersPlaced == nil {
		return
	}
	c.ordersPlaced.WithLabelValues(normalizeLabel(paymentMethod)).Inc()
}

// IncPaymentVerified increments the verified payment counter.
func (c *CheckoutMetrics) IncPaymentVerified() {
	if c == nil || c.paymentsVerified == nil {
		return
	}
	c.paymentsVerified.Inc()
}

// IncPaymentFailure increments the failed payment counter.
func (c *CheckoutMetrics) IncPaymentFailure() {
	if c == nil || c.paymentFailures == nil {
		return
	}
	c.paymentFailures.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Storefront records cart, checkout, order and email outcomes.
type Storefront struct {
	cartStorageFailures *prometheus.CounterVec
	checkoutSteps       *prometheus.CounterVec
	ordersPlaced        *prometheus.CounterVec
	orderSubmit         prometheus.Histogram
	statusEmails        *prometheus.CounterVec
}

// NewStorefront registers the storefront metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewStorefront(reg prometheus.Registerer) *Storefront {
	if reg == nil {
		return &Storefront{}
	}
	cartStorageFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_storage_failures_total",
		Help: "Cart storage operations that failed and were swallowed.",
	}, []string{"op"})
	checkoutSteps := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_step_transitions_total",
		Help: "Checkout step transition attempts by origin step and result.",
	}, []string{"from", "result"})
	ordersPlaced := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_placed_total",
		Help: "Order submissions by result.",
	}, []string{"result"})
	orderSubmit := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "order_submission_duration_seconds",
		Help:    "Duration of order submissions in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	statusEmails := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_status_emails_total",
		Help: "Order status emails by status and result.",
	}, []string{"status", "result"})
	reg.MustRegister(cartStorageFailures, checkoutSteps, ordersPlaced, orderSubmit, statusEmails)
	return &Storefront{
		cartStorageFailures: cartStorageFailures,
		checkoutSteps:       checkoutSteps,
		ordersPlaced:        ordersPlaced,
		orderSubmit:         orderSubmit,
		statusEmails:        statusEmails,
	}
}

// IncCartStorageFailure counts a swallowed load, save or remove failure.
func (s *Storefront) IncCartStorageFailure(op string) {
	if s == nil || s.cartStorageFailures == nil {
		return
	}
	s.cartStorageFailures.WithLabelValues(normalizeLabel(op)).Inc()
}

// IncCheckoutTransition counts an advance attempt from the given step.
func (s *Storefront) IncCheckoutTransition(from string, ok bool) {
	if s == nil || s.checkoutSteps == nil {
		return
	}
	s.checkoutSteps.WithLabelValues(normalizeLabel(from), resultLabel(ok)).Inc()
}

// ObserveOrderSubmission records the outcome and latency of one submission.
// result is created, replayed or failed.
func (s *Storefront) ObserveOrderSubmission(result string, duration time.Duration) {
	if s == nil || s.ordersPlaced == nil {
		return
	}
	s.ordersPlaced.WithLabelValues(normalizeLabel(result)).Inc()
	s.orderSubmit.Observe(duration.Seconds())
}

// IncStatusEmail counts an order status email attempt.
func (s *Storefront) IncStatusEmail(status string, ok bool) {
	if s == nil || s.statusEmails == nil {
		return
	}
	s.statusEmails.WithLabelValues(normalizeLabel(status), resultLabel(ok)).Inc()
}

func resultLabel(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// StorefrontMetrics records counters for the checkout and webhook paths.
type StorefrontMetrics struct {
	checkoutStarted  *prometheus.CounterVec
	checkoutFailed   *prometheus.CounterVec
	webhookEvents    *prometheus.CounterVec
	webhookDuplicate prometheus.Counter
	catalogFetch     *prometheus.HistogramVec
	quoteSubmissions *prometheus.CounterVec
}

// NewStorefrontMetrics registers the storefront metrics on the provided registerer.
func NewStorefrontMetrics(reg prometheus.Registerer) *StorefrontMetrics {
	if reg == nil {
		return &StorefrontMetrics{}
	}
	checkoutStarted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_sessions_started",
		Help: "Stripe Checkout sessions created, by delivery location.",
	}, []string{"location"})
	checkoutFailed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_sessions_failed",
		Help: "Checkout attempts rejected before a session was created.",
	}, []string{"reason"})
	webhookEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stripe_webhook_events",
		Help: "Stripe webhook events processed, by type and outcome.",
	}, []string{"type", "outcome"})
	webhookDuplicate := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "stripe_webhook_duplicates",
		Help: "Stripe webhook events skipped by the idempotency guard.",
	})
	catalogFetch := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "catalog_fetch_duration_seconds",
		Help:    "Duration of upstream catalog fetches in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	quoteSubmissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "quote_submissions",
		Help: "Quote request submissions, by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(checkoutStarted, checkoutFailed, webhookEvents, webhookDuplicate, catalogFetch, quoteSubmissions)
	return &StorefrontMetrics{
		checkoutStarted:  checkoutStarted,
		checkoutFailed:   checkoutFailed,
		webhookEvents:    webhookEvents,
		webhookDuplicate: webhookDuplicate,
		catalogFetch:     catalogFetch,
		quoteSubmissions: quoteSubmissions,
	}
}

// IncCheckoutStarted increments the started counter for a location.
func (m *StorefrontMetrics) IncCheckoutStarted(location string) {
	if m == nil || m.checkoutStarted == nil {
		return
	}
	m.checkoutStarted.WithLabelValues(normalizeLabel(location)).Inc()
}

// IncCheckoutFailed increments the failure counter with a reason label.
func (m *StorefrontMetrics) IncCheckoutFailed(reason string) {
	if m == nil || m.checkoutFailed == nil {
		return
	}
	m.checkoutFailed.WithLabelValues(normalizeLabel(reason)).Inc()
}

// IncWebhookEvent increments the webhook counter for an event type/outcome pair.
func (m *StorefrontMetrics) IncWebhookEvent(eventType, outcome string) {
	if m == nil || m.webhookEvents == nil {
		return
	}
	m.webhookEvents.WithLabelValues(normalizeLabel(eventType), normalizeLabel(outcome)).Inc()
}

// IncWebhookDuplicate increments the dedupe counter.
func (m *StorefrontMetrics) IncWebhookDuplicate() {
	if m == nil || m.webhookDuplicate == nil {
		return
	}
	m.webhookDuplicate.Inc()
}

// ObserveCatalogFetch records the duration of an upstream catalog fetch.
func (m *StorefrontMetrics) ObserveCatalogFetch(outcome string, duration time.Duration) {
	if m == nil || m.catalogFetch == nil {
		return
	}
	m.catalogFetch.WithLabelValues(normalizeLabel(outcome)).Observe(duration.Seconds())
}

// IncQuoteSubmission increments the quote counter with an outcome label.
func (m *StorefrontMetrics) IncQuoteSubmission(outcome string) {
	if m == nil || m.quoteSubmissions == nil {
		return
	}
	m.quoteSubmissions.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DeliveryMetrics records quote and booking outcomes against the carrier.
type DeliveryMetrics struct {
	quoteDuration *prometheus.HistogramVec
	quotes        *prometheus.CounterVec
	bookSuccess   *prometheus.CounterVec
	bookFailure   *prometheus.CounterVec
}

// NewDeliveryMetrics registers the delivery metrics on the provided registerer.
func NewDeliveryMetrics(reg prometheus.Registerer) *DeliveryMetrics {
	if reg == nil {
		return &DeliveryMetrics{}
	}
	quoteDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "delivery_quote_duration_seconds",
		Help:    "Duration of delivery quote requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"source"})
	quotes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "delivery_quotes",
		Help: "Delivery quotes served, by source.",
	}, []string{"source"})
	bookSuccess := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "delivery_booking_success",
		Help: "Successful carrier bookings.",
	}, []string{"source"})
	bookFailure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "delivery_booking_failure",
		Help: "Failed carrier bookings.",
	}, []string{"source"})
	reg.MustRegister(quoteDuration, quotes, bookSuccess, bookFailure)
	return &DeliveryMetrics{
		quoteDuration: quoteDuration,
		quotes:        quotes,
		bookSuccess:   bookSuccess,
		bookFailure:   bookFailure,
	}
}

// ObserveQuoteDuration records how long a quote took for the given source.
func (m *DeliveryMetrics) ObserveQuoteDuration(source string, duration time.Duration) {
	if m == nil || m.quoteDuration == nil {
		return
	}
	m.quoteDuration.WithLabelValues(normalizeLabel(source)).Observe(duration.Seconds())
}

// IncQuote counts a served quote for the given source.
func (m *DeliveryMetrics) IncQuote(source string) {
	if m == nil || m.quotes == nil {
		return
	}
	m.quotes.WithLabelValues(normalizeLabel(source)).Inc()
}

// IncBookingSuccess counts a successful booking for the given source.
func (m *DeliveryMetrics) IncBookingSuccess(source string) {
	if m == nil || m.bookSuccess == nil {
		return
	}
	m.bookSuccess.WithLabelValues(normalizeLabel(source)).Inc()
}

// IncBookingFailure counts a failed booking for the given source.
func (m *DeliveryMetrics) IncBookingFailure(source string) {
	if m == nil || m.bookFailure == nil {
		return
	}
	m.bookFailure.WithLabelValues(normalizeLabel(source)).Inc()
}

func normalizeLabel(source string) string {
	if source == "" {
		return "unknown"
	}
	return source
}

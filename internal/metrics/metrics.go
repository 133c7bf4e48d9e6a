package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "salon"

// Metrics holds the Prometheus collectors of the API.
type Metrics struct {
	// HTTPRequests counts handled requests by route, method and status.
	HTTPRequests *prometheus.CounterVec

	// HTTPDuration is the request latency by route and method.
	HTTPDuration *prometheus.HistogramVec

	// BookingsCreated counts committed bookings by channel (admin, public).
	BookingsCreated *prometheus.CounterVec

	// BookingConflicts counts writes rejected because the slot was taken.
	BookingConflicts prometheus.Counter

	// Notifications counts notification outcomes (sent, failed, dropped).
	Notifications *prometheus.CounterVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		HTTPRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"route", "method", "status"},
		),

		HTTPDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),

		BookingsCreated: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "bookings_created_total",
				Help:      "Total number of bookings created",
			},
			[]string{"channel"},
		),

		BookingConflicts: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "booking_conflicts_total",
				Help:      "Total number of booking writes rejected by a slot conflict",
			},
		),

		Notifications: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "notifications_total",
				Help:      "Total number of notifications by outcome",
			},
			[]string{"event", "outcome"},
		),
	}
}

// The helpers below accept a nil receiver so callers can run without
// metrics in tests.

func (m *Metrics) BookingCreated(channel string) {
	if m == nil {
		return
	}
	m.BookingsCreated.WithLabelValues(channel).Inc()
}

func (m *Metrics) BookingConflict() {
	if m == nil {
		return
	}
	m.BookingConflicts.Inc()
}

func (m *Metrics) Notification(event, outcome string) {
	if m == nil {
		return
	}
	m.Notifications.WithLabelValues(event, outcome).Inc()
}

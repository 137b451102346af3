package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "cafe",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cafe",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cafe",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "path"},
	)

	ordersSubmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cafe",
			Subsystem: "checkout",
			Name:      "orders_submitted_total",
			Help:      "Checkout attempts by outcome (placed, invalid, failed).",
		},
		[]string{"outcome"},
	)

	ordersCompleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "cafe",
			Subsystem: "kitchen",
			Name:      "orders_completed_total",
			Help:      "Orders marked completed by a kitchen display.",
		},
	)

	activeTickets = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "cafe",
			Subsystem: "kitchen",
			Name:      "active_tickets",
			Help:      "Pending orders currently shown on the kitchen display.",
		},
	)

	signals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cafe",
			Subsystem: "notifier",
			Name:      "signals_total",
			Help:      "Store-changed signals by direction (published, received).",
		},
		[]string{"direction"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		ordersSubmitted,
		ordersCompleted,
		activeTickets,
		signals,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler exposes the registered collectors.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

const (
	OutcomePlaced  = "placed"
	OutcomeInvalid = "invalid"
	OutcomeFailed  = "failed"
)

func RecordCheckout(outcome string) { ordersSubmitted.WithLabelValues(outcome).Inc() }

func RecordCompletion() { ordersCompleted.Inc() }

func SetActiveTickets(n int) { activeTickets.Set(float64(n)) }

func RecordSignalPublished() { signals.WithLabelValues("published").Inc() }

func RecordSignalReceived() { signals.WithLabelValues("received").Inc() }

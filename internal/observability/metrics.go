package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce             sync.Once
	apiRequestsTotal         *prometheus.CounterVec
	apiLatencySeconds        *prometheus.HistogramVec
	apiErrorsTotal           *prometheus.CounterVec
	submissionReviewsTotal   *prometheus.CounterVec
	realtimeConnectionsTotal prometheus.Counter
	realtimeEventsTotal      *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "openhack_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "openhack_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "openhack_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		submissionReviewsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "openhack_submission_reviews_total",
			Help: "Total number of submission review decisions.",
		}, []string{"decision"})

		realtimeConnectionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "openhack_realtime_connections_total",
			Help: "Total number of websocket subscriptions accepted.",
		})

		realtimeEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "openhack_realtime_events_total",
			Help: "Total number of realtime events published per room.",
		}, []string{"room"})

		prometheus.MustRegister(
			apiRequestsTotal,
			apiLatencySeconds,
			apiErrorsTotal,
			submissionReviewsTotal,
			realtimeConnectionsTotal,
			realtimeEventsTotal,
		)
	})
}

// APIRequests exposes the counter for API requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram for API requests.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the counter for API error responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// SubmissionReviews exposes the counter for review decisions.
func SubmissionReviews() *prometheus.CounterVec {
	RegisterMetrics()
	return submissionReviewsTotal
}

// RealtimeConnections exposes the websocket subscription counter.
func RealtimeConnections() prometheus.Counter {
	RegisterMetrics()
	return realtimeConnectionsTotal
}

// RealtimeEvents exposes the realtime event counter.
func RealtimeEvents() *prometheus.CounterVec {
	RegisterMetrics()
	return realtimeEventsTotal
}

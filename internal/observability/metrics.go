package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Assembly outcomes recorded by ResultsAssembled.
const (
	OutcomeCreated  = "created"
	OutcomeExisting = "existing"
	OutcomeFailed   = "failed"
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	HTTPRequests      *prometheus.CounterVec
	HTTPDuration      *prometheus.HistogramVec
	ResultsAssembled  *prometheus.CounterVec
	SubmissionsScored *prometheus.CounterVec
	AnswersSkipped    prometheus.Counter
}

// NewMetrics registers the collectors with reg. Pass prometheus.NewRegistry()
// in tests to avoid duplicate registration.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "raveliquar_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "raveliquar_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		ResultsAssembled: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "raveliquar_results_assembled_total",
			Help: "Run completions by outcome.",
		}, []string{"outcome"}),
		SubmissionsScored: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "raveliquar_submissions_scored_total",
			Help: "Scored mini-test submissions by test.",
		}, []string{"test_id"}),
		AnswersSkipped: factory.NewCounter(prometheus.CounterOpts{
			Name: "raveliquar_answers_skipped_total",
			Help: "Submitted answers that referenced an unknown question.",
		}),
	}
}

// ObserveRequest records one HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

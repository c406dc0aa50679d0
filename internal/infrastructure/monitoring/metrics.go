package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/turtacn/crp/internal/domain/service"
	"github.com/turtacn/crp/pkg/constants"
)

// Metrics manages the Prometheus metrics.
type Metrics struct {
	Submissions            *prometheus.CounterVec
	SubmissionLatency      *prometheus.HistogramVec
	StaleCompletions       prometheus.Counter
	RiskLevels             *prometheus.CounterVec
	SessionUpdateConflicts *prometheus.CounterVec
	HTTPRequests           *prometheus.CounterVec
	HTTPRequestDuration    *prometheus.HistogramVec
	HTTPRequestsInFlight   prometheus.Gauge
	RateLimitHits          *prometheus.CounterVec
}

var _ service.Metrics = (*Metrics)(nil)

// NewMetrics creates the metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	ns := constants.MetricsNamespace

	return &Metrics{
		Submissions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "prediction_submissions_total",
				Help:      "Total number of applied prediction submissions by outcome.",
			},
			[]string{"outcome"},
		),
		SubmissionLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: ns,
				Name:      "prediction_latency_seconds",
				Help:      "Latency of prediction calls to the model service.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"outcome"},
		),
		StaleCompletions: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "prediction_stale_completions_total",
				Help:      "Completions dropped because a newer submission had started.",
			},
		),
		RiskLevels: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "risk_level_total",
				Help:      "Risk levels shown on the result panel.",
			},
			[]string{"level"},
		),
		SessionUpdateConflicts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "session_update_conflicts_total",
				Help:      "Optimistic session update retries.",
			},
			[]string{"backend"},
		),
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: ns,
				Name:      "http_request_duration_seconds",
				Help:      "Latency of HTTP requests.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: ns,
				Name:      "http_requests_in_flight",
				Help:      "Number of HTTP requests being served.",
			},
		),
		RateLimitHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      "rate_limit_hits_total",
				Help:      "Total number of rate limit hits.",
			},
			[]string{"route"},
		),
	}
}

// RecordSubmission records metrics for an applied submission.
func (m *Metrics) RecordSubmission(outcome string, duration time.Duration) {
	m.Submissions.WithLabelValues(outcome).Inc()
	m.SubmissionLatency.WithLabelValues(outcome).Observe(duration.Seconds())
}

// RecordStaleCompletion records a dropped completion.
func (m *Metrics) RecordStaleCompletion() {
	m.StaleCompletions.Inc()
}

// RecordRiskLevel records the level shown to the user.
func (m *Metrics) RecordRiskLevel(level string) {
	m.RiskLevels.WithLabelValues(level).Inc()
}

// RecordSessionUpdateConflict records an optimistic update retry.
func (m *Metrics) RecordSessionUpdateConflict(backend string) {
	m.SessionUpdateConflicts.WithLabelValues(backend).Inc()
}

// ObserveHTTPRequest records one served HTTP request.
func (m *Metrics) ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	m.HTTPRequests.WithLabelValues(method, path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordRateLimitHit records a rejected request.
func (m *Metrics) RecordRateLimitHit(route string) {
	m.RateLimitHits.WithLabelValues(route).Inc()
}

//Personal.AI order the ending

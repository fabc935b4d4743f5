package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	ValidationRequests *prometheus.CounterVec
	ValidationErrors   *prometheus.CounterVec
	EndpointLatency    *prometheus.HistogramVec

	// Upstream scoring metrics
	UpstreamAttempts *prometheus.CounterVec
	UpstreamRetries  prometheus.Counter
	ScoreLatency     prometheus.Histogram
	CircuitState     prometheus.Gauge
	CircuitOpens     prometheus.Counter
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		ValidationRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "riskgate_validation_requests_total",
			Help: "Total number of applicant validation requests, labeled by result",
		}, []string{"result"}),
		ValidationErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "riskgate_validation_errors_total",
			Help: "Total number of field validation failures, labeled by field",
		}, []string{"field"}),
		EndpointLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "riskgate_endpoint_latency_seconds",
			Help:    "Latency of endpoints in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		UpstreamAttempts: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "riskgate_upstream_attempts_total",
			Help: "Total number of upstream scoring attempts, labeled by outcome",
		}, []string{"outcome"}),
		UpstreamRetries: promauto.NewCounter(prometheus.CounterOpts{
			Name: "riskgate_upstream_retries_total",
			Help: "Total number of upstream scoring retries",
		}),
		ScoreLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "riskgate_upstream_score_latency_seconds",
			Help:    "End-to-end latency of upstream scoring calls including retries",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30},
		}),
		CircuitState: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "riskgate_circuit_state",
			Help: "Circuit breaker state for the scoring upstream (0=closed, 1=open, 2=half-open)",
		}),
		CircuitOpens: promauto.NewCounter(prometheus.CounterOpts{
			Name: "riskgate_circuit_opens_total",
			Help: "Total number of circuit breaker open transitions",
		}),
	}
}

// RecordValidation increments the request counter by result
// ("accepted", "rejected", "upstream_error").
func (m *Metrics) RecordValidation(result string) {
	m.ValidationRequests.WithLabelValues(result).Inc()
}

// RecordFieldError increments the per-field validation failure counter.
func (m *Metrics) RecordFieldError(field string) {
	m.ValidationErrors.WithLabelValues(field).Inc()
}

// RecordUpstreamAttempt increments the attempt counter by outcome
// ("success", "retryable", "failed").
func (m *Metrics) RecordUpstreamAttempt(outcome string) {
	m.UpstreamAttempts.WithLabelValues(outcome).Inc()
}

// SetCircuitState records the breaker state as a gauge value.
func (m *Metrics) SetCircuitState(state float64) {
	m.CircuitState.Set(state)
}

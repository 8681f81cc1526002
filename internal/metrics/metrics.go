package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "churnguard"

// Metrics owns the service's Prometheus collectors on a private registry
type Metrics struct {
	registry        *prometheus.Registry
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	assessments     *prometheus.CounterVec
	probability     *prometheus.HistogramVec
	failures        *prometheus.CounterVec
}

// New registers all collectors, plus the Go runtime and process collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		assessments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assessments_total",
			Help:      "Completed assessments by variant and band.",
		}, []string{"variant", "band"}),
		probability: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "churn_probability",
			Help:      "Distribution of assessed churn probabilities.",
			Buckets:   prometheus.LinearBuckets(0.05, 0.1, 10),
		}, []string{"variant"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assessment_failures_total",
			Help:      "Rejected assessments by variant and error code.",
		}, []string{"variant", "code"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.requestDuration,
		m.assessments,
		m.probability,
		m.failures,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry, mainly for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRequest records one finished HTTP request
func (m *Metrics) ObserveRequest(route, method string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// ObserveAssessment records one successful assessment
func (m *Metrics) ObserveAssessment(variant, band string, probability float64) {
	m.assessments.WithLabelValues(variant, band).Inc()
	m.probability.WithLabelValues(variant).Observe(probability)
}

// ObserveFailure records one rejected assessment
func (m *Metrics) ObserveFailure(variant, code string) {
	m.failures.WithLabelValues(variant, code).Inc()
}

// Package metrics exposes prometheus collectors for upstream traffic, rate
// limiter delays and comparison outcomes.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "panelcheck"

// Metrics groups the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	requests    *prometheus.CounterVec
	limiterWait *prometheus.HistogramVec
	genes       *prometheus.CounterVec
	runs        *prometheus.CounterVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Requests sent to upstream registries, by service, operation and outcome.",
		}, []string{"service", "operation", "outcome"}),
		limiterWait: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ratelimit_wait_seconds",
			Help:      "Time callers spent blocked by a rate limiter.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 5, 15, 30, 60},
		}, []string{"limiter"}),
		genes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "genes_compared_total",
			Help:      "Panel genes compared, by comparison status.",
		}, []string{"status"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Pipeline invocations, by terminal state.",
		}, []string{"state"}),
	}
	reg.MustRegister(m.requests, m.limiterWait, m.genes, m.runs)
	return m
}

// ObserveRequest counts one upstream request.
func (m *Metrics) ObserveRequest(service, operation, outcome string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(service, operation, outcome).Inc()
}

// ObserveWait records a rate limiter delay.
func (m *Metrics) ObserveWait(limiter string, d time.Duration) {
	if m == nil {
		return
	}
	m.limiterWait.WithLabelValues(limiter).Observe(d.Seconds())
}

// ObserveGene counts one gene comparison.
func (m *Metrics) ObserveGene(status string) {
	if m == nil {
		return
	}
	m.genes.WithLabelValues(status).Inc()
}

// ObserveRun counts one finished pipeline invocation.
func (m *Metrics) ObserveRun(state string) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(state).Inc()
}

// Handler serves the registry in the prometheus exposition format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

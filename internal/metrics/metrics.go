// Package metrics holds the prometheus collectors shared by the quote
// pipeline. A nil *Metrics is valid and records nothing, so library code and
// tests can skip wiring a registry.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "stockquote"

// Metrics is the collector set.
type Metrics struct {
	// EndpointRequests counts upstream calls by endpoint and outcome.
	EndpointRequests *prometheus.CounterVec
	// EndpointDuration times upstream calls by endpoint.
	EndpointDuration *prometheus.HistogramVec
	// ResolverSteps counts fallback-chain steps by chain, strategy and outcome.
	ResolverSteps *prometheus.CounterVec
	// Charts counts render attempts by renderer and outcome.
	Charts *prometheus.CounterVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		EndpointRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "endpoint_requests_total",
			Help:      "Upstream endpoint requests by outcome.",
		}, []string{"endpoint", "outcome"}),
		EndpointDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "endpoint_request_duration_seconds",
			Help:      "Upstream endpoint request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		ResolverSteps: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolver_steps_total",
			Help:      "Fallback chain steps by outcome.",
		}, []string{"chain", "strategy", "outcome"}),
		Charts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "charts_total",
			Help:      "Chart render attempts by outcome.",
		}, []string{"renderer", "outcome"}),
	}
}

// ObserveEndpoint records one upstream call.
func (m *Metrics) ObserveEndpoint(endpoint string, err error, took time.Duration) {
	if m == nil {
		return
	}
	m.EndpointRequests.WithLabelValues(endpoint, outcome(err)).Inc()
	m.EndpointDuration.WithLabelValues(endpoint).Observe(took.Seconds())
}

// ResolverStep records one strategy attempt. outcome is "hit", "miss" or "error".
func (m *Metrics) ResolverStep(chain, strategy, outcome string) {
	if m == nil {
		return
	}
	m.ResolverSteps.WithLabelValues(chain, strategy, outcome).Inc()
}

// Chart records one render attempt.
func (m *Metrics) Chart(renderer string, err error) {
	if m == nil {
		return
	}
	m.Charts.WithLabelValues(renderer, outcome(err)).Inc()
}

func outcome(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

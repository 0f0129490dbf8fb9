// Package observability provides Prometheus metrics collection for upstream
// API traffic.
package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusHooks implements apiclient.Hooks, recording one counter increment
// and one duration observation per upstream attempt, plus a counter for
// policy re-attempts.
type PrometheusHooks struct {
	requests  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	fallbacks *prometheus.CounterVec
}

// NewPrometheusHooks creates hooks registered on the default registry.
func NewPrometheusHooks() *PrometheusHooks {
	return NewPrometheusHooksWithRegisterer(prometheus.DefaultRegisterer)
}

// NewPrometheusHooksWithRegisterer creates hooks registered on reg.
func NewPrometheusHooksWithRegisterer(reg prometheus.Registerer) *PrometheusHooks {
	factory := promauto.With(reg)
	return &PrometheusHooks{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "dsbridge_upstream_requests_total",
			Help: "Upstream DeepSeek API attempts by endpoint and outcome.",
		}, []string{"method", "endpoint", "status"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dsbridge_upstream_request_duration_seconds",
			Help:    "Upstream DeepSeek API attempt duration.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "endpoint"}),
		fallbacks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "dsbridge_fallback_attempts_total",
			Help: "Policy-driven re-attempts by kind (reasoner, beta).",
		}, []string{"kind"}),
	}
}

// OnRequest implements apiclient.Hooks.
func (h *PrometheusHooks) OnRequest(_ context.Context, _, _ string) {}

// OnResult implements apiclient.Hooks.
func (h *PrometheusHooks) OnResult(_ context.Context, method, endpoint string, status int, duration time.Duration, err error) {
	label := strconv.Itoa(status)
	if status == 0 {
		label = "network_error"
		if err == nil {
			label = "unknown"
		}
	}
	h.requests.WithLabelValues(method, endpoint, label).Inc()
	h.duration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordFallback counts one policy-driven re-attempt of the given kind.
func (h *PrometheusHooks) RecordFallback(kind string) {
	h.fallbacks.WithLabelValues(kind).Inc()
}

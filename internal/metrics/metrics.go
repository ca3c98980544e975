// Package metrics exposes Prometheus collectors for query resolution,
// completion calls and HTTP traffic.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/budeshi/budeshi/internal/intelligence"
	"github.com/budeshi/budeshi/internal/llm"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "budeshi"

// Metrics owns a private registry so tests and multiple servers in one
// process never collide on registration.
type Metrics struct {
	registry *prometheus.Registry

	// resolutions counts finished resolutions.
	// Labels: path (local, external), outcome (answered, failed, missing_credential)
	resolutions *prometheus.CounterVec

	// intents counts classified intents on the local path.
	intents *prometheus.CounterVec

	// completionDuration measures remote completion latency.
	// Labels: outcome (success, error)
	completionDuration *prometheus.HistogramVec

	// httpRequests counts API requests by route template and status code.
	httpRequests *prometheus.CounterVec
}

// New builds the collectors and registers them together with the Go and
// process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolutions_total",
			Help:      "Resolved chat messages by path and outcome",
		}, []string{"path", "outcome"}),
		intents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "intents_total",
			Help:      "Classified intents for locally answered messages",
		}, []string{"intent"}),
		completionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "completion",
			Name:      "duration_seconds",
			Help:      "Latency of remote completion calls",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"outcome"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "API requests by method, route and status code",
		}, []string{"method", "route", "code"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.resolutions,
		m.intents,
		m.completionDuration,
		m.httpRequests,
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// OnResolution implements intelligence.ResolutionObserver. Only finished
// resolutions are counted.
func (m *Metrics) OnResolution(_ context.Context, event intelligence.ResolutionEvent) {
	if event.State != intelligence.StateDone {
		return
	}
	m.resolutions.WithLabelValues(string(event.Path), event.Outcome).Inc()
	if event.Intent != "" {
		m.intents.WithLabelValues(string(event.Intent)).Inc()
	}
}

// OnCallComplete implements llm.Observer.
func (m *Metrics) OnCallComplete(event llm.LLMCallEvent) {
	outcome := "success"
	if !event.Success {
		outcome = "error"
	}
	latency := time.Duration(event.LatencyMs) * time.Millisecond
	m.completionDuration.WithLabelValues(outcome).Observe(latency.Seconds())
}

// ObserveRequest records one handled API request.
func (m *Metrics) ObserveRequest(method, route string, code int) {
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
}

var (
	_ intelligence.ResolutionObserver = (*Metrics)(nil)
	_ llm.Observer                    = (*Metrics)(nil)
)

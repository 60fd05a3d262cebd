// Package metrics exposes Prometheus collectors fed by the relay's
// lifecycle hooks.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hinaba/parley/pkg/domain"
)

// Metrics holds the relay collectors and the registry they live in.
type Metrics struct {
	registry *prometheus.Registry

	dispatches       *prometheus.CounterVec
	dispatchDuration *prometheus.HistogramVec
	toolCalls        *prometheus.CounterVec
}

// New registers the parley collectors on reg. A nil reg gets a fresh
// registry, which keeps tests and embedded uses isolated.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		dispatches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "parley_dispatches_total",
				Help: "Completion dispatches by provider and outcome.",
			},
			[]string{"provider", "outcome"},
		),
		dispatchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "parley_dispatch_duration_seconds",
				Help: "Wall time of completion dispatches.",
			},
			[]string{"provider"},
		),
		toolCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "parley_tool_calls_total",
				Help: "Tool invocations by tool name and outcome.",
			},
			[]string{"tool", "outcome"},
		),
	}
}

// Hooks returns lifecycle hooks that feed the collectors. Attach them to a
// session via parley.WithLifecycleHooks.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnDispatchEnd: func(ctx context.Context, e *domain.DispatchEvent) {
			outcome := "success"
			if e.Err != "" {
				outcome = "error"
			}
			m.dispatches.WithLabelValues(e.Provider, outcome).Inc()
			m.dispatchDuration.WithLabelValues(e.Provider).Observe(e.Duration.Seconds())
		},
		OnToolReturn: func(ctx context.Context, e *domain.ToolEvent) {
			outcome := "success"
			if e.IsError {
				outcome = "error"
			}
			m.toolCalls.WithLabelValues(e.ToolName, outcome).Inc()
		},
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the backing registry for callers that register their own
// collectors alongside the relay's.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

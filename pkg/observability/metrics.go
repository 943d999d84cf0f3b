package observability

import (
	"context"
	"net/http"

	"github.com/aretw0/switchboard/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the orchestrator collectors on a private registry.
type Metrics struct {
	registry        *prometheus.Registry
	workflows       *prometheus.CounterVec
	workflowSeconds *prometheus.HistogramVec
	handlerRuns     *prometheus.CounterVec
	handlerSeconds  *prometheus.HistogramVec
}

// NewMetrics creates and registers the collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		workflows: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "switchboard_workflows_total",
				Help: "Total number of workflows by terminal status",
			},
			[]string{"status"},
		),
		workflowSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "switchboard_workflow_duration_seconds",
				Help:    "Duration of workflows, including the wait for the workflow gate",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"status"},
		),
		handlerRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "switchboard_handler_runs_total",
				Help: "Total number of handler executions",
			},
			[]string{"handler", "outcome"},
		),
		handlerSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "switchboard_handler_duration_seconds",
				Help:    "Duration of handler executions",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"handler"},
		),
	}
	m.registry.MustRegister(m.workflows, m.workflowSeconds, m.handlerRuns, m.handlerSeconds)
	return m
}

// Hooks returns the lifecycle hooks feeding the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnHandlerReturn: func(ctx context.Context, e *domain.HandlerEvent) {
			outcome := "ok"
			if e.IsError {
				outcome = "error"
			}
			m.handlerRuns.WithLabelValues(e.Handler, outcome).Inc()
			m.handlerSeconds.WithLabelValues(e.Handler).Observe(e.Duration.Seconds())
		},
		OnWorkflowEnd: func(ctx context.Context, e *domain.WorkflowEvent) {
			m.workflows.WithLabelValues(string(e.Status)).Inc()
			m.workflowSeconds.WithLabelValues(string(e.Status)).Observe(e.Duration.Seconds())
		},
	}
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the collectors in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

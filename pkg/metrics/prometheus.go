package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DispatchPasses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadforge_dispatch_passes_total",
			Help: "Total number of dispatch passes by outcome",
		},
		[]string{"outcome"},
	)

	DispatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "leadforge_dispatch_duration_seconds",
			Help:    "Duration of a full dispatch pass in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		},
	)

	EmailsDrained = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadforge_emails_drained_total",
			Help: "Total number of outreach emails drained by result",
		},
		[]string{"result"},
	)

	ScrapeRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadforge_scrape_runs_total",
			Help: "Total number of scrape job dispatches by type and status",
		},
		[]string{"type", "status"},
	)

	WorkflowExecutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadforge_workflow_executions_total",
			Help: "Total number of workflow executions by trigger",
		},
		[]string{"trigger"},
	)

	WorkflowStepFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "leadforge_workflow_step_failures_total",
			Help: "Total number of swallowed workflow step failures",
		},
	)
)

// Package observability holds the Prometheus metrics collector shared by the
// HTTP layer and the application services.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds all Prometheus metrics for the application
type Collector struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Business metrics
	MergeBatches     prometheus.Counter
	NodesMerged      prometheus.Counter
	EdgesMerged      prometheus.Counter
	VersionsCaptured prometheus.Counter
	AnalysisRuns     prometheus.Counter
	FindingsEmitted  prometheus.Counter
}

// NewCollector creates a metrics collector with its own registry, so tests
// can build collectors without duplicate-registration panics.
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		MergeBatches: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "merge_batches_total",
				Help:      "Total number of extraction batches merged",
			},
		),
		NodesMerged: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "nodes_merged_total",
				Help:      "Total number of node candidates inserted or merged",
			},
		),
		EdgesMerged: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "edges_merged_total",
				Help:      "Total number of edge candidates inserted or merged",
			},
		),
		VersionsCaptured: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "versions_captured_total",
				Help:      "Total number of graph versions captured",
			},
		),
		AnalysisRuns: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "risk_analysis_runs_total",
				Help:      "Total number of risk analysis runs",
			},
		),
		FindingsEmitted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "risk_findings_total",
				Help:      "Total number of risk findings emitted",
			},
		),
	}

	registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.MergeBatches,
		c.NodesMerged,
		c.EdgesMerged,
		c.VersionsCaptured,
		c.AnalysisRuns,
		c.FindingsEmitted,
	)
	return c
}

// Registry returns the collector's registry for the /metrics handler
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

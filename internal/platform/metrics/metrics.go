// Copyright (c) 2026 Shopdesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package metrics owns the Prometheus instruments exported by Shopdesk binaries.

Every [Collector] has its own registry, so tests can build as many collectors
as they like without tripping duplicate registration.
*/
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Reorder outcome label values.
const (
	OutcomeConfirmed  = "confirmed"
	OutcomeReconciled = "reconciled"
	OutcomeStale      = "stale"
	OutcomeNoop       = "noop"
	OutcomeRejected   = "rejected"
)

// Collector holds all Prometheus metrics for one binary.
type Collector struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Upstream catalog API metrics
	UpstreamCalls *prometheus.CounterVec

	// Reorder metrics
	Reorders        *prometheus.CounterVec
	ReorderWrites   *prometheus.CounterVec
	ReorderDuration prometheus.Histogram

	// Cache metrics
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter
}

// NewCollector creates a collector whose metric names are prefixed with namespace.
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	collector := &Collector{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		UpstreamCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_calls_total",
			Help:      "Calls made to the catalog API by method and status class",
		}, []string{"method", "status"}),
		Reorders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "category_reorders_total",
			Help:      "Category reorder gestures by outcome",
		}, []string{"outcome"}),
		ReorderWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "category_reorder_writes_total",
			Help:      "Per-node position updates issued by reorder batches",
		}, []string{"result"}),
		ReorderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "category_reorder_batch_duration_seconds",
			Help:      "Time from dispatching a reorder batch to its settlement",
			Buckets:   prometheus.DefBuckets,
		}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Total number of cache hits",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Total number of cache misses",
		}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collector.HTTPRequests,
		collector.HTTPDuration,
		collector.UpstreamCalls,
		collector.Reorders,
		collector.ReorderWrites,
		collector.ReorderDuration,
		collector.CacheHits,
		collector.CacheMisses,
	)

	return collector
}

// Handler exposes the collector's registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// ObserveReorder records a settled reorder batch.
func (c *Collector) ObserveReorder(outcome string, started time.Time) {
	c.Reorders.WithLabelValues(outcome).Inc()
	if !started.IsZero() {
		c.ReorderDuration.Observe(time.Since(started).Seconds())
	}
}

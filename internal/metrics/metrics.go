// Package metrics exposes Prometheus instrumentation for cache lookups and
// catalog discovery. All methods are nil-safe so callers may run without
// metrics.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks memo cache effectiveness and discovery cost.
type Metrics struct {
	CacheHits          *prometheus.CounterVec
	CacheMisses        *prometheus.CounterVec
	CacheComputeErrors *prometheus.CounterVec
	DiscoveryDuration  prometheus.Histogram
	ListingRequests    *prometheus.CounterVec
	CatalogAssemblies  prometheus.Gauge

	gatherer prometheus.Gatherer
}

// New registers all gencatalog metrics on reg. A nil reg uses a fresh
// private registry, which keeps tests and multiple CLI invocations isolated.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)
	return &Metrics{
		CacheHits: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gencatalog_cache_hits_total",
			Help: "Memo cache lookups answered from a fresh entry",
		}, []string{"func"}),
		CacheMisses: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gencatalog_cache_misses_total",
			Help: "Memo cache lookups that ran the computation",
		}, []string{"func"}),
		CacheComputeErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gencatalog_cache_compute_errors_total",
			Help: "Computations that failed and were not cached",
		}, []string{"func"}),
		DiscoveryDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "gencatalog_discovery_duration_seconds",
			Help:    "Duration of full remote release discovery",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}),
		ListingRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gencatalog_listing_requests_total",
			Help: "Remote directory listings issued during discovery",
		}, []string{"species"}),
		CatalogAssemblies: factory.NewGauge(prometheus.GaugeOpts{
			Name: "gencatalog_catalog_assemblies",
			Help: "Assemblies in the most recently built catalog",
		}),
		gatherer: reg,
	}
}

// IncCacheHit records a cache hit for fn.
func (m *Metrics) IncCacheHit(fn string) {
	if m == nil {
		return
	}
	m.CacheHits.WithLabelValues(fn).Inc()
}

// IncCacheMiss records a cache miss for fn.
func (m *Metrics) IncCacheMiss(fn string) {
	if m == nil {
		return
	}
	m.CacheMisses.WithLabelValues(fn).Inc()
}

// IncComputeError records a failed computation for fn.
func (m *Metrics) IncComputeError(fn string) {
	if m == nil {
		return
	}
	m.CacheComputeErrors.WithLabelValues(fn).Inc()
}

// ObserveDiscovery records the duration of a discovery run.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveDiscovery(start time.Time) {
	if m == nil {
		return
	}
	m.DiscoveryDuration.Observe(time.Since(start).Seconds())
}

// IncListing records one remote listing for species.
func (m *Metrics) IncListing(species string) {
	if m == nil {
		return
	}
	m.ListingRequests.WithLabelValues(species).Inc()
}

// SetCatalogSize records the number of assemblies in the catalog.
func (m *Metrics) SetCatalogSize(n int) {
	if m == nil {
		return
	}
	m.CatalogAssemblies.Set(float64(n))
}

// WriteTextfile exports the current values in Prometheus text format for the
// node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.gatherer); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

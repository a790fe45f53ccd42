package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "oneupdate"

var (
	// FleetFetchTotal counts inventory fetches per outcome (ok, error).
	FleetFetchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fleet_fetch_total",
		Help:      "Brand site inventory fetches by outcome",
	}, []string{"outcome"})

	FleetCollectSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "fleet_collect_seconds",
		Help:      "Wall time of a full fleet collection",
		Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
	})

	DispatchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "dispatch_total",
		Help:      "Per-site action executions by operation and outcome",
	}, []string{"operation", "outcome"})

	RunResolveTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "run_resolve_total",
		Help:      "Workflow run id resolutions by outcome (resolved, pending)",
	}, []string{"outcome"})

	PluginCacheRebuildTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "plugin_cache_rebuild_total",
		Help:      "Plugin state cache rebuilds by outcome",
	}, []string{"outcome"})

	PluginCacheHitTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "plugin_cache_lookup_total",
		Help:      "Plugin state cache lookups by result (hit, miss, expired)",
	}, []string{"result"})

	RegistryLookupSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "registry_lookup_seconds",
		Help:      "Public plugin registry lookup latency",
		Buckets:   prometheus.DefBuckets,
	}, []string{"outcome"})

	registerOnce sync.Once
)

// RegisterDomainMetrics adds every oneupdate collector to registry once.
func RegisterDomainMetrics(registry *prometheus.Registry) {
	registerOnce.Do(func() {
		registry.MustRegister(
			FleetFetchTotal,
			FleetCollectSeconds,
			DispatchTotal,
			RunResolveTotal,
			PluginCacheRebuildTotal,
			PluginCacheHitTotal,
			RegistryLookupSeconds,
		)
	})
}

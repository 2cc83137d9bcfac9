package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var resolutionsTotal = promauto.With(prometheus.DefaultRegisterer).NewCounterVec(
	prometheus.CounterOpts{
		Name: "resolver_resolutions_total",
		Help: "Total number of resolution calls by outcome (ok, fallback, error).",
	},
	[]string{"namespace", "service", "outcome"},
)

var failoversTotal = promauto.With(prometheus.DefaultRegisterer).NewCounterVec(
	prometheus.CounterOpts{
		Name: "resolver_failovers_total",
		Help: "Total number of active-candidate switches after the previous one became unreachable.",
	},
	[]string{"namespace", "service"},
)

var fallbackTotal = promauto.With(prometheus.DefaultRegisterer).NewCounterVec(
	prometheus.CounterOpts{
		Name: "resolver_fallback_selected_total",
		Help: "Total number of transitions onto the static fallback endpoint.",
	},
	[]string{"namespace", "service"},
)

var cacheLookupsTotal = promauto.With(prometheus.DefaultRegisterer).NewCounterVec(
	prometheus.CounterOpts{
		Name: "resolver_cache_lookups_total",
		Help: "Total number of discovery cache lookups by result (hit, miss).",
	},
	[]string{"namespace", "service", "result"},
)

var cacheRefreshTotal = promauto.With(prometheus.DefaultRegisterer).NewCounterVec(
	prometheus.CounterOpts{
		Name: "resolver_cache_refresh_total",
		Help: "Total number of directory refreshes by result (success, not_found, unavailable).",
	},
	[]string{"namespace", "service", "result"},
)

var staleServedTotal = promauto.With(prometheus.DefaultRegisterer).NewCounterVec(
	prometheus.CounterOpts{
		Name: "resolver_stale_entries_served_total",
		Help: "Total number of expired cache entries served while the directory was unavailable.",
	},
	[]string{"namespace", "service"},
)

var probeLatencySeconds = promauto.With(prometheus.DefaultRegisterer).NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "resolver_probe_latency_seconds",
		Help:    "TCP connect latency of the winning probe attempt.",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
	},
	[]string{"namespace", "service"},
)

// RecordResolution increments the resolution counter for one call.
func RecordResolution(namespace, service, outcome string) {
	resolutionsTotal.WithLabelValues(namespace, service, outcome).Inc()
}

// RecordFailover increments the failover counter when the active candidate changes.
func RecordFailover(namespace, service string) {
	failoversTotal.WithLabelValues(namespace, service).Inc()
}

// RecordFallback increments the fallback counter when the static endpoint is selected.
func RecordFallback(namespace, service string) {
	fallbackTotal.WithLabelValues(namespace, service).Inc()
}

// RecordCacheLookup increments the cache lookup counter.
func RecordCacheLookup(namespace, service, result string) {
	cacheLookupsTotal.WithLabelValues(namespace, service, result).Inc()
}

// RecordCacheRefresh increments the directory refresh counter.
func RecordCacheRefresh(namespace, service, result string) {
	cacheRefreshTotal.WithLabelValues(namespace, service, result).Inc()
}

// RecordStaleServed increments the stale-entry counter.
func RecordStaleServed(namespace, service string) {
	staleServedTotal.WithLabelValues(namespace, service).Inc()
}

// ObserveProbeLatency records the winning probe's connect latency.
func ObserveProbeLatency(namespace, service string, seconds float64) {
	probeLatencySeconds.WithLabelValues(namespace, service).Observe(seconds)
}

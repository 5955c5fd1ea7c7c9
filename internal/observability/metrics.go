package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "xhubsell_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "xhubsell_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// CatalogSearches counts catalog searches by sort order.
	CatalogSearches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "xhubsell_catalog_searches_total",
		Help: "Total catalog searches by sort order",
	}, []string{"sort"})

	// CacheResults counts cache-aside lookups by cache name and result.
	CacheResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "xhubsell_cache_results_total",
		Help: "Cache-aside lookups by cache and result (hit, miss, error)",
	}, []string{"cache", "result"})

	// FavoriteToggles counts favorite add/remove calls by outcome.
	FavoriteToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "xhubsell_favorite_toggles_total",
		Help: "Favorite toggles by action and outcome",
	}, []string{"action", "outcome"})

	// AuthEvents counts authentication attempts by event and outcome.
	AuthEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "xhubsell_auth_events_total",
		Help: "Authentication events by type and outcome",
	}, []string{"event", "outcome"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}

// Outcome maps an error to a metric label.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

package scache

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var cacheStatsGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Name: "schema_cache_stats",
	Help: "Lifetime stats of the converted-schema cache",
}, []string{"metric"})

// RecordStats publishes the cache gauges under a name prefix. Called on
// demand by whoever scrapes metrics; the cache itself never pushes.
func RecordStats(name string, c *Cache) {
	s := c.Stats()
	cacheStatsGauge.WithLabelValues(fmt.Sprintf("%s:cached_schemas", name)).Set(float64(s.Size))
	cacheStatsGauge.WithLabelValues(fmt.Sprintf("%s:hit_rate", name)).Set(s.HitRate)
	cacheStatsGauge.WithLabelValues(fmt.Sprintf("%s:eviction_count", name)).Set(float64(s.EvictionCount))
	cacheStatsGauge.WithLabelValues(fmt.Sprintf("%s:hits", name)).Set(float64(s.HitCount))
	cacheStatsGauge.WithLabelValues(fmt.Sprintf("%s:misses", name)).Set(float64(s.MissCount))

	cacheStatsGauge.WithLabelValues(fmt.Sprintf("%s:sets_dropped", name)).Set(float64(c.cache.Metrics.SetsDropped()))
	cacheStatsGauge.WithLabelValues(fmt.Sprintf("%s:sets_rejected", name)).Set(float64(c.cache.Metrics.SetsRejected()))
}

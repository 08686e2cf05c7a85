package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricCacheHitsGauge   = "hyperast.cache.hits"
	metricCacheMissesGauge = "hyperast.cache.misses"
)

// CacheStatsProvider is any cache whose running hit/miss counts can be
// sampled on demand — satisfied by both cache.LRUBlobCache.Stats() and
// ingest.Engine.MemoStats() without either importing this package.
type CacheStatsProvider interface {
	CacheHits() int64
	CacheMisses() int64
}

// RegisterCacheMetrics registers observable gauges reporting blob's and
// memo's current hit/miss counts, tagged by the "cache" attribute. A nil
// provider reports zero rather than being skipped, so the gauge always
// carries both attribute values once registered.
func RegisterCacheMetrics(mt metric.Meter, blob, memo CacheStatsProvider) error {
	hits, err := mt.Int64ObservableGauge(metricCacheHitsGauge,
		metric.WithDescription("Current cache hit count by cache type"),
		metric.WithUnit("{hit}"),
	)
	if err != nil {
		return fmt.Errorf("create %s: %w", metricCacheHitsGauge, err)
	}

	misses, err := mt.Int64ObservableGauge(metricCacheMissesGauge,
		metric.WithDescription("Current cache miss count by cache type"),
		metric.WithUnit("{miss}"),
	)
	if err != nil {
		return fmt.Errorf("create %s: %w", metricCacheMissesGauge, err)
	}

	_, err = mt.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		observeCacheStats(o, hits, misses, "blob", blob)
		observeCacheStats(o, hits, misses, "memo", memo)

		return nil
	}, hits, misses)
	if err != nil {
		return fmt.Errorf("register cache metrics callback: %w", err)
	}

	return nil
}

func observeCacheStats(o metric.Observer, hits, misses metric.Int64Observable, cacheType string, provider CacheStatsProvider) {
	attrs := metric.WithAttributes(attribute.String(attrCache, cacheType))

	var h, m int64
	if provider != nil {
		h, m = provider.CacheHits(), provider.CacheMisses()
	}

	o.ObserveInt64(hits, h, attrs)
	o.ObserveInt64(misses, m, attrs)
}

package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricCommitsTotal = "hyperast.ingest.commits.total"
	metricNodesTotal   = "hyperast.ingest.nodes.total"
	metricFoldDuration = "hyperast.ingest.commit.duration.seconds"
	metricDedupHits    = "hyperast.ingest.dedup.hits.total"
	metricDedupMisses  = "hyperast.ingest.dedup.misses.total"
	metricCacheHits    = "hyperast.cache.hits.total"
	metricCacheMisses  = "hyperast.cache.misses.total"

	attrCache = "cache"
)

// AnalysisMetrics holds OTel instruments for ingestion-specific metrics:
// commits folded, nodes inserted into the store, hash-consing dedup
// rate, and blob cache effectiveness.
type AnalysisMetrics struct {
	commitsTotal metric.Int64Counter
	nodesTotal   metric.Int64Counter
	foldDuration metric.Float64Histogram
	dedupHits    metric.Int64Counter
	dedupMisses  metric.Int64Counter
	cacheHits    metric.Int64Counter
	cacheMisses  metric.Int64Counter
}

// AnalysisStats holds the statistics for a single campaign run,
// decoupled from ingest.Campaign itself.
type AnalysisStats struct {
	Commits         int64
	NodesFolded     int64
	CommitDurations []time.Duration
	DedupHits       int64
	DedupMisses     int64
	BlobCacheHits   int64
	BlobCacheMisses int64
}

// NewAnalysisMetrics creates analysis metric instruments from the given meter.
func NewAnalysisMetrics(mt metric.Meter) (*AnalysisMetrics, error) {
	commits, err := mt.Int64Counter(metricCommitsTotal,
		metric.WithDescription("Total commits folded"),
		metric.WithUnit("{commit}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricCommitsTotal, err)
	}

	nodes, err := mt.Int64Counter(metricNodesTotal,
		metric.WithDescription("Total nodes inserted into the node store"),
		metric.WithUnit("{node}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricNodesTotal, err)
	}

	foldDur, err := mt.Float64Histogram(metricFoldDuration,
		metric.WithDescription("Per-commit fold duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricFoldDuration, err)
	}

	dedupHits, err := mt.Int64Counter(metricDedupHits,
		metric.WithDescription("Node store insertions resolved to an existing node"),
		metric.WithUnit("{insertion}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricDedupHits, err)
	}

	dedupMisses, err := mt.Int64Counter(metricDedupMisses,
		metric.WithDescription("Node store insertions that created a new node"),
		metric.WithUnit("{insertion}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricDedupMisses, err)
	}

	hits, err := mt.Int64Counter(metricCacheHits,
		metric.WithDescription("Cache hits by type"),
		metric.WithUnit("{hit}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricCacheHits, err)
	}

	misses, err := mt.Int64Counter(metricCacheMisses,
		metric.WithDescription("Cache misses by type"),
		metric.WithUnit("{miss}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricCacheMisses, err)
	}

	return &AnalysisMetrics{
		commitsTotal: commits,
		nodesTotal:   nodes,
		foldDuration: foldDur,
		dedupHits:    dedupHits,
		dedupMisses:  dedupMisses,
		cacheHits:    hits,
		cacheMisses:  misses,
	}, nil
}

// RecordRun records analysis statistics for a completed campaign run.
// Safe to call on a nil receiver (no-op).
func (am *AnalysisMetrics) RecordRun(ctx context.Context, stats AnalysisStats) {
	if am == nil {
		return
	}

	am.commitsTotal.Add(ctx, stats.Commits)
	am.nodesTotal.Add(ctx, stats.NodesFolded)

	for _, d := range stats.CommitDurations {
		am.foldDuration.Record(ctx, d.Seconds())
	}

	am.dedupHits.Add(ctx, stats.DedupHits)
	am.dedupMisses.Add(ctx, stats.DedupMisses)

	blobAttrs := metric.WithAttributes(attribute.String(attrCache, "blob"))
	am.cacheHits.Add(ctx, stats.BlobCacheHits, blobAttrs)
	am.cacheMisses.Add(ctx, stats.BlobCacheMisses, blobAttrs)
}

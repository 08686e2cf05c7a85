// Package commands implements CLI command handlers for hyperast.
package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/metric"

	"github.com/hyperast-go/hyperast/pkg/cache"
	"github.com/hyperast-go/hyperast/pkg/config"
	"github.com/hyperast-go/hyperast/pkg/gitobj"
	"github.com/hyperast-go/hyperast/pkg/ingest"
	"github.com/hyperast-go/hyperast/pkg/observability"
	"github.com/hyperast-go/hyperast/pkg/version"
)

// metricsReadHeaderTimeout bounds the Prometheus scrape server against
// slow-header clients (gosec G114).
const metricsReadHeaderTimeout = 10 * time.Second

// IngestCommand holds the flags and dependencies for the ingest command.
type IngestCommand struct {
	configFile string

	repoPath   string
	before     string
	after      string
	rootModule string
	language   string

	maxRefs      int
	cacheSizeStr string

	otlpEndpoint string
	metricsAddr  string
	noColor      bool
}

// NewIngestCommand builds the "ingest" subcommand: walk a commit range
// of a repository and fold it into a fresh node/label store.
func NewIngestCommand() *cobra.Command {
	ic := &IngestCommand{}

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Walk a commit range and fold it into the node store",
		RunE:  ic.run,
	}

	flags := cmd.Flags()
	flags.StringVar(&ic.configFile, "config", "", "path to a config file (defaults: ./config.yaml, ./config/config.yaml)")
	flags.StringVar(&ic.repoPath, "repo", "", "path to the repository's .git directory or a working copy")
	flags.StringVar(&ic.before, "before", "", "exclusive lower bound of the commit range (empty: from the root commit(s))")
	flags.StringVar(&ic.after, "after", "", "revision to walk from (required)")
	flags.StringVar(&ic.rootModule, "root-module", "", "module path, relative to each commit's root tree, to descend before classifying")
	flags.StringVar(&ic.language, "language", "", "maven, java, or cpp")
	flags.IntVar(&ic.maxRefs, "max-refs", 0, "reference-count budget above which analysis is marked skipped (0: use config default)")
	flags.StringVar(&ic.cacheSizeStr, "cache-size", "", "blob cache size, e.g. 256MiB (empty: use config default)")
	flags.StringVar(&ic.otlpEndpoint, "otlp-endpoint", "", "OTLP gRPC collector address (empty: no-op telemetry)")
	flags.StringVar(&ic.metricsAddr, "metrics-addr", "", "serve a Prometheus /metrics endpoint here instead of pushing via OTLP (e.g. localhost:9090)")
	flags.BoolVar(&ic.noColor, "no-color", false, "disable colored output")

	return cmd
}

func (ic *IngestCommand) run(cmd *cobra.Command, _ []string) error {
	cfg, err := ic.loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceVersion = version.Version
	obsCfg.OTLPEndpoint = ic.otlpEndpoint
	obsCfg.LogLevel = parseLogLevel(cfg.Logging.Level)
	obsCfg.LogJSON = cfg.Logging.Format == "json"
	obsCfg.LogOutput = cfg.Logging.Output

	providers, err := observability.Init(obsCfg)
	if err != nil {
		return fmt.Errorf("init observability: %w", err)
	}

	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Duration(obsCfg.ShutdownTimeoutSec)*time.Second)
		defer shutdownCancel()

		_ = providers.Shutdown(shutdownCtx)
	}()

	meter := providers.Meter

	if ic.metricsAddr != "" {
		promMeter, stopServer, promErr := ic.startPrometheusServer(ctx, obsCfg, providers.Logger)
		if promErr != nil {
			return promErr
		}

		defer stopServer()

		meter = promMeter
	}

	red, err := observability.NewREDMetrics(meter)
	if err != nil {
		return fmt.Errorf("init RED metrics: %w", err)
	}

	analysisMetrics, err := observability.NewAnalysisMetrics(meter)
	if err != nil {
		return fmt.Errorf("init analysis metrics: %w", err)
	}

	campaign, blobCache, engine, runErr := ic.runCampaign(ctx, cfg, providers)

	status := "ok"
	if runErr != nil {
		status = "error"
	}

	red.RecordRequest(ctx, "ingest", status, 0)

	if runErr != nil {
		return runErr
	}

	cacheErr := observability.RegisterCacheMetrics(meter, blobCache, engine.MemoStats())
	if cacheErr != nil {
		providers.Logger.WarnContext(ctx, "cache metrics registration failed", "error", cacheErr)
	}

	stats := observability.AnalysisStats{
		Commits:         int64(len(campaign.Commits)),
		NodesFolded:     int64(engine.Nodes.Len()),
		BlobCacheHits:   blobCache.CacheHits(),
		BlobCacheMisses: blobCache.CacheMisses(),
		DedupHits:       engine.MemoStats().CacheHits(),
		DedupMisses:     engine.MemoStats().CacheMisses(),
	}
	analysisMetrics.RecordRun(ctx, stats)

	ic.printSummary(cmd, stats, blobCache.Stats())

	return nil
}

// startPrometheusServer serves the /metrics scrape endpoint on ic.metricsAddr
// for the life of the campaign, returning the meter it feeds and a shutdown
// func. Callers must invoke the shutdown func before process exit.
func (ic *IngestCommand) startPrometheusServer(
	ctx context.Context, obsCfg observability.Config, logger *slog.Logger,
) (metric.Meter, func(), error) {
	res, err := observability.BuildResource(obsCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("build metrics resource: %w", err)
	}

	meter, handler, err := observability.PrometheusMeter(res)
	if err != nil {
		return nil, nil, fmt.Errorf("init prometheus metrics: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)

	server := &http.Server{
		Addr:              ic.metricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: metricsReadHeaderTimeout,
	}

	go func() {
		if serveErr := server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			logger.WarnContext(ctx, "metrics server stopped", "error", serveErr)
		}
	}()

	return meter, func() { _ = server.Shutdown(context.Background()) }, nil
}

func (ic *IngestCommand) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(ic.configFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if ic.repoPath != "" {
		cfg.Repository.Path = ic.repoPath
	}

	if ic.before != "" {
		cfg.Repository.Before = ic.before
	}

	if ic.after != "" {
		cfg.Repository.After = ic.after
	}

	if ic.rootModule != "" {
		cfg.Repository.RootModule = ic.rootModule
	}

	if ic.language != "" {
		cfg.Repository.Language = ic.language
	}

	if ic.maxRefs > 0 {
		cfg.Analysis.MaxRefs = ic.maxRefs
	}

	if ic.cacheSizeStr != "" {
		size, parseErr := humanize.ParseBytes(ic.cacheSizeStr)
		if parseErr != nil {
			return nil, fmt.Errorf("parse --cache-size: %w", parseErr)
		}

		cfg.Cache.MaxSizeBytes = int64(size)
	}

	return cfg, nil
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func kindForLanguage(language string) (ingest.Kind, error) {
	switch language {
	case "", "maven":
		return ingest.KindMaven, nil
	case "java":
		return ingest.KindJava, nil
	case "cpp":
		return ingest.KindCpp, nil
	default:
		return 0, fmt.Errorf("%w: %q", errUnknownLanguage, language)
	}
}

func (ic *IngestCommand) runCampaign(
	ctx context.Context, cfg *config.Config, providers observability.Providers,
) (*ingest.Campaign, *cache.LRUBlobCache, *ingest.Engine, error) {
	var (
		campaign  *ingest.Campaign
		blobCache *cache.LRUBlobCache
		engine    *ingest.Engine
	)

	runErr := observability.RunTraced(ctx, providers.Tracer, providers.Logger, "hyperast.campaign", func(ctx context.Context) error {
		repo, err := gitobj.Open(cfg.Repository.Path)
		if err != nil {
			return fmt.Errorf("open repository: %w", err)
		}
		defer repo.Free()

		kind, err := kindForLanguage(cfg.Repository.Language)
		if err != nil {
			return err
		}

		after, err := repo.ResolveRevision(cfg.Repository.After)
		if err != nil {
			return fmt.Errorf("resolve --after: %w", err)
		}

		before := gitobj.ZeroHash()
		if cfg.Repository.Before != "" {
			before, err = repo.ResolveRevision(cfg.Repository.Before)
			if err != nil {
				return fmt.Errorf("resolve --before: %w", err)
			}
		}

		blobCache = cache.NewLRUBlobCache(cfg.Cache.MaxSizeBytes)
		reader := cache.NewCachingTreeReader(ingest.NewGitTreeReader(repo), blobCache)

		engine = ingest.NewEngine(reader, ingest.Config{
			MaxRefs:                cfg.Analysis.MaxRefs,
			PropagateErrorOnBadCST: cfg.Analysis.PropagateErrorOnBadCST,
		})

		campaign = ingest.NewCampaign(engine, repo, cfg.Repository.RootModule)

		providers.Logger.InfoContext(ctx, "campaign starting",
			"campaign_id", campaign.ID, "repo", cfg.Repository.Path, "language", cfg.Repository.Language)

		if runErr := campaign.Run(ctx, kind, before, after); runErr != nil {
			return fmt.Errorf("run campaign: %w", runErr)
		}

		providers.Logger.InfoContext(ctx, "campaign.complete", "commits", len(campaign.Commits))

		return nil
	})

	return campaign, blobCache, engine, runErr
}

func (ic *IngestCommand) printSummary(cmd *cobra.Command, stats observability.AnalysisStats, cacheStats cache.LRUStats) {
	if ic.noColor {
		color.NoColor = true
	}

	out := cmd.OutOrStdout()

	tbl := table.NewWriter()
	tbl.SetOutputMirror(out)
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"Metric", "Value"})
	tbl.AppendRow(table.Row{"Commits folded", humanize.Comma(stats.Commits)})
	tbl.AppendRow(table.Row{"Nodes in store", humanize.Comma(stats.NodesFolded)})
	tbl.AppendRow(table.Row{"Dedup hit rate", fmt.Sprintf("%.1f%%", hitRate(stats.DedupHits, stats.DedupMisses))})
	tbl.AppendRow(table.Row{"Blob cache hit rate", fmt.Sprintf("%.1f%%", cacheStats.HitRate()*100)})
	tbl.AppendRow(table.Row{"Blob cache size", humanize.Bytes(uint64(cacheStats.CurrentSize))})
	tbl.Render()

	color.New(color.FgGreen).Fprintf(out, "ingest complete: %s commits, %s nodes\n",
		humanize.Comma(stats.Commits), humanize.Comma(stats.NodesFolded))
}

func hitRate(hits, misses int64) float64 {
	total := hits + misses
	if total == 0 {
		return 0
	}

	return float64(hits) / float64(total) * 100
}

var errUnknownLanguage = errors.New("unknown --language")

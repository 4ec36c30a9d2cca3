package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/adithya-search/boolsearch/internal/analyzer"
	"github.com/adithya-search/boolsearch/internal/boolindex"
	"github.com/adithya-search/boolsearch/internal/indexer/backlog"
	"github.com/adithya-search/boolsearch/internal/searcher/cache"
	"github.com/adithya-search/boolsearch/internal/server"
	"github.com/adithya-search/boolsearch/pkg/config"
	"github.com/adithya-search/boolsearch/pkg/docstore"
	"github.com/adithya-search/boolsearch/pkg/health"
	"github.com/adithya-search/boolsearch/pkg/logger"
	"github.com/adithya-search/boolsearch/pkg/metrics"
	pkgredis "github.com/adithya-search/boolsearch/pkg/redis"
)

func main() {
	configPath := flag.String("config", "", "path to config file (optional, defaults are used otherwise)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting search daemon")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	checker := health.NewChecker()

	index := boolindex.NewWithLimit[string](cfg.Search.MaxResponseCount)

	store, err := docstore.Open(ctx, cfg.Postgres, slog.Default())
	if err != nil {
		slog.Error("failed to open document store", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	checker.Register("postgres", func(ctx context.Context) health.ComponentHealth {
		if err := store.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDown, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})

	stats, err := store.LoadAll(ctx, index, analyzer.Analyze)
	if err != nil {
		slog.Error("failed to load documents", "error", err)
		os.Exit(1)
	}
	m.DocsIndexedTotal.Add(float64(stats.Loaded))
	m.DocsSkippedTotal.Add(float64(stats.Malformed))

	if cfg.Backlog.Enabled {
		checker.Register("kafka", func(ctx context.Context) health.ComponentHealth {
			conn, err := kafkago.DialContext(ctx, "tcp", cfg.Backlog.Brokers[0])
			if err != nil {
				return health.ComponentHealth{Status: health.StatusDown, Message: err.Error()}
			}
			conn.Close()
			return health.ComponentHealth{Status: health.StatusUp}
		})
	}

	if _, err := backlog.Drain(ctx, cfg.Backlog, index, analyzer.Analyze, slog.Default()); err != nil {
		slog.Warn("backlog drain failed, continuing with primary load only", "error", err)
	}

	indexStats := index.Stats()
	m.IndexDocumentCount.Set(float64(indexStats.TotalDocuments))
	m.IndexTermCount.Set(float64(indexStats.TotalTerms))
	slog.Info("index ready",
		"total_documents", indexStats.TotalDocuments,
		"total_terms", indexStats.TotalTerms,
		"largest_term", indexStats.LargestTerm,
		"largest_term_postings", indexStats.LargestTermLen,
	)

	redisClient, err := pkgredis.NewClient(cfg.Redis)
	var queryCache *cache.QueryCache
	if err != nil {
		slog.Warn("redis unavailable, query cache disabled", "error", err)
	} else {
		defer redisClient.Close()
		queryCache = cache.New(redisClient, cfg.Redis)
		checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
			if err := redisClient.Ping(ctx); err != nil {
				return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
			}
			return health.ComponentHealth{Status: health.StatusUp}
		})
	}

	searcher := queryIndex{index: index, queryCache: queryCache, metrics: m}

	var sidecarShutdown func(context.Context) error
	if cfg.Metrics.Enabled {
		sidecarShutdown = metrics.StartServer(cfg.Metrics.Port, m, checker)
	}

	tcpServer := server.New(searcher, cfg.Server.Port, cfg.Search.MaxResponseCount,
		server.WithPollTimeout(cfg.Server.PollTimeout),
		server.WithReadBufferSize(cfg.Server.ReadBufferSize),
		server.WithConnectionHooks(
			func() { m.ActiveConnections.Inc() },
			func() { m.ActiveConnections.Dec() },
		),
	)
	if err := tcpServer.Start(); err != nil {
		slog.Error("failed to start server", "error", err)
		os.Exit(1)
	}

	slog.Info("search daemon ready", "port", tcpServer.Port())
	if err := tcpServer.Run(ctx); err != nil {
		slog.Error("server loop exited with error", "error", err)
	}

	if sidecarShutdown != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := sidecarShutdown(shutdownCtx); err != nil {
			slog.Warn("sidecar shutdown error", "error", err)
		}
	}
	slog.Info("search daemon stopped")
}

// queryIndex adapts the boolean index and cache into the single AndQuery
// method the server depends on. The index is immutable for the life of the
// process (§5), and the cache's own circuit breaker already bounds a
// degraded Redis, so AndQuery runs entirely on the caller's goroutine — the
// server's single poll-loop thread — with no per-query timeout or worker
// handoff.
type queryIndex struct {
	index      *boolindex.Index[string]
	queryCache *cache.QueryCache
	metrics    *metrics.Metrics
}

func (q queryIndex) AndQuery(terms []string) []string {
	start := time.Now()

	var docs []string
	var hit bool
	if q.queryCache == nil {
		docs = q.index.AndQuery(terms)
	} else {
		docs, hit = q.queryCache.GetOrCompute(context.Background(), terms, func() []string {
			return q.index.AndQuery(terms)
		})
		q.metrics.CircuitBreakerState.WithLabelValues("query-cache").Set(float64(q.queryCache.BreakerState()))
		if hit {
			q.metrics.CacheHitsTotal.Inc()
		} else {
			q.metrics.CacheMissesTotal.Inc()
		}
	}

	cacheStatus := "disabled"
	if q.queryCache != nil {
		cacheStatus = "miss"
		if hit {
			cacheStatus = "hit"
		}
	}
	q.metrics.QueriesTotal.WithLabelValues("and").Inc()
	q.metrics.QueryLatency.WithLabelValues(cacheStatus).Observe(time.Since(start).Seconds())
	q.metrics.QueryResultsCount.Observe(float64(len(docs)))
	return docs
}

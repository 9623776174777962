// Command mcpserver exposes the read-side MCP tools (list_tools,
// get_similar_articles, get_article_historical_analysis) over HTTP.
// Wiring follows Tim275-oms/kitchen/main.go's shape: env-var config,
// structured logging, tracing, metrics, signal-driven shutdown.
package main

import (
	"context"
	"net/http"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/zap"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wayming/Automated-Trading-System/internal/config"
	"github.com/wayming/Automated-Trading-System/internal/embedder/httpembed"
	"github.com/wayming/Automated-Trading-System/internal/logger"
	"github.com/wayming/Automated-Trading-System/internal/mcp"
	"github.com/wayming/Automated-Trading-System/internal/metrics"
	"github.com/wayming/Automated-Trading-System/internal/relstore"
	"github.com/wayming/Automated-Trading-System/internal/supervisor"
	"github.com/wayming/Automated-Trading-System/internal/tracing"
	"github.com/wayming/Automated-Trading-System/internal/vectorstore"
)

const serviceName = "mcpserver"
const vectorDimensions = 384

func main() {
	log := logger.New(serviceName)
	defer log.Sync()

	shutdownTracing, err := tracing.InitTracer(serviceName, log)
	if err != nil {
		log.Fatal("failed to init tracing", zap.Error(err))
	}

	sup := supervisor.New(log, 10*time.Second)
	sup.Register("tracing", func(ctx context.Context) error {
		shutdownTracing()
		return nil
	})

	metricsPipeline := metrics.NewPipeline(serviceName)

	ctx, cancel := context.WithCancel(context.Background())
	sup.Register("context", func(ctx context.Context) error {
		cancel()
		return nil
	})

	emb := httpembed.New(config.MustGet("EMBEDDING_SERVICE_URL"), vectorDimensions, nil)

	vectorAddr := config.Get("QDRANT_ADDR", "localhost:6334")
	vectorCollection := config.Get("QDRANT_COLLECTION", "articles")
	vector, err := vectorstore.New(vectorAddr, vectorCollection)
	if err != nil {
		log.Fatal("failed to connect to qdrant", zap.Error(err))
	}
	sup.Register("vector store", func(ctx context.Context) error { return vector.Close() })

	relDSN := config.MustGet("POSTGRES_DSN")
	store, err := relstore.New(ctx, relDSN)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	sup.Register("relational store", func(ctx context.Context) error { return store.Close() })

	var reader mcp.ArticleReader = store
	if redisAddr := config.Get("REDIS_HOST", ""); redisAddr != "" {
		cache, err := relstore.NewArticleCache(redisAddr, config.GetDuration("REDIS_TTL", 10*time.Minute))
		if err != nil {
			log.Fatal("failed to connect to redis", zap.Error(err))
		}
		sup.Register("article cache", func(ctx context.Context) error { return cache.Close() })
		reader = relstore.NewCachedStore(store, cache, logger.Component(log, "article_cache"))
	}

	registry := mcp.NewRegistry(metricsPipeline, logger.Component(log, "mcp"))
	mcp.RegisterListTools(registry)
	mcp.RegisterSimilarArticles(registry, emb, vector)
	mcp.RegisterHistoricalAnalysis(registry, reader)

	mux := http.NewServeMux()
	mux.Handle("/", registry.Mux())
	mux.Handle("/metrics", promhttp.Handler())

	httpAddr := config.Get("MCP_HTTP_ADDR", "localhost:8090")
	srv := &http.Server{Addr: httpAddr, Handler: mux}
	go func() {
		log.Info("mcp server listening", zap.String("addr", httpAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("mcp server stopped unexpectedly", zap.Error(err))
			cancel()
		}
	}()
	sup.Register("http server", srv.Shutdown)

	sup.WaitForSignal()
	sup.Shutdown()
}

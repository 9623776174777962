// Command ingestor consumes the processed-articles queue and fans each
// article out to both sinks: Qdrant for semantic search, Postgres (with
// an optional Redis read cache) for exact lookups. Wiring follows
// Tim275-oms/kitchen/main.go's shape: env-var config, structured
// logging, tracing, metrics, signal-driven shutdown.
package main

import (
	"context"
	"net/http"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/zap"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wayming/Automated-Trading-System/internal/broker"
	"github.com/wayming/Automated-Trading-System/internal/config"
	"github.com/wayming/Automated-Trading-System/internal/embedder/httpembed"
	"github.com/wayming/Automated-Trading-System/internal/ingestor"
	"github.com/wayming/Automated-Trading-System/internal/logger"
	"github.com/wayming/Automated-Trading-System/internal/metrics"
	"github.com/wayming/Automated-Trading-System/internal/relstore"
	"github.com/wayming/Automated-Trading-System/internal/supervisor"
	"github.com/wayming/Automated-Trading-System/internal/tracing"
	"github.com/wayming/Automated-Trading-System/internal/vectorstore"
)

const serviceName = "ingestor"
const processedArticlesQueue = "processed_articles"
const vectorDimensions = 384

func main() {
	log := logger.New(serviceName)
	defer log.Sync()

	shutdownTracing, err := tracing.InitTracer(serviceName, log)
	if err != nil {
		log.Fatal("failed to init tracing", zap.Error(err))
	}

	sup := supervisor.New(log, 15*time.Second)
	sup.Register("tracing", func(ctx context.Context) error {
		shutdownTracing()
		return nil
	})

	metricsPipeline := metrics.NewPipeline(serviceName)
	metricsAddr := config.Get("METRICS_ADDR", "localhost:9092")
	metricsSrv := &http.Server{Addr: metricsAddr, Handler: promhttp.Handler()}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("metrics server stopped unexpectedly", zap.Error(err))
		}
	}()
	sup.Register("metrics server", metricsSrv.Shutdown)

	ctx, cancel := context.WithCancel(context.Background())
	sup.Register("context", func(ctx context.Context) error {
		cancel()
		return nil
	})

	brokerUser := config.Get("RABBITMQ_USER", "guest")
	brokerPass := config.Get("RABBITMQ_PASS", "guest")
	brokerHost := config.Get("RABBITMQ_HOST", "localhost")
	brokerPort := config.Get("RABBITMQ_PORT", "5672")

	b, err := broker.Connect(ctx, brokerUser, brokerPass, brokerHost, brokerPort, 30*time.Second, logger.Component(log, "broker"))
	if err != nil {
		log.Fatal("failed to connect to rabbitmq", zap.Error(err))
	}
	sup.Register("broker", func(ctx context.Context) error { return b.Shutdown(ctx) })

	emb := httpembed.New(config.MustGet("EMBEDDING_SERVICE_URL"), vectorDimensions, nil)

	vectorAddr := config.Get("QDRANT_ADDR", "localhost:6334")
	vectorCollection := config.Get("QDRANT_COLLECTION", "articles")
	vector, err := vectorstore.New(vectorAddr, vectorCollection)
	if err != nil {
		log.Fatal("failed to connect to qdrant", zap.Error(err))
	}
	sup.Register("vector store", func(ctx context.Context) error { return vector.Close() })

	if err := vector.EnsureCollection(ctx, emb.Dimensions()); err != nil {
		log.Fatal("failed to ensure vector collection", zap.Error(err))
	}

	relDSN := config.MustGet("POSTGRES_DSN")
	store, err := relstore.New(ctx, relDSN)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	sup.Register("relational store", func(ctx context.Context) error { return store.Close() })

	var rel ingestor.RelationalStore = store
	if redisAddr := config.Get("REDIS_HOST", ""); redisAddr != "" {
		cache, err := relstore.NewArticleCache(redisAddr, config.GetDuration("REDIS_TTL", 10*time.Minute))
		if err != nil {
			log.Fatal("failed to connect to redis", zap.Error(err))
		}
		sup.Register("article cache", func(ctx context.Context) error { return cache.Close() })
		rel = relstore.NewCachedStore(store, cache, logger.Component(log, "article_cache"))
	}

	ing := ingestor.New(emb, vector, rel, metricsPipeline, logger.Component(log, "ingestor"))

	go func() {
		if err := b.Consume(ctx, processedArticlesQueue, ing.HandleVector, ing.HandleRelational); err != nil {
			log.Error("consume loop stopped", zap.Error(err))
			cancel()
		}
	}()

	log.Info("ingestor running", zap.String("consuming", processedArticlesQueue))
	sup.WaitForSignal()
	sup.Shutdown()
}

// Command analyser consumes the raw-articles queue, runs each article
// through an LLM, evaluates the trade policy, republishes the analysed
// result to the processed-articles queue, and best-effort relays the
// outcome to the gateway. Wiring follows Tim275-oms/kitchen/main.go's
// shape: env-var config, structured logging, tracing, metrics,
// signal-driven shutdown.
package main

import (
	"context"
	"net/http"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/zap"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wayming/Automated-Trading-System/internal/analyser"
	"github.com/wayming/Automated-Trading-System/internal/broker"
	"github.com/wayming/Automated-Trading-System/internal/config"
	"github.com/wayming/Automated-Trading-System/internal/gateway"
	"github.com/wayming/Automated-Trading-System/internal/llm/deepseek"
	"github.com/wayming/Automated-Trading-System/internal/logger"
	"github.com/wayming/Automated-Trading-System/internal/metrics"
	"github.com/wayming/Automated-Trading-System/internal/supervisor"
	"github.com/wayming/Automated-Trading-System/internal/tracing"
	"github.com/wayming/Automated-Trading-System/internal/tradeexec"
)

const serviceName = "analyser"
const rawArticlesQueue = "tv_articles"
const processedArticlesQueue = "processed_articles"

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
	metricsAddr := config.Get("METRICS_ADDR", "localhost:9091")
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

	llmClient, err := deepseek.New(config.MustGet("DEEPSEEK_API_KEY"), nil)
	if err != nil {
		log.Fatal("failed to build llm client", zap.Error(err))
	}

	executor := tradeexec.New(config.MustGet("TRADE_EXECUTOR_URL"), nil)
	tradePolicy := analyser.NewTradePolicy(executor, logger.Component(log, "trade_policy"))

	gatewayClient := gateway.New(config.MustGet("GATEWAY_RELAY_URL"), nil)

	a := analyser.New(analyser.Config{
		LLM:            llmClient,
		TradePolicy:    tradePolicy,
		GatewayClient:  gatewayClient,
		Publisher:      b,
		ProcessedQueue: processedArticlesQueue,
		Metrics:        metricsPipeline,
		Logger:         logger.Component(log, "analyser"),
	})

	go func() {
		if err := b.Consume(ctx, rawArticlesQueue, a.HandleMessage); err != nil {
			log.Error("consume loop stopped", zap.Error(err))
			cancel()
		}
	}()

	log.Info("analyser running",
		zap.String("consuming", rawArticlesQueue),
		zap.String("publishing", processedArticlesQueue),
	)
	sup.WaitForSignal()
	sup.Shutdown()
}

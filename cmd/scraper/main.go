// Command scraper runs the fetch-then-publish pipeline that feeds the
// raw-articles queue: rodfetcher.Fetcher drives a TradingView news-flow
// session and scraper.Worker/PublisherLoop hand fetched articles off to
// RabbitMQ. Wiring follows Tim275-oms/kitchen/main.go's shape: env-var
// config, structured logging, tracing, metrics, signal-driven shutdown.
package main

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/zap"

	"github.com/wayming/Automated-Trading-System/internal/broker"
	"github.com/wayming/Automated-Trading-System/internal/config"
	"github.com/wayming/Automated-Trading-System/internal/handoff"
	"github.com/wayming/Automated-Trading-System/internal/logger"
	"github.com/wayming/Automated-Trading-System/internal/metrics"
	"github.com/wayming/Automated-Trading-System/internal/scraper"
	"github.com/wayming/Automated-Trading-System/internal/scraper/rodfetcher"
	"github.com/wayming/Automated-Trading-System/internal/supervisor"
	"github.com/wayming/Automated-Trading-System/internal/tracing"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const serviceName = "scraper"
const rawArticlesQueue = "tv_articles"

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
	metricsAddr := config.Get("METRICS_ADDR", "localhost:9090")
	metricsSrv := &http.Server{Addr: metricsAddr, Handler: promhttp.Handler()}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("metrics server stopped unexpectedly", zap.Error(err))
		}
	}()
	sup.Register("metrics server", metricsSrv.Shutdown)

	ctx, cancel := context.WithCancel(context.Background())

	brokerUser := config.Get("RABBITMQ_USER", "guest")
	brokerPass := config.Get("RABBITMQ_PASS", "guest")
	brokerHost := config.Get("RABBITMQ_HOST", "localhost")
	brokerPort := config.Get("RABBITMQ_PORT", "5672")

	b, err := broker.Connect(ctx, brokerUser, brokerPass, brokerHost, brokerPort, 30*time.Second, logger.Component(log, "broker"))
	if err != nil {
		log.Fatal("failed to connect to rabbitmq", zap.Error(err))
	}
	// Registered ahead of "scraper" and "context" below: Shutdown runs
	// closers in reverse registration order, so this channel stays open
	// until the worker/publisher pair has been signalled to stop and
	// joined, and the handoff channel has had a chance to drain into it.
	sup.Register("broker", func(ctx context.Context) error { return b.Shutdown(ctx) })

	fetcher := rodfetcher.New(
		config.MustGet("TRADE_VIEW_USER"),
		config.MustGet("TRADE_VIEW_PASS"),
		config.Get("SCRAPER_COOKIE_PATH", "output/trading_view_cookies.json"),
		logger.Component(log, "rodfetcher"),
	)

	handoffCapacity := config.GetInt("SCRAPER_HANDOFF_CAPACITY", 32)
	out := handoff.New(handoffCapacity)

	worker, err := scraper.NewWorker(fetcher, out, metricsPipeline, logger.Component(log, "scraper"))
	if err != nil {
		log.Fatal("failed to build scraper worker", zap.Error(err))
	}

	publisherLoop := scraper.NewPublisherLoop(b, rawArticlesQueue, out, metricsPipeline, logger.Component(log, "publisher"))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		publisherLoop.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		if err := worker.Run(ctx); err != nil {
			log.Error("scraper worker stopped", zap.Error(err))
			cancel()
		}
	}()

	// Joins the worker and publisher goroutines, bounded by a 5s timeout
	// of its own regardless of the Supervisor's per-closer timeout: by
	// the time this runs, "context" below has already fired and
	// cancelled ctx, so the worker has stopped polling and the publisher
	// is draining whatever it still has buffered
	// (handoff.Channel.Drained) before Run returns.
	sup.Register("scraper", func(ctx context.Context) error {
		joinCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()
		select {
		case <-done:
			return nil
		case <-joinCtx.Done():
			return fmt.Errorf("scraper: worker/publisher did not exit before shutdown timeout")
		}
	})

	// Registered last so it is the first closer Shutdown runs: signals
	// stop before anything waits on the worker/publisher pair or closes
	// the broker channel, per the mandated sequence (stop, then drain,
	// then close broker).
	sup.Register("context", func(ctx context.Context) error {
		cancel()
		return nil
	})

	log.Info("scraper running", zap.String("queue", rawArticlesQueue), zap.String("metrics_addr", metricsAddr))
	sup.WaitForSignal()
	sup.Shutdown()
}

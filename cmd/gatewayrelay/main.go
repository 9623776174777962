// Command gatewayrelay runs the small HTTP server that receives pushes
// from the analyser's gateway client and forwards them to a configured
// downstream endpoint. Wiring follows Tim275-oms/kitchen/main.go's
// shape: env-var config, structured logging, tracing, signal-driven
// shutdown.
package main

import (
	"context"
	"net/http"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/zap"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wayming/Automated-Trading-System/internal/config"
	"github.com/wayming/Automated-Trading-System/internal/gatewayrelay"
	"github.com/wayming/Automated-Trading-System/internal/logger"
	"github.com/wayming/Automated-Trading-System/internal/supervisor"
	"github.com/wayming/Automated-Trading-System/internal/tracing"
)

const serviceName = "gatewayrelay"

func main() {
	log := logger.New(serviceName)
	defer log.Sync()

	shutdownTracing, err := tracing.InitTracer(serviceName, log)
	if err != nil {
		log.Fatal("failed to init tracing", zap.Error(err))
	}

	sup := supervisor.New(log, 5*time.Second)
	sup.Register("tracing", func(ctx context.Context) error {
		shutdownTracing()
		return nil
	})

	relay := gatewayrelay.New(config.MustGet("GATEWAY_DOWNSTREAM_URL"), logger.Component(log, "gatewayrelay"))

	mux := http.NewServeMux()
	mux.Handle("/", relay.Mux())
	mux.Handle("/metrics", promhttp.Handler())

	httpAddr := config.Get("GATEWAY_RELAY_ADDR", "localhost:8091")
	srv := &http.Server{Addr: httpAddr, Handler: mux}
	go func() {
		log.Info("gateway relay listening", zap.String("addr", httpAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("gateway relay server stopped unexpectedly", zap.Error(err))
		}
	}()
	sup.Register("http server", srv.Shutdown)

	sup.WaitForSignal()
	sup.Shutdown()
}

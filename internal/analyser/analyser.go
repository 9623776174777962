// Package analyser drives LLM-based analysis of scraped articles,
// evaluates the trade policy against the result, republishes analysed
// articles to the processed-articles queue, and best-effort pushes every
// outcome (success or failure) to the downstream gateway relay. Grounded
// on original_source/news_analyser/article_analyser.py's consume_message.
package analyser

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/wayming/Automated-Trading-System/internal/article"
	"github.com/wayming/Automated-Trading-System/internal/gateway"
	"github.com/wayming/Automated-Trading-System/internal/llm"
	"github.com/wayming/Automated-Trading-System/internal/metrics"
)

// gatewayPushTimeout mirrors article_analyser.py's TIMEOUT_PUSH_TO_AWS.
const gatewayPushTimeout = 600 * time.Second

const systemPrompt = `You are a financial news analyst. Analyse the given article and respond ` +
	`with your reasoning followed by a structured block delimited by lines of three or more ` +
	`hyphens containing a JSON object with stock_code, stock_name, analysis (short_term, ` +
	`mid_term, long_term each with score, driver, risk) and alerts.`

// ProcessedPublisher publishes an analysed article's wire bytes to the
// processed-articles queue. Satisfied by *broker.Adapter.
type ProcessedPublisher interface {
	Publish(ctx context.Context, queue string, body []byte) error
}

// Analyser wires together the LLM client, trade policy, gateway client and
// processed-articles publisher into one per-message pipeline step.
type Analyser struct {
	llm            llm.ChatCompletion
	tradePolicy    *TradePolicy
	gatewayClient  *gateway.Client
	publisher      ProcessedPublisher
	processedQueue string
	metrics        *metrics.Pipeline
	logger         *zap.Logger
}

// Config holds the dependencies and settings an Analyser needs.
type Config struct {
	LLM            llm.ChatCompletion
	TradePolicy    *TradePolicy
	GatewayClient  *gateway.Client
	Publisher      ProcessedPublisher
	ProcessedQueue string
	Metrics        *metrics.Pipeline
	Logger         *zap.Logger
}

// New builds an Analyser from cfg.
func New(cfg Config) *Analyser {
	return &Analyser{
		llm:            cfg.LLM,
		tradePolicy:    cfg.TradePolicy,
		gatewayClient:  cfg.GatewayClient,
		publisher:      cfg.Publisher,
		processedQueue: cfg.ProcessedQueue,
		metrics:        cfg.Metrics,
		logger:         cfg.Logger,
	}
}

// HandleMessage implements broker.Handler for the raw-articles queue.
func (a *Analyser) HandleMessage(ctx context.Context, body []byte) error {
	msg, err := article.Decode(body)
	if err != nil {
		a.logger.Error("failed to decode article", zap.Error(err))
		return err
	}
	log := a.logger.With(zap.String("article_id", msg.MessageID))
	log.Info("new message received")

	log.Info("analysing message content")
	raw, err := a.llm.Complete(ctx, systemPrompt, msg.Content)
	if err != nil {
		msg.Error = err.Error()
		log.Error("analysis failed", zap.Error(err))
	} else {
		msg.ResponseRaw = raw
		if structured, ok := extractStructured(raw); ok {
			msg.ResponseStruct = structured
		} else {
			log.Warn("no parsable structured block in analysis response")
		}
	}

	// Queue B only ever sees articles with a structured result: msg.Error
	// is set on an LLM-call failure, but a successful call with no
	// delimited block leaves msg.Error empty and msg.ResponseStruct nil,
	// and that case must not publish either.
	var gatewayMessage string
	if msg.ResponseStruct != nil {
		a.tradePolicy.Evaluate(ctx, msg.ResponseStruct)
		a.pushToProcessedQueue(ctx, log, msg)
		encoded, err := json.Marshal(msg.ResponseStruct)
		if err != nil {
			gatewayMessage = msg.ResponseRaw
		} else {
			gatewayMessage = string(encoded)
		}
	} else if msg.Error != "" {
		gatewayMessage = msg.Error
	} else {
		gatewayMessage = msg.ResponseRaw
	}

	if a.metrics != nil {
		a.metrics.ArticlesAnalysed.Inc()
	}

	a.pushToGateway(log, gatewayMessage)
	return nil
}

func (a *Analyser) pushToProcessedQueue(ctx context.Context, log *zap.Logger, msg *article.Message) {
	body, err := msg.Encode()
	if err != nil {
		log.Error("failed to encode processed article", zap.Error(err))
		return
	}
	if err := a.publisher.Publish(ctx, a.processedQueue, body); err != nil {
		log.Error("failed to push message to processed queue", zap.Error(err))
		return
	}
	if a.metrics != nil {
		a.metrics.ArticlesPublished.Inc()
	}
}

func (a *Analyser) pushToGateway(log *zap.Logger, message string) {
	if a.gatewayClient == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), gatewayPushTimeout)
	defer cancel()

	start := time.Now()
	status, respBody, err := a.gatewayClient.Push(ctx, []byte(message))
	outcome := "ok"
	if err != nil {
		outcome = "error"
		if ctx.Err() != nil {
			log.Error("gateway push timed out", zap.Duration("elapsed", time.Since(start)))
		} else {
			log.Error("failed to push to gateway", zap.Error(err))
		}
	} else {
		log.Info("gateway push response", zap.Int("status", status), zap.String("body", respBody))
	}
	if a.metrics != nil {
		a.metrics.GatewayPushes.WithLabelValues(outcome).Inc()
	}
}

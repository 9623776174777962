package analyser

import (
	"context"
	"regexp"
	"strconv"

	"go.uber.org/zap"

	"github.com/wayming/Automated-Trading-System/internal/article"
	"github.com/wayming/Automated-Trading-System/internal/tradeexec"
)

// buyQuantity is the fixed trade size, matching trade_policy.py's
// "Fixed quantity for now" comment.
const buyQuantity = 10.0

var scorePattern = regexp.MustCompile(`[+-]?\d+`)

// TradePolicy decides whether a structured analysis is a buy signal and, if
// so, drives the trade executor. It never returns an error: every failure
// mode (missing analysis, missing score, unparsable score) is logged and
// swallowed, matching trade_policy.py's except-and-log behaviour.
type TradePolicy struct {
	executor tradeexec.Executor
	logger   *zap.Logger
}

// NewTradePolicy builds a TradePolicy against the given trade executor.
func NewTradePolicy(executor tradeexec.Executor, logger *zap.Logger) *TradePolicy {
	return &TradePolicy{executor: executor, logger: logger}
}

// Evaluate inspects a (possibly nil) structured analysis and executes a buy
// when the short-term score is positive.
func (p *TradePolicy) Evaluate(ctx context.Context, result *article.StructuredAnalysis) {
	if result == nil {
		p.logger.Info("no trade operation for empty analysis results")
		return
	}

	scoreStr := result.Analysis.ShortTerm.Score
	if scoreStr == "" {
		p.logger.Info("no short_term analysis available")
		return
	}

	ticker := result.StockCode
	if ticker == "" {
		p.logger.Info("no impacted stock")
		return
	}

	match := scorePattern.FindString(scoreStr)
	if match == "" {
		p.logger.Error("score is missing or invalid", zap.String("score", scoreStr))
		return
	}
	score, err := strconv.Atoi(match)
	if err != nil {
		p.logger.Error("could not parse score", zap.Error(err))
		return
	}

	if score <= 0 {
		p.logger.Info("score is not a buy signal", zap.Int("score", score))
		return
	}

	p.executeBuy(ctx, ticker, score, result)
}

func (p *TradePolicy) executeBuy(ctx context.Context, ticker string, score int, result *article.StructuredAnalysis) {
	p.logger.Info("positive signal",
		zap.String("stock_name", result.StockName),
		zap.String("ticker", ticker),
		zap.Int("short_term_score", score),
	)

	message, cash, portfolio, err := p.executor.ExecuteTrade(ctx, ticker, "buy", buyQuantity)
	if err != nil {
		p.logger.Error("trade execution failed", zap.String("ticker", ticker), zap.Error(err))
		return
	}

	p.logger.Info("trade executed",
		zap.String("ticker", ticker),
		zap.String("message", message),
		zap.Float64("cash", cash),
		zap.Any("portfolio", portfolio),
	)
}

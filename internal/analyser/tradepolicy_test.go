package analyser

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/wayming/Automated-Trading-System/internal/article"
)

type stubExecutor struct {
	called   bool
	symbol   string
	side     string
	quantity float64
}

func (s *stubExecutor) ExecuteTrade(ctx context.Context, symbol, side string, quantity float64) (string, float64, map[string]float64, error) {
	s.called = true
	s.symbol = symbol
	s.side = side
	s.quantity = quantity
	return "ok", 100, map[string]float64{symbol: quantity}, nil
}

func TestTradePolicyBuysOnPositiveScore(t *testing.T) {
	exec := &stubExecutor{}
	p := NewTradePolicy(exec, zap.NewNop())

	p.Evaluate(context.Background(), &article.StructuredAnalysis{
		StockCode: "AAPL",
		StockName: "Apple",
		Analysis: article.HorizonAnalysis{
			ShortTerm: article.HorizonView{Score: "+35"},
		},
	})

	if !exec.called {
		t.Fatal("ExecuteTrade was not called for a positive score")
	}
	if exec.symbol != "AAPL" || exec.side != "buy" || exec.quantity != buyQuantity {
		t.Errorf("ExecuteTrade called with (%q, %q, %v), want (AAPL, buy, %v)", exec.symbol, exec.side, exec.quantity, buyQuantity)
	}
}

func TestTradePolicySkipsOnNonPositiveScore(t *testing.T) {
	exec := &stubExecutor{}
	p := NewTradePolicy(exec, zap.NewNop())

	p.Evaluate(context.Background(), &article.StructuredAnalysis{
		StockCode: "AAPL",
		Analysis: article.HorizonAnalysis{
			ShortTerm: article.HorizonView{Score: "-12"},
		},
	})

	if exec.called {
		t.Error("ExecuteTrade was called for a non-positive score")
	}
}

func TestTradePolicySkipsOnNilResult(t *testing.T) {
	exec := &stubExecutor{}
	p := NewTradePolicy(exec, zap.NewNop())
	p.Evaluate(context.Background(), nil)
	if exec.called {
		t.Error("ExecuteTrade was called for a nil analysis")
	}
}

func TestTradePolicySkipsOnMissingTicker(t *testing.T) {
	exec := &stubExecutor{}
	p := NewTradePolicy(exec, zap.NewNop())
	p.Evaluate(context.Background(), &article.StructuredAnalysis{
		Analysis: article.HorizonAnalysis{ShortTerm: article.HorizonView{Score: "+10"}},
	})
	if exec.called {
		t.Error("ExecuteTrade was called with no stock code")
	}
}

func TestTradePolicySkipsOnUnparsableScore(t *testing.T) {
	exec := &stubExecutor{}
	p := NewTradePolicy(exec, zap.NewNop())
	p.Evaluate(context.Background(), &article.StructuredAnalysis{
		StockCode: "AAPL",
		Analysis:  article.HorizonAnalysis{ShortTerm: article.HorizonView{Score: "unclear"}},
	})
	if exec.called {
		t.Error("ExecuteTrade was called with an unparsable score")
	}
}

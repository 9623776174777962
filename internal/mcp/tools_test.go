package mcp

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/wayming/Automated-Trading-System/internal/article"
	"github.com/wayming/Automated-Trading-System/internal/vectorstore"
)

type stubEmbedder struct {
	calls int
	vec   []float32
	err   error
}

func (e *stubEmbedder) Encode(ctx context.Context, text string) ([]float32, error) {
	e.calls++
	return e.vec, e.err
}

func (e *stubEmbedder) Dimensions() int { return len(e.vec) }

type stubSearcher struct {
	calls   int
	results []vectorstore.SearchResult
	err     error
}

func (s *stubSearcher) Search(ctx context.Context, embedding []float32, topK int) ([]vectorstore.SearchResult, error) {
	s.calls++
	return s.results, s.err
}

type stubReader struct {
	article   *article.Message
	getErr    error
	listed    []*article.Message
	listErr   error
	gotID     string
	gotCode   string
	gotLimit  int
}

func (r *stubReader) Get(ctx context.Context, articleID string) (*article.Message, error) {
	r.gotID = articleID
	return r.article, r.getErr
}

func (r *stubReader) ListByStockCode(ctx context.Context, stockCode string, limit int) ([]*article.Message, error) {
	r.gotCode = stockCode
	r.gotLimit = limit
	return r.listed, r.listErr
}

func TestGetSimilarArticlesTrimsAndSkipsEmptyQuery(t *testing.T) {
	emb := &stubEmbedder{vec: []float32{0.1}}
	search := &stubSearcher{results: []vectorstore.SearchResult{{ArticleID: "a1"}}}
	r := NewRegistry(nil, zap.NewNop())
	RegisterSimilarArticles(r, emb, search)

	tool, ok := r.tools["get_similar_articles"]
	if !ok {
		t.Fatal("get_similar_articles not registered")
	}

	result, err := tool.Handler(context.Background(), map[string]any{"query": "   "})
	if err != nil {
		t.Fatalf("Handler() error = %v, want nil for whitespace-only query", err)
	}
	resultMap, ok := result.(map[string]any)
	if !ok {
		t.Fatalf("result = %#v, want map[string]any", result)
	}
	items, ok := resultMap["items"].([]vectorstore.SearchResult)
	if !ok || len(items) != 0 {
		t.Errorf("items = %#v, want an empty slice", resultMap["items"])
	}
	if emb.calls != 0 || search.calls != 0 {
		t.Error("expected neither the embedder nor the vector store to be called for a whitespace-only query")
	}
}

func TestGetSimilarArticlesWrapsResultsInItems(t *testing.T) {
	emb := &stubEmbedder{vec: []float32{0.1}}
	search := &stubSearcher{results: []vectorstore.SearchResult{{ArticleID: "a1"}, {ArticleID: "a2"}}}
	r := NewRegistry(nil, zap.NewNop())
	RegisterSimilarArticles(r, emb, search)

	tool := r.tools["get_similar_articles"]
	result, err := tool.Handler(context.Background(), map[string]any{"query": "  earnings call  "})
	if err != nil {
		t.Fatalf("Handler() error = %v", err)
	}
	resultMap := result.(map[string]any)
	items, ok := resultMap["items"].([]vectorstore.SearchResult)
	if !ok || len(items) != 2 {
		t.Errorf("items = %#v, want 2 results", resultMap["items"])
	}
	if emb.calls != 1 || search.calls != 1 {
		t.Error("expected the embedder and vector store to be called once for a non-empty query")
	}
}

func TestGetArticleHistoricalAnalysisWrapsSingleArticle(t *testing.T) {
	reader := &stubReader{article: article.New("title", "content")}
	r := NewRegistry(nil, zap.NewNop())
	RegisterHistoricalAnalysis(r, reader)

	tool := r.tools["get_article_historical_analysis"]
	result, err := tool.Handler(context.Background(), map[string]any{"article_id": "a1"})
	if err != nil {
		t.Fatalf("Handler() error = %v", err)
	}
	resultMap := result.(map[string]any)
	items, ok := resultMap["items"].([]*article.Message)
	if !ok || len(items) != 1 {
		t.Fatalf("items = %#v, want a one-element slice", resultMap["items"])
	}
	if reader.gotID != "a1" {
		t.Errorf("Get called with %q, want a1", reader.gotID)
	}
}

func TestGetArticleHistoricalAnalysisReturnsEmptyItemsWhenArticleNotFound(t *testing.T) {
	reader := &stubReader{article: nil}
	r := NewRegistry(nil, zap.NewNop())
	RegisterHistoricalAnalysis(r, reader)

	tool := r.tools["get_article_historical_analysis"]
	result, err := tool.Handler(context.Background(), map[string]any{"article_id": "missing"})
	if err != nil {
		t.Fatalf("Handler() error = %v", err)
	}
	resultMap := result.(map[string]any)
	items, ok := resultMap["items"].([]*article.Message)
	if !ok || len(items) != 0 {
		t.Errorf("items = %#v, want an empty slice", resultMap["items"])
	}
}

func TestGetArticleHistoricalAnalysisByStockCodeWrapsList(t *testing.T) {
	reader := &stubReader{listed: []*article.Message{article.New("a", "b"), article.New("c", "d")}}
	r := NewRegistry(nil, zap.NewNop())
	RegisterHistoricalAnalysis(r, reader)

	tool := r.tools["get_article_historical_analysis"]
	result, err := tool.Handler(context.Background(), map[string]any{"stock_code": "AAPL"})
	if err != nil {
		t.Fatalf("Handler() error = %v", err)
	}
	resultMap := result.(map[string]any)
	items, ok := resultMap["items"].([]*article.Message)
	if !ok || len(items) != 2 {
		t.Errorf("items = %#v, want 2 articles", resultMap["items"])
	}
	if reader.gotCode != "AAPL" || reader.gotLimit != 10 {
		t.Errorf("ListByStockCode called with (%q, %d), want (AAPL, 10)", reader.gotCode, reader.gotLimit)
	}
}

func TestGetArticleHistoricalAnalysisRequiresIDOrStockCode(t *testing.T) {
	reader := &stubReader{}
	r := NewRegistry(nil, zap.NewNop())
	RegisterHistoricalAnalysis(r, reader)

	tool := r.tools["get_article_historical_analysis"]
	if _, err := tool.Handler(context.Background(), map[string]any{}); err == nil {
		t.Fatal("Handler() error = nil, want non-nil when neither article_id nor stock_code is given")
	}
}

func TestGetArticleHistoricalAnalysisPropagatesGetError(t *testing.T) {
	reader := &stubReader{getErr: errors.New("db unavailable")}
	r := NewRegistry(nil, zap.NewNop())
	RegisterHistoricalAnalysis(r, reader)

	tool := r.tools["get_article_historical_analysis"]
	if _, err := tool.Handler(context.Background(), map[string]any{"article_id": "a1"}); err == nil {
		t.Fatal("Handler() error = nil, want non-nil when the reader fails")
	}
}

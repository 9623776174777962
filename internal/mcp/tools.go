package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/wayming/Automated-Trading-System/internal/article"
	"github.com/wayming/Automated-Trading-System/internal/embedder"
	"github.com/wayming/Automated-Trading-System/internal/vectorstore"
)

// VectorSearcher is the read-side vector store contract.
type VectorSearcher interface {
	Search(ctx context.Context, embedding []float32, topK int) ([]vectorstore.SearchResult, error)
}

// ArticleReader is the read-side relational store contract. Satisfied by
// *relstore.Store and *relstore.CachedStore.
type ArticleReader interface {
	Get(ctx context.Context, articleID string) (*article.Message, error)
	ListByStockCode(ctx context.Context, stockCode string, limit int) ([]*article.Message, error)
}

// toolOutputSchema is the OutputSchema every registered tool advertises:
// a JSON-RPC caller always gets back {"items": [...]}, never a bare array
// or a bare object.
var toolOutputSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"items": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "object"},
		},
	},
	"required": []string{"items"},
}

// RegisterListTools adds the list_tools tool, which reports every tool
// registered on r (including itself).
func RegisterListTools(r *Registry) {
	r.Register(Tool{
		Name:         "list_tools",
		Description:  "List all registered tools",
		OutputSchema: toolOutputSchema,
		Handler: func(ctx context.Context, params map[string]any) (any, error) {
			descriptors := make([]toolDescriptor, 0, len(r.tools))
			for _, t := range r.List() {
				descriptors = append(descriptors, toolDescriptor{
					Name:         t.Name,
					Description:  t.Description,
					OutputSchema: t.OutputSchema,
				})
			}
			return map[string]any{"items": descriptors}, nil
		},
	})
}

// RegisterSimilarArticles adds get_similar_articles: embeds params["query"]
// and runs a k-NN search against the vector store.
func RegisterSimilarArticles(r *Registry, emb embedder.Embedder, vector VectorSearcher) {
	r.Register(Tool{
		Name:         "get_similar_articles",
		Description:  "Get similar articles",
		OutputSchema: toolOutputSchema,
		Handler: func(ctx context.Context, params map[string]any) (any, error) {
			query, _ := params["query"].(string)
			query = strings.TrimSpace(query)
			if query == "" {
				return map[string]any{"items": []vectorstore.SearchResult{}}, nil
			}
			topK := 5
			if v, ok := params["top_k"].(float64); ok && v > 0 {
				topK = int(v)
			}

			vec, err := emb.Encode(ctx, query)
			if err != nil {
				return nil, fmt.Errorf("mcp: embed query: %w", err)
			}
			results, err := vector.Search(ctx, vec, topK)
			if err != nil {
				return nil, fmt.Errorf("mcp: search: %w", err)
			}
			return map[string]any{"items": results}, nil
		},
	})
}

// RegisterHistoricalAnalysis adds get_article_historical_analysis: looks
// up a single article by article_id, or recent articles by stock_code.
func RegisterHistoricalAnalysis(r *Registry, reader ArticleReader) {
	r.Register(Tool{
		Name:         "get_article_historical_analysis",
		Description:  "Get article historical analysis",
		OutputSchema: toolOutputSchema,
		Handler: func(ctx context.Context, params map[string]any) (any, error) {
			if articleID, ok := params["article_id"].(string); ok && articleID != "" {
				msg, err := reader.Get(ctx, articleID)
				if err != nil {
					return nil, fmt.Errorf("mcp: get article: %w", err)
				}
				if msg == nil {
					return map[string]any{"items": []*article.Message{}}, nil
				}
				return map[string]any{"items": []*article.Message{msg}}, nil
			}

			stockCode, _ := params["stock_code"].(string)
			if stockCode == "" {
				return nil, fmt.Errorf("mcp: get_article_historical_analysis requires article_id or stock_code")
			}
			limit := 10
			if v, ok := params["limit"].(float64); ok && v > 0 {
				limit = int(v)
			}
			results, err := reader.ListByStockCode(ctx, stockCode, limit)
			if err != nil {
				return nil, fmt.Errorf("mcp: list by stock code: %w", err)
			}
			return map[string]any{"items": results}, nil
		},
	})
}

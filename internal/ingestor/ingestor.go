// Package ingestor consumes processed articles off the second broker
// queue and fans each one out to both sinks: the vector store (for
// semantic search) and the relational store (for exact lookups and
// historical analysis). Grounded on
// original_source/news_store/news_ingestor.py's AsyncExitStack wiring,
// which registers both writers as independent handlers
// (mq_consumer.with_handler(wv_client.store_article);
// mq_consumer.with_handler(pg_client.store_article)) on the same
// consumer — the direct model for giving broker.Adapter.Consume two
// Handler funcs here.
package ingestor

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/wayming/Automated-Trading-System/internal/article"
	"github.com/wayming/Automated-Trading-System/internal/embedder"
	"github.com/wayming/Automated-Trading-System/internal/metrics"
	"github.com/wayming/Automated-Trading-System/internal/vectorstore"
)

// RelationalStore is the relational sink contract. Satisfied by
// *relstore.Store and *relstore.CachedStore.
type RelationalStore interface {
	Upsert(ctx context.Context, msg *article.Message) error
}

// VectorStore is the vector sink contract. Satisfied by *vectorstore.Store.
type VectorStore interface {
	Upsert(ctx context.Context, records []vectorstore.Record) error
}

// Ingestor wires an embedder and the two sinks into broker-ready handlers.
type Ingestor struct {
	embedder embedder.Embedder
	vector   VectorStore
	rel      RelationalStore
	metrics  *metrics.Pipeline
	logger   *zap.Logger
}

// New builds an Ingestor.
func New(emb embedder.Embedder, vector VectorStore, rel RelationalStore, metrics *metrics.Pipeline, logger *zap.Logger) *Ingestor {
	return &Ingestor{embedder: emb, vector: vector, rel: rel, metrics: metrics, logger: logger}
}

// HandleVector embeds the article's content and upserts it into the
// vector store. Registered as the first broker.Handler on the
// processed-articles queue.
func (i *Ingestor) HandleVector(ctx context.Context, body []byte) error {
	msg, err := article.Decode(body)
	if err != nil {
		return fmt.Errorf("ingestor: decode article: %w", err)
	}

	vec, err := i.embedder.Encode(ctx, msg.Content)
	if err != nil {
		return fmt.Errorf("ingestor: embed article %s: %w", msg.MessageID, err)
	}

	stockCode := ""
	if msg.ResponseStruct != nil {
		stockCode = msg.ResponseStruct.StockCode
	}

	err = i.vector.Upsert(ctx, []vectorstore.Record{{
		ArticleID: msg.MessageID,
		Embedding: vec,
		Title:     msg.Title,
		StockCode: stockCode,
		Content:   msg.Content,
	}})
	if err != nil {
		return fmt.Errorf("ingestor: upsert vector for %s: %w", msg.MessageID, err)
	}

	if i.metrics != nil {
		i.metrics.ArticlesIngestedVector.Inc()
	}
	i.logger.Info("article ingested into vector store", zap.String("article_id", msg.MessageID))
	return nil
}

// HandleRelational upserts the article into the relational store.
// Registered as the second broker.Handler on the processed-articles
// queue; the broker only acknowledges the delivery once both handlers
// succeed.
func (i *Ingestor) HandleRelational(ctx context.Context, body []byte) error {
	msg, err := article.Decode(body)
	if err != nil {
		return fmt.Errorf("ingestor: decode article: %w", err)
	}

	if err := i.rel.Upsert(ctx, msg); err != nil {
		return fmt.Errorf("ingestor: upsert relational row for %s: %w", msg.MessageID, err)
	}

	if i.metrics != nil {
		i.metrics.ArticlesIngestedRelational.Inc()
	}
	i.logger.Info("article ingested into relational store", zap.String("article_id", msg.MessageID))
	return nil
}

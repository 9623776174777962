// Package scraper runs the two-stage fetch-then-publish pipeline that
// feeds the raw-articles queue: a worker goroutine polls the source page
// and hands fetched articles to a publisher goroutine over a channel.
// Grounded on original_source/news_scraper/scrapers/scraper_worker.py and
// publish_worker.py, and on common/interface.py's NewsScraper ABC
// (login/fetch_news).
package scraper

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/wayming/Automated-Trading-System/internal/article"
	"github.com/wayming/Automated-Trading-System/internal/handoff"
	"github.com/wayming/Automated-Trading-System/internal/lru"
	"github.com/wayming/Automated-Trading-System/internal/metrics"
)

// FetchedArticle is one article pulled off the source page.
type FetchedArticle struct {
	URL     string
	Title   string
	Content string
}

// PageFetcher is the browser-automation contract a scraper worker drives,
// the Go shape of NewsScraper.login/fetch_news.
type PageFetcher interface {
	Login(ctx context.Context) (bool, error)
	FetchNews(ctx context.Context, limit int) ([]FetchedArticle, error)
	Close() error
}

// Publisher publishes an encoded article to the raw-articles queue.
// Satisfied by *broker.Adapter.
type Publisher interface {
	Publish(ctx context.Context, queue string, body []byte) error
}

const (
	loginRetryBudget  = 60 * time.Second
	loginRetryBackoff = 5 * time.Second
	pollInterval      = 10 * time.Second
	fetchLimit        = 5
	dedupeCapacity    = 20
	publishRetryDelay = 5 * time.Second
)

// Worker polls PageFetcher on a timer and hands new articles to an
// output handoff.Channel, deduplicating by URL with a fixed-capacity LRU
// cache (capacity and semantics matching every scraper implementation's
// article_cache in the original: OrderedDict get-moves-to-end,
// put-evicts-oldest).
type Worker struct {
	fetcher PageFetcher
	out     handoff.Channel
	seen    *lru.Dedupe
	metrics *metrics.Pipeline
	logger  *zap.Logger
}

// NewWorker builds a Worker. out is the channel fetched articles are sent
// to; it is not closed by Worker — the caller owns its lifecycle.
func NewWorker(fetcher PageFetcher, out handoff.Channel, metrics *metrics.Pipeline, logger *zap.Logger) (*Worker, error) {
	seen, err := lru.New(dedupeCapacity)
	if err != nil {
		return nil, fmt.Errorf("scraper: create dedupe cache: %w", err)
	}
	return &Worker{fetcher: fetcher, out: out, seen: seen, metrics: metrics, logger: logger}, nil
}

// Run logs in (retrying every 5s for up to 60s before giving up) and then
// polls every 10s for up to 5 new articles until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	defer w.fetcher.Close()

	if err := w.loginWithRetry(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			w.pollOnce(ctx)
		}
	}
}

func (w *Worker) loginWithRetry(ctx context.Context) error {
	deadline := time.Now().Add(loginRetryBudget)
	for {
		ok, err := w.fetcher.Login(ctx)
		if err != nil {
			w.logger.Error("login attempt errored", zap.Error(err))
		} else if ok {
			return nil
		}

		w.logger.Error("tradingview login failed, retrying")
		if time.Now().After(deadline) {
			w.logger.Error("tradingview login failed, giving up")
			return fmt.Errorf("scraper: login failed after %s", loginRetryBudget)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(loginRetryBackoff):
		}
	}
}

func (w *Worker) pollOnce(ctx context.Context) {
	articles, err := w.fetcher.FetchNews(ctx, fetchLimit)
	if err != nil {
		w.logger.Error("failed to fetch news", zap.Error(err))
		return
	}

	for _, a := range articles {
		if a.URL == "" {
			continue
		}
		if w.seen.Seen(a.URL) {
			continue
		}

		msg := article.New(a.Title, a.Content)
		select {
		case w.out <- msg:
			if w.metrics != nil {
				w.metrics.ArticlesScraped.Inc()
			}
		case <-ctx.Done():
			return
		}
	}
}

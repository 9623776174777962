package scraper

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/wayming/Automated-Trading-System/internal/article"
	"github.com/wayming/Automated-Trading-System/internal/handoff"
	"github.com/wayming/Automated-Trading-System/internal/metrics"
)

// PublisherLoop drains in and publishes each article to queue on the
// broker, grounded on publish_worker.py's article_publisher. The
// original distinguishes an AMQP-level error (requeue the article, then
// stop the worker entirely so a supervisor can restart it) from any
// other error (requeue, sleep 5s, keep going); this package's only
// failure path is Publisher.Publish, so both collapse to the same
// handling here: log, wait publishRetryDelay, and push the article back
// onto in. The requeue is best-effort: the article is dropped with an
// error log if in is full at that point, and dropped without a log if ctx
// ends during the wait (which is what happens to a failed publish during
// the post-cancel drain, whose per-article context lasts exactly
// publishRetryDelay).
type PublisherLoop struct {
	publisher Publisher
	queue     string
	in        handoff.Channel
	metrics   *metrics.Pipeline
	logger    *zap.Logger
}

// NewPublisherLoop builds a PublisherLoop reading from in and publishing
// to queue.
func NewPublisherLoop(publisher Publisher, queue string, in handoff.Channel, metrics *metrics.Pipeline, logger *zap.Logger) *PublisherLoop {
	return &PublisherLoop{publisher: publisher, queue: queue, in: in, metrics: metrics, logger: logger}
}

// Run drains in until ctx is cancelled or in is closed, matching the
// original's "stop_event set and queue empty" exit condition: once ctx is
// cancelled, Run does not return immediately but flushes whatever is
// already buffered in in first, so the handoff channel reaches empty
// before the caller can safely close the broker.
func (p *PublisherLoop) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.drain()
			return
		case msg, ok := <-p.in:
			if !ok {
				return
			}
			p.publishOne(ctx, msg)
		}
	}
}

// drain flushes whatever is already buffered in p.in after ctx has been
// cancelled. Each flushed article still gets a bounded publish attempt
// (the worker has already stopped producing, so there is no risk of this
// chasing a moving target); it stops as soon as in reports empty.
func (p *PublisherLoop) drain() {
	for !p.in.Drained() {
		select {
		case msg, ok := <-p.in:
			if !ok {
				return
			}
			drainCtx, cancel := context.WithTimeout(context.Background(), publishRetryDelay)
			p.publishOne(drainCtx, msg)
			cancel()
		default:
			return
		}
	}
}

func (p *PublisherLoop) publishOne(ctx context.Context, msg *article.Message) {
	body, err := msg.Encode()
	if err != nil {
		p.logger.Error("failed to encode article", zap.Error(err))
		return
	}

	if err := p.publisher.Publish(ctx, p.queue, body); err != nil {
		p.logger.Error("failed to publish article, will retry", zap.Error(err))
		p.requeueAfterDelay(ctx, msg)
		return
	}

	if p.metrics != nil {
		p.metrics.ArticlesPublished.Inc()
	}
}

func (p *PublisherLoop) requeueAfterDelay(ctx context.Context, msg *article.Message) {
	select {
	case <-time.After(publishRetryDelay):
	case <-ctx.Done():
		return
	}

	select {
	case p.in <- msg:
	case <-ctx.Done():
	default:
		p.logger.Error("dropped article after failed requeue: channel full")
	}
}

package relstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/wayming/Automated-Trading-System/internal/article"
)

// ArticleCache is a Redis-backed cache-aside layer in front of Store,
// grounded on stock/cache.go's ItemCache (same Get/Set/Invalidate shape,
// same "cache miss returns nil, not an error" redis.Nil handling). Only
// constructed when REDIS_HOST is set; this is an ambient performance
// optimisation, not a named pipeline stage, so its absence changes nothing
// about correctness.
type ArticleCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewArticleCache dials addr and verifies the connection with a ping.
func NewArticleCache(addr string, ttl time.Duration) (*ArticleCache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("relstore: connect to redis: %w", err)
	}

	return &ArticleCache{client: client, ttl: ttl}, nil
}

// Close closes the underlying Redis connection.
func (c *ArticleCache) Close() error {
	return c.client.Close()
}

func cacheKey(articleID string) string {
	return "article:" + articleID
}

// Get returns a cached article, or (nil, nil) on a cache miss.
func (c *ArticleCache) Get(ctx context.Context, articleID string) (*article.Message, error) {
	data, err := c.client.Get(ctx, cacheKey(articleID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("relstore: redis get: %w", err)
	}

	var msg article.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("relstore: unmarshal cached article: %w", err)
	}
	return &msg, nil
}

// Set stores msg under its article_id with the configured TTL.
func (c *ArticleCache) Set(ctx context.Context, msg *article.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("relstore: marshal article for cache: %w", err)
	}
	if err := c.client.Set(ctx, cacheKey(msg.MessageID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("relstore: redis set: %w", err)
	}
	return nil
}

// Invalidate removes a cached entry.
func (c *ArticleCache) Invalidate(ctx context.Context, articleID string) error {
	return c.client.Del(ctx, cacheKey(articleID)).Err()
}

// CachedStore wraps Store with a Redis cache-aside read path for Get.
// Writes go to the underlying store first, then invalidate (not
// repopulate) the cache entry. A failed invalidation is only logged, so
// the old entry can still be served until its TTL expires, and a Get that
// read the store before a concurrent write can put the older row back
// into the cache.
type CachedStore struct {
	store  *Store
	cache  *ArticleCache
	logger *zap.Logger
}

// NewCachedStore wraps store with cache.
func NewCachedStore(store *Store, cache *ArticleCache, logger *zap.Logger) *CachedStore {
	return &CachedStore{store: store, cache: cache, logger: logger}
}

// Close closes the underlying store. The cache is owned separately and
// closed by its own lifecycle.
func (s *CachedStore) Close() error {
	return s.store.Close()
}

// Upsert writes through to the store, then invalidates any cached entry.
func (s *CachedStore) Upsert(ctx context.Context, msg *article.Message) error {
	if err := s.store.Upsert(ctx, msg); err != nil {
		return err
	}
	if err := s.cache.Invalidate(ctx, msg.MessageID); err != nil {
		s.logger.Warn("failed to invalidate cache entry", zap.String("article_id", msg.MessageID), zap.Error(err))
	}
	return nil
}

// Get checks the cache first, falling back to the store on a miss and
// best-effort populating the cache before returning.
func (s *CachedStore) Get(ctx context.Context, articleID string) (*article.Message, error) {
	cached, err := s.cache.Get(ctx, articleID)
	if err != nil {
		s.logger.Warn("cache read failed, falling back to store", zap.Error(err))
	} else if cached != nil {
		return cached, nil
	}

	msg, err := s.store.Get(ctx, articleID)
	if err != nil || msg == nil {
		return msg, err
	}

	if err := s.cache.Set(ctx, msg); err != nil {
		s.logger.Warn("failed to populate cache", zap.String("article_id", articleID), zap.Error(err))
	}
	return msg, nil
}

// ListByStockCode delegates to the store directly; multi-row lookups
// aren't worth the cache-aside complexity for a read-mostly, low-QPS MCP
// tool call.
func (s *CachedStore) ListByStockCode(ctx context.Context, stockCode string, limit int) ([]*article.Message, error) {
	return s.store.ListByStockCode(ctx, stockCode, limit)
}

// Package relstore is the relational sink for analysed articles, grounded
// on oriys-nova/internal/store/postgres.go's pgxpool/ensureSchema/upsert
// idiom (style cross-checked against Tim275-oms/stock/store_postgres.go).
package relstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wayming/Automated-Trading-System/internal/article"
)

// Store upserts analysed articles into Postgres, keyed on article_id.
type Store struct {
	pool *pgxpool.Pool
}

// New connects to dsn, verifies it with a ping, and ensures the schema
// exists before returning.
func New(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("relstore: dsn is required")
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("relstore: create pool: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("relstore: ping: %w", err)
	}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureSchema(ctx context.Context) error {
	const stmt = `CREATE TABLE IF NOT EXISTS articles (
		article_id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		content TEXT NOT NULL,
		article_time TIMESTAMPTZ NOT NULL,
		response_struct JSONB,
		response_raw TEXT,
		error TEXT,
		updated_at TIMESTAMPTZ NOT NULL
	)`
	if _, err := s.pool.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("relstore: ensure schema: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

// Upsert inserts or replaces msg's row, keyed on article_id.
func (s *Store) Upsert(ctx context.Context, msg *article.Message) error {
	if msg.MessageID == "" {
		return fmt.Errorf("relstore: article_id is required")
	}

	var structData []byte
	if msg.ResponseStruct != nil {
		encoded, err := json.Marshal(msg.ResponseStruct)
		if err != nil {
			return fmt.Errorf("relstore: marshal response_struct: %w", err)
		}
		structData = encoded
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO articles (article_id, title, content, article_time, response_struct, response_raw, error, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (article_id) DO UPDATE SET
			title = EXCLUDED.title,
			content = EXCLUDED.content,
			article_time = EXCLUDED.article_time,
			response_struct = EXCLUDED.response_struct,
			response_raw = EXCLUDED.response_raw,
			error = EXCLUDED.error,
			updated_at = EXCLUDED.updated_at
	`, msg.MessageID, msg.Title, msg.Content, msg.Time, structData, msg.ResponseRaw, msg.Error, time.Now())
	if err != nil {
		return fmt.Errorf("relstore: upsert article %s: %w", msg.MessageID, err)
	}
	return nil
}

// Get retrieves a single article by id. It returns (nil, nil) if no row
// exists — the MCP historical-analysis tool treats a missing article as an
// empty result, not an error.
func (s *Store) Get(ctx context.Context, articleID string) (*article.Message, error) {
	var msg article.Message
	var structData []byte
	err := s.pool.QueryRow(ctx, `
		SELECT article_id, title, content, article_time, response_struct, response_raw, error
		FROM articles WHERE article_id = $1
	`, articleID).Scan(&msg.MessageID, &msg.Title, &msg.Content, &msg.Time, &structData, &msg.ResponseRaw, &msg.Error)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("relstore: get article %s: %w", articleID, err)
	}
	if len(structData) > 0 {
		var structured article.StructuredAnalysis
		if err := json.Unmarshal(structData, &structured); err != nil {
			return nil, fmt.Errorf("relstore: decode response_struct for %s: %w", articleID, err)
		}
		msg.ResponseStruct = &structured
	}
	return &msg, nil
}

// ListByStockCode returns recent articles whose stored response_struct
// names stockCode, newest first, for the MCP historical-analysis tool.
func (s *Store) ListByStockCode(ctx context.Context, stockCode string, limit int) ([]*article.Message, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.pool.Query(ctx, `
		SELECT article_id, title, content, article_time, response_struct, response_raw, error
		FROM articles
		WHERE response_struct->>'stock_code' = $1
		ORDER BY article_time DESC
		LIMIT $2
	`, stockCode, limit)
	if err != nil {
		return nil, fmt.Errorf("relstore: list articles for %s: %w", stockCode, err)
	}
	defer rows.Close()

	var results []*article.Message
	for rows.Next() {
		var msg article.Message
		var structData []byte
		if err := rows.Scan(&msg.MessageID, &msg.Title, &msg.Content, &msg.Time, &structData, &msg.ResponseRaw, &msg.Error); err != nil {
			return nil, fmt.Errorf("relstore: scan article: %w", err)
		}
		if len(structData) > 0 {
			var structured article.StructuredAnalysis
			if err := json.Unmarshal(structData, &structured); err == nil {
				msg.ResponseStruct = &structured
			}
		}
		results = append(results, &msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("relstore: list articles rows: %w", err)
	}
	return results, nil
}

package ingestor

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/wayming/Automated-Trading-System/internal/article"
	"github.com/wayming/Automated-Trading-System/internal/vectorstore"
)

type stubEmbedder struct {
	vec []float32
	err error
}

func (s stubEmbedder) Encode(ctx context.Context, text string) ([]float32, error) { return s.vec, s.err }
func (s stubEmbedder) Dimensions() int                                            { return len(s.vec) }

type stubVectorStore struct {
	records []vectorstore.Record
	err     error
}

func (s *stubVectorStore) Upsert(ctx context.Context, records []vectorstore.Record) error {
	s.records = records
	return s.err
}

type stubRelStore struct {
	upserted *article.Message
	err      error
}

func (s *stubRelStore) Upsert(ctx context.Context, msg *article.Message) error {
	s.upserted = msg
	return s.err
}

func TestHandleVectorUpsertsEmbedding(t *testing.T) {
	vec := &stubVectorStore{}
	ing := New(stubEmbedder{vec: []float32{1, 2, 3}}, vec, &stubRelStore{}, nil, zap.NewNop())

	msg := article.New("title", "content")
	body, _ := msg.Encode()

	if err := ing.HandleVector(context.Background(), body); err != nil {
		t.Fatalf("HandleVector() error = %v", err)
	}
	if len(vec.records) != 1 || vec.records[0].ArticleID != msg.MessageID {
		t.Errorf("unexpected upserted records: %+v", vec.records)
	}
}

func TestHandleVectorPropagatesEmbedError(t *testing.T) {
	ing := New(stubEmbedder{err: errors.New("embed down")}, &stubVectorStore{}, &stubRelStore{}, nil, zap.NewNop())
	msg := article.New("title", "content")
	body, _ := msg.Encode()

	if err := ing.HandleVector(context.Background(), body); err == nil {
		t.Fatal("HandleVector() error = nil, want non-nil when embedding fails")
	}
}

func TestHandleRelationalUpsertsArticle(t *testing.T) {
	rel := &stubRelStore{}
	ing := New(stubEmbedder{}, &stubVectorStore{}, rel, nil, zap.NewNop())

	msg := article.New("title", "content")
	body, _ := msg.Encode()

	if err := ing.HandleRelational(context.Background(), body); err != nil {
		t.Fatalf("HandleRelational() error = %v", err)
	}
	if rel.upserted == nil || rel.upserted.MessageID != msg.MessageID {
		t.Errorf("expected article %s to be upserted", msg.MessageID)
	}
}

package analyser

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/wayming/Automated-Trading-System/internal/article"
	"github.com/wayming/Automated-Trading-System/internal/gateway"
)

type stubLLM struct {
	response string
	err      error
}

func (s stubLLM) Complete(ctx context.Context, system, user string) (string, error) {
	return s.response, s.err
}

type stubPublisher struct {
	published bool
	queue     string
	body      []byte
}

func (s *stubPublisher) Publish(ctx context.Context, queue string, body []byte) error {
	s.published = true
	s.queue = queue
	s.body = body
	return nil
}

func newTestAnalyser(t *testing.T, llmClient stubLLM, publisher *stubPublisher) *Analyser {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}))
	t.Cleanup(srv.Close)

	return New(Config{
		LLM:            llmClient,
		TradePolicy:    NewTradePolicy(&stubExecutor{}, zap.NewNop()),
		GatewayClient:  gateway.New(srv.URL, srv.Client()),
		Publisher:      publisher,
		ProcessedQueue: "processed_articles",
		Logger:         zap.NewNop(),
	})
}

func TestHandleMessagePublishesOnSuccessfulAnalysis(t *testing.T) {
	publisher := &stubPublisher{}
	a := newTestAnalyser(t, stubLLM{response: "reasoning\n---\n{\"stock_code\":\"AAPL\"}\n---\n"}, publisher)

	msg := article.New("title", "content")
	body, err := msg.Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	if err := a.HandleMessage(context.Background(), body); err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}
	if !publisher.published {
		t.Fatal("expected message to be published to the processed-articles queue")
	}
	if publisher.queue != "processed_articles" {
		t.Errorf("published queue = %q, want processed_articles", publisher.queue)
	}
}

func TestHandleMessageSkipsProcessedQueueOnLLMError(t *testing.T) {
	publisher := &stubPublisher{}
	a := newTestAnalyser(t, stubLLM{err: errors.New("llm unavailable")}, publisher)

	msg := article.New("title", "content")
	body, _ := msg.Encode()

	if err := a.HandleMessage(context.Background(), body); err != nil {
		t.Fatalf("HandleMessage() error = %v, want nil (errors are recorded on the article, not propagated)", err)
	}
	if publisher.published {
		t.Error("expected no publish to the processed-articles queue when analysis failed")
	}
}

func TestHandleMessageSkipsProcessedQueueOnUnstructuredResponse(t *testing.T) {
	publisher := &stubPublisher{}
	a := newTestAnalyser(t, stubLLM{response: "just some prose, no delimited block here"}, publisher)

	msg := article.New("title", "content")
	body, _ := msg.Encode()

	if err := a.HandleMessage(context.Background(), body); err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}
	if publisher.published {
		t.Error("expected no publish to the processed-articles queue when the LLM response had no structured block")
	}
}

func TestHandleMessageRejectsUndecodableBody(t *testing.T) {
	publisher := &stubPublisher{}
	a := newTestAnalyser(t, stubLLM{response: "x"}, publisher)

	if err := a.HandleMessage(context.Background(), []byte("not json")); err == nil {
		t.Fatal("HandleMessage() error = nil, want non-nil for undecodable body")
	}
}

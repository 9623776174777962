package deepseek

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewRejectsMissingAPIKey(t *testing.T) {
	if _, err := New("", nil); err != ErrMissingAPIKey {
		t.Fatalf("New(\"\") error = %v, want %v", err, ErrMissingAPIKey)
	}
}

func TestCompleteSendsBearerAuthAndParsesContent(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(req.Messages) != 2 || req.Messages[1].Content != "content" {
			t.Fatalf("unexpected request messages: %+v", req.Messages)
		}
		json.NewEncoder(w).Encode(chatResponse{
			Choices: []struct {
				Message chatMessage `json:"message"`
			}{{Message: chatMessage{Role: "assistant", Content: "analysis text"}}},
		})
	}))
	defer srv.Close()

	c, err := New("test-key", srv.Client())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	c.apiURL = srv.URL

	got, err := c.Complete(context.Background(), "system prompt", "content")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got != "analysis text" {
		t.Errorf("Complete() = %q, want %q", got, "analysis text")
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("Authorization header = %q, want %q", gotAuth, "Bearer test-key")
	}
}

package httpembed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestEncodeReturnsEmbedding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req embedRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Text != "hello" {
			t.Fatalf("request text = %q, want hello", req.Text)
		}
		json.NewEncoder(w).Encode(embedResponse{Embedding: []float32{0.1, 0.2, 0.3}})
	}))
	defer srv.Close()

	c := New(srv.URL, 3, srv.Client())
	vec, err := c.Encode(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if len(vec) != 3 {
		t.Errorf("Encode() returned %d dims, want 3", len(vec))
	}
	if c.Dimensions() != 3 {
		t.Errorf("Dimensions() = %d, want 3", c.Dimensions())
	}
}

package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func newTestRegistry() *Registry {
	r := NewRegistry(nil, zap.NewNop())
	r.Register(Tool{
		Name:        "echo",
		Description: "echoes params back",
		Handler: func(ctx context.Context, params map[string]any) (any, error) {
			return params, nil
		},
	})
	return r
}

func TestListToolsReturnsRegisteredTools(t *testing.T) {
	r := newTestRegistry()
	srv := httptest.NewServer(r.Mux())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/tools/list")
	if err != nil {
		t.Fatalf("GET /tools/list error = %v", err)
	}
	defer resp.Body.Close()

	var descriptors []toolDescriptor
	if err := json.NewDecoder(resp.Body).Decode(&descriptors); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(descriptors) != 1 || descriptors[0].Name != "echo" {
		t.Errorf("descriptors = %+v, want one tool named echo", descriptors)
	}
}

func TestCallInvokesRegisteredHandler(t *testing.T) {
	r := newTestRegistry()
	srv := httptest.NewServer(r.Mux())
	defer srv.Close()

	reqBody, _ := json.Marshal(callRequest{Name: "echo", Params: map[string]any{"x": float64(1)}})
	resp, err := http.Post(srv.URL+"/tools/call", "application/json", bytes.NewReader(reqBody))
	if err != nil {
		t.Fatalf("POST /tools/call error = %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var got callResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Error != "" {
		t.Fatalf("unexpected error: %s", got.Error)
	}
}

func TestCallUnknownToolReturns404(t *testing.T) {
	r := newTestRegistry()
	srv := httptest.NewServer(r.Mux())
	defer srv.Close()

	reqBody, _ := json.Marshal(callRequest{Name: "does_not_exist"})
	resp, err := http.Post(srv.URL+"/tools/call", "application/json", bytes.NewReader(reqBody))
	if err != nil {
		t.Fatalf("POST /tools/call error = %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

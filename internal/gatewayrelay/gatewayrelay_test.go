package gatewayrelay

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func TestHandlePushForwardsJSONBody(t *testing.T) {
	var gotContentType string
	var gotBody []byte
	downstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = readAll(r)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte("accepted"))
	}))
	defer downstream.Close()

	relay := New(downstream.URL, zap.NewNop())
	srv := httptest.NewServer(relay.Mux())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/push", "application/json", bytes.NewReader([]byte(`{"a":1}`)))
	if err != nil {
		t.Fatalf("POST /push error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Errorf("status = %d, want 201", resp.StatusCode)
	}
	if gotContentType != "application/json" {
		t.Errorf("downstream Content-Type = %q, want application/json", gotContentType)
	}
	if string(gotBody) != `{"a":1}` {
		t.Errorf("downstream body = %q", gotBody)
	}
}

func TestHandlePushForwardsPlainTextBody(t *testing.T) {
	var gotContentType string
	downstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	}))
	defer downstream.Close()

	relay := New(downstream.URL, zap.NewNop())
	srv := httptest.NewServer(relay.Mux())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/push", "text/plain", bytes.NewReader([]byte("not json at all")))
	if err != nil {
		t.Fatalf("POST /push error = %v", err)
	}
	resp.Body.Close()

	if gotContentType != "text/plain" {
		t.Errorf("downstream Content-Type = %q, want text/plain", gotContentType)
	}
}

func readAll(r *http.Request) ([]byte, error) {
	buf := new(bytes.Buffer)
	_, err := buf.ReadFrom(r.Body)
	return buf.Bytes(), err
}

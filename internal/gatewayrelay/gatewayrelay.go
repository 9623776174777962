// Package gatewayrelay is a small HTTP server standing in for the
// original's bare requests.post call in
// original_source/aws_gateway/gateway_relay_server.py: it accepts a push
// from the analyser's internal/gateway client and forwards the body to a
// configured downstream HTTP endpoint, relaying that endpoint's status
// and body back to the caller. Server plumbing (ServeMux, graceful
// shutdown) follows Tim275-oms/kitchen/main.go's shape.
package gatewayrelay

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// Relay forwards pushed payloads to a single downstream HTTP endpoint.
type Relay struct {
	endpoint   string
	httpClient *http.Client
	logger     *zap.Logger
}

// New creates a Relay targeting endpoint.
func New(endpoint string, logger *zap.Logger) *Relay {
	return &Relay{
		endpoint:   endpoint,
		httpClient: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		logger:     logger,
	}
}

// Mux builds the HTTP handler exposing POST /push.
func (r *Relay) Mux() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/push", r.handlePush)
	return mux
}

// handlePush reads the request body, forwards it downstream choosing
// application/json when the body parses as JSON and text/plain
// otherwise, and relays the downstream response's status and body back
// to the caller.
func (r *Relay) handlePush(w http.ResponseWriter, req *http.Request) {
	body, err := io.ReadAll(req.Body)
	if err != nil {
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}

	contentType := "text/plain"
	var probe any
	if json.Unmarshal(body, &probe) == nil {
		contentType = "application/json"
	}

	downstreamReq, err := http.NewRequestWithContext(req.Context(), http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		r.logger.Error("failed to build downstream request", zap.Error(err))
		http.Error(w, "failed to build downstream request", http.StatusInternalServerError)
		return
	}
	downstreamReq.Header.Set("Content-Type", contentType)

	resp, err := r.httpClient.Do(downstreamReq)
	if err != nil {
		r.logger.Error("downstream push failed", zap.Error(err))
		http.Error(w, "downstream push failed", http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		r.logger.Error("failed to read downstream response", zap.Error(err))
		http.Error(w, "failed to read downstream response", http.StatusBadGateway)
		return
	}

	r.logger.Info("relayed push", zap.Int("downstream_status", resp.StatusCode))
	w.WriteHeader(resp.StatusCode)
	w.Write(respBody)
}

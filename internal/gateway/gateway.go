// Package gateway is a thin HTTP/JSON client for the downstream gateway
// relay, grounded on original_source/aws_gateway/gateway_relay_server.py's
// bare requests.post usage. Plain net/http rather than gRPC for the same
// reason internal/tradeexec is: see SPEC_FULL.md section 2.
package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Client pushes article payloads to a gateway relay endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// New creates a Client targeting endpoint. If httpClient is nil, a default
// client instrumented with otelhttp is used.
func New(endpoint string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}
	return &Client{endpoint: endpoint, httpClient: httpClient}
}

// Push sends message's bytes to the gateway relay and returns its response
// status and body. It never interprets a non-2xx status as a Go error —
// the caller (the analyser's gateway-push step) treats any response, good
// or bad, as "attempted"; only a transport-level failure is an error.
func (c *Client) Push(ctx context.Context, message []byte) (status int, body string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(message))
	if err != nil {
		return 0, "", fmt.Errorf("gateway: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, "", fmt.Errorf("gateway: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, "", fmt.Errorf("gateway: read response: %w", err)
	}
	return resp.StatusCode, string(respBody), nil
}

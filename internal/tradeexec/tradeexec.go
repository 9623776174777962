// Package tradeexec is a thin HTTP/JSON client for the paper-trading
// execution service. Transport is plain net/http rather than gRPC: see
// SPEC_FULL.md section 2 for why — the teacher's gRPC-shaped services
// (kitchen, gateway) import a common/api protobuf package that does not
// exist anywhere in the retrieved source tree, so there is no generated
// stub to ground a gRPC client on here.
package tradeexec

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Executor is the opaque trade-execution contract the trade policy drives.
type Executor interface {
	ExecuteTrade(ctx context.Context, symbol, side string, quantity float64) (message string, cash float64, portfolio map[string]float64, err error)
}

// Client calls a remote trade-executor's /execute endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Client. If httpClient is nil, a default client instrumented
// with otelhttp is used.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}
	return &Client{baseURL: baseURL, httpClient: httpClient}
}

type executeRequest struct {
	Symbol   string  `json:"symbol"`
	Side     string  `json:"side"`
	Quantity float64 `json:"quantity"`
}

type executeResponse struct {
	Message   string             `json:"message"`
	Cash      float64            `json:"cash"`
	Portfolio map[string]float64 `json:"portfolio"`
}

// ExecuteTrade implements Executor.
func (c *Client) ExecuteTrade(ctx context.Context, symbol, side string, quantity float64) (string, float64, map[string]float64, error) {
	reqBody, err := json.Marshal(executeRequest{Symbol: symbol, Side: side, Quantity: quantity})
	if err != nil {
		return "", 0, nil, fmt.Errorf("tradeexec: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/execute", bytes.NewReader(reqBody))
	if err != nil {
		return "", 0, nil, fmt.Errorf("tradeexec: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", 0, nil, fmt.Errorf("tradeexec: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, nil, fmt.Errorf("tradeexec: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", 0, nil, fmt.Errorf("tradeexec: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var parsed executeResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", 0, nil, fmt.Errorf("tradeexec: decode response: %w", err)
	}
	return parsed.Message, parsed.Cash, parsed.Portfolio, nil
}

// Package httpembed implements embedder.Embedder over a plain HTTP/JSON
// embedding service, the same net/http idiom used throughout this repo's
// outbound clients (internal/llm/deepseek, internal/gateway,
// internal/tradeexec) since the pack carries no HTTP client library.
package httpembed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Client calls a remote embedding service's /embed endpoint.
type Client struct {
	baseURL    string
	dimensions int
	httpClient *http.Client
}

// New creates a Client targeting baseURL, producing vectors of the given
// dimensionality (used to size the vector store collection, not to
// validate responses).
func New(baseURL string, dimensions int, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}
	return &Client{baseURL: baseURL, dimensions: dimensions, httpClient: httpClient}
}

// Dimensions implements embedder.Embedder.
func (c *Client) Dimensions() int { return c.dimensions }

type embedRequest struct {
	Text string `json:"text"`
}

type embedResponse struct {
	Embedding []float32 `json:"embedding"`
}

// Encode implements embedder.Embedder.
func (c *Client) Encode(ctx context.Context, text string) ([]float32, error) {
	reqBody, err := json.Marshal(embedRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("httpembed: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/embed", bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("httpembed: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpembed: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpembed: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("httpembed: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var parsed embedResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("httpembed: decode response: %w", err)
	}
	return parsed.Embedding, nil
}

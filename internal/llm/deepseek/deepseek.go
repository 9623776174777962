// Package deepseek implements llm.ChatCompletion over DeepSeek's chat
// completions HTTP API, grounded on
// original_source/news_analyser/providers.py's DeepSeekProvider
// (model_name, base_url, api_url, headers, api_key).
package deepseek

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

const defaultAPIURL = "https://api.deepseek.com/v1/chat/completions"
const defaultModel = "deepseek-chat"

// ErrMissingAPIKey mirrors DeepSeekProvider.api_key raising ValueError when
// DEEPSEEK_API_KEY is unset.
var ErrMissingAPIKey = errors.New("deepseek: DEEPSEEK_API_KEY is not set")

// Client calls the DeepSeek chat completions endpoint.
type Client struct {
	apiKey     string
	apiURL     string
	model      string
	httpClient *http.Client
}

// New creates a Client. apiKey must be non-empty.
func New(apiKey string, httpClient *http.Client) (*Client, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{apiKey: apiKey, apiURL: defaultAPIURL, model: defaultModel, httpClient: httpClient}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Complete implements llm.ChatCompletion.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	reqBody, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	})
	if err != nil {
		return "", fmt.Errorf("deepseek: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("deepseek: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("deepseek: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("deepseek: read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("deepseek: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("deepseek: decode response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("deepseek: response had no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

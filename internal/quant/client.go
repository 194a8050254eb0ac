// Package quant is the HTTP client for the remote quantitative service,
// which exposes the mean-variance optimizer and the historical backtest
// engine as request/response endpoints. Timeouts live here; callers treat a
// non-responding call as an eventual error to skip or surface.
package quant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client is an HTTP client for the quant service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new quant service client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Optimize requests an optimal allocation over the given asset universe.
// Infeasible and degraded outcomes come back as statuses on the response,
// not as errors; an error here means the call itself failed.
func (c *Client) Optimize(ctx context.Context, req OptimizeRequest) (*OptimizeResponse, error) {
	var resp OptimizeResponse
	if err := c.doRequest(ctx, "/optimize", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Backtest simulates the given portfolio over a historical period and
// returns its risk/return metrics.
func (c *Client) Backtest(ctx context.Context, req BacktestRequest) (*BacktestResponse, error) {
	var resp BacktestResponse
	if err := c.doRequest(ctx, "/backtest", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) doRequest(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("quant service returned status %d", resp.StatusCode)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

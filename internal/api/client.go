package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultClientTimeout bounds a single request.
const DefaultClientTimeout = 10 * time.Second

// Client fetches dashboard payloads from a server. It never retries; the
// caller decides when to ask again.
type Client struct {
	baseURL string
	client  *http.Client
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.client.Timeout = d
	}
}

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: DefaultClientTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchTrades calls GET /api/trades/{mint}.
func (c *Client) FetchTrades(ctx context.Context, mint string) (*TradesResponse, error) {
	var resp TradesResponse
	if err := c.get(ctx, "/api/trades/"+url.PathEscape(mint), &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("fetch trades: %s", resp.Error)
	}
	return &resp, nil
}

// FetchCoins calls GET /api/coins.
func (c *Client) FetchCoins(ctx context.Context) (*CoinsResponse, error) {
	var resp CoinsResponse
	if err := c.get(ctx, "/api/coins", &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("fetch coins: %s", resp.Error)
	}
	return &resp, nil
}

// FetchDashboard calls GET /.
func (c *Client) FetchDashboard(ctx context.Context) (*DashboardResponse, error) {
	var resp DashboardResponse
	if err := c.get(ctx, "/", &resp); err != nil {
		return nil, err
	}
	if !resp.Success || resp.Dashboard == nil {
		return nil, fmt.Errorf("fetch dashboard: %s", resp.Error)
	}
	return &resp, nil
}

// get decodes the JSON body of path into out. Error bodies are decoded too so
// the server message reaches the caller.
func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
		}
		return fmt.Errorf("unmarshal response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var e ErrorResponse
		_ = json.Unmarshal(body, &e)
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, e.Error)
	}
	return nil
}

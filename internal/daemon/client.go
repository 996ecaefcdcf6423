package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/theirongolddev/cashcast/internal/forecast"
	"github.com/theirongolddev/cashcast/internal/model"
)

const (
	requestTimeout = 10 * time.Second
	maxBodySize    = 4 << 20 // 4 MB, a year of forecast days fits comfortably
)

// ErrNotReady is returned when the daemon has not finished its first projection.
var ErrNotReady = errors.New("daemon: no projection yet")

// Client talks to a running daemon's HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the daemon listening on addr.
// addr may be a bare host:port or a full http(s) URL.
func NewClient(addr string) *Client {
	addr = strings.TrimSpace(addr)
	if !strings.HasPrefix(addr, "http://") && !strings.HasPrefix(addr, "https://") {
		addr = "http://" + addr
	}
	return &Client{
		baseURL: strings.TrimRight(addr, "/"),
		http:    &http.Client{Timeout: requestTimeout},
	}
}

// Status fetches /v1/status.
func (c *Client) Status(ctx context.Context) (Status, error) {
	var st Status
	err := c.getJSON(ctx, "/v1/status", &st)
	return st, err
}

// Forecast fetches the most recent projection.
func (c *Client) Forecast(ctx context.Context) (forecast.Result, error) {
	var fc forecast.Result
	err := c.getJSON(ctx, "/v1/forecast", &fc)
	return fc, err
}

// Payoff fetches the most recent strategy comparison.
func (c *Client) Payoff(ctx context.Context) (model.StrategyComparison, error) {
	var cmp model.StrategyComparison
	err := c.getJSON(ctx, "/v1/payoff", &cmp)
	return cmp, err
}

// Events returns the retained event ring, oldest first.
func (c *Client) Events(ctx context.Context) ([]Event, error) {
	var events []Event
	err := c.getJSON(ctx, "/v1/events", &events)
	return events, err
}

// Refresh asks the daemon to re-project now and returns the resulting status.
func (c *Client) Refresh(ctx context.Context) (Status, error) {
	var st Status
	body, err := c.do(ctx, http.MethodPost, "/v1/refresh")
	if err != nil {
		return st, err
	}
	if err := json.Unmarshal(body, &st); err != nil {
		return st, fmt.Errorf("daemon: parsing refresh: %w", err)
	}
	return st, nil
}

func (c *Client) getJSON(ctx context.Context, path string, v any) error {
	body, err := c.do(ctx, http.MethodGet, path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("daemon: parsing %s: %w", path, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("daemon: creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("daemon: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("daemon: reading response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return body, nil
	case http.StatusServiceUnavailable:
		return nil, ErrNotReady
	default:
		return nil, fmt.Errorf("daemon: %s %s: HTTP %d", method, path, resp.StatusCode)
	}
}

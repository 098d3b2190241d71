// Package notion is the client for the upstream Notion API: authenticated
// requests, cursor pagination over block children, and recursive tree
// enrichment. The API itself is an opaque external dependency; only the
// subset this gateway consumes is modeled.
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/keving3ng/notion-gateway/internal/logger"
)

const (
	defaultTimeout = 30 * time.Second

	maxIdleConns        = 100
	maxIdleConnsPerHost = 10
	idleConnTimeout     = 90 * time.Second

	// errorBodyLimit caps how much of an upstream error body is retained.
	errorBodyLimit = 2048
)

// Config holds client construction parameters. APIKey is the bearer
// credential; it is attached to requests and never logged.
type Config struct {
	BaseURL  string
	APIKey   string
	Version  string
	PageSize int
	Timeout  time.Duration
}

// Client issues authenticated requests against the Notion API.
type Client struct {
	baseURL    string
	apiKey     string
	version    string
	pageSize   int
	httpClient *http.Client
	logger     logger.Logger
}

func NewClient(cfg Config, log logger.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL:  cfg.BaseURL,
		apiKey:   cfg.APIKey,
		version:  cfg.Version,
		pageSize: cfg.PageSize,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        maxIdleConns,
				MaxIdleConnsPerHost: maxIdleConnsPerHost,
				IdleConnTimeout:     idleConnTimeout,
			},
		},
		logger: log,
	}
}

// do performs one API call and decodes the JSON response into out.
// Non-2xx responses become an *APIError carrying the status and a
// truncated copy of the body text.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Notion-Version", c.version)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("notion request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		c.logger.Error("notion API request failed",
			logger.String("method", method),
			logger.String("path", path),
			logger.Int("status", resp.StatusCode),
			logger.String("detail", string(detail)),
		)
		return &APIError{
			StatusCode: resp.StatusCode,
			Body:       string(detail),
		}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}

	return nil
}

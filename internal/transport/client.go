// Package transport posts chat requests over HTTP.
package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	retryablehttp "github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"

	"chatbridge/internal/util"
)

const (
	maxErrorBody      = 4 * 1024
	errorPreviewBytes = 512
)

// Config configures a Client.
type Config struct {
	BaseURL      string
	APIKey       string
	Organization string
	Project      string
	// Headers are sent on every request. Per-call headers override them.
	Headers map[string]string
	// RetryMax is the number of retries for connection errors and 5xx/429
	// responses. Zero disables retries.
	RetryMax   int
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client is a JSON-over-HTTP client with bearer authentication.
type Client struct {
	cfg    Config
	client *retryablehttp.Client
	logger *zap.Logger
}

// NewClient constructs a Client.
func NewClient(cfg Config) *Client {
	client := retryablehttp.NewClient()
	client.RetryMax = cfg.RetryMax
	client.Logger = nil
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	if cfg.HTTPClient != nil {
		client.HTTPClient = cfg.HTTPClient
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{cfg: cfg, client: client, logger: logger}
}

// PostJSON marshals body and posts it to path under the base URL. Non-2xx
// responses are read, closed and returned as *StatusError.
func (c *Client) PostJSON(ctx context.Context, path string, body any, header http.Header) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
	request, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, url, payload)
	if err != nil {
		return nil, err
	}

	requestID := uuid.NewString()
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("X-Request-ID", requestID)
	if c.cfg.APIKey != "" {
		request.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}
	if c.cfg.Organization != "" {
		request.Header.Set("OpenAI-Organization", c.cfg.Organization)
	}
	if c.cfg.Project != "" {
		request.Header.Set("OpenAI-Project", c.cfg.Project)
	}
	for k, v := range c.cfg.Headers {
		request.Header.Set(k, v)
	}
	for k, vs := range header {
		request.Header.Del(k)
		for _, v := range vs {
			request.Header.Add(k, v)
		}
	}

	logger := c.logger.With(zap.String("request_id", requestID), zap.String("url", url))
	logger.Debug("sending request", zap.Int("bytes", len(payload)))

	resp, err := c.client.Do(request)
	if err != nil {
		logger.Warn("request failed", zap.Error(err))
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		_ = resp.Body.Close()
		statusErr := newStatusError(resp.StatusCode, raw)
		logger.Warn("request rejected", zap.Int("status", resp.StatusCode), zap.String("body", util.BodyPreview(raw, errorPreviewBytes)))
		return nil, statusErr
	}
	return resp, nil
}

// Package dso implements the renderer interface against the DSO rendering
// toolchain's HTTP service.
package dso

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/hashicorp/go-hclog"

	"github.com/provincie-forge/publicatie/pkg/renderer"
)

// Client renders publication documents by POSTing the input model to the
// toolchain service. Transient failures are retried with exponential backoff;
// renderer-reported errors are not.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries uint64
	logger     hclog.Logger
}

// Config holds configuration for the DSO renderer client.
type Config struct {
	BaseURL    string        // Renderer service base URL
	Timeout    time.Duration // Per-attempt HTTP timeout (default: 120s)
	MaxRetries uint64        // Retry attempts on transient failure (default: 3)
	Logger     hclog.Logger  // Logger (optional)
}

// NewClient creates a new DSO renderer client.
func NewClient(config Config) (*Client, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("renderer base URL is required")
	}

	if config.Timeout == 0 {
		config.Timeout = 120 * time.Second
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = 3
	}
	if config.Logger == nil {
		config.Logger = hclog.NewNullLogger()
	}

	return &Client{
		baseURL: config.BaseURL,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		maxRetries: config.MaxRetries,
		logger:     config.Logger.Named("dso-renderer"),
	}, nil
}

func (c *Client) Name() string {
	return "dso"
}

// RenderAct renders an act package bundle.
func (c *Client) RenderAct(ctx context.Context, req *renderer.ActRequest) (*renderer.ActResult, error) {
	var result renderer.ActResult
	if err := c.post(ctx, "/render/act", req, &result); err != nil {
		return nil, err
	}
	if len(result.Documents) == 0 {
		return nil, &renderer.RenderError{Message: "renderer returned no documents"}
	}
	return &result, nil
}

// RenderAnnouncement renders an announcement package bundle.
func (c *Client) RenderAnnouncement(ctx context.Context, req *renderer.AnnouncementRequest) (*renderer.AnnouncementResult, error) {
	var result renderer.AnnouncementResult
	if err := c.post(ctx, "/render/announcement", req, &result); err != nil {
		return nil, err
	}
	if len(result.Documents) == 0 {
		return nil, &renderer.RenderError{Message: "renderer returned no documents"}
	}
	return &result, nil
}

// errorResponse is the service's error envelope.
type errorResponse struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func (c *Client) post(ctx context.Context, path string, payload interface{}, out interface{}) error {
	reqJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal render request: %w", err)
	}

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, bytes.NewReader(reqJSON))
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}
		req.Header.Set("Content-Type", "application/json")

		c.logger.Debug("sending render request", "path", path, "bytes", len(reqJSON))

		resp, err := c.httpClient.Do(req)
		if err != nil {
			// Network errors are transient, retry.
			return fmt.Errorf("failed to send request: %w", err)
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			if err := json.Unmarshal(respBody, out); err != nil {
				return backoff.Permanent(fmt.Errorf("failed to parse render response: %w", err))
			}
			return nil
		case resp.StatusCode >= 500:
			return fmt.Errorf("renderer unavailable (%d): %s", resp.StatusCode, string(respBody))
		default:
			return backoff.Permanent(c.classifyError(resp.StatusCode, respBody))
		}
	}

	bo := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.maxRetries),
		ctx,
	)
	return backoff.RetryNotify(operation, bo, func(err error, next time.Duration) {
		c.logger.Warn("render attempt failed, retrying", "path", path, "error", err, "next_in", next)
	})
}

// classifyError maps the service's 4xx envelope onto the domain error types.
func (c *Client) classifyError(statusCode int, body []byte) error {
	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err != nil || errResp.Message == "" {
		return &renderer.RenderError{Message: fmt.Sprintf("renderer error (%d): %s", statusCode, string(body))}
	}

	if errResp.Kind == "configuration" {
		return &renderer.ConfigurationError{Message: errResp.Message}
	}
	return &renderer.RenderError{Message: errResp.Message}
}

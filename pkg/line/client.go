package line

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tapshop/tapshop-backend/pkg/config"
)

const (
	defaultBaseURL              = "https://api.line.me"
	pushPath                    = "/v2/bot/message/push"
	responseBodyReadLimit int64 = 1024
)

// ErrNotConfigured is returned when no channel token was provided. Push
// delivery is best-effort, so callers typically log and move on.
var ErrNotConfigured = errors.New("line client not configured")

// Client sends push messages through the LINE Messaging API.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	channelToken string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the configured API base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// NewClient builds a LINE client. A missing channel token is not an error;
// Push on an unconfigured client returns ErrNotConfigured.
func NewClient(cfg config.LineConfig, opts ...Option) *Client {
	client := &Client{
		channelToken: strings.TrimSpace(cfg.ChannelAccessToken),
		baseURL:      defaultBaseURL,
	}
	if trimmed := strings.TrimSpace(cfg.BaseURL); trimmed != "" {
		client.baseURL = trimmed
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client.httpClient = &http.Client{Timeout: timeout}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client
}

// IsConfigured reports whether push messages can be sent.
func (c *Client) IsConfigured() bool {
	return c != nil && c.channelToken != ""
}

// Push sends a text message to the given LINE user.
func (c *Client) Push(ctx context.Context, to, text string) error {
	if !c.IsConfigured() {
		return ErrNotConfigured
	}
	if strings.TrimSpace(to) == "" {
		return errors.New("recipient is required")
	}

	payload := map[string]any{
		"to": to,
		"messages": []map[string]string{
			{"type": "text", "text": text},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal push request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(c.baseURL, "/")+pushPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build push request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.channelToken)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("execute push request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return fmt.Errorf("line push failed: status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}

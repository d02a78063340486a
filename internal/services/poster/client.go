package poster

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const defaultHTTPTimeout = 15 * time.Second

// Config captures the runtime settings for the posting endpoint.
type Config struct {
	BaseURL        string
	BearerToken    string
	TimeoutSeconds int
}

// Client posts tweets through the X API v2 tweet-creation endpoint.
type Client struct {
	cfg        Config
	httpClient *http.Client
	now        func() time.Time
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithClock overrides the time source (useful for rate-limit reset tests).
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// NewClient constructs a poster client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			BaseURL:        strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
			BearerToken:    strings.TrimSpace(cfg.BearerToken),
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.cfg.BaseURL == "" {
		client.cfg.BaseURL = "https://api.x.com"
	}
	return client
}

type createTweetRequest struct {
	Text string `json:"text"`
}

type createTweetResponse struct {
	Data struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"data"`
	Detail string `json:"detail"`
	Title  string `json:"title"`
}

// Post publishes tweet text. A 429 response surfaces as a RateLimitError
// carrying the wait suggested by the rate-limit headers.
func (c *Client) Post(ctx context.Context, text string) (Result, error) {
	var empty Result
	text = strings.TrimSpace(text)
	if text == "" {
		return empty, errors.New("post: tweet text required")
	}
	if c.cfg.BearerToken == "" {
		return empty, errors.New("post: bearer token required")
	}

	encoded, err := json.Marshal(createTweetRequest{Text: text})
	if err != nil {
		return empty, fmt.Errorf("post: encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/2/tweets", bytes.NewReader(encoded))
	if err != nil {
		return empty, fmt.Errorf("post: new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.BearerToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return empty, fmt.Errorf("post: http error: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return empty, fmt.Errorf("post: read body: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return empty, &RateLimitError{Wait: c.rateLimitWait(resp.Header)}
	}
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		var parsed createTweetResponse
		detail := strings.TrimSpace(string(body))
		if err := json.Unmarshal(body, &parsed); err == nil && parsed.Detail != "" {
			detail = parsed.Detail
		}
		return empty, fmt.Errorf("post: http %d: %s", resp.StatusCode, detail)
	}

	var parsed createTweetResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return empty, fmt.Errorf("post: decode response: %w", err)
	}
	if parsed.Data.ID == "" {
		return empty, errors.New("post: response missing tweet id")
	}
	return Result{
		TweetID:   parsed.Data.ID,
		PostedURL: "https://x.com/i/status/" + parsed.Data.ID,
	}, nil
}

// HealthCheck verifies the bearer token against the authenticated-user endpoint.
func (c *Client) HealthCheck(ctx context.Context) error {
	if c.cfg.BearerToken == "" {
		return errors.New("poster health: bearer token required")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/2/users/me", nil)
	if err != nil {
		return fmt.Errorf("poster health: new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.BearerToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("poster health: http error: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode == http.StatusTooManyRequests {
		return &RateLimitError{Wait: c.rateLimitWait(resp.Header)}
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("poster health: http %d", resp.StatusCode)
	}
	return nil
}

// rateLimitWait derives a wait from x-rate-limit-reset (unix seconds) with
// Retry-After as fallback.
func (c *Client) rateLimitWait(header http.Header) time.Duration {
	if reset := strings.TrimSpace(header.Get("x-rate-limit-reset")); reset != "" {
		if epoch, err := strconv.ParseInt(reset, 10, 64); err == nil {
			if wait := time.Unix(epoch, 0).Sub(c.now()); wait > 0 {
				return wait
			}
		}
	}
	if after := strings.TrimSpace(header.Get("Retry-After")); after != "" {
		if seconds, err := strconv.Atoi(after); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
	}
	return 15 * time.Minute
}

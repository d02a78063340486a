package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"quill/internal/config"
)

const userAgent = "quill/1.0"

// Service defines the notification surface exposed to workflow components.
type Service interface {
	NotifyArticlesDiscovered(ctx context.Context, count int, source string) error
	NotifyTweetPending(ctx context.Context, title string, impactScore int) error
	NotifyTweetPosted(ctx context.Context, title, postedURL string) error
	NotifyTweetRejected(ctx context.Context, title, reason string) error
	NotifyRateLimited(ctx context.Context, waitMinutes int) error
	NotifyVaultWiped(ctx context.Context, user string, passwords, cards int) error
	NotifyError(ctx context.Context, err error, context string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:    topic,
		client:      &http.Client{Timeout: timeout},
		queueEvents: cfg.Notifications.Queue,
		postEvents:  cfg.Notifications.Posts,
		errorEvents: cfg.Notifications.Errors,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint    string
	client      *http.Client
	queueEvents bool
	postEvents  bool
	errorEvents bool
}

func (n *ntfyService) NotifyArticlesDiscovered(ctx context.Context, count int, source string) error {
	if !n.queueEvents {
		return nil
	}
	source = strings.TrimSpace(source)
	if source == "" {
		source = "all sources"
	}
	data := payload{
		title:   "Quill - Articles Discovered",
		message: fmt.Sprintf("Discovered %d new articles from %s", count, source),
		tags:    []string{"quill", "fetch"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyTweetPending(ctx context.Context, title string, impactScore int) error {
	if !n.queueEvents {
		return nil
	}
	data := payload{
		title:   "Quill - Tweet Pending",
		message: fmt.Sprintf("Awaiting approval (impact %d): %s", impactScore, strings.TrimSpace(title)),
		tags:    []string{"quill", "pending"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyTweetPosted(ctx context.Context, title, postedURL string) error {
	if !n.postEvents {
		return nil
	}
	message := fmt.Sprintf("Posted: %s", strings.TrimSpace(title))
	if postedURL = strings.TrimSpace(postedURL); postedURL != "" {
		message = fmt.Sprintf("%s\n%s", message, postedURL)
	}
	data := payload{
		title:    "Quill - Posted",
		message:  message,
		tags:     []string{"quill", "posted"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyTweetRejected(ctx context.Context, title, reason string) error {
	if !n.queueEvents {
		return nil
	}
	data := payload{
		title:   "Quill - Rejected",
		message: fmt.Sprintf("Rejected: %s\nReason: %s", strings.TrimSpace(title), strings.TrimSpace(reason)),
		tags:    []string{"quill", "rejected"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyRateLimited(ctx context.Context, waitMinutes int) error {
	if !n.errorEvents {
		return nil
	}
	data := payload{
		title:    "Quill - Rate Limited",
		message:  fmt.Sprintf("Posting rate limited; auto-post disabled. Suggested wait: %d minutes", waitMinutes),
		tags:     []string{"quill", "rate-limit"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyVaultWiped(ctx context.Context, user string, passwords, cards int) error {
	if !n.errorEvents {
		return nil
	}
	data := payload{
		title:    "Quill - Vault Wiped",
		message:  fmt.Sprintf("Access code attempts exhausted for %s: deleted %d passwords, %d cards", strings.TrimSpace(user), passwords, cards),
		tags:     []string{"quill", "vault", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	if !n.errorEvents {
		return nil
	}
	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "Quill - Error",
		message:  builder.String(),
		tags:     []string{"quill", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Quill - Test",
		message:  "Notification system test",
		tags:     []string{"quill", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyArticlesDiscovered(context.Context, int, string) error { return nil }
func (noopService) NotifyTweetPending(context.Context, string, int) error       { return nil }
func (noopService) NotifyTweetPosted(context.Context, string, string) error     { return nil }
func (noopService) NotifyTweetRejected(context.Context, string, string) error   { return nil }
func (noopService) NotifyRateLimited(context.Context, int) error                { return nil }
func (noopService) NotifyVaultWiped(context.Context, string, int, int) error    { return nil }
func (noopService) NotifyError(context.Context, error, string) error            { return nil }
func (noopService) TestNotification(context.Context) error                      { return nil }

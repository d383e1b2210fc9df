package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"substation/internal/config"
	"substation/internal/language"
)

const userAgent = "Substation/0.1.0"

// Service defines the notification surface exposed to the search pipeline.
type Service interface {
	NotifyDownload(ctx context.Context, videoTitle, lang, provider string, score, maxScore int) error
	NotifyUpgrade(ctx context.Context, videoTitle, lang, provider string, oldScore, newScore int) error
	NotifyFailure(ctx context.Context, videoTitle string, err error) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:  topic,
		client:    &http.Client{Timeout: timeout},
		downloads: cfg.Notifications.Downloads,
		upgrades:  cfg.Notifications.Upgrades,
		failures:  cfg.Notifications.Failures,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint  string
	client    *http.Client
	downloads bool
	upgrades  bool
	failures  bool
}

func (n *ntfyService) NotifyDownload(ctx context.Context, videoTitle, lang, provider string, score, maxScore int) error {
	if !n.downloads {
		return nil
	}
	data := payload{
		title: "Substation - Subtitle Downloaded",
		message: fmt.Sprintf("%s [%s] from %s (score %d/%d)",
			strings.TrimSpace(videoTitle), language.DisplayName(lang), provider, score, maxScore),
		tags: []string{"substation", "download", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyUpgrade(ctx context.Context, videoTitle, lang, provider string, oldScore, newScore int) error {
	if !n.upgrades {
		return nil
	}
	data := payload{
		title: "Substation - Subtitle Upgraded",
		message: fmt.Sprintf("%s [%s] from %s (score %d -> %d)",
			strings.TrimSpace(videoTitle), language.DisplayName(lang), provider, oldScore, newScore),
		tags: []string{"substation", "upgrade", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyFailure(ctx context.Context, videoTitle string, err error) error {
	if !n.failures {
		return nil
	}
	message := "Search failed: " + strings.TrimSpace(videoTitle)
	if err != nil {
		message = message + "\n" + strings.TrimSpace(err.Error())
	}
	data := payload{
		title:    "Substation - Search Failed",
		message:  message,
		tags:     []string{"substation", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Substation - Test",
		message:  "Notification system test",
		tags:     []string{"substation", "test"},
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

func (noopService) NotifyDownload(context.Context, string, string, string, int, int) error { return nil }
func (noopService) NotifyUpgrade(context.Context, string, string, string, int, int) error  { return nil }
func (noopService) NotifyFailure(context.Context, string, error) error                     { return nil }
func (noopService) TestNotification(context.Context) error                                 { return nil }

package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"packwright/internal/config"
)

const userAgent = "Packwright/0.1.0"

// Service defines the notification surface exposed to workflow components.
type Service interface {
	NotifyRunStarted(ctx context.Context, folderName string) error
	NotifyApprovalNeeded(ctx context.Context, folderName, checkpoint string) error
	NotifyRunCompleted(ctx context.Context, folderName string, succeeded, failed int) error
	NotifyRunFailed(ctx context.Context, folderName, reason string) error
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
		endpoint:    topic,
		client:      &http.Client{Timeout: timeout},
		approvals:   cfg.Notifications.Approvals,
		completions: cfg.Notifications.Completions,
		errors:      cfg.Notifications.Errors,
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
	approvals   bool
	completions bool
	errors      bool
}

func (n *ntfyService) NotifyRunStarted(ctx context.Context, folderName string) error {
	folderName = strings.TrimSpace(folderName)
	data := payload{
		title:   "Packwright - Run Started",
		message: fmt.Sprintf("Started packaging: %s", folderName),
		tags:    []string{"packwright", "run", "started"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyApprovalNeeded(ctx context.Context, folderName, checkpoint string) error {
	if !n.approvals {
		return nil
	}
	folderName = strings.TrimSpace(folderName)
	checkpoint = strings.TrimSpace(checkpoint)
	data := payload{
		title:    "Packwright - Decision Needed",
		message:  fmt.Sprintf("%s is waiting on a %s decision", folderName, checkpoint),
		tags:     []string{"packwright", "approval", "waiting"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyRunCompleted(ctx context.Context, folderName string, succeeded, failed int) error {
	if !n.completions {
		return nil
	}
	folderName = strings.TrimSpace(folderName)

	var title, message string
	if failed == 0 {
		title = "Packwright - Delivered"
		message = fmt.Sprintf("%s packaged: %d operations applied", folderName, succeeded)
	} else {
		title = "Packwright - Delivered (with errors)"
		message = fmt.Sprintf("%s packaged: %d operations applied, %d failed", folderName, succeeded, failed)
	}
	data := payload{
		title:   title,
		message: message,
		tags:    []string{"packwright", "run", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyRunFailed(ctx context.Context, folderName, reason string) error {
	if !n.errors {
		return nil
	}
	folderName = strings.TrimSpace(folderName)
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "unknown"
	}
	data := payload{
		title:    "Packwright - Run Failed",
		message:  fmt.Sprintf("%s failed: %s", folderName, reason),
		tags:     []string{"packwright", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Packwright - Test",
		message:  "Notification system test",
		tags:     []string{"packwright", "test"},
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

func (noopService) NotifyRunStarted(context.Context, string) error             { return nil }
func (noopService) NotifyApprovalNeeded(context.Context, string, string) error { return nil }
func (noopService) NotifyRunCompleted(context.Context, string, int, int) error { return nil }
func (noopService) NotifyRunFailed(context.Context, string, string) error      { return nil }
func (noopService) TestNotification(context.Context) error                     { return nil }

// Noop returns a service that drops every notification. Used in tests and
// when wiring components that may run without a configured topic.
func Noop() Service { return noopService{} }

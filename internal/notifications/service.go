package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"transcriptsync/internal/config"
)

const userAgent = "transcriptsync/0.1"

// Report summarizes one pipeline run.
type Report struct {
	Pipeline  string
	RunID     string
	Processed int
	Completed int
	Failed    int
	Skipped   int
	Pending   int
	Published int
	Elapsed   time.Duration
	// Err is the fatal error that ended the run early, if any.
	Err error
}

// Service defines the notification surface used by the pipeline driver.
type Service interface {
	NotifyRun(ctx context.Context, report Report) error
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
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyRun(ctx context.Context, r Report) error {
	if r.Err == nil && r.Processed == 0 {
		return nil
	}
	if r.Err != nil {
		return n.send(ctx, payload{
			title:    "transcriptsync - " + r.Pipeline + " aborted",
			message:  fmt.Sprintf("Run %s stopped after %d items: %s", r.RunID, r.Processed, strings.TrimSpace(r.Err.Error())),
			tags:     []string{"transcriptsync", r.Pipeline, "error"},
			priority: "high",
		})
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d processed: %d completed, %d failed, %d skipped", r.Processed, r.Completed, r.Failed, r.Skipped)
	if r.Pending > 0 {
		fmt.Fprintf(&b, ", %d pending", r.Pending)
	}
	if r.Published > 0 {
		fmt.Fprintf(&b, "\n%d new transcripts published", r.Published)
	}
	if r.Elapsed > 0 {
		fmt.Fprintf(&b, "\nDuration: %s", r.Elapsed.Round(time.Second))
	}

	data := payload{
		title:   "transcriptsync - " + r.Pipeline,
		message: b.String(),
		tags:    []string{"transcriptsync", r.Pipeline, "completed"},
	}
	if r.Failed > 0 {
		data.tags[2] = "review"
		data.priority = "high"
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	return n.send(ctx, payload{
		title:    "transcriptsync - Test",
		message:  "Notification system test",
		tags:     []string{"transcriptsync", "test"},
		priority: "low",
	})
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

func (noopService) NotifyRun(context.Context, Report) error { return nil }
func (noopService) TestNotification(context.Context) error  { return nil }

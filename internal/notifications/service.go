package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"bobbin/internal/config"
)

const userAgent = "Bobbin-Go/0.1.0"

// Event names the notifications the orchestration core emits. The strings are
// the wire-level event identifiers delivered to external listeners.
type Event string

const (
	EventDownloadStarted Event = "download-started"
	EventDownloadPercent Event = "downloading-percent-update"
	EventDownloadDone    Event = "download-done"
	EventDownloadFailed  Event = "download-failed"
	EventListingDone     Event = "listing-done"
	EventListingFailed   Event = "listing-failed"
)

// Payload carries the event-specific fields.
type Payload map[string]string

// Service defines the notification surface exposed to orchestration components.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
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

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) Publish(ctx context.Context, event Event, payload Payload) error {
	message := formatMessage(event, payload)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	req.Header.Set("Title", "Bobbin - "+string(event))
	req.Header.Set("Tags", "bobbin,"+string(event))

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

func formatMessage(event Event, payload Payload) string {
	switch event {
	case EventDownloadStarted:
		return fmt.Sprintf("Download started: %s", payload["url"])
	case EventDownloadPercent:
		return fmt.Sprintf("Downloading %s: %s%%", payload["url"], payload["percentage"])
	case EventDownloadDone:
		return fmt.Sprintf("Download complete: %s", payload["title"])
	case EventDownloadFailed:
		return fmt.Sprintf("Download failed: %s", payload["title"])
	case EventListingDone:
		return fmt.Sprintf("Listing complete: %s", payload["url"])
	case EventListingFailed:
		return fmt.Sprintf("Listing failed: %s (%s)", payload["url"], payload["error"])
	default:
		return string(event)
	}
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }

// Recorded is one captured event for test assertions.
type Recorded struct {
	Event   Event
	Payload Payload
}

// Recorder captures published events in memory. It is safe for concurrent use
// and intended for tests.
type Recorder struct {
	mu     sync.Mutex
	events []Recorded
}

// NewRecorder constructs an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Publish(_ context.Context, event Event, payload Payload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cloned := make(Payload, len(payload))
	for key, value := range payload {
		cloned[key] = value
	}
	r.events = append(r.events, Recorded{Event: event, Payload: cloned})
	return nil
}

// Events returns a copy of everything published so far.
func (r *Recorder) Events() []Recorded {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Recorded, len(r.events))
	copy(out, r.events)
	return out
}

// ByEvent filters recorded entries by event name.
func (r *Recorder) ByEvent(event Event) []Recorded {
	var out []Recorded
	for _, entry := range r.Events() {
		if entry.Event == event {
			out = append(out, entry)
		}
	}
	return out
}

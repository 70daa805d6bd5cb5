package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Event is a fire-and-forget notification about a register transition. The
// ID doubles as an idempotency key so receivers can deduplicate redeliveries.
type Event struct {
	ID         uuid.UUID `json:"id"`
	Type       string    `json:"type"`
	RegisterID uuid.UUID `json:"register_id"`
	Operator   string    `json:"operator,omitempty"`
	Value      int64     `json:"value_cents"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Event types emitted by the register lifecycle.
const (
	EventRegisterOpened = "register.opened"
	EventRegisterClosed = "register.closed"
)

// Notifier delivers events to the notification collaborator. Callers treat
// delivery as best-effort: a returned error is logged, never propagated.
type Notifier interface {
	Send(ctx context.Context, event Event) error
}

// WebhookNotifier posts events as JSON to a configured endpoint.
type WebhookNotifier struct {
	url    string
	client *http.Client
}

// NewWebhookNotifier creates a webhook notifier
func NewWebhookNotifier(url string) *WebhookNotifier {
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

// Send posts the event to the webhook endpoint
func (n *WebhookNotifier) Send(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Idempotency-Key", event.ID.String())

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to deliver event: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("notification endpoint returned %d", resp.StatusCode)
	}
	return nil
}

// NoopNotifier discards events. Used when no webhook URL is configured.
type NoopNotifier struct{}

// Send implements Notifier
func (NoopNotifier) Send(_ context.Context, _ Event) error {
	return nil
}

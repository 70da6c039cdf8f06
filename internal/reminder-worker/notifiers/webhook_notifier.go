package notifiers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/mikermcconnell/HomeHealth/internal/home-manager/events"
)

const webhookURLEnvVar = "WEBHOOK_URL"

// WebhookNotifier POSTs each reminder as JSON to a configured endpoint,
// suitable for Slack-style incoming hooks or home automation bridges.
type WebhookNotifier struct {
	URL    string
	Client *http.Client
}

func NewWebhookNotifier() *WebhookNotifier {
	return &WebhookNotifier{
		URL:    os.Getenv(webhookURLEnvVar),
		Client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Notify implements the Notifier interface. Non-2xx responses are errors;
// the worker logs them and moves on to the next reminder.
func (n *WebhookNotifier) Notify(ctx context.Context, reminder events.ReminderPayload) error {
	if n.URL == "" {
		return fmt.Errorf("webhook notifier has no endpoint, set %s", webhookURLEnvVar)
	}

	body, err := json.Marshal(reminder)
	if err != nil {
		return fmt.Errorf("failed to marshal reminder %s: %w", reminder.TaskID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.Client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("webhook returned status %d: %s", resp.StatusCode, string(respBody))
	}
	log.Printf("WebhookNotifier: delivered reminder for task %s (%q)", reminder.TaskID, reminder.Title)
	return nil
}

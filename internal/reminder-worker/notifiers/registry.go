// Package notifiers delivers reminder digests to their destinations. The
// worker picks a notifier by type at dispatch time, so new channels only
// need a registration.
package notifiers

import (
	"context"
	"fmt"
	"log"

	"github.com/mikermcconnell/HomeHealth/internal/home-manager/events"
)

// Notifier type constants.
const (
	NotifierTypeLog     = "log-notifier"
	NotifierTypeWebhook = "webhook-notifier"
)

// Notifier delivers a single reminder.
type Notifier interface {
	Notify(ctx context.Context, reminder events.ReminderPayload) error
}

var Registry = make(map[string]Notifier)

func init() {
	RegisterNotifier(NotifierTypeLog, &LogNotifier{})
	RegisterNotifier(NotifierTypeWebhook, NewWebhookNotifier())
	log.Println("Notifier registry initialized with known notifiers.")
}

func RegisterNotifier(notifierType string, notifier Notifier) {
	log.Printf("Registering notifier for type: %s", notifierType)
	Registry[notifierType] = notifier
}

func GetNotifier(notifierType string) (Notifier, error) {
	notifier, exists := Registry[notifierType]
	if !exists {
		return nil, fmt.Errorf("no notifier registered for type: %s", notifierType)
	}
	return notifier, nil
}

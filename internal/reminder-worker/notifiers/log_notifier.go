package notifiers

import (
	"context"
	"log"

	"github.com/mikermcconnell/HomeHealth/internal/home-manager/events"
)

// LogNotifier writes reminders to the process log. It is the default
// channel and the fallback when nothing else is configured.
type LogNotifier struct{}

// Notify implements the Notifier interface.
func (n *LogNotifier) Notify(ctx context.Context, reminder events.ReminderPayload) error {
	log.Printf("LogNotifier: [%s] %q (%s priority) due %s", reminder.Status, reminder.Title, reminder.Priority, reminder.DueDate)
	return nil
}

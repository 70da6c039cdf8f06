package main

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/mikermcconnell/HomeHealth/internal/home-manager/events"
	"github.com/mikermcconnell/HomeHealth/internal/reminder-worker/notifiers"
)

const (
	DefaultKafkaBrokers  = "localhost:9092"
	DefaultReminderTopic = "home_task_reminders"
	DefaultGroupID       = "reminder-worker-group"
)

func main() {
	log.Println("Starting Reminder Worker Service...")

	kafkaBrokers := os.Getenv("KAFKA_BROKERS")
	if kafkaBrokers == "" {
		kafkaBrokers = DefaultKafkaBrokers
	}
	reminderTopic := os.Getenv("TASK_REMINDERS_TOPIC")
	if reminderTopic == "" {
		reminderTopic = DefaultReminderTopic
	}
	groupID := os.Getenv("GROUP_ID")
	if groupID == "" {
		groupID = DefaultGroupID
	}
	notifierType := os.Getenv("NOTIFIER_TYPE")
	if notifierType == "" {
		notifierType = notifiers.NotifierTypeLog
	}

	notifier, err := notifiers.GetNotifier(notifierType)
	if err != nil {
		log.Fatalf("Reminder Worker: %v", err)
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        strings.Split(kafkaBrokers, ","),
		GroupID:        groupID,
		Topic:          reminderTopic,
		MinBytes:       10e3,
		MaxBytes:       10e6,
		CommitInterval: time.Second,
		MaxWait:        3 * time.Second,
	})
	defer reader.Close()
	log.Printf("Reminder Worker Kafka consumer configured for brokers: %s, topic: %s, groupID: %s", kafkaBrokers, reminderTopic, groupID)

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sig := <-signals
		log.Printf("Reminder Worker: Shutdown signal received (%s). Cancelling context...", sig)
		cancel()
	}()

	log.Printf("Reminder Worker dispatching reminders through '%s'...", notifierType)
	for {
		select {
		case <-ctx.Done():
			log.Println("Reminder Worker: Context cancelled. Exiting message loop.")
			return
		default:
			readCtx, readLoopCancel := context.WithTimeout(ctx, 1*time.Second)
			m, err := reader.ReadMessage(readCtx)
			readLoopCancel()
			if err == context.DeadlineExceeded {
				continue
			}
			if err == context.Canceled {
				log.Println("Reminder Worker: Read context cancelled, likely due to shutdown.")
				continue
			}
			if err == io.EOF {
				log.Println("Reminder Worker: Kafka reader closed (EOF). Exiting.")
				return
			}
			if err != nil {
				log.Printf("Reminder Worker: Kafka read error: %v. Retrying...", err)
				time.Sleep(1 * time.Second)
				continue
			}

			var reminder events.ReminderPayload
			if err := json.Unmarshal(m.Value, &reminder); err != nil {
				log.Printf("Reminder Worker: Unmarshal error for reminder payload: %v. Value: %s", err, string(m.Value))
				continue
			}
			if reminder.TaskID == "" {
				log.Printf("Reminder Worker: Skipping reminder with no task id. Value: %s", string(m.Value))
				continue
			}

			go func(r events.ReminderPayload) {
				notifyCtx, notifyCancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer notifyCancel()
				if err := notifier.Notify(notifyCtx, r); err != nil {
					log.Printf("Reminder Worker: Failed to deliver reminder for task %s (%q): %v", r.TaskID, r.Title, err)
				}
			}(reminder)
		}
	}
}

package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/mikermcconnell/HomeHealth/internal/home-manager/events"
	"github.com/mikermcconnell/HomeHealth/internal/models"
)

const kafkaWriteTimeout = 10 * time.Second

// publishTaskEvents sends task lifecycle events to Kafka. Publishing is
// advisory: failures are logged, never returned, so a broker outage cannot
// fail a user operation. A nil producer publishes nothing.
func publishTaskEvents(ctx context.Context, producer events.Producer, payloads ...events.TaskEventPayload) {
	if producer == nil || len(payloads) == 0 {
		return
	}
	msgs := make([]kafka.Message, 0, len(payloads))
	for _, payload := range payloads {
		value, err := json.Marshal(payload)
		if err != nil {
			log.Printf("Events: failed to marshal %s payload for task %s: %v", payload.Event, payload.TaskID, err)
			continue
		}
		msgs = append(msgs, kafka.Message{Key: []byte(payload.TaskID), Value: value})
	}
	if len(msgs) == 0 {
		return
	}
	writeCtx, cancel := context.WithTimeout(ctx, kafkaWriteTimeout)
	defer cancel()
	if err := producer.WriteMessages(writeCtx, msgs...); err != nil {
		log.Printf("Events: failed to publish %d task event(s): %v", len(msgs), err)
	}
}

// taskEvent builds the standard payload for a task lifecycle event.
func taskEvent(event string, task models.Task) events.TaskEventPayload {
	return events.TaskEventPayload{
		Event:   event,
		TaskID:  task.ID,
		Title:   task.Title,
		DueDate: models.FormatDate(task.DueDate),
		Status:  string(task.Status),
		AssetID: task.AssetID,
	}
}

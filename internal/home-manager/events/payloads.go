package events

import (
	"context"

	"github.com/segmentio/kafka-go"
)

// Event names carried in TaskEventPayload.Event.
const (
	EventTaskCreated   = "task.created"
	EventTaskCompleted = "task.completed"
	EventTaskSpawned   = "task.spawned"
	EventTaskDeleted   = "task.deleted"
)

// Producer is the slice of *kafka.Writer the services depend on. Tests
// substitute a fake.
type Producer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
	Stats() kafka.WriterStats
}

// TaskEventPayload is published by the home manager whenever a task is
// created, completed, spawned, or deleted.
type TaskEventPayload struct {
	Event         string `json:"event"`
	TaskID        string `json:"task_id"`
	Title         string `json:"title"`
	DueDate       string `json:"due_date,omitempty"`
	Status        string `json:"status,omitempty"`
	AssetID       string `json:"asset_id,omitempty"`
	SpawnedTaskID string `json:"spawned_task_id,omitempty"`
}

// ReminderPayload is one entry of the daily digest, published by the home
// manager and consumed by the reminder worker. Status reflects the derived
// state at digest time, so overdue tasks arrive marked OVERDUE.
type ReminderPayload struct {
	TaskID   string `json:"task_id"`
	Title    string `json:"title"`
	DueDate  string `json:"due_date"`
	Status   string `json:"status"`
	Priority string `json:"priority"`
	Category string `json:"category,omitempty"`
}

// CompletionPayload is received by the home manager from integrations that
// mark tasks done out of band. An unknown task id is ignored.
type CompletionPayload struct {
	TaskID     string   `json:"task_id"`
	ActualCost *float64 `json:"actual_cost,omitempty"`
	Source     string   `json:"source,omitempty"`
}

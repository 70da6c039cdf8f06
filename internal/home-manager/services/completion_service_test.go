package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	homedb "github.com/mikermcconnell/HomeHealth/internal/home-manager/db"
	"github.com/mikermcconnell/HomeHealth/internal/home-manager/events"
	"github.com/mikermcconnell/HomeHealth/internal/models"
)

func completionMessage(t *testing.T, payload events.CompletionPayload) kafka.Message {
	t.Helper()
	value, err := json.Marshal(payload)
	require.NoError(t, err)
	return kafka.Message{Key: []byte(payload.TaskID), Value: value}
}

func TestCompletionService_HandleMessageCompletesTask(t *testing.T) {
	db, mockProducer := setupServiceTest(t)
	defer teardownServiceTest(t, db)
	mockProducer.On("WriteMessages", mock.Anything, mock.AnythingOfType("[]kafka.Message")).Return(nil).Maybe()

	lifecycle := NewLifecycleService(db, mockProducer)
	seeded := seedTask(t, db, models.Task{Title: "Flush Water Heater", DueDate: date(2025, time.June, 1), Recurring: true, Category: "Plumbing"})
	svc := &CompletionService{Lifecycle: lifecycle}

	cost := 80.0
	svc.handleMessage(context.Background(), completionMessage(t, events.CompletionPayload{
		TaskID:     seeded.ID,
		ActualCost: &cost,
		Source:     "smart-home-hub",
	}))

	var record homedb.Task
	require.NoError(t, db.First(&record, "id = ?", seeded.ID).Error)
	assert.Equal(t, string(models.StatusCompleted), record.Status)
	require.NotNil(t, record.ActualCost)
	assert.Equal(t, cost, *record.ActualCost)

	var count int64
	require.NoError(t, db.Model(&homedb.Task{}).Count(&count).Error)
	assert.EqualValues(t, 2, count, "the recurring task spawns through the normal lifecycle")
}

func TestCompletionService_HandleMessageUnknownTaskIgnored(t *testing.T) {
	db, mockProducer := setupServiceTest(t)
	defer teardownServiceTest(t, db)

	lifecycle := NewLifecycleService(db, mockProducer)
	seeded := seedTask(t, db, models.Task{Title: "Flush Water Heater", DueDate: date(2025, time.June, 1)})
	svc := &CompletionService{Lifecycle: lifecycle}

	svc.handleMessage(context.Background(), completionMessage(t, events.CompletionPayload{
		TaskID: "no-such-task",
		Source: "smart-home-hub",
	}))

	var record homedb.Task
	require.NoError(t, db.First(&record, "id = ?", seeded.ID).Error)
	assert.Equal(t, string(models.StatusPending), record.Status)
}

func TestCompletionService_HandleMessageRejectsBadPayloads(t *testing.T) {
	db, mockProducer := setupServiceTest(t)
	defer teardownServiceTest(t, db)

	lifecycle := NewLifecycleService(db, mockProducer)
	seeded := seedTask(t, db, models.Task{Title: "Flush Water Heater", DueDate: date(2025, time.June, 1)})
	svc := &CompletionService{Lifecycle: lifecycle}

	svc.handleMessage(context.Background(), kafka.Message{Value: []byte("not json")})
	svc.handleMessage(context.Background(), kafka.Message{Value: []byte(`{"source":"hub"}`)})

	var record homedb.Task
	require.NoError(t, db.First(&record, "id = ?", seeded.ID).Error)
	assert.Equal(t, string(models.StatusPending), record.Status, "malformed or id-less payloads change nothing")
}

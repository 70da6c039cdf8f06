package services

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	homedb "github.com/mikermcconnell/HomeHealth/internal/home-manager/db"
	"github.com/mikermcconnell/HomeHealth/internal/home-manager/events"
	"github.com/mikermcconnell/HomeHealth/internal/models"
)

const servicesTestDBFile = "test_home_services.db"

// MockKafkaProducer satisfies events.Producer for service tests.
type MockKafkaProducer struct {
	mock.Mock
}

var _ events.Producer = (*MockKafkaProducer)(nil)

func (m *MockKafkaProducer) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *MockKafkaProducer) Close() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockKafkaProducer) Stats() kafka.WriterStats {
	args := m.Called()
	return args.Get(0).(kafka.WriterStats)
}

func setupServiceTest(t *testing.T) (*gorm.DB, *MockKafkaProducer) {
	t.Helper()
	os.Remove(servicesTestDBFile)

	gormDB, err := gorm.Open(sqlite.Open(servicesTestDBFile), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "Failed to open test database")

	err = gormDB.AutoMigrate(homedb.AllModels()...)
	require.NoError(t, err, "Failed to migrate test database")

	mockProducer := new(MockKafkaProducer)
	mockProducer.On("Close").Return(nil).Maybe()
	return gormDB, mockProducer
}

func teardownServiceTest(t *testing.T, db *gorm.DB) {
	t.Helper()
	sqlDB, err := db.DB()
	if err == nil {
		sqlDB.Close()
	}
	os.Remove(servicesTestDBFile)
}

// date builds a UTC midnight timestamp, the shape every scheduler rule
// emits.
func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func seedTask(t *testing.T, db *gorm.DB, task models.Task) models.Task {
	t.Helper()
	if task.ID == "" {
		task.ID = models.NewID()
	}
	if task.Status == "" {
		task.Status = models.StatusPending
	}
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}
	if task.Category == "" {
		task.Category = models.CategoryGeneral
	}
	record := homedb.NewTaskRecord(task)
	require.NoError(t, db.Create(&record).Error, "Failed to seed task %q", task.Title)
	return task
}

func seedHousehold(t *testing.T, db *gorm.DB, household models.Household) models.Household {
	t.Helper()
	if household.ID == "" {
		household.ID = models.NewID()
	}
	record := homedb.NewHouseholdRecord(household)
	require.NoError(t, db.Create(&record).Error, "Failed to seed household")
	return household
}

func taskByTitle(t *testing.T, tasks []models.Task, title string) models.Task {
	t.Helper()
	for _, task := range tasks {
		if task.Title == title {
			return task
		}
	}
	t.Fatalf("no task titled %q in batch of %d", title, len(tasks))
	return models.Task{}
}

// recordedMessages flattens every WriteMessages call the mock saw, in
// call order.
func recordedMessages(m *MockKafkaProducer) []kafka.Message {
	var msgs []kafka.Message
	for _, call := range m.Calls {
		if call.Method != "WriteMessages" {
			continue
		}
		batch, ok := call.Arguments.Get(1).([]kafka.Message)
		if !ok {
			continue
		}
		msgs = append(msgs, batch...)
	}
	return msgs
}

func decodeTaskEvents(t *testing.T, m *MockKafkaProducer) []events.TaskEventPayload {
	t.Helper()
	var payloads []events.TaskEventPayload
	for _, msg := range recordedMessages(m) {
		var payload events.TaskEventPayload
		require.NoError(t, json.Unmarshal(msg.Value, &payload), "task event payload should be valid JSON")
		payloads = append(payloads, payload)
	}
	return payloads
}

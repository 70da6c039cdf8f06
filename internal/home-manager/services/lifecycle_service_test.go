package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	homedb "github.com/mikermcconnell/HomeHealth/internal/home-manager/db"
	"github.com/mikermcconnell/HomeHealth/internal/home-manager/events"
	"github.com/mikermcconnell/HomeHealth/internal/models"
)

func TestListTasks_DerivesOverdueWithoutPersisting(t *testing.T) {
	db, mockProducer := setupServiceTest(t)
	defer teardownServiceTest(t, db)

	svc := NewLifecycleService(db, mockProducer)
	now := date(2025, time.June, 10)
	overdue := seedTask(t, db, models.Task{Title: "Clean Gutters", DueDate: date(2025, time.June, 1), Recurring: true})
	upcoming := seedTask(t, db, models.Task{Title: "Flush Water Heater", DueDate: date(2025, time.June, 20), Recurring: true})

	tasks, err := svc.ListTasks(now, "", "")
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, overdue.ID, tasks[0].ID, "results are ordered by due date")
	assert.Equal(t, models.StatusOverdue, tasks[0].Status)
	assert.Equal(t, upcoming.ID, tasks[1].ID)
	assert.Equal(t, models.StatusPending, tasks[1].Status)

	var record homedb.Task
	require.NoError(t, db.First(&record, "id = ?", overdue.ID).Error)
	assert.Equal(t, string(models.StatusPending), record.Status, "derivation must never write OVERDUE back")
}

func TestListTasks_DueTodayIsStillPending(t *testing.T) {
	db, mockProducer := setupServiceTest(t)
	defer teardownServiceTest(t, db)

	svc := NewLifecycleService(db, mockProducer)
	now := time.Date(2025, time.June, 10, 23, 30, 0, 0, time.UTC)
	seedTask(t, db, models.Task{Title: "Test Smoke Alarms", DueDate: date(2025, time.June, 10)})

	tasks, err := svc.ListTasks(now, "", "")
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, models.StatusPending, tasks[0].Status, "a task is overdue only after its due day has fully passed")
}

func TestListTasks_FiltersByDerivedStatus(t *testing.T) {
	db, mockProducer := setupServiceTest(t)
	defer teardownServiceTest(t, db)

	svc := NewLifecycleService(db, mockProducer)
	now := date(2025, time.June, 10)
	overdue := seedTask(t, db, models.Task{Title: "Clean Gutters", DueDate: date(2025, time.June, 1)})
	seedTask(t, db, models.Task{Title: "Flush Water Heater", DueDate: date(2025, time.June, 20)})
	seedTask(t, db, models.Task{Title: "Test Smoke Alarms", DueDate: date(2025, time.May, 1), Status: models.StatusCompleted})

	overdueTasks, err := svc.ListTasks(now, models.StatusOverdue, "")
	require.NoError(t, err)
	require.Len(t, overdueTasks, 1, "OVERDUE filters on the derived status even though it is never stored")
	assert.Equal(t, overdue.ID, overdueTasks[0].ID)

	pendingTasks, err := svc.ListTasks(now, models.StatusPending, "")
	require.NoError(t, err)
	require.Len(t, pendingTasks, 1)
	assert.Equal(t, "Flush Water Heater", pendingTasks[0].Title)

	completedTasks, err := svc.ListTasks(now, models.StatusCompleted, "")
	require.NoError(t, err)
	require.Len(t, completedTasks, 1)
}

func TestListTasks_FiltersByAsset(t *testing.T) {
	db, mockProducer := setupServiceTest(t)
	defer teardownServiceTest(t, db)

	svc := NewLifecycleService(db, mockProducer)
	now := date(2025, time.June, 10)
	fridge := seedTask(t, db, models.Task{Title: "Clean Coils", DueDate: date(2025, time.July, 5), AssetID: "asset-fridge"})
	seedTask(t, db, models.Task{Title: "Clean Gutters", DueDate: date(2025, time.July, 12)})

	tasks, err := svc.ListTasks(now, "", "asset-fridge")
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, fridge.ID, tasks[0].ID)
}

func TestGetTask_DerivesStatus(t *testing.T) {
	db, mockProducer := setupServiceTest(t)
	defer teardownServiceTest(t, db)

	svc := NewLifecycleService(db, mockProducer)
	now := date(2025, time.June, 10)
	seeded := seedTask(t, db, models.Task{Title: "Clean Gutters", DueDate: date(2025, time.June, 1)})

	task, found, err := svc.GetTask(seeded.ID, now)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, models.StatusOverdue, task.Status)

	_, found, err = svc.GetTask("no-such-task", now)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCreateTask_FillsDefaultsAndPublishes(t *testing.T) {
	db, mockProducer := setupServiceTest(t)
	defer teardownServiceTest(t, db)
	mockProducer.On("WriteMessages", mock.Anything, mock.AnythingOfType("[]kafka.Message")).Return(nil)

	svc := NewLifecycleService(db, mockProducer)
	now := date(2025, time.June, 10)

	task, err := svc.CreateTask(context.Background(), models.Task{
		Title:   "Touch Up Deck Stain",
		DueDate: time.Date(2025, time.July, 5, 14, 30, 0, 0, time.UTC),
	}, now)
	require.NoError(t, err)
	assert.NotEmpty(t, task.ID)
	assert.Equal(t, models.StatusPending, task.Status)
	assert.Equal(t, models.PriorityMedium, task.Priority)
	assert.Equal(t, models.CategoryGeneral, task.Category)
	assert.Equal(t, date(2025, time.July, 5), task.DueDate, "due dates are stored as calendar days")

	payloads := decodeTaskEvents(t, mockProducer)
	require.Len(t, payloads, 1)
	assert.Equal(t, events.EventTaskCreated, payloads[0].Event)
	assert.Equal(t, task.ID, payloads[0].TaskID)
}

func TestCreateTask_BackdatedTaskReportsOverdue(t *testing.T) {
	db, mockProducer := setupServiceTest(t)
	defer teardownServiceTest(t, db)
	mockProducer.On("WriteMessages", mock.Anything, mock.AnythingOfType("[]kafka.Message")).Return(nil).Maybe()

	svc := NewLifecycleService(db, mockProducer)
	now := date(2025, time.June, 10)

	task, err := svc.CreateTask(context.Background(), models.Task{
		Title:   "Caulk Bathtub",
		DueDate: date(2025, time.June, 1),
	}, now)
	require.NoError(t, err)
	assert.Equal(t, models.StatusOverdue, task.Status)

	var record homedb.Task
	require.NoError(t, db.First(&record, "id = ?", task.ID).Error)
	assert.Equal(t, string(models.StatusPending), record.Status, "the stored status stays PENDING")
}

func TestUpdateTask_AppliesOnlyProvidedFields(t *testing.T) {
	db, mockProducer := setupServiceTest(t)
	defer teardownServiceTest(t, db)

	svc := NewLifecycleService(db, mockProducer)
	seeded := seedTask(t, db, models.Task{
		Title:       "Clean Gutters",
		Description: "Front and back runs.",
		DueDate:     date(2025, time.October, 15),
		Recurring:   true,
		Category:    "Exterior",
	})

	newTitle := "Clean Gutters and Downspouts"
	newDue := date(2025, time.November, 1)
	task, found, err := svc.UpdateTask(context.Background(), seeded.ID, TaskUpdate{
		Title:   &newTitle,
		DueDate: &newDue,
	}, date(2025, time.June, 10))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, newTitle, task.Title)
	assert.Equal(t, newDue, task.DueDate)
	assert.Equal(t, "Front and back runs.", task.Description, "untouched fields survive")
	assert.True(t, task.Recurring)
	assert.Equal(t, models.StatusPending, task.Status)
}

func TestUpdateTask_UnknownTask(t *testing.T) {
	db, mockProducer := setupServiceTest(t)
	defer teardownServiceTest(t, db)

	svc := NewLifecycleService(db, mockProducer)
	newTitle := "Anything"
	_, found, err := svc.UpdateTask(context.Background(), "no-such-task", TaskUpdate{Title: &newTitle}, date(2025, time.June, 10))
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCompleteTask_MarksAndSpawnsNextOccurrence(t *testing.T) {
	db, mockProducer := setupServiceTest(t)
	defer teardownServiceTest(t, db)
	mockProducer.On("WriteMessages", mock.Anything, mock.AnythingOfType("[]kafka.Message")).Return(nil)

	svc := NewLifecycleService(db, mockProducer)
	seeded := seedTask(t, db, models.Task{Title: "Clean Gutters", DueDate: date(2025, time.April, 1), Recurring: true, Category: "Exterior"})
	cost := 120.0
	now := date(2025, time.April, 20)

	done, spawned, found, err := svc.CompleteTask(context.Background(), seeded.ID, &cost, now)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, models.StatusCompleted, done.Status)
	require.NotNil(t, done.CompletedDate)
	assert.Equal(t, now, *done.CompletedDate)
	require.NotNil(t, done.ActualCost)
	assert.Equal(t, cost, *done.ActualCost)

	require.NotNil(t, spawned, "recurring tasks spawn a successor")
	assert.NotEqual(t, seeded.ID, spawned.ID)
	assert.Equal(t, date(2025, time.October, 1), spawned.DueDate, "gutters recur six months out")
	assert.Equal(t, models.StatusPending, spawned.Status)
	assert.Nil(t, spawned.ActualCost)
	assert.Nil(t, spawned.CompletedDate)

	var records []homedb.Task
	require.NoError(t, db.Order("due_date asc").Find(&records).Error)
	require.Len(t, records, 2)
	assert.Equal(t, string(models.StatusCompleted), records[0].Status)
	assert.Equal(t, string(models.StatusPending), records[1].Status)

	payloads := decodeTaskEvents(t, mockProducer)
	require.Len(t, payloads, 2)
	assert.Equal(t, events.EventTaskCompleted, payloads[0].Event)
	assert.Equal(t, spawned.ID, payloads[0].SpawnedTaskID)
	assert.Equal(t, events.EventTaskSpawned, payloads[1].Event)
	assert.Equal(t, spawned.ID, payloads[1].TaskID)
}

func TestCompleteTask_NonRecurringSpawnsNothing(t *testing.T) {
	db, mockProducer := setupServiceTest(t)
	defer teardownServiceTest(t, db)
	mockProducer.On("WriteMessages", mock.Anything, mock.AnythingOfType("[]kafka.Message")).Return(nil)

	svc := NewLifecycleService(db, mockProducer)
	seeded := seedTask(t, db, models.Task{Title: "Inspect Foundation for Cracks", DueDate: date(2025, time.April, 26), Recurring: false})

	_, spawned, found, err := svc.CompleteTask(context.Background(), seeded.ID, nil, date(2025, time.May, 2))
	require.NoError(t, err)
	require.True(t, found)
	assert.Nil(t, spawned)

	var count int64
	require.NoError(t, db.Model(&homedb.Task{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	payloads := decodeTaskEvents(t, mockProducer)
	require.Len(t, payloads, 1)
	assert.Equal(t, events.EventTaskCompleted, payloads[0].Event)
	assert.Empty(t, payloads[0].SpawnedTaskID)
}

func TestCompleteTask_RedeliveryIsNoOp(t *testing.T) {
	db, mockProducer := setupServiceTest(t)
	defer teardownServiceTest(t, db)
	mockProducer.On("WriteMessages", mock.Anything, mock.AnythingOfType("[]kafka.Message")).Return(nil)

	svc := NewLifecycleService(db, mockProducer)
	seeded := seedTask(t, db, models.Task{Title: "Clean Gutters", DueDate: date(2025, time.April, 1), Recurring: true})
	now := date(2025, time.April, 20)

	first, _, _, err := svc.CompleteTask(context.Background(), seeded.ID, nil, now)
	require.NoError(t, err)

	again, spawned, found, err := svc.CompleteTask(context.Background(), seeded.ID, nil, now.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.True(t, found)
	assert.Nil(t, spawned, "a second completion must not spawn another occurrence")
	require.NotNil(t, again.CompletedDate)
	assert.True(t, again.CompletedDate.Equal(*first.CompletedDate), "the original completion date survives")

	var count int64
	require.NoError(t, db.Model(&homedb.Task{}).Count(&count).Error)
	assert.EqualValues(t, 2, count, "only the first completion spawned")
	assert.Len(t, decodeTaskEvents(t, mockProducer), 2, "the redelivery publishes nothing")
}

func TestCompleteTask_UnknownTask(t *testing.T) {
	db, mockProducer := setupServiceTest(t)
	defer teardownServiceTest(t, db)

	svc := NewLifecycleService(db, mockProducer)
	_, spawned, found, err := svc.CompleteTask(context.Background(), "no-such-task", nil, date(2025, time.April, 20))
	require.NoError(t, err, "unknown ids are reported, not errors")
	assert.False(t, found)
	assert.Nil(t, spawned)
}

func TestCompleteTask_ReAnchorsStaleRecurrence(t *testing.T) {
	db, mockProducer := setupServiceTest(t)
	defer teardownServiceTest(t, db)
	mockProducer.On("WriteMessages", mock.Anything, mock.AnythingOfType("[]kafka.Message")).Return(nil)

	svc := NewLifecycleService(db, mockProducer)
	// A three-month filter swap ignored for over a year.
	seeded := seedTask(t, db, models.Task{Title: "Replace HVAC Filter", DueDate: date(2024, time.January, 1), Recurring: true, Category: "HVAC"})

	_, spawned, _, err := svc.CompleteTask(context.Background(), seeded.ID, nil, date(2025, time.June, 10))
	require.NoError(t, err)
	require.NotNil(t, spawned)
	assert.Equal(t, date(2026, time.April, 1), spawned.DueDate, "the next occurrence re-anchors into the future")
}

func TestDeleteTask(t *testing.T) {
	db, mockProducer := setupServiceTest(t)
	defer teardownServiceTest(t, db)
	mockProducer.On("WriteMessages", mock.Anything, mock.AnythingOfType("[]kafka.Message")).Return(nil)

	svc := NewLifecycleService(db, mockProducer)
	seeded := seedTask(t, db, models.Task{Title: "Clean Gutters", DueDate: date(2025, time.April, 1)})

	found, err := svc.DeleteTask(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.True(t, found)

	var count int64
	require.NoError(t, db.Model(&homedb.Task{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)

	payloads := decodeTaskEvents(t, mockProducer)
	require.Len(t, payloads, 1)
	assert.Equal(t, events.EventTaskDeleted, payloads[0].Event)
	assert.Equal(t, seeded.ID, payloads[0].TaskID)

	found, err = svc.DeleteTask(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestDeleteAllTasks_ClearsEverything(t *testing.T) {
	db, mockProducer := setupServiceTest(t)
	defer teardownServiceTest(t, db)

	svc := NewLifecycleService(db, mockProducer)
	seedTask(t, db, models.Task{Title: "Clean Gutters", DueDate: date(2025, time.April, 1)})
	seedTask(t, db, models.Task{Title: "Flush Water Heater", DueDate: date(2025, time.May, 1)})
	seedTask(t, db, models.Task{Title: "Test Smoke Alarms", DueDate: date(2025, time.March, 1), Status: models.StatusCompleted})

	deleted, err := svc.DeleteAllTasks(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 3, deleted, "completed history goes too")

	var count int64
	require.NoError(t, db.Model(&homedb.Task{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestDeleteTasksForAsset(t *testing.T) {
	db, mockProducer := setupServiceTest(t)
	defer teardownServiceTest(t, db)

	svc := NewLifecycleService(db, mockProducer)
	seedTask(t, db, models.Task{Title: "Clean Coils", DueDate: date(2025, time.April, 12), AssetID: "asset-fridge"})
	seedTask(t, db, models.Task{Title: "Replace Water Filter", DueDate: date(2025, time.January, 12), AssetID: "asset-fridge", Status: models.StatusCompleted})
	keeper := seedTask(t, db, models.Task{Title: "Clean Gutters", DueDate: date(2025, time.October, 15)})

	deleted, err := svc.DeleteTasksForAsset(context.Background(), "asset-fridge")
	require.NoError(t, err)
	assert.EqualValues(t, 2, deleted)

	var records []homedb.Task
	require.NoError(t, db.Find(&records).Error)
	require.Len(t, records, 1)
	assert.Equal(t, keeper.ID, records[0].ID)
}

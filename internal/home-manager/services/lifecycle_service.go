package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	homedb "github.com/mikermcconnell/HomeHealth/internal/home-manager/db"
	"github.com/mikermcconnell/HomeHealth/internal/home-manager/events"
	"github.com/mikermcconnell/HomeHealth/internal/home-manager/scheduling"
	"github.com/mikermcconnell/HomeHealth/internal/models"
)

// LifecycleService owns stored task state: listing with derived statuses,
// completion with recurrence spawning, and the deletion paths.
type LifecycleService struct {
	DB       *gorm.DB
	Producer events.Producer
}

func NewLifecycleService(db *gorm.DB, producer events.Producer) *LifecycleService {
	return &LifecycleService{DB: db, Producer: producer}
}

// TaskUpdate carries the editable task fields. Nil fields are left alone.
type TaskUpdate struct {
	Title       *string
	Description *string
	DueDate     *time.Time
	Priority    *models.TaskPriority
	Category    *string
	Recurring   *bool
}

// CreateTask stores a user-authored task. The id, PENDING status, and
// field defaults are filled in here; the due date is truncated to its
// calendar day.
func (l *LifecycleService) CreateTask(ctx context.Context, task models.Task, now time.Time) (models.Task, error) {
	if task.ID == "" {
		task.ID = models.NewID()
	}
	task.Status = models.StatusPending
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}
	if task.Category == "" {
		task.Category = models.CategoryGeneral
	}
	task.DueDate = models.DateOnly(task.DueDate)
	task.ActualCost = nil
	task.CompletedDate = nil

	record := homedb.NewTaskRecord(task)
	if err := l.DB.Create(&record).Error; err != nil {
		return models.Task{}, fmt.Errorf("failed to save task: %w", err)
	}
	publishTaskEvents(ctx, l.Producer, taskEvent(events.EventTaskCreated, task))

	task.Status = models.EffectiveStatus(task, now)
	return task, nil
}

// UpdateTask applies the non-nil fields of update to a stored task and
// returns it with its derived status. Unknown ids report found=false.
func (l *LifecycleService) UpdateTask(ctx context.Context, taskID string, update TaskUpdate, now time.Time) (models.Task, bool, error) {
	var record homedb.Task
	if err := l.DB.First(&record, "id = ?", taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Task{}, false, nil
		}
		return models.Task{}, false, fmt.Errorf("failed to load task %s: %w", taskID, err)
	}

	fields := make(map[string]interface{})
	if update.Title != nil {
		fields["title"] = *update.Title
	}
	if update.Description != nil {
		fields["description"] = *update.Description
	}
	if update.DueDate != nil {
		fields["due_date"] = models.DateOnly(*update.DueDate)
	}
	if update.Priority != nil {
		fields["priority"] = string(*update.Priority)
	}
	if update.Category != nil {
		fields["category"] = *update.Category
	}
	if update.Recurring != nil {
		fields["recurring"] = *update.Recurring
	}
	if len(fields) > 0 {
		if err := l.DB.Model(&record).Updates(fields).Error; err != nil {
			return models.Task{}, false, fmt.Errorf("failed to update task %s: %w", taskID, err)
		}
	}

	task := record.ToModel()
	task.Status = models.EffectiveStatus(task, now)
	return task, true, nil
}

// ListTasks returns tasks ordered by due date with statuses derived as of
// now. The optional status filter applies after derivation, so OVERDUE is
// a valid filter even though it is never stored; the optional assetID
// filter restricts to one asset's tasks.
func (l *LifecycleService) ListTasks(now time.Time, status models.TaskStatus, assetID string) ([]models.Task, error) {
	query := l.DB.Order("due_date asc")
	if assetID != "" {
		query = query.Where("asset_id = ?", assetID)
	}
	var records []homedb.Task
	if err := query.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	tasks := homedb.TaskModels(records)
	for i := range tasks {
		tasks[i].Status = models.EffectiveStatus(tasks[i], now)
	}
	if status == "" {
		return tasks, nil
	}
	filtered := make([]models.Task, 0, len(tasks))
	for _, task := range tasks {
		if task.Status == status {
			filtered = append(filtered, task)
		}
	}
	return filtered, nil
}

// GetTask returns one task with its derived status.
func (l *LifecycleService) GetTask(taskID string, now time.Time) (models.Task, bool, error) {
	var record homedb.Task
	if err := l.DB.First(&record, "id = ?", taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Task{}, false, nil
		}
		return models.Task{}, false, fmt.Errorf("failed to load task %s: %w", taskID, err)
	}
	task := record.ToModel()
	task.Status = models.EffectiveStatus(task, now)
	return task, true, nil
}

// CompleteTask marks a task COMPLETED and spawns its next occurrence when
// it recurs. An unknown id reports found=false without error, so callers
// racing a concurrent deletion can treat it as a no-op; completing a task
// that is already COMPLETED returns it unchanged and spawns nothing.
func (l *LifecycleService) CompleteTask(ctx context.Context, taskID string, actualCost *float64, now time.Time) (models.Task, *models.Task, bool, error) {
	var record homedb.Task
	if err := l.DB.First(&record, "id = ?", taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Task{}, nil, false, nil
		}
		return models.Task{}, nil, false, fmt.Errorf("failed to load task %s: %w", taskID, err)
	}

	task := record.ToModel()
	if task.Status == models.StatusCompleted {
		return task, nil, true, nil
	}

	done, spawned := scheduling.Complete(task, actualCost, now)
	err := l.DB.Transaction(func(tx *gorm.DB) error {
		update := map[string]interface{}{
			"status":         string(done.Status),
			"completed_date": done.CompletedDate,
			"actual_cost":    done.ActualCost,
		}
		if err := tx.Model(&homedb.Task{}).Where("id = ?", done.ID).Updates(update).Error; err != nil {
			return err
		}
		if spawned != nil {
			next := homedb.NewTaskRecord(*spawned)
			if err := tx.Create(&next).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.Task{}, nil, false, fmt.Errorf("failed to record completion of task %s: %w", taskID, err)
	}

	completedEvent := taskEvent(events.EventTaskCompleted, done)
	payloads := []events.TaskEventPayload{completedEvent}
	if spawned != nil {
		payloads[0].SpawnedTaskID = spawned.ID
		payloads = append(payloads, taskEvent(events.EventTaskSpawned, *spawned))
		log.Printf("LifecycleService: completed task %s (%q), spawned %s due %s",
			done.ID, done.Title, spawned.ID, models.FormatDate(spawned.DueDate))
	} else {
		log.Printf("LifecycleService: completed task %s (%q)", done.ID, done.Title)
	}
	publishTaskEvents(ctx, l.Producer, payloads...)

	return done, spawned, true, nil
}

// DeleteTask removes one task. Unknown ids report found=false.
func (l *LifecycleService) DeleteTask(ctx context.Context, taskID string) (bool, error) {
	var record homedb.Task
	if err := l.DB.First(&record, "id = ?", taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to load task %s: %w", taskID, err)
	}
	if err := l.DB.Delete(&homedb.Task{}, "id = ?", taskID).Error; err != nil {
		return false, fmt.Errorf("failed to delete task %s: %w", taskID, err)
	}
	publishTaskEvents(ctx, l.Producer, taskEvent(events.EventTaskDeleted, record.ToModel()))
	return true, nil
}

// DeleteAllTasks clears the entire task collection and reports how many
// rows went away.
func (l *LifecycleService) DeleteAllTasks(ctx context.Context) (int64, error) {
	res := l.DB.Where("1 = 1").Delete(&homedb.Task{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete tasks: %w", res.Error)
	}
	log.Printf("LifecycleService: deleted all %d tasks", res.RowsAffected)
	return res.RowsAffected, nil
}

// DeleteTasksForAsset removes every task referencing the asset, completed
// ones included. Used by the asset deletion cascade.
func (l *LifecycleService) DeleteTasksForAsset(ctx context.Context, assetID string) (int64, error) {
	res := l.DB.Where("asset_id = ?", assetID).Delete(&homedb.Task{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete tasks for asset %s: %w", assetID, res.Error)
	}
	return res.RowsAffected, nil
}

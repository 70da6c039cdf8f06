package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"

	"github.com/mikermcconnell/HomeHealth/internal/home-manager/calendar"
	"github.com/mikermcconnell/HomeHealth/internal/home-manager/services"
	"github.com/mikermcconnell/HomeHealth/internal/models"
)

const icsContentType = "text/calendar; charset=utf-8"

type TaskHandler struct {
	Lifecycle *services.LifecycleService
}

func NewTaskHandler(lifecycle *services.LifecycleService) *TaskHandler {
	return &TaskHandler{Lifecycle: lifecycle}
}

type CreateTaskRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	DueDate     string `json:"due_date" validate:"required"`
	Priority    string `json:"priority"`
	Category    string `json:"category"`
	Recurring   bool   `json:"recurring"`
}

type UpdateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	DueDate     *string `json:"due_date"`
	Priority    *string `json:"priority"`
	Category    *string `json:"category"`
	Recurring   *bool   `json:"recurring"`
}

type CompleteTaskRequest struct {
	ActualCost *float64 `json:"actual_cost"`
}

// CreateTask stores a user-authored task. Date and priority problems are
// rejected here; the core never sees an unparsed date.
func (h *TaskHandler) CreateTask(ctx context.Context, c *app.RequestContext) {
	var req CreateTaskRequest
	if err := c.BindAndValidate(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.H{"error": "Invalid request payload: " + err.Error()})
		return
	}
	dueDate, err := models.ParseDate(req.DueDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.H{"error": "due_date must be a calendar date (YYYY-MM-DD)"})
		return
	}
	priority := models.PriorityMedium
	if req.Priority != "" {
		priority = models.TaskPriority(strings.ToUpper(req.Priority))
		if !priority.Valid() {
			c.JSON(http.StatusBadRequest, utils.H{"error": "priority must be LOW, MEDIUM, or HIGH"})
			return
		}
	}

	task, err := h.Lifecycle.CreateTask(ctx, models.Task{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     dueDate,
		Priority:    priority,
		Category:    req.Category,
		Recurring:   req.Recurring,
	}, time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.H{"error": "Failed to create task: " + err.Error()})
		return
	}
	c.JSON(http.StatusCreated, task)
}

// GetTasks lists tasks with derived statuses. The status filter accepts
// OVERDUE even though storage never holds it.
func (h *TaskHandler) GetTasks(ctx context.Context, c *app.RequestContext) {
	var status models.TaskStatus
	if raw := c.Query("status"); raw != "" {
		status = models.TaskStatus(strings.ToUpper(raw))
		if !status.Valid() {
			c.JSON(http.StatusBadRequest, utils.H{"error": "status must be PENDING, OVERDUE, or COMPLETED"})
			return
		}
	}

	tasks, err := h.Lifecycle.ListTasks(time.Now(), status, c.Query("asset_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.H{"error": "Failed to fetch tasks: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (h *TaskHandler) GetTaskByID(ctx context.Context, c *app.RequestContext) {
	task, found, err := h.Lifecycle.GetTask(c.Param("id"), time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.H{"error": "Failed to fetch task: " + err.Error()})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, utils.H{"error": "Task not found"})
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) UpdateTask(ctx context.Context, c *app.RequestContext) {
	var req UpdateTaskRequest
	if err := c.BindAndValidate(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.H{"error": "Invalid request payload: " + err.Error()})
		return
	}

	update := services.TaskUpdate{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Recurring:   req.Recurring,
	}
	if req.DueDate != nil {
		dueDate, err := models.ParseDate(*req.DueDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, utils.H{"error": "due_date must be a calendar date (YYYY-MM-DD)"})
			return
		}
		update.DueDate = &dueDate
	}
	if req.Priority != nil {
		priority := models.TaskPriority(strings.ToUpper(*req.Priority))
		if !priority.Valid() {
			c.JSON(http.StatusBadRequest, utils.H{"error": "priority must be LOW, MEDIUM, or HIGH"})
			return
		}
		update.Priority = &priority
	}
	if update.Title == nil && update.Description == nil && update.DueDate == nil &&
		update.Priority == nil && update.Category == nil && update.Recurring == nil {
		c.JSON(http.StatusBadRequest, utils.H{"error": "No update fields provided"})
		return
	}

	task, found, err := h.Lifecycle.UpdateTask(ctx, c.Param("id"), update, time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.H{"error": "Failed to update task: " + err.Error()})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, utils.H{"error": "Task not found"})
		return
	}
	c.JSON(http.StatusOK, task)
}

// CompleteTask runs the lifecycle completion. The body is optional; it
// only carries the actual cost. Unknown ids are 404 here so interactive
// callers get feedback, while the Kafka completion path stays silent.
func (h *TaskHandler) CompleteTask(ctx context.Context, c *app.RequestContext) {
	var req CompleteTaskRequest
	if len(c.Request.Body()) > 0 {
		if err := c.BindAndValidate(&req); err != nil {
			c.JSON(http.StatusBadRequest, utils.H{"error": "Invalid request payload: " + err.Error()})
			return
		}
	}

	task, spawned, found, err := h.Lifecycle.CompleteTask(ctx, c.Param("id"), req.ActualCost, time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.H{"error": "Failed to complete task: " + err.Error()})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, utils.H{"error": "Task not found"})
		return
	}
	c.JSON(http.StatusOK, utils.H{"task": task, "spawned": spawned})
}

// DeleteTask removes one task. Deletion is idempotent: deleting an absent
// task is still 204.
func (h *TaskHandler) DeleteTask(ctx context.Context, c *app.RequestContext) {
	if _, err := h.Lifecycle.DeleteTask(ctx, c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, utils.H{"error": "Failed to delete task: " + err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *TaskHandler) DeleteAllTasks(ctx context.Context, c *app.RequestContext) {
	deleted, err := h.Lifecycle.DeleteAllTasks(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.H{"error": "Failed to delete tasks: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, utils.H{"deleted": deleted})
}

// GetCalendar exports the open schedule as an iCalendar document.
func (h *TaskHandler) GetCalendar(ctx context.Context, c *app.RequestContext) {
	now := time.Now()
	tasks, err := h.Lifecycle.ListTasks(now, "", "")
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.H{"error": "Failed to fetch tasks: " + err.Error()})
		return
	}
	c.Data(http.StatusOK, icsContentType, []byte(calendar.BuildCalendar(tasks, now)))
}

func (h *TaskHandler) GetTaskCalendar(ctx context.Context, c *app.RequestContext) {
	now := time.Now()
	task, found, err := h.Lifecycle.GetTask(c.Param("id"), now)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.H{"error": "Failed to fetch task: " + err.Error()})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, utils.H{"error": "Task not found"})
		return
	}
	c.Data(http.StatusOK, icsContentType, []byte(calendar.BuildTaskCalendar(task, now)))
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// TaskStatus is the lifecycle state of a maintenance task. OVERDUE is a
// derived, read-time status: it is never written to storage, only
// computed from the due date (see EffectiveStatus).
type TaskStatus string

const (
	StatusPending   TaskStatus = "PENDING"
	StatusOverdue   TaskStatus = "OVERDUE"
	StatusCompleted TaskStatus = "COMPLETED"
)

// Valid reports whether s is one of the known statuses, derived OVERDUE
// included.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusPending, StatusOverdue, StatusCompleted:
		return true
	}
	return false
}

// TaskPriority levels match the template catalogue.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "LOW"
	PriorityMedium TaskPriority = "MEDIUM"
	PriorityHigh   TaskPriority = "HIGH"
)

// Valid reports whether p is one of the known priorities.
func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Season tags templates that must land in a seasonal window rather than
// being spread across upcoming weekends.
type Season string

const (
	SeasonNone       Season = ""
	SeasonLateSpring Season = "Late Spring"
	SeasonLateFall   Season = "Late Fall"
)

// CategoryGeneral is assigned when neither the template nor the oracle
// supplies a category. Categories are display strings, cased like the
// catalogue's; every category comparison is case-insensitive.
const CategoryGeneral = "General"

// TaskTemplate is a static, unscheduled task definition. Templates have no
// identity; schedulers expand them into Task instances.
type TaskTemplate struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Importance  string       `json:"importance,omitempty"`
	Priority    TaskPriority `json:"priority,omitempty"`
	Category    string       `json:"category,omitempty"`
	Recurring   bool         `json:"recurring,omitempty"`
	Season      Season       `json:"season,omitempty"`
	AssetID     string       `json:"asset_id,omitempty"`
}

// Task is a dated, stateful instance derived from a template (or entered
// by hand). Due dates carry calendar-date semantics: midnight in the
// household's location.
type Task struct {
	ID            string       `json:"id"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	Importance    string       `json:"importance,omitempty"`
	DueDate       time.Time    `json:"due_date"`
	Status        TaskStatus   `json:"status"`
	Priority      TaskPriority `json:"priority"`
	Category      string       `json:"category,omitempty"`
	AssetID       string       `json:"asset_id,omitempty"`
	Recurring     bool         `json:"recurring"`
	Season        Season       `json:"season,omitempty"`
	ActualCost    *float64     `json:"actual_cost,omitempty"`
	CompletedDate *time.Time   `json:"completed_date,omitempty"`
}

// NewID returns a fresh unique identifier. Every spawned recurrence gets
// its own.
func NewID() string {
	return uuid.NewString()
}

// EffectiveStatus derives the displayed status for a task: a PENDING task
// whose due date is before today's date reads as OVERDUE. Stored state is
// never mutated; completing an overdue-looking task goes straight from the
// stored PENDING to COMPLETED.
func EffectiveStatus(t Task, now time.Time) TaskStatus {
	if t.Status == StatusPending && DateOnly(t.DueDate).Before(DateOnly(now)) {
		return StatusOverdue
	}
	return t.Status
}

// IsOverdue reports whether the task reads as OVERDUE at the given time.
func (t Task) IsOverdue(now time.Time) bool {
	return EffectiveStatus(t, now) == StatusOverdue
}

package scheduling

import (
	"time"

	"github.com/mikermcconnell/HomeHealth/internal/models"
)

const defaultIntervalMonths = 12

// intervalRule pairs a predicate over the completed task with the month
// spacing of its next occurrence.
type intervalRule struct {
	name   string
	months int
	match  func(models.Task) bool
}

// intervalRules is evaluated in order; the first match decides the spacing.
// The title fragments are load-bearing, keep them aligned with the
// catalogue titles.
var intervalRules = []intervalRule{
	{name: "filter", months: 3, match: titleRule("filter")},
	{name: "smoke alarm", months: 6, match: titleRule("smoke alarm")},
	{name: "gutters or hvac", months: 6, match: titleRule("gutters", "hvac")},
	{name: "seasonal", months: 12, match: func(t models.Task) bool {
		return t.Season != models.SeasonNone
	}},
}

func titleRule(fragments ...string) func(models.Task) bool {
	return func(t models.Task) bool {
		return titleContainsAny(t.Title, fragments)
	}
}

// RecurrenceMonths returns the month spacing between a completed task and
// its next occurrence.
func RecurrenceMonths(t models.Task) int {
	for _, rule := range intervalRules {
		if rule.match(t) {
			return rule.months
		}
	}
	return defaultIntervalMonths
}

// Complete marks a task COMPLETED as of now, recording the actual cost if
// one was supplied, and spawns the next occurrence for recurring tasks.
// Completing an already-COMPLETED task changes nothing and spawns nothing,
// so redelivered completion events are harmless.
func Complete(task models.Task, actualCost *float64, now time.Time) (models.Task, *models.Task) {
	if task.Status == models.StatusCompleted {
		return task, nil
	}
	completedAt := now
	task.Status = models.StatusCompleted
	task.CompletedDate = &completedAt
	if actualCost != nil {
		cost := *actualCost
		task.ActualCost = &cost
	}
	if !task.Recurring {
		return task, nil
	}
	next := NextOccurrence(task, now)
	return task, &next
}

// NextOccurrence builds the follow-up PENDING task for a recurring task.
// The due date lands RecurrenceMonths after the previous due date; a result
// that is not in the future is re-anchored to the current year, then pushed
// one more year if needed, so the spawned task is always strictly after
// now. The new task gets a fresh id with cost and completion cleared.
func NextOccurrence(src models.Task, now time.Time) models.Task {
	due := src.DueDate.AddDate(0, RecurrenceMonths(src), 0)
	if !due.After(now) {
		due = time.Date(now.Year(), due.Month(), due.Day(), 0, 0, 0, 0, due.Location())
		if !due.After(now) {
			due = due.AddDate(1, 0, 0)
		}
	}
	return models.Task{
		ID:          models.NewID(),
		Title:       src.Title,
		Description: src.Description,
		Importance:  src.Importance,
		DueDate:     due,
		Status:      models.StatusPending,
		Priority:    src.Priority,
		Category:    src.Category,
		AssetID:     src.AssetID,
		Recurring:   true,
		Season:      src.Season,
	}
}

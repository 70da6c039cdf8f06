package scheduling

import (
	"context"
	"log"
	"time"

	"github.com/mikermcconnell/HomeHealth/internal/models"
)

// TemplateSummary is the per-template slice of a batch request.
type TemplateSummary struct {
	Title    string              `json:"title"`
	Season   models.Season       `json:"season,omitempty"`
	Priority models.TaskPriority `json:"priority"`
}

// BatchRequest is the household context handed to the oracle for one
// scheduling batch.
type BatchRequest struct {
	Templates []TemplateSummary `json:"templates"`
	Location  string            `json:"location"`
	HomeType  models.HomeType   `json:"home_type"`
	Today     string            `json:"today"`
}

// Suggestion is one oracle response item, matched to templates by exact
// title.
type Suggestion struct {
	Title    string `json:"title"`
	DueDate  string `json:"due_date"`
	Category string `json:"category"`
}

// Oracle supplies optional scheduling suggestions. Implementations may fail
// arbitrarily; every error is a cue to fall back, never a fatal condition.
// One attempt per batch, no retries.
type Oracle interface {
	SuggestSchedule(ctx context.Context, req BatchRequest) ([]Suggestion, error)
}

// ScheduleWithOracle schedules a batch with oracle assistance and always
// returns a complete schedule. A nil oracle or a failed call degrades to
// ScheduleFallback over the whole batch in its original order; an item the
// oracle skipped, or answered with an unparseable or past date, degrades
// to fallback for that item alone while the rest keep their suggested
// dates.
func ScheduleWithOracle(ctx context.Context, oracle Oracle, templates []models.TaskTemplate, hctx Context, startIndex int) []models.Task {
	if oracle == nil || len(templates) == 0 {
		return ScheduleFallback(templates, hctx.Now, startIndex)
	}

	req := BatchRequest{
		Templates: make([]TemplateSummary, 0, len(templates)),
		Location:  hctx.Location,
		HomeType:  hctx.HomeType,
		Today:     models.FormatDate(hctx.Now),
	}
	for _, tmpl := range templates {
		req.Templates = append(req.Templates, TemplateSummary{
			Title:    tmpl.Title,
			Season:   tmpl.Season,
			Priority: tmpl.Priority,
		})
	}

	suggestions, err := oracle.SuggestSchedule(ctx, req)
	if err != nil {
		log.Printf("Scheduler: oracle call failed, falling back for all %d templates: %v", len(templates), err)
		return ScheduleFallback(templates, hctx.Now, startIndex)
	}

	// First suggestion wins when the oracle repeats a title.
	byTitle := make(map[string]Suggestion, len(suggestions))
	for _, s := range suggestions {
		if _, seen := byTitle[s.Title]; !seen {
			byTitle[s.Title] = s
		}
	}

	tasks := make([]models.Task, 0, len(templates))
	for i, tmpl := range templates {
		if s, ok := byTitle[tmpl.Title]; ok {
			if due, usable := usableDate(s.DueDate, hctx.Now); usable {
				task := instantiate(tmpl)
				task.DueDate = due
				if s.Category != "" {
					task.Category = s.Category
				}
				tasks = append(tasks, task)
				continue
			}
			log.Printf("Scheduler: oracle date %q for %q is unusable, falling back for that item", s.DueDate, tmpl.Title)
		}
		tasks = append(tasks, ScheduleFallback([]models.TaskTemplate{tmpl}, hctx.Now, startIndex+i)...)
	}
	return tasks
}

// usableDate parses an oracle due date and rebuilds it on the household
// clock. A date that does not parse, or that falls before today, is out
// of range; no task may be born overdue from a suggestion.
func usableDate(raw string, now time.Time) (time.Time, bool) {
	d, err := models.ParseDate(raw)
	if err != nil {
		return time.Time{}, false
	}
	due := localizeDate(d, now)
	if due.Before(models.DateOnly(now)) {
		return time.Time{}, false
	}
	return due, true
}

// localizeDate rebuilds a parsed date at midnight in the household's
// location so oracle dates compare cleanly with fallback dates.
func localizeDate(d, now time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, now.Location())
}

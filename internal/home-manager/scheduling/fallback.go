package scheduling

import (
	"strings"
	"time"

	"github.com/mikermcconnell/HomeHealth/internal/models"
)

// Context is the read-only household input to both schedulers.
type Context struct {
	HomeType models.HomeType
	Location string
	Now      time.Time
}

const (
	// safetyLeadDays is how soon immediate-safety work comes due.
	safetyLeadDays = 3
	// seasonRolloverDays is the grace window after a seasonal anchor
	// before the anchor rolls to next year. Completing "Late Fall" work in
	// early November still targets this fall, not the next one.
	seasonRolloverDays = 30
	// spreadBaseWeeks is the minimum lead time for load-spread tasks.
	spreadBaseWeeks = 2

	placeholderTitle       = "Untitled Task"
	placeholderDescription = "No description provided."
)

// safetyKeywords force the immediate-safety policy regardless of priority.
// Matched case-insensitively against the template title.
var safetyKeywords = []string{"smoke"}

// seasonAnchors map a season tag to its month/day anchor.
var seasonAnchors = map[models.Season]struct {
	Month time.Month
	Day   int
}{
	models.SeasonLateSpring: {time.May, 15},
	models.SeasonLateFall:   {time.October, 15},
}

// ScheduleFallback assigns due dates and categories to a batch of templates
// without consulting the oracle. Policies apply per template in list order,
// first match wins: immediate safety (due in 3 days), seasonal anchoring
// (May 15 / Oct 15 with the rollover window), then load spreading across
// consecutive Saturdays starting two weeks out. startIndex offsets the
// load-spread slots so successive batches keep spreading instead of piling
// onto the same weekend. Deterministic apart from the generated ids.
func ScheduleFallback(templates []models.TaskTemplate, now time.Time, startIndex int) []models.Task {
	tasks := make([]models.Task, 0, len(templates))
	spreadSlot := startIndex
	for _, tmpl := range templates {
		task := instantiate(tmpl)
		switch {
		case isImmediateSafety(tmpl):
			task.DueDate = models.DateOnly(now).AddDate(0, 0, safetyLeadDays)
		case hasSeasonAnchor(tmpl.Season):
			task.DueDate = seasonalDueDate(tmpl.Season, now)
		default:
			task.DueDate = spreadDueDate(now, spreadSlot)
			spreadSlot++
		}
		tasks = append(tasks, task)
	}
	return tasks
}

// isImmediateSafety reports whether a template demands near-term
// scheduling: a safety keyword in the title, or HIGH priority with no
// seasonal window to respect.
func isImmediateSafety(tmpl models.TaskTemplate) bool {
	if titleContainsAny(tmpl.Title, safetyKeywords) {
		return true
	}
	return tmpl.Priority == models.PriorityHigh && tmpl.Season == models.SeasonNone
}

func hasSeasonAnchor(season models.Season) bool {
	_, ok := seasonAnchors[season]
	return ok
}

// seasonalDueDate returns the season's anchor date in the current year,
// rolled to next year once now is more than the rollover window past it.
func seasonalDueDate(season models.Season, now time.Time) time.Time {
	anchor := seasonAnchors[season]
	candidate := time.Date(now.Year(), anchor.Month, anchor.Day, 0, 0, 0, 0, now.Location())
	if now.After(candidate.AddDate(0, 0, seasonRolloverDays)) {
		candidate = candidate.AddDate(1, 0, 0)
	}
	return candidate
}

// spreadDueDate places a load-spread slot on the Saturday at or after
// (spreadBaseWeeks + slot) weeks from today.
func spreadDueDate(now time.Time, slot int) time.Time {
	due := models.DateOnly(now).AddDate(0, 0, (spreadBaseWeeks+slot)*7)
	days := (int(time.Saturday) - int(due.Weekday()) + 7) % 7
	return due.AddDate(0, 0, days)
}

// instantiate copies template fields into a fresh PENDING task, filling
// the placeholders downstream rendering depends on.
func instantiate(tmpl models.TaskTemplate) models.Task {
	task := models.Task{
		ID:          models.NewID(),
		Title:       tmpl.Title,
		Description: tmpl.Description,
		Importance:  tmpl.Importance,
		Status:      models.StatusPending,
		Priority:    tmpl.Priority,
		Category:    tmpl.Category,
		AssetID:     tmpl.AssetID,
		Recurring:   tmpl.Recurring,
		Season:      tmpl.Season,
	}
	if task.Title == "" {
		task.Title = placeholderTitle
	}
	if task.Description == "" {
		task.Description = placeholderDescription
	}
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}
	if task.Category == "" {
		task.Category = models.CategoryGeneral
	}
	return task
}

func titleContainsAny(title string, fragments []string) bool {
	lower := strings.ToLower(title)
	for _, fragment := range fragments {
		if strings.Contains(lower, fragment) {
			return true
		}
	}
	return false
}

// Package calendar renders tasks as iCalendar documents so the schedule
// can be subscribed to from any calendar app.
package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/mikermcconnell/HomeHealth/internal/home-manager/scheduling"
	"github.com/mikermcconnell/HomeHealth/internal/models"
)

const (
	icsDateLayout  = "20060102"
	icsStampLayout = "20060102T150405Z"
)

// BuildCalendar renders the open tasks as all-day events in a single
// iCalendar document. COMPLETED tasks are skipped; an empty task list
// still yields a valid, eventless calendar.
func BuildCalendar(tasks []models.Task, now time.Time) string {
	lines := calendarHeader()
	for _, task := range tasks {
		if task.Status == models.StatusCompleted {
			continue
		}
		lines = appendEvent(lines, task, now)
	}
	lines = append(lines, "END:VCALENDAR", "")
	return strings.Join(lines, "\r\n")
}

// BuildTaskCalendar renders one task as its own document, whatever its
// status.
func BuildTaskCalendar(task models.Task, now time.Time) string {
	lines := appendEvent(calendarHeader(), task, now)
	lines = append(lines, "END:VCALENDAR", "")
	return strings.Join(lines, "\r\n")
}

func calendarHeader() []string {
	return []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//HomeHealth//Maintenance Schedule//EN",
		"CALSCALE:GREGORIAN",
		"METHOD:PUBLISH",
	}
}

// appendEvent writes one all-day VEVENT. Recurring tasks carry a monthly
// RRULE matching the lifecycle's respawn interval.
func appendEvent(lines []string, task models.Task, now time.Time) []string {
	due := models.DateOnly(task.DueDate)
	end := due.AddDate(0, 0, 1)

	title := strings.TrimSpace(task.Title)
	if title == "" {
		title = "Home Maintenance Task"
	}

	lines = append(lines,
		"BEGIN:VEVENT",
		"UID:"+escapeText(fmt.Sprintf("task-%s@homehealth", task.ID)),
		"DTSTAMP:"+now.UTC().Format(icsStampLayout),
		"SUMMARY:"+escapeText(title),
		"DTSTART;VALUE=DATE:"+due.Format(icsDateLayout),
		"DTEND;VALUE=DATE:"+end.Format(icsDateLayout),
	)
	if desc := strings.TrimSpace(task.Description); desc != "" {
		lines = append(lines, "DESCRIPTION:"+escapeText(desc))
	}
	if task.Recurring {
		lines = append(lines, fmt.Sprintf("RRULE:FREQ=MONTHLY;INTERVAL=%d", scheduling.RecurrenceMonths(task)))
	}
	return append(lines, "END:VEVENT")
}

func escapeText(s string) string {
	repl := strings.NewReplacer(
		"\\", "\\\\",
		";", "\\;",
		",", "\\,",
		"\r\n", "\\n",
		"\n", "\\n",
		"\r", "\\n",
	)
	return repl.Replace(s)
}

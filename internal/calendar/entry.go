// Package calendar builds destination calendar entries from scraped
// records and exports them as iCalendar data.
package calendar

import (
	"fmt"
	"time"

	"pogocal/internal/calstore"
	"pogocal/internal/config"
	"pogocal/internal/event"
)

const fallbackDescription = "Pokémon GO event"

// allDay reports whether the record should be scheduled in whole-day form:
// either a multi-day span hugging the day boundaries, or a single-day span
// long enough to be effectively all day. Thresholds follow the source
// site's typical event windows.
func allDay(rec *event.Record) bool {
	start, end := rec.StartTime, rec.EndTime
	if rec.IsMultiDay {
		return start.Hour() < 2 && end.Hour() > 21
	}
	return start.Hour() < 10 && end.Hour() > 18 && end.Sub(start) > 7*time.Hour
}

// BuildEntry converts a schedulable record into an outbound calendar
// entry: summary (with the Spotlight bonus appended), assembled
// description, configured reminders, and either whole-day or timed
// scheduling. The caller must ensure rec.HasTimes().
func BuildEntry(rec *event.Record, cfg *config.Config) calstore.Entry {
	summary := rec.Title
	if rec.Category == event.CategorySpotlight && rec.Bonus != "" {
		summary = fmt.Sprintf("%s (%s)", summary, rec.Bonus)
	}

	description := rec.Description
	if description == "" {
		description = fallbackDescription
	}
	description += fmt.Sprintf("\n\nSource: %s", rec.DetailLink)
	if rec.ImageURL != "" {
		description += fmt.Sprintf("\nImage: %s", rec.ImageURL)
	}
	description += fmt.Sprintf("\n\nEvent Type: %s", rec.Category)
	if rec.Category == event.CategorySpotlight && rec.Bonus != "" {
		description += fmt.Sprintf("\nBonus: %s", rec.Bonus)
	}

	entry := calstore.Entry{
		Summary:     summary,
		Description: description,
		Reminders:   buildReminders(cfg),
	}

	if allDay(rec) {
		entry.Start = calstore.EntryTime{Date: rec.StartTime.Format("2006-01-02")}
		// Exclusive-end convention: the whole-day end is the day after the
		// event's last day.
		entry.End = calstore.EntryTime{Date: rec.EndTime.AddDate(0, 0, 1).Format("2006-01-02")}
		return entry
	}

	loc := cfg.Location()
	entry.Start = calstore.EntryTime{
		DateTime: rec.StartTime.In(loc).Format(time.RFC3339),
		TimeZone: cfg.Timezone,
	}
	entry.End = calstore.EntryTime{
		DateTime: rec.EndTime.In(loc).Format(time.RFC3339),
		TimeZone: cfg.Timezone,
	}
	return entry
}

func buildReminders(cfg *config.Config) []calstore.Reminder {
	reminders := make([]calstore.Reminder, 0, len(cfg.Reminders))
	for _, r := range cfg.Reminders {
		reminders = append(reminders, calstore.Reminder{Method: r.Method, Minutes: r.Minutes})
	}
	return reminders
}

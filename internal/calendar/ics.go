package calendar

import (
	"crypto/sha1"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"

	"pogocal/internal/config"
	"pogocal/internal/event"
)

// ExportICS renders the schedulable records as an iCalendar document.
// Timeless records are left out; the caller reports them separately.
func ExportICS(records []*event.Record, cfg *config.Config) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//pogocal//pogocal//EN")
	cal.SetCalscale("GREGORIAN")

	now := time.Now().UTC()
	for _, rec := range records {
		if !rec.HasTimes() {
			continue
		}

		e := cal.AddEvent(eventUID(rec))
		e.SetDtStampTime(now)
		e.SetSummary(rec.Title)

		entry := BuildEntry(rec, cfg)
		e.SetDescription(entry.Description)

		if entry.Start.Date != "" {
			e.SetAllDayStartAt(rec.StartTime)
			e.SetAllDayEndAt(rec.EndTime.AddDate(0, 0, 1))
		} else {
			e.SetStartAt(rec.StartTime)
			e.SetEndAt(rec.EndTime)
		}

		if rec.DetailLink != "" {
			e.SetURL(rec.DetailLink)
		}
		e.SetProperty(ics.ComponentProperty("CATEGORIES"), string(rec.Category))
		if color, ok := cfg.Colors[string(rec.Category)]; ok {
			e.SetProperty(ics.ComponentProperty("COLOR"), color)
		}
	}

	return cal.Serialize()
}

// eventUID derives a stable UID from the record's identity so re-exports
// update rather than duplicate.
func eventUID(rec *event.Record) string {
	h := sha1.New()
	fmt.Fprintf(h, "%s|%s", rec.Title, rec.StartTime.Format("2006-01-02"))
	return fmt.Sprintf("%x@pogocal", h.Sum(nil))
}

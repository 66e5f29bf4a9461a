package notifier

import (
	"fmt"
	"strings"

	"pogocal/internal/event"
)

const maxAnnouncementLen = 280

// formatAnnouncement renders one record as a short announcement, trimmed
// to post-length limits.
func formatAnnouncement(rec *event.Record) string {
	var b strings.Builder

	fmt.Fprintf(&b, "New Pokémon GO event: %s\n", rec.Title)
	if rec.HasTimes() {
		if rec.IsMultiDay {
			fmt.Fprintf(&b, "%s – %s\n", rec.DisplayStart, rec.DisplayEnd)
		} else {
			fmt.Fprintf(&b, "%s, %s – %s\n", rec.DisplayStart, rec.DisplayStartTime, rec.DisplayEndTime)
		}
	}
	fmt.Fprintf(&b, "Type: %s", rec.Category)
	if rec.Bonus != "" {
		fmt.Fprintf(&b, " (%s)", rec.Bonus)
	}
	if rec.DetailLink != "" {
		fmt.Fprintf(&b, "\n%s", rec.DetailLink)
	}

	text := b.String()
	if runes := []rune(text); len(runes) > maxAnnouncementLen {
		text = string(runes[:maxAnnouncementLen-1]) + "…"
	}
	return text
}

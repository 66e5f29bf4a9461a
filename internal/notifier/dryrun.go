package notifier

import (
	"fmt"
	"unicode/utf8"

	"pogocal/internal/event"
)

// DryRunNotifier prints what would be posted without posting it.
type DryRunNotifier struct{}

// NewDryRunNotifier creates a dry-run notifier.
func NewDryRunNotifier() *DryRunNotifier {
	return &DryRunNotifier{}
}

// Notify prints each announcement to stdout.
func (n *DryRunNotifier) Notify(records []*event.Record) error {
	for i, rec := range records {
		text := formatAnnouncement(rec)
		fmt.Printf("--- Announcement %d/%d ---\n", i+1, len(records))
		fmt.Println(text)
		fmt.Printf("\n(Length: %d characters)\n\n", utf8.RuneCountInString(text))
	}
	return nil
}

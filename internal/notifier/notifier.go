// Package notifier announces newly created calendar entries.
package notifier

import "pogocal/internal/event"

// Notifier posts an announcement for each newly created event.
type Notifier interface {
	Notify(records []*event.Record) error
}

// Package calstore is the boundary to the destination calendar. The
// pipeline only ever lists entries over a time window, inserts, and
// deletes by id; Store captures exactly that surface so a remote calendar
// backend can stand in for the bundled SQLite implementation.
package calstore

import (
	"context"
	"fmt"
	"time"
)

// Reminder is a notification attached to an entry.
type Reminder struct {
	Method  string `json:"method"`
	Minutes int    `json:"minutes"`
}

// EntryTime is one end of an entry's schedule. Exactly one of Date
// (whole-day form, "2006-01-02") or DateTime (timed form, RFC3339) is set;
// TimeZone labels the timed form.
type EntryTime struct {
	Date     string `json:"date,omitempty"`
	DateTime string `json:"date_time,omitempty"`
	TimeZone string `json:"time_zone,omitempty"`
}

// NormalizedDate reduces either schedule form to a plain calendar date at
// midnight UTC. Both forms must compare equal when they fall on the same
// day.
func (t EntryTime) NormalizedDate() (time.Time, error) {
	if t.Date != "" {
		d, err := time.Parse("2006-01-02", t.Date)
		if err != nil {
			return time.Time{}, fmt.Errorf("parsing whole-day date %q: %w", t.Date, err)
		}
		return d, nil
	}
	if t.DateTime != "" {
		d, err := time.Parse(time.RFC3339, t.DateTime)
		if err != nil {
			return time.Time{}, fmt.Errorf("parsing timed start %q: %w", t.DateTime, err)
		}
		y, m, day := d.Date()
		return time.Date(y, m, day, 0, 0, 0, 0, time.UTC), nil
	}
	return time.Time{}, fmt.Errorf("entry time has neither date nor dateTime")
}

// Entry is one recorded calendar entry.
type Entry struct {
	ID          string     `json:"id"`
	Summary     string     `json:"summary"`
	Description string     `json:"description,omitempty"`
	Start       EntryTime  `json:"start"`
	End         EntryTime  `json:"end"`
	Reminders   []Reminder `json:"reminders,omitempty"`
}

// Store exposes the destination calendar's list/insert/delete surface.
type Store interface {
	// List returns entries whose start date falls in [timeMin, timeMax).
	List(ctx context.Context, timeMin, timeMax time.Time) ([]Entry, error)
	// Insert stores an entry and returns its assigned id.
	Insert(ctx context.Context, entry Entry) (string, error)
	// Delete removes an entry by id.
	Delete(ctx context.Context, id string) error
	Close() error
}

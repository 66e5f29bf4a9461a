package event

import "time"

// Record represents a single scraped event. It is built incrementally:
// the extractor fills the identity fields and a provisional schedule from
// the listing page, the detail enricher may replace the schedule with
// authoritative times, and the matcher consumes the finished record.
type Record struct {
	Title         string    `json:"title"`
	DetailLink    string    `json:"detail_link"`
	Category      Category  `json:"category"`
	StartTime     time.Time `json:"start_time,omitzero"`
	EndTime       time.Time `json:"end_time,omitzero"`
	IsMultiDay    bool      `json:"is_multi_day"`
	Bonus         string    `json:"bonus,omitempty"`
	Description   string    `json:"description,omitempty"`
	ImageURL      string    `json:"image_url,omitempty"`
	OriginalIndex int       `json:"original_index"`

	// Derived presentation strings, recomputed by SetTimes. Never compared
	// for equality and never authoritative.
	DisplayStart     string `json:"display_start,omitempty"`
	DisplayEnd       string `json:"display_end,omitempty"`
	DisplayStartTime string `json:"display_start_time,omitempty"`
	DisplayEndTime   string `json:"display_end_time,omitempty"`
}

// NewRecord creates a record with identity fields set and no schedule.
func NewRecord(title, detailLink string, index int) *Record {
	return &Record{
		Title:         title,
		DetailLink:    detailLink,
		Category:      Categorize(title),
		OriginalIndex: index,
	}
}

// HasTimes reports whether the record carries a usable schedule. Start and
// end are always set or cleared together, so checking one side suffices.
func (r *Record) HasTimes() bool {
	return !r.StartTime.IsZero() && !r.EndTime.IsZero()
}

// SetTimes replaces the record's schedule with a start/end pair and
// recomputes IsMultiDay and every display string. All time replacements go
// through here so the derived fields can never go stale.
func (r *Record) SetTimes(start, end time.Time) {
	r.StartTime = start
	r.EndTime = end
	r.IsMultiDay = dateOnly(end).After(dateOnly(start))

	r.DisplayStart = start.Format("Jan 02, 2006")
	r.DisplayStartTime = start.Format("03:04 PM")
	r.DisplayEndTime = end.Format("03:04 PM")
	if r.IsMultiDay {
		r.DisplayEnd = end.Format("Jan 02, 2006")
	} else {
		r.DisplayEnd = ""
	}
}

// StartDate returns the calendar date of the start time (midnight, same
// location). Only meaningful when HasTimes is true.
func (r *Record) StartDate() time.Time {
	return dateOnly(r.StartTime)
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

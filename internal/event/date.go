package event

import (
	"regexp"
	"strings"
	"time"
)

// The detail pages publish schedule lines in one canonical shape:
//
//	"Saturday, March 14, 2026, at 2:30 PM Local Time"
//
// with the trailing comma and "Local Time" marker both optional. Anything
// else is treated as unparseable rather than guessed at.
var (
	detailTimePattern = regexp.MustCompile(`^(\w+), (\w+ \d+, \d+),? at (\d+:\d+ [AP]M)$`)
	whitespaceRun     = regexp.MustCompile(`\s+`)

	listingDatePattern = regexp.MustCompile(`(?:Mon|Tue|Wed|Thu|Fri|Sat|Sun),\s+(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\s+\d{1,2}(?:,\s+\d{4})?`)
	listingTimePattern = regexp.MustCompile(`\d{1,2}:\d{2}\s*(?:AM|PM|am|pm)`)
	weekdayMonthStart  = regexp.MustCompile(`(?:Mon|Tue|Wed|Thu|Fri|Sat|Sun),\s+(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)`)
)

// ParseDetailTime parses a detail-page schedule string into an instant in
// loc. Returns the zero time if the string does not match the canonical
// shape; parse failure is a soft condition and never an error.
func ParseDetailTime(raw string, loc *time.Location) time.Time {
	cleaned := strings.TrimSpace(whitespaceRun.ReplaceAllString(raw, " "))
	cleaned = strings.TrimSuffix(cleaned, " Local Time")

	m := detailTimePattern.FindStringSubmatch(cleaned)
	if m == nil {
		return time.Time{}
	}

	// m[1] is the weekday, dropped: the date alone determines it and the
	// page occasionally gets it wrong.
	t, err := time.ParseInLocation("January 2, 2006 3:04 PM", m[2]+" "+m[3], loc)
	if err != nil {
		return time.Time{}
	}
	return t
}

// HasListingDate reports whether a listing-page text fragment looks like a
// "Weekday, Month ..." date line. The extractor scans node fragments with
// this and keeps the first hit.
func HasListingDate(text string) bool {
	return weekdayMonthStart.MatchString(text)
}

// ParseListingDateTime parses a loose listing-page fragment that carries
// both a "Weekday, Month Day[, Year]" date and an "H:MM AM/PM" time, e.g.
// "Sat, Mar 14 2:00 PM - 5:00 PM". The year defaults to the current one
// when omitted, rolling forward when that would place the date more than
// six months in the past. Returns the zero time when either sub-pattern is
// missing or unparseable.
func ParseListingDateTime(text string, loc *time.Location, now time.Time) time.Time {
	dateStr := listingDatePattern.FindString(text)
	timeStr := listingTimePattern.FindString(text)
	if dateStr == "" || timeStr == "" {
		return time.Time{}
	}
	timeStr = strings.ToUpper(whitespaceRun.ReplaceAllString(timeStr, " "))
	if !strings.Contains(timeStr, " ") {
		// Normalize "2:00PM" to "2:00 PM" for the fixed layout below.
		timeStr = timeStr[:len(timeStr)-2] + " " + timeStr[len(timeStr)-2:]
	}

	combined := dateStr + " " + timeStr
	t, err := time.ParseInLocation("Mon, Jan 2, 2006 3:04 PM", combined, loc)
	if err == nil {
		return t
	}

	// No year in the fragment: parse without one and pin to the current
	// year. Weekday is dropped here too, since it rarely agrees with an
	// assumed year.
	withoutWeekday := strings.TrimSpace(strings.SplitN(dateStr, ",", 2)[1])
	t, err = time.ParseInLocation("Jan 2 3:04 PM", withoutWeekday+" "+timeStr, loc)
	if err != nil {
		return time.Time{}
	}
	t = time.Date(now.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, loc)
	if now.Sub(t) > 183*24*time.Hour {
		t = t.AddDate(1, 0, 0)
	}
	return t
}

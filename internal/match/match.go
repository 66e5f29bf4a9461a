// Package match classifies freshly scraped records against the entries
// already recorded in the destination calendar: exact duplicates are
// skipped, likely updates are flagged for confirmation, and the rest are
// new.
package match

import (
	"strings"
	"time"

	"pogocal/internal/calstore"
	"pogocal/internal/event"
	"pogocal/internal/logger"
)

// Action is the pipeline's verdict for one record.
type Action string

const (
	// ActionCreate marks a genuinely new event.
	ActionCreate Action = "create"
	// ActionUpdate marks a likely update to an existing entry, pending
	// confirmation before delete and recreate.
	ActionUpdate Action = "update-candidate"
	// ActionSkip marks an exact duplicate of an existing entry.
	ActionSkip Action = "skip"
	// ActionUnschedulable marks a record without a parseable schedule.
	// These are reported, never silently dropped.
	ActionUnschedulable Action = "unschedulable"
)

// Decision pairs a record with its verdict.
type Decision struct {
	Record        *event.Record `json:"record"`
	Action        Action        `json:"action"`
	Reason        string        `json:"reason,omitempty"`
	ExistingID    string        `json:"existing_id,omitempty"`
	ExistingTitle string        `json:"existing_title,omitempty"`
}

// eventTypePatterns identify titles that describe the same kind of
// recurring event even when the featured species differs.
var eventTypePatterns = []string{
	"community day",
	"spotlight hour",
	"raid day",
	"hatch day",
	"battle day",
	"max battle",
	"go fest",
}

// stopWords are stripped before title token overlap is measured.
var stopWords = map[string]bool{
	"featured": true, "event": true, "special": true, "bonus": true,
	"update": true, "the": true, "a": true, "an": true, "in": true, "on": true,
}

// Matcher compares records against existing calendar entries.
type Matcher struct {
	species map[string]bool
}

// New creates a Matcher with the configured species reference list.
func New(species []string) *Matcher {
	set := make(map[string]bool, len(species))
	for _, s := range species {
		set[strings.ToLower(strings.TrimSpace(s))] = true
	}
	return &Matcher{species: set}
}

// Decide classifies every record against the existing entries. Records are
// never mutated; the decision list preserves record order.
func (m *Matcher) Decide(records []*event.Record, existing []calstore.Entry) []Decision {
	byDate := indexByDate(existing)

	decisions := make([]Decision, 0, len(records))
	for _, rec := range records {
		decisions = append(decisions, m.decideOne(rec, byDate))
	}
	return decisions
}

func (m *Matcher) decideOne(rec *event.Record, byDate map[string][]calstore.Entry) Decision {
	if !rec.HasTimes() {
		return Decision{
			Record: rec,
			Action: ActionUnschedulable,
			Reason: "no parseable schedule",
		}
	}

	sameDay := byDate[rec.StartDate().Format("2006-01-02")]

	// Exact duplicates take precedence over similarity, so check the whole
	// day for one before considering updates.
	for _, entry := range sameDay {
		if entry.Summary == rec.Title {
			return Decision{
				Record:        rec,
				Action:        ActionSkip,
				Reason:        "duplicate",
				ExistingID:    entry.ID,
				ExistingTitle: entry.Summary,
			}
		}
	}

	for _, entry := range sameDay {
		if SameEventType(entry.Summary, rec.Title) || m.SimilarTitle(entry.Summary, rec.Title) {
			return Decision{
				Record:        rec,
				Action:        ActionUpdate,
				Reason:        "similar entry on same date",
				ExistingID:    entry.ID,
				ExistingTitle: entry.Summary,
			}
		}
	}

	return Decision{Record: rec, Action: ActionCreate}
}

// indexByDate groups entries by normalized start date. Both whole-day and
// timed entries reduce to a plain calendar date here. Entries whose start
// cannot be normalized are dropped with a warning.
func indexByDate(entries []calstore.Entry) map[string][]calstore.Entry {
	byDate := make(map[string][]calstore.Entry, len(entries))
	for _, entry := range entries {
		day, err := entry.Start.NormalizedDate()
		if err != nil {
			logger.Warn("skipping existing entry with unusable start", logger.Fields{
				"id":    entry.ID,
				"title": entry.Summary,
			})
			continue
		}
		key := day.Format("2006-01-02")
		byDate[key] = append(byDate[key], entry)
	}
	return byDate
}

// SameEventType reports whether both titles name the same recurring event
// kind (e.g. two community days). Identical titles are excluded: those are
// exact duplicates, not updates.
func SameEventType(a, b string) bool {
	if a == b {
		return false
	}
	la, lb := strings.ToLower(a), strings.ToLower(b)
	for _, pattern := range eventTypePatterns {
		if strings.Contains(la, pattern) && strings.Contains(lb, pattern) {
			return true
		}
	}
	return false
}

// SimilarTitle reports whether two titles likely describe the same event:
// either their significant words overlap by at least two tokens covering
// half of the smaller title, or a recognized species name appears in both.
func (m *Matcher) SimilarTitle(a, b string) bool {
	ta := significantTokens(a)
	tb := significantTokens(b)

	shared := 0
	for tok := range ta {
		if tb[tok] {
			shared++
		}
	}
	smaller := len(ta)
	if len(tb) < smaller {
		smaller = len(tb)
	}
	if shared >= 2 && smaller > 0 && shared*2 >= smaller {
		return true
	}

	return m.sharedSpecies(a, b)
}

// sharedSpecies reports whether a reference-list species token appears in
// both original titles.
func (m *Matcher) sharedSpecies(a, b string) bool {
	if len(m.species) == 0 {
		return false
	}
	for _, tok := range tokenize(a) {
		if m.species[tok] && containsToken(b, tok) {
			return true
		}
	}
	return false
}

func containsToken(title, tok string) bool {
	for _, t := range tokenize(title) {
		if t == tok {
			return true
		}
	}
	return false
}

// tokenize lower-cases and splits a title into words, trimming common
// punctuation.
func tokenize(title string) []string {
	fields := strings.Fields(strings.ToLower(title))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".,:;!?()")
		if f != "" {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

func significantTokens(title string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range tokenize(title) {
		if !stopWords[tok] {
			set[tok] = true
		}
	}
	return set
}

// Window returns the [timeMin, timeMax) listing window for existing
// entries: the start of today through windowDays days ahead.
func Window(now time.Time, windowDays int) (time.Time, time.Time) {
	y, m, d := now.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, windowDays)
}

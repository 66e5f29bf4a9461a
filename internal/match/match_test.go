package match

import (
	"testing"
	"time"

	"pogocal/internal/calstore"
	"pogocal/internal/event"
)

func testMatcher() *Matcher {
	return New([]string{"eevee", "magikarp", "bulbasaur"})
}

func schedulable(title string, start time.Time, dur time.Duration) *event.Record {
	rec := event.NewRecord(title, "https://example.com/events/x/", 0)
	rec.SetTimes(start, start.Add(dur))
	return rec
}

func TestSameEventType(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"LeekDuck Community Day: Bulbasaur", "Community Day: Charmander", true},
		{"X", "X", false}, // identical titles are duplicates, not updates
		{"Community Day: Eevee", "Community Day: Eevee", false},
		{"Raid Day: Groudon", "raid day: kyogre", true},
		{"Raid Day: Groudon", "Hatch Day: Riolu", false},
		{"GO Fest 2026: Global", "GO Fest 2026: Sapporo", true},
		{"Something else", "Another thing", false},
	}
	for _, tc := range tests {
		if got := SameEventType(tc.a, tc.b); got != tc.want {
			t.Errorf("SameEventType(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestSimilarTitle(t *testing.T) {
	m := testMatcher()

	tests := []struct {
		a, b string
		want bool
	}{
		// Stop words stripped, two shared tokens covering the smaller set.
		{"Featured Raid Hour", "Raid Hour Event", true},
		// One shared token is not enough.
		{"Raid Hour", "Raid Weekend Marathon Special Extravaganza", false},
		// Species token shared between otherwise different titles.
		{"Eevee Community Day", "Community Celebration: Eevee", true},
		{"Magikarp Spotlight", "Gyarados Raid", false},
		{"Totally Different", "Nothing Alike", false},
	}
	for _, tc := range tests {
		if got := m.SimilarTitle(tc.a, tc.b); got != tc.want {
			t.Errorf("SimilarTitle(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestDecideClassifications(t *testing.T) {
	day := time.Date(2026, time.March, 14, 14, 0, 0, 0, time.UTC)

	existing := []calstore.Entry{
		{
			ID:      "entry-cd",
			Summary: "Eevee Community Day",
			Start:   calstore.EntryTime{Date: "2026-03-14"},
			End:     calstore.EntryTime{Date: "2026-03-15"},
		},
		{
			ID:      "entry-raid",
			Summary: "Raid Hour: Mewtwo",
			Start:   calstore.EntryTime{DateTime: "2026-03-14T18:00:00Z"},
			End:     calstore.EntryTime{DateTime: "2026-03-14T19:00:00Z"},
		},
	}

	shadow := schedulable("Shadow Raid Weekend", day, 2*time.Hour)
	communityDay := schedulable("Community Day: Eevee", day, 3*time.Hour)
	duplicate := schedulable("Raid Hour: Mewtwo", day.Add(4*time.Hour), time.Hour)
	otherDay := schedulable("Eevee Community Day", day.AddDate(0, 1, 0), 3*time.Hour)
	timeless := event.NewRecord("Coming Soon", "https://example.com/events/soon/", 4)

	decisions := testMatcher().Decide(
		[]*event.Record{shadow, communityDay, duplicate, otherDay, timeless},
		existing,
	)

	if len(decisions) != 5 {
		t.Fatalf("expected 5 decisions, got %d", len(decisions))
	}

	// "Shadow Raid Weekend" shares the date but neither type pattern nor
	// enough title overlap with the existing entries.
	if decisions[0].Action != ActionCreate {
		t.Errorf("shadow: expected create, got %s (%s)", decisions[0].Action, decisions[0].Reason)
	}

	// "Community Day: Eevee" vs existing "Eevee Community Day": same date,
	// same event type and shared species.
	if decisions[1].Action != ActionUpdate {
		t.Errorf("community day: expected update-candidate, got %s", decisions[1].Action)
	}
	if decisions[1].ExistingID != "entry-cd" {
		t.Errorf("community day: expected existing id entry-cd, got %s", decisions[1].ExistingID)
	}

	// Exact title on the same date, timed entry normalized to its date.
	if decisions[2].Action != ActionSkip || decisions[2].Reason != "duplicate" {
		t.Errorf("duplicate: expected skip(duplicate), got %s (%s)", decisions[2].Action, decisions[2].Reason)
	}

	// Same title as an existing entry, but a month later: new.
	if decisions[3].Action != ActionCreate {
		t.Errorf("other day: expected create, got %s", decisions[3].Action)
	}

	// Timeless records are reported, never silently dropped.
	if decisions[4].Action != ActionUnschedulable {
		t.Errorf("timeless: expected unschedulable, got %s", decisions[4].Action)
	}
}

func TestDecideExactDuplicateBeatsSimilarity(t *testing.T) {
	day := time.Date(2026, time.March, 14, 14, 0, 0, 0, time.UTC)

	existing := []calstore.Entry{
		{ID: "similar", Summary: "Community Day: Charmander", Start: calstore.EntryTime{Date: "2026-03-14"}},
		{ID: "exact", Summary: "Community Day: Eevee", Start: calstore.EntryTime{Date: "2026-03-14"}},
	}

	rec := schedulable("Community Day: Eevee", day, 3*time.Hour)
	decisions := testMatcher().Decide([]*event.Record{rec}, existing)

	if decisions[0].Action != ActionSkip || decisions[0].ExistingID != "exact" {
		t.Errorf("expected skip against the exact entry, got %s (%s)",
			decisions[0].Action, decisions[0].ExistingID)
	}
}

func TestDecideDoesNotMutateRecords(t *testing.T) {
	day := time.Date(2026, time.March, 14, 14, 0, 0, 0, time.UTC)
	rec := schedulable("Community Day: Eevee", day, 3*time.Hour)
	before := *rec

	testMatcher().Decide([]*event.Record{rec}, nil)

	if *rec != before {
		t.Error("Decide must not mutate records")
	}
}

func TestWindow(t *testing.T) {
	now := time.Date(2026, time.March, 14, 17, 45, 0, 0, time.UTC)
	min, max := Window(now, 90)

	if !min.Equal(time.Date(2026, time.March, 14, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("window start should be start of today, got %v", min)
	}
	if !max.Equal(min.AddDate(0, 0, 90)) {
		t.Errorf("window end should be 90 days ahead, got %v", max)
	}
}

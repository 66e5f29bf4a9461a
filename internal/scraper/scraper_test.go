package scraper

import (
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"pogocal/internal/config"
	"pogocal/internal/event"
)

func testScraper(t *testing.T) *Scraper {
	t.Helper()
	cfg := config.Default()
	cfg.Timezone = "UTC"
	s := New(cfg)
	s.now = func() time.Time { return time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC) }
	return s
}

func TestParseListingFixture(t *testing.T) {
	data, err := os.ReadFile("../../testdata/fixtures/listing.html")
	if err != nil {
		t.Fatalf("failed to load test fixture: %v", err)
	}

	s := testScraper(t)
	records, err := s.parseListing(strings.NewReader(string(data)), "https://leekduck.com/events/")
	if err != nil {
		t.Fatalf("parseListing failed: %v", err)
	}

	byTitle := make(map[string]*event.Record)
	for _, rec := range records {
		byTitle[rec.Title] = rec
	}

	wantTitles := []string{
		"Community Day: Eevee",
		"Shadow Raid Weekend",
		"GO Fest Teaser",
		"Timeless Announcement",
		"Magikarp Spotlight Hour",
	}
	if len(records) != len(wantTitles) {
		t.Fatalf("expected %d records, got %d (%v)", len(wantTitles), len(records), records)
	}
	for _, title := range wantTitles {
		if byTitle[title] == nil {
			t.Errorf("expected record with title %q", title)
		}
	}

	// The standalone anchor outside any event section belongs to the
	// second strategy; the first strategy matched, so it must not appear.
	if byTitle["Standalone Event Link"] != nil {
		t.Error("strategy results must not be unioned: standalone link leaked in")
	}

	eevee := byTitle["Community Day: Eevee"]
	if eevee.DetailLink != "https://leekduck.com/events/community-day-eevee/" {
		t.Errorf("unexpected detail link: %s", eevee.DetailLink)
	}
	if eevee.ImageURL != "https://leekduck.com/assets/eevee.png" {
		t.Errorf("unexpected image URL: %s", eevee.ImageURL)
	}
	if eevee.Category != event.CategoryCommunityDay {
		t.Errorf("expected Community Day category, got %s", eevee.Category)
	}
	if !eevee.HasTimes() {
		t.Fatal("expected provisional times for Eevee record")
	}
	wantStart := time.Date(2026, time.March, 14, 14, 0, 0, 0, time.UTC)
	if !eevee.StartTime.Equal(wantStart) {
		t.Errorf("expected start %v, got %v", wantStart, eevee.StartTime)
	}
	if !eevee.EndTime.Equal(wantStart.Add(time.Hour)) {
		t.Errorf("provisional end should be start + 1h, got %v", eevee.EndTime)
	}
	if eevee.IsMultiDay {
		t.Error("provisional schedule should never be multi-day")
	}

	// Title from image alt text when no heading or bold text exists.
	teaser := byTitle["GO Fest Teaser"]
	if teaser.Category != event.CategoryGeneral {
		t.Errorf("expected General category, got %s", teaser.Category)
	}

	// No parseable date text leaves the record timeless, not errored.
	if byTitle["Timeless Announcement"].HasTimes() {
		t.Error("record without date text should be timeless")
	}

	// Parent "raids-section" hint must not override a keyword category.
	spotlight := byTitle["Magikarp Spotlight Hour"]
	if spotlight.Category != event.CategorySpotlight {
		t.Errorf("parent hint overrode keyword category: got %s", spotlight.Category)
	}
	if spotlight.DetailLink != "https://other.example.com/events/spotlight-hour/" {
		t.Errorf("absolute detail link was rewritten: %s", spotlight.DetailLink)
	}
	// Year-less date pinned to the current (stubbed) year.
	if got := spotlight.StartTime; got.Year() != 2026 || got.Month() != time.March || got.Day() != 17 || got.Hour() != 18 {
		t.Errorf("unexpected spotlight start: %v", got)
	}

	// First occurrence wins on duplicate titles.
	if eevee.DetailLink == "https://leekduck.com/events/community-day-eevee/?ref=sidebar" {
		t.Error("duplicate title should keep the first occurrence")
	}
}

func TestParseListingStrategyFallback(t *testing.T) {
	s := testScraper(t)

	// No event-class sections: anchors with /events/ hrefs (strategy two)
	// must be used.
	page := `<html><body>
		<a href="/events/raid-hour/"><span>Raid Hour</span></a>
		<a href="/news/other/"><span>Not An Event</span></a>
	</body></html>`
	records, err := s.parseListing(strings.NewReader(page), "https://leekduck.com/events/")
	if err != nil {
		t.Fatalf("parseListing failed: %v", err)
	}
	if len(records) != 1 || records[0].Title != "Raid Hour" {
		t.Fatalf("expected only the /events/ anchor, got %v", records)
	}
}

func TestParseListingNoNodesIsFatal(t *testing.T) {
	s := testScraper(t)
	_, err := s.parseListing(strings.NewReader("<html><body><p>maintenance</p></body></html>"), "https://leekduck.com/events/")
	if err == nil {
		t.Fatal("expected an error when no strategy yields nodes")
	}
}

func TestFetchEventsUnreachable(t *testing.T) {
	cfg := config.Default()
	cfg.SourceURL = "http://127.0.0.1:0/unreachable"
	s := New(cfg)
	s.client = &http.Client{Timeout: time.Second}

	if _, err := s.FetchEvents(); err == nil {
		t.Fatal("expected fetch error for unreachable listing URL")
	}
}

func TestAbsolutize(t *testing.T) {
	tests := []struct {
		ref  string
		want string
	}{
		{"/events/a/", "https://leekduck.com/events/a/"},
		{"events/a/", "https://leekduck.com/events/a/"},
		{"https://cdn.example.com/img.png", "https://cdn.example.com/img.png"},
	}
	for _, tc := range tests {
		if got := absolutize(tc.ref, "https://leekduck.com"); got != tc.want {
			t.Errorf("absolutize(%q) = %q, want %q", tc.ref, got, tc.want)
		}
	}
}

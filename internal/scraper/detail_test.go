package scraper

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pogocal/internal/config"
	"pogocal/internal/event"
)

func testEnricher(t *testing.T) *Enricher {
	t.Helper()
	cfg := config.Default()
	cfg.Timezone = "UTC"
	return NewEnricher(cfg)
}

func serveHTML(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

const detailWithBothTimes = `<html><body>
	<h2>Schedule</h2>
	<p>Start:</p>
	<p>Saturday, March 14, 2026, at 2:00 PM Local Time</p>
	<p>End:</p>
	<p>Monday, March 16, 2026 at 10:00 PM</p>
	<div class="event-description">Trainers can look forward to a big weekend.</div>
</body></html>`

func TestEnrichReplacesBothTimes(t *testing.T) {
	srv := serveHTML(t, detailWithBothTimes)

	rec := event.NewRecord("Shadow Raid Weekend", srv.URL, 0)
	provisional := time.Date(2026, time.March, 14, 10, 0, 0, 0, time.UTC)
	rec.SetTimes(provisional, provisional.Add(time.Hour))

	if err := testEnricher(t).Enrich(rec); err != nil {
		t.Fatalf("Enrich failed: %v", err)
	}

	wantStart := time.Date(2026, time.March, 14, 14, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2026, time.March, 16, 22, 0, 0, 0, time.UTC)
	if !rec.StartTime.Equal(wantStart) {
		t.Errorf("expected start %v, got %v", wantStart, rec.StartTime)
	}
	if !rec.EndTime.Equal(wantEnd) {
		t.Errorf("expected end %v, got %v", wantEnd, rec.EndTime)
	}
	if !rec.IsMultiDay {
		t.Error("IsMultiDay should be recomputed after time replacement")
	}
	if rec.DisplayEnd == "" {
		t.Error("display end should be set for a multi-day record")
	}
	if rec.Description != "Trainers can look forward to a big weekend." {
		t.Errorf("unexpected description: %q", rec.Description)
	}
}

func TestEnrichIsIdempotent(t *testing.T) {
	srv := serveHTML(t, detailWithBothTimes)
	e := testEnricher(t)

	rec := event.NewRecord("Shadow Raid Weekend", srv.URL, 0)
	if err := e.Enrich(rec); err != nil {
		t.Fatalf("Enrich failed: %v", err)
	}
	first := *rec

	if err := e.Enrich(rec); err != nil {
		t.Fatalf("second Enrich failed: %v", err)
	}
	if *rec != first {
		t.Errorf("re-enrichment changed the record:\nfirst:  %+v\nsecond: %+v", first, *rec)
	}
}

func TestEnrichPartialTimesDiscarded(t *testing.T) {
	// Only a start label parses; the provisional pair must survive intact.
	srv := serveHTML(t, `<html><body>
		<p>Start:</p>
		<p>Saturday, March 14, 2026, at 2:00 PM</p>
		<p>End:</p>
		<p>TBD</p>
	</body></html>`)

	rec := event.NewRecord("Raid Hour", srv.URL, 0)
	provisional := time.Date(2026, time.March, 14, 10, 0, 0, 0, time.UTC)
	rec.SetTimes(provisional, provisional.Add(time.Hour))

	if err := testEnricher(t).Enrich(rec); err != nil {
		t.Fatalf("Enrich failed: %v", err)
	}
	if !rec.StartTime.Equal(provisional) || !rec.EndTime.Equal(provisional.Add(time.Hour)) {
		t.Errorf("partial parse must not replace times: start=%v end=%v", rec.StartTime, rec.EndTime)
	}
}

func TestEnrichNonSuccessStatusIsSoft(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	rec := event.NewRecord("Raid Hour", srv.URL, 0)
	if err := testEnricher(t).Enrich(rec); err != nil {
		t.Fatalf("non-success status must be a soft failure, got: %v", err)
	}
	if rec.HasTimes() {
		t.Error("record should be unchanged after a failed fetch")
	}
}

func TestEnrichBonusLiteralMarker(t *testing.T) {
	srv := serveHTML(t, `<html><body>
		<p>Magikarp will appear more often.</p>
		<p>During the hour, the special bonus is <b>2× Stardust for catching Pokémon</b>. Enjoy!</p>
	</body></html>`)

	rec := event.NewRecord("Magikarp Spotlight Hour", srv.URL, 0)
	if err := testEnricher(t).Enrich(rec); err != nil {
		t.Fatalf("Enrich failed: %v", err)
	}
	if rec.Bonus != "2× Stardust for catching Pokémon" {
		t.Errorf("unexpected bonus: %q", rec.Bonus)
	}
}

func TestEnrichBonusFallbackPattern(t *testing.T) {
	srv := serveHTML(t, `<html><body>
		<p>Magikarp will appear more often.</p>
		<p>Catch Pokémon to earn 2× Stardust all hour long.</p>
	</body></html>`)

	rec := event.NewRecord("Magikarp Spotlight Hour", srv.URL, 0)
	if err := testEnricher(t).Enrich(rec); err != nil {
		t.Fatalf("Enrich failed: %v", err)
	}
	if rec.Bonus != "2× Stardust" {
		t.Errorf("unexpected bonus: %q", rec.Bonus)
	}
}

func TestEnrichBonusOnlyForSpotlight(t *testing.T) {
	srv := serveHTML(t, `<html><body>
		<p>The special bonus is 2× XP.</p>
	</body></html>`)

	rec := event.NewRecord("Raid Hour", srv.URL, 0)
	if err := testEnricher(t).Enrich(rec); err != nil {
		t.Fatalf("Enrich failed: %v", err)
	}
	if rec.Bonus != "" {
		t.Errorf("bonus should only be recorded for Spotlight records, got %q", rec.Bonus)
	}
}

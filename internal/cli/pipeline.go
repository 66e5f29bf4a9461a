package cli

import (
	"context"
	"fmt"
	"time"

	"pogocal/internal/calendar"
	"pogocal/internal/calstore"
	"pogocal/internal/config"
	"pogocal/internal/event"
	"pogocal/internal/logger"
	"pogocal/internal/match"
	"pogocal/internal/scraper"
)

// scrapeAndEnrich runs the sequential listing scrape followed by the
// bounded-concurrency detail enrichment.
func scrapeAndEnrich(cfg *config.Config) ([]*event.Record, error) {
	records, err := scraper.New(cfg).FetchEvents()
	if err != nil {
		return nil, fmt.Errorf("scraping listing: %w", err)
	}

	scraper.EnrichAll(scraper.NewEnricher(cfg), records)
	return records, nil
}

// decide matches enriched records against the calendar's existing entries
// over the configured forward window.
func decide(ctx context.Context, cfg *config.Config, store calstore.Store, records []*event.Record) ([]match.Decision, error) {
	timeMin, timeMax := match.Window(time.Now(), cfg.WindowDays)
	existing, err := store.List(ctx, timeMin, timeMax)
	if err != nil {
		return nil, fmt.Errorf("listing existing entries: %w", err)
	}
	logger.Debug("loaded existing entries", logger.Fields{"count": len(existing)})

	return match.New(cfg.Species).Decide(records, existing), nil
}

// Outcome records what happened to one decision during sync.
type Outcome struct {
	Title   string       `json:"title"`
	Action  match.Action `json:"action"`
	Status  string       `json:"status"` // created, replaced, pending, skipped
	Reason  string       `json:"reason,omitempty"`
	EntryID string       `json:"entry_id,omitempty"`
}

// applyDecisions writes the decision list to the store. New records are
// inserted; update candidates are replaced (delete then insert) only when
// applyUpdates is set, otherwise left pending for review. A failed insert
// or delete is recorded as skipped with its reason and never halts the
// remaining records. Returns the records actually created.
func applyDecisions(ctx context.Context, cfg *config.Config, store calstore.Store, decisions []match.Decision, applyUpdates bool) ([]*event.Record, []Outcome) {
	var created []*event.Record
	outcomes := make([]Outcome, 0, len(decisions))

	for _, d := range decisions {
		out := Outcome{Title: d.Record.Title, Action: d.Action}

		switch d.Action {
		case match.ActionCreate:
			id, err := store.Insert(ctx, calendar.BuildEntry(d.Record, cfg))
			if err != nil {
				out.Status = "skipped"
				out.Reason = fmt.Sprintf("insert failed: %v", err)
				logger.Warn("entry insert failed", logger.Fields{
					"title": d.Record.Title,
					"error": err.Error(),
				})
			} else {
				out.Status = "created"
				out.EntryID = id
				created = append(created, d.Record)
				logger.IncrCounter("sync.created")
			}

		case match.ActionUpdate:
			if !applyUpdates {
				out.Status = "pending"
				out.Reason = fmt.Sprintf("similar to existing %q; rerun with --apply-updates to replace", d.ExistingTitle)
				break
			}
			if err := store.Delete(ctx, d.ExistingID); err != nil {
				out.Status = "skipped"
				out.Reason = fmt.Sprintf("delete of existing entry failed: %v", err)
				break
			}
			id, err := store.Insert(ctx, calendar.BuildEntry(d.Record, cfg))
			if err != nil {
				out.Status = "skipped"
				out.Reason = fmt.Sprintf("insert after delete failed: %v", err)
				break
			}
			out.Status = "replaced"
			out.EntryID = id
			created = append(created, d.Record)
			logger.IncrCounter("sync.replaced")

		case match.ActionSkip:
			out.Status = "skipped"
			out.Reason = d.Reason
			out.EntryID = d.ExistingID

		case match.ActionUnschedulable:
			out.Status = "skipped"
			out.Reason = d.Reason
		}

		outcomes = append(outcomes, out)
	}

	return created, outcomes
}

// openStore opens the configured SQLite calendar store.
func openStore(cfg *config.Config) (calstore.Store, error) {
	path, err := config.ExpandPath(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}
	store, err := calstore.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening calendar store: %w", err)
	}
	return store, nil
}

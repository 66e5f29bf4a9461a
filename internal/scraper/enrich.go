package scraper

import (
	"sync"
	"time"

	"pogocal/internal/event"
	"pogocal/internal/logger"
)

// EnrichWorkers is the fixed number of detail fetches in flight at once.
const EnrichWorkers = 5

// EnrichStatus is the terminal state of one record's enrichment.
type EnrichStatus int

const (
	// StatusPreliminary marks a record that was never dispatched (no
	// detail link).
	StatusPreliminary EnrichStatus = iota
	StatusEnriched
	StatusEnrichmentFailed
)

// EnrichAll runs the enricher over every record with a detail link, at
// most EnrichWorkers fetches in flight. Each worker owns exactly one
// record slot, results land at the record's original index, and a failed
// enrichment leaves its record at the preliminary data without disturbing
// sibling work. The returned slice is indexed like records.
func EnrichAll(enricher *Enricher, records []*event.Record) []EnrichStatus {
	statuses := make([]EnrichStatus, len(records))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < EnrichWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				rec := records[idx]
				started := time.Now()
				if err := enricher.Enrich(rec); err != nil {
					statuses[idx] = StatusEnrichmentFailed
					logger.IncrCounter("enrich.failed")
					logger.Warn("detail enrichment failed", logger.Fields{
						"title": rec.Title,
						"url":   rec.DetailLink,
						"error": err.Error(),
					})
					continue
				}
				statuses[idx] = StatusEnriched
				logger.IncrCounter("enrich.ok")
				logger.RecordTiming("enrich.fetch", time.Since(started))
			}
		}()
	}

	for idx, rec := range records {
		if rec.DetailLink == "" {
			continue
		}
		jobs <- idx
	}
	close(jobs)
	wg.Wait()

	return statuses
}

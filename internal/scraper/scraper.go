package scraper

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/cenkalti/backoff/v4"

	"pogocal/internal/config"
	"pogocal/internal/event"
	"pogocal/internal/logger"
)

// listingFetchRetries is the number of additional attempts made for the
// listing page. The listing fetch is the only fatal fetch in the run, so
// it alone gets retried.
const listingFetchRetries = 2

// Scraper fetches the event listing page and extracts candidate records.
type Scraper struct {
	client    *http.Client
	url       string
	userAgent string
	loc       *time.Location

	// now is stubbed in tests; listing dates without a year are pinned
	// relative to it.
	now func() time.Time
}

// New creates a Scraper from the application configuration.
func New(cfg *config.Config) *Scraper {
	return &Scraper{
		client:    &http.Client{Timeout: cfg.FetchTimeout()},
		url:       cfg.SourceURL,
		userAgent: cfg.UserAgent,
		loc:       cfg.Location(),
		now:       time.Now,
	}
}

// FetchEvents downloads the listing page and extracts candidate records.
// A page that cannot be fetched after retries, or that yields no candidate
// nodes under any strategy, is a fatal failure: the caller must treat the
// error as "scrape failed", not as zero events.
func (s *Scraper) FetchEvents() ([]*event.Record, error) {
	started := time.Now()
	body, err := s.fetchListing()
	if err != nil {
		return nil, err
	}
	logger.RecordTiming("scrape.listing_fetch", time.Since(started))

	records, err := s.parseListing(strings.NewReader(body), s.url)
	if err != nil {
		return nil, err
	}
	logger.Info("extracted listing records", logger.Fields{"count": len(records)})
	return records, nil
}

// fetchListing GETs the listing page with capped exponential backoff.
func (s *Scraper) fetchListing() (string, error) {
	var body string
	op := func() error {
		req, err := http.NewRequest(http.MethodGet, s.url, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("creating request: %w", err))
		}
		req.Header.Set("User-Agent", s.userAgent)

		resp, err := s.client.Do(req)
		if err != nil {
			return fmt.Errorf("fetching listing page: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("listing page returned status %d", resp.StatusCode)
		}

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("reading listing page: %w", err)
		}
		body = string(data)
		return nil
	}

	notify := func(err error, wait time.Duration) {
		logger.Warn("listing fetch failed, retrying", logger.Fields{
			"url":  s.url,
			"wait": wait.String(),
		})
	}

	b := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), listingFetchRetries)
	if err := backoff.RetryNotify(op, b, notify); err != nil {
		return "", err
	}
	return body, nil
}

// nodeStrategy is one way of locating candidate event nodes in the page.
// Strategies are tried in order and the first one returning any nodes
// wins; later strategies are never unioned in.
type nodeStrategy struct {
	name string
	find func(doc *goquery.Document) *goquery.Selection
}

var nodeStrategies = []nodeStrategy{
	{
		// Sections whose class mentions events or raids, then the anchors
		// inside them.
		name: "event-sections",
		find: func(doc *goquery.Document) *goquery.Selection {
			sections := doc.Find("[class]").FilterFunction(func(_ int, sel *goquery.Selection) bool {
				return classContains(sel, "event", "raids")
			})
			return sections.Find("a[href]")
		},
	},
	{
		// Anchors that link directly to a detail page.
		name: "event-links",
		find: func(doc *goquery.Document) *goquery.Selection {
			return doc.Find("a[href]").FilterFunction(func(_ int, sel *goquery.Selection) bool {
				href, _ := sel.Attr("href")
				return strings.Contains(href, "/events/")
			})
		},
	},
	{
		// Broadest sweep: anything whose class looks item- or event-like.
		name: "broad-class",
		find: func(doc *goquery.Document) *goquery.Selection {
			return doc.Find("div[class], a[class]").FilterFunction(func(_ int, sel *goquery.Selection) bool {
				return classContains(sel, "item", "event", "raid")
			})
		},
	},
}

// parseListing extracts records from listing-page markup.
func (s *Scraper) parseListing(r io.Reader, sourceURL string) ([]*event.Record, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing listing HTML: %w", err)
	}

	base, err := url.Parse(sourceURL)
	if err != nil {
		return nil, fmt.Errorf("parsing source URL: %w", err)
	}
	origin := base.Scheme + "://" + base.Host

	var nodes *goquery.Selection
	for _, strat := range nodeStrategies {
		found := strat.find(doc)
		if found.Length() > 0 {
			logger.Debug("node strategy matched", logger.Fields{
				"strategy": strat.name,
				"nodes":    found.Length(),
			})
			nodes = found
			break
		}
	}
	if nodes == nil {
		return nil, fmt.Errorf("no candidate event nodes found under any strategy")
	}

	records := make([]*event.Record, 0, nodes.Length())
	seenTitles := make(map[string]bool)

	nodes.Each(func(i int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok || href == "" {
			return
		}

		title := extractTitle(sel)
		if len(title) < 3 {
			return
		}
		if seenTitles[title] {
			return
		}
		seenTitles[title] = true

		rec := event.NewRecord(title, absolutize(href, origin), len(records))
		if parentClass, ok := sel.Parent().Attr("class"); ok {
			rec.ApplyParentHint(parentClass)
		}

		s.parseProvisionalTimes(rec, sel)

		if src, ok := sel.Find("img").First().Attr("src"); ok && src != "" {
			rec.ImageURL = absolutize(src, origin)
		}

		records = append(records, rec)
	})

	return records, nil
}

// parseProvisionalTimes scans the node's text fragments for the first one
// that looks like a date line and, when it also carries a time, sets a
// provisional schedule of one hour. Parse failure leaves the record
// timeless; it never propagates.
func (s *Scraper) parseProvisionalTimes(rec *event.Record, sel *goquery.Selection) {
	var dateText string
	for _, line := range strings.Split(sel.Text(), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if event.HasListingDate(line) {
			dateText = line
			break
		}
	}
	if dateText == "" {
		return
	}

	start := event.ParseListingDateTime(dateText, s.loc, s.now())
	if start.IsZero() {
		logger.Debug("listing date text did not parse", logger.Fields{
			"title": rec.Title,
			"text":  dateText,
		})
		return
	}
	rec.SetTimes(start, start.Add(time.Hour))
}

// titleStrategies extract a title from a candidate node, tried in order
// with the first non-empty result winning.
var titleStrategies = []func(sel *goquery.Selection) string{
	// Heading/emphasis/span elements that are explicitly titled or carry
	// no class at all.
	func(sel *goquery.Selection) string {
		var title string
		sel.Find("h1, h2, h3, h4, strong, span").EachWithBreak(func(_ int, el *goquery.Selection) bool {
			class, hasClass := el.Attr("class")
			if hasClass && !strings.Contains(strings.ToLower(class), "title") {
				return true
			}
			title = strings.TrimSpace(el.Text())
			return title == ""
		})
		return title
	},
	// Any bold text.
	func(sel *goquery.Selection) string {
		return strings.TrimSpace(sel.Find("b, strong").First().Text())
	},
	// Image alt text.
	func(sel *goquery.Selection) string {
		alt, _ := sel.Find("img").First().Attr("alt")
		return strings.TrimSpace(alt)
	},
	// Last resort: the first line of the node's text content.
	func(sel *goquery.Selection) string {
		line, _, _ := strings.Cut(strings.TrimSpace(sel.Text()), "\n")
		return strings.TrimSpace(line)
	},
}

func extractTitle(sel *goquery.Selection) string {
	for _, strat := range titleStrategies {
		if title := strat(sel); title != "" {
			return title
		}
	}
	return ""
}

// classContains reports whether the node's class attribute contains any of
// the given substrings, case-insensitively.
func classContains(sel *goquery.Selection, substrings ...string) bool {
	class, ok := sel.Attr("class")
	if !ok {
		return false
	}
	class = strings.ToLower(class)
	for _, sub := range substrings {
		if strings.Contains(class, sub) {
			return true
		}
	}
	return false
}

// absolutize resolves a possibly-relative URL against the listing origin.
func absolutize(ref, origin string) string {
	if strings.HasPrefix(ref, "http") {
		return ref
	}
	if !strings.HasPrefix(ref, "/") {
		ref = "/" + ref
	}
	return origin + ref
}

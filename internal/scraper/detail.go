package scraper

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"pogocal/internal/config"
	"pogocal/internal/event"
	"pogocal/internal/logger"
)

// Enricher visits a record's detail page to replace provisional times with
// authoritative ones and, for Spotlight events, pull the bonus phrase.
type Enricher struct {
	client    *http.Client
	userAgent string
	loc       *time.Location
}

// NewEnricher creates an Enricher from the application configuration.
func NewEnricher(cfg *config.Config) *Enricher {
	return &Enricher{
		client:    &http.Client{Timeout: cfg.FetchTimeout()},
		userAgent: cfg.UserAgent,
		loc:       cfg.Location(),
	}
}

// Enrich mutates rec in place from its detail page. Soft conditions (a
// non-success status, unparseable times, a missing bonus) leave the record
// at its best-known state and return nil. The returned error covers only
// transport and document failures, which the scheduler records as a failed
// enrichment.
func (e *Enricher) Enrich(rec *event.Record) error {
	if rec.DetailLink == "" {
		return nil
	}

	req, err := http.NewRequest(http.MethodGet, rec.DetailLink, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", e.userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetching detail page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Warn("detail page fetch returned non-success status", logger.Fields{
			"title":  rec.Title,
			"url":    rec.DetailLink,
			"status": resp.StatusCode,
		})
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return fmt.Errorf("parsing detail page: %w", err)
	}

	e.applyDetailTimes(rec, doc)

	if rec.Category == event.CategorySpotlight {
		if bonus := extractBonus(doc); bonus != "" {
			rec.Bonus = bonus
		} else {
			logger.Debug("no bonus found on spotlight detail page", logger.Fields{
				"title": rec.Title,
			})
		}
	}

	if desc := strings.TrimSpace(doc.Find("div.event-description").First().Text()); desc != "" {
		rec.Description = desc
	}

	return nil
}

// applyDetailTimes locates the start/end labels and overwrites the
// record's schedule only when both sides parse. A one-sided parse is
// discarded entirely so the pair can never be half-replaced.
func (e *Enricher) applyDetailTimes(rec *event.Record, doc *goquery.Document) {
	root := doc.Get(0)

	start := event.ParseDetailTime(labelValue(root, "start"), e.loc)
	end := event.ParseDetailTime(labelValue(root, "end"), e.loc)

	if start.IsZero() || end.IsZero() {
		if !start.IsZero() || !end.IsZero() {
			logger.Debug("only one detail time parsed, keeping provisional pair", logger.Fields{
				"title": rec.Title,
			})
		}
		return
	}
	rec.SetTimes(start, end)
}

// labelValue finds the first text node containing label (case-insensitive)
// and returns the text of the next element in document order, trimmed.
func labelValue(root *html.Node, label string) string {
	textNode := findTextNode(root, label)
	if textNode == nil {
		return ""
	}
	for n := nextNode(textNode); n != nil; n = nextNode(n) {
		if n.Type != html.ElementNode {
			continue
		}
		if text := strings.TrimSpace(nodeText(n)); text != "" {
			return text
		}
	}
	return ""
}

// findTextNode walks the tree in document order and returns the first text
// node whose content contains substr, case-insensitively.
func findTextNode(root *html.Node, substr string) *html.Node {
	for n := root; n != nil; n = nextNode(n) {
		if n.Type == html.TextNode && strings.Contains(strings.ToLower(n.Data), substr) {
			return n
		}
	}
	return nil
}

// nextNode returns the document-order successor of n.
func nextNode(n *html.Node) *html.Node {
	if n.FirstChild != nil {
		return n.FirstChild
	}
	for ; n != nil; n = n.Parent {
		if n.NextSibling != nil {
			return n.NextSibling
		}
	}
	return nil
}

// nodeText concatenates every text node under n.
func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// Fallback patterns for the Spotlight bonus phrase, tried in order across
// every paragraph after the literal "special bonus is" scan comes up
// empty. These are tuned to the source site's phrasing.
var bonusPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)special bonus is\s*(?:\*\*)?(.*?)(?:\*\*)?(?:\.|\s|$)`),
	regexp.MustCompile(`(?i)bonus is\s*(?:\*\*)?(.*?)(?:\*\*)?(?:\.|\s|$)`),
	regexp.MustCompile(`(?i)bonus:\s*(?:\*\*)?(.*?)(?:\*\*)?(?:\.|\s|$)`),
	regexp.MustCompile(`(?i)(\d+[×x].+?(?:Candy|XP|Stardust|Dust))`),
	regexp.MustCompile(`(?i)double\s+(.+?(?:Candy|XP|Stardust|Dust))`),
}

const bonusMarker = "special bonus is"

// extractBonus scans the page's paragraphs for the bonus phrase. The
// literal marker wins; otherwise the first regex match across all
// paragraphs is taken. At most one bonus is returned.
func extractBonus(doc *goquery.Document) string {
	paragraphs := doc.Find("p")

	var bonus string
	paragraphs.EachWithBreak(func(_ int, p *goquery.Selection) bool {
		text := strings.TrimSpace(p.Text())
		lower := strings.ToLower(text)
		idx := strings.Index(lower, bonusMarker)
		if idx < 0 {
			return true
		}
		rest := text[idx+len(bonusMarker):]
		rest = strings.ReplaceAll(rest, "**", "")
		rest = strings.TrimSpace(rest)
		if cut := strings.IndexByte(rest, '.'); cut >= 0 {
			rest = rest[:cut]
		}
		bonus = strings.TrimSpace(rest)
		return bonus == ""
	})
	if bonus != "" {
		return bonus
	}

	paragraphs.EachWithBreak(func(_ int, p *goquery.Selection) bool {
		text := strings.TrimSpace(p.Text())
		for _, pattern := range bonusPatterns {
			if m := pattern.FindStringSubmatch(text); m != nil {
				bonus = strings.TrimSpace(m[1])
				if bonus != "" {
					return false
				}
			}
		}
		return true
	})
	return bonus
}

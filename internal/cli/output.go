package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"pogocal/internal/config"
	"pogocal/internal/event"
	"pogocal/internal/match"
)

// OutputFormat selects how results are rendered.
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

func parseFormat(s string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(s)) {
	case FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("invalid format: %s (must be 'text' or 'json')", s)
	}
}

// filterByTypes keeps only decisions whose record category matches one of
// the requested types. An empty filter keeps everything.
func filterByTypes(decisions []match.Decision, types []string) ([]match.Decision, error) {
	if len(types) == 0 {
		return decisions, nil
	}

	want := make(map[event.Category]bool, len(types))
	for _, t := range types {
		matched := false
		for _, cat := range event.Categories() {
			if strings.EqualFold(strings.TrimSpace(t), string(cat)) {
				want[cat] = true
				matched = true
				break
			}
		}
		if !matched {
			return nil, fmt.Errorf("unknown event type: %s", t)
		}
	}

	filtered := make([]match.Decision, 0, len(decisions))
	for _, d := range decisions {
		if want[d.Record.Category] {
			filtered = append(filtered, d)
		}
	}
	return filtered, nil
}

// scanOutput is the JSON shape of a scan run. Colors carry the configured
// per-category display table for downstream consumers.
type scanOutput struct {
	CheckedAt time.Time         `json:"checked_at"`
	Count     int               `json:"count"`
	Decisions []match.Decision  `json:"decisions"`
	Colors    map[string]string `json:"colors,omitempty"`
}

// writeDecisions renders the decision list.
func writeDecisions(w io.Writer, decisions []match.Decision, cfg *config.Config, format OutputFormat) error {
	if format == FormatJSON {
		out := scanOutput{
			CheckedAt: time.Now().UTC(),
			Count:     len(decisions),
			Decisions: decisions,
			Colors:    cfg.Colors,
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	if len(decisions) == 0 {
		fmt.Fprintln(w, "No events found.")
		return nil
	}

	byAction := map[match.Action][]match.Decision{}
	for _, d := range decisions {
		byAction[d.Action] = append(byAction[d.Action], d)
	}

	order := []struct {
		action match.Action
		header string
	}{
		{match.ActionCreate, "New events"},
		{match.ActionUpdate, "Update candidates"},
		{match.ActionSkip, "Duplicates"},
		{match.ActionUnschedulable, "Unschedulable"},
	}

	for _, section := range order {
		group := byAction[section.action]
		if len(group) == 0 {
			continue
		}
		fmt.Fprintf(w, "%s (%d):\n", section.header, len(group))
		for _, d := range group {
			fmt.Fprintf(w, "  • %s [%s]", d.Record.Title, d.Record.Category)
			if d.Record.HasTimes() {
				if d.Record.IsMultiDay {
					fmt.Fprintf(w, " — %s to %s", d.Record.DisplayStart, d.Record.DisplayEnd)
				} else {
					fmt.Fprintf(w, " — %s, %s to %s", d.Record.DisplayStart,
						d.Record.DisplayStartTime, d.Record.DisplayEndTime)
				}
			}
			if d.Record.Bonus != "" {
				fmt.Fprintf(w, " (Bonus: %s)", d.Record.Bonus)
			}
			fmt.Fprintln(w)
			if d.Action == match.ActionUpdate {
				fmt.Fprintf(w, "    existing: %q (%s)\n", d.ExistingTitle, d.ExistingID)
			} else if d.Reason != "" && d.Action != match.ActionCreate {
				fmt.Fprintf(w, "    reason: %s\n", d.Reason)
			}
		}
		fmt.Fprintln(w)
	}
	return nil
}

// writeOutcomes renders the results of a sync run.
func writeOutcomes(w io.Writer, outcomes []Outcome, format OutputFormat) error {
	if format == FormatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(outcomes)
	}

	counts := map[string]int{}
	for _, out := range outcomes {
		counts[out.Status]++
		fmt.Fprintf(w, "%-8s %s", out.Status, out.Title)
		if out.Reason != "" {
			fmt.Fprintf(w, " (%s)", out.Reason)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "\n%d created, %d replaced, %d pending, %d skipped\n",
		counts["created"], counts["replaced"], counts["pending"], counts["skipped"])
	return nil
}

package event

import "strings"

// Category is the event type derived from the title.
type Category string

const (
	CategoryRaid         Category = "Raid"
	CategoryCommunityDay Category = "Community Day"
	CategorySpotlight    Category = "Spotlight"
	CategoryBattle       Category = "Battle"
	CategoryHatchDay     Category = "Hatch Day"
	CategoryMega         Category = "Mega"
	CategoryTicket       Category = "Ticket"
	CategoryShadow       Category = "Shadow"
	CategoryGeneral      Category = "General"
)

// categoryRule maps title keywords to a category. Rules are checked in
// order and the first hit wins, so a title containing several keywords
// ("Shadow Raid Hour") resolves to the earliest rule (Raid).
type categoryRule struct {
	keywords []string
	category Category
}

var categoryRules = []categoryRule{
	{[]string{"raid", "raids"}, CategoryRaid},
	{[]string{"community day"}, CategoryCommunityDay},
	{[]string{"spotlight"}, CategorySpotlight},
	{[]string{"battle", "league"}, CategoryBattle},
	{[]string{"hatch"}, CategoryHatchDay},
	{[]string{"mega"}, CategoryMega},
	{[]string{"power up ticket", "ticket"}, CategoryTicket},
	{[]string{"shadow"}, CategoryShadow},
}

// Categorize maps a free-text title to a category.
func Categorize(title string) Category {
	lower := strings.ToLower(title)
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.category
			}
		}
	}
	return CategoryGeneral
}

// ApplyParentHint upgrades a General classification using a class hint
// from the node's parent element. A keyword-derived category is never
// overridden.
func (r *Record) ApplyParentHint(parentClass string) {
	if r.Category != CategoryGeneral {
		return
	}
	lower := strings.ToLower(parentClass)
	switch {
	case strings.Contains(lower, "raid"):
		r.Category = CategoryRaid
	case strings.Contains(lower, "battle"):
		r.Category = CategoryBattle
	}
}

// Categories lists every category in rule order, General last. Used for
// validating CLI filters and for the configured color table.
func Categories() []Category {
	return []Category{
		CategoryRaid, CategoryCommunityDay, CategorySpotlight,
		CategoryBattle, CategoryHatchDay, CategoryMega,
		CategoryTicket, CategoryShadow, CategoryGeneral,
	}
}

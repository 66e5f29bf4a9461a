package event

import "testing"

func TestCategorize(t *testing.T) {
	tests := []struct {
		title string
		want  Category
	}{
		{"Giovanni Special Research", CategoryGeneral},
		{"Raid Hour: Mewtwo", CategoryRaid},
		{"Community Day: Eevee", CategoryCommunityDay},
		{"Magikarp Spotlight Hour", CategorySpotlight},
		{"GO Battle League: Great League", CategoryBattle},
		{"Hatch Day: Riolu", CategoryHatchDay},
		{"Mega Gengar in Mega Raids", CategoryRaid}, // raid rule precedes mega
		{"Mega Moment", CategoryMega},
		{"Power Up Ticket Bundle", CategoryTicket},
		{"Shadow Mewtwo Returns", CategoryShadow},
		// Order matters: earlier rules win over later keywords.
		{"Shadow Raid Hour", CategoryRaid},
		{"Spotlight Hour Battle Bonus", CategorySpotlight},
	}

	for _, tc := range tests {
		if got := Categorize(tc.title); got != tc.want {
			t.Errorf("Categorize(%q) = %s, want %s", tc.title, got, tc.want)
		}
	}
}

func TestApplyParentHint(t *testing.T) {
	rec := NewRecord("Weekly Rotation", "https://example.com/events/x/", 0)
	if rec.Category != CategoryGeneral {
		t.Fatalf("setup: expected General, got %s", rec.Category)
	}

	rec.ApplyParentHint("raid-grid column")
	if rec.Category != CategoryRaid {
		t.Errorf("hint should upgrade General to Raid, got %s", rec.Category)
	}

	// A keyword-derived category is never overridden.
	spotlight := NewRecord("Magikarp Spotlight Hour", "https://example.com/events/y/", 1)
	spotlight.ApplyParentHint("raid-grid column")
	if spotlight.Category != CategorySpotlight {
		t.Errorf("hint must not override keyword category, got %s", spotlight.Category)
	}

	battle := NewRecord("Weekend Showcase", "https://example.com/events/z/", 2)
	battle.ApplyParentHint("battle-section")
	if battle.Category != CategoryBattle {
		t.Errorf("battle hint should upgrade General, got %s", battle.Category)
	}
}

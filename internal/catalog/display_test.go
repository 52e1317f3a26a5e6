package catalog

import (
	"testing"

	"github.com/deanAirre/saisoku-admin/pkg/models"
)

func TestResolveDisplayMode(t *testing.T) {
	grouped := models.DisplayGrouped
	bogus := models.DisplayMode("banner")
	rules := DefaultDisplayRules()

	cases := []struct {
		name     string
		explicit *models.DisplayMode
		category string
		want     models.DisplayMode
	}{
		{"explicit wins over rule", &grouped, "Boneka", models.DisplayGrouped},
		{"invalid explicit falls through", &bogus, "Tas", models.DisplayGrouped},
		{"rule grouped", nil, "Tas", models.DisplayGrouped},
		{"rule individual", nil, "Boneka", models.DisplayIndividual},
		{"unknown category defaults individual", nil, "Poster", models.DisplayIndividual},
		{"empty category defaults individual", nil, "", models.DisplayIndividual},
	}
	for _, tc := range cases {
		if got := ResolveDisplayMode(tc.explicit, tc.category, rules); got != tc.want {
			t.Fatalf("%s: got %s want %s", tc.name, got, tc.want)
		}
	}
}

func TestDisplayRulesMerge(t *testing.T) {
	base := DefaultDisplayRules()
	merged := base.Merge(DisplayRules{
		"Boneka": models.DisplayGrouped, // DB override flips the legacy rule
		"Poster": models.DisplayIndividual,
	})

	if merged["Boneka"] != models.DisplayGrouped {
		t.Fatalf("override lost: Boneka is %s", merged["Boneka"])
	}
	if merged["Tas"] != models.DisplayGrouped {
		t.Fatalf("base entry lost: Tas is %s", merged["Tas"])
	}
	if merged["Poster"] != models.DisplayIndividual {
		t.Fatal("new entry missing")
	}
	if base["Boneka"] != models.DisplayIndividual {
		t.Fatal("Merge must not mutate the receiver")
	}
}

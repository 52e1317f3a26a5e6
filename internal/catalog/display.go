package catalog

import "github.com/deanAirre/saisoku-admin/pkg/models"

// DisplayRules maps a category label to the display mode its products fall
// back to when they carry no explicit display_mode. It is injected wherever
// it is consumed so tests and callers can substitute their own table.
type DisplayRules map[string]models.DisplayMode

// DefaultDisplayRules is the legacy static table for catalogs created before
// categories carried a default_display_mode of their own.
func DefaultDisplayRules() DisplayRules {
	return DisplayRules{
		"Tas":       models.DisplayGrouped,
		"Boneka":    models.DisplayIndividual,
		"Gelang":    models.DisplayGrouped,
		"Gantungan": models.DisplayIndividual,
	}
}

// Merge returns a copy of r with entries from overrides layered on top.
func (r DisplayRules) Merge(overrides DisplayRules) DisplayRules {
	out := make(DisplayRules, len(r)+len(overrides))
	for k, v := range r {
		out[k] = v
	}
	for k, v := range overrides {
		out[k] = v
	}
	return out
}

// ResolveDisplayMode decides how one product displays. An explicit, valid
// display_mode wins; otherwise the category label is looked up in rules;
// anything unresolved is individual. Never fails.
func ResolveDisplayMode(explicit *models.DisplayMode, category string, rules DisplayRules) models.DisplayMode {
	if explicit != nil && explicit.Valid() {
		return *explicit
	}
	if m, ok := rules[category]; ok && m.Valid() {
		return m
	}
	return models.DisplayIndividual
}

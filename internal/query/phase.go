package query

import (
	"sort"
	"strings"

	"github.com/winatecommerce96/emailpilot-rag-sub000/internal/transform"
)

// Campaign phases. A phase is a coarse category pre-filter applied before
// ranking; every phase includes the general category so mis-categorized
// content never produces a hard-zero result.
const (
	PhaseDiscovery = "discovery"
	PhaseVisual    = "visual"
	PhaseContent   = "content"
	PhaseReview    = "review"
)

var phaseCategories = map[string][]string{
	PhaseDiscovery: {
		transform.CategoryMeeting,
		transform.CategoryFeedback,
		transform.CategoryBrand,
		transform.CategoryGeneral,
	},
	PhaseVisual: {
		transform.CategoryImage,
		transform.CategoryDesign,
		transform.CategoryBrand,
		transform.CategoryGeneral,
	},
	PhaseContent: {
		transform.CategoryCopy,
		transform.CategoryEmail,
		transform.CategoryGeneral,
	},
	PhaseReview: {
		transform.CategoryFeedback,
		transform.CategoryDecision,
		transform.CategoryGeneral,
	},
}

// Phases returns the known phase names, sorted.
func Phases() []string {
	names := make([]string, 0, len(phaseCategories))
	for name := range phaseCategories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CategoriesForPhase resolves a phase name, case-insensitively, to its
// category filter set. An empty phase means no phase filter and resolves to
// the full taxonomy. Unknown phases return ok=false; callers must reject
// them rather than silently widening the filter.
func CategoriesForPhase(phase string) ([]string, bool) {
	if phase == "" {
		return transform.Categories(), true
	}
	cats, ok := phaseCategories[strings.ToLower(phase)]
	return cats, ok
}

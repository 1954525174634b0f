package query

import (
	"testing"

	"github.com/winatecommerce96/emailpilot-rag-sub000/internal/transform"
)

func TestCategoriesForPhase(t *testing.T) {
	for _, phase := range Phases() {
		t.Run(phase, func(t *testing.T) {
			cats, ok := CategoriesForPhase(phase)
			if !ok {
				t.Fatalf("CategoriesForPhase(%q) not ok", phase)
			}
			hasGeneral := false
			for _, c := range cats {
				if !transform.ValidCategory(c) {
					t.Errorf("phase %q contains unknown category %q", phase, c)
				}
				if c == transform.CategoryGeneral {
					hasGeneral = true
				}
			}
			if !hasGeneral {
				t.Errorf("phase %q must include the general catch-all", phase)
			}
		})
	}
}

func TestCategoriesForPhase_CaseInsensitive(t *testing.T) {
	upper, ok := CategoriesForPhase("VISUAL")
	if !ok {
		t.Fatal(`CategoriesForPhase("VISUAL") not ok`)
	}
	lower, _ := CategoriesForPhase(PhaseVisual)
	if len(upper) != len(lower) {
		t.Errorf("case-insensitive lookup differs: %v vs %v", upper, lower)
	}
}

func TestCategoriesForPhase_EmptyMeansAll(t *testing.T) {
	cats, ok := CategoriesForPhase("")
	if !ok {
		t.Fatal(`CategoriesForPhase("") not ok`)
	}
	if len(cats) != len(transform.Categories()) {
		t.Errorf("empty phase resolved to %d categories, want full taxonomy %d", len(cats), len(transform.Categories()))
	}
}

func TestCategoriesForPhase_Unknown(t *testing.T) {
	if _, ok := CategoriesForPhase("launch"); ok {
		t.Error(`CategoriesForPhase("launch") ok = true, want rejection`)
	}
}

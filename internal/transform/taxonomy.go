package transform

// Closed category taxonomy. The indexer and the query layer share this set;
// anything a transformer emits outside it is folded into CategoryGeneral.
const (
	CategoryImage    = "image"
	CategoryBrand    = "brand"
	CategoryEmail    = "email"
	CategoryCopy     = "copy"
	CategoryDesign   = "design"
	CategoryFeedback = "feedback"
	CategoryMeeting  = "meeting"
	CategoryDecision = "decision"
	CategoryGeneral  = "general"
)

var categories = map[string]bool{
	CategoryImage:    true,
	CategoryBrand:    true,
	CategoryEmail:    true,
	CategoryCopy:     true,
	CategoryDesign:   true,
	CategoryFeedback: true,
	CategoryMeeting:  true,
	CategoryDecision: true,
	CategoryGeneral:  true,
}

// Categories returns the full closed taxonomy.
func Categories() []string {
	return []string{
		CategoryImage, CategoryBrand, CategoryEmail, CategoryCopy,
		CategoryDesign, CategoryFeedback, CategoryMeeting, CategoryDecision,
		CategoryGeneral,
	}
}

// ValidCategory reports whether c is in the closed taxonomy.
func ValidCategory(c string) bool {
	return categories[c]
}

// NormalizeCategory maps anything outside the taxonomy to general.
func NormalizeCategory(c string) string {
	if categories[c] {
		return c
	}
	return CategoryGeneral
}

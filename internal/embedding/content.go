package embedding

import (
	"fmt"
	"strings"

	"github.com/winatecommerce96/emailpilot-rag-sub000/internal/transform"
)

// BuildDocumentText creates the text representation of a document for
// embedding. Category-specific prefixes give the model coarse type context;
// degraded items embed only what was safe to keep.
func BuildDocumentText(meta transform.Metadata) string {
	var b strings.Builder

	switch meta.Category {
	case transform.CategoryImage, transform.CategoryBrand:
		fmt.Fprintf(&b, "Visual asset: %s", meta.Title)
	case transform.CategoryEmail, transform.CategoryCopy:
		fmt.Fprintf(&b, "Marketing copy: %s", meta.Title)
	case transform.CategoryMeeting, transform.CategoryDecision:
		fmt.Fprintf(&b, "Meeting record: %s", meta.Title)
	case transform.CategoryDesign, transform.CategoryFeedback:
		fmt.Fprintf(&b, "Design artifact: %s", meta.Title)
	default:
		fmt.Fprintf(&b, "Asset: %s", meta.Title)
	}

	if meta.Summary != "" {
		fmt.Fprintf(&b, " — %s", meta.Summary)
	}
	if len(meta.Keywords) > 0 {
		fmt.Fprintf(&b, " [%s]", strings.Join(meta.Keywords, ", "))
	}
	return b.String()
}

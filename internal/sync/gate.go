package sync

import (
	"time"

	"github.com/winatecommerce96/emailpilot-rag-sub000/internal/connector"
)

// Decision is the dedup gate's verdict for one candidate.
type Decision int

const (
	// Skip: the item is already indexed at this version.
	Skip Decision = iota
	// Process: the item is new or changed since it was last indexed.
	Process
	// Reprocess: a force-full run re-indexes regardless of history.
	Reprocess
)

func (d Decision) String() string {
	switch d {
	case Skip:
		return "skip"
	case Process:
		return "process"
	case Reprocess:
		return "reprocess"
	default:
		return "unknown"
	}
}

// ShouldProcess decides whether a candidate needs (re)processing against
// the dedup set. The set, not the cursor, is authoritative: two items can
// share the cursor timestamp, so candidacy alone proves nothing.
func ShouldProcess(forceFull bool, processed map[string]time.Time, item connector.CandidateItem) Decision {
	if forceFull {
		return Reprocess
	}
	recorded, ok := processed[item.SourceID]
	if !ok {
		return Process
	}
	if item.ModifiedAt.After(recorded) {
		return Process
	}
	return Skip
}

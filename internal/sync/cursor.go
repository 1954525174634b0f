package sync

import "time"

// AdvanceCursor computes the next cursor from the previous one and the
// modification times of items that were successfully processed or already
// processed this run. Failed items never contribute: the cursor must not
// move past work that still has to happen. The cursor is forward-only; with
// no eligible timestamps it stays where it was.
func AdvanceCursor(prev *time.Time, eligible []time.Time) *time.Time {
	next := prev
	for _, t := range eligible {
		if next == nil || t.After(*next) {
			tt := t
			next = &tt
		}
	}
	return next
}

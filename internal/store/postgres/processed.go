package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// GetProcessedItems returns the dedup set for a scope as a map of
// source_id -> recorded modified_at.
func (q *Queries) GetProcessedItems(ctx context.Context, scopeID uuid.UUID) (map[string]time.Time, error) {
	rows, err := q.db.Query(ctx,
		`SELECT source_id, modified_at FROM processed_items WHERE scope_id = $1`, scopeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make(map[string]time.Time)
	for rows.Next() {
		var sourceID string
		var modifiedAt time.Time
		if err := rows.Scan(&sourceID, &modifiedAt); err != nil {
			return nil, err
		}
		items[sourceID] = modifiedAt
	}
	return items, rows.Err()
}

// MarkProcessed upserts a batch of dedup entries. Re-processing an item
// refreshes its recorded modified_at and processed_at.
func (q *Queries) MarkProcessed(ctx context.Context, scopeID uuid.UUID, items []ProcessedItem) error {
	now := time.Now()
	for _, it := range items {
		_, err := q.db.Exec(ctx,
			`INSERT INTO processed_items (scope_id, source_id, modified_at, processed_at)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (scope_id, source_id) DO UPDATE SET
			   modified_at = EXCLUDED.modified_at,
			   processed_at = EXCLUDED.processed_at`,
			scopeID, it.SourceID, it.ModifiedAt, now)
		if err != nil {
			return err
		}
	}
	return nil
}

// PruneProcessed drops dedup entries older than maxAge, keeping the set
// bounded. Items that old are well behind the cursor, so dropping them
// cannot cause re-processing.
func (q *Queries) PruneProcessed(ctx context.Context, scopeID uuid.UUID, maxAge time.Duration) (int64, error) {
	tag, err := q.db.Exec(ctx,
		`DELETE FROM processed_items WHERE scope_id = $1 AND processed_at < $2`,
		scopeID, time.Now().Add(-maxAge))
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

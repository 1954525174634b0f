package postgres

import (
	"context"

	"github.com/google/uuid"
)

// AppendLogEntries writes a batch of processing-log records. Entries are
// operator-facing only; a failure here must not fail the run.
func (q *Queries) AppendLogEntries(ctx context.Context, entries []LogEntry) error {
	for _, e := range entries {
		_, err := q.db.Exec(ctx,
			`INSERT INTO processing_log (scope_id, run_id, source_id, outcome, detail)
			 VALUES ($1, $2, $3, $4, $5)`,
			e.ScopeID, e.RunID, e.SourceID, e.Outcome, e.Detail)
		if err != nil {
			return err
		}
	}
	return nil
}

// TrimLog deletes the oldest entries beyond cap for a scope, keeping the
// log a bounded ring.
func (q *Queries) TrimLog(ctx context.Context, scopeID uuid.UUID, cap int) error {
	_, err := q.db.Exec(ctx,
		`DELETE FROM processing_log
		 WHERE scope_id = $1 AND id NOT IN (
		   SELECT id FROM processing_log
		   WHERE scope_id = $1 ORDER BY id DESC LIMIT $2
		 )`, scopeID, cap)
	return err
}

// ListLogEntries returns the newest log entries for a scope.
func (q *Queries) ListLogEntries(ctx context.Context, scopeID uuid.UUID, limit int32) ([]LogEntry, error) {
	rows, err := q.db.Query(ctx,
		`SELECT id, scope_id, run_id, source_id, outcome, detail, created_at
		 FROM processing_log WHERE scope_id = $1
		 ORDER BY id DESC LIMIT $2`, scopeID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []LogEntry
	for rows.Next() {
		var e LogEntry
		if err := rows.Scan(&e.ID, &e.ScopeID, &e.RunID, &e.SourceID, &e.Outcome, &e.Detail, &e.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

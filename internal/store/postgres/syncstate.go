package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// GetSyncState loads the sync state for a scope. A scope that has never
// synced gets a zero-value state rather than an error.
func (q *Queries) GetSyncState(ctx context.Context, scopeID uuid.UUID) (SyncState, error) {
	row := q.db.QueryRow(ctx,
		`SELECT scope_id, cursor_at, stats, last_run_at, last_error
		 FROM sync_states WHERE scope_id = $1`, scopeID)

	var s SyncState
	err := row.Scan(&s.ScopeID, &s.Cursor, &s.Stats, &s.LastRunAt, &s.LastError)
	if err == pgx.ErrNoRows {
		return SyncState{ScopeID: scopeID}, nil
	}
	if err != nil {
		return SyncState{}, err
	}
	return s, nil
}

// UpsertSyncState persists the full state record in one statement. The
// orchestrator calls this exactly once per run, at the final checkpoint.
func (q *Queries) UpsertSyncState(ctx context.Context, s SyncState) error {
	_, err := q.db.Exec(ctx,
		`INSERT INTO sync_states (scope_id, cursor_at, stats, last_run_at, last_error)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (scope_id) DO UPDATE SET
		   cursor_at = EXCLUDED.cursor_at,
		   stats = EXCLUDED.stats,
		   last_run_at = EXCLUDED.last_run_at,
		   last_error = EXCLUDED.last_error`,
		s.ScopeID, s.Cursor, s.Stats, s.LastRunAt, s.LastError)
	return err
}

// ClearSyncState removes the state record and the dedup set for a scope,
// forcing the next run to re-walk every candidate. Indexed documents are
// intentionally left in place.
func (q *Queries) ClearSyncState(ctx context.Context, scopeID uuid.UUID) error {
	if _, err := q.db.Exec(ctx, `DELETE FROM sync_states WHERE scope_id = $1`, scopeID); err != nil {
		return err
	}
	_, err := q.db.Exec(ctx, `DELETE FROM processed_items WHERE scope_id = $1`, scopeID)
	return err
}

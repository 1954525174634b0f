package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type CreateSyncRunParams struct {
	ScopeID   uuid.UUID
	ForceFull bool
}

func (q *Queries) CreateSyncRun(ctx context.Context, arg CreateSyncRunParams) (SyncRun, error) {
	row := q.db.QueryRow(ctx,
		`INSERT INTO sync_runs (id, scope_id, force_full)
		 VALUES ($1, $2, $3)
		 RETURNING id, scope_id, status, force_full, discovered, indexed, skipped, failed,
		           error_message, started_at, finished_at, created_at`,
		uuid.New(), arg.ScopeID, arg.ForceFull)
	return scanSyncRun(row)
}

// MarkRunRunning stamps started_at and flips status to running.
func (q *Queries) MarkRunRunning(ctx context.Context, runID uuid.UUID) error {
	_, err := q.db.Exec(ctx,
		`UPDATE sync_runs SET status = $2, started_at = $3 WHERE id = $1`,
		runID, RunStatusRunning, time.Now())
	return err
}

type FinishRunParams struct {
	RunID        uuid.UUID
	Status       string
	Discovered   int
	Indexed      int
	Skipped      int
	Failed       int
	ErrorMessage *string
}

func (q *Queries) FinishRun(ctx context.Context, arg FinishRunParams) error {
	_, err := q.db.Exec(ctx,
		`UPDATE sync_runs SET
		   status = $2, discovered = $3, indexed = $4, skipped = $5, failed = $6,
		   error_message = $7, finished_at = $8
		 WHERE id = $1`,
		arg.RunID, arg.Status, arg.Discovered, arg.Indexed, arg.Skipped, arg.Failed,
		arg.ErrorMessage, time.Now())
	return err
}

func (q *Queries) GetSyncRun(ctx context.Context, runID uuid.UUID) (SyncRun, error) {
	row := q.db.QueryRow(ctx,
		`SELECT id, scope_id, status, force_full, discovered, indexed, skipped, failed,
		        error_message, started_at, finished_at, created_at
		 FROM sync_runs WHERE id = $1`, runID)
	return scanSyncRun(row)
}

// LatestSyncRun returns the most recently created run for a scope.
func (q *Queries) LatestSyncRun(ctx context.Context, scopeID uuid.UUID) (SyncRun, error) {
	row := q.db.QueryRow(ctx,
		`SELECT id, scope_id, status, force_full, discovered, indexed, skipped, failed,
		        error_message, started_at, finished_at, created_at
		 FROM sync_runs WHERE scope_id = $1
		 ORDER BY created_at DESC LIMIT 1`, scopeID)
	return scanSyncRun(row)
}

func (q *Queries) ListSyncRuns(ctx context.Context, scopeID uuid.UUID, limit, offset int32) ([]SyncRun, error) {
	rows, err := q.db.Query(ctx,
		`SELECT id, scope_id, status, force_full, discovered, indexed, skipped, failed,
		        error_message, started_at, finished_at, created_at
		 FROM sync_runs WHERE scope_id = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		scopeID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []SyncRun
	for rows.Next() {
		r, err := scanSyncRun(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

// HasActiveRun reports whether a scope has a run in queued or running state.
// Used by the trigger surface to avoid piling up duplicate jobs; the Valkey
// run lock remains the authoritative guard.
func (q *Queries) HasActiveRun(ctx context.Context, scopeID uuid.UUID) (bool, error) {
	var exists bool
	err := q.db.QueryRow(ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM sync_runs
		   WHERE scope_id = $1 AND status IN ($2, $3)
		 )`, scopeID, RunStatusQueued, RunStatusRunning).Scan(&exists)
	return exists, err
}

func scanSyncRun(row rowScanner) (SyncRun, error) {
	var r SyncRun
	err := row.Scan(
		&r.ID, &r.ScopeID, &r.Status, &r.ForceFull,
		&r.Discovered, &r.Indexed, &r.Skipped, &r.Failed,
		&r.ErrorMessage, &r.StartedAt, &r.FinishedAt, &r.CreatedAt,
	)
	if err != nil {
		return SyncRun{}, err
	}
	return r, nil
}

package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type CreateScopeParams struct {
	TenantID      string
	SourceKind    string
	SourceLocator string
	SyncInterval  time.Duration
}

func (q *Queries) CreateScope(ctx context.Context, arg CreateScopeParams) (Scope, error) {
	if arg.SyncInterval <= 0 {
		arg.SyncInterval = 15 * time.Minute
	}
	row := q.db.QueryRow(ctx,
		`INSERT INTO scopes (id, tenant_id, source_kind, source_locator, sync_interval_s)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, tenant_id, source_kind, source_locator, sync_interval_s, created_at`,
		uuid.New(), arg.TenantID, arg.SourceKind, arg.SourceLocator, int(arg.SyncInterval.Seconds()))
	return scanScope(row)
}

func (q *Queries) GetScope(ctx context.Context, id uuid.UUID) (Scope, error) {
	row := q.db.QueryRow(ctx,
		`SELECT id, tenant_id, source_kind, source_locator, sync_interval_s, created_at
		 FROM scopes WHERE id = $1`, id)
	return scanScope(row)
}

func (q *Queries) ListScopes(ctx context.Context) ([]Scope, error) {
	rows, err := q.db.Query(ctx,
		`SELECT id, tenant_id, source_kind, source_locator, sync_interval_s, created_at
		 FROM scopes ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Scope
	for rows.Next() {
		s, err := scanScope(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

func (q *Queries) DeleteScope(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, `DELETE FROM scopes WHERE id = $1`, id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanScope(row rowScanner) (Scope, error) {
	var s Scope
	var intervalSecs int
	if err := row.Scan(&s.ID, &s.TenantID, &s.SourceKind, &s.SourceLocator, &intervalSecs, &s.CreatedAt); err != nil {
		return Scope{}, err
	}
	s.SyncInterval = time.Duration(intervalSecs) * time.Second
	return s, nil
}

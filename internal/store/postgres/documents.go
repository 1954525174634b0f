package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"
)

type UpsertDocumentParams struct {
	ID          uuid.UUID
	ScopeID     uuid.UUID
	TenantID    string
	SourceID    string
	Category    string
	Title       string
	Summary     string
	Keywords    []string
	Metadata    map[string]any
	Confidence  float32
	Method      string
	Degraded    bool
	ArtifactRef *string
	Embedding   *pgvector.Vector
	ModifiedAt  time.Time
}

// UpsertDocument replaces the document for (scope, source_id) by primary
// key. The id is derived deterministically by the sink, so retries land on
// the same row and can never duplicate.
func (q *Queries) UpsertDocument(ctx context.Context, arg UpsertDocumentParams) error {
	_, err := q.db.Exec(ctx,
		`INSERT INTO documents
		   (id, scope_id, tenant_id, source_id, category, title, summary, keywords,
		    metadata, confidence, method, degraded, artifact_ref, embedding, modified_at, indexed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		 ON CONFLICT (id) DO UPDATE SET
		   category = EXCLUDED.category,
		   title = EXCLUDED.title,
		   summary = EXCLUDED.summary,
		   keywords = EXCLUDED.keywords,
		   metadata = EXCLUDED.metadata,
		   confidence = EXCLUDED.confidence,
		   method = EXCLUDED.method,
		   degraded = EXCLUDED.degraded,
		   artifact_ref = EXCLUDED.artifact_ref,
		   embedding = EXCLUDED.embedding,
		   modified_at = EXCLUDED.modified_at,
		   indexed_at = EXCLUDED.indexed_at`,
		arg.ID, arg.ScopeID, arg.TenantID, arg.SourceID, arg.Category,
		arg.Title, arg.Summary, arg.Keywords, arg.Metadata, arg.Confidence,
		arg.Method, arg.Degraded, arg.ArtifactRef, arg.Embedding,
		arg.ModifiedAt, time.Now())
	return err
}

// DeleteStaleDocuments removes documents (and their dedup entries) whose
// source item no longer exists. Only called on force-full runs, where
// liveSourceIDs is the complete candidate listing.
func (q *Queries) DeleteStaleDocuments(ctx context.Context, scopeID uuid.UUID, liveSourceIDs []string) (int64, error) {
	tag, err := q.db.Exec(ctx,
		`DELETE FROM documents
		 WHERE scope_id = $1 AND NOT (source_id = ANY($2::text[]))`,
		scopeID, liveSourceIDs)
	if err != nil {
		return 0, err
	}
	_, err = q.db.Exec(ctx,
		`DELETE FROM processed_items
		 WHERE scope_id = $1 AND NOT (source_id = ANY($2::text[]))`,
		scopeID, liveSourceIDs)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// SearchResult is one ranked hit from either search path.
type SearchResult struct {
	Document Document `json:"document"`
	Score    float64  `json:"relevance_score"`
}

type SemanticSearchParams struct {
	TenantID       string
	Categories     []string
	QueryEmbedding pgvector.Vector
	Limit          int32
}

// SemanticSearch ranks documents by cosine similarity within a tenant and
// category set. The tenant predicate is part of the statement itself, so a
// query can never cross tenants.
func (q *Queries) SemanticSearch(ctx context.Context, arg SemanticSearchParams) ([]SearchResult, error) {
	rows, err := q.db.Query(ctx,
		`SELECT id, scope_id, tenant_id, source_id, category, title, summary, keywords,
		        metadata, confidence, method, degraded, artifact_ref, modified_at, indexed_at,
		        1 - (embedding <=> $3) AS score
		 FROM documents
		 WHERE tenant_id = $1 AND category = ANY($2::text[]) AND embedding IS NOT NULL
		 ORDER BY embedding <=> $3
		 LIMIT $4`,
		arg.TenantID, arg.Categories, arg.QueryEmbedding, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSearchResults(rows)
}

type LexicalSearchParams struct {
	TenantID   string
	Categories []string
	Query      string
	Limit      int32
}

// LexicalSearch is the ranking path used when no embedder is configured or
// a document carries no embedding. Plain keyword matching over title,
// summary and keywords.
func (q *Queries) LexicalSearch(ctx context.Context, arg LexicalSearchParams) ([]SearchResult, error) {
	rows, err := q.db.Query(ctx,
		`SELECT id, scope_id, tenant_id, source_id, category, title, summary, keywords,
		        metadata, confidence, method, degraded, artifact_ref, modified_at, indexed_at,
		        (CASE WHEN title ILIKE '%' || $3 || '%' THEN 0.6 ELSE 0 END
		         + CASE WHEN summary ILIKE '%' || $3 || '%' THEN 0.3 ELSE 0 END
		         + CASE WHEN $3 ILIKE ANY(keywords) THEN 0.1 ELSE 0 END) AS score
		 FROM documents
		 WHERE tenant_id = $1 AND category = ANY($2::text[])
		   AND (title ILIKE '%' || $3 || '%'
		        OR summary ILIKE '%' || $3 || '%'
		        OR $3 ILIKE ANY(keywords))
		 ORDER BY score DESC, indexed_at DESC
		 LIMIT $4`,
		arg.TenantID, arg.Categories, arg.Query, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSearchResults(rows)
}

func scanSearchResults(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]SearchResult, error) {
	var items []SearchResult
	for rows.Next() {
		var r SearchResult
		d := &r.Document
		if err := rows.Scan(
			&d.ID, &d.ScopeID, &d.TenantID, &d.SourceID, &d.Category,
			&d.Title, &d.Summary, &d.Keywords, &d.Metadata, &d.Confidence,
			&d.Method, &d.Degraded, &d.ArtifactRef, &d.ModifiedAt, &d.IndexedAt,
			&r.Score,
		); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

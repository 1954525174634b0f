package sink

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"time"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/winatecommerce96/emailpilot-rag-sub000/internal/embedding"
	"github.com/winatecommerce96/emailpilot-rag-sub000/internal/store/postgres"
	"github.com/winatecommerce96/emailpilot-rag-sub000/internal/transform"
)

// docNamespace seeds deterministic document IDs. Never change it: doc IDs
// derive from hash(namespace, scope, source_id) and re-keying would duplicate
// every document on the next run.
var docNamespace = uuid.MustParse("9f2c1b4e-5a77-4a0e-8c43-6d1f0b2a9e31")

// DocumentID derives the index ID for (scope, source_id). Deterministic, so
// repeated writes for the same source item always replace the same row.
func DocumentID(scopeID uuid.UUID, sourceID string) uuid.UUID {
	return uuid.NewSHA1(docNamespace, []byte(scopeID.String()+"/"+sourceID))
}

// ArtifactPath derives the blob key for an item's stored artifact. Same
// determinism argument as DocumentID: retried writes may overwrite, never
// orphan a duplicate.
func ArtifactPath(scopeID uuid.UUID, sourceID, name string) string {
	return fmt.Sprintf("scopes/%s/%s%s", scopeID, DocumentID(scopeID, sourceID), path.Ext(name))
}

// DocumentStore is the index half of the sink.
type DocumentStore interface {
	UpsertDocument(ctx context.Context, arg postgres.UpsertDocumentParams) error
}

// ArtifactStore is the blob half of the sink.
type ArtifactStore interface {
	PutObject(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error
}

// Document is one write request: the transformed item plus its raw content.
type Document struct {
	ScopeID     uuid.UUID
	TenantID    string
	SourceID    string
	Name        string
	ModifiedAt  time.Time
	Result      transform.Result
	Content     []byte
	ContentType string
}

// Writer persists one logical document per source item: artifact first,
// metadata upsert second. If the artifact lands but the upsert fails the
// item is failed for this run and retried next run; the deterministic
// artifact path makes that retry overwrite rather than duplicate.
type Writer struct {
	docs      DocumentStore
	artifacts ArtifactStore
	embedder  embedding.Embedder
	logger    *slog.Logger
}

// NewWriter creates a Writer. artifacts and embedder may be nil; documents
// are then indexed without a stored artifact or without a vector.
func NewWriter(docs DocumentStore, artifacts ArtifactStore, embedder embedding.Embedder, logger *slog.Logger) *Writer {
	return &Writer{docs: docs, artifacts: artifacts, embedder: embedder, logger: logger}
}

func (w *Writer) Write(ctx context.Context, doc Document) error {
	docID := DocumentID(doc.ScopeID, doc.SourceID)

	var artifactRef *string
	if w.artifacts != nil && len(doc.Content) > 0 {
		p := ArtifactPath(doc.ScopeID, doc.SourceID, doc.Name)
		if err := w.artifacts.PutObject(ctx, p, bytes.NewReader(doc.Content), int64(len(doc.Content)), doc.ContentType); err != nil {
			return fmt.Errorf("write artifact %s: %w", p, err)
		}
		artifactRef = &p
	}

	meta := doc.Result.Metadata
	params := postgres.UpsertDocumentParams{
		ID:          docID,
		ScopeID:     doc.ScopeID,
		TenantID:    doc.TenantID,
		SourceID:    doc.SourceID,
		Category:    transform.NormalizeCategory(meta.Category),
		Title:       meta.Title,
		Summary:     meta.Summary,
		Keywords:    meta.Keywords,
		Metadata:    meta.Extra,
		Confidence:  doc.Result.Confidence,
		Method:      doc.Result.Method,
		Degraded:    doc.Result.Degraded,
		ArtifactRef: artifactRef,
		ModifiedAt:  doc.ModifiedAt,
	}
	if params.Keywords == nil {
		params.Keywords = []string{}
	}
	if params.Metadata == nil {
		params.Metadata = map[string]any{}
	}

	// An embedding failure downgrades the document to lexical-only search;
	// it never fails the write.
	if w.embedder != nil {
		meta.Category = params.Category
		text := embedding.BuildDocumentText(meta)
		vecs, err := w.embedder.EmbedBatch(ctx, []string{text}, "search_document")
		if err != nil || len(vecs) == 0 {
			w.logger.Warn("document embedding failed, indexing without vector",
				slog.String("doc_id", docID.String()),
				slog.String("error", errString(err)))
		} else {
			v := pgvector.NewVector(vecs[0])
			params.Embedding = &v
		}
	}

	if err := w.docs.UpsertDocument(ctx, params); err != nil {
		return fmt.Errorf("upsert document %s: %w", docID, err)
	}
	return nil
}

func errString(err error) string {
	if err == nil {
		return "empty embedding batch"
	}
	return err.Error()
}

package query

import (
	"context"
	"log/slog"
	"strings"

	pgvector "github.com/pgvector/pgvector-go"

	"github.com/winatecommerce96/emailpilot-rag-sub000/internal/embedding"
	"github.com/winatecommerce96/emailpilot-rag-sub000/internal/store/postgres"
	"github.com/winatecommerce96/emailpilot-rag-sub000/pkg/apierr"
)

const (
	defaultLimit = 10
	maxLimit     = 50
)

// SearchStore is the read side of the document index. Satisfied by
// *store.Store.
type SearchStore interface {
	SemanticSearch(ctx context.Context, arg postgres.SemanticSearchParams) ([]postgres.SearchResult, error)
	LexicalSearch(ctx context.Context, arg postgres.LexicalSearchParams) ([]postgres.SearchResult, error)
}

// Request is one search invocation. TenantID and Query are mandatory;
// Phase and K are optional.
type Request struct {
	TenantID string `json:"tenant_id"`
	Query    string `json:"query"`
	Phase    string `json:"phase,omitempty"`
	K        int    `json:"k,omitempty"`
}

// Service ranks indexed documents for one tenant. Filter construction is
// its whole job: the tenant predicate and the phase category set are built
// here and baked into the statement, never left to the caller.
type Service struct {
	store    SearchStore
	embedder embedding.Embedder
	logger   *slog.Logger
}

// NewService creates a Service. embedder may be nil; ranking then falls
// back to the lexical path.
func NewService(store SearchStore, embedder embedding.Embedder, logger *slog.Logger) *Service {
	return &Service{store: store, embedder: embedder, logger: logger}
}

func (s *Service) Search(ctx context.Context, req Request) ([]postgres.SearchResult, error) {
	req.TenantID = strings.TrimSpace(req.TenantID)
	req.Query = strings.TrimSpace(req.Query)
	if req.TenantID == "" {
		return nil, apierr.TenantRequired()
	}
	if req.Query == "" {
		return nil, apierr.QueryRequired()
	}
	categories, ok := CategoriesForPhase(req.Phase)
	if !ok {
		return nil, apierr.InvalidPhase(strings.Join(Phases(), ", "))
	}

	limit := req.K
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	if s.embedder != nil {
		vecs, err := s.embedder.EmbedBatch(ctx, []string{req.Query}, "search_query")
		if err != nil || len(vecs) == 0 {
			s.logger.Warn("query embedding failed, using lexical ranking",
				slog.String("tenant", req.TenantID), slog.Any("error", err))
		} else {
			results, err := s.store.SemanticSearch(ctx, postgres.SemanticSearchParams{
				TenantID:       req.TenantID,
				Categories:     categories,
				QueryEmbedding: pgvector.NewVector(vecs[0]),
				Limit:          int32(limit),
			})
			if err != nil {
				return nil, apierr.SearchFailed(err)
			}
			if len(results) > 0 {
				return results, nil
			}
			// Nothing carries a vector yet for this tenant; fall through to
			// the lexical path rather than returning an empty page.
		}
	}

	results, err := s.store.LexicalSearch(ctx, postgres.LexicalSearchParams{
		TenantID:   req.TenantID,
		Categories: categories,
		Query:      req.Query,
		Limit:      int32(limit),
	})
	if err != nil {
		return nil, apierr.SearchFailed(err)
	}
	return results, nil
}

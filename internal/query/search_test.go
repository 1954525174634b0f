package query

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/winatecommerce96/emailpilot-rag-sub000/internal/store/postgres"
	"github.com/winatecommerce96/emailpilot-rag-sub000/pkg/apierr"
)

type fakeSearchStore struct {
	lexicalCalls  []postgres.LexicalSearchParams
	semanticCalls []postgres.SemanticSearchParams
	results       []postgres.SearchResult
}

func (f *fakeSearchStore) SemanticSearch(_ context.Context, arg postgres.SemanticSearchParams) ([]postgres.SearchResult, error) {
	f.semanticCalls = append(f.semanticCalls, arg)
	return f.results, nil
}

func (f *fakeSearchStore) LexicalSearch(_ context.Context, arg postgres.LexicalSearchParams) ([]postgres.SearchResult, error) {
	f.lexicalCalls = append(f.lexicalCalls, arg)
	return f.results, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func wantCode(t *testing.T, err error, code apierr.Code) {
	t.Helper()
	var apiErr *apierr.Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *apierr.Error", err)
	}
	if apiErr.Code() != code {
		t.Errorf("code = %s, want %s", apiErr.Code(), code)
	}
}

func TestSearch_TenantRequired(t *testing.T) {
	svc := NewService(&fakeSearchStore{}, nil, testLogger())
	_, err := svc.Search(context.Background(), Request{Query: "spring banner"})
	wantCode(t, err, apierr.CodeTenantRequired)
}

func TestSearch_QueryRequired(t *testing.T) {
	svc := NewService(&fakeSearchStore{}, nil, testLogger())
	_, err := svc.Search(context.Background(), Request{TenantID: "acme", Query: "   "})
	wantCode(t, err, apierr.CodeQueryRequired)
}

func TestSearch_UnknownPhaseRejected(t *testing.T) {
	svc := NewService(&fakeSearchStore{}, nil, testLogger())
	_, err := svc.Search(context.Background(), Request{TenantID: "acme", Query: "banner", Phase: "launch"})
	wantCode(t, err, apierr.CodeInvalidPhase)
}

func TestSearch_PhaseFilterIncludesGeneral(t *testing.T) {
	fs := &fakeSearchStore{}
	svc := NewService(fs, nil, testLogger())

	if _, err := svc.Search(context.Background(), Request{TenantID: "acme", Query: "banner", Phase: PhaseVisual}); err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(fs.lexicalCalls) != 1 {
		t.Fatalf("lexical calls = %d, want 1", len(fs.lexicalCalls))
	}
	call := fs.lexicalCalls[0]
	if call.TenantID != "acme" {
		t.Errorf("tenant = %q, want %q", call.TenantID, "acme")
	}
	hasGeneral := false
	for _, c := range call.Categories {
		if c == "general" {
			hasGeneral = true
		}
	}
	if !hasGeneral {
		t.Errorf("filter categories %v missing general catch-all", call.Categories)
	}
}

func TestSearch_DefaultAndMaxLimit(t *testing.T) {
	fs := &fakeSearchStore{}
	svc := NewService(fs, nil, testLogger())

	_, _ = svc.Search(context.Background(), Request{TenantID: "acme", Query: "q"})
	_, _ = svc.Search(context.Background(), Request{TenantID: "acme", Query: "q", K: 500})

	if got := fs.lexicalCalls[0].Limit; got != defaultLimit {
		t.Errorf("default limit = %d, want %d", got, defaultLimit)
	}
	if got := fs.lexicalCalls[1].Limit; got != maxLimit {
		t.Errorf("capped limit = %d, want %d", got, maxLimit)
	}
}

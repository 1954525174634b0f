package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/winatecommerce96/emailpilot-rag-sub000/internal/query"
	"github.com/winatecommerce96/emailpilot-rag-sub000/internal/store/postgres"
	"github.com/winatecommerce96/emailpilot-rag-sub000/pkg/apierr"
)

type stubSearchStore struct{}

func (stubSearchStore) SemanticSearch(context.Context, postgres.SemanticSearchParams) ([]postgres.SearchResult, error) {
	return nil, nil
}

func (stubSearchStore) LexicalSearch(context.Context, postgres.LexicalSearchParams) ([]postgres.SearchResult, error) {
	return nil, nil
}

func newSearchHandler() *SearchHandler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewSearchHandler(logger, query.NewService(stubSearchStore{}, nil, logger))
}

func TestSearchHandler_InvalidBody(t *testing.T) {
	sh := newSearchHandler()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/search", bytes.NewReader([]byte("nope")))
	w := httptest.NewRecorder()

	sh.Search(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if resp := decodeError(t, w); resp.Error.Code != apierr.CodeInvalidRequestBody {
		t.Errorf("expected code %s, got %s", apierr.CodeInvalidRequestBody, resp.Error.Code)
	}
}

func TestSearchHandler_MissingTenant(t *testing.T) {
	sh := newSearchHandler()
	body, _ := json.Marshal(map[string]any{"query": "spring banner"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/search", bytes.NewReader(body))
	w := httptest.NewRecorder()

	sh.Search(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if resp := decodeError(t, w); resp.Error.Code != apierr.CodeTenantRequired {
		t.Errorf("expected code %s, got %s", apierr.CodeTenantRequired, resp.Error.Code)
	}
}

func TestSearchHandler_UnknownPhase(t *testing.T) {
	sh := newSearchHandler()
	body, _ := json.Marshal(map[string]any{"tenant_id": "acme", "query": "banner", "phase": "launch"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/search", bytes.NewReader(body))
	w := httptest.NewRecorder()

	sh.Search(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if resp := decodeError(t, w); resp.Error.Code != apierr.CodeInvalidPhase {
		t.Errorf("expected code %s, got %s", apierr.CodeInvalidPhase, resp.Error.Code)
	}
}

func TestSearchHandler_OK(t *testing.T) {
	sh := newSearchHandler()
	body, _ := json.Marshal(map[string]any{"tenant_id": "acme", "query": "banner", "phase": "visual"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/search", bytes.NewReader(body))
	w := httptest.NewRecorder()

	sh.Search(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Results []postgres.SearchResult `json:"results"`
		Total   int                     `json:"total"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Total != 0 {
		t.Errorf("total = %d, want 0", resp.Total)
	}
}

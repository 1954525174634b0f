package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/winatecommerce96/emailpilot-rag-sub000/pkg/apierr"
)

func decodeError(t *testing.T, w *httptest.ResponseRecorder) apierr.ErrorResponse {
	t.Helper()
	var resp apierr.ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp
}

func TestScopeHandler_Create_InvalidBody(t *testing.T) {
	sh := &ScopeHandler{}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/scopes", bytes.NewReader([]byte("invalid")))
	w := httptest.NewRecorder()

	sh.Create(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if resp := decodeError(t, w); resp.Error.Code != apierr.CodeInvalidRequestBody {
		t.Errorf("expected code %s, got %s", apierr.CodeInvalidRequestBody, resp.Error.Code)
	}
}

func TestScopeHandler_Create_InvalidTenant(t *testing.T) {
	sh := &ScopeHandler{kinds: []string{"s3"}}
	body, _ := json.Marshal(map[string]string{
		"tenant_id":      "Bad Tenant",
		"source_kind":    "s3",
		"source_locator": "bucket/assets",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/scopes", bytes.NewReader(body))
	w := httptest.NewRecorder()

	sh.Create(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if resp := decodeError(t, w); resp.Error.Code != apierr.CodeTenantInvalid {
		t.Errorf("expected code %s, got %s", apierr.CodeTenantInvalid, resp.Error.Code)
	}
}

func TestScopeHandler_Create_UnknownSourceKind(t *testing.T) {
	sh := &ScopeHandler{kinds: []string{"s3"}}
	body, _ := json.Marshal(map[string]string{
		"tenant_id":      "acme",
		"source_kind":    "ftp",
		"source_locator": "bucket/assets",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/scopes", bytes.NewReader(body))
	w := httptest.NewRecorder()

	sh.Create(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if resp := decodeError(t, w); resp.Error.Code != apierr.CodeInvalidSourceKind {
		t.Errorf("expected code %s, got %s", apierr.CodeInvalidSourceKind, resp.Error.Code)
	}
}

func TestScopeHandler_Create_MissingLocator(t *testing.T) {
	sh := &ScopeHandler{kinds: []string{"s3"}}
	body, _ := json.Marshal(map[string]string{
		"tenant_id":   "acme",
		"source_kind": "s3",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/scopes", bytes.NewReader(body))
	w := httptest.NewRecorder()

	sh.Create(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if resp := decodeError(t, w); resp.Error.Code != apierr.CodeLocatorRequired {
		t.Errorf("expected code %s, got %s", apierr.CodeLocatorRequired, resp.Error.Code)
	}
}

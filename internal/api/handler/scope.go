package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/winatecommerce96/emailpilot-rag-sub000/internal/store"
	"github.com/winatecommerce96/emailpilot-rag-sub000/internal/store/postgres"
	"github.com/winatecommerce96/emailpilot-rag-sub000/pkg/apierr"
)

type ScopeHandler struct {
	logger *slog.Logger
	store  *store.Store
	kinds  []string
}

func NewScopeHandler(logger *slog.Logger, s *store.Store, kinds []string) *ScopeHandler {
	return &ScopeHandler{logger: logger, store: s, kinds: kinds}
}

type createScopeRequest struct {
	TenantID      string `json:"tenant_id"`
	SourceKind    string `json:"source_kind"`
	SourceLocator string `json:"source_locator"`
	SyncIntervalS int    `json:"sync_interval_s,omitempty"`
}

func (h *ScopeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createScopeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, h.logger, apierr.InvalidRequestBody())
		return
	}

	if e := validateTenantID(req.TenantID); e != nil {
		writeAPIError(w, h.logger, e)
		return
	}
	if e := validateSourceKind(req.SourceKind, h.kinds); e != nil {
		writeAPIError(w, h.logger, e)
		return
	}
	if e := validateLocator(req.SourceLocator); e != nil {
		writeAPIError(w, h.logger, e)
		return
	}

	scope, err := h.store.CreateScope(r.Context(), postgres.CreateScopeParams{
		TenantID:      req.TenantID,
		SourceKind:    req.SourceKind,
		SourceLocator: req.SourceLocator,
		SyncInterval:  time.Duration(req.SyncIntervalS) * time.Second,
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			writeAPIError(w, h.logger, apierr.ScopeExists())
			return
		}
		writeAPIError(w, h.logger, apierr.ScopeCreateFailed(err))
		return
	}

	writeJSON(w, http.StatusCreated, scope)
}

func (h *ScopeHandler) List(w http.ResponseWriter, r *http.Request) {
	scopes, err := h.store.ListScopes(r.Context())
	if err != nil {
		writeAPIError(w, h.logger, apierr.ScopeListFailed(err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"scopes": scopes,
		"total":  len(scopes),
	})
}

func (h *ScopeHandler) Get(w http.ResponseWriter, r *http.Request) {
	scope, ok := getScopeOr404(w, r, h.logger, h.store)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, scope)
}

func (h *ScopeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	scope, ok := getScopeOr404(w, r, h.logger, h.store)
	if !ok {
		return
	}

	if err := h.store.DeleteScope(r.Context(), scope.ID); err != nil {
		writeAPIError(w, h.logger, apierr.InternalError(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// getScopeOr404 resolves the {scopeID} URL param and writes the error
// response itself when the scope cannot be loaded.
func getScopeOr404(w http.ResponseWriter, r *http.Request, logger *slog.Logger, s *store.Store) (postgres.Scope, bool) {
	scopeID, err := uuid.Parse(chi.URLParam(r, "scopeID"))
	if err != nil {
		writeAPIError(w, logger, apierr.InvalidScopeID())
		return postgres.Scope{}, false
	}

	scope, err := s.GetScope(r.Context(), scopeID)
	if err != nil {
		if apierr.IsNotFound(err) {
			writeAPIError(w, logger, apierr.ScopeNotFound())
		} else {
			writeAPIError(w, logger, apierr.InternalError(err))
		}
		return postgres.Scope{}, false
	}
	return scope, true
}

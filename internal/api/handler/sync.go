package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/winatecommerce96/emailpilot-rag-sub000/internal/store"
	"github.com/winatecommerce96/emailpilot-rag-sub000/internal/store/postgres"
	syncpkg "github.com/winatecommerce96/emailpilot-rag-sub000/internal/sync"
	"github.com/winatecommerce96/emailpilot-rag-sub000/pkg/apierr"
)

type SyncHandler struct {
	logger   *slog.Logger
	store    *store.Store
	producer *syncpkg.Producer
}

func NewSyncHandler(logger *slog.Logger, s *store.Store, producer *syncpkg.Producer) *SyncHandler {
	return &SyncHandler{logger: logger, store: s, producer: producer}
}

type triggerRequest struct {
	ForceFull bool `json:"force_full"`
}

// Trigger enqueues a sync run for a scope and returns 202 with the run
// record. If the scope already has a queued or running run, that run is
// returned instead of piling up a duplicate job.
func (h *SyncHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	scope, ok := getScopeOr404(w, r, h.logger, h.store)
	if !ok {
		return
	}

	var req triggerRequest
	if r.Body != nil {
		// An empty body means default options.
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
			writeAPIError(w, h.logger, apierr.InvalidRequestBody())
			return
		}
	}
	if ff := r.URL.Query().Get("force_full"); ff != "" {
		req.ForceFull, _ = strconv.ParseBool(ff)
	}

	active, err := h.store.HasActiveRun(r.Context(), scope.ID)
	if err != nil {
		writeAPIError(w, h.logger, apierr.SyncEnqueueFailed(err))
		return
	}
	if active {
		run, err := h.store.LatestSyncRun(r.Context(), scope.ID)
		if err != nil {
			writeAPIError(w, h.logger, apierr.SyncEnqueueFailed(err))
			return
		}
		writeJSON(w, http.StatusAccepted, run)
		return
	}

	run, err := h.store.CreateSyncRun(r.Context(), postgres.CreateSyncRunParams{
		ScopeID:   scope.ID,
		ForceFull: req.ForceFull,
	})
	if err != nil {
		writeAPIError(w, h.logger, apierr.SyncEnqueueFailed(err))
		return
	}

	if _, err := h.producer.Enqueue(r.Context(), syncpkg.SyncMessage{
		RunID:     run.ID,
		ScopeID:   scope.ID,
		ForceFull: req.ForceFull,
		Trigger:   "manual",
	}); err != nil {
		writeAPIError(w, h.logger, apierr.SyncEnqueueFailed(err))
		return
	}

	writeJSON(w, http.StatusAccepted, run)
}

// Status returns the latest run and the sync state snapshot for a scope.
func (h *SyncHandler) Status(w http.ResponseWriter, r *http.Request) {
	scope, ok := getScopeOr404(w, r, h.logger, h.store)
	if !ok {
		return
	}

	state, err := h.store.GetSyncState(r.Context(), scope.ID)
	if err != nil {
		writeAPIError(w, h.logger, apierr.SyncStatusFailed(err))
		return
	}

	resp := map[string]any{
		"scope": scope,
		"state": state,
	}

	run, err := h.store.LatestSyncRun(r.Context(), scope.ID)
	switch {
	case err == nil:
		resp["latest_run"] = run
	case apierr.IsNotFound(err):
		resp["latest_run"] = nil
	default:
		writeAPIError(w, h.logger, apierr.SyncStatusFailed(err))
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *SyncHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	scope, ok := getScopeOr404(w, r, h.logger, h.store)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	runs, err := h.store.ListSyncRuns(r.Context(), scope.ID, int32(limit), int32(offset))
	if err != nil {
		writeAPIError(w, h.logger, apierr.SyncRunListFailed(err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"runs":  runs,
		"total": len(runs),
	})
}

func (h *SyncHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	runID, err := uuid.Parse(chi.URLParam(r, "runID"))
	if err != nil {
		writeAPIError(w, h.logger, apierr.InvalidID("run"))
		return
	}

	run, err := h.store.GetSyncRun(r.Context(), runID)
	if err != nil {
		if apierr.IsNotFound(err) {
			writeAPIError(w, h.logger, apierr.SyncRunNotFound())
		} else {
			writeAPIError(w, h.logger, apierr.InternalError(err))
		}
		return
	}

	writeJSON(w, http.StatusOK, run)
}

// ClearState drops the cursor and dedup set so the next run re-walks the
// source from scratch. Indexed documents stay in place.
func (h *SyncHandler) ClearState(w http.ResponseWriter, r *http.Request) {
	scope, ok := getScopeOr404(w, r, h.logger, h.store)
	if !ok {
		return
	}

	if err := h.store.ClearSyncState(r.Context(), scope.ID); err != nil {
		writeAPIError(w, h.logger, apierr.StateClearFailed(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Log returns the newest processing-log entries for a scope.
func (h *SyncHandler) Log(w http.ResponseWriter, r *http.Request) {
	scope, ok := getScopeOr404(w, r, h.logger, h.store)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	entries, err := h.store.ListLogEntries(r.Context(), scope.ID, int32(limit))
	if err != nil {
		writeAPIError(w, h.logger, apierr.SyncStatusFailed(err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"entries": entries,
		"total":   len(entries),
	})
}

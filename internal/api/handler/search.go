package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/winatecommerce96/emailpilot-rag-sub000/internal/query"
	"github.com/winatecommerce96/emailpilot-rag-sub000/pkg/apierr"
)

type SearchHandler struct {
	logger *slog.Logger
	search *query.Service
}

func NewSearchHandler(logger *slog.Logger, search *query.Service) *SearchHandler {
	return &SearchHandler{logger: logger, search: search}
}

func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req query.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, h.logger, apierr.InvalidRequestBody())
		return
	}

	results, err := h.search.Search(r.Context(), req)
	if err != nil {
		var apiErr *apierr.Error
		if errors.As(err, &apiErr) {
			writeAPIError(w, h.logger, apiErr)
		} else {
			writeAPIError(w, h.logger, apierr.SearchFailed(err))
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"results": results,
		"total":   len(results),
	})
}

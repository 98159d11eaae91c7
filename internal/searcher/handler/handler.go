// Package handler serves the read side of the HTTP API: search, result
// metadata, activation and search-cache administration.
package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/internal/document"
	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/internal/searcher/executor"
	apperrors "github.com/Adithya-Monish-Kumar-K/Document-Library-Search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/pkg/logger"
)

type Handler struct {
	executor *executor.Executor
	cache    *cache.QueryCache
	logger   *slog.Logger
}

// New builds the handler; queryCache may be nil when caching is off.
func New(exec *executor.Executor, queryCache *cache.QueryCache) *Handler {
	return &Handler{
		executor: exec,
		cache:    queryCache,
		logger:   slog.Default().With("component", "search-handler"),
	}
}

type searchResponse struct {
	IDs []document.ID `json:"ids"`
}

// Search handles GET /api/v1/search?q=...&k=...
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	if !params.Has("q") {
		h.writeError(w, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "query parameter 'q' is required"))
		return
	}
	k := 0
	if raw := params.Get("k"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			h.writeError(w, apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest, "k must be a positive integer, got %q", raw))
			return
		}
		k = parsed
	}

	result := h.executor.Search(r.Context(), "http", params.Get("q"), k)
	h.writeJSON(w, http.StatusOK, searchResponse{IDs: result.IDs()})
}

// Document handles GET /api/v1/documents/{id}.
func (h *Handler) Document(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	meta, err := h.executor.Meta(id)
	if err != nil {
		h.fail(w, r, "document lookup failed", err)
		return
	}
	h.writeJSON(w, http.StatusOK, meta)
}

// Activate handles POST /api/v1/documents/{id}/activate.
func (h *Handler) Activate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	path, err := h.executor.Activate(r.Context(), id)
	if err != nil {
		h.fail(w, r, "activation failed", err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"path": path})
}

func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}

	hits, misses := h.cache.Stats()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     hits,
		"misses":   misses,
		"total":    total,
		"hit_rate": fmt.Sprintf("%.1f%%", hitRate),
	})
}

func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, apperrors.New(apperrors.ErrUnavailable, http.StatusServiceUnavailable, "caching is disabled"))
		return
	}
	if err := h.cache.Invalidate(r.Context()); err != nil {
		h.fail(w, r, "cache invalidation failed", err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (document.ID, bool) {
	raw := r.PathValue("id")
	id, err := document.ParseID(raw)
	if err != nil {
		h.writeError(w, apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest, "invalid document id %q", raw))
		return id, false
	}
	return id, true
}

// fail logs err and answers with its mapped status. Server-side failures
// get the generic msg, client errors get the error text.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	appErr := apperrors.Wrap(err, msg)
	logger.FromContext(r.Context()).Error(msg, "error", err, "status_code", appErr.StatusCode)
	h.writeError(w, appErr)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err *apperrors.AppError) {
	h.writeJSON(w, err.StatusCode, map[string]string{"error": err.Message})
}

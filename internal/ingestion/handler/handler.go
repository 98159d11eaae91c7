// Package handler serves the write side of the HTTP API: adding a file to the
// library and removing a document.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/internal/document"
	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/internal/ingestion/validator"
	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/internal/library"
	apperrors "github.com/Adithya-Monish-Kumar-K/Document-Library-Search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Document-Library-Search/pkg/logger"
)

type Library interface {
	AddFile(path string, meta library.Metadata) (document.ID, error)
	Remove(id document.ID) error
}

type Handler struct {
	lib    Library
	logger *slog.Logger
}

func New(lib Library) *Handler {
	return &Handler{
		lib:    lib,
		logger: slog.Default().With("component", "ingestion-handler"),
	}
}

// Add handles POST /api/v1/documents.
func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	var req ingestion.AddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "invalid JSON body"))
		return
	}
	if err := validator.ValidateAddRequest(&req); err != nil {
		var validationErr *validator.ValidationError
		if errors.As(err, &validationErr) {
			h.writeJSON(w, http.StatusBadRequest, map[string]any{
				"error":  "validation failed",
				"fields": validationErr.Fields,
			})
			return
		}
		h.writeError(w, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, err.Error()))
		return
	}

	id, err := h.lib.AddFile(req.Path, library.Metadata{
		Title:    req.Title,
		Authors:  req.Authors,
		Keywords: req.Keywords,
	})
	if err != nil {
		appErr := apperrors.Wrap(err, "adding document failed")
		if errors.Is(err, apperrors.ErrDuplicateContent) {
			appErr = apperrors.New(apperrors.ErrDuplicateContent, http.StatusConflict, "a document with the same content already exists")
		}
		log.Error("adding document failed", "path", req.Path, "error", err, "status_code", appErr.StatusCode)
		h.writeError(w, appErr)
		return
	}
	log.Info("document added", "doc_id", id.String(), "path", req.Path)
	h.writeJSON(w, http.StatusCreated, ingestion.AddResponse{ID: id, Status: "stored"})
}

// Remove handles DELETE /api/v1/documents/{id}. Unknown ids succeed.
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	raw := r.PathValue("id")
	id, err := document.ParseID(raw)
	if err != nil {
		h.writeError(w, apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest, "invalid document id %q", raw))
		return
	}
	if err := h.lib.Remove(id); err != nil {
		appErr := apperrors.Wrap(err, "removing document failed")
		logger.FromContext(r.Context()).Error("removing document failed", "doc_id", id.String(), "error", err, "status_code", appErr.StatusCode)
		h.writeError(w, appErr)
		return
	}
	w.WriteHeader(http.StatusNoContent)
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

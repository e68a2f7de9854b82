package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sevigo/code-reviewer/internal/core"
	"github.com/sevigo/code-reviewer/internal/server/middleware"
	"github.com/sevigo/code-reviewer/internal/storage"
)

type saveBody struct {
	Code   string `json:"code"`
	Review string `json:"review"`
	Model  string `json:"model"`
}

// HistoryHandler serves the authenticated review history endpoints.
type HistoryHandler struct {
	store  storage.Store
	logger *slog.Logger
}

// NewHistoryHandler creates a HistoryHandler.
func NewHistoryHandler(store storage.Store, logger *slog.Logger) *HistoryHandler {
	return &HistoryHandler{store: store, logger: logger}
}

// Save stores a review for the authenticated user and echoes the record.
func (h *HistoryHandler) Save(w http.ResponseWriter, r *http.Request) {
	owner, ok := middleware.Owner(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Invalid token.")
		return
	}

	var body saveBody
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
		writeMessage(w, http.StatusBadRequest, "All fields are required.")
		return
	}
	if body.Code == "" || body.Review == "" || body.Model == "" {
		writeMessage(w, http.StatusBadRequest, "All fields are required.")
		return
	}

	rec := &core.StoredReview{
		Owner:  owner,
		Code:   body.Code,
		Review: body.Review,
		Model:  body.Model,
	}
	if err := h.store.SaveReview(r.Context(), rec); err != nil {
		h.logger.Error("failed to save review", "error", err, "owner", owner)
		writeMessage(w, http.StatusInternalServerError, "Failed to save review.")
		return
	}

	h.logger.Info("review saved", "id", rec.ID, "owner", owner, "model", rec.Model)
	writeJSON(w, http.StatusOK, rec)
}

// List returns the authenticated user's reviews, newest first.
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	owner, ok := middleware.Owner(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Invalid token.")
		return
	}

	reviews, err := h.store.ListReviews(r.Context(), owner)
	if err != nil {
		h.logger.Error("failed to fetch history", "error", err, "owner", owner)
		writeMessage(w, http.StatusInternalServerError, "Failed to fetch history.")
		return
	}
	if reviews == nil {
		reviews = []core.StoredReview{}
	}
	writeJSON(w, http.StatusOK, reviews)
}

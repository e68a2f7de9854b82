// Package handler provides HTTP handlers for the code review service.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sevigo/code-reviewer/internal/core"
	"github.com/sevigo/code-reviewer/internal/metrics"
)

// Response headers describing how a review was produced.
const (
	HeaderOutcome = "X-Review-Outcome"
	HeaderModel   = "X-Review-Model"
)

const (
	msgInvalidCode      = "Invalid code input. Please provide non-empty code under 10,000 characters."
	msgUnsupportedModel = "Unsupported model selected."
	msgReviewFailed     = "An error occurred while processing your request. Please try again later."
)

// maxBodyBytes bounds the request body. 10000 characters of code stay well
// below this even at four bytes per character after JSON escaping.
const maxBodyBytes = 1 << 20

type reviewBody struct {
	Code  json.RawMessage `json:"code"`
	Model string          `json:"model"`
}

// ReviewHandler serves POST /ai/get-review.
type ReviewHandler struct {
	reviewer core.Reviewer
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewReviewHandler creates a ReviewHandler. m may be nil.
func NewReviewHandler(reviewer core.Reviewer, m *metrics.Metrics, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{
		reviewer: reviewer,
		metrics:  m,
		logger:   logger,
	}
}

// Handle validates the snippet and answers with the review as plain text.
// Exhausted fallbacks still answer 200 with the synthesized message, and
// the X-Review-Outcome header tells the two apart.
func (h *ReviewHandler) Handle(w http.ResponseWriter, r *http.Request) {
	req, err := decodeReviewRequest(w, r)
	if err != nil {
		h.metrics.ObserveRejected("validation")
		h.logger.Debug("rejected review request", "error", err)
		writeText(w, http.StatusBadRequest, invalidMessage(err))
		return
	}

	outcome, err := h.reviewer.Review(r.Context(), req.Code, req.Model)
	if err != nil {
		h.logger.Error("review failed", "error", err, "model", req.Model)
		writeText(w, http.StatusInternalServerError, msgReviewFailed)
		return
	}

	w.Header().Set(HeaderOutcome, string(outcome.Kind))
	if outcome.OK() {
		w.Header().Set(HeaderModel, string(outcome.Model))
	}
	writeText(w, http.StatusOK, outcome.Message())
}

func decodeReviewRequest(w http.ResponseWriter, r *http.Request) (core.ReviewRequest, error) {
	var body reviewBody
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
		return core.ReviewRequest{}, &core.ValidationError{Field: "body", Message: err.Error()}
	}

	var code string
	if err := json.Unmarshal(body.Code, &code); err != nil {
		return core.ReviewRequest{}, &core.ValidationError{Field: "code", Message: "must be a string"}
	}

	req := core.ReviewRequest{Code: code, Model: core.ModelID(body.Model)}
	if err := req.Validate(); err != nil {
		return core.ReviewRequest{}, err
	}
	return req, nil
}

func invalidMessage(err error) string {
	var v *core.ValidationError
	if errors.As(err, &v) && v.Field == "model" {
		return msgUnsupportedModel
	}
	return msgInvalidCode
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

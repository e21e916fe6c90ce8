// Package httptransport is the thin HTTP layer over the evaluation
// orchestrator. It decodes and validates requests, delegates to the evaluator,
// and translates results; no moderation logic lives here.
package httptransport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"modsieve/internal/activity"
	"modsieve/internal/record"
	"modsieve/internal/run"
)

// Evaluator runs the configured suite against one activity.
type Evaluator interface {
	Evaluate(ctx context.Context, act *activity.Activity) (*run.Report, error)
}

// AuthorRegistry accepts author profiles submitted alongside activities.
type AuthorRegistry interface {
	PutAuthor(author *activity.Author)
}

// Handler wires evaluation endpoints to the orchestrator.
type Handler struct {
	evaluator Evaluator
	authors   AuthorRegistry
	recent    *record.MemorySink
	logger    *slog.Logger
}

// New constructs a handler. authors and recent may be nil: author payloads are
// then ignored and GET /results/recent returns an empty list.
func New(evaluator Evaluator, authors AuthorRegistry, recent *record.MemorySink, logger *slog.Logger) *Handler {
	return &Handler{
		evaluator: evaluator,
		authors:   authors,
		recent:    recent,
		logger:    logger,
	}
}

// Register mounts evaluation endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/evaluate", h.HandleEvaluate)
	r.Get("/results/recent", h.HandleRecentResults)
}

// HandleEvaluate handles POST /evaluate requests.
func (h *Handler) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if author := req.ToAuthor(); author != nil && h.authors != nil {
		h.authors.PutAuthor(author)
	}

	report, err := h.evaluator.Evaluate(ctx, req.ToActivity())
	if err != nil {
		h.logger.ErrorContext(ctx, "evaluation failed",
			"activity_id", req.Activity.ID,
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "evaluation failed")
		return
	}

	writeJSON(w, http.StatusOK, FromReport(report))
}

// HandleRecentResults handles GET /results/recent requests.
func (h *Handler) HandleRecentResults(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	resp := RecentResultsResponse{Entries: []record.Entry{}}
	if h.recent != nil {
		resp.Entries = h.recent.Recent(limit)
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError keeps error envelopes consistent across handlers.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

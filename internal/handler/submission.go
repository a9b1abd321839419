package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/mailvend/mailvend/internal/engine"
	"github.com/mailvend/mailvend/internal/handler/dto"
	"github.com/mailvend/mailvend/internal/identity"
	"github.com/mailvend/mailvend/internal/live"
)

// SubmissionHandler handles HTTP requests for submission operations.
type SubmissionHandler struct {
	engine *engine.Engine
	hub    *live.Hub
	logger *slog.Logger
}

// NewSubmissionHandler creates a new SubmissionHandler.
func NewSubmissionHandler(eng *engine.Engine, hub *live.Hub, logger *slog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		engine: eng,
		hub:    hub,
		logger: logger,
	}
}

// Submit handles POST /api/v1/submissions.
func (h *SubmissionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req dto.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	access := identity.AccessFromContext(r.Context())
	sub, err := h.engine.Submit(r.Context(), req.Email, access)
	if err != nil {
		h.handleEngineError(w, err)
		return
	}

	h.logger.Info("submission_accepted",
		"submission_id", sub.ID,
		"user_id", access.UserID,
	)

	writeJSON(w, http.StatusCreated, dto.ToSubmissionResponse(sub))
}

// List handles GET /api/v1/submissions.
// Returns the submissions visible to the acting identity, newest first,
// with the dashboard aggregates.
func (h *SubmissionHandler) List(w http.ResponseWriter, r *http.Request) {
	access := identity.AccessFromContext(r.Context())

	subs, err := h.engine.ListFor(r.Context(), access)
	if err != nil {
		h.handleEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToSubmissionListResponse(subs, h.engine.Price()))
}

// Stream handles GET /api/v1/submissions/stream.
// Serves the live subscription as server-sent events: each event carries
// the full ordered list visible to the acting identity. Disconnecting
// cancels the subscription.
func (h *SubmissionHandler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "STREAMING_UNSUPPORTED", "Streaming not supported")
		return
	}

	access := identity.AccessFromContext(r.Context())
	sub, err := h.hub.Subscribe(r.Context(), access)
	if err != nil {
		h.handleEngineError(w, err)
		return
	}
	defer sub.Cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case snapshot, ok := <-sub.Snapshots():
			if !ok {
				return
			}

			payload, err := json.Marshal(dto.ToSubmissionListResponse(snapshot, h.engine.Price()))
			if err != nil {
				h.logger.Error("failed to encode snapshot", "error", err)
				continue
			}

			fmt.Fprintf(w, "event: snapshot\ndata: %s\n\n", payload)
			flusher.Flush()
		}
	}
}

// handleEngineError maps engine errors to HTTP responses.
func (h *SubmissionHandler) handleEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engine.ErrNoIdentity):
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
	case errors.Is(err, engine.ErrEmptyEmail):
		writeError(w, http.StatusBadRequest, "EMPTY_EMAIL", "Email must not be empty")
	case errors.Is(err, engine.ErrInvalidDomain):
		writeError(w, http.StatusBadRequest, "INVALID_DOMAIN", "Email domain not accepted")
	case errors.Is(err, engine.ErrDuplicateEmail):
		writeError(w, http.StatusConflict, "DUPLICATE_EMAIL", "This email has already been submitted")
	case errors.Is(err, engine.ErrUnauthorized):
		writeError(w, http.StatusForbidden, "FORBIDDEN", "Administrator privilege required")
	case errors.Is(err, engine.ErrNotFound):
		writeError(w, http.StatusNotFound, "SUBMISSION_NOT_FOUND", "Submission not found")
	case errors.Is(err, engine.ErrInvalidStatus):
		writeError(w, http.StatusBadRequest, "INVALID_STATUS", "Unknown submission status")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}

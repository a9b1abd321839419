package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mailvend/mailvend/internal/engine"
	"github.com/mailvend/mailvend/internal/handler/dto"
	"github.com/mailvend/mailvend/internal/identity"
	"github.com/mailvend/mailvend/internal/model"
)

// AdminHandler handles HTTP requests for administrative operations.
type AdminHandler struct {
	engine *engine.Engine
	subs   *SubmissionHandler
	logger *slog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(eng *engine.Engine, subs *SubmissionHandler, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		engine: eng,
		subs:   subs,
		logger: logger,
	}
}

// UpdateStatus handles PATCH /api/v1/admin/submissions/{id}.
// Applies the review status and paid flag in one atomic write.
func (h *AdminHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Submission ID is required")
		return
	}

	var req dto.AdminUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	access := identity.AccessFromContext(r.Context())
	err := h.engine.UpdateStatus(r.Context(), id, model.SubmissionStatus(req.Status), req.IsPaid, access)
	if err != nil {
		h.subs.handleEngineError(w, err)
		return
	}

	h.logger.Info("review_submitted",
		"submission_id", id,
		"status", req.Status,
		"is_paid", req.IsPaid,
	)

	w.WriteHeader(http.StatusNoContent)
}

// Summary handles GET /api/v1/admin/summary.
func (h *AdminHandler) Summary(w http.ResponseWriter, r *http.Request) {
	access := identity.AccessFromContext(r.Context())

	summary, err := h.engine.Summary(r.Context(), access)
	if err != nil {
		h.subs.handleEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mailvend/mailvend/internal/handler/dto"
	"github.com/mailvend/mailvend/internal/identity"
	"github.com/mailvend/mailvend/internal/model"
)

// AuthHandler handles HTTP requests for account and session operations.
type AuthHandler struct {
	svc        *identity.Service
	adminEmail string
	logger     *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *identity.Service, adminEmail string, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		svc:        svc,
		adminEmail: adminEmail,
		logger:     logger,
	}
}

// SignUp handles POST /api/v1/auth/signup.
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req dto.SignUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	user, token, err := h.svc.SignUp(r.Context(), req.Email, req.Password)
	if err != nil {
		h.handleAuthError(w, err)
		return
	}

	h.logger.Info("account_created", "user_id", user.ID)

	role := model.NewAccessContext(model.Identity{ID: user.ID, Email: user.Email}, h.adminEmail).Role
	writeJSON(w, http.StatusCreated, dto.ToSessionResponse(user, role, token))
}

// SignIn handles POST /api/v1/auth/signin.
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req dto.SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	user, token, err := h.svc.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		h.handleAuthError(w, err)
		return
	}

	role := model.NewAccessContext(model.Identity{ID: user.ID, Email: user.Email}, h.adminEmail).Role
	writeJSON(w, http.StatusOK, dto.ToSessionResponse(user, role, token))
}

// SignOut handles POST /api/v1/auth/signout.
// Revokes the session token presented in the Authorization header.
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	authHeader := r.Header.Get("Authorization")
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "" || token == authHeader {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or missing session token")
		return
	}

	if err := h.svc.SignOut(r.Context(), token); err != nil {
		h.handleAuthError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleAuthError maps identity service errors to HTTP responses.
func (h *AuthHandler) handleAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, identity.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
	case errors.Is(err, identity.ErrEmailTaken):
		writeError(w, http.StatusConflict, "EMAIL_TAKEN", "This email is already registered")
	case errors.Is(err, identity.ErrWeakPassword):
		writeError(w, http.StatusBadRequest, "WEAK_PASSWORD", "Password should be at least 6 characters")
	case errors.Is(err, identity.ErrInvalidEmail):
		writeError(w, http.StatusBadRequest, "INVALID_EMAIL", "Invalid email address")
	case errors.Is(err, identity.ErrInvalidSession):
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or missing session token")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}

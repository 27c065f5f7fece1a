package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/aboodesafaagg-byte/riwaya-api/internal/api/shared"
	"github.com/aboodesafaagg-byte/riwaya-api/internal/redact"
	"github.com/aboodesafaagg-byte/riwaya-api/internal/service/auth"
)

// AuthHandler handles the operator login endpoint.
type AuthHandler struct {
	verifier   auth.Verifier
	jwtService auth.JWTService
	logger     *slog.Logger
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(verifier auth.Verifier, jwtService auth.JWTService, lg *slog.Logger) *AuthHandler {
	if lg == nil {
		lg = slog.Default()
	}
	return &AuthHandler{
		verifier:   verifier,
		jwtService: jwtService,
		logger:     lg.With(slog.String("component", "auth_handler")),
	}
}

// Login handles the /api/auth/login endpoint.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest

	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	if err := h.verifier.Verify(req.Email, req.Password); err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		h.logger.Error("failed to verify credentials", "error", redact.Error(err))
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to authenticate")
		return
	}

	token, err := h.jwtService.GenerateToken(r.Context(), req.Email)
	if err != nil {
		h.logger.Error("failed to generate token", "error", redact.Error(err))
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to generate authentication token")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, AuthResponse{Token: token})
}

package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"privacyhub/internal/apperr"
	"privacyhub/internal/middleware"
	"privacyhub/internal/services"
)

type AuthHandler struct {
	auth    *services.AuthService
	revoked *services.Revocations
	logger  *zap.Logger
}

func NewAuthHandler(auth *services.AuthService, revoked *services.Revocations, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, revoked: revoked, logger: logger}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	session, err := h.auth.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, registerResponse{
		Message:     "User registered successfully.",
		User:        session.Identity,
		AccessToken: session.Token,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	session, err := h.auth.Login(r.Context(), req.Identifier, req.Password)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{
		Message:     "Login successful.",
		AccessToken: session.Token,
	})
}

// Logout revokes the presented token until it would have expired anyway.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, r, h.logger, apperr.ErrUnauthorized)
		return
	}
	if claims.ExpiresAt != nil {
		h.revoked.Revoke(claims.ID, claims.ExpiresAt.Time)
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Logout successful."})
}

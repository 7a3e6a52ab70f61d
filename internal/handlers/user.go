package handlers

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"privacyhub/internal/apperr"
	"privacyhub/internal/models"
	"privacyhub/internal/store"
)

type UserHandler struct {
	identities store.IdentityStore
	profiles   store.ProfileStore
	logger     *zap.Logger
}

func NewUserHandler(identities store.IdentityStore, profiles store.ProfileStore, logger *zap.Logger) *UserHandler {
	return &UserHandler{identities: identities, profiles: profiles, logger: logger}
}

// GetMe returns the caller's identity and privacy profile.
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	identity, err := h.identities.GetByID(r.Context(), uid)
	if err != nil {
		// a valid token for an identity that no longer exists
		if apperr.KindOf(err) == apperr.KindNotFound {
			err = apperr.ErrUnauthorized
		}
		writeError(w, r, h.logger, err)
		return
	}
	profile, err := h.profiles.Get(r.Context(), uid)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, meResponse{User: identity.Public(), UserProfile: profile})
}

// UpdateMe applies the provided username and preference fields.
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	var req updateMeRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if req.Username != nil {
		username := strings.TrimSpace(*req.Username)
		if username == "" {
			writeError(w, r, h.logger, apperr.ErrInvalidInput)
			return
		}
		if _, err := h.identities.UpdateUsername(r.Context(), uid, username); err != nil {
			if apperr.KindOf(err) == apperr.KindNotFound {
				err = apperr.ErrUnauthorized
			}
			writeError(w, r, h.logger, err)
			return
		}
	}

	profile, err := h.profiles.Update(r.Context(), uid, func(p *models.Profile) error {
		if prefs := req.PrivacyPreferences; prefs != nil {
			if prefs.ReceiveAlerts != nil {
				p.PrivacyPreferences.ReceiveAlerts = *prefs.ReceiveAlerts
			}
			if prefs.PersonalizedTipsEnabled != nil {
				p.PrivacyPreferences.PersonalizedTipsEnabled = *prefs.PersonalizedTipsEnabled
			}
		}
		return nil
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, updateMeResponse{
		Message:     "User profile updated successfully.",
		UserProfile: profile,
	})
}

package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"privacyhub/internal/apperr"
	"privacyhub/internal/middleware"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err onto its status and canonical message. Errors that
// carry no kind are logged and reported as a generic internal failure.
func writeError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.KindInternal {
		logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
	}
	writeJSON(w, kind.Status(), errorResponse{Error: apperr.Message(err)})
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.Wrap(apperr.KindInvalidInput, apperr.ErrInvalidInput.Message, err)
	}
	return nil
}

func userID(r *http.Request) (string, error) {
	c, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		return "", apperr.ErrUnauthorized
	}
	return c.UserID, nil
}

// NotFound and MethodNotAllowed keep unmatched routes on the JSON error shape.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, errorResponse{Error: apperr.ErrNotFound.Message})
}

func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "Method not allowed."})
}

package handlers

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"privacyhub/internal/apperr"
	"privacyhub/internal/store"
)

const (
	defaultAlertLimit = 10
	maxAlertLimit     = 100
)

type AlertHandler struct {
	alerts store.AlertStore
	logger *zap.Logger
}

func NewAlertHandler(alerts store.AlertStore, logger *zap.Logger) *AlertHandler {
	return &AlertHandler{alerts: alerts, logger: logger}
}

func (h *AlertHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	q := r.URL.Query()
	limit, err := queryInt(q.Get("limit"), defaultAlertLimit)
	if err != nil || limit == 0 {
		writeError(w, r, h.logger, apperr.ErrInvalidInput)
		return
	}
	if limit > maxAlertLimit {
		limit = maxAlertLimit
	}
	offset, err := queryInt(q.Get("offset"), 0)
	if err != nil {
		writeError(w, r, h.logger, apperr.ErrInvalidInput)
		return
	}

	alerts, total, err := h.alerts.List(r.Context(), uid, offset, limit)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, alertsResponse{
		Alerts:     alerts,
		Pagination: pagination{TotalItems: total, Limit: limit, Offset: offset},
	})
}

// queryInt parses a non-negative integer, returning def for an empty value.
func queryInt(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, strconv.ErrRange
	}
	return n, nil
}

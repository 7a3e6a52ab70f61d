package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"privacyhub/internal/apperr"
	"privacyhub/internal/models"
	"privacyhub/internal/store"
)

type ChecklistHandler struct {
	checklists store.ChecklistStore
	logger     *zap.Logger
	now        func() time.Time
}

func NewChecklistHandler(checklists store.ChecklistStore, logger *zap.Logger) *ChecklistHandler {
	return &ChecklistHandler{
		checklists: checklists,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (h *ChecklistHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	lists, err := h.checklists.List(r.Context(), uid)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	out := make([]checklistSummary, 0, len(lists))
	for _, c := range lists {
		out = append(out, checklistSummary{ID: c.ID, Title: c.Title})
	}
	writeJSON(w, http.StatusOK, checklistsResponse{Checklists: out})
}

func (h *ChecklistHandler) Get(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	c, err := h.checklists.Get(r.Context(), uid, chi.URLParam(r, "checklistID"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, checklistResponse{Checklist: c})
}

// UpdateItemStatus validates the status before resolving the item, so an
// invalid request never reveals whether ids exist.
func (h *ChecklistHandler) UpdateItemStatus(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	var req itemStatusRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	status := models.ItemStatus(req.Status)
	if !status.Valid() {
		writeError(w, r, h.logger, apperr.ErrInvalidStatus)
		return
	}

	item, err := h.checklists.UpdateItemStatus(r.Context(), uid,
		chi.URLParam(r, "checklistID"), chi.URLParam(r, "itemID"), status, h.now())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, itemStatusResponse{
		Message: "Checklist item status updated successfully.",
		Item:    itemStatus{ID: item.ID, Status: item.Status, LastUpdated: item.LastUpdated},
	})
}

package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"privacyhub/internal/apperr"
	"privacyhub/internal/models"
	"privacyhub/internal/services"
	"privacyhub/internal/store"
)

type DashboardHandler struct {
	profiles   store.ProfileStore
	alerts     store.AlertStore
	checklists store.ChecklistStore
	scans      *services.ScanService
	logger     *zap.Logger
}

func NewDashboardHandler(
	profiles store.ProfileStore,
	alerts store.AlertStore,
	checklists store.ChecklistStore,
	scans *services.ScanService,
	logger *zap.Logger,
) *DashboardHandler {
	return &DashboardHandler{
		profiles:   profiles,
		alerts:     alerts,
		checklists: checklists,
		scans:      scans,
		logger:     logger,
	}
}

// Summary aggregates the caller's stores into the dashboard header figures.
func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	ctx := r.Context()

	profile, err := h.profiles.Get(ctx, uid)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	_, alertCount, err := h.alerts.List(ctx, uid, 0, 0)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	lists, err := h.checklists.List(ctx, uid)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	pending := 0
	for _, c := range lists {
		for _, item := range c.Items {
			if item.Status != models.StatusCompleted {
				pending++
			}
		}
	}

	var lastAnalysis *time.Time
	report, err := h.scans.LatestReport(ctx, uid)
	switch {
	case err == nil:
		lastAnalysis = &report.AnalysisDate
	case apperr.KindOf(err) != apperr.KindNotFound:
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, summaryResponse{
		PrivacyScore:               profile.PrivacyScore,
		LastAnalysisDate:           lastAnalysis,
		ActiveAlertsCount:          alertCount,
		PendingChecklistItemsCount: pending,
	})
}

package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"privacyhub/internal/services"
)

type AnalysisHandler struct {
	scans  *services.ScanService
	logger *zap.Logger
}

func NewAnalysisHandler(scans *services.ScanService, logger *zap.Logger) *AnalysisHandler {
	return &AnalysisHandler{scans: scans, logger: logger}
}

func (h *AnalysisHandler) StartScan(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	var req scanRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	scan, err := h.scans.Start(r.Context(), uid, req.ScanScope)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusAccepted, scanStartedResponse{
		Message: "Data analysis scan initiated.",
		ScanID:  scan.ID,
	})
}

func (h *AnalysisHandler) GetScan(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	scan, err := h.scans.Get(r.Context(), uid, chi.URLParam(r, "scanID"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, scanResponse{Scan: scan})
}

func (h *AnalysisHandler) LatestReport(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	report, err := h.scans.LatestReport(r.Context(), uid)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, reportResponse{Report: report})
}

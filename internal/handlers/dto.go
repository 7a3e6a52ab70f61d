package handlers

import (
	"time"

	"privacyhub/internal/models"
)

type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerResponse struct {
	Message     string                `json:"message"`
	User        models.PublicIdentity `json:"user"`
	AccessToken string                `json:"access_token"`
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type loginResponse struct {
	Message     string `json:"message"`
	AccessToken string `json:"access_token"`
}

type meResponse struct {
	User        models.PublicIdentity `json:"user"`
	UserProfile models.Profile        `json:"user_profile"`
}

// Absent fields are left untouched.
type updateMeRequest struct {
	Username           *string `json:"username"`
	PrivacyPreferences *struct {
		ReceiveAlerts           *bool `json:"receive_alerts"`
		PersonalizedTipsEnabled *bool `json:"personalized_tips_enabled"`
	} `json:"privacy_preferences"`
}

type updateMeResponse struct {
	Message     string         `json:"message"`
	UserProfile models.Profile `json:"user_profile"`
}

type pagination struct {
	TotalItems int `json:"total_items"`
	Limit      int `json:"limit"`
	Offset     int `json:"offset"`
}

type alertsResponse struct {
	Alerts     []models.Alert `json:"alerts"`
	Pagination pagination     `json:"pagination"`
}

type checklistSummary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type checklistsResponse struct {
	Checklists []checklistSummary `json:"checklists"`
}

type checklistResponse struct {
	Checklist models.Checklist `json:"checklist"`
}

type itemStatusRequest struct {
	Status string `json:"status"`
}

type itemStatus struct {
	ID          string            `json:"id"`
	Status      models.ItemStatus `json:"status"`
	LastUpdated time.Time         `json:"last_updated"`
}

type itemStatusResponse struct {
	Message string     `json:"message"`
	Item    itemStatus `json:"item"`
}

type scanRequest struct {
	ScanScope string `json:"scan_scope"`
}

type scanStartedResponse struct {
	Message string `json:"message"`
	ScanID  string `json:"scan_id"`
}

type scanResponse struct {
	Scan models.Scan `json:"scan"`
}

type reportResponse struct {
	Report models.Report `json:"report"`
}

type summaryResponse struct {
	PrivacyScore               int        `json:"privacy_score"`
	LastAnalysisDate           *time.Time `json:"last_analysis_date"`
	ActiveAlertsCount          int        `json:"active_alerts_count"`
	PendingChecklistItemsCount int        `json:"pending_checklist_items_count"`
}

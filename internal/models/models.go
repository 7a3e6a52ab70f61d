package models

import "time"

type Identity struct {
	ID           string    `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`                     // Encrypted in DB
	EmailIndex   string    `db:"email_blind_index" json:"-"`             // HMAC hash for lookup
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at,omitempty"`
}

// Public strips the password hash and storage-only fields.
func (i Identity) Public() PublicIdentity {
	return PublicIdentity{ID: i.ID, Username: i.Username, Email: i.Email}
}

type PublicIdentity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type PrivacyPreferences struct {
	ReceiveAlerts           bool `json:"receive_alerts" yaml:"receive_alerts"`
	PersonalizedTipsEnabled bool `json:"personalized_tips_enabled" yaml:"personalized_tips_enabled"`
}

type Profile struct {
	PrivacyScore       int                `json:"privacy_score" yaml:"privacy_score"`
	PrivacyPreferences PrivacyPreferences `json:"privacy_preferences" yaml:"privacy_preferences"`
}

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return true
	}
	return false
}

type Alert struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Severity Severity `json:"severity"`
}

type ItemStatus string

const (
	StatusPending    ItemStatus = "pending"
	StatusInProgress ItemStatus = "in_progress"
	StatusCompleted  ItemStatus = "completed"
)

func (s ItemStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

type ChecklistItem struct {
	ID          string     `json:"id"`
	Description string     `json:"description"`
	Status      ItemStatus `json:"status"`
	LastUpdated time.Time  `json:"last_updated"`
}

type Checklist struct {
	ID    string          `json:"id"`
	Title string          `json:"title"`
	Items []ChecklistItem `json:"items"`
}

// Clone returns a copy that does not share the items slice.
func (c Checklist) Clone() Checklist {
	out := c
	out.Items = append([]ChecklistItem(nil), c.Items...)
	return out
}

type ScanStatus string

const (
	ScanQueued    ScanStatus = "queued"
	ScanRunning   ScanStatus = "running"
	ScanCompleted ScanStatus = "completed"
	ScanFailed    ScanStatus = "failed"
)

type Scan struct {
	ID          string     `json:"id"`
	UserID      string     `json:"-"`
	Status      ScanStatus `json:"status"`
	ScanScope   string     `json:"scan_scope"`
	RequestedAt time.Time  `json:"requested_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	ReportID    string     `json:"report_id,omitempty"`
	Error       string     `json:"error,omitempty"`
}

// Done reports whether the scan reached a terminal status.
func (s Scan) Done() bool {
	return s.Status == ScanCompleted || s.Status == ScanFailed
}

type SharedDataSummary struct {
	Found   int      `json:"found"`
	Details []string `json:"details"`
}

type Report struct {
	ID                string            `json:"id"`
	UserID            string            `json:"user_id"`
	ScanID            string            `json:"scan_id"`
	AnalysisDate      time.Time         `json:"analysis_date"`
	SharedDataSummary SharedDataSummary `json:"shared_data_summary"`
	ScanScope         string            `json:"scan_scope"`
}

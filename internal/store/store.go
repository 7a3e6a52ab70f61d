// Package store holds identities and per-user resource state. Handlers and
// services only see the interfaces below, so a backend can be swapped without
// touching them.
package store

import (
	"context"
	"time"

	"privacyhub/internal/models"
)

type IdentityStore interface {
	// Create fails with apperr.ErrUserExists if the username or email is taken.
	Create(ctx context.Context, identity *models.Identity) error
	GetByID(ctx context.Context, id string) (*models.Identity, error)
	// FindByLogin matches identifier against username, then email.
	FindByLogin(ctx context.Context, identifier string) (*models.Identity, error)
	// UpdateUsername fails with apperr.ErrUsernameTaken if another identity
	// holds username.
	UpdateUsername(ctx context.Context, id, username string) (*models.Identity, error)
}

type ProfileStore interface {
	// Get returns the user's profile, creating the default one if missing.
	Get(ctx context.Context, userID string) (models.Profile, error)
	// Update applies fn to the stored profile under the user's lock.
	Update(ctx context.Context, userID string, fn func(*models.Profile) error) (models.Profile, error)
}

type AlertStore interface {
	List(ctx context.Context, userID string, offset, limit int) (alerts []models.Alert, total int, err error)
}

type ChecklistStore interface {
	List(ctx context.Context, userID string) ([]models.Checklist, error)
	Get(ctx context.Context, userID, checklistID string) (models.Checklist, error)
	UpdateItemStatus(ctx context.Context, userID, checklistID, itemID string, status models.ItemStatus, at time.Time) (models.ChecklistItem, error)
}

type ScanStore interface {
	// Begin records a queued scan and flips the user's in-progress flag.
	// It fails with apperr.ErrScanInProgress if the flag is already set.
	Begin(ctx context.Context, scan models.Scan) error
	Get(ctx context.Context, userID, scanID string) (models.Scan, error)
	MarkRunning(ctx context.Context, userID, scanID string) error
	// Complete appends report, marks the scan completed and clears the flag
	// in one step.
	Complete(ctx context.Context, userID, scanID string, report models.Report) error
	Fail(ctx context.Context, userID, scanID, reason string, at time.Time) error
	// LatestReport returns the user's newest report by analysis date.
	LatestReport(ctx context.Context, userID string) (models.Report, error)
}

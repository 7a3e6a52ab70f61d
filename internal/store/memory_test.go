package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"privacyhub/internal/apperr"
	"privacyhub/internal/models"
)

func TestMemoryIdentitiesUniqueness(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryIdentities()

	require.NoError(t, s.Create(ctx, &models.Identity{ID: "1", Username: "alice", Email: "a@x.com"}))

	err := s.Create(ctx, &models.Identity{ID: "2", Username: "alice", Email: "other@x.com"})
	assert.ErrorIs(t, err, apperr.ErrUserExists)

	err = s.Create(ctx, &models.Identity{ID: "3", Username: "alice2", Email: "a@x.com"})
	assert.ErrorIs(t, err, apperr.ErrUserExists)

	// matching is case-sensitive
	require.NoError(t, s.Create(ctx, &models.Identity{ID: "4", Username: "Alice", Email: "A@x.com"}))
}

func TestMemoryIdentitiesFindByLogin(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryIdentities()
	require.NoError(t, s.Create(ctx, &models.Identity{ID: "1", Username: "alice", Email: "a@x.com", PasswordHash: "h"}))

	byName, err := s.FindByLogin(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "1", byName.ID)

	byEmail, err := s.FindByLogin(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "1", byEmail.ID)
	assert.Equal(t, "h", byEmail.PasswordHash)

	_, err = s.FindByLogin(ctx, "bob")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestMemoryIdentitiesUpdateUsername(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryIdentities()
	require.NoError(t, s.Create(ctx, &models.Identity{ID: "1", Username: "alice", Email: "a@x.com"}))
	require.NoError(t, s.Create(ctx, &models.Identity{ID: "2", Username: "bob", Email: "b@x.com"}))

	_, err := s.UpdateUsername(ctx, "1", "bob")
	assert.ErrorIs(t, err, apperr.ErrUsernameTaken)

	u, err := s.UpdateUsername(ctx, "1", "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)

	u, err = s.UpdateUsername(ctx, "1", "carol")
	require.NoError(t, err)
	assert.Equal(t, "carol", u.Username)

	_, err = s.FindByLogin(ctx, "alice")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	// old name is free again
	_, err = s.UpdateUsername(ctx, "2", "alice")
	require.NoError(t, err)

	_, err = s.UpdateUsername(ctx, "missing", "x")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestMemoryIdentitiesReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryIdentities()
	require.NoError(t, s.Create(ctx, &models.Identity{ID: "1", Username: "alice", Email: "a@x.com"}))

	u, err := s.GetByID(ctx, "1")
	require.NoError(t, err)
	u.Username = "mallory"

	again, err := s.GetByID(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "alice", again.Username)
}

func TestMemoryProfilesDefaultAndUpdate(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryProfiles(DefaultCatalogue())

	p, err := s.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 75, p.PrivacyScore)

	p, err = s.Update(ctx, "u1", func(p *models.Profile) error {
		p.PrivacyPreferences.ReceiveAlerts = false
		return nil
	})
	require.NoError(t, err)
	assert.False(t, p.PrivacyPreferences.ReceiveAlerts)

	_, err = s.Update(ctx, "u1", func(p *models.Profile) error {
		p.PrivacyPreferences.PersonalizedTipsEnabled = false
		return apperr.ErrInvalidInput
	})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	p, err = s.Get(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, p.PrivacyPreferences.PersonalizedTipsEnabled, "failed update must not apply")

	other, err := s.Get(ctx, "u2")
	require.NoError(t, err)
	assert.True(t, other.PrivacyPreferences.ReceiveAlerts)
}

func TestMemoryAlertsPaging(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryAlerts(DefaultCatalogue())

	page, total, err := s.List(ctx, "u1", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, page, 3)

	page, _, err = s.List(ctx, "u1", 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "u1-a2", page[0].ID)

	page, total, err = s.List(ctx, "u1", 10, 5)
	require.NoError(t, err)
	assert.Equal(t, 3, total, "second read must not re-seed")
	assert.NotNil(t, page)
	assert.Empty(t, page)
}

func TestMemoryChecklistsSeedIsStable(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryChecklists(DefaultCatalogue())

	first, err := s.List(ctx, "u1")
	require.NoError(t, err)
	second, err := s.List(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	got, err := s.Get(ctx, "u1", first[0].ID)
	require.NoError(t, err)
	assert.Equal(t, first[0], got)

	_, err = s.Get(ctx, "u2", first[0].ID)
	assert.ErrorIs(t, err, apperr.ErrChecklistNotFound, "other users' checklists are invisible")
}

func TestMemoryChecklistsUpdateItemStatus(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryChecklists(DefaultCatalogue())
	lists, err := s.List(ctx, "u1")
	require.NoError(t, err)
	cl := lists[0]
	item := cl.Items[0]
	at := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	updated, err := s.UpdateItemStatus(ctx, "u1", cl.ID, item.ID, models.StatusCompleted, at)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, updated.Status)
	assert.Equal(t, at, updated.LastUpdated)

	got, err := s.Get(ctx, "u1", cl.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, got.Items[0].Status)
	assert.Equal(t, cl.Items[1], got.Items[1])

	_, err = s.UpdateItemStatus(ctx, "u1", cl.ID, "nope", models.StatusPending, at)
	assert.ErrorIs(t, err, apperr.ErrItemNotFound)
	_, err = s.UpdateItemStatus(ctx, "u1", "nope", item.ID, models.StatusPending, at)
	assert.ErrorIs(t, err, apperr.ErrChecklistNotFound)
}

func TestMemoryChecklistsReadsAreCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryChecklists(DefaultCatalogue())
	lists, err := s.List(ctx, "u1")
	require.NoError(t, err)

	lists[0].Items[0].Status = models.StatusCompleted

	got, err := s.Get(ctx, "u1", lists[0].ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, got.Items[0].Status)
}

func TestMemoryScansLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryScans()
	now := time.Now().UTC()

	_, err := s.LatestReport(ctx, "u1")
	assert.ErrorIs(t, err, apperr.ErrReportNotFound)

	scan := models.Scan{ID: "s1", UserID: "u1", Status: models.ScanQueued, ScanScope: "email", RequestedAt: now}
	require.NoError(t, s.Begin(ctx, scan))
	assert.ErrorIs(t, s.Begin(ctx, models.Scan{ID: "s2", UserID: "u1"}), apperr.ErrScanInProgress)
	require.NoError(t, s.Begin(ctx, models.Scan{ID: "s3", UserID: "u2"}), "other users are independent")

	require.NoError(t, s.MarkRunning(ctx, "u1", "s1"))
	got, err := s.Get(ctx, "u1", "s1")
	require.NoError(t, err)
	assert.Equal(t, models.ScanRunning, got.Status)

	report := models.Report{ID: "r1", UserID: "u1", ScanID: "s1", AnalysisDate: now.Add(time.Second), ScanScope: "email"}
	require.NoError(t, s.Complete(ctx, "u1", "s1", report))

	got, err = s.Get(ctx, "u1", "s1")
	require.NoError(t, err)
	assert.Equal(t, models.ScanCompleted, got.Status)
	assert.Equal(t, "r1", got.ReportID)
	require.NotNil(t, got.CompletedAt)

	latest, err := s.LatestReport(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "r1", latest.ID)

	_, err = s.LatestReport(ctx, "u2")
	assert.ErrorIs(t, err, apperr.ErrReportNotFound)

	require.NoError(t, s.Begin(ctx, models.Scan{ID: "s4", UserID: "u1"}), "flag cleared after completion")
}

func TestMemoryScansLatestByDate(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryScans()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"s1", "s2", "s3"} {
		require.NoError(t, s.Begin(ctx, models.Scan{ID: id, UserID: "u1"}))
		// s2 carries the newest date even though s3 completes last
		date := base.Add(time.Duration(i) * time.Hour)
		if id == "s2" {
			date = base.Add(10 * time.Hour)
		}
		require.NoError(t, s.Complete(ctx, "u1", id, models.Report{ID: "r-" + id, UserID: "u1", ScanID: id, AnalysisDate: date}))
	}

	latest, err := s.LatestReport(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "r-s2", latest.ID)
}

func TestMemoryScansFailAndOwnership(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryScans()
	require.NoError(t, s.Begin(ctx, models.Scan{ID: "s1", UserID: "u1", Status: models.ScanQueued}))

	_, err := s.Get(ctx, "u2", "s1")
	assert.ErrorIs(t, err, apperr.ErrScanNotFound)

	require.NoError(t, s.Fail(ctx, "u1", "s1", "timeout", time.Now()))
	got, err := s.Get(ctx, "u1", "s1")
	require.NoError(t, err)
	assert.Equal(t, models.ScanFailed, got.Status)
	assert.Equal(t, "timeout", got.Error)

	require.NoError(t, s.Begin(ctx, models.Scan{ID: "s2", UserID: "u1"}))
}

package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"privacyhub/internal/apperr"
	"privacyhub/internal/models"
)

// MemoryIdentities is the default credential store. Lookups are exact and
// case-sensitive.
type MemoryIdentities struct {
	mu         sync.RWMutex
	byID       map[string]*models.Identity
	byUsername map[string]string
	byEmail    map[string]string
}

func NewMemoryIdentities() *MemoryIdentities {
	return &MemoryIdentities{
		byID:       make(map[string]*models.Identity),
		byUsername: make(map[string]string),
		byEmail:    make(map[string]string),
	}
}

func (s *MemoryIdentities) Create(_ context.Context, identity *models.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byUsername[identity.Username]; ok {
		return apperr.ErrUserExists
	}
	if _, ok := s.byEmail[identity.Email]; ok {
		return apperr.ErrUserExists
	}
	if identity.CreatedAt.IsZero() {
		identity.CreatedAt = time.Now().UTC()
	}
	cp := *identity
	s.byID[cp.ID] = &cp
	s.byUsername[cp.Username] = cp.ID
	s.byEmail[cp.Email] = cp.ID
	return nil
}

func (s *MemoryIdentities) GetByID(_ context.Context, id string) (*models.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *MemoryIdentities) FindByLogin(_ context.Context, identifier string) (*models.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byUsername[identifier]
	if !ok {
		id, ok = s.byEmail[identifier]
	}
	if !ok {
		return nil, apperr.ErrNotFound
	}
	cp := *s.byID[id]
	return &cp, nil
}

func (s *MemoryIdentities) UpdateUsername(_ context.Context, id, username string) (*models.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	if owner, taken := s.byUsername[username]; taken && owner != id {
		return nil, apperr.ErrUsernameTaken
	}
	delete(s.byUsername, u.Username)
	u.Username = username
	s.byUsername[username] = id
	cp := *u
	return &cp, nil
}

type MemoryProfiles struct {
	catalogue *Catalogue
	profiles  *Keyed[models.Profile]
}

func NewMemoryProfiles(c *Catalogue) *MemoryProfiles {
	return &MemoryProfiles{catalogue: c, profiles: NewKeyed[models.Profile]()}
}

func (s *MemoryProfiles) seed() (models.Profile, error) {
	return s.catalogue.NewProfile(), nil
}

func (s *MemoryProfiles) Get(_ context.Context, userID string) (models.Profile, error) {
	var out models.Profile
	err := s.profiles.Ensure(userID, s.seed, func(p *models.Profile) error {
		out = *p
		return nil
	})
	return out, err
}

func (s *MemoryProfiles) Update(_ context.Context, userID string, fn func(*models.Profile) error) (models.Profile, error) {
	var out models.Profile
	err := s.profiles.Ensure(userID, s.seed, func(p *models.Profile) error {
		next := *p
		if err := fn(&next); err != nil {
			return err
		}
		*p = next
		out = next
		return nil
	})
	return out, err
}

type MemoryAlerts struct {
	catalogue *Catalogue
	alerts    *Keyed[[]models.Alert]
}

func NewMemoryAlerts(c *Catalogue) *MemoryAlerts {
	return &MemoryAlerts{catalogue: c, alerts: NewKeyed[[]models.Alert]()}
}

func (s *MemoryAlerts) List(_ context.Context, userID string, offset, limit int) ([]models.Alert, int, error) {
	var (
		page  []models.Alert
		total int
	)
	seed := func() ([]models.Alert, error) { return s.catalogue.NewAlerts(userID), nil }
	err := s.alerts.Ensure(userID, seed, func(all *[]models.Alert) error {
		total = len(*all)
		if offset > total {
			offset = total
		}
		end := offset + limit
		if end > total {
			end = total
		}
		page = append([]models.Alert{}, (*all)[offset:end]...)
		return nil
	})
	return page, total, err
}

type MemoryChecklists struct {
	catalogue  *Catalogue
	checklists *Keyed[[]models.Checklist]
	newID      func() string
	now        func() time.Time
}

func NewMemoryChecklists(c *Catalogue) *MemoryChecklists {
	return &MemoryChecklists{
		catalogue:  c,
		checklists: NewKeyed[[]models.Checklist](),
		newID:      uuid.NewString,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *MemoryChecklists) seed() ([]models.Checklist, error) {
	return s.catalogue.NewChecklists(s.newID, s.now()), nil
}

func (s *MemoryChecklists) List(_ context.Context, userID string) ([]models.Checklist, error) {
	var out []models.Checklist
	err := s.checklists.Ensure(userID, s.seed, func(all *[]models.Checklist) error {
		out = make([]models.Checklist, 0, len(*all))
		for _, c := range *all {
			out = append(out, c.Clone())
		}
		return nil
	})
	return out, err
}

func (s *MemoryChecklists) Get(_ context.Context, userID, checklistID string) (models.Checklist, error) {
	var out models.Checklist
	err := s.checklists.Ensure(userID, s.seed, func(all *[]models.Checklist) error {
		for _, c := range *all {
			if c.ID == checklistID {
				out = c.Clone()
				return nil
			}
		}
		return apperr.ErrChecklistNotFound
	})
	return out, err
}

func (s *MemoryChecklists) UpdateItemStatus(_ context.Context, userID, checklistID, itemID string, status models.ItemStatus, at time.Time) (models.ChecklistItem, error) {
	var out models.ChecklistItem
	err := s.checklists.Ensure(userID, s.seed, func(all *[]models.Checklist) error {
		for ci := range *all {
			cl := &(*all)[ci]
			if cl.ID != checklistID {
				continue
			}
			for ii := range cl.Items {
				if cl.Items[ii].ID == itemID {
					cl.Items[ii].Status = status
					cl.Items[ii].LastUpdated = at
					out = cl.Items[ii]
					return nil
				}
			}
			return apperr.ErrItemNotFound
		}
		return apperr.ErrChecklistNotFound
	})
	return out, err
}

type userScans struct {
	active string
	scans  map[string]*models.Scan
}

// MemoryScans keeps scans per user and reports in one process-wide list.
type MemoryScans struct {
	users *Keyed[userScans]

	mu      sync.RWMutex
	reports []models.Report
}

func NewMemoryScans() *MemoryScans {
	return &MemoryScans{users: NewKeyed[userScans]()}
}

func newUserScans() (userScans, error) {
	return userScans{scans: make(map[string]*models.Scan)}, nil
}

func (s *MemoryScans) Begin(_ context.Context, scan models.Scan) error {
	return s.users.Ensure(scan.UserID, newUserScans, func(u *userScans) error {
		if u.active != "" {
			return apperr.ErrScanInProgress
		}
		cp := scan
		u.scans[scan.ID] = &cp
		u.active = scan.ID
		return nil
	})
}

func (s *MemoryScans) withScan(userID, scanID string, fn func(*userScans, *models.Scan) error) error {
	found, err := s.users.Lookup(userID, func(u *userScans) error {
		sc, ok := u.scans[scanID]
		if !ok {
			return apperr.ErrScanNotFound
		}
		return fn(u, sc)
	})
	if err != nil {
		return err
	}
	if !found {
		return apperr.ErrScanNotFound
	}
	return nil
}

func (s *MemoryScans) Get(_ context.Context, userID, scanID string) (models.Scan, error) {
	var out models.Scan
	err := s.withScan(userID, scanID, func(_ *userScans, sc *models.Scan) error {
		out = *sc
		return nil
	})
	return out, err
}

func (s *MemoryScans) MarkRunning(_ context.Context, userID, scanID string) error {
	return s.withScan(userID, scanID, func(_ *userScans, sc *models.Scan) error {
		if sc.Status == models.ScanQueued {
			sc.Status = models.ScanRunning
		}
		return nil
	})
}

func (s *MemoryScans) Complete(_ context.Context, userID, scanID string, report models.Report) error {
	return s.withScan(userID, scanID, func(u *userScans, sc *models.Scan) error {
		s.mu.Lock()
		s.reports = append(s.reports, report)
		s.mu.Unlock()

		at := report.AnalysisDate
		sc.Status = models.ScanCompleted
		sc.CompletedAt = &at
		sc.ReportID = report.ID
		if u.active == scanID {
			u.active = ""
		}
		return nil
	})
}

func (s *MemoryScans) Fail(_ context.Context, userID, scanID, reason string, at time.Time) error {
	return s.withScan(userID, scanID, func(u *userScans, sc *models.Scan) error {
		sc.Status = models.ScanFailed
		sc.CompletedAt = &at
		sc.Error = reason
		if u.active == scanID {
			u.active = ""
		}
		return nil
	})
}

func (s *MemoryScans) LatestReport(_ context.Context, userID string) (models.Report, error) {
	s.mu.RLock()
	var mine []models.Report
	for _, r := range s.reports {
		if r.UserID == userID {
			mine = append(mine, r)
		}
	}
	s.mu.RUnlock()

	if len(mine) == 0 {
		return models.Report{}, apperr.ErrReportNotFound
	}
	sort.SliceStable(mine, func(i, j int) bool {
		return mine[i].AnalysisDate.After(mine[j].AnalysisDate)
	})
	return mine[0], nil
}

package store

import (
	_ "embed"
	"errors"
	"fmt"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"privacyhub/internal/models"
)

//go:embed demo.yaml
var demoYAML []byte

// Catalogue is the demo content every new user starts with.
type Catalogue struct {
	Profile    models.Profile  `yaml:"profile"`
	Alerts     []AlertSeed     `yaml:"alerts"`
	Checklists []ChecklistSeed `yaml:"checklists"`
}

type AlertSeed struct {
	Title    string          `yaml:"title"`
	Severity models.Severity `yaml:"severity"`
}

type ChecklistSeed struct {
	Title string     `yaml:"title"`
	Items []ItemSeed `yaml:"items"`
}

type ItemSeed struct {
	Description string            `yaml:"description"`
	Status      models.ItemStatus `yaml:"status"`
}

func ParseCatalogue(data []byte) (*Catalogue, error) {
	var c Catalogue
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalogue: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalogue) validate() error {
	if c.Profile.PrivacyScore < 0 || c.Profile.PrivacyScore > 100 {
		return fmt.Errorf("catalogue: privacy_score %d out of range", c.Profile.PrivacyScore)
	}
	for i, a := range c.Alerts {
		if a.Title == "" {
			return fmt.Errorf("catalogue: alert %d has no title", i)
		}
		if !a.Severity.Valid() {
			return fmt.Errorf("catalogue: alert %q has severity %q", a.Title, a.Severity)
		}
	}
	for _, cl := range c.Checklists {
		if cl.Title == "" {
			return errors.New("catalogue: checklist without title")
		}
		for _, it := range cl.Items {
			if !it.Status.Valid() {
				return fmt.Errorf("catalogue: item %q has status %q", it.Description, it.Status)
			}
		}
	}
	return nil
}

var (
	defaultOnce      sync.Once
	defaultCatalogue *Catalogue
)

// DefaultCatalogue returns the embedded demo catalogue. It panics if the
// embedded document is invalid, which is a build defect.
func DefaultCatalogue() *Catalogue {
	defaultOnce.Do(func() {
		c, err := ParseCatalogue(demoYAML)
		if err != nil {
			panic(err)
		}
		defaultCatalogue = c
	})
	return defaultCatalogue
}

func (c *Catalogue) NewProfile() models.Profile {
	return c.Profile
}

// NewAlerts builds the user's alerts with ids of the form <user>-a<n>.
func (c *Catalogue) NewAlerts(userID string) []models.Alert {
	out := make([]models.Alert, 0, len(c.Alerts))
	for i, a := range c.Alerts {
		out = append(out, models.Alert{
			ID:       fmt.Sprintf("%s-a%d", userID, i+1),
			Title:    a.Title,
			Severity: a.Severity,
		})
	}
	return out
}

func (c *Catalogue) NewChecklists(newID func() string, now time.Time) []models.Checklist {
	out := make([]models.Checklist, 0, len(c.Checklists))
	for _, cs := range c.Checklists {
		cl := models.Checklist{ID: newID(), Title: cs.Title, Items: make([]models.ChecklistItem, 0, len(cs.Items))}
		for _, it := range cs.Items {
			cl.Items = append(cl.Items, models.ChecklistItem{
				ID:          newID(),
				Description: it.Description,
				Status:      it.Status,
				LastUpdated: now,
			})
		}
		out = append(out, cl)
	}
	return out
}

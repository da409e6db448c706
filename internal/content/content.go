// Package content holds the static ads and announcements shown to residents.
package content

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var builtin []byte

type (
	Ad struct {
		ID          string `yaml:"id"`
		Title       string `yaml:"title"`
		Image       string `yaml:"image"`
		Description string `yaml:"description"`
		URL         string `yaml:"url"`
	}

	// AnnouncementKind is one of maintenance, payment, sales or holiday.
	AnnouncementKind string

	Announcement struct {
		Kind       AnnouncementKind `yaml:"kind"`
		Title      string           `yaml:"title"`
		Tag        string           `yaml:"tag"`
		Background string           `yaml:"background"`
		Points     []string         `yaml:"points"`
	}

	Catalog struct {
		Ads           []Ad           `yaml:"ads"`
		Announcements []Announcement `yaml:"announcements"`
	}
)

const (
	Maintenance AnnouncementKind = "maintenance"
	Payment     AnnouncementKind = "payment"
	Sales       AnnouncementKind = "sales"
	Holiday     AnnouncementKind = "holiday"
)

// Parse reads a catalog document.
func Parse(b []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse content catalog: %w", err)
	}
	for i, a := range c.Announcements {
		if !a.Kind.Valid() {
			return nil, fmt.Errorf("announcement %d: unknown kind %q", i, a.Kind)
		}
	}
	return &c, nil
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := Parse(builtin)
	if err != nil {
		panic(err)
	}
	return c
}

func (k AnnouncementKind) Valid() bool {
	switch k {
	case Maintenance, Payment, Sales, Holiday:
		return true
	}
	return false
}

// Announcement returns the announcement of the given kind. Unknown kinds
// report false.
func (c *Catalog) Announcement(kind string) (Announcement, bool) {
	k := AnnouncementKind(kind)
	if !k.Valid() {
		return Announcement{}, false
	}
	for _, a := range c.Announcements {
		if a.Kind == k {
			return a, true
		}
	}
	return Announcement{}, false
}

// Ad returns the ad with the given id.
func (c *Catalog) Ad(id string) (Ad, bool) {
	for _, a := range c.Ads {
		if a.ID == id {
			return a, true
		}
	}
	return Ad{}, false
}

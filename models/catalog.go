package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedCatalogEntry is returned when a catalog item lacks the fields the
// resolver needs. Such items are never resolved or cached.
var ErrMalformedCatalogEntry = errors.New("malformed catalog entry")

// ItemKind describes what a catalog entry represents.
type ItemKind string

const (
	KindMovie      ItemKind = "movie"
	KindSeries     ItemKind = "series"
	KindSeasonStub ItemKind = "season"
)

// LookupKind maps a catalog kind to the kind used when querying the provider.
// Season stubs are looked up as their parent series.
func (k ItemKind) LookupKind() ItemKind {
	if k == KindMovie {
		return KindMovie
	}
	return KindSeries
}

func (k ItemKind) Valid() bool {
	switch k {
	case KindMovie, KindSeries, KindSeasonStub:
		return true
	}
	return false
}

// CatalogItem is a single user-authored catalog entry after the catalog loader
// has mapped its free-form fields onto a fixed shape.
type CatalogItem struct {
	ID                string   `json:"id"`
	Title             string   `json:"title"`
	Kind              ItemKind `json:"kind"`
	RawSeasonNumber   int      `json:"rawSeasonNumber,omitempty"`
	ParentSeriesTitle string   `json:"parentSeriesTitle,omitempty"`

	ExternalID      string `json:"externalId,omitempty"` // declared provider id (imdb), if any
	Poster          string `json:"poster,omitempty"`     // catalog-declared image URL
	DeclaredSeasons int    `json:"declaredSeasons,omitempty"`
	Year            int    `json:"year,omitempty"`
}

// MalformedEntryError describes why a catalog item was rejected.
type MalformedEntryError struct {
	ItemID string
	Reason string
}

func (e *MalformedEntryError) Error() string {
	if e.ItemID == "" {
		return fmt.Sprintf("%s: %s", ErrMalformedCatalogEntry, e.Reason)
	}
	return fmt.Sprintf("%s %q: %s", ErrMalformedCatalogEntry, e.ItemID, e.Reason)
}

func (e *MalformedEntryError) Unwrap() error { return ErrMalformedCatalogEntry }

// Validate checks the fields required for resolution and progress tracking.
func (i CatalogItem) Validate() error {
	if strings.TrimSpace(i.ID) == "" {
		return &MalformedEntryError{Reason: "missing id"}
	}
	if !i.Kind.Valid() {
		return &MalformedEntryError{ItemID: i.ID, Reason: fmt.Sprintf("unknown kind %q", i.Kind)}
	}
	if strings.TrimSpace(i.SearchTitle()) == "" && strings.TrimSpace(i.ExternalID) == "" {
		return &MalformedEntryError{ItemID: i.ID, Reason: "missing title"}
	}
	if i.Kind == KindSeasonStub && i.RawSeasonNumber <= 0 {
		return &MalformedEntryError{ItemID: i.ID, Reason: "season stub without season number"}
	}
	return nil
}

// SearchTitle returns the title that identifies the provider record for this
// item. Season stubs are matched through their parent series when known.
func (i CatalogItem) SearchTitle() string {
	if i.Kind == KindSeasonStub && strings.TrimSpace(i.ParentSeriesTitle) != "" {
		return i.ParentSeriesTitle
	}
	return i.Title
}

// Category is an ordered collection of catalog items (e.g. "MCU").
type Category struct {
	Key   string        `json:"key"`
	Title string        `json:"title"`
	Items []CatalogItem `json:"items"`
}

// Franchise is the top level of the catalog tree (e.g. "Marvel").
type Franchise struct {
	Key        string     `json:"key"`
	Title      string     `json:"title"`
	Categories []Category `json:"categories"`
}

// Category returns the category with the given key.
func (f *Franchise) Category(key string) (*Category, bool) {
	for idx := range f.Categories {
		if f.Categories[idx].Key == key {
			return &f.Categories[idx], true
		}
	}
	return nil, false
}

// ItemCount returns the number of items across all categories.
func (f *Franchise) ItemCount() int {
	total := 0
	for _, cat := range f.Categories {
		total += len(cat.Items)
	}
	return total
}

// Catalog is the read-only tree supplied by the catalog loader.
type Catalog struct {
	Franchises []Franchise `json:"franchises"`
}

// Franchise returns the franchise with the given key.
func (c *Catalog) Franchise(key string) (*Franchise, bool) {
	for idx := range c.Franchises {
		if c.Franchises[idx].Key == key {
			return &c.Franchises[idx], true
		}
	}
	return nil, false
}

// FindItem locates an item by its id anywhere in the catalog.
func (c *Catalog) FindItem(id string) (CatalogItem, bool) {
	for _, fr := range c.Franchises {
		for _, cat := range fr.Categories {
			for _, item := range cat.Items {
				if item.ID == id {
					return item, true
				}
			}
		}
	}
	return CatalogItem{}, false
}

package models

import (
	"fmt"
	"time"
)

// Candidate is a provider record returned by the lookup client.
type Candidate struct {
	ExternalID   string   `json:"externalId"`
	Title        string   `json:"title"`
	Kind         ItemKind `json:"kind"`
	Year         int      `json:"year,omitempty"`
	PosterURL    string   `json:"posterUrl,omitempty"`
	TotalSeasons int      `json:"totalSeasons,omitempty"` // 0 when unknown or not a series
}

// ResolvedRecord is the cached outcome of matching a catalog item to the
// provider. A record with Unresolved set is the negative sentinel.
type ResolvedRecord struct {
	ExternalID   *string   `json:"externalId"`
	Kind         ItemKind  `json:"kind,omitempty"`
	Title        string    `json:"title,omitempty"`
	Year         int       `json:"year,omitempty"`
	PosterURL    *string   `json:"posterUrl,omitempty"`
	TotalSeasons *int      `json:"totalSeasons,omitempty"`
	MatchScore   float64   `json:"matchScore,omitempty"`
	ResolvedAt   time.Time `json:"resolvedAt,omitempty"`
	Unresolved   bool      `json:"unresolved,omitempty"`
}

// UnresolvedRecord returns the negative sentinel.
func UnresolvedRecord() ResolvedRecord {
	return ResolvedRecord{Unresolved: true}
}

// Found reports whether the record points at a provider record.
func (r ResolvedRecord) Found() bool {
	return !r.Unresolved && r.ExternalID != nil && *r.ExternalID != ""
}

// ID returns the external id or "" for the sentinel.
func (r ResolvedRecord) ID() string {
	if r.ExternalID == nil {
		return ""
	}
	return *r.ExternalID
}

// Seasons returns the provider season count, 0 when unknown.
func (r ResolvedRecord) Seasons() int {
	if r.TotalSeasons == nil {
		return 0
	}
	return *r.TotalSeasons
}

// Poster returns the poster URL or "".
func (r ResolvedRecord) Poster() string {
	if r.PosterURL == nil {
		return ""
	}
	return *r.PosterURL
}

// Episode is a single provider episode inside a season.
type Episode struct {
	ExternalEpisodeID string  `json:"externalEpisodeId"`
	Number            int     `json:"number"`
	Title             string  `json:"title"`
	AirDate           *string `json:"airDate"`
}

// SeasonRecord is the cached episode list for one season of a series. An empty
// Episodes slice means the season was checked and nothing was found.
type SeasonRecord struct {
	ExternalID   string    `json:"externalId"`
	SeasonNumber int       `json:"seasonNumber"`
	Episodes     []Episode `json:"episodes"`
	FetchedAt    time.Time `json:"fetchedAt,omitempty"`
	Unresolved   bool      `json:"unresolved,omitempty"`
}

// UnresolvedSeason returns the negative sentinel for a season.
func UnresolvedSeason(externalID string, seasonNumber int) SeasonRecord {
	return SeasonRecord{ExternalID: externalID, SeasonNumber: seasonNumber, Unresolved: true}
}

// EpisodeKey returns the progress key for an episode. Provider episode ids are
// preferred; episodes without one fall back to series id + season/episode.
func (s SeasonRecord) EpisodeKey(ep Episode) string {
	if ep.ExternalEpisodeID != "" {
		return ep.ExternalEpisodeID
	}
	return fmt.Sprintf("%s:s%02de%02d", s.ExternalID, s.SeasonNumber, ep.Number)
}

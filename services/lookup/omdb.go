package lookup

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/GojiraTai/koleksiyon-takip/models"
)

type omdbStatus struct {
	Response string `json:"Response"`
	Error    string `json:"Error"`
}

func (s omdbStatus) status() omdbStatus { return s }

type omdbEnvelope interface {
	status() omdbStatus
}

type omdbTitle struct {
	omdbStatus
	Title        string `json:"Title"`
	Year         string `json:"Year"`
	IMDbID       string `json:"imdbID"`
	Type         string `json:"Type"`
	Poster       string `json:"Poster"`
	TotalSeasons string `json:"totalSeasons"`
}

type omdbSearch struct {
	omdbStatus
	Search []struct {
		Title  string `json:"Title"`
		Year   string `json:"Year"`
		IMDbID string `json:"imdbID"`
		Type   string `json:"Type"`
		Poster string `json:"Poster"`
	} `json:"Search"`
	TotalResults string `json:"totalResults"`
}

type omdbSeason struct {
	omdbStatus
	Title        string `json:"Title"`
	Season       string `json:"Season"`
	TotalSeasons string `json:"totalSeasons"`
	Episodes     []struct {
		Title    string `json:"Title"`
		Released string `json:"Released"`
		Episode  string `json:"Episode"`
		IMDbID   string `json:"imdbID"`
	} `json:"Episodes"`
}

// Provider messages that mean the request itself was refused, not that the
// title does not exist.
var refusedMessages = []string{
	"request limit reached",
	"invalid api key",
	"no api key provided",
}

func isRefusal(msg string) bool {
	msg = strings.ToLower(msg)
	for _, m := range refusedMessages {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

func providerKind(t string, hint models.ItemKind) models.ItemKind {
	switch strings.ToLower(strings.TrimSpace(t)) {
	case "movie":
		return models.KindMovie
	case "series", "episode":
		return models.KindSeries
	}
	if hint == "" {
		return ""
	}
	return hint.LookupKind()
}

func omdbType(kind models.ItemKind) string {
	if kind.LookupKind() == models.KindMovie {
		return "movie"
	}
	return "series"
}

// cleanValue maps the provider's "N/A" placeholder to "".
func cleanValue(v string) string {
	v = strings.TrimSpace(v)
	if strings.EqualFold(v, "N/A") {
		return ""
	}
	return v
}

// parseYear reads the leading year of "2008", "2019–" or "2019–2021".
func parseYear(v string) int {
	v = cleanValue(v)
	end := 0
	for end < len(v) && end < 4 && unicode.IsDigit(rune(v[end])) {
		end++
	}
	if end != 4 {
		return 0
	}
	year, _ := strconv.Atoi(v[:end])
	return year
}

func parseCount(v string) int {
	n, err := strconv.Atoi(cleanValue(v))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func (t omdbTitle) candidate(hint models.ItemKind) *models.Candidate {
	return &models.Candidate{
		ExternalID:   strings.TrimSpace(t.IMDbID),
		Title:        strings.TrimSpace(t.Title),
		Kind:         providerKind(t.Type, hint),
		Year:         parseYear(t.Year),
		PosterURL:    cleanValue(t.Poster),
		TotalSeasons: parseCount(t.TotalSeasons),
	}
}

package models

import "math"

// Completion is a derived watched/total pair. It is always computed from the
// current watch flags and season data and never persisted.
type Completion struct {
	Done  int `json:"done"`
	Total int `json:"total"`
}

// Add returns the element-wise sum.
func (c Completion) Add(o Completion) Completion {
	return Completion{Done: c.Done + o.Done, Total: c.Total + o.Total}
}

// Percent returns round(100*done/total), or 0 when total is 0.
func (c Completion) Percent() int {
	if c.Total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(c.Done) / float64(c.Total)))
}

// Complete reports whether every unit is watched.
func (c Completion) Complete() bool {
	return c.Total > 0 && c.Done >= c.Total
}

// ItemProgress is the completion of one catalog item with its resolved metadata.
type ItemProgress struct {
	Item       CatalogItem    `json:"item"`
	Record     ResolvedRecord `json:"record"`
	Completion Completion     `json:"completion"`

	Seasons []SeasonProgress `json:"seasons,omitempty"`
}

// SeasonProgress is one season of a series item. Unfetched seasons count as a
// single unit driven by the season flag.
type SeasonProgress struct {
	Number     int        `json:"number"`
	Fetched    bool       `json:"fetched"`
	Completion Completion `json:"completion"`
}

// CategoryProgress aggregates the items of one category.
type CategoryProgress struct {
	Key        string         `json:"key"`
	Title      string         `json:"title"`
	Items      []ItemProgress `json:"items"`
	Completion Completion     `json:"completion"`
}

// FranchiseProgress aggregates every category of a franchise.
type FranchiseProgress struct {
	Key        string             `json:"key"`
	Title      string             `json:"title"`
	Categories []CategoryProgress `json:"categories"`
	Completion Completion         `json:"completion"`
}

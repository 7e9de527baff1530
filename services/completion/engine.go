// Package completion derives watched/total numbers from flags and season
// metadata. Nothing here is stored.
package completion

import (
	"github.com/GojiraTai/koleksiyon-takip/models"
	"github.com/GojiraTai/koleksiyon-takip/services/metadata"
	"github.com/GojiraTai/koleksiyon-takip/services/progress"
)

// Flags is the read side of the progress store.
type Flags interface {
	ItemWatched(key string) bool
	EpisodeWatched(key string) bool
}

// ItemCompletion computes the completion of one item.
//
// A movie, or a series whose season count is unknown, is a single unit. Each
// season of a series contributes its episodes once fetched and one unit
// (the season flag) before that. A fetched season with no episodes adds
// nothing.
func ItemCompletion(item models.CatalogItem, resolved models.ResolvedRecord, seasons map[int]models.SeasonRecord, flags Flags) models.Completion {
	c, _ := itemBreakdown(item, resolved, seasons, flags)
	return c
}

// ItemProgress is ItemCompletion plus the per-season breakdown.
func ItemProgress(item models.CatalogItem, resolved models.ResolvedRecord, seasons map[int]models.SeasonRecord, flags Flags) models.ItemProgress {
	c, breakdown := itemBreakdown(item, resolved, seasons, flags)
	return models.ItemProgress{Item: item, Record: resolved, Completion: c, Seasons: breakdown}
}

func itemBreakdown(item models.CatalogItem, resolved models.ResolvedRecord, seasons map[int]models.SeasonRecord, flags Flags) (models.Completion, []models.SeasonProgress) {
	numbers := metadata.SeasonNumbers(item, resolved)
	if len(numbers) == 0 {
		return single(flags.ItemWatched(item.ID)), nil
	}

	var total models.Completion
	breakdown := make([]models.SeasonProgress, 0, len(numbers))
	for _, n := range numbers {
		sp := seasonProgress(item, n, seasons, flags)
		total = total.Add(sp.Completion)
		breakdown = append(breakdown, sp)
	}
	return total, breakdown
}

func seasonProgress(item models.CatalogItem, n int, seasons map[int]models.SeasonRecord, flags Flags) models.SeasonProgress {
	season, ok := seasons[n]
	if !ok || season.Unresolved {
		return models.SeasonProgress{
			Number:     n,
			Completion: single(flags.ItemWatched(progress.SeasonKey(item, n))),
		}
	}

	c := models.Completion{Total: len(season.Episodes)}
	for _, ep := range season.Episodes {
		if flags.EpisodeWatched(season.EpisodeKey(ep)) {
			c.Done++
		}
	}
	return models.SeasonProgress{Number: n, Fetched: true, Completion: c}
}

func single(watched bool) models.Completion {
	if watched {
		return models.Completion{Done: 1, Total: 1}
	}
	return models.Completion{Total: 1}
}

// Aggregate sums item completions.
func Aggregate(items []models.ItemProgress) models.Completion {
	var total models.Completion
	for _, it := range items {
		total = total.Add(it.Completion)
	}
	return total
}

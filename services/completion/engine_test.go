package completion

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GojiraTai/koleksiyon-takip/internal/storage"
	"github.com/GojiraTai/koleksiyon-takip/models"
	"github.com/GojiraTai/koleksiyon-takip/services/progress"
)

type flagSet struct {
	items    map[string]bool
	episodes map[string]bool
}

func (f flagSet) ItemWatched(key string) bool    { return f.items[key] }
func (f flagSet) EpisodeWatched(key string) bool { return f.episodes[key] }

func seriesRecord(id string, seasons int) models.ResolvedRecord {
	return models.ResolvedRecord{ExternalID: &id, Kind: models.KindSeries, TotalSeasons: &seasons}
}

func lokiSeason(n int, episodes int) models.SeasonRecord {
	rec := models.SeasonRecord{ExternalID: "tt9140554", SeasonNumber: n, Episodes: []models.Episode{}}
	for i := 1; i <= episodes; i++ {
		rec.Episodes = append(rec.Episodes, models.Episode{Number: i})
	}
	return rec
}

func TestMovieToggleCompletion(t *testing.T) {
	ctx := context.Background()
	flags := progress.NewService(storage.Open(ctx, storage.NewMemoryBackend(), ""))
	movie := models.CatalogItem{ID: "mcu:phase-1:iron-man", Title: "Iron Man", Kind: models.KindMovie}

	got := ItemCompletion(movie, models.UnresolvedRecord(), nil, flags)
	assert.Equal(t, models.Completion{Done: 0, Total: 1}, got)

	_, err := flags.ToggleItem(ctx, movie.ID)
	require.NoError(t, err)
	got = ItemCompletion(movie, models.UnresolvedRecord(), nil, flags)
	assert.Equal(t, models.Completion{Done: 1, Total: 1}, got)
	assert.Equal(t, 100, got.Percent())
}

func TestSeasonBulkMarkCompletion(t *testing.T) {
	ctx := context.Background()
	flags := progress.NewService(storage.Open(ctx, storage.NewMemoryBackend(), ""))
	series := models.CatalogItem{ID: "mcu:shows:loki", Title: "Loki", Kind: models.KindSeries}
	rec := seriesRecord("tt9140554", 1)
	season := lokiSeason(1, 3)
	seasons := map[int]models.SeasonRecord{1: season}

	require.NoError(t, flags.SetEpisode(ctx, season.EpisodeKey(season.Episodes[0]), true))
	require.NoError(t, flags.SetEpisode(ctx, season.EpisodeKey(season.Episodes[1]), true))

	got := ItemCompletion(series, rec, seasons, flags)
	assert.Equal(t, models.Completion{Done: 2, Total: 3}, got)
	assert.Equal(t, 67, got.Percent())

	require.NoError(t, flags.MarkSeason(ctx, series, 1, &season, true))
	got = ItemCompletion(series, rec, seasons, flags)
	assert.Equal(t, models.Completion{Done: 3, Total: 3}, got)
	assert.True(t, got.Complete())
}

func TestSeriesMixesFetchedAndUnfetchedSeasons(t *testing.T) {
	series := models.CatalogItem{ID: "loki", Title: "Loki", Kind: models.KindSeries}
	season1 := lokiSeason(1, 3)
	flags := flagSet{
		items:    map[string]bool{"loki#s2": true},
		episodes: map[string]bool{season1.EpisodeKey(season1.Episodes[0]): true},
	}

	got := ItemProgress(series, seriesRecord("tt9140554", 3), map[int]models.SeasonRecord{
		1: season1,
		3: lokiSeason(3, 0),
	}, flags)

	assert.Equal(t, models.Completion{Done: 2, Total: 4}, got.Completion)
	require.Len(t, got.Seasons, 3)
	assert.True(t, got.Seasons[0].Fetched)
	assert.False(t, got.Seasons[1].Fetched)
	assert.Equal(t, models.Completion{Done: 1, Total: 1}, got.Seasons[1].Completion)
	assert.True(t, got.Seasons[2].Fetched)
	assert.Equal(t, models.Completion{}, got.Seasons[2].Completion)
}

func TestEmptyFetchedSeasonAddsNothing(t *testing.T) {
	series := models.CatalogItem{ID: "loki", Title: "Loki", Kind: models.KindSeries}
	got := ItemCompletion(series, seriesRecord("tt9140554", 2), map[int]models.SeasonRecord{
		1: lokiSeason(1, 3),
		2: lokiSeason(2, 0),
	}, flagSet{items: map[string]bool{"loki#s2": true}})
	assert.Equal(t, models.Completion{Done: 0, Total: 3}, got)
}

func TestSeriesSeasonCountFallsBackToCatalog(t *testing.T) {
	series := models.CatalogItem{ID: "dd", Title: "Daredevil", Kind: models.KindSeries, DeclaredSeasons: 2}
	got := ItemCompletion(series, models.UnresolvedRecord(), nil, flagSet{items: map[string]bool{"dd#s1": true}})
	assert.Equal(t, models.Completion{Done: 1, Total: 2}, got)

	unknown := models.CatalogItem{ID: "x", Title: "Unknown Show", Kind: models.KindSeries}
	got = ItemCompletion(unknown, models.UnresolvedRecord(), nil, flagSet{items: map[string]bool{"x": true}})
	assert.Equal(t, models.Completion{Done: 1, Total: 1}, got)
}

func TestSeasonStubCompletion(t *testing.T) {
	stub := models.CatalogItem{ID: "loki-s2", Title: "Loki Season 2", Kind: models.KindSeasonStub, RawSeasonNumber: 2}
	rec := seriesRecord("tt9140554", 2)

	got := ItemCompletion(stub, rec, nil, flagSet{items: map[string]bool{"loki-s2": true}})
	assert.Equal(t, models.Completion{Done: 1, Total: 1}, got)

	season := lokiSeason(2, 6)
	got = ItemCompletion(stub, rec, map[int]models.SeasonRecord{2: season}, flagSet{
		episodes: map[string]bool{season.EpisodeKey(season.Episodes[5]): true},
	})
	assert.Equal(t, models.Completion{Done: 1, Total: 6}, got)
}

func TestAggregateEmpty(t *testing.T) {
	got := Aggregate(nil)
	assert.Equal(t, models.Completion{}, got)
	assert.Equal(t, 0, got.Percent())
}

package completion

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GojiraTai/koleksiyon-takip/internal/storage"
	"github.com/GojiraTai/koleksiyon-takip/models"
	"github.com/GojiraTai/koleksiyon-takip/services/lookup"
	"github.com/GojiraTai/koleksiyon-takip/services/lookup/lookuptest"
	"github.com/GojiraTai/koleksiyon-takip/services/metadata"
	"github.com/GojiraTai/koleksiyon-takip/services/progress"
)

func newTracker(t *testing.T) (*Service, *progress.Service, *lookuptest.Server) {
	t.Helper()
	srv := lookuptest.New(t)
	srv.AddTitle(lookuptest.Title{ID: "tt0371746", Title: "Iron Man", Year: "2008", Type: "movie"})
	srv.AddTitle(lookuptest.Title{ID: "tt9140554", Title: "Loki", Year: "2021–2023", Type: "series", TotalSeasons: 2})
	srv.AddSeason("tt9140554", 1,
		lookuptest.Episode{ID: "tt10160804", Title: "Glorious Purpose"},
		lookuptest.Episode{ID: "tt10160806", Title: "The Variant"},
		lookuptest.Episode{ID: "tt10160808", Title: "Lamentis"},
	)

	client := lookup.NewClient(lookup.Options{APIKey: lookuptest.APIKey, BaseURL: srv.Endpoint(), RetryDelay: time.Millisecond})
	store := storage.Open(context.Background(), storage.NewMemoryBackend(), "")
	resolver := metadata.NewService(client, metadata.NewResolutionCache(store), 2)
	flags := progress.NewService(store)
	return NewService(resolver, flags, 2), flags, srv
}

func marvel() models.Franchise {
	return models.Franchise{
		Key:   "marvel",
		Title: "Marvel",
		Categories: []models.Category{
			{Key: "movies", Title: "Movies", Items: []models.CatalogItem{
				{ID: "marvel:movies:iron-man", Title: "Iron Man (2008)", Kind: models.KindMovie},
				{ID: "marvel:movies:howard", Title: "Howard the Duck", Kind: models.KindMovie},
			}},
			{Key: "shows", Title: "Shows", Items: []models.CatalogItem{
				{ID: "marvel:shows:loki", Title: "Loki", Kind: models.KindSeries},
			}},
			{Key: "empty", Title: "Empty"},
		},
	}
}

func TestRefreshFranchise(t *testing.T) {
	tracker, flags, srv := newTracker(t)
	ctx := context.Background()
	fr := marvel()

	got := tracker.RefreshFranchise(ctx, fr)
	// movies: 2 units; loki: season 1 has 3 episodes, season 2 unknown to the provider.
	assert.Equal(t, models.Completion{Done: 0, Total: 6}, got.Completion)
	require.Len(t, got.Categories, 3)
	assert.Equal(t, 0, got.Categories[2].Completion.Percent())

	require.NoError(t, flags.SetItem(ctx, "marvel:movies:iron-man", true))
	require.NoError(t, flags.SetEpisode(ctx, "tt10160806", true))

	calls := srv.TotalCalls()
	got = tracker.Franchise(fr)
	assert.Equal(t, models.Completion{Done: 2, Total: 6}, got.Completion)
	assert.Equal(t, 33, got.Completion.Percent())
	assert.Equal(t, calls, srv.TotalCalls(), "cached progress must not hit the provider")

	// Refreshing again is served from the cache, including the negative entries.
	tracker.RefreshFranchise(ctx, fr)
	assert.Equal(t, calls, srv.TotalCalls())

	overall := tracker.Overall(&models.Catalog{Franchises: []models.Franchise{fr}})
	assert.Equal(t, got.Completion, overall)
}

func TestItemBeforeResolution(t *testing.T) {
	tracker, _, srv := newTracker(t)
	loki := models.CatalogItem{ID: "loki", Title: "Loki", Kind: models.KindSeries, DeclaredSeasons: 2}

	got := tracker.Item(loki)
	assert.Equal(t, models.Completion{Total: 2}, got.Completion)
	assert.Zero(t, srv.TotalCalls())

	got = tracker.RefreshItem(context.Background(), loki)
	assert.Equal(t, models.Completion{Total: 4}, got.Completion)
	assert.Equal(t, "tt9140554", got.Record.ID())
}

package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GojiraTai/koleksiyon-takip/models"
)

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func sampleState() *State {
	state := NewState()
	state.WatchedItems["mcu:phase-1:iron-man"] = true
	state.WatchedItems["mcu:phase-1:thor"] = false
	state.WatchedItems["mcu:shows:loki#s1"] = true
	state.WatchedEpisodes["tt10160804"] = true
	resolvedAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	state.ResolutionCache["title:series:loki"] = models.ResolvedRecord{
		ExternalID:   strPtr("tt9140554"),
		Kind:         models.KindSeries,
		Title:        "Loki",
		Year:         2021,
		PosterURL:    strPtr("https://img.example/loki.jpg"),
		TotalSeasons: intPtr(2),
		MatchScore:   1,
		ResolvedAt:   resolvedAt,
	}
	state.ResolutionCache["title:movie:unknown thing"] = models.UnresolvedRecord()
	airDate := "2021-06-09"
	state.SeasonCache["tt9140554#1"] = models.SeasonRecord{
		ExternalID:   "tt9140554",
		SeasonNumber: 1,
		Episodes: []models.Episode{
			{ExternalEpisodeID: "tt10160804", Number: 1, Title: "Glorious Purpose", AirDate: &airDate},
			{ExternalEpisodeID: "tt10160806", Number: 2, Title: "The Variant"},
		},
		FetchedAt: resolvedAt,
	}
	state.SeasonCache["tt9140554#3"] = models.SeasonRecord{ExternalID: "tt9140554", SeasonNumber: 3, Episodes: []models.Episode{}, FetchedAt: resolvedAt}
	state.SeasonCache["tt0000001#2"] = models.UnresolvedSeason("tt0000001", 2)
	return state
}

func TestStateRoundTrip(t *testing.T) {
	want := sampleState()
	data, err := want.Encode()
	require.NoError(t, err)

	got, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestDecodeFillsMissingSections(t *testing.T) {
	got, err := Decode([]byte(`{"watchedItems":{"a":true}}`))
	require.NoError(t, err)
	assert.True(t, got.WatchedItems["a"])
	assert.NotNil(t, got.WatchedEpisodes)
	assert.NotNil(t, got.ResolutionCache)
	assert.NotNil(t, got.SeasonCache)
}

func TestCloneIsIndependent(t *testing.T) {
	orig := sampleState()
	clone := orig.Clone()
	clone.WatchedItems["new"] = true
	season := clone.SeasonCache["tt9140554#1"]
	season.Episodes[0].Title = "changed"

	assert.NotContains(t, orig.WatchedItems, "new")
	assert.Equal(t, "Glorious Purpose", orig.SeasonCache["tt9140554#1"].Episodes[0].Title)
}

func TestStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	backend := NewFileBackend(afero.NewMemMapFs(), "/data")

	store := Open(ctx, backend, "")
	err := store.Update(ctx, func(s *State) error {
		s.WatchedItems["item-1"] = true
		s.ResolutionCache["id:tt1"] = models.ResolvedRecord{ExternalID: strPtr("tt1"), Title: "One"}
		return nil
	})
	require.NoError(t, err)

	reopened := Open(ctx, backend, "")
	reopened.View(func(s *State) {
		assert.True(t, s.WatchedItems["item-1"])
		assert.Equal(t, "tt1", s.ResolutionCache["id:tt1"].ID())
	})
}

func TestStoreCorruptDocumentStartsEmpty(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	require.NoError(t, backend.Set(ctx, DefaultKey, []byte("{not json")))

	store := Open(ctx, backend, DefaultKey)
	snap := store.Snapshot()
	assert.Empty(t, snap.WatchedItems)
	assert.Empty(t, snap.ResolutionCache)
}

func TestStoreUpdateRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	store := Open(ctx, NewMemoryBackend(), "")
	require.NoError(t, store.Update(ctx, func(s *State) error {
		s.WatchedItems["kept"] = true
		return nil
	}))

	boom := errors.New("boom")
	err := store.Update(ctx, func(s *State) error {
		s.WatchedItems["dropped"] = true
		s.WatchedEpisodes["dropped"] = true
		return boom
	})
	require.ErrorIs(t, err, boom)

	snap := store.Snapshot()
	assert.True(t, snap.WatchedItems["kept"])
	assert.NotContains(t, snap.WatchedItems, "dropped")
	assert.NotContains(t, snap.WatchedEpisodes, "dropped")
}

type failingBackend struct{ Backend }

func (failingBackend) Set(context.Context, string, []byte) error {
	return errors.New("disk full")
}

func TestStoreKeepsStateWhenFlushFails(t *testing.T) {
	ctx := context.Background()
	store := Open(ctx, failingBackend{NewMemoryBackend()}, "")
	require.NoError(t, store.Update(ctx, func(s *State) error {
		s.WatchedItems["x"] = true
		return nil
	}))
	store.View(func(s *State) {
		assert.True(t, s.WatchedItems["x"])
	})
}

func TestFileBackend(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	backend := NewFileBackend(afero.NewOsFs(), dir)

	_, err := backend.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, backend.Set(ctx, "state", []byte(`{"a":1}`)))
	data, err := backend.Get(ctx, "state")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(data))

	exists, err := afero.Exists(afero.NewOsFs(), filepath.Join(dir, "state.json.tmp"))
	require.NoError(t, err)
	assert.False(t, exists)

	require.ErrorIs(t, backend.Set(ctx, " ", nil), ErrKeyRequired)
	require.Error(t, backend.Set(ctx, "../escape", nil))
}

func TestSQLiteBackend(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.db")

	backend, err := OpenSQLite(ctx, path)
	require.NoError(t, err)

	_, err = backend.Get(ctx, DefaultKey)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, backend.Set(ctx, DefaultKey, []byte("first")))
	require.NoError(t, backend.Set(ctx, DefaultKey, []byte("second")))
	data, err := backend.Get(ctx, DefaultKey)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
	require.NoError(t, backend.Close())

	// Reopening reruns migrations against the existing schema.
	backend, err = OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer backend.Close()

	store := Open(ctx, backend, "other")
	require.NoError(t, store.Update(ctx, func(s *State) error {
		s.WatchedEpisodes["ep"] = true
		return nil
	}))
	assert.True(t, Open(ctx, backend, "other").Snapshot().WatchedEpisodes["ep"])
}

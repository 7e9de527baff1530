package metadata

import (
	"context"
	"fmt"
	"strings"

	"github.com/GojiraTai/koleksiyon-takip/internal/storage"
	"github.com/GojiraTai/koleksiyon-takip/models"
	"github.com/GojiraTai/koleksiyon-takip/utils/titles"
)

// ResolutionCache is the durable key to record map kept inside the state
// document. Records are immutable once written; callers must not modify the
// episode slices they get back.
type ResolutionCache struct {
	store *storage.Store
}

func NewResolutionCache(store *storage.Store) *ResolutionCache {
	return &ResolutionCache{store: store}
}

// IDKey is the cache key for a provider id.
func IDKey(externalID string) string {
	return "id:" + strings.TrimSpace(externalID)
}

// ItemKey is the cache key for a catalog item: its declared provider id when
// present, otherwise its folded search title.
func ItemKey(item models.CatalogItem) string {
	if id := strings.TrimSpace(item.ExternalID); id != "" {
		return IDKey(id)
	}
	return titles.Key(item.SearchTitle(), item.Kind)
}

// SeasonKey is the cache key for one season of a series.
func SeasonKey(externalID string, seasonNumber int) string {
	return fmt.Sprintf("%s#%d", strings.TrimSpace(externalID), seasonNumber)
}

func (c *ResolutionCache) Get(key string) (models.ResolvedRecord, bool) {
	var (
		rec models.ResolvedRecord
		ok  bool
	)
	c.store.View(func(s *storage.State) {
		rec, ok = s.ResolutionCache[key]
	})
	return rec, ok
}

// Put writes rec under every non-empty key in one flush.
func (c *ResolutionCache) Put(ctx context.Context, rec models.ResolvedRecord, keys ...string) {
	_ = c.store.Update(ctx, func(s *storage.State) error {
		for _, key := range keys {
			if key != "" {
				s.ResolutionCache[key] = rec
			}
		}
		return nil
	})
}

// Delete removes the given keys and reports how many existed.
func (c *ResolutionCache) Delete(ctx context.Context, keys ...string) int {
	removed := 0
	_ = c.store.Update(ctx, func(s *storage.State) error {
		for _, key := range keys {
			if _, ok := s.ResolutionCache[key]; ok {
				delete(s.ResolutionCache, key)
				removed++
			}
		}
		return nil
	})
	return removed
}

func (c *ResolutionCache) GetSeason(externalID string, seasonNumber int) (models.SeasonRecord, bool) {
	var (
		rec models.SeasonRecord
		ok  bool
	)
	key := SeasonKey(externalID, seasonNumber)
	c.store.View(func(s *storage.State) {
		rec, ok = s.SeasonCache[key]
	})
	return rec, ok
}

func (c *ResolutionCache) PutSeason(ctx context.Context, rec models.SeasonRecord) {
	key := SeasonKey(rec.ExternalID, rec.SeasonNumber)
	_ = c.store.Update(ctx, func(s *storage.State) error {
		s.SeasonCache[key] = rec
		return nil
	})
}

// Len returns the number of item and season entries.
func (c *ResolutionCache) Len() (items, seasons int) {
	c.store.View(func(s *storage.State) {
		items, seasons = len(s.ResolutionCache), len(s.SeasonCache)
	})
	return items, seasons
}

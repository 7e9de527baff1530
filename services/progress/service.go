// Package progress owns the durable watched flags.
package progress

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/GojiraTai/koleksiyon-takip/internal/storage"
	"github.com/GojiraTai/koleksiyon-takip/models"
)

var (
	ErrKeyRequired    = errors.New("progress key is required")
	ErrSeasonRequired = errors.New("season number is required")
)

// Service mutates flags only through explicit toggle, set and bulk calls.
// Every mutation is flushed before it returns.
type Service struct {
	store *storage.Store
}

func NewService(store *storage.Store) *Service {
	return &Service{store: store}
}

// SeasonKey is the flag key that marks a season watched as a whole. A season
// stub is its own season, so its flag is the item flag.
func SeasonKey(item models.CatalogItem, seasonNumber int) string {
	if item.Kind == models.KindSeasonStub {
		return item.ID
	}
	return fmt.Sprintf("%s#s%d", item.ID, seasonNumber)
}

func (s *Service) ItemWatched(key string) bool {
	var watched bool
	s.store.View(func(st *storage.State) {
		watched = st.WatchedItems[key]
	})
	return watched
}

func (s *Service) EpisodeWatched(key string) bool {
	var watched bool
	s.store.View(func(st *storage.State) {
		watched = st.WatchedEpisodes[key]
	})
	return watched
}

// ToggleItem flips an item flag and returns the new value.
func (s *Service) ToggleItem(ctx context.Context, key string) (bool, error) {
	return s.toggle(ctx, key, func(st *storage.State) map[string]bool { return st.WatchedItems })
}

func (s *Service) ToggleEpisode(ctx context.Context, key string) (bool, error) {
	return s.toggle(ctx, key, func(st *storage.State) map[string]bool { return st.WatchedEpisodes })
}

func (s *Service) SetItem(ctx context.Context, key string, watched bool) error {
	return s.set(ctx, key, watched, func(st *storage.State) map[string]bool { return st.WatchedItems })
}

func (s *Service) SetEpisode(ctx context.Context, key string, watched bool) error {
	return s.set(ctx, key, watched, func(st *storage.State) map[string]bool { return st.WatchedEpisodes })
}

func (s *Service) toggle(ctx context.Context, key string, flags func(*storage.State) map[string]bool) (bool, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return false, ErrKeyRequired
	}
	var watched bool
	err := s.store.Update(ctx, func(st *storage.State) error {
		m := flags(st)
		watched = !m[key]
		setFlag(m, key, watched)
		return nil
	})
	return watched, err
}

func (s *Service) set(ctx context.Context, key string, watched bool, flags func(*storage.State) map[string]bool) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return ErrKeyRequired
	}
	return s.store.Update(ctx, func(st *storage.State) error {
		setFlag(flags(st), key, watched)
		return nil
	})
}

// Unwatched flags are removed rather than stored as false.
func setFlag(m map[string]bool, key string, watched bool) {
	if watched {
		m[key] = true
		return
	}
	delete(m, key)
}

// MarkSeason sets the season flag and every episode flag of record in one
// transaction. record may be nil or unresolved when the episode list has not
// been fetched; only the season flag changes then.
func (s *Service) MarkSeason(ctx context.Context, item models.CatalogItem, seasonNumber int, record *models.SeasonRecord, watched bool) error {
	if strings.TrimSpace(item.ID) == "" {
		return ErrKeyRequired
	}
	if item.Kind == models.KindSeasonStub {
		seasonNumber = item.RawSeasonNumber
	}
	if seasonNumber <= 0 {
		return ErrSeasonRequired
	}

	episodes := 0
	err := s.store.Update(ctx, func(st *storage.State) error {
		markSeasonLocked(st, item, seasonNumber, record, watched)
		if record != nil && !record.Unresolved {
			episodes = len(record.Episodes)
		}
		return nil
	})
	if err != nil {
		return err
	}
	log.Printf("[progress] marked item=%s season=%d watched=%v episodes=%d", item.ID, seasonNumber, watched, episodes)
	return nil
}

// MarkSeries applies MarkSeason to each listed season atomically. seasons
// holds the fetched records; numbers without a record only get their season
// flag.
func (s *Service) MarkSeries(ctx context.Context, item models.CatalogItem, numbers []int, seasons map[int]models.SeasonRecord, watched bool) error {
	if strings.TrimSpace(item.ID) == "" {
		return ErrKeyRequired
	}
	err := s.store.Update(ctx, func(st *storage.State) error {
		for _, n := range numbers {
			if n <= 0 {
				return fmt.Errorf("%w: got %d", ErrSeasonRequired, n)
			}
			var record *models.SeasonRecord
			if season, ok := seasons[n]; ok {
				record = &season
			}
			markSeasonLocked(st, item, n, record, watched)
		}
		return nil
	})
	if err != nil {
		return err
	}
	log.Printf("[progress] marked item=%s seasons=%d watched=%v", item.ID, len(numbers), watched)
	return nil
}

func markSeasonLocked(st *storage.State, item models.CatalogItem, seasonNumber int, record *models.SeasonRecord, watched bool) {
	setFlag(st.WatchedItems, SeasonKey(item, seasonNumber), watched)
	if record == nil || record.Unresolved {
		return
	}
	for _, ep := range record.Episodes {
		setFlag(st.WatchedEpisodes, record.EpisodeKey(ep), watched)
	}
}

// Counts returns how many item and episode flags are set.
func (s *Service) Counts() (items, episodes int) {
	s.store.View(func(st *storage.State) {
		items, episodes = len(st.WatchedItems), len(st.WatchedEpisodes)
	})
	return items, episodes
}

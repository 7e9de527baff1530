// Package metadata resolves catalog items to provider records and keeps the
// results in the durable resolution cache.
package metadata

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/sourcegraph/conc/pool"
	"golang.org/x/sync/singleflight"

	"github.com/GojiraTai/koleksiyon-takip/models"
	"github.com/GojiraTai/koleksiyon-takip/services/lookup"
	"github.com/GojiraTai/koleksiyon-takip/utils/similarity"
	"github.com/GojiraTai/koleksiyon-takip/utils/titles"
)

const defaultConcurrency = 4

// Service never returns errors to callers: every failure collapses to the
// unresolved sentinel. Not-found answers are cached; transient failures are
// not, so the next call retries.
type Service struct {
	lookup      Lookup
	cache       *ResolutionCache
	concurrency int
	now         func() time.Time

	// Concurrent resolutions of the same key share one provider call.
	inflight singleflight.Group
}

func NewService(lookup Lookup, cache *ResolutionCache, concurrency int) *Service {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Service{
		lookup:      lookup,
		cache:       cache,
		concurrency: concurrency,
		now:         time.Now,
	}
}

// Cache exposes the underlying resolution cache.
func (s *Service) Cache() *ResolutionCache { return s.cache }

// Resolve returns the cached record for item or fetches it. The fetch is
// detached from ctx cancellation so a started resolution always gets cached.
func (s *Service) Resolve(ctx context.Context, item models.CatalogItem) models.ResolvedRecord {
	if err := item.Validate(); err != nil {
		log.Printf("[metadata] skipping resolution: %v", err)
		return models.UnresolvedRecord()
	}
	key := ItemKey(item)
	if key == "" {
		log.Printf("[metadata] item %s has no usable title after normalization (%q)", item.ID, item.SearchTitle())
		return models.UnresolvedRecord()
	}
	if rec, ok := s.cache.Get(key); ok {
		return withItemPoster(item, rec)
	}

	detached := context.WithoutCancel(ctx)
	v, _, shared := s.inflight.Do("item:"+key, func() (any, error) {
		return s.resolve(detached, item, key), nil
	})
	if shared {
		log.Printf("[metadata] joined inflight resolution key=%q", key)
	}
	return withItemPoster(item, v.(models.ResolvedRecord))
}

// withItemPoster fills in the item's own catalog poster when the provider has
// none. Cached records only ever carry provider posters since one record can
// be shared by several catalog items.
func withItemPoster(item models.CatalogItem, rec models.ResolvedRecord) models.ResolvedRecord {
	if !rec.Found() || rec.Poster() != "" {
		return rec
	}
	if poster := strings.TrimSpace(item.Poster); poster != "" {
		rec.PosterURL = &poster
	}
	return rec
}

// ResolveAsync runs Resolve in the background. The channel yields exactly one
// record and is then closed.
func (s *Service) ResolveAsync(ctx context.Context, item models.CatalogItem) <-chan models.ResolvedRecord {
	out := make(chan models.ResolvedRecord, 1)
	go func() {
		defer close(out)
		out <- s.Resolve(ctx, item)
	}()
	return out
}

// ResolveCategory resolves items with bounded parallelism. Results keep the
// input order.
func (s *Service) ResolveCategory(ctx context.Context, items []models.CatalogItem) []models.ResolvedRecord {
	results := make([]models.ResolvedRecord, len(items))
	if len(items) == 0 {
		return results
	}

	p := pool.New().WithMaxGoroutines(s.concurrency)
	for idx, item := range items {
		p.Go(func() {
			results[idx] = s.Resolve(ctx, item)
		})
	}
	p.Wait()

	found := 0
	for _, rec := range results {
		if rec.Found() {
			found++
		}
	}
	log.Printf("[metadata] batch resolve complete total=%d found=%d", len(items), found)
	return results
}

func (s *Service) resolve(ctx context.Context, item models.CatalogItem, key string) models.ResolvedRecord {
	// A flight that finished just before this one may already have written it.
	if rec, ok := s.cache.Get(key); ok {
		return rec
	}

	searchTitle := titles.Normalize(item.SearchTitle(), item.Kind)
	var (
		cand *models.Candidate
		err  error
	)
	if id := strings.TrimSpace(item.ExternalID); id != "" {
		cand, err = s.lookup.FindByID(ctx, id)
	} else {
		cand, err = s.lookup.FindByTitle(ctx, searchTitle, item.Kind.LookupKind())
	}

	switch {
	case err == nil && cand != nil && strings.TrimSpace(cand.ExternalID) != "":
		rec := s.record(item, searchTitle, cand)
		s.cache.Put(ctx, rec, key, IDKey(cand.ExternalID))
		log.Printf("[metadata] resolved item=%s key=%q -> %s (%q, score=%.2f)", item.ID, key, rec.ID(), rec.Title, rec.MatchScore)
		return rec
	case err == nil || errors.Is(err, lookup.ErrNotFound):
		log.Printf("[metadata] no provider match for item=%s key=%q, caching negative result", item.ID, key)
		rec := models.UnresolvedRecord()
		s.cache.Put(ctx, rec, key)
		return rec
	default:
		log.Printf("[metadata] lookup failed for item=%s key=%q, will retry later: %v", item.ID, key, err)
		return models.UnresolvedRecord()
	}
}

func (s *Service) record(item models.CatalogItem, searchTitle string, cand *models.Candidate) models.ResolvedRecord {
	id := strings.TrimSpace(cand.ExternalID)
	kind := cand.Kind
	if kind == "" {
		kind = item.Kind.LookupKind()
	}
	rec := models.ResolvedRecord{
		ExternalID: &id,
		Kind:       kind,
		Title:      cand.Title,
		Year:       cand.Year,
		MatchScore: 1,
		ResolvedAt: s.now().UTC(),
	}
	if searchTitle != "" && strings.TrimSpace(item.ExternalID) == "" {
		rec.MatchScore = similarity.Similarity(searchTitle, cand.Title)
		if rec.MatchScore < similarity.LowConfidence {
			log.Printf("[metadata] low confidence match item=%s %q -> %q (score=%.2f)", item.ID, searchTitle, cand.Title, rec.MatchScore)
		}
	}

	if poster := strings.TrimSpace(cand.PosterURL); poster != "" {
		rec.PosterURL = &poster
	}
	if cand.TotalSeasons > 0 {
		seasons := cand.TotalSeasons
		rec.TotalSeasons = &seasons
	}
	return rec
}

// CachedSeason returns the cached season record without contacting the
// provider.
func (s *Service) CachedSeason(externalID string, seasonNumber int) (models.SeasonRecord, bool) {
	return s.cache.GetSeason(externalID, seasonNumber)
}

// ResolveSeason returns the episode list for one season, fetching and caching
// it on a miss. An empty episode list is a valid cached answer.
func (s *Service) ResolveSeason(ctx context.Context, externalID string, seasonNumber int) models.SeasonRecord {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" || seasonNumber <= 0 {
		return models.UnresolvedSeason(externalID, seasonNumber)
	}
	if rec, ok := s.cache.GetSeason(externalID, seasonNumber); ok {
		return rec
	}

	detached := context.WithoutCancel(ctx)
	key := SeasonKey(externalID, seasonNumber)
	v, _, _ := s.inflight.Do("season:"+key, func() (any, error) {
		return s.resolveSeason(detached, externalID, seasonNumber), nil
	})
	return v.(models.SeasonRecord)
}

func (s *Service) resolveSeason(ctx context.Context, externalID string, seasonNumber int) models.SeasonRecord {
	if rec, ok := s.cache.GetSeason(externalID, seasonNumber); ok {
		return rec
	}

	fetched, err := s.lookup.FetchSeason(ctx, externalID, seasonNumber)
	switch {
	case err == nil && fetched != nil:
		rec := *fetched
		rec.ExternalID = externalID
		rec.SeasonNumber = seasonNumber
		if rec.Episodes == nil {
			rec.Episodes = []models.Episode{}
		}
		if rec.FetchedAt.IsZero() {
			rec.FetchedAt = s.now().UTC()
		}
		s.cache.PutSeason(ctx, rec)
		log.Printf("[metadata] fetched season %s s%02d episodes=%d", externalID, seasonNumber, len(rec.Episodes))
		return rec
	case err == nil || errors.Is(err, lookup.ErrNotFound):
		log.Printf("[metadata] season %s s%02d not found, caching negative result", externalID, seasonNumber)
		rec := models.UnresolvedSeason(externalID, seasonNumber)
		s.cache.PutSeason(ctx, rec)
		return rec
	default:
		log.Printf("[metadata] season fetch failed %s s%02d, will retry later: %v", externalID, seasonNumber, err)
		return models.UnresolvedSeason(externalID, seasonNumber)
	}
}

// SeasonNumbers lists the seasons an item covers: the stub's own season, or
// 1..N for a series using the provider count and falling back to the catalog.
func SeasonNumbers(item models.CatalogItem, rec models.ResolvedRecord) []int {
	switch item.Kind {
	case models.KindSeasonStub:
		if item.RawSeasonNumber > 0 {
			return []int{item.RawSeasonNumber}
		}
		return nil
	case models.KindSeries:
		total := rec.Seasons()
		if total <= 0 {
			total = item.DeclaredSeasons
		}
		numbers := make([]int, 0, max(total, 0))
		for n := 1; n <= total; n++ {
			numbers = append(numbers, n)
		}
		return numbers
	}
	return nil
}

// ExpandSeries resolves item and fetches every season it covers. Seasons that
// could not be fetched are absent from the result.
func (s *Service) ExpandSeries(ctx context.Context, item models.CatalogItem) (models.ResolvedRecord, map[int]models.SeasonRecord) {
	rec := s.Resolve(ctx, item)
	seasons := make(map[int]models.SeasonRecord)
	if !rec.Found() || item.Kind == models.KindMovie {
		return rec, seasons
	}

	numbers := SeasonNumbers(item, rec)
	fetched := make([]models.SeasonRecord, len(numbers))
	p := pool.New().WithMaxGoroutines(s.concurrency)
	for idx, n := range numbers {
		p.Go(func() {
			fetched[idx] = s.ResolveSeason(ctx, rec.ID(), n)
		})
	}
	p.Wait()

	for _, season := range fetched {
		if !season.Unresolved {
			seasons[season.SeasonNumber] = season
		}
	}
	return rec, seasons
}

// CachedSeasons returns the already-fetched seasons of item, keyed by season
// number.
func (s *Service) CachedSeasons(item models.CatalogItem, rec models.ResolvedRecord) map[int]models.SeasonRecord {
	seasons := make(map[int]models.SeasonRecord)
	if !rec.Found() {
		return seasons
	}
	for _, n := range SeasonNumbers(item, rec) {
		if season, ok := s.cache.GetSeason(rec.ID(), n); ok && !season.Unresolved {
			seasons[n] = season
		}
	}
	return seasons
}

// Invalidate drops the cached record for item so the next Resolve asks the
// provider again. It reports whether anything was removed.
func (s *Service) Invalidate(ctx context.Context, item models.CatalogItem) bool {
	key := ItemKey(item)
	if key == "" {
		return false
	}
	keys := []string{key}
	if rec, ok := s.cache.Get(key); ok && rec.Found() {
		if alias := IDKey(rec.ID()); alias != key {
			keys = append(keys, alias)
		}
	}
	removed := s.cache.Delete(ctx, keys...) > 0
	if removed {
		log.Printf("[metadata] invalidated keys=%q for item=%s", keys, item.ID)
	}
	return removed
}

// Peek returns the cached record for item without resolving it.
func (s *Service) Peek(item models.CatalogItem) (models.ResolvedRecord, bool) {
	key := ItemKey(item)
	if key == "" {
		return models.ResolvedRecord{}, false
	}
	rec, ok := s.cache.Get(key)
	if !ok {
		return rec, false
	}
	return withItemPoster(item, rec), true
}

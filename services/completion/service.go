package completion

import (
	"context"
	"log"

	"github.com/sourcegraph/conc/pool"

	"github.com/GojiraTai/koleksiyon-takip/models"
	"github.com/GojiraTai/koleksiyon-takip/services/metadata"
	"github.com/GojiraTai/koleksiyon-takip/services/progress"
)

// Service computes progress for catalog nodes from the live cache and flags.
// The plain getters never contact the provider; the Refresh variants resolve
// first.
type Service struct {
	resolver    *metadata.Service
	progress    *progress.Service
	concurrency int
}

func NewService(resolver *metadata.Service, progress *progress.Service, concurrency int) *Service {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Service{resolver: resolver, progress: progress, concurrency: concurrency}
}

func (s *Service) Item(item models.CatalogItem) models.ItemProgress {
	rec, _ := s.resolver.Peek(item)
	seasons := s.resolver.CachedSeasons(item, rec)
	return ItemProgress(item, rec, seasons, s.progress)
}

func (s *Service) Category(cat models.Category) models.CategoryProgress {
	out := models.CategoryProgress{
		Key:   cat.Key,
		Title: cat.Title,
		Items: make([]models.ItemProgress, 0, len(cat.Items)),
	}
	for _, item := range cat.Items {
		out.Items = append(out.Items, s.Item(item))
	}
	out.Completion = Aggregate(out.Items)
	return out
}

func (s *Service) Franchise(fr models.Franchise) models.FranchiseProgress {
	out := models.FranchiseProgress{
		Key:        fr.Key,
		Title:      fr.Title,
		Categories: make([]models.CategoryProgress, 0, len(fr.Categories)),
	}
	for _, cat := range fr.Categories {
		cp := s.Category(cat)
		out.Completion = out.Completion.Add(cp.Completion)
		out.Categories = append(out.Categories, cp)
	}
	return out
}

// Overall sums every franchise of the catalog.
func (s *Service) Overall(catalog *models.Catalog) models.Completion {
	var total models.Completion
	if catalog == nil {
		return total
	}
	for _, fr := range catalog.Franchises {
		total = total.Add(s.Franchise(fr).Completion)
	}
	return total
}

// RefreshItem resolves item, fetches its seasons and returns its progress.
func (s *Service) RefreshItem(ctx context.Context, item models.CatalogItem) models.ItemProgress {
	s.refresh(ctx, item)
	return s.Item(item)
}

// RefreshFranchise resolves every item of fr with bounded parallelism before
// computing its progress.
func (s *Service) RefreshFranchise(ctx context.Context, fr models.Franchise) models.FranchiseProgress {
	p := pool.New().WithMaxGoroutines(s.concurrency)
	count := 0
	for _, cat := range fr.Categories {
		for _, item := range cat.Items {
			count++
			p.Go(func() { s.refresh(ctx, item) })
		}
	}
	p.Wait()
	log.Printf("[completion] refreshed franchise=%s items=%d", fr.Key, count)
	return s.Franchise(fr)
}

func (s *Service) refresh(ctx context.Context, item models.CatalogItem) {
	if item.Kind == models.KindMovie {
		s.resolver.Resolve(ctx, item)
		return
	}
	s.resolver.ExpandSeries(ctx, item)
}

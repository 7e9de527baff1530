package metadata

import (
	"context"

	"github.com/GojiraTai/koleksiyon-takip/models"
)

//go:generate mockgen -destination=mock_lookup_test.go -package=metadata . Lookup

// Lookup is the provider the resolver falls back to on a cache miss.
// *lookup.Client satisfies it.
type Lookup interface {
	FindByTitle(ctx context.Context, title string, kind models.ItemKind) (*models.Candidate, error)
	FindByID(ctx context.Context, externalID string) (*models.Candidate, error)
	FetchSeason(ctx context.Context, externalID string, seasonNumber int) (*models.SeasonRecord, error)
}

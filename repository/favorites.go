package repository

import (
	"context"

	"github.com/relichub/backend/domain"
)

// FavoritesRepository loads and flushes the per-owner favorites aggregate.
//
// FindByOwner is cache-first with store fallback; soft-deleted rows never
// take part in hydration and domain.ErrFavoritesNotFound is returned when no
// active rows exist. SaveIncremental flushes only the tracked changes inside
// one transaction: on failure the tracker is left intact for a retry, on
// success it is cleared and the owner's cache entries are refreshed and the
// derived prefix evicted. Save is the full-overwrite variant used for bulk
// rebuilds. ExistsByOwner probes the store without hydrating.
type FavoritesRepository interface {
	FindByOwner(ctx context.Context, ownerID string) (*domain.FavoritesAggregate, error)
	SaveIncremental(ctx context.Context, agg *domain.FavoritesAggregate) error
	Save(ctx context.Context, agg *domain.FavoritesAggregate) error
	ExistsByOwner(ctx context.Context, ownerID string) (bool, error)

	// IsFavorited answers the per-relic flag through the derived cache.
	IsFavorited(ctx context.Context, ownerID, relicID string) (bool, error)
}

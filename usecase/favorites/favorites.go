// Package favorites implements the application service for the favorites
// aggregate: every state change runs one locked load-mutate-flush cycle.
//
// Lock policy: state-changing operations serialize on the owner's write lock
// and fail hard when it cannot be acquired; reads never take the lock.
package favorites

import (
	"context"

	"go.uber.org/zap"

	"github.com/relichub/backend/domain"
	"github.com/relichub/backend/repository"
)

type UseCase struct {
	repo   repository.FavoritesRepository
	cache  repository.CacheService
	logger *zap.Logger
}

func New(repo repository.FavoritesRepository, cache repository.CacheService, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

// ListFavorites returns the owner's active favorites. A brand-new owner gets
// an empty list, not an error.
func (uc *UseCase) ListFavorites(ctx context.Context, ownerID string) ([]*domain.FavoriteItem, error) {
	agg, err := uc.repo.FindByOwner(ctx, ownerID)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return []*domain.FavoriteItem{}, nil
		}
		return nil, err
	}
	return agg.Favorites(), nil
}

// IsFavorited answers the per-relic flag through the derived cache.
func (uc *UseCase) IsFavorited(ctx context.Context, ownerID, relicID string) (bool, error) {
	return uc.repo.IsFavorited(ctx, ownerID, relicID)
}

// AddFavorite marks a relic as the owner's favorite.
func (uc *UseCase) AddFavorite(ctx context.Context, ownerID, relicID, note string) (*domain.FavoriteItem, error) {
	var item *domain.FavoriteItem
	err := uc.locked(ctx, ownerID, func(ctx context.Context) error {
		agg, err := uc.loadOrCreate(ctx, ownerID)
		if err != nil {
			return err
		}
		created, err := agg.Add(relicID, note)
		if err != nil {
			return err
		}
		if err := uc.repo.SaveIncremental(ctx, agg); err != nil {
			return err
		}
		item = created
		return nil
	})
	return item, err
}

// RemoveFavorite un-favorites a relic.
func (uc *UseCase) RemoveFavorite(ctx context.Context, ownerID, relicID string) error {
	return uc.locked(ctx, ownerID, func(ctx context.Context) error {
		agg, err := uc.repo.FindByOwner(ctx, ownerID)
		if err != nil {
			return err
		}
		if err := agg.Remove(relicID); err != nil {
			return err
		}
		return uc.repo.SaveIncremental(ctx, agg)
	})
}

// UpdateNote replaces the note attached to a favorite.
func (uc *UseCase) UpdateNote(ctx context.Context, ownerID, relicID, note string) error {
	return uc.locked(ctx, ownerID, func(ctx context.Context) error {
		agg, err := uc.repo.FindByOwner(ctx, ownerID)
		if err != nil {
			return err
		}
		if err := agg.UpdateNote(relicID, note); err != nil {
			return err
		}
		return uc.repo.SaveIncremental(ctx, agg)
	})
}

func (uc *UseCase) loadOrCreate(ctx context.Context, ownerID string) (*domain.FavoritesAggregate, error) {
	agg, err := uc.repo.FindByOwner(ctx, ownerID)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return domain.NewFavoritesAggregate(ownerID), nil
		}
		return nil, err
	}
	return agg, nil
}

func (uc *UseCase) locked(ctx context.Context, ownerID string, fn func(ctx context.Context) error) error {
	name := repository.LockName(repository.AggFavorites, ownerID, "write")
	err := uc.cache.WithLock(ctx, name, fn)
	if domain.IsDomainError(err, domain.ErrCodeLocked) {
		uc.logger.Warn("favorites write lock not acquired", zap.String("owner_id", ownerID))
	}
	return err
}

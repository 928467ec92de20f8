// Package gallery implements the application service for personal galleries.
// Lock policy matches the other aggregates: per-owner write lock, hard fail
// on a missed acquisition, lock-free reads.
package gallery

import (
	"context"

	"go.uber.org/zap"

	"github.com/relichub/backend/domain"
	"github.com/relichub/backend/repository"
)

type UseCase struct {
	repo   repository.GalleryRepository
	cache  repository.CacheService
	logger *zap.Logger
}

func New(repo repository.GalleryRepository, cache repository.CacheService, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

// ListGalleries returns the owner's galleries, empty for a new owner.
func (uc *UseCase) ListGalleries(ctx context.Context, ownerID string) ([]*domain.Gallery, error) {
	m, err := uc.repo.FindByOwner(ctx, ownerID)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return []*domain.Gallery{}, nil
		}
		return nil, err
	}
	return m.Galleries(), nil
}

// Create opens a new, empty gallery for the owner.
func (uc *UseCase) Create(ctx context.Context, ownerID, name, description string) (*domain.Gallery, error) {
	var created *domain.Gallery
	err := uc.locked(ctx, ownerID, func(ctx context.Context) error {
		m, err := uc.loadOrCreate(ctx, ownerID)
		if err != nil {
			return err
		}
		g, err := m.Create(name, description)
		if err != nil {
			return err
		}
		if err := uc.repo.SaveIncremental(ctx, m); err != nil {
			return err
		}
		created = g
		return nil
	})
	return created, err
}

// Rename changes a gallery's name and description.
func (uc *UseCase) Rename(ctx context.Context, ownerID, galleryID, name, description string) error {
	return uc.mutate(ctx, ownerID, func(m *domain.GalleryManager) error {
		return m.Rename(galleryID, name, description)
	})
}

// AddRelic appends a relic to a gallery.
func (uc *UseCase) AddRelic(ctx context.Context, ownerID, galleryID, relicID string) error {
	return uc.mutate(ctx, ownerID, func(m *domain.GalleryManager) error {
		return m.AddRelic(galleryID, relicID)
	})
}

// RemoveRelic removes a relic from a gallery.
func (uc *UseCase) RemoveRelic(ctx context.Context, ownerID, galleryID, relicID string) error {
	return uc.mutate(ctx, ownerID, func(m *domain.GalleryManager) error {
		return m.RemoveRelic(galleryID, relicID)
	})
}

// SetCover picks a gallery's cover relic.
func (uc *UseCase) SetCover(ctx context.Context, ownerID, galleryID, relicID string) error {
	return uc.mutate(ctx, ownerID, func(m *domain.GalleryManager) error {
		return m.SetCover(galleryID, relicID)
	})
}

// Delete removes a gallery.
func (uc *UseCase) Delete(ctx context.Context, ownerID, galleryID string) error {
	return uc.mutate(ctx, ownerID, func(m *domain.GalleryManager) error {
		return m.Delete(galleryID)
	})
}

func (uc *UseCase) mutate(ctx context.Context, ownerID string, fn func(m *domain.GalleryManager) error) error {
	return uc.locked(ctx, ownerID, func(ctx context.Context) error {
		m, err := uc.repo.FindByOwner(ctx, ownerID)
		if err != nil {
			return err
		}
		if err := fn(m); err != nil {
			return err
		}
		return uc.repo.SaveIncremental(ctx, m)
	})
}

func (uc *UseCase) loadOrCreate(ctx context.Context, ownerID string) (*domain.GalleryManager, error) {
	m, err := uc.repo.FindByOwner(ctx, ownerID)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return domain.NewGalleryManager(ownerID), nil
		}
		return nil, err
	}
	return m, nil
}

func (uc *UseCase) locked(ctx context.Context, ownerID string, fn func(ctx context.Context) error) error {
	name := repository.LockName(repository.AggGalleries, ownerID, "write")
	err := uc.cache.WithLock(ctx, name, fn)
	if domain.IsDomainError(err, domain.ErrCodeLocked) {
		uc.logger.Warn("gallery write lock not acquired", zap.String("owner_id", ownerID))
	}
	return err
}

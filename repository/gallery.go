package repository

import (
	"context"

	"github.com/relichub/backend/domain"
)

// GalleryRepository loads and flushes the per-owner gallery manager.
// Same incremental contract as FavoritesRepository.
type GalleryRepository interface {
	FindByOwner(ctx context.Context, ownerID string) (*domain.GalleryManager, error)
	SaveIncremental(ctx context.Context, m *domain.GalleryManager) error
	Save(ctx context.Context, m *domain.GalleryManager) error
	ExistsByOwner(ctx context.Context, ownerID string) (bool, error)
}

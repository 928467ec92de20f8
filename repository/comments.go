package repository

import (
	"context"

	"github.com/relichub/backend/domain"
)

// CommentsRepository loads and flushes the per-author comments aggregate.
// Same contract as FavoritesRepository; in addition, any flush touching a
// relic's comments invalidates that relic's subject-scoped caches, because
// approved-comment pages are keyed by relic, not by author.
type CommentsRepository interface {
	FindByAuthor(ctx context.Context, authorID string) (*domain.CommentsAggregate, error)
	SaveIncremental(ctx context.Context, agg *domain.CommentsAggregate) error
	Save(ctx context.Context, agg *domain.CommentsAggregate) error
	ExistsByAuthor(ctx context.Context, authorID string) (bool, error)

	// FindApprovedByRelic lists a relic's approved comments page by page,
	// read-through against the subject-scoped cache.
	FindApprovedByRelic(ctx context.Context, relicID string, limit, offset int) ([]domain.Comment, error)
}

// Package comments implements the application service for the comments
// aggregate, including the moderation workflow. State changes follow the
// same lock policy as favorites: per-author write lock, hard fail on a
// missed acquisition, lock-free reads.
package comments

import (
	"context"

	"go.uber.org/zap"

	"github.com/relichub/backend/domain"
	"github.com/relichub/backend/repository"
)

type UseCase struct {
	repo   repository.CommentsRepository
	cache  repository.CacheService
	logger *zap.Logger
}

func New(repo repository.CommentsRepository, cache repository.CacheService, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

// ListByAuthor returns the author's comments across all relics.
func (uc *UseCase) ListByAuthor(ctx context.Context, authorID string) ([]*domain.Comment, error) {
	agg, err := uc.repo.FindByAuthor(ctx, authorID)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return []*domain.Comment{}, nil
		}
		return nil, err
	}
	return agg.Comments(), nil
}

// ApprovedForRelic lists a relic's approved comments page by page. The
// result comes from the relic-scoped cache until a moderation flush
// invalidates it.
func (uc *UseCase) ApprovedForRelic(ctx context.Context, relicID string, limit, offset int) ([]domain.Comment, error) {
	return uc.repo.FindApprovedByRelic(ctx, relicID, limit, offset)
}

// Post leaves a new comment on a relic in pending-review state.
func (uc *UseCase) Post(ctx context.Context, authorID, relicID, content string) (*domain.Comment, error) {
	var comment *domain.Comment
	err := uc.locked(ctx, authorID, func(ctx context.Context) error {
		agg, err := uc.loadOrCreate(ctx, authorID)
		if err != nil {
			return err
		}
		posted, err := agg.Post(relicID, content)
		if err != nil {
			return err
		}
		if err := uc.repo.SaveIncremental(ctx, agg); err != nil {
			return err
		}
		comment = posted
		return nil
	})
	return comment, err
}

// Edit replaces a comment's content; the comment goes back to moderation.
func (uc *UseCase) Edit(ctx context.Context, authorID, commentID, content string) error {
	return uc.mutate(ctx, authorID, func(agg *domain.CommentsAggregate) error {
		return agg.Edit(commentID, content)
	})
}

// Delete removes the author's comment.
func (uc *UseCase) Delete(ctx context.Context, authorID, commentID string) error {
	return uc.mutate(ctx, authorID, func(agg *domain.CommentsAggregate) error {
		return agg.Delete(commentID)
	})
}

// Approve publishes a pending comment. The flush invalidates the relic's
// approved-comment pages, so readers observe the change on their next miss.
func (uc *UseCase) Approve(ctx context.Context, authorID, commentID string) error {
	return uc.mutate(ctx, authorID, func(agg *domain.CommentsAggregate) error {
		return agg.Approve(commentID)
	})
}

// Reject declines a pending comment.
func (uc *UseCase) Reject(ctx context.Context, authorID, commentID string) error {
	return uc.mutate(ctx, authorID, func(agg *domain.CommentsAggregate) error {
		return agg.Reject(commentID)
	})
}

func (uc *UseCase) mutate(ctx context.Context, authorID string, fn func(agg *domain.CommentsAggregate) error) error {
	return uc.locked(ctx, authorID, func(ctx context.Context) error {
		agg, err := uc.repo.FindByAuthor(ctx, authorID)
		if err != nil {
			return err
		}
		if err := fn(agg); err != nil {
			return err
		}
		return uc.repo.SaveIncremental(ctx, agg)
	})
}

func (uc *UseCase) loadOrCreate(ctx context.Context, authorID string) (*domain.CommentsAggregate, error) {
	agg, err := uc.repo.FindByAuthor(ctx, authorID)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return domain.NewCommentsAggregate(authorID), nil
		}
		return nil, err
	}
	return agg, nil
}

func (uc *UseCase) locked(ctx context.Context, authorID string, fn func(ctx context.Context) error) error {
	name := repository.LockName(repository.AggComments, authorID, "write")
	err := uc.cache.WithLock(ctx, name, fn)
	if domain.IsDomainError(err, domain.ErrCodeLocked) {
		uc.logger.Warn("comments write lock not acquired", zap.String("author_id", authorID))
	}
	return err
}

package comments

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relichub/backend/domain"
	"github.com/relichub/backend/repository/memory"
)

type fakeCommentsRepo struct {
	rows    map[string]map[string]*domain.Comment
	flushes int
}

func newFakeCommentsRepo() *fakeCommentsRepo {
	return &fakeCommentsRepo{rows: make(map[string]map[string]*domain.Comment)}
}

func (f *fakeCommentsRepo) FindByAuthor(_ context.Context, authorID string) (*domain.CommentsAggregate, error) {
	owned := f.rows[authorID]
	if len(owned) == 0 {
		return nil, domain.ErrCommentsNotFound
	}
	comments := make([]*domain.Comment, 0, len(owned))
	for _, c := range owned {
		comments = append(comments, c)
	}
	return domain.RebuildComments(authorID, comments), nil
}

func (f *fakeCommentsRepo) SaveIncremental(_ context.Context, agg *domain.CommentsAggregate) error {
	if !agg.HasChanges() {
		return nil
	}
	owned := f.rows[agg.AuthorID()]
	if owned == nil {
		owned = make(map[string]*domain.Comment)
		f.rows[agg.AuthorID()] = owned
	}
	for _, rec := range agg.Changes() {
		switch rec.Type {
		case domain.ChangeAdded, domain.ChangeModified:
			owned[rec.EntityID] = rec.Snapshot
		case domain.ChangeDeleted:
			delete(owned, rec.EntityID)
		}
		f.flushes++
	}
	agg.ClearChanges()
	return nil
}

func (f *fakeCommentsRepo) Save(ctx context.Context, agg *domain.CommentsAggregate) error {
	return f.SaveIncremental(ctx, agg)
}

func (f *fakeCommentsRepo) ExistsByAuthor(_ context.Context, authorID string) (bool, error) {
	return len(f.rows[authorID]) > 0, nil
}

func (f *fakeCommentsRepo) FindApprovedByRelic(_ context.Context, relicID string, limit, offset int) ([]domain.Comment, error) {
	var out []domain.Comment
	for _, owned := range f.rows {
		for _, c := range owned {
			if c.RelicID == relicID && c.Status == domain.CommentApproved {
				out = append(out, *c)
			}
		}
	}
	return out, nil
}

func newTestUseCase(repo *fakeCommentsRepo) *UseCase {
	return New(repo, memory.NewCacheService(time.Minute, 0, time.Second), nil)
}

func TestPostCommentPersistsPending(t *testing.T) {
	repo := newFakeCommentsRepo()
	uc := newTestUseCase(repo)
	ctx := context.Background()

	c, err := uc.Post(ctx, "author-1", "relic-1", "beautiful patina")
	require.NoError(t, err)
	assert.Equal(t, domain.CommentPending, c.Status)
	assert.Equal(t, 1, repo.flushes)

	own, err := uc.ListByAuthor(ctx, "author-1")
	require.NoError(t, err)
	require.Len(t, own, 1)
}

func TestPostEmptyContentRejected(t *testing.T) {
	repo := newFakeCommentsRepo()
	uc := newTestUseCase(repo)

	_, err := uc.Post(context.Background(), "author-1", "relic-1", "  ")
	require.ErrorIs(t, err, domain.ErrEmptyCommentContent)
	assert.Zero(t, repo.flushes)
}

func TestApproveMakesCommentVisibleOnRelic(t *testing.T) {
	repo := newFakeCommentsRepo()
	uc := newTestUseCase(repo)
	ctx := context.Background()

	c, err := uc.Post(ctx, "author-1", "relic-1", "text")
	require.NoError(t, err)

	approved, err := uc.ApprovedForRelic(ctx, "relic-1", 20, 0)
	require.NoError(t, err)
	assert.Empty(t, approved)

	require.NoError(t, uc.Approve(ctx, "author-1", c.ID))

	approved, err = uc.ApprovedForRelic(ctx, "relic-1", 20, 0)
	require.NoError(t, err)
	require.Len(t, approved, 1)
	assert.Equal(t, c.ID, approved[0].ID)
}

func TestApproveTwiceIsConflict(t *testing.T) {
	repo := newFakeCommentsRepo()
	uc := newTestUseCase(repo)
	ctx := context.Background()

	c, err := uc.Post(ctx, "author-1", "relic-1", "text")
	require.NoError(t, err)
	require.NoError(t, uc.Approve(ctx, "author-1", c.ID))

	err = uc.Approve(ctx, "author-1", c.ID)
	require.ErrorIs(t, err, domain.ErrCommentNotPending)
}

func TestEditSendsBackToModeration(t *testing.T) {
	repo := newFakeCommentsRepo()
	uc := newTestUseCase(repo)
	ctx := context.Background()

	c, err := uc.Post(ctx, "author-1", "relic-1", "draft")
	require.NoError(t, err)
	require.NoError(t, uc.Approve(ctx, "author-1", c.ID))

	require.NoError(t, uc.Edit(ctx, "author-1", c.ID, "revised"))

	approved, err := uc.ApprovedForRelic(ctx, "relic-1", 20, 0)
	require.NoError(t, err)
	assert.Empty(t, approved)
}

func TestDeleteComment(t *testing.T) {
	repo := newFakeCommentsRepo()
	uc := newTestUseCase(repo)
	ctx := context.Background()

	c, err := uc.Post(ctx, "author-1", "relic-1", "text")
	require.NoError(t, err)
	require.NoError(t, uc.Delete(ctx, "author-1", c.ID))

	own, err := uc.ListByAuthor(ctx, "author-1")
	require.NoError(t, err)
	assert.Empty(t, own)
}

func TestMutateUnknownAuthor(t *testing.T) {
	uc := newTestUseCase(newFakeCommentsRepo())

	err := uc.Approve(context.Background(), "nobody", "comment-1")
	require.ErrorIs(t, err, domain.ErrCommentsNotFound)
}

package favorites

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relichub/backend/domain"
	"github.com/relichub/backend/repository"
	"github.com/relichub/backend/repository/memory"
)

// fakeFavoritesRepo replays tracked changes onto an in-memory row set the
// way the store-backed repository does, clearing the tracker on success.
type fakeFavoritesRepo struct {
	rows    map[string]map[string]*domain.FavoriteItem
	flushes int
}

func newFakeFavoritesRepo() *fakeFavoritesRepo {
	return &fakeFavoritesRepo{rows: make(map[string]map[string]*domain.FavoriteItem)}
}

func (f *fakeFavoritesRepo) FindByOwner(_ context.Context, ownerID string) (*domain.FavoritesAggregate, error) {
	owned := f.rows[ownerID]
	if len(owned) == 0 {
		return nil, domain.ErrFavoritesNotFound
	}
	items := make([]*domain.FavoriteItem, 0, len(owned))
	for _, it := range owned {
		items = append(items, it)
	}
	return domain.RebuildFavorites(ownerID, items), nil
}

func (f *fakeFavoritesRepo) SaveIncremental(_ context.Context, agg *domain.FavoritesAggregate) error {
	if !agg.HasChanges() {
		return nil
	}
	owned := f.rows[agg.OwnerID()]
	if owned == nil {
		owned = make(map[string]*domain.FavoriteItem)
		f.rows[agg.OwnerID()] = owned
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

func (f *fakeFavoritesRepo) Save(ctx context.Context, agg *domain.FavoritesAggregate) error {
	return f.SaveIncremental(ctx, agg)
}

func (f *fakeFavoritesRepo) ExistsByOwner(_ context.Context, ownerID string) (bool, error) {
	return len(f.rows[ownerID]) > 0, nil
}

func (f *fakeFavoritesRepo) IsFavorited(_ context.Context, ownerID, relicID string) (bool, error) {
	_, ok := f.rows[ownerID][relicID]
	return ok, nil
}

func newTestUseCase(repo repository.FavoritesRepository) *UseCase {
	cache := memory.NewCacheService(time.Minute, 0, time.Second)
	return New(repo, cache, nil)
}

func TestAddFavoriteFlushesAndClearsTracker(t *testing.T) {
	repo := newFakeFavoritesRepo()
	uc := newTestUseCase(repo)
	ctx := context.Background()

	item, err := uc.AddFavorite(ctx, "owner-1", "relic-1", "note")
	require.NoError(t, err)
	assert.Equal(t, "relic-1", item.RelicID)
	assert.Equal(t, 1, repo.flushes)

	listed, err := uc.ListFavorites(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "relic-1", listed[0].RelicID)
}

func TestAddFavoriteDuplicateIsConflict(t *testing.T) {
	repo := newFakeFavoritesRepo()
	uc := newTestUseCase(repo)
	ctx := context.Background()

	_, err := uc.AddFavorite(ctx, "owner-1", "relic-1", "")
	require.NoError(t, err)

	_, err = uc.AddFavorite(ctx, "owner-1", "relic-1", "")
	require.ErrorIs(t, err, domain.ErrAlreadyFavorited)
	assert.Equal(t, 1, repo.flushes)
}

func TestListFavoritesNewOwnerIsEmpty(t *testing.T) {
	uc := newTestUseCase(newFakeFavoritesRepo())

	listed, err := uc.ListFavorites(context.Background(), "new-owner")
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestRemoveFavoriteUnknownOwner(t *testing.T) {
	uc := newTestUseCase(newFakeFavoritesRepo())

	err := uc.RemoveFavorite(context.Background(), "owner-1", "relic-1")
	require.ErrorIs(t, err, domain.ErrFavoritesNotFound)
}

func TestAddRemoveReAdd(t *testing.T) {
	repo := newFakeFavoritesRepo()
	uc := newTestUseCase(repo)
	ctx := context.Background()

	_, err := uc.AddFavorite(ctx, "owner-1", "relic-1", "")
	require.NoError(t, err)
	require.NoError(t, uc.RemoveFavorite(ctx, "owner-1", "relic-1"))

	// re-favoriting after a removal must succeed
	_, err = uc.AddFavorite(ctx, "owner-1", "relic-1", "again")
	require.NoError(t, err)

	favorited, err := uc.IsFavorited(ctx, "owner-1", "relic-1")
	require.NoError(t, err)
	assert.True(t, favorited)
}

func TestUpdateNote(t *testing.T) {
	repo := newFakeFavoritesRepo()
	uc := newTestUseCase(repo)
	ctx := context.Background()

	_, err := uc.AddFavorite(ctx, "owner-1", "relic-1", "old")
	require.NoError(t, err)
	require.NoError(t, uc.UpdateNote(ctx, "owner-1", "relic-1", "new"))

	listed, err := uc.ListFavorites(ctx, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, "new", listed[0].Note)
}

func TestWriteFailsHardWhenLockHeld(t *testing.T) {
	repo := newFakeFavoritesRepo()
	cache := memory.NewCacheService(time.Minute, 0, 20*time.Millisecond)
	uc := New(repo, cache, nil)
	ctx := context.Background()

	held := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = cache.WithLock(ctx, repository.LockName(repository.AggFavorites, "owner-1", "write"), func(ctx context.Context) error {
			close(held)
			<-release
			return nil
		})
	}()
	<-held
	defer close(release)

	_, err := uc.AddFavorite(ctx, "owner-1", "relic-1", "")
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeLocked))
	assert.Zero(t, repo.flushes)

	// reads stay lock-free
	listed, err := uc.ListFavorites(ctx, "owner-1")
	require.NoError(t, err)
	assert.Empty(t, listed)
}

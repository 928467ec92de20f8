package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/relichub/backend/domain"
	"github.com/relichub/backend/repository/memory"
)

func TestSaveIncrementalWithoutChangesTouchesNothing(t *testing.T) {
	cache := memory.NewCacheService(time.Minute, 0, time.Second)
	repo := NewFavoritesRepository(nil, cache, nil)

	agg := domain.RebuildFavorites("owner-1", []*domain.FavoriteItem{
		{ID: "f1", OwnerID: "owner-1", RelicID: "relic-1"},
	})
	require.False(t, agg.HasChanges())

	// a clean aggregate must not open a transaction; a nil pool would panic
	require.NoError(t, repo.SaveIncremental(context.Background(), agg))
}

func TestSaveIncrementalNilAggregate(t *testing.T) {
	cache := memory.NewCacheService(time.Minute, 0, time.Second)
	repo := NewFavoritesRepository(nil, cache, nil)

	err := repo.SaveIncremental(context.Background(), nil)
	require.ErrorIs(t, err, domain.ErrInvalidPayload)
}

package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/relichub/backend/domain"
	"github.com/relichub/backend/repository"
)

type favoritesRepository struct {
	pool   *pgxpool.Pool
	cache  repository.CacheService
	logger *zap.Logger
}

// NewFavoritesRepository returns the Postgres-backed incremental repository
// for the favorites aggregate.
func NewFavoritesRepository(pool *pgxpool.Pool, cache repository.CacheService, logger *zap.Logger) repository.FavoritesRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &favoritesRepository{pool: pool, cache: cache, logger: logger}
}

func (r *favoritesRepository) FindByOwner(ctx context.Context, ownerID string) (*domain.FavoritesAggregate, error) {
	key := repository.AggregateKey(repository.AggFavorites, ownerID)

	var snap domain.FavoritesSnapshot
	if r.cache.Get(ctx, key, &snap) {
		return domain.FavoritesFromSnapshot(snap), nil
	}

	const query = `
	SELECT id, owner_id, relic_id, note, created_at, updated_at
	FROM favorite_items
	WHERE owner_id = $1 AND status = 0
	`
	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "favorites query failed", err)
	}
	defer rows.Close()

	var items []*domain.FavoriteItem
	for rows.Next() {
		item, err := scanFavorite(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "favorites scan failed", err)
	}
	if len(items) == 0 {
		return nil, domain.ErrFavoritesNotFound
	}

	agg := domain.RebuildFavorites(ownerID, items)
	r.cache.Put(ctx, key, agg.Snapshot(), 0)
	return agg, nil
}

func (r *favoritesRepository) SaveIncremental(ctx context.Context, agg *domain.FavoritesAggregate) error {
	if agg == nil {
		return domain.ErrInvalidPayload
	}
	if !agg.HasChanges() {
		return nil
	}

	records := agg.Changes()
	stmts := make([]statement, 0, len(records))
	for _, rec := range records {
		st, err := planFavoriteChange(rec)
		if err != nil {
			return err
		}
		stmts = append(stmts, st)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.WrapError(domain.ErrCodeInternal, "favorites flush begin failed", err)
	}
	defer tx.Rollback(ctx)

	if err := execFlush(ctx, tx, stmts); err != nil {
		// Tracker untouched: the caller may retry the whole unit of work.
		return domain.WrapError(domain.ErrCodeInternal, "favorites flush failed", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.WrapError(domain.ErrCodeInternal, "favorites flush commit failed", err)
	}

	r.logger.Debug("favorites flushed",
		zap.String("owner_id", agg.OwnerID()),
		zap.String("changes", agg.ChangesSummary()))

	agg.ClearChanges()
	r.refreshCache(ctx, agg)
	return nil
}

func (r *favoritesRepository) Save(ctx context.Context, agg *domain.FavoritesAggregate) error {
	if agg == nil {
		return domain.ErrInvalidPayload
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.WrapError(domain.ErrCodeInternal, "favorites save begin failed", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`UPDATE favorite_items SET status = 1, updated_at = NOW() WHERE owner_id = $1`,
		agg.OwnerID(),
	); err != nil {
		return domain.WrapError(domain.ErrCodeInternal, "favorites save failed", err)
	}

	for _, item := range agg.Favorites() {
		st, err := planFavoriteChange(domain.ChangeRecord[*domain.FavoriteItem]{
			Type:     domain.ChangeAdded,
			Entity:   domain.EntityFavorite,
			EntityID: item.RelicID,
			Snapshot: item,
		})
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, st.sql, st.args...); err != nil {
			return domain.WrapError(domain.ErrCodeInternal, "favorites save failed", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.WrapError(domain.ErrCodeInternal, "favorites save commit failed", err)
	}

	agg.ClearChanges()
	r.refreshCache(ctx, agg)
	return nil
}

func (r *favoritesRepository) ExistsByOwner(ctx context.Context, ownerID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM favorite_items WHERE owner_id = $1 AND status = 0)`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, ownerID).Scan(&exists); err != nil {
		return false, domain.WrapError(domain.ErrCodeInternal, "favorites probe failed", err)
	}
	return exists, nil
}

func (r *favoritesRepository) IsFavorited(ctx context.Context, ownerID, relicID string) (bool, error) {
	key := repository.DerivedKey(repository.AggFavorites, ownerID, "flag", relicID)

	var flag bool
	if r.cache.Get(ctx, key, &flag) {
		return flag, nil
	}

	const query = `
	SELECT EXISTS (SELECT 1 FROM favorite_items WHERE owner_id = $1 AND relic_id = $2 AND status = 0)
	`
	if err := r.pool.QueryRow(ctx, query, ownerID, relicID).Scan(&flag); err != nil {
		return false, domain.WrapError(domain.ErrCodeInternal, "favorite flag probe failed", err)
	}
	r.cache.Put(ctx, key, flag, 0)
	return flag, nil
}

// refreshCache re-publishes the aggregate blob and drops every derived
// entry under the owner prefix. Runs only after a committed flush.
func (r *favoritesRepository) refreshCache(ctx context.Context, agg *domain.FavoritesAggregate) {
	key := repository.AggregateKey(repository.AggFavorites, agg.OwnerID())
	r.cache.Put(ctx, key, agg.Snapshot(), 0)
	r.cache.EvictByPrefix(ctx, repository.OwnerPrefix(repository.AggFavorites, agg.OwnerID()))
}

func scanFavorite(row rowScanner) (*domain.FavoriteItem, error) {
	var item domain.FavoriteItem
	var created, updated time.Time
	if err := row.Scan(
		&item.ID,
		&item.OwnerID,
		&item.RelicID,
		&item.Note,
		&created,
		&updated,
	); err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "favorite scan failed", err)
	}
	item.CreatedAt = created
	item.UpdatedAt = updated
	return &item, nil
}

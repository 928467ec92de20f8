package postgres

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/relichub/backend/domain"
	"github.com/relichub/backend/repository"
)

type galleryRepository struct {
	pool   *pgxpool.Pool
	cache  repository.CacheService
	logger *zap.Logger
}

// NewGalleryRepository returns the Postgres-backed incremental repository
// for the personal-gallery manager.
func NewGalleryRepository(pool *pgxpool.Pool, cache repository.CacheService, logger *zap.Logger) repository.GalleryRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &galleryRepository{pool: pool, cache: cache, logger: logger}
}

func (r *galleryRepository) FindByOwner(ctx context.Context, ownerID string) (*domain.GalleryManager, error) {
	key := repository.AggregateKey(repository.AggGalleries, ownerID)

	var snap domain.GallerySnapshot
	if r.cache.Get(ctx, key, &snap) {
		return domain.GalleriesFromSnapshot(snap), nil
	}

	const query = `
	SELECT id, owner_id, name, description, relic_ids, cover_relic_id, created_at, updated_at
	FROM galleries
	WHERE owner_id = $1 AND status = 0
	`
	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "galleries query failed", err)
	}
	defer rows.Close()

	var galleries []*domain.Gallery
	for rows.Next() {
		g, err := scanGallery(rows)
		if err != nil {
			return nil, err
		}
		galleries = append(galleries, g)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "galleries scan failed", err)
	}
	if len(galleries) == 0 {
		return nil, domain.ErrGalleriesNotFound
	}

	m := domain.RebuildGalleries(ownerID, galleries)
	r.cache.Put(ctx, key, m.Snapshot(), 0)
	return m, nil
}

func (r *galleryRepository) SaveIncremental(ctx context.Context, m *domain.GalleryManager) error {
	if m == nil {
		return domain.ErrInvalidPayload
	}
	if !m.HasChanges() {
		return nil
	}

	records := m.Changes()
	stmts := make([]statement, 0, len(records))
	for _, rec := range records {
		st, err := planGalleryChange(rec)
		if err != nil {
			return err
		}
		stmts = append(stmts, st)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.WrapError(domain.ErrCodeInternal, "galleries flush begin failed", err)
	}
	defer tx.Rollback(ctx)

	if err := execFlush(ctx, tx, stmts); err != nil {
		return domain.WrapError(domain.ErrCodeInternal, "galleries flush failed", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.WrapError(domain.ErrCodeInternal, "galleries flush commit failed", err)
	}

	r.logger.Debug("galleries flushed",
		zap.String("owner_id", m.OwnerID()),
		zap.String("changes", m.ChangesSummary()))

	m.ClearChanges()
	r.refreshCache(ctx, m)
	return nil
}

func (r *galleryRepository) Save(ctx context.Context, m *domain.GalleryManager) error {
	if m == nil {
		return domain.ErrInvalidPayload
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.WrapError(domain.ErrCodeInternal, "galleries save begin failed", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`UPDATE galleries SET status = 1, updated_at = NOW() WHERE owner_id = $1`,
		m.OwnerID(),
	); err != nil {
		return domain.WrapError(domain.ErrCodeInternal, "galleries save failed", err)
	}

	for _, g := range m.Galleries() {
		st, err := planGalleryChange(domain.ChangeRecord[*domain.Gallery]{
			Type:     domain.ChangeAdded,
			Entity:   domain.EntityGallery,
			EntityID: g.ID,
			Snapshot: g,
		})
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, st.sql, st.args...); err != nil {
			return domain.WrapError(domain.ErrCodeInternal, "galleries save failed", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.WrapError(domain.ErrCodeInternal, "galleries save commit failed", err)
	}

	m.ClearChanges()
	r.refreshCache(ctx, m)
	return nil
}

func (r *galleryRepository) ExistsByOwner(ctx context.Context, ownerID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM galleries WHERE owner_id = $1 AND status = 0)`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, ownerID).Scan(&exists); err != nil {
		return false, domain.WrapError(domain.ErrCodeInternal, "galleries probe failed", err)
	}
	return exists, nil
}

func (r *galleryRepository) refreshCache(ctx context.Context, m *domain.GalleryManager) {
	key := repository.AggregateKey(repository.AggGalleries, m.OwnerID())
	r.cache.Put(ctx, key, m.Snapshot(), 0)
	r.cache.EvictByPrefix(ctx, repository.OwnerPrefix(repository.AggGalleries, m.OwnerID()))
}

func scanGallery(row rowScanner) (*domain.Gallery, error) {
	var g domain.Gallery
	var relicIDs []byte
	if err := row.Scan(
		&g.ID,
		&g.OwnerID,
		&g.Name,
		&g.Description,
		&relicIDs,
		&g.CoverRelicID,
		&g.CreatedAt,
		&g.UpdatedAt,
	); err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "gallery scan failed", err)
	}
	if len(relicIDs) > 0 {
		if err := json.Unmarshal(relicIDs, &g.RelicIDs); err != nil {
			return nil, domain.WrapError(domain.ErrCodeInternal, "gallery relics decode failed", err)
		}
	}
	return &g, nil
}

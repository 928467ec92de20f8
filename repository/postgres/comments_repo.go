package postgres

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/relichub/backend/domain"
	"github.com/relichub/backend/repository"
)

type commentsRepository struct {
	pool   *pgxpool.Pool
	cache  repository.CacheService
	logger *zap.Logger
}

// NewCommentsRepository returns the Postgres-backed incremental repository
// for the comments aggregate.
func NewCommentsRepository(pool *pgxpool.Pool, cache repository.CacheService, logger *zap.Logger) repository.CommentsRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &commentsRepository{pool: pool, cache: cache, logger: logger}
}

func (r *commentsRepository) FindByAuthor(ctx context.Context, authorID string) (*domain.CommentsAggregate, error) {
	key := repository.AggregateKey(repository.AggComments, authorID)

	var snap domain.CommentsSnapshot
	if r.cache.Get(ctx, key, &snap) {
		return domain.CommentsFromSnapshot(snap), nil
	}

	const query = `
	SELECT id, author_id, relic_id, content, review_status, created_at, updated_at
	FROM comments
	WHERE author_id = $1 AND status = 0
	`
	rows, err := r.pool.Query(ctx, query, authorID)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "comments query failed", err)
	}
	defer rows.Close()

	var comments []*domain.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "comments scan failed", err)
	}
	if len(comments) == 0 {
		return nil, domain.ErrCommentsNotFound
	}

	agg := domain.RebuildComments(authorID, comments)
	r.cache.Put(ctx, key, agg.Snapshot(), 0)
	return agg, nil
}

func (r *commentsRepository) SaveIncremental(ctx context.Context, agg *domain.CommentsAggregate) error {
	if agg == nil {
		return domain.ErrInvalidPayload
	}
	if !agg.HasChanges() {
		return nil
	}

	records := agg.Changes()
	// Captured before ClearChanges: the records are the only place the
	// affected relics survive once the tracker drains.
	relicIDs := agg.ChangedRelicIDs()

	stmts := make([]statement, 0, len(records))
	for _, rec := range records {
		st, err := planCommentChange(rec)
		if err != nil {
			return err
		}
		stmts = append(stmts, st)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.WrapError(domain.ErrCodeInternal, "comments flush begin failed", err)
	}
	defer tx.Rollback(ctx)

	if err := execFlush(ctx, tx, stmts); err != nil {
		return domain.WrapError(domain.ErrCodeInternal, "comments flush failed", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.WrapError(domain.ErrCodeInternal, "comments flush commit failed", err)
	}

	r.logger.Debug("comments flushed",
		zap.String("author_id", agg.AuthorID()),
		zap.String("changes", agg.ChangesSummary()))

	agg.ClearChanges()
	r.refreshCache(ctx, agg, relicIDs)
	return nil
}

func (r *commentsRepository) Save(ctx context.Context, agg *domain.CommentsAggregate) error {
	if agg == nil {
		return domain.ErrInvalidPayload
	}

	relicIDs := agg.ChangedRelicIDs()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.WrapError(domain.ErrCodeInternal, "comments save begin failed", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`UPDATE comments SET status = 1, updated_at = NOW() WHERE author_id = $1`,
		agg.AuthorID(),
	); err != nil {
		return domain.WrapError(domain.ErrCodeInternal, "comments save failed", err)
	}

	for _, c := range agg.Comments() {
		st, err := planCommentChange(domain.ChangeRecord[*domain.Comment]{
			Type:     domain.ChangeAdded,
			Entity:   domain.EntityComment,
			EntityID: c.ID,
			Snapshot: c,
		})
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, st.sql, st.args...); err != nil {
			return domain.WrapError(domain.ErrCodeInternal, "comments save failed", err)
		}
		relicIDs = appendUnique(relicIDs, c.RelicID)
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.WrapError(domain.ErrCodeInternal, "comments save commit failed", err)
	}

	agg.ClearChanges()
	r.refreshCache(ctx, agg, relicIDs)
	return nil
}

func (r *commentsRepository) ExistsByAuthor(ctx context.Context, authorID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM comments WHERE author_id = $1 AND status = 0)`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, authorID).Scan(&exists); err != nil {
		return false, domain.WrapError(domain.ErrCodeInternal, "comments probe failed", err)
	}
	return exists, nil
}

func (r *commentsRepository) FindApprovedByRelic(ctx context.Context, relicID string, limit, offset int) ([]domain.Comment, error) {
	limit = clampLimit(limit)
	if offset < 0 {
		offset = 0
	}
	key := repository.SubjectKey(repository.AggComments, relicID, "approved",
		strconv.Itoa(limit), strconv.Itoa(offset))

	var cached []domain.Comment
	if r.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	const query = `
	SELECT id, author_id, relic_id, content, review_status, created_at, updated_at
	FROM comments
	WHERE relic_id = $1 AND review_status = $2 AND status = 0
	ORDER BY created_at DESC
	LIMIT $3 OFFSET $4
	`
	rows, err := r.pool.Query(ctx, query, relicID, string(domain.CommentApproved), limit, offset)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "approved comments query failed", err)
	}
	defer rows.Close()

	comments := make([]domain.Comment, 0, limit)
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "approved comments scan failed", err)
	}

	r.cache.Put(ctx, key, comments, 0)
	return comments, nil
}

// refreshCache re-publishes the aggregate blob, drops the author-scoped
// derived entries, and invalidates the subject caches of every relic the
// flush touched. An author's mutation can stale pages keyed by relic.
func (r *commentsRepository) refreshCache(ctx context.Context, agg *domain.CommentsAggregate, relicIDs []string) {
	key := repository.AggregateKey(repository.AggComments, agg.AuthorID())
	r.cache.Put(ctx, key, agg.Snapshot(), 0)
	r.cache.EvictByPrefix(ctx, repository.OwnerPrefix(repository.AggComments, agg.AuthorID()))
	for _, relicID := range relicIDs {
		r.cache.EvictByPrefix(ctx, repository.SubjectPrefix(repository.AggComments, relicID))
	}
}

func scanComment(row rowScanner) (*domain.Comment, error) {
	var c domain.Comment
	var status string
	if err := row.Scan(
		&c.ID,
		&c.AuthorID,
		&c.RelicID,
		&c.Content,
		&status,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "comment scan failed", err)
	}
	c.Status = domain.CommentStatus(status)
	return &c, nil
}

func appendUnique(ids []string, id string) []string {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}

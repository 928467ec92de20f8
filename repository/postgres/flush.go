package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/relichub/backend/domain"
)

// Soft-delete status values carried by every aggregate row.
const (
	rowActive      = 0
	rowSoftDeleted = 1
)

// statement is one planned store write inside an incremental flush.
type statement struct {
	sql  string
	args []interface{}
}

// planFavoriteChange translates one tracked favorite mutation into a store
// write. Adds upsert on (owner_id, relic_id) so re-favoriting a soft-deleted
// relic resurrects its row instead of colliding with it.
func planFavoriteChange(rec domain.ChangeRecord[*domain.FavoriteItem]) (statement, error) {
	item := rec.Snapshot
	if item == nil {
		return statement{}, domain.ErrInvalidPayload
	}

	switch rec.Type {
	case domain.ChangeAdded:
		return statement{
			sql: `
			INSERT INTO favorite_items (id, owner_id, relic_id, note, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, 0, $5, $6)
			ON CONFLICT (owner_id, relic_id) DO UPDATE
			SET note = EXCLUDED.note,
				status = 0,
				updated_at = EXCLUDED.updated_at
			`,
			args: []interface{}{item.ID, item.OwnerID, item.RelicID, item.Note, item.CreatedAt, item.UpdatedAt},
		}, nil
	case domain.ChangeModified:
		return statement{
			sql: `
			UPDATE favorite_items
			SET note = $3, updated_at = $4
			WHERE owner_id = $1 AND relic_id = $2 AND status = 0
			`,
			args: []interface{}{item.OwnerID, item.RelicID, item.Note, item.UpdatedAt},
		}, nil
	case domain.ChangeDeleted:
		return statement{
			sql: `
			UPDATE favorite_items
			SET status = 1, updated_at = $3
			WHERE owner_id = $1 AND relic_id = $2
			`,
			args: []interface{}{item.OwnerID, item.RelicID, item.UpdatedAt},
		}, nil
	default:
		return statement{}, domain.ErrInvalidPayload
	}
}

// planCommentChange translates one tracked comment mutation into a store write.
func planCommentChange(rec domain.ChangeRecord[*domain.Comment]) (statement, error) {
	c := rec.Snapshot
	if c == nil {
		return statement{}, domain.ErrInvalidPayload
	}

	switch rec.Type {
	case domain.ChangeAdded:
		return statement{
			sql: `
			INSERT INTO comments (id, author_id, relic_id, content, review_status, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, 0, $6, $7)
			ON CONFLICT (id) DO UPDATE
			SET content = EXCLUDED.content,
				review_status = EXCLUDED.review_status,
				status = 0,
				updated_at = EXCLUDED.updated_at
			`,
			args: []interface{}{c.ID, c.AuthorID, c.RelicID, c.Content, string(c.Status), c.CreatedAt, c.UpdatedAt},
		}, nil
	case domain.ChangeModified:
		return statement{
			sql: `
			UPDATE comments
			SET content = $3, review_status = $4, updated_at = $5
			WHERE id = $1 AND author_id = $2 AND status = 0
			`,
			args: []interface{}{c.ID, c.AuthorID, c.Content, string(c.Status), c.UpdatedAt},
		}, nil
	case domain.ChangeDeleted:
		return statement{
			sql: `
			UPDATE comments
			SET status = 1, updated_at = $3
			WHERE id = $1 AND author_id = $2
			`,
			args: []interface{}{c.ID, c.AuthorID, c.UpdatedAt},
		}, nil
	default:
		return statement{}, domain.ErrInvalidPayload
	}
}

// planGalleryChange translates one tracked gallery mutation into a store write.
func planGalleryChange(rec domain.ChangeRecord[*domain.Gallery]) (statement, error) {
	g := rec.Snapshot
	if g == nil {
		return statement{}, domain.ErrInvalidPayload
	}

	switch rec.Type {
	case domain.ChangeAdded:
		return statement{
			sql: `
			INSERT INTO galleries (id, owner_id, name, description, relic_ids, cover_relic_id, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, 0, $7, $8)
			ON CONFLICT (id) DO UPDATE
			SET name = EXCLUDED.name,
				description = EXCLUDED.description,
				relic_ids = EXCLUDED.relic_ids,
				cover_relic_id = EXCLUDED.cover_relic_id,
				status = 0,
				updated_at = EXCLUDED.updated_at
			`,
			args: []interface{}{g.ID, g.OwnerID, g.Name, g.Description, marshalStrings(g.RelicIDs), g.CoverRelicID, g.CreatedAt, g.UpdatedAt},
		}, nil
	case domain.ChangeModified:
		return statement{
			sql: `
			UPDATE galleries
			SET name = $3, description = $4, relic_ids = $5, cover_relic_id = $6, updated_at = $7
			WHERE id = $1 AND owner_id = $2 AND status = 0
			`,
			args: []interface{}{g.ID, g.OwnerID, g.Name, g.Description, marshalStrings(g.RelicIDs), g.CoverRelicID, g.UpdatedAt},
		}, nil
	case domain.ChangeDeleted:
		return statement{
			sql: `
			UPDATE galleries
			SET status = 1, updated_at = $3
			WHERE id = $1 AND owner_id = $2
			`,
			args: []interface{}{g.ID, g.OwnerID, g.UpdatedAt},
		}, nil
	default:
		return statement{}, domain.ErrInvalidPayload
	}
}

// execFlush runs the planned statements inside the open transaction in plan
// order. Records flush in recording order, so the last mutation tracked for
// a business id determines the persisted state.
func execFlush(ctx context.Context, tx pgx.Tx, stmts []statement) error {
	for _, st := range stmts {
		if _, err := tx.Exec(ctx, st.sql, st.args...); err != nil {
			return err
		}
	}
	return nil
}

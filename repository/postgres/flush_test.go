package postgres

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relichub/backend/domain"
)

func TestPlanFavoriteAddUpsertsRow(t *testing.T) {
	now := time.Now()
	item := &domain.FavoriteItem{
		ID:        "f1",
		OwnerID:   "owner-1",
		RelicID:   "relic-1",
		Note:      "note",
		CreatedAt: now,
		UpdatedAt: now,
	}

	st, err := planFavoriteChange(domain.ChangeRecord[*domain.FavoriteItem]{
		Type:     domain.ChangeAdded,
		Entity:   domain.EntityFavorite,
		EntityID: "relic-1",
		Snapshot: item,
	})
	require.NoError(t, err)

	assert.Contains(t, st.sql, "INSERT INTO favorite_items")
	assert.Contains(t, st.sql, "ON CONFLICT (owner_id, relic_id)")
	assert.Contains(t, st.sql, "status = 0")
	assert.Equal(t, []interface{}{"f1", "owner-1", "relic-1", "note", now, now}, st.args)
}

func TestPlanFavoriteDeleteSoftDeletes(t *testing.T) {
	now := time.Now()
	st, err := planFavoriteChange(domain.ChangeRecord[*domain.FavoriteItem]{
		Type:     domain.ChangeDeleted,
		Snapshot: &domain.FavoriteItem{OwnerID: "owner-1", RelicID: "relic-1", UpdatedAt: now},
	})
	require.NoError(t, err)

	assert.Contains(t, st.sql, "SET status = 1")
	assert.NotContains(t, strings.ToUpper(st.sql), "DELETE FROM")
	assert.Equal(t, []interface{}{"owner-1", "relic-1", now}, st.args)
}

func TestPlanFavoriteModifyTargetsActiveRow(t *testing.T) {
	st, err := planFavoriteChange(domain.ChangeRecord[*domain.FavoriteItem]{
		Type:     domain.ChangeModified,
		Snapshot: &domain.FavoriteItem{OwnerID: "owner-1", RelicID: "relic-1", Note: "new"},
	})
	require.NoError(t, err)

	assert.Contains(t, st.sql, "UPDATE favorite_items")
	assert.Contains(t, st.sql, "status = 0")
}

func TestPlanFavoriteNilSnapshot(t *testing.T) {
	_, err := planFavoriteChange(domain.ChangeRecord[*domain.FavoriteItem]{Type: domain.ChangeAdded})
	require.ErrorIs(t, err, domain.ErrInvalidPayload)
}

func TestPlanCommentChangeCarriesReviewStatus(t *testing.T) {
	c := &domain.Comment{
		ID:       "c1",
		AuthorID: "author-1",
		RelicID:  "relic-1",
		Content:  "text",
		Status:   domain.CommentApproved,
	}

	st, err := planCommentChange(domain.ChangeRecord[*domain.Comment]{
		Type:     domain.ChangeModified,
		Snapshot: c,
	})
	require.NoError(t, err)

	assert.Contains(t, st.sql, "UPDATE comments")
	assert.Contains(t, st.sql, "review_status")
	assert.Contains(t, st.args, string(domain.CommentApproved))
}

func TestPlanCommentDeleteSoftDeletes(t *testing.T) {
	st, err := planCommentChange(domain.ChangeRecord[*domain.Comment]{
		Type:     domain.ChangeDeleted,
		Snapshot: &domain.Comment{ID: "c1", AuthorID: "author-1"},
	})
	require.NoError(t, err)

	assert.Contains(t, st.sql, "SET status = 1")
	assert.NotContains(t, strings.ToUpper(st.sql), "DELETE FROM")
}

func TestPlanGalleryAddSerializesRelicIDs(t *testing.T) {
	g := &domain.Gallery{
		ID:       "g1",
		OwnerID:  "owner-1",
		Name:     "Bronzes",
		RelicIDs: []string{"relic-1", "relic-2"},
	}

	st, err := planGalleryChange(domain.ChangeRecord[*domain.Gallery]{
		Type:     domain.ChangeAdded,
		Snapshot: g,
	})
	require.NoError(t, err)

	assert.Contains(t, st.sql, "INSERT INTO galleries")
	require.Len(t, st.args, 8)
	assert.JSONEq(t, `["relic-1","relic-2"]`, string(st.args[4].([]byte)))
}

func TestPlanGalleryEmptyRelicIDs(t *testing.T) {
	st, err := planGalleryChange(domain.ChangeRecord[*domain.Gallery]{
		Type:     domain.ChangeAdded,
		Snapshot: &domain.Gallery{ID: "g1", OwnerID: "owner-1", Name: "Empty"},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(st.args[4].([]byte)))
}

func TestPlanUnknownChangeType(t *testing.T) {
	_, err := planFavoriteChange(domain.ChangeRecord[*domain.FavoriteItem]{
		Type:     domain.ChangeType("bogus"),
		Snapshot: &domain.FavoriteItem{},
	})
	require.ErrorIs(t, err, domain.ErrInvalidPayload)

	_, err = planGalleryChange(domain.ChangeRecord[*domain.Gallery]{
		Type:     domain.ChangeType("bogus"),
		Snapshot: &domain.Gallery{},
	})
	require.ErrorIs(t, err, domain.ErrInvalidPayload)
}

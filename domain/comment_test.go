package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentPostStartsPending(t *testing.T) {
	agg := NewCommentsAggregate("author-1")

	c, err := agg.Post("relic-1", "remarkable glaze")
	require.NoError(t, err)
	assert.Equal(t, CommentPending, c.Status)
	assert.Equal(t, "author-1", c.AuthorID)

	records := agg.Changes()
	require.Len(t, records, 1)
	assert.Equal(t, ChangeAdded, records[0].Type)
	assert.Equal(t, EntityComment, records[0].Entity)
	assert.Equal(t, c.ID, records[0].EntityID)
}

func TestCommentPostRejectsEmptyContent(t *testing.T) {
	agg := NewCommentsAggregate("author-1")

	_, err := agg.Post("relic-1", "   ")
	require.ErrorIs(t, err, ErrEmptyCommentContent)
	assert.False(t, agg.HasChanges())
}

func TestCommentEditGoesBackToPending(t *testing.T) {
	agg := NewCommentsAggregate("author-1")
	c, err := agg.Post("relic-1", "first draft")
	require.NoError(t, err)
	require.NoError(t, agg.Approve(c.ID))

	require.NoError(t, agg.Edit(c.ID, "second draft"))

	edited, ok := agg.Comment(c.ID)
	require.True(t, ok)
	assert.Equal(t, CommentPending, edited.Status)
	assert.Equal(t, "second draft", edited.Content)
}

func TestCommentModerationTransitions(t *testing.T) {
	agg := NewCommentsAggregate("author-1")
	c, err := agg.Post("relic-1", "text")
	require.NoError(t, err)

	require.NoError(t, agg.Approve(c.ID))
	approved, _ := agg.Comment(c.ID)
	assert.Equal(t, CommentApproved, approved.Status)

	// already approved, cannot moderate again
	err = agg.Reject(c.ID)
	require.ErrorIs(t, err, ErrCommentNotPending)
}

func TestCommentModerateUnknownID(t *testing.T) {
	agg := NewCommentsAggregate("author-1")
	require.ErrorIs(t, agg.Approve("missing"), ErrCommentNotFound)
}

func TestCommentDeleteTracksLastSnapshot(t *testing.T) {
	agg := NewCommentsAggregate("author-1")
	c, err := agg.Post("relic-1", "text")
	require.NoError(t, err)

	require.NoError(t, agg.Delete(c.ID))
	_, ok := agg.Comment(c.ID)
	assert.False(t, ok)

	records := agg.Changes()
	require.Len(t, records, 2)
	assert.Equal(t, ChangeDeleted, records[1].Type)
	assert.Equal(t, "text", records[1].Snapshot.Content)
}

func TestChangedRelicIDsDeduplicates(t *testing.T) {
	agg := NewCommentsAggregate("author-1")

	c1, err := agg.Post("relic-1", "one")
	require.NoError(t, err)
	_, err = agg.Post("relic-2", "two")
	require.NoError(t, err)
	require.NoError(t, agg.Edit(c1.ID, "one, edited"))

	relics := agg.ChangedRelicIDs()
	assert.ElementsMatch(t, []string{"relic-1", "relic-2"}, relics)
}

func TestCommentsSnapshotRoundTrip(t *testing.T) {
	agg := NewCommentsAggregate("author-1")
	c, err := agg.Post("relic-1", "text")
	require.NoError(t, err)
	require.NoError(t, agg.Approve(c.ID))

	rebuilt := CommentsFromSnapshot(agg.Snapshot())
	assert.False(t, rebuilt.HasChanges())

	got, ok := rebuilt.Comment(c.ID)
	require.True(t, ok)
	assert.Equal(t, CommentApproved, got.Status)
}

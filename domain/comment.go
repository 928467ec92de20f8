package domain

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// CommentStatus tracks a comment through the moderation workflow.
type CommentStatus string

const (
	CommentPending  CommentStatus = "pending_review"
	CommentApproved CommentStatus = "approved"
	CommentRejected CommentStatus = "rejected"
)

// Comment is one remark an author has left on a relic.
type Comment struct {
	ID        string        `json:"id"`
	AuthorID  string        `json:"author_id"`
	RelicID   string        `json:"relic_id"`
	Content   string        `json:"content"`
	Status    CommentStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

func (c *Comment) clone() *Comment {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}

// CommentsSnapshot is the serializable form of a CommentsAggregate.
type CommentsSnapshot struct {
	AuthorID string     `json:"author_id"`
	Comments []*Comment `json:"comments"`
}

// CommentsAggregate is the per-author consistency unit for comment actions.
// Entities are keyed by comment id. Moderation (approve/reject) mutates this
// aggregate too: a comment belongs to its author even while an admin reviews
// it, which is why approval must also invalidate the relic-scoped caches.
type CommentsAggregate struct {
	authorID string

	mu       sync.Mutex
	comments map[string]*Comment
	tracker  *ChangeTracker[*Comment]
}

// NewCommentsAggregate creates an empty aggregate for an author.
func NewCommentsAggregate(authorID string) *CommentsAggregate {
	return &CommentsAggregate{
		authorID: authorID,
		comments: make(map[string]*Comment),
		tracker:  NewChangeTracker[*Comment](),
	}
}

// RebuildComments hydrates an aggregate from persisted active rows.
func RebuildComments(authorID string, comments []*Comment) *CommentsAggregate {
	agg := NewCommentsAggregate(authorID)
	for _, c := range comments {
		if c == nil || c.ID == "" {
			continue
		}
		agg.comments[c.ID] = c.clone()
	}
	return agg
}

// CommentsFromSnapshot rebuilds a clean aggregate from a cache blob.
func CommentsFromSnapshot(snap CommentsSnapshot) *CommentsAggregate {
	return RebuildComments(snap.AuthorID, snap.Comments)
}

// AuthorID returns the owning author id.
func (a *CommentsAggregate) AuthorID() string { return a.authorID }

// Snapshot returns the serializable current state.
func (a *CommentsAggregate) Snapshot() CommentsSnapshot {
	return CommentsSnapshot{AuthorID: a.authorID, Comments: a.Comments()}
}

// Comments returns the current entity set ordered by creation time.
func (a *CommentsAggregate) Comments() []*Comment {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]*Comment, 0, len(a.comments))
	for _, c := range a.comments {
		out = append(out, c.clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Comment returns one comment by id.
func (a *CommentsAggregate) Comment(commentID string) (*Comment, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	c, ok := a.comments[commentID]
	return c.clone(), ok
}

// Post adds a new comment on a relic in pending-review state.
func (a *CommentsAggregate) Post(relicID, content string) (*Comment, error) {
	if relicID == "" {
		return nil, ErrInvalidPayload
	}
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyCommentContent
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	now := time.Now()
	c := &Comment{
		ID:        uuid.NewString(),
		AuthorID:  a.authorID,
		RelicID:   relicID,
		Content:   content,
		Status:    CommentPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	a.comments[c.ID] = c
	a.tracker.RecordAdd(EntityComment, c.ID, c.clone())
	return c.clone(), nil
}

// Edit replaces a comment's content and sends it back to moderation.
func (a *CommentsAggregate) Edit(commentID, content string) error {
	if strings.TrimSpace(content) == "" {
		return ErrEmptyCommentContent
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	c, ok := a.comments[commentID]
	if !ok {
		return ErrCommentNotFound
	}
	c.Content = content
	c.Status = CommentPending
	c.UpdatedAt = time.Now()
	a.tracker.RecordModify(EntityComment, commentID, c.clone())
	return nil
}

// Delete removes a comment from the aggregate.
func (a *CommentsAggregate) Delete(commentID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	c, ok := a.comments[commentID]
	if !ok {
		return ErrCommentNotFound
	}
	delete(a.comments, commentID)
	a.tracker.RecordDelete(EntityComment, commentID, c.clone())
	return nil
}

// Approve moves a pending comment to approved.
func (a *CommentsAggregate) Approve(commentID string) error {
	return a.moderate(commentID, CommentApproved)
}

// Reject moves a pending comment to rejected.
func (a *CommentsAggregate) Reject(commentID string) error {
	return a.moderate(commentID, CommentRejected)
}

func (a *CommentsAggregate) moderate(commentID string, status CommentStatus) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	c, ok := a.comments[commentID]
	if !ok {
		return ErrCommentNotFound
	}
	if c.Status != CommentPending {
		return ErrCommentNotPending
	}
	c.Status = status
	c.UpdatedAt = time.Now()
	a.tracker.RecordModify(EntityComment, commentID, c.clone())
	return nil
}

// ChangedRelicIDs returns the distinct relics referenced by pending change records.
// Repositories use it to scope subject-cache invalidation after a flush.
func (a *CommentsAggregate) ChangedRelicIDs() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, rec := range a.tracker.Changes() {
		if rec.Snapshot == nil {
			continue
		}
		if _, ok := seen[rec.Snapshot.RelicID]; ok {
			continue
		}
		seen[rec.Snapshot.RelicID] = struct{}{}
		out = append(out, rec.Snapshot.RelicID)
	}
	return out
}

// HasChanges reports whether there are unflushed mutations.
func (a *CommentsAggregate) HasChanges() bool { return a.tracker.HasChanges() }

// ChangeCount returns the number of unflushed mutation records.
func (a *CommentsAggregate) ChangeCount() int { return a.tracker.Count() }

// Changes returns the pending mutation records in recording order.
func (a *CommentsAggregate) Changes() []ChangeRecord[*Comment] { return a.tracker.Changes() }

// CommentChanges returns the pending records for comment entities.
func (a *CommentsAggregate) CommentChanges() []ChangeRecord[*Comment] {
	return a.tracker.ChangesOf(EntityComment)
}

// ChangesSummary describes the pending changes for diagnostics.
func (a *CommentsAggregate) ChangesSummary() string { return a.tracker.Summary() }

// ClearChanges drains the tracker after a confirmed flush.
func (a *CommentsAggregate) ClearChanges() { a.tracker.Clear() }

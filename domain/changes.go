package domain

import (
	"fmt"
	"sync"
)

// ChangeType classifies a tracked mutation.
type ChangeType string

const (
	ChangeAdded    ChangeType = "added"
	ChangeModified ChangeType = "modified"
	ChangeDeleted  ChangeType = "deleted"
)

// Tracked entity names used in change records.
const (
	EntityFavorite = "favorite_item"
	EntityComment  = "comment"
	EntityGallery  = "gallery"
)

// ChangeRecord captures one mutation applied to an aggregate entity. Snapshot
// holds the full entity value at recording time, not a field diff.
type ChangeRecord[E any] struct {
	Type     ChangeType
	Entity   string
	EntityID string
	Snapshot E
}

// ChangeTracker is an append-only ledger of mutations applied to one
// aggregate instance since it was loaded. Records are never merged or
// deduplicated: an add followed by a delete for the same entity id keeps
// both records until Clear. Repositories flush records in recording order,
// so the last mutation for an id determines the persisted state.
//
// All methods are safe for concurrent use by goroutines sharing the
// aggregate; the mutex that appends a record also publishes HasChanges.
type ChangeTracker[E any] struct {
	mu      sync.Mutex
	records []ChangeRecord[E]
}

// NewChangeTracker creates an empty tracker.
func NewChangeTracker[E any]() *ChangeTracker[E] {
	return &ChangeTracker[E]{}
}

// RecordAdd appends an Added record.
func (t *ChangeTracker[E]) RecordAdd(entity, entityID string, snapshot E) {
	t.append(ChangeAdded, entity, entityID, snapshot)
}

// RecordModify appends a Modified record.
func (t *ChangeTracker[E]) RecordModify(entity, entityID string, snapshot E) {
	t.append(ChangeModified, entity, entityID, snapshot)
}

// RecordDelete appends a Deleted record carrying the entity's last snapshot.
func (t *ChangeTracker[E]) RecordDelete(entity, entityID string, snapshot E) {
	t.append(ChangeDeleted, entity, entityID, snapshot)
}

func (t *ChangeTracker[E]) append(ct ChangeType, entity, entityID string, snapshot E) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.records = append(t.records, ChangeRecord[E]{
		Type:     ct,
		Entity:   entity,
		EntityID: entityID,
		Snapshot: snapshot,
	})
}

// HasChanges reports whether the ledger holds at least one record.
func (t *ChangeTracker[E]) HasChanges() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.records) > 0
}

// Count returns the number of recorded changes.
func (t *ChangeTracker[E]) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.records)
}

// Changes returns a copy of the ledger in recording order.
func (t *ChangeTracker[E]) Changes() []ChangeRecord[E] {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]ChangeRecord[E], len(t.records))
	copy(out, t.records)
	return out
}

// ChangesOf returns the records for one entity name, in recording order.
func (t *ChangeTracker[E]) ChangesOf(entity string) []ChangeRecord[E] {
	return t.filter(func(r ChangeRecord[E]) bool { return r.Entity == entity })
}

// ChangesByType returns the records of one change type, in recording order.
func (t *ChangeTracker[E]) ChangesByType(ct ChangeType) []ChangeRecord[E] {
	return t.filter(func(r ChangeRecord[E]) bool { return r.Type == ct })
}

// ChangesFor returns the records matching both entity name and change type.
func (t *ChangeTracker[E]) ChangesFor(entity string, ct ChangeType) []ChangeRecord[E] {
	return t.filter(func(r ChangeRecord[E]) bool { return r.Entity == entity && r.Type == ct })
}

func (t *ChangeTracker[E]) filter(keep func(ChangeRecord[E]) bool) []ChangeRecord[E] {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []ChangeRecord[E]
	for _, r := range t.records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// Summary describes the pending changes for diagnostics, e.g. "3 changes (added=2 deleted=1)".
func (t *ChangeTracker[E]) Summary() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.records) == 0 {
		return "no changes"
	}
	var added, modified, deleted int
	for _, r := range t.records {
		switch r.Type {
		case ChangeAdded:
			added++
		case ChangeModified:
			modified++
		case ChangeDeleted:
			deleted++
		}
	}
	return fmt.Sprintf("%d changes (added=%d modified=%d deleted=%d)", len(t.records), added, modified, deleted)
}

// Clear empties the ledger. Called by repositories once a flush has committed.
func (t *ChangeTracker[E]) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.records = nil
}

package domain

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// FavoriteItem is one relic a visitor has marked as a favorite.
type FavoriteItem struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	RelicID   string    `json:"relic_id"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (f *FavoriteItem) clone() *FavoriteItem {
	if f == nil {
		return nil
	}
	c := *f
	return &c
}

// FavoritesSnapshot is the serializable form of a FavoritesAggregate used for
// cache blobs. Rebuilding from a snapshot yields a clean aggregate.
type FavoritesSnapshot struct {
	OwnerID string          `json:"owner_id"`
	Items   []*FavoriteItem `json:"items"`
}

// FavoritesAggregate is the per-owner consistency unit for favorite actions.
// Entities are keyed by relic id; every successful mutation is recorded in
// the embedded change tracker with a full snapshot.
type FavoritesAggregate struct {
	ownerID string

	mu      sync.Mutex
	items   map[string]*FavoriteItem
	tracker *ChangeTracker[*FavoriteItem]
}

// NewFavoritesAggregate creates an empty aggregate for an owner with no
// persisted favorites yet.
func NewFavoritesAggregate(ownerID string) *FavoritesAggregate {
	return &FavoritesAggregate{
		ownerID: ownerID,
		items:   make(map[string]*FavoriteItem),
		tracker: NewChangeTracker[*FavoriteItem](),
	}
}

// RebuildFavorites hydrates an aggregate from persisted active rows. The
// tracker starts empty: hydration is not a mutation.
func RebuildFavorites(ownerID string, items []*FavoriteItem) *FavoritesAggregate {
	agg := NewFavoritesAggregate(ownerID)
	for _, item := range items {
		if item == nil || item.RelicID == "" {
			continue
		}
		agg.items[item.RelicID] = item.clone()
	}
	return agg
}

// FavoritesFromSnapshot rebuilds a clean aggregate from a cache blob.
func FavoritesFromSnapshot(snap FavoritesSnapshot) *FavoritesAggregate {
	return RebuildFavorites(snap.OwnerID, snap.Items)
}

// OwnerID returns the owning user id.
func (a *FavoritesAggregate) OwnerID() string { return a.ownerID }

// Snapshot returns the serializable current state.
func (a *FavoritesAggregate) Snapshot() FavoritesSnapshot {
	return FavoritesSnapshot{OwnerID: a.ownerID, Items: a.Favorites()}
}

// Favorites returns the current entity set ordered by creation time.
func (a *FavoritesAggregate) Favorites() []*FavoriteItem {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]*FavoriteItem, 0, len(a.items))
	for _, item := range a.items {
		out = append(out, item.clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].RelicID < out[j].RelicID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// IsFavorited reports whether the owner currently favorites the relic.
func (a *FavoritesAggregate) IsFavorited(relicID string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.items[relicID]
	return ok
}

// Count returns the number of active favorites.
func (a *FavoritesAggregate) Count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.items)
}

// Add marks a relic as favorited. Favoriting the same relic twice is a
// conflict and leaves both the entity map and the tracker untouched.
func (a *FavoritesAggregate) Add(relicID, note string) (*FavoriteItem, error) {
	if relicID == "" {
		return nil, ErrInvalidPayload
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.items[relicID]; ok {
		return nil, ErrAlreadyFavorited
	}

	now := time.Now()
	item := &FavoriteItem{
		ID:        uuid.NewString(),
		OwnerID:   a.ownerID,
		RelicID:   relicID,
		Note:      note,
		CreatedAt: now,
		UpdatedAt: now,
	}
	a.items[relicID] = item
	a.tracker.RecordAdd(EntityFavorite, relicID, item.clone())
	return item.clone(), nil
}

// Remove un-favorites a relic. The entity leaves the map but its last
// snapshot stays in the tracker until the flush clears it.
func (a *FavoritesAggregate) Remove(relicID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	item, ok := a.items[relicID]
	if !ok {
		return ErrFavoriteNotFound
	}
	delete(a.items, relicID)
	a.tracker.RecordDelete(EntityFavorite, relicID, item.clone())
	return nil
}

// UpdateNote replaces the note attached to a favorite.
func (a *FavoritesAggregate) UpdateNote(relicID, note string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	item, ok := a.items[relicID]
	if !ok {
		return ErrFavoriteNotFound
	}
	item.Note = note
	item.UpdatedAt = time.Now()
	a.tracker.RecordModify(EntityFavorite, relicID, item.clone())
	return nil
}

// HasChanges reports whether there are unflushed mutations.
func (a *FavoritesAggregate) HasChanges() bool { return a.tracker.HasChanges() }

// ChangeCount returns the number of unflushed mutation records.
func (a *FavoritesAggregate) ChangeCount() int { return a.tracker.Count() }

// Changes returns the pending mutation records in recording order.
func (a *FavoritesAggregate) Changes() []ChangeRecord[*FavoriteItem] { return a.tracker.Changes() }

// FavoriteChanges returns the pending records for favorite items.
func (a *FavoritesAggregate) FavoriteChanges() []ChangeRecord[*FavoriteItem] {
	return a.tracker.ChangesOf(EntityFavorite)
}

// ChangesSummary describes the pending changes for diagnostics.
func (a *FavoritesAggregate) ChangesSummary() string { return a.tracker.Summary() }

// ClearChanges drains the tracker after a confirmed flush.
func (a *FavoritesAggregate) ClearChanges() { a.tracker.Clear() }

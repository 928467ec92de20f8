package domain

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChangeTrackerRecordsInOrder(t *testing.T) {
	tracker := NewChangeTracker[*FavoriteItem]()
	assert.False(t, tracker.HasChanges())
	assert.Equal(t, "no changes", tracker.Summary())

	tracker.RecordAdd(EntityFavorite, "relic-1", &FavoriteItem{RelicID: "relic-1"})
	tracker.RecordModify(EntityFavorite, "relic-1", &FavoriteItem{RelicID: "relic-1", Note: "updated"})
	tracker.RecordDelete(EntityFavorite, "relic-2", &FavoriteItem{RelicID: "relic-2"})

	require.True(t, tracker.HasChanges())
	require.Equal(t, 3, tracker.Count())

	records := tracker.Changes()
	require.Len(t, records, 3)
	assert.Equal(t, ChangeAdded, records[0].Type)
	assert.Equal(t, ChangeModified, records[1].Type)
	assert.Equal(t, ChangeDeleted, records[2].Type)
	assert.Equal(t, "relic-1", records[0].EntityID)
	assert.Equal(t, "updated", records[1].Snapshot.Note)

	assert.Equal(t, "3 changes (added=1 modified=1 deleted=1)", tracker.Summary())
}

func TestChangeTrackerKeepsAddThenDeleteForSameID(t *testing.T) {
	tracker := NewChangeTracker[*FavoriteItem]()

	tracker.RecordAdd(EntityFavorite, "relic-1", &FavoriteItem{RelicID: "relic-1"})
	tracker.RecordDelete(EntityFavorite, "relic-1", &FavoriteItem{RelicID: "relic-1"})

	records := tracker.Changes()
	require.Len(t, records, 2)
	assert.Equal(t, ChangeAdded, records[0].Type)
	assert.Equal(t, ChangeDeleted, records[1].Type)
}

func TestChangeTrackerFilters(t *testing.T) {
	tracker := NewChangeTracker[*FavoriteItem]()
	tracker.RecordAdd(EntityFavorite, "a", &FavoriteItem{RelicID: "a"})
	tracker.RecordAdd(EntityFavorite, "b", &FavoriteItem{RelicID: "b"})
	tracker.RecordDelete(EntityFavorite, "a", &FavoriteItem{RelicID: "a"})

	assert.Len(t, tracker.ChangesOf(EntityFavorite), 3)
	assert.Empty(t, tracker.ChangesOf(EntityComment))
	assert.Len(t, tracker.ChangesByType(ChangeAdded), 2)
	assert.Len(t, tracker.ChangesFor(EntityFavorite, ChangeDeleted), 1)
}

func TestChangeTrackerClear(t *testing.T) {
	tracker := NewChangeTracker[*FavoriteItem]()
	tracker.RecordAdd(EntityFavorite, "a", &FavoriteItem{RelicID: "a"})
	require.True(t, tracker.HasChanges())

	tracker.Clear()
	assert.False(t, tracker.HasChanges())
	assert.Zero(t, tracker.Count())
	assert.Empty(t, tracker.Changes())
}

func TestChangeTrackerConcurrentAppends(t *testing.T) {
	tracker := NewChangeTracker[*FavoriteItem]()

	const goroutines = 8
	const perGoroutine = 50

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				tracker.RecordAdd(EntityFavorite, "relic", &FavoriteItem{RelicID: "relic"})
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, goroutines*perGoroutine, tracker.Count())
}

func TestChangesReturnsCopy(t *testing.T) {
	tracker := NewChangeTracker[*FavoriteItem]()
	tracker.RecordAdd(EntityFavorite, "a", &FavoriteItem{RelicID: "a"})

	records := tracker.Changes()
	records[0].EntityID = "tampered"

	assert.Equal(t, "a", tracker.Changes()[0].EntityID)
}

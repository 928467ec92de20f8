package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGalleryCreateEnforcesUniqueName(t *testing.T) {
	m := NewGalleryManager("owner-1")

	g, err := m.Create("Bronzes", "Shang and Zhou vessels")
	require.NoError(t, err)
	assert.NotEmpty(t, g.ID)
	assert.Equal(t, "owner-1", g.OwnerID)

	_, err = m.Create("bronzes", "case differs, still taken")
	require.ErrorIs(t, err, ErrGalleryNameTaken)
	assert.Equal(t, 1, m.ChangeCount())
}

func TestGalleryRelicMembership(t *testing.T) {
	m := NewGalleryManager("owner-1")
	g, err := m.Create("Jades", "")
	require.NoError(t, err)

	require.NoError(t, m.AddRelic(g.ID, "relic-1"))
	require.ErrorIs(t, m.AddRelic(g.ID, "relic-1"), ErrRelicAlreadyInGallery)
	require.NoError(t, m.AddRelic(g.ID, "relic-2"))

	got, ok := m.Gallery(g.ID)
	require.True(t, ok)
	assert.Equal(t, []string{"relic-1", "relic-2"}, got.RelicIDs)
}

func TestGalleryRemoveRelicClearsCover(t *testing.T) {
	m := NewGalleryManager("owner-1")
	g, err := m.Create("Jades", "")
	require.NoError(t, err)
	require.NoError(t, m.AddRelic(g.ID, "relic-1"))
	require.NoError(t, m.SetCover(g.ID, "relic-1"))

	require.NoError(t, m.RemoveRelic(g.ID, "relic-1"))

	got, _ := m.Gallery(g.ID)
	assert.Empty(t, got.RelicIDs)
	assert.Empty(t, got.CoverRelicID)
}

func TestGallerySetCoverRequiresMembership(t *testing.T) {
	m := NewGalleryManager("owner-1")
	g, err := m.Create("Jades", "")
	require.NoError(t, err)

	require.ErrorIs(t, m.SetCover(g.ID, "relic-1"), ErrRelicNotInGallery)
}

func TestGalleryRenameChecksOtherNames(t *testing.T) {
	m := NewGalleryManager("owner-1")
	a, err := m.Create("Bronzes", "")
	require.NoError(t, err)
	_, err = m.Create("Jades", "")
	require.NoError(t, err)

	require.ErrorIs(t, m.Rename(a.ID, "JADES", ""), ErrGalleryNameTaken)

	// renaming to its own name is allowed
	require.NoError(t, m.Rename(a.ID, "Bronzes", "updated description"))
}

func TestGalleryDeleteTracksSnapshot(t *testing.T) {
	m := NewGalleryManager("owner-1")
	g, err := m.Create("Bronzes", "")
	require.NoError(t, err)
	require.NoError(t, m.AddRelic(g.ID, "relic-1"))

	require.NoError(t, m.Delete(g.ID))
	_, ok := m.Gallery(g.ID)
	assert.False(t, ok)

	records := m.Changes()
	require.Len(t, records, 3)
	assert.Equal(t, ChangeDeleted, records[2].Type)
	assert.Equal(t, []string{"relic-1"}, records[2].Snapshot.RelicIDs)
}

func TestGalleryMembershipRecordsWholeSnapshot(t *testing.T) {
	m := NewGalleryManager("owner-1")
	g, err := m.Create("Bronzes", "")
	require.NoError(t, err)
	require.NoError(t, m.AddRelic(g.ID, "relic-1"))

	records := m.GalleryChanges()
	require.Len(t, records, 2)
	assert.Equal(t, ChangeModified, records[1].Type)
	assert.Equal(t, []string{"relic-1"}, records[1].Snapshot.RelicIDs)
}

func TestGallerySnapshotRoundTrip(t *testing.T) {
	m := NewGalleryManager("owner-1")
	g, err := m.Create("Bronzes", "desc")
	require.NoError(t, err)
	require.NoError(t, m.AddRelic(g.ID, "relic-1"))

	rebuilt := GalleriesFromSnapshot(m.Snapshot())
	assert.False(t, rebuilt.HasChanges())

	got, ok := rebuilt.Gallery(g.ID)
	require.True(t, ok)
	assert.Equal(t, "Bronzes", got.Name)
	assert.Equal(t, []string{"relic-1"}, got.RelicIDs)
}

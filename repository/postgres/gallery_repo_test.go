package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relichub/backend/domain"
)

// stubGalleryRow feeds scanGallery a fixed row with an arbitrary relic_ids
// payload.
type stubGalleryRow struct {
	relicIDs []byte
}

func (s stubGalleryRow) Scan(dest ...any) error {
	*(dest[0].(*string)) = "g1"
	*(dest[1].(*string)) = "owner-1"
	*(dest[2].(*string)) = "Bronzes"
	*(dest[3].(*string)) = "dynastic bronzes"
	*(dest[4].(*[]byte)) = s.relicIDs
	*(dest[5].(*string)) = "relic-1"
	*(dest[6].(*time.Time)) = time.Unix(1700000000, 0)
	*(dest[7].(*time.Time)) = time.Unix(1700000000, 0)
	return nil
}

func TestScanGalleryDecodesRelics(t *testing.T) {
	g, err := scanGallery(stubGalleryRow{relicIDs: []byte(`["relic-1","relic-2"]`)})
	require.NoError(t, err)
	assert.Equal(t, []string{"relic-1", "relic-2"}, g.RelicIDs)
}

func TestScanGalleryRejectsCorruptRelics(t *testing.T) {
	_, err := scanGallery(stubGalleryRow{relicIDs: []byte(`{not json`)})
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInternal))
}

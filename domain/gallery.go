package domain

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Gallery is a named, ordered collection of relics curated by one owner.
type Gallery struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"owner_id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	RelicIDs     []string  `json:"relic_ids"`
	CoverRelicID string    `json:"cover_relic_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (g *Gallery) clone() *Gallery {
	if g == nil {
		return nil
	}
	c := *g
	c.RelicIDs = append([]string(nil), g.RelicIDs...)
	return &c
}

func (g *Gallery) contains(relicID string) bool {
	for _, id := range g.RelicIDs {
		if id == relicID {
			return true
		}
	}
	return false
}

// GallerySnapshot is the serializable form of a GalleryManager.
type GallerySnapshot struct {
	OwnerID   string     `json:"owner_id"`
	Galleries []*Gallery `json:"galleries"`
}

// GalleryManager is the per-owner consistency unit for personal galleries.
// Entities are keyed by gallery id; relic membership mutations record the
// whole gallery snapshot, matching the row granularity of the store.
type GalleryManager struct {
	ownerID string

	mu        sync.Mutex
	galleries map[string]*Gallery
	tracker   *ChangeTracker[*Gallery]
}

// NewGalleryManager creates an empty manager for an owner.
func NewGalleryManager(ownerID string) *GalleryManager {
	return &GalleryManager{
		ownerID:   ownerID,
		galleries: make(map[string]*Gallery),
		tracker:   NewChangeTracker[*Gallery](),
	}
}

// RebuildGalleries hydrates a manager from persisted active rows.
func RebuildGalleries(ownerID string, galleries []*Gallery) *GalleryManager {
	m := NewGalleryManager(ownerID)
	for _, g := range galleries {
		if g == nil || g.ID == "" {
			continue
		}
		m.galleries[g.ID] = g.clone()
	}
	return m
}

// GalleriesFromSnapshot rebuilds a clean manager from a cache blob.
func GalleriesFromSnapshot(snap GallerySnapshot) *GalleryManager {
	return RebuildGalleries(snap.OwnerID, snap.Galleries)
}

// OwnerID returns the owning user id.
func (m *GalleryManager) OwnerID() string { return m.ownerID }

// Snapshot returns the serializable current state.
func (m *GalleryManager) Snapshot() GallerySnapshot {
	return GallerySnapshot{OwnerID: m.ownerID, Galleries: m.Galleries()}
}

// Galleries returns the current entity set ordered by creation time.
func (m *GalleryManager) Galleries() []*Gallery {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Gallery, 0, len(m.galleries))
	for _, g := range m.galleries {
		out = append(out, g.clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Gallery returns one gallery by id.
func (m *GalleryManager) Gallery(galleryID string) (*Gallery, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.galleries[galleryID]
	return g.clone(), ok
}

// Create adds a new empty gallery. Names are unique per owner.
func (m *GalleryManager) Create(name, description string) (*Gallery, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidPayload
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, g := range m.galleries {
		if strings.EqualFold(g.Name, name) {
			return nil, ErrGalleryNameTaken
		}
	}

	now := time.Now()
	g := &Gallery{
		ID:          uuid.NewString(),
		OwnerID:     m.ownerID,
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.galleries[g.ID] = g
	m.tracker.RecordAdd(EntityGallery, g.ID, g.clone())
	return g.clone(), nil
}

// Rename changes a gallery's name and description.
func (m *GalleryManager) Rename(galleryID, name, description string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrInvalidPayload
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	g, ok := m.galleries[galleryID]
	if !ok {
		return ErrGalleryNotFound
	}
	for id, other := range m.galleries {
		if id != galleryID && strings.EqualFold(other.Name, name) {
			return ErrGalleryNameTaken
		}
	}
	g.Name = name
	g.Description = description
	g.UpdatedAt = time.Now()
	m.tracker.RecordModify(EntityGallery, galleryID, g.clone())
	return nil
}

// AddRelic appends a relic to a gallery. A relic can appear once per gallery.
func (m *GalleryManager) AddRelic(galleryID, relicID string) error {
	if relicID == "" {
		return ErrInvalidPayload
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	g, ok := m.galleries[galleryID]
	if !ok {
		return ErrGalleryNotFound
	}
	if g.contains(relicID) {
		return ErrRelicAlreadyInGallery
	}
	g.RelicIDs = append(g.RelicIDs, relicID)
	g.UpdatedAt = time.Now()
	m.tracker.RecordModify(EntityGallery, galleryID, g.clone())
	return nil
}

// RemoveRelic removes a relic from a gallery, clearing the cover if it was it.
func (m *GalleryManager) RemoveRelic(galleryID, relicID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	g, ok := m.galleries[galleryID]
	if !ok {
		return ErrGalleryNotFound
	}
	idx := -1
	for i, id := range g.RelicIDs {
		if id == relicID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrRelicNotInGallery
	}
	g.RelicIDs = append(g.RelicIDs[:idx], g.RelicIDs[idx+1:]...)
	if g.CoverRelicID == relicID {
		g.CoverRelicID = ""
	}
	g.UpdatedAt = time.Now()
	m.tracker.RecordModify(EntityGallery, galleryID, g.clone())
	return nil
}

// SetCover picks a relic already in the gallery as its cover.
func (m *GalleryManager) SetCover(galleryID, relicID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	g, ok := m.galleries[galleryID]
	if !ok {
		return ErrGalleryNotFound
	}
	if !g.contains(relicID) {
		return ErrRelicNotInGallery
	}
	g.CoverRelicID = relicID
	g.UpdatedAt = time.Now()
	m.tracker.RecordModify(EntityGallery, galleryID, g.clone())
	return nil
}

// Delete removes a gallery from the manager.
func (m *GalleryManager) Delete(galleryID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	g, ok := m.galleries[galleryID]
	if !ok {
		return ErrGalleryNotFound
	}
	delete(m.galleries, galleryID)
	m.tracker.RecordDelete(EntityGallery, galleryID, g.clone())
	return nil
}

// HasChanges reports whether there are unflushed mutations.
func (m *GalleryManager) HasChanges() bool { return m.tracker.HasChanges() }

// ChangeCount returns the number of unflushed mutation records.
func (m *GalleryManager) ChangeCount() int { return m.tracker.Count() }

// Changes returns the pending mutation records in recording order.
func (m *GalleryManager) Changes() []ChangeRecord[*Gallery] { return m.tracker.Changes() }

// GalleryChanges returns the pending records for gallery entities.
func (m *GalleryManager) GalleryChanges() []ChangeRecord[*Gallery] {
	return m.tracker.ChangesOf(EntityGallery)
}

// ChangesSummary describes the pending changes for diagnostics.
func (m *GalleryManager) ChangesSummary() string { return m.tracker.Summary() }

// ClearChanges drains the tracker after a confirmed flush.
func (m *GalleryManager) ClearChanges() { m.tracker.Clear() }

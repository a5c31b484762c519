package sync

import (
	"sort"
	"sync"

	"github.com/dmitrijs2005/journal/internal/client/models"
)

// CollectionStore holds the persisted entries for the currently viewed
// scope date. It is the only state read by multiple components (draft
// reconciliation, dirty tracking, display ordering) and is mutated solely
// through its own Replace/Apply methods.
type CollectionStore struct {
	mu      sync.Mutex
	date    models.Date
	entries map[string]models.Entry
}

func NewCollectionStore() *CollectionStore {
	return &CollectionStore{entries: map[string]models.Entry{}}
}

// Replace swaps in the full server listing for the date.
func (s *CollectionStore) Replace(date models.Date, entries []models.Entry) {
	m := make(map[string]models.Entry, len(entries))
	for _, e := range entries {
		m[e.ID] = e
	}
	s.mu.Lock()
	s.date = date
	s.entries = m
	s.mu.Unlock()
}

// ApplyCreate inserts a freshly created entry optimistically, so the UI
// does not wait for a full reload.
func (s *CollectionStore) ApplyCreate(e models.Entry) {
	s.mu.Lock()
	s.entries[e.ID] = e
	s.mu.Unlock()
}

// ApplyUpdate replaces the stored entry with the server's post-save view.
// Unknown ids are inserted; an update racing a reload is harmless either way.
func (s *CollectionStore) ApplyUpdate(e models.Entry) {
	s.mu.Lock()
	s.entries[e.ID] = e
	s.mu.Unlock()
}

func (s *CollectionStore) ApplyDelete(id string) {
	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()
}

func (s *CollectionStore) Get(id string) (models.Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	return e, ok
}

func (s *CollectionStore) Contains(id string) bool {
	_, ok := s.Get(id)
	return ok
}

func (s *CollectionStore) Date() models.Date {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.date
}

func (s *CollectionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Snapshot returns the entries ordered by WrittenAt (the user-editable
// "as of" time), oldest first. WrittenAt is editable after the fact, so the
// order is recomputed on every call rather than fixed at creation. Ties
// fall back to CreatedAt, then id, for a stable display.
func (s *CollectionStore) Snapshot() []models.Entry {
	s.mu.Lock()
	out := make([]models.Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].WrittenAt.Equal(out[j].WrittenAt) {
			return out[i].WrittenAt.Before(out[j].WrittenAt)
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

package sync

import "sync"

// DirtyTracker records, per committed entry, whether local content diverges
// from the last-known server content. Divergence is recomputed against fresh
// server content on every collection refresh, so an edit that returns to the
// server's value clears itself without a save.
//
// An entry whose server content has not been observed yet is never dirty.
// This keeps the "unsynced" indicator quiet during initial load, before the
// tracker has hydrated.
type DirtyTracker struct {
	mu     sync.Mutex
	local  map[string]string // entryID -> latest local content, present only while diverged
	server map[string]string // entryID -> last confirmed server content
}

func NewDirtyTracker() *DirtyTracker {
	return &DirtyTracker{
		local:  map[string]string{},
		server: map[string]string{},
	}
}

// MarkEdited records new local content for the entry and re-evaluates
// divergence.
func (t *DirtyTracker) MarkEdited(entryID, content string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if srv, ok := t.server[entryID]; ok && srv == content {
		delete(t.local, entryID)
		return
	}
	t.local[entryID] = content
}

// ObserveServer installs the server's content for one entry (a confirmed
// save or a refreshed listing) and clears divergence where content now
// matches.
func (t *DirtyTracker) ObserveServer(entryID, content string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.server[entryID] = content
	if local, ok := t.local[entryID]; ok && local == content {
		delete(t.local, entryID)
	}
}

// Clear removes the entry from the dirty set after a confirmed save.
func (t *DirtyTracker) Clear(entryID string) {
	t.mu.Lock()
	delete(t.local, entryID)
	t.mu.Unlock()
}

// Forget drops all state for a deleted entry.
func (t *DirtyTracker) Forget(entryID string) {
	t.mu.Lock()
	delete(t.local, entryID)
	delete(t.server, entryID)
	t.mu.Unlock()
}

// Reset drops everything. Used on scope-date change.
func (t *DirtyTracker) Reset() {
	t.mu.Lock()
	t.local = map[string]string{}
	t.server = map[string]string{}
	t.mu.Unlock()
}

// IsDirty reports whether the entry currently diverges from the server.
func (t *DirtyTracker) IsDirty(entryID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.local[entryID]
	return ok
}

// Any reports whether any committed entry diverges. The draft's divergence
// is tracked by the DraftController and folded in by the engine.
func (t *DirtyTracker) Any() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.local) > 0
}

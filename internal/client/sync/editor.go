package sync

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/journal/internal/client/gateway"
	"github.com/dmitrijs2005/journal/internal/client/models"
	"github.com/dmitrijs2005/journal/internal/logging"
)

// EntryAPI is the slice of the persistence gateway the engine drives.
type EntryAPI interface {
	ListEntries(ctx context.Context, date models.Date) ([]models.Entry, error)
	CreateEntry(ctx context.Context, date models.Date, content string) (models.Entry, error)
	UpdateEntry(ctx context.Context, id string, patch models.EntryPatch) (models.Entry, error)
	DeleteEntry(ctx context.Context, id string) error
}

// Options tune the engine. Zero values fall back to the package defaults.
type Options struct {
	Clock            Clock
	DebounceInterval time.Duration
	PendingGrace     time.Duration

	// OnSaveError surfaces a validation failure caused by a manual save.
	// Debounced saves never surface errors; they are logged only, so a
	// rejected autosave cannot interrupt typing.
	OnSaveError func(unitID string, err error)
}

// Engine binds the editable units of one viewed scope date (the committed
// entries plus the draft) to the scheduler, dirty tracker, draft controller,
// collection store and typing aggregator, and routes their flushes to the
// persistence API.
//
// A unit id is either a committed entry's id or the draft controller's
// current unit id. At most one save per unit is in flight; a flush arriving
// during a save is queued as a single "run again with the latest content"
// bit, which preserves the rule that the last save reflects the most
// recently observed content.
type Engine struct {
	api EntryAPI
	log logging.Logger

	store  *CollectionStore
	dirty  *DirtyTracker
	draft  *DraftController
	sched  *Scheduler
	typing *TypingAggregator

	onSaveError func(unitID string, err error)

	mu               sync.Mutex
	saving           map[string]bool
	queued           map[string]bool // unitID -> queued flush was manual
	timeEdits        map[string]*TimeEdit
	pendingWrittenAt map[string]time.Time
}

func NewEngine(api EntryAPI, log logging.Logger, opts Options) *Engine {
	clock := opts.Clock
	if clock == nil {
		clock = SystemClock()
	}

	e := &Engine{
		api:              api,
		log:              log,
		store:            NewCollectionStore(),
		dirty:            NewDirtyTracker(),
		draft:            NewDraftController(clock, opts.PendingGrace),
		typing:           NewTypingAggregator(),
		onSaveError:      opts.OnSaveError,
		saving:           map[string]bool{},
		queued:           map[string]bool{},
		timeEdits:        map[string]*TimeEdit{},
		pendingWrittenAt: map[string]time.Time{},
	}
	e.sched = NewScheduler(clock, opts.DebounceInterval, e.flush)
	return e
}

// OpenDate loads the collection for a new scope date and resets all
// per-date state: pending timers, typing signals, dirty tracking, and the
// draft. An in-flight save for the previous date keeps running but its
// result no longer matters.
func (e *Engine) OpenDate(ctx context.Context, date models.Date) error {
	entries, err := e.api.ListEntries(ctx, date)
	if err != nil {
		return err
	}

	e.sched.CancelAll()
	e.typing.Reset()
	e.dirty.Reset()

	e.store.Replace(date, entries)
	for _, en := range entries {
		e.dirty.ObserveServer(en.ID, en.Content)
	}
	e.draft.ResetForDate(date)

	e.mu.Lock()
	e.timeEdits = map[string]*TimeEdit{}
	e.pendingWrittenAt = map[string]time.Time{}
	e.mu.Unlock()
	return nil
}

// Refresh re-fetches the current date's collection and lets the draft
// controller observe it, which ends pending-id suppression as soon as the
// created entry shows up in the listing.
func (e *Engine) Refresh(ctx context.Context) error {
	date := e.store.Date()
	if date == "" {
		return nil
	}

	entries, err := e.api.ListEntries(ctx, date)
	if err != nil {
		return err
	}
	if e.store.Date() != date {
		// scope changed while the fetch was in flight; stale result
		return nil
	}

	e.store.Replace(date, entries)
	for _, en := range entries {
		e.dirty.ObserveServer(en.ID, en.Content)
	}
	e.draft.ObserveCollection(e.store.Contains)
	return nil
}

// EditEntry records a keystroke-level change to a committed entry.
func (e *Engine) EditEntry(id, content string) {
	e.dirty.MarkEdited(id, content)
	e.sched.OnEdit(id, content)
}

// SaveEntryNow is the manual trigger for a committed entry: any pending
// debounce timer is canceled and the save flushes immediately.
func (e *Engine) SaveEntryNow(id, content string) {
	e.dirty.MarkEdited(id, content)
	e.sched.OnManualTrigger(id, content)
}

// EditDraft records a keystroke-level change to the draft.
func (e *Engine) EditDraft(content string) {
	e.draft.OnEdit(content)
	e.sched.OnEdit(e.draft.UnitID(), content)
}

// SaveDraftNow manually flushes the draft.
func (e *Engine) SaveDraftNow() {
	e.sched.OnManualTrigger(e.draft.UnitID(), e.draft.Content())
}

// DeleteEntry is the explicit user delete. A 404 means the entry was
// already deleted server-side, which is success of intent.
func (e *Engine) DeleteEntry(ctx context.Context, id string) error {
	err := e.api.DeleteEntry(ctx, id)
	if err != nil && !gateway.IsNotFound(err) {
		return err
	}
	e.applyDeletion(id)
	return nil
}

func (e *Engine) applyDeletion(id string) {
	e.store.ApplyDelete(id)
	e.dirty.Forget(id)
	e.sched.Cancel(id)

	e.mu.Lock()
	delete(e.timeEdits, id)
	delete(e.pendingWrittenAt, id)
	e.mu.Unlock()

	if e.draft.EntryID() == id {
		e.draft.OnDeleted()
	}
}

// flush is the scheduler's sink. It serializes saves per unit: a flush
// arriving while the unit's save is in flight sets the queued bit and the
// running save re-flushes with the then-latest content when it completes.
func (e *Engine) flush(unitID, content string, manual bool) {
	e.mu.Lock()
	if e.saving[unitID] {
		e.queued[unitID] = e.queued[unitID] || manual
		e.mu.Unlock()
		return
	}
	e.saving[unitID] = true
	e.mu.Unlock()

	e.performSave(unitID, content, manual)

	for {
		e.mu.Lock()
		wasManual, ok := e.queued[unitID]
		if !ok {
			delete(e.saving, unitID)
			e.mu.Unlock()
			return
		}
		delete(e.queued, unitID)
		e.mu.Unlock()

		latest, known := e.sched.Latest(unitID)
		if !known {
			latest = content
		}
		e.performSave(unitID, latest, wasManual)
	}
}

func (e *Engine) performSave(unitID, content string, manual bool) {
	ctx := context.Background()
	if unitID == e.draft.UnitID() {
		e.saveDraft(ctx, unitID, content, manual)
		return
	}
	e.saveEntry(ctx, unitID, content, manual)
}

func (e *Engine) saveDraft(ctx context.Context, unitID, content string, manual bool) {
	if e.draft.EntryID() == "" {
		// Empty never-created content is nothing to persist and nothing to
		// delete.
		body, ok := e.draft.BeginCreate()
		if !ok {
			return
		}

		en, err := e.api.CreateEntry(ctx, e.draft.Date(), body)
		if err != nil {
			e.draft.CreateFailed()
			e.reportSaveError(ctx, unitID, err, manual)
			return
		}
		e.draft.CreateSucceeded(en)
		e.store.ApplyCreate(en)
		e.dirty.ObserveServer(en.ID, en.Content)
		return
	}

	id := e.draft.EntryID()
	if models.NormalizeContent(content) == "" {
		e.deleteOnSave(ctx, unitID, id, manual)
		return
	}

	srv, known := e.store.Get(id)
	if known && srv.Content == content {
		return
	}

	en, err := e.api.UpdateEntry(ctx, id, models.EntryPatch{Content: &content})
	if gateway.IsNotFound(err) {
		// deleted concurrently; the draft resets to a fresh empty one
		e.applyDeletion(id)
		return
	}
	if err != nil {
		e.reportSaveError(ctx, unitID, err, manual)
		return
	}
	e.store.ApplyUpdate(en)
	e.dirty.ObserveServer(en.ID, en.Content)
}

func (e *Engine) saveEntry(ctx context.Context, id, content string, manual bool) {
	if models.NormalizeContent(content) == "" {
		e.deleteOnSave(ctx, id, id, manual)
		return
	}

	patch := models.EntryPatch{Content: &content}
	if wa, ok := e.takePendingWrittenAt(id); ok {
		patch.WrittenAt = &wa
	}

	// An edit that returned to the server's value has nothing to say.
	if patch.WrittenAt == nil && !e.dirty.IsDirty(id) {
		return
	}

	en, err := e.api.UpdateEntry(ctx, id, patch)
	if gateway.IsNotFound(err) {
		e.applyDeletion(id)
		return
	}
	if err != nil {
		if patch.WrittenAt != nil {
			e.restorePendingWrittenAt(id, *patch.WrittenAt)
		}
		e.reportSaveError(ctx, id, err, manual)
		return
	}
	e.store.ApplyUpdate(en)
	e.dirty.ObserveServer(en.ID, en.Content)
}

// deleteOnSave handles content that normalized to empty at flush time: an
// implicit delete-this-entry request, not a no-op and not an error.
func (e *Engine) deleteOnSave(ctx context.Context, unitID, id string, manual bool) {
	err := e.api.DeleteEntry(ctx, id)
	if err != nil && !gateway.IsNotFound(err) {
		e.reportSaveError(ctx, unitID, err, manual)
		return
	}
	e.applyDeletion(id)
}

// reportSaveError implements the failure policy: validation failures from
// manual saves surface synchronously through the callback; everything else
// is logged and the unit simply stays dirty until the next edit or manual
// trigger. There is no automatic retry loop.
func (e *Engine) reportSaveError(ctx context.Context, unitID string, err error, manual bool) {
	if manual && gateway.IsValidation(err) && e.onSaveError != nil {
		e.onSaveError(unitID, err)
		return
	}
	e.log.Warn(ctx, "save failed", "unit", unitID, "manual", manual, "err", err)
}

// BeginTimeEdit enters timestamp-edit mode for a committed entry,
// snapshotting its current written-at. Entering alone does not dirty the
// unit; only Confirm produces a save.
func (e *Engine) BeginTimeEdit(id string) bool {
	en, ok := e.store.Get(id)
	if !ok {
		return false
	}

	e.mu.Lock()
	te := e.timeEdits[id]
	if te == nil {
		te = &TimeEdit{}
		e.timeEdits[id] = te
	}
	te.Begin(en.WrittenAt)
	e.mu.Unlock()
	return true
}

func (e *Engine) SetTimeEditInput(id, input string) {
	e.mu.Lock()
	if te := e.timeEdits[id]; te != nil {
		te.SetInput(input)
	}
	e.mu.Unlock()
}

// ConfirmTimeEdit recombines the edited clock time with the original
// calendar date and issues a manual save carrying the new written-at
// alongside the entry's current content.
func (e *Engine) ConfirmTimeEdit(id string) error {
	e.mu.Lock()
	te := e.timeEdits[id]
	e.mu.Unlock()
	if te == nil {
		return nil
	}

	wa, err := te.Confirm()
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.pendingWrittenAt[id] = wa
	e.mu.Unlock()

	content, known := e.sched.Latest(id)
	if !known {
		if en, ok := e.store.Get(id); ok {
			content = en.Content
		}
	}
	e.sched.OnManualTrigger(id, content)
	return nil
}

// CancelTimeEdit discards the edit without a save.
func (e *Engine) CancelTimeEdit(id string) {
	e.mu.Lock()
	if te := e.timeEdits[id]; te != nil {
		te.Cancel()
	}
	e.mu.Unlock()
}

func (e *Engine) takePendingWrittenAt(id string) (time.Time, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	wa, ok := e.pendingWrittenAt[id]
	if ok {
		delete(e.pendingWrittenAt, id)
	}
	return wa, ok
}

func (e *Engine) restorePendingWrittenAt(id string, wa time.Time) {
	e.mu.Lock()
	e.pendingWrittenAt[id] = wa
	e.mu.Unlock()
}

// SetTyping feeds the ambient typing aggregate.
func (e *Engine) SetTyping(unitID string, isTyping bool) {
	e.typing.SetTyping(unitID, isTyping)
}

func (e *Engine) AnyTyping() bool {
	return e.typing.AnyTyping()
}

// HasUnsavedChanges powers the ambient synced/unsynced indicator. It folds
// the committed entries' dirty set with the draft's divergence and reads
// false during initial load by construction: neither tracker claims
// divergence before server content has been observed.
func (e *Engine) HasUnsavedChanges() bool {
	if e.dirty.Any() {
		return true
	}
	return e.draft.Dirty(func(id string) (string, bool) {
		en, ok := e.store.Get(id)
		if !ok {
			return "", false
		}
		return en.Content, true
	})
}

// VisibleEntries is the display listing: the collection ordered by
// written-at, minus the entry suppressed by the draft's pending id. During
// the reconciliation window that entry renders through the draft slot only,
// so it can never appear twice.
func (e *Engine) VisibleEntries() []models.Entry {
	pending := e.draft.PendingEntryID()
	snapshot := e.store.Snapshot()
	if pending == "" {
		return snapshot
	}
	out := snapshot[:0]
	for _, en := range snapshot {
		if en.ID != pending {
			out = append(out, en)
		}
	}
	return out
}

// DraftRowVisible reports whether the draft slot renders as its own row:
// always while composing or creating, and after identification only until
// the collection listing has taken over.
func (e *Engine) DraftRowVisible() bool {
	switch e.draft.State() {
	case DraftEmpty:
		return false
	case DraftComposing, DraftCreating:
		return true
	default:
		return e.draft.PendingEntryID() != "" || !e.store.Contains(e.draft.EntryID())
	}
}

func (e *Engine) Date() models.Date { return e.store.Date() }

// Draft exposes the controller for UI state queries.
func (e *Engine) Draft() *DraftController { return e.draft }

// Store exposes the collection for read-only display use.
func (e *Engine) Store() *CollectionStore { return e.store }

// SchedulerPending reports whether the unit has an armed debounce timer.
func (e *Engine) SchedulerPending(unitID string) bool {
	return e.sched.Pending(unitID)
}

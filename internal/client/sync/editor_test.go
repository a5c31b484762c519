package sync

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/journal/internal/client/gateway"
	"github.com/dmitrijs2005/journal/internal/client/models"
)

type fakeEntryAPI struct {
	mu      sync.Mutex
	entries map[string]models.Entry
	nextID  int

	lists, creates, updates, deletes int
	createErr, updateErr, deleteErr  error
	lastPatch                        models.EntryPatch
}

func newFakeEntryAPI() *fakeEntryAPI {
	return &fakeEntryAPI{entries: map[string]models.Entry{}}
}

func (f *fakeEntryAPI) put(e models.Entry) {
	f.mu.Lock()
	f.entries[e.ID] = e
	f.mu.Unlock()
}

func (f *fakeEntryAPI) ListEntries(ctx context.Context, date models.Date) ([]models.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	var out []models.Entry
	for _, e := range f.entries {
		if e.Date == date {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEntryAPI) CreateEntry(ctx context.Context, date models.Date, content string) (models.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	if f.createErr != nil {
		return models.Entry{}, f.createErr
	}
	f.nextID++
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	e := models.Entry{
		ID: "e" + strconv.Itoa(f.nextID), Date: date, Content: content,
		WrittenAt: now, CreatedAt: now, UpdatedAt: now,
	}
	f.entries[e.ID] = e
	return e, nil
}

func (f *fakeEntryAPI) UpdateEntry(ctx context.Context, id string, patch models.EntryPatch) (models.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates++
	f.lastPatch = patch
	if f.updateErr != nil {
		return models.Entry{}, f.updateErr
	}
	e, ok := f.entries[id]
	if !ok {
		return models.Entry{}, &gateway.StatusError{Op: "update entry", Status: 404, Message: "not found"}
	}
	if patch.Content != nil {
		e.Content = *patch.Content
	}
	if patch.WrittenAt != nil {
		e.WrittenAt = *patch.WrittenAt
	}
	f.entries[id] = e
	return e, nil
}

func (f *fakeEntryAPI) DeleteEntry(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes++
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.entries[id]; !ok {
		return &gateway.StatusError{Op: "delete entry", Status: 404, Message: "not found"}
	}
	delete(f.entries, id)
	return nil
}

func newTestEngine(t *testing.T, api *fakeEntryAPI) (*Engine, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	e := NewEngine(api, testLogger(), Options{Clock: clock})
	return e, clock
}

func seedEntry(api *fakeEntryAPI, id, content string) models.Entry {
	wa := time.Date(2024, 6, 10, 9, 15, 0, 0, time.UTC)
	e := models.Entry{ID: id, Date: "2024-06-10", Content: content,
		WrittenAt: wa, CreatedAt: wa, UpdatedAt: wa}
	api.put(e)
	return e
}

func TestEngine_DraftTypingCreatesExactlyOnce(t *testing.T) {
	api := newFakeEntryAPI()
	e, clock := newTestEngine(t, api)
	require.NoError(t, e.OpenDate(context.Background(), "2024-06-10"))

	e.EditDraft("h")
	e.EditDraft("he")
	e.EditDraft("hello")
	clock.Advance(DefaultDebounceInterval)

	assert.Equal(t, 1, api.creates, "rapid keystrokes coalesce into one create")
	assert.Equal(t, DraftIdentified, e.Draft().State())
	assert.Equal(t, "hello", api.entries[e.Draft().EntryID()].Content)
}

func TestEngine_NoDoubleRenderAcrossRefresh(t *testing.T) {
	api := newFakeEntryAPI()
	e, clock := newTestEngine(t, api)
	require.NoError(t, e.OpenDate(context.Background(), "2024-06-10"))

	e.EditDraft("hello")
	clock.Advance(DefaultDebounceInterval)
	require.Equal(t, DraftIdentified, e.Draft().State())

	// created but not yet observed in a listing: draft row covers it
	assert.True(t, e.DraftRowVisible())
	assert.Empty(t, e.VisibleEntries(), "pending id is suppressed from the listing")

	require.NoError(t, e.Refresh(context.Background()))

	// listed now: exactly one rendering, through the listing
	assert.False(t, e.DraftRowVisible())
	require.Len(t, e.VisibleEntries(), 1)
	assert.Equal(t, e.Draft().EntryID(), e.VisibleEntries()[0].ID)
}

func TestEngine_GraceExpiryEndsSuppressionWithoutRefresh(t *testing.T) {
	api := newFakeEntryAPI()
	e, clock := newTestEngine(t, api)
	require.NoError(t, e.OpenDate(context.Background(), "2024-06-10"))

	e.EditDraft("hello")
	clock.Advance(DefaultDebounceInterval)
	require.NotEmpty(t, e.Draft().PendingEntryID())

	clock.Advance(DefaultPendingGrace)
	assert.Empty(t, e.Draft().PendingEntryID())
	assert.Len(t, e.VisibleEntries(), 1)
}

func TestEngine_RevertToServerContentSavesNothing(t *testing.T) {
	api := newFakeEntryAPI()
	seedEntry(api, "e1", "abc")
	e, clock := newTestEngine(t, api)
	require.NoError(t, e.OpenDate(context.Background(), "2024-06-10"))

	e.EditEntry("e1", "abc ")
	assert.True(t, e.HasUnsavedChanges())
	e.EditEntry("e1", "abc")
	assert.False(t, e.HasUnsavedChanges())

	clock.Advance(DefaultDebounceInterval)
	assert.Zero(t, api.updates, "converged content produces no request")
}

func TestEngine_EditDebouncesToSingleUpdate(t *testing.T) {
	api := newFakeEntryAPI()
	seedEntry(api, "e1", "abc")
	e, clock := newTestEngine(t, api)
	require.NoError(t, e.OpenDate(context.Background(), "2024-06-10"))

	e.EditEntry("e1", "abcd")
	clock.Advance(DefaultDebounceInterval / 2)
	e.EditEntry("e1", "abcde")
	clock.Advance(DefaultDebounceInterval)

	assert.Equal(t, 1, api.updates)
	assert.Equal(t, "abcde", api.entries["e1"].Content)
	assert.False(t, e.HasUnsavedChanges())
}

func TestEngine_EmptyContentDeletesOnce(t *testing.T) {
	api := newFakeEntryAPI()
	seedEntry(api, "e1", "abc")
	e, clock := newTestEngine(t, api)
	require.NoError(t, e.OpenDate(context.Background(), "2024-06-10"))

	e.EditEntry("e1", "   \n")
	clock.Advance(DefaultDebounceInterval)

	assert.Equal(t, 1, api.deletes)
	assert.Zero(t, api.updates)
	assert.False(t, e.Store().Contains("e1"))
	assert.False(t, e.HasUnsavedChanges())
}

func TestEngine_EmptyDraftNeverPersists(t *testing.T) {
	api := newFakeEntryAPI()
	e, clock := newTestEngine(t, api)
	require.NoError(t, e.OpenDate(context.Background(), "2024-06-10"))

	e.EditDraft("hi")
	e.EditDraft("  ")
	clock.Advance(DefaultDebounceInterval)

	assert.Zero(t, api.creates)
	assert.Zero(t, api.deletes)
}

func TestEngine_DraftCreateFailureKeepsContentForRetry(t *testing.T) {
	api := newFakeEntryAPI()
	e, clock := newTestEngine(t, api)
	require.NoError(t, e.OpenDate(context.Background(), "2024-06-10"))

	api.createErr = &gateway.StatusError{Op: "create entry", Status: 500, Message: "boom"}
	e.EditDraft("hello")
	clock.Advance(DefaultDebounceInterval)

	assert.Equal(t, 1, api.creates)
	assert.Equal(t, DraftComposing, e.Draft().State())
	assert.True(t, e.HasUnsavedChanges())

	api.createErr = nil
	e.SaveDraftNow()
	assert.Equal(t, 2, api.creates)
	assert.Equal(t, DraftIdentified, e.Draft().State())
}

func TestEngine_IdentifiedDraftEditsUpdate(t *testing.T) {
	api := newFakeEntryAPI()
	e, clock := newTestEngine(t, api)
	require.NoError(t, e.OpenDate(context.Background(), "2024-06-10"))

	e.EditDraft("hello")
	clock.Advance(DefaultDebounceInterval)
	id := e.Draft().EntryID()
	require.NotEmpty(t, id)

	e.EditDraft("hello world")
	clock.Advance(DefaultDebounceInterval)

	assert.Equal(t, 1, api.creates, "identity persists; later edits never re-create")
	assert.Equal(t, 1, api.updates)
	assert.Equal(t, "hello world", api.entries[id].Content)
}

func TestEngine_IdentifiedDraftClearedContentDeletes(t *testing.T) {
	api := newFakeEntryAPI()
	e, clock := newTestEngine(t, api)
	require.NoError(t, e.OpenDate(context.Background(), "2024-06-10"))

	e.EditDraft("hello")
	clock.Advance(DefaultDebounceInterval)
	id := e.Draft().EntryID()

	e.EditDraft("")
	clock.Advance(DefaultDebounceInterval)

	assert.Equal(t, 1, api.deletes)
	assert.False(t, e.Store().Contains(id))
	assert.Equal(t, DraftEmpty, e.Draft().State(), "draft resets fresh for the same date")
	assert.Equal(t, models.Date("2024-06-10"), e.Draft().Date())
}

func TestEngine_ConfirmTimeEditSavesNewWrittenAt(t *testing.T) {
	api := newFakeEntryAPI()
	seedEntry(api, "e1", "abc")
	e, _ := newTestEngine(t, api)
	require.NoError(t, e.OpenDate(context.Background(), "2024-06-10"))

	require.True(t, e.BeginTimeEdit("e1"))
	e.SetTimeEditInput("e1", "21:30")
	require.NoError(t, e.ConfirmTimeEdit("e1"))

	assert.Equal(t, 1, api.updates)
	require.NotNil(t, api.lastPatch.WrittenAt)
	assert.Equal(t, time.Date(2024, 6, 10, 21, 30, 0, 0, time.UTC), *api.lastPatch.WrittenAt)
	require.NotNil(t, api.lastPatch.Content)
	assert.Equal(t, "abc", *api.lastPatch.Content, "clean content rides along unchanged")
}

func TestEngine_CancelTimeEditSavesNothing(t *testing.T) {
	api := newFakeEntryAPI()
	seedEntry(api, "e1", "abc")
	e, clock := newTestEngine(t, api)
	require.NoError(t, e.OpenDate(context.Background(), "2024-06-10"))

	require.True(t, e.BeginTimeEdit("e1"))
	e.SetTimeEditInput("e1", "21:30")
	e.CancelTimeEdit("e1")
	clock.Advance(DefaultDebounceInterval)

	assert.Zero(t, api.updates)
	assert.Equal(t, time.Date(2024, 6, 10, 9, 15, 0, 0, time.UTC), api.entries["e1"].WrittenAt)
}

func TestEngine_InvalidTimeInputErrors(t *testing.T) {
	api := newFakeEntryAPI()
	seedEntry(api, "e1", "abc")
	e, _ := newTestEngine(t, api)
	require.NoError(t, e.OpenDate(context.Background(), "2024-06-10"))

	require.True(t, e.BeginTimeEdit("e1"))
	e.SetTimeEditInput("e1", "soon")
	assert.Error(t, e.ConfirmTimeEdit("e1"))
	assert.Zero(t, api.updates)
}

func TestEngine_ManualValidationErrorSurfaces(t *testing.T) {
	api := newFakeEntryAPI()
	seedEntry(api, "e1", "abc")

	var surfaced []string
	clock := newFakeClock()
	e := NewEngine(api, testLogger(), Options{
		Clock: clock,
		OnSaveError: func(unitID string, err error) {
			surfaced = append(surfaced, unitID)
		},
	})
	require.NoError(t, e.OpenDate(context.Background(), "2024-06-10"))

	api.updateErr = &gateway.StatusError{Op: "update entry", Status: 422, Message: "too long"}

	e.SaveEntryNow("e1", "new content")
	assert.Equal(t, []string{"e1"}, surfaced, "manual validation failure reaches the callback")

	e.EditEntry("e1", "newer content")
	clock.Advance(DefaultDebounceInterval)
	assert.Equal(t, []string{"e1"}, surfaced, "debounced failure is logged, not surfaced")
	assert.True(t, e.HasUnsavedChanges(), "unit stays dirty after a failed save")
}

func TestEngine_UpdateNotFoundDropsEntry(t *testing.T) {
	api := newFakeEntryAPI()
	seedEntry(api, "e1", "abc")
	e, clock := newTestEngine(t, api)
	require.NoError(t, e.OpenDate(context.Background(), "2024-06-10"))

	delete(api.entries, "e1") // deleted from another device
	e.EditEntry("e1", "abcd")
	clock.Advance(DefaultDebounceInterval)

	assert.False(t, e.Store().Contains("e1"))
	assert.False(t, e.HasUnsavedChanges())
}

func TestEngine_ExplicitDeleteTreats404AsSuccess(t *testing.T) {
	api := newFakeEntryAPI()
	seedEntry(api, "e1", "abc")
	e, _ := newTestEngine(t, api)
	require.NoError(t, e.OpenDate(context.Background(), "2024-06-10"))

	delete(api.entries, "e1")
	assert.NoError(t, e.DeleteEntry(context.Background(), "e1"))
	assert.False(t, e.Store().Contains("e1"))
}

func TestEngine_DeleteOfDraftEntryResetsDraft(t *testing.T) {
	api := newFakeEntryAPI()
	e, clock := newTestEngine(t, api)
	require.NoError(t, e.OpenDate(context.Background(), "2024-06-10"))

	e.EditDraft("hello")
	clock.Advance(DefaultDebounceInterval)
	id := e.Draft().EntryID()
	require.NotEmpty(t, id)

	require.NoError(t, e.DeleteEntry(context.Background(), id))
	assert.Equal(t, DraftEmpty, e.Draft().State())
	assert.Empty(t, e.Draft().EntryID())
}

func TestEngine_OpenDateCancelsPendingSaves(t *testing.T) {
	api := newFakeEntryAPI()
	seedEntry(api, "e1", "abc")
	e, clock := newTestEngine(t, api)
	require.NoError(t, e.OpenDate(context.Background(), "2024-06-10"))

	e.EditEntry("e1", "abcd")
	e.SetTyping("e1", true)
	require.NoError(t, e.OpenDate(context.Background(), "2024-06-11"))

	clock.Advance(DefaultDebounceInterval)
	assert.Zero(t, api.updates, "edits for the abandoned date never flush")
	assert.False(t, e.AnyTyping())
	assert.False(t, e.HasUnsavedChanges())
	assert.Equal(t, models.Date("2024-06-11"), e.Date())
}

func TestEngine_HasUnsavedChangesFalseOnFreshLoad(t *testing.T) {
	api := newFakeEntryAPI()
	seedEntry(api, "e1", "abc")
	e, _ := newTestEngine(t, api)

	require.NoError(t, e.OpenDate(context.Background(), "2024-06-10"))
	assert.False(t, e.HasUnsavedChanges())
}

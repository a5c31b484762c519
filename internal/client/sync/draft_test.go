package sync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/journal/internal/client/models"
)

func identifiedEntry(id string) models.Entry {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	return models.Entry{ID: id, Date: "2024-06-10", Content: "hello", WrittenAt: now, CreatedAt: now, UpdatedAt: now}
}

func TestDraft_FirstKeystrokeEntersComposing(t *testing.T) {
	d := NewDraftController(newFakeClock(), 0)
	d.ResetForDate("2024-06-10")
	assert.Equal(t, DraftEmpty, d.State())

	d.OnEdit("h")
	assert.Equal(t, DraftComposing, d.State())
}

func TestDraft_WhitespaceDoesNotEnterComposing(t *testing.T) {
	d := NewDraftController(newFakeClock(), 0)
	d.ResetForDate("2024-06-10")

	d.OnEdit("   \n")
	assert.Equal(t, DraftEmpty, d.State())
}

func TestDraft_BeginCreateGuardsConcurrentTriggers(t *testing.T) {
	d := NewDraftController(newFakeClock(), 0)
	d.ResetForDate("2024-06-10")
	d.OnEdit("hello")

	content, ok := d.BeginCreate()
	require.True(t, ok)
	assert.Equal(t, "hello", content)
	assert.Equal(t, DraftCreating, d.State())

	_, ok = d.BeginCreate()
	assert.False(t, ok, "second trigger while creating must be suppressed")
}

func TestDraft_BeginCreateRefusesEmptyAndIdentified(t *testing.T) {
	d := NewDraftController(newFakeClock(), 0)
	d.ResetForDate("2024-06-10")

	_, ok := d.BeginCreate()
	assert.False(t, ok, "nothing to create")

	d.OnEdit("hello")
	_, ok = d.BeginCreate()
	require.True(t, ok)
	d.CreateSucceeded(identifiedEntry("e1"))

	_, ok = d.BeginCreate()
	assert.False(t, ok, "identified draft updates, never creates")
}

func TestDraft_CreateSucceededSetsPendingID(t *testing.T) {
	clock := newFakeClock()
	d := NewDraftController(clock, 2500*time.Millisecond)
	d.ResetForDate("2024-06-10")
	d.OnEdit("hello")
	_, _ = d.BeginCreate()

	d.CreateSucceeded(identifiedEntry("e1"))
	assert.Equal(t, DraftIdentified, d.State())
	assert.Equal(t, "e1", d.EntryID())
	assert.Equal(t, "e1", d.PendingEntryID())

	// no refresh observed: the grace delay clears suppression
	clock.Advance(2500 * time.Millisecond)
	assert.Empty(t, d.PendingEntryID())
	assert.Equal(t, "e1", d.EntryID(), "identity survives the grace expiry")
}

func TestDraft_ObserveCollectionClearsPendingEarly(t *testing.T) {
	clock := newFakeClock()
	d := NewDraftController(clock, 2500*time.Millisecond)
	d.ResetForDate("2024-06-10")
	d.OnEdit("hello")
	_, _ = d.BeginCreate()
	d.CreateSucceeded(identifiedEntry("e1"))

	d.ObserveCollection(func(id string) bool { return id == "e1" })
	assert.Empty(t, d.PendingEntryID(), "refresh containing the id ends suppression immediately")

	// the already-armed grace timer must be inert now
	clock.Advance(time.Minute)
	assert.Empty(t, d.PendingEntryID())
}

func TestDraft_ObserveCollectionWithoutIDKeepsPending(t *testing.T) {
	d := NewDraftController(newFakeClock(), time.Minute)
	d.ResetForDate("2024-06-10")
	d.OnEdit("hello")
	_, _ = d.BeginCreate()
	d.CreateSucceeded(identifiedEntry("e1"))

	d.ObserveCollection(func(id string) bool { return false })
	assert.Equal(t, "e1", d.PendingEntryID(), "a stale refresh does not end suppression")
}

func TestDraft_CreateFailedReturnsToComposing(t *testing.T) {
	d := NewDraftController(newFakeClock(), 0)
	d.ResetForDate("2024-06-10")
	d.OnEdit("hello")
	_, _ = d.BeginCreate()

	d.CreateFailed()
	assert.Equal(t, DraftComposing, d.State())
	assert.Equal(t, "hello", d.Content(), "content survives a failed create for retry")
}

func TestDraft_ScopeChangeResetsUnconditionally(t *testing.T) {
	d := NewDraftController(newFakeClock(), 0)
	d.ResetForDate("2024-06-10")
	d.OnEdit("hello")
	_, _ = d.BeginCreate()
	oldUnit := d.UnitID()

	d.ResetForDate("2024-06-11")
	assert.Equal(t, DraftEmpty, d.State())
	assert.Empty(t, d.EntryID())
	assert.Empty(t, d.Content())
	assert.NotEqual(t, oldUnit, d.UnitID())

	// the in-flight create for the old date completes late: ignored
	d.CreateSucceeded(identifiedEntry("e-old"))
	assert.Equal(t, DraftEmpty, d.State())
	assert.Empty(t, d.EntryID())
}

func TestDraft_OnDeletedResetsForSameDate(t *testing.T) {
	clock := newFakeClock()
	d := NewDraftController(clock, 0)
	d.ResetForDate("2024-06-10")
	d.OnEdit("hello")
	_, _ = d.BeginCreate()
	d.CreateSucceeded(identifiedEntry("e1"))

	before := d.StartedAt()
	clock.Advance(time.Minute)
	d.OnDeleted()

	assert.Equal(t, DraftEmpty, d.State())
	assert.Equal(t, models.Date("2024-06-10"), d.Date())
	assert.True(t, d.StartedAt().After(before), "fresh draft gets a new default timestamp")
}

func TestDraft_Dirty(t *testing.T) {
	d := NewDraftController(newFakeClock(), 0)
	d.ResetForDate("2024-06-10")

	noServer := func(id string) (string, bool) { return "", false }
	assert.False(t, d.Dirty(noServer), "empty draft is clean")

	d.OnEdit("hello")
	assert.True(t, d.Dirty(noServer), "unsaved composing content diverges by definition")

	_, _ = d.BeginCreate()
	d.CreateSucceeded(identifiedEntry("e1"))
	server := func(id string) (string, bool) { return "hello", id == "e1" }
	assert.False(t, d.Dirty(server))

	d.OnEdit("hello world")
	assert.True(t, d.Dirty(server))

	// hydration guard: identified draft with unknown server content is clean
	assert.False(t, d.Dirty(noServer))
}

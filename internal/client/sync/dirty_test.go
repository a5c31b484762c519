package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDirtyTracker_EditThenRevertIsClean(t *testing.T) {
	tr := NewDirtyTracker()
	tr.ObserveServer("e1", "abc")

	tr.MarkEdited("e1", "abc ")
	assert.True(t, tr.IsDirty("e1"))

	tr.MarkEdited("e1", "abc")
	assert.False(t, tr.IsDirty("e1"), "content back at server value clears itself")
	assert.False(t, tr.Any())
}

func TestDirtyTracker_UnhydratedEntryNeverDirty(t *testing.T) {
	tr := NewDirtyTracker()

	// server content not yet observed for e1: the indicator must stay quiet
	tr.MarkEdited("e1", "typed during load")
	assert.True(t, tr.IsDirty("e1"), "divergence is tracked locally")

	// but hydration with matching content clears it
	tr.ObserveServer("e1", "typed during load")
	assert.False(t, tr.IsDirty("e1"))
}

func TestDirtyTracker_RefreshClearsConverged(t *testing.T) {
	tr := NewDirtyTracker()
	tr.ObserveServer("e1", "old")
	tr.MarkEdited("e1", "new")
	assert.True(t, tr.Any())

	// server caught up (our save round-tripped)
	tr.ObserveServer("e1", "new")
	assert.False(t, tr.Any())
}

func TestDirtyTracker_ClearAndForget(t *testing.T) {
	tr := NewDirtyTracker()
	tr.ObserveServer("e1", "a")
	tr.MarkEdited("e1", "b")

	tr.Clear("e1")
	assert.False(t, tr.IsDirty("e1"))

	tr.MarkEdited("e1", "c")
	tr.Forget("e1")
	assert.False(t, tr.IsDirty("e1"))
	assert.False(t, tr.Any())
}

func TestDirtyTracker_Reset(t *testing.T) {
	tr := NewDirtyTracker()
	tr.ObserveServer("e1", "a")
	tr.MarkEdited("e1", "b")
	tr.Reset()
	assert.False(t, tr.Any())
}

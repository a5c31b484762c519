package sync

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/journal/internal/client/models"
)

// DraftState is the lifecycle position of the one entry currently being
// composed for the active scope date.
type DraftState int

const (
	// DraftEmpty: no local content, no id.
	DraftEmpty DraftState = iota
	// DraftComposing: local content present, no id yet.
	DraftComposing
	// DraftCreating: a create request is in flight. Further create triggers
	// are suppressed until it completes.
	DraftCreating
	// DraftIdentified: the server assigned an id; subsequent edits save via
	// update instead of create.
	DraftIdentified
)

func (s DraftState) String() string {
	switch s {
	case DraftEmpty:
		return "empty"
	case DraftComposing:
		return "composing"
	case DraftCreating:
		return "creating"
	case DraftIdentified:
		return "identified"
	default:
		return "unknown"
	}
}

// DefaultPendingGrace is how long a freshly assigned id stays marked as
// pending when no collection refresh confirms it first. It must span at
// least one refresh cycle.
const DefaultPendingGrace = 2500 * time.Millisecond

// DraftController owns the single "composed but possibly not yet created"
// entry and resolves the race between "server assigned an id" and "list
// refreshed before local state caught up".
//
// Without the pending-id grace window, a newly created entry would
// momentarily render twice: once through the draft slot and once as a
// freshly listed item, because create confirmation and collection refresh
// are independently ordered completions of the same user action.
// Suppression is strictly id-based; there is no content-equality fallback.
type DraftController struct {
	mu    sync.Mutex
	clock Clock
	grace time.Duration

	date      models.Date
	state     DraftState
	unitID    string
	entryID   string
	pendingID string
	content   string
	startedAt time.Time

	graceGen   uint64
	graceTimer Timer
}

func NewDraftController(clock Clock, grace time.Duration) *DraftController {
	if grace <= 0 {
		grace = DefaultPendingGrace
	}
	d := &DraftController{clock: clock, grace: grace}
	d.resetLocked("")
	return d
}

// ResetForDate unconditionally resets to a fresh empty draft bound to the
// given scope date, regardless of current state. An in-flight save for the
// old date keeps running, but its result is ignored: identity for a date no
// longer viewed is irrelevant.
func (d *DraftController) ResetForDate(date models.Date) {
	d.mu.Lock()
	d.resetLocked(date)
	d.mu.Unlock()
}

func (d *DraftController) resetLocked(date models.Date) {
	if d.graceTimer != nil {
		d.graceTimer.Stop()
		d.graceTimer = nil
	}
	d.graceGen++
	d.date = date
	d.state = DraftEmpty
	d.unitID = "draft-" + uuid.NewString()
	d.entryID = ""
	d.pendingID = ""
	d.content = ""
	d.startedAt = d.clock.Now()
}

// OnEdit records new draft content. The first keystroke moves an empty
// draft into composing; an identified draft stays identified (its edits
// debounce-save via update).
func (d *DraftController) OnEdit(content string) {
	d.mu.Lock()
	d.content = content
	if d.state == DraftEmpty && models.NormalizeContent(content) != "" {
		d.state = DraftComposing
	}
	d.mu.Unlock()
}

// BeginCreate claims the create slot. It returns the content to create and
// false when a create is already in flight or the draft already has an id,
// so concurrent triggers cannot produce duplicate creates for one draft.
func (d *DraftController) BeginCreate() (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.entryID != "" || d.state == DraftCreating {
		return "", false
	}
	if models.NormalizeContent(d.content) == "" {
		return "", false
	}
	d.state = DraftCreating
	return d.content, true
}

// CreateSucceeded installs the server-assigned identity. The id is also set
// as pending, which suppresses the entry from rendering as a plain list
// item until either a refreshed collection is observed to contain it or the
// grace delay elapses.
func (d *DraftController) CreateSucceeded(e models.Entry) {
	d.mu.Lock()
	if d.state != DraftCreating {
		// scope date changed while the create was in flight; result ignored
		d.mu.Unlock()
		return
	}
	d.entryID = e.ID
	d.pendingID = e.ID
	d.state = DraftIdentified

	d.graceGen++
	gen := d.graceGen
	d.graceTimer = d.clock.AfterFunc(d.grace, func() {
		d.clearPending(gen)
	})
	d.mu.Unlock()
}

// CreateFailed returns the draft to composing; content is untouched and the
// next edit or manual trigger retries the create.
func (d *DraftController) CreateFailed() {
	d.mu.Lock()
	if d.state == DraftCreating {
		d.state = DraftComposing
	}
	d.mu.Unlock()
}

func (d *DraftController) clearPending(gen uint64) {
	d.mu.Lock()
	if d.graceGen == gen {
		d.pendingID = ""
		d.graceTimer = nil
	}
	d.mu.Unlock()
}

// ObserveCollection tells the controller a refreshed collection has been
// rendered. Once the pending id is present there, suppression ends
// immediately instead of waiting out the grace delay.
func (d *DraftController) ObserveCollection(contains func(id string) bool) {
	d.mu.Lock()
	if d.pendingID != "" && contains(d.pendingID) {
		if d.graceTimer != nil {
			d.graceTimer.Stop()
			d.graceTimer = nil
		}
		d.graceGen++
		d.pendingID = ""
	}
	d.mu.Unlock()
}

// OnDeleted resets to a fresh empty draft for the same date after the
// backing entry was deleted, explicitly or via an empty-content save.
func (d *DraftController) OnDeleted() {
	d.mu.Lock()
	d.resetLocked(d.date)
	d.mu.Unlock()
}

// Dirty reports whether the draft diverges from the server. An identified
// draft compares against the server content looked up by id; an unsaved
// draft is dirty once it has any normalized content. Unknown ids read as
// clean, matching the tracker's hydration guard.
func (d *DraftController) Dirty(serverContent func(id string) (string, bool)) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch d.state {
	case DraftEmpty:
		return false
	case DraftComposing, DraftCreating:
		return models.NormalizeContent(d.content) != ""
	default:
		srv, ok := serverContent(d.entryID)
		if !ok {
			return false
		}
		return d.content != srv
	}
}

func (d *DraftController) State() DraftState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

func (d *DraftController) UnitID() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.unitID
}

func (d *DraftController) EntryID() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.entryID
}

func (d *DraftController) PendingEntryID() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pendingID
}

func (d *DraftController) Content() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.content
}

func (d *DraftController) Date() models.Date {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.date
}

// StartedAt is the display timestamp for a draft that has no server
// timestamps yet.
func (d *DraftController) StartedAt() time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.startedAt
}

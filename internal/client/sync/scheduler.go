package sync

import (
	"sync"
	"time"
)

// DefaultDebounceInterval is how long a unit must stay quiet before its
// pending edit is flushed.
const DefaultDebounceInterval = 1500 * time.Millisecond

// FlushFunc receives the unit id, the content recorded at flush time, and
// whether the flush came from an explicit user action. It runs outside the
// scheduler's lock and may block on network calls.
type FlushFunc func(unitID, content string, manual bool)

// Scheduler coalesces rapid edits into one delayed save per editable unit.
// Each edit re-arms the unit's timer; a manual trigger cancels the timer and
// flushes immediately. A debounced flush that fires after a manual save for
// the same unit is impossible: the manual path stops the timer under the
// same lock that the timer callback checks its generation against.
type Scheduler struct {
	mu       sync.Mutex
	clock    Clock
	interval time.Duration
	flush    FlushFunc
	units    map[string]*schedUnit
}

type schedUnit struct {
	content string
	timer   Timer
	gen     uint64
}

func NewScheduler(clock Clock, interval time.Duration, flush FlushFunc) *Scheduler {
	if interval <= 0 {
		interval = DefaultDebounceInterval
	}
	return &Scheduler{
		clock:    clock,
		interval: interval,
		flush:    flush,
		units:    map[string]*schedUnit{},
	}
}

// OnEdit records the unit's newest content and re-arms its delay timer.
func (s *Scheduler) OnEdit(unitID, content string) {
	s.mu.Lock()
	u := s.units[unitID]
	if u == nil {
		u = &schedUnit{}
		s.units[unitID] = u
	}
	u.content = content
	if u.timer != nil {
		u.timer.Stop()
	}
	u.gen++
	gen := u.gen
	u.timer = s.clock.AfterFunc(s.interval, func() {
		s.fire(unitID, gen)
	})
	s.mu.Unlock()
}

// fire is the timer callback. The generation check discards callbacks whose
// timer was superseded by a later edit or canceled by a manual trigger but
// had already started firing.
func (s *Scheduler) fire(unitID string, gen uint64) {
	s.mu.Lock()
	u := s.units[unitID]
	if u == nil || u.gen != gen {
		s.mu.Unlock()
		return
	}
	u.timer = nil
	content := u.content
	s.mu.Unlock()

	s.flush(unitID, content, false)
}

// OnManualTrigger cancels any pending timer for the unit and flushes the
// given content immediately.
func (s *Scheduler) OnManualTrigger(unitID, content string) {
	s.mu.Lock()
	u := s.units[unitID]
	if u == nil {
		u = &schedUnit{}
		s.units[unitID] = u
	}
	u.content = content
	if u.timer != nil {
		u.timer.Stop()
		u.timer = nil
	}
	u.gen++ // invalidate a timer callback that already fired but has not run
	s.mu.Unlock()

	s.flush(unitID, content, true)
}

// Cancel drops the unit entirely: pending timer stopped, content forgotten.
// Used when the unit's entry is deleted or the scope date changes.
func (s *Scheduler) Cancel(unitID string) {
	s.mu.Lock()
	if u := s.units[unitID]; u != nil && u.timer != nil {
		u.timer.Stop()
	}
	delete(s.units, unitID)
	s.mu.Unlock()
}

// CancelAll drops every unit. Used on scope-date change.
func (s *Scheduler) CancelAll() {
	s.mu.Lock()
	for _, u := range s.units {
		if u.timer != nil {
			u.timer.Stop()
		}
	}
	s.units = map[string]*schedUnit{}
	s.mu.Unlock()
}

// Latest returns the most recently recorded content for the unit. The save
// pipeline re-reads it when re-flushing after an in-flight save completes.
func (s *Scheduler) Latest(unitID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.units[unitID]
	if !ok {
		return "", false
	}
	return u.content, true
}

// Pending reports whether the unit has an armed timer.
func (s *Scheduler) Pending(unitID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.units[unitID]
	return ok && u.timer != nil
}

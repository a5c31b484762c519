package sync

import "sync"

// TypingAggregator folds per-unit typing signals into one boolean used by
// ambient UI (a floating affordance hides while anything receives
// keystrokes).
type TypingAggregator struct {
	mu     sync.Mutex
	typing map[string]struct{}
}

func NewTypingAggregator() *TypingAggregator {
	return &TypingAggregator{typing: map[string]struct{}{}}
}

func (a *TypingAggregator) SetTyping(unitID string, isTyping bool) {
	a.mu.Lock()
	if isTyping {
		a.typing[unitID] = struct{}{}
	} else {
		delete(a.typing, unitID)
	}
	a.mu.Unlock()
}

func (a *TypingAggregator) AnyTyping() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.typing) > 0
}

// Reset clears all signals. Used on scope-date change.
func (a *TypingAggregator) Reset() {
	a.mu.Lock()
	a.typing = map[string]struct{}{}
	a.mu.Unlock()
}

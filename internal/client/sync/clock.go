// Package sync implements the client-side synchronization engine that keeps
// the in-progress draft, the committed entries for the viewed date, and the
// remote store consistent under continuous, debounced, and manual saves.
//
// The server is the sole source of truth for identity: an entry has no id
// until its first successful create, and every component here is built
// around that asymmetry.
package sync

import "time"

// Clock abstracts wall time and timer creation so tests can simulate
// elapsed time deterministically instead of sleeping.
type Clock interface {
	Now() time.Time
	// AfterFunc runs fn on its own goroutine after d has elapsed.
	AfterFunc(d time.Duration, fn func()) Timer
}

// Timer is a cancelable pending callback. Stop reports whether the call was
// prevented from firing.
type Timer interface {
	Stop() bool
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// SystemClock returns the real-time clock used outside of tests.
func SystemClock() Clock { return systemClock{} }
